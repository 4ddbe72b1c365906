// Copyright The kg-inference Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rdf

import "strings"

// Well known namespaces.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
)

// Commonly used datatypes.
const (
	XSDString   = XSDNamespace + "string"
	XSDInteger  = XSDNamespace + "integer"
	XSDDecimal  = XSDNamespace + "decimal"
	XSDBoolean  = XSDNamespace + "boolean"
	XSDDate     = XSDNamespace + "date"
	RDFSLiteral = RDFSNamespace + "Literal"
)

// The vocabulary that the rule engine understands. Schema axioms are carried
// as triples using these predicates and classes.
var (
	Type                      = IRI(RDFNamespace + "type")
	SubClassOf                = IRI(RDFSNamespace + "subClassOf")
	SubPropertyOf             = IRI(RDFSNamespace + "subPropertyOf")
	Domain                    = IRI(RDFSNamespace + "domain")
	Range                     = IRI(RDFSNamespace + "range")
	Class                     = IRI(OWLNamespace + "Class")
	ObjectProperty            = IRI(OWLNamespace + "ObjectProperty")
	DatatypeProperty          = IRI(OWLNamespace + "DatatypeProperty")
	EquivalentClass           = IRI(OWLNamespace + "equivalentClass")
	EquivalentProperty        = IRI(OWLNamespace + "equivalentProperty")
	DisjointWith              = IRI(OWLNamespace + "disjointWith")
	InverseOf                 = IRI(OWLNamespace + "inverseOf")
	TransitiveProperty        = IRI(OWLNamespace + "TransitiveProperty")
	SymmetricProperty         = IRI(OWLNamespace + "SymmetricProperty")
	FunctionalProperty        = IRI(OWLNamespace + "FunctionalProperty")
	InverseFunctionalProperty = IRI(OWLNamespace + "InverseFunctionalProperty")
)

// Vocabulary lists every term above in a fixed order. The store interns these
// first so that they get the same IDs in every build.
var Vocabulary = []Term{
	Type,
	SubClassOf,
	SubPropertyOf,
	Domain,
	Range,
	Class,
	ObjectProperty,
	DatatypeProperty,
	EquivalentClass,
	EquivalentProperty,
	DisjointWith,
	InverseOf,
	TransitiveProperty,
	SymmetricProperty,
	FunctionalProperty,
	InverseFunctionalProperty,
}

// IsSchemaPredicate returns true if p is one of the predicates used to carry
// schema axioms. Instance facts may not use these, apart from rdf:type.
func IsSchemaPredicate(p Term) bool {
	switch p {
	case SubClassOf, SubPropertyOf, Domain, Range, EquivalentClass,
		EquivalentProperty, DisjointWith, InverseOf:
		return true
	}
	return false
}

// Prefixes maps the well known qname prefixes to their namespaces.
var Prefixes = map[string]string{
	"rdf":  RDFNamespace,
	"rdfs": RDFSNamespace,
	"owl":  OWLNamespace,
	"xsd":  XSDNamespace,
}

// Expand turns a qname such as "rdf:type" into a full IRI. It returns false if
// the prefix isn't one of Prefixes.
func Expand(qname string) (string, bool) {
	i := strings.IndexByte(qname, ':')
	if i <= 0 {
		return "", false
	}
	ns, ok := Prefixes[qname[:i]]
	if !ok {
		return "", false
	}
	return ns + qname[i+1:], true
}

// Compact is the reverse of Expand.
func Compact(iri string) (string, bool) {
	for prefix, ns := range Prefixes {
		if strings.HasPrefix(iri, ns) && len(iri) > len(ns) {
			return prefix + ":" + iri[len(ns):], true
		}
	}
	return "", false
}

// IsDatatype returns true if iri names an XML Schema datatype or rdfs:Literal.
func IsDatatype(iri Term) bool {
	return iri.IsIRI() && (strings.HasPrefix(iri.Value, XSDNamespace) || iri.Value == RDFSLiteral)
}

// ResolveIRI returns the IRI for a name written as "<iri>", as a qname with
// one of the well known prefixes, or as a bare name.
func ResolveIRI(name string) Term {
	name = strings.TrimSpace(name)
	if len(name) >= 2 && name[0] == '<' && name[len(name)-1] == '>' {
		return IRI(name[1 : len(name)-1])
	}
	if iri, ok := Expand(name); ok {
		return IRI(iri)
	}
	return IRI(name)
}
