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

package ontology

import (
	"github.com/i-d-lytvynenko/kg-inference/rdf"
)

// Schema is a compiled, read-only ontology. It's safe for concurrent use.
type Schema struct {
	classes    []rdf.Term
	classSet   map[rdf.Term]struct{}
	properties []rdf.Term
	props      map[rdf.Term]*Property
	axioms     []Axiom
	chains     []Chain
	triples    []rdf.Triple
}

// Compile returns an immutable snapshot of the model. Later declarations on
// the model don't affect the returned schema.
func (m *Model) Compile() *Schema {
	c := m.clone()
	s := &Schema{
		classes:    c.classes,
		classSet:   c.classSet,
		properties: c.properties,
		props:      c.props,
		axioms:     c.axioms,
		chains:     c.chains,
	}
	s.triples = s.schemaTriples()
	return s
}

var kindClass = map[PropertyKind]rdf.Term{
	ObjectProperty:   rdf.ObjectProperty,
	DatatypeProperty: rdf.DatatypeProperty,
}

var axiomPredicate = map[AxiomKind]rdf.Term{
	SubClassOf:         rdf.SubClassOf,
	EquivalentClass:    rdf.EquivalentClass,
	SubPropertyOf:      rdf.SubPropertyOf,
	EquivalentProperty: rdf.EquivalentProperty,
	InverseOf:          rdf.InverseOf,
	PropertyDomain:     rdf.Domain,
	PropertyRange:      rdf.Range,
}

var characteristicClass = map[AxiomKind]rdf.Term{
	TransitiveProperty:        rdf.TransitiveProperty,
	SymmetricProperty:         rdf.SymmetricProperty,
	FunctionalProperty:        rdf.FunctionalProperty,
	InverseFunctionalProperty: rdf.InverseFunctionalProperty,
}

func (s *Schema) schemaTriples() []rdf.Triple {
	var res []rdf.Triple
	for _, c := range s.classes {
		res = append(res,
			rdf.Triple{Subject: c, Predicate: rdf.Type, Object: rdf.Class},
			rdf.Triple{Subject: c, Predicate: rdf.SubClassOf, Object: c})
	}
	for _, iri := range s.properties {
		res = append(res,
			rdf.Triple{Subject: iri, Predicate: rdf.Type, Object: kindClass[s.props[iri].Kind]},
			rdf.Triple{Subject: iri, Predicate: rdf.SubPropertyOf, Object: iri})
	}
	for _, a := range s.axioms {
		ops := a.Operands
		switch a.Kind {
		case DisjointClasses:
			for i := range ops {
				for j := i + 1; j < len(ops); j++ {
					res = append(res, rdf.Triple{Subject: ops[i], Predicate: rdf.DisjointWith, Object: ops[j]})
				}
			}
		case TransitiveProperty, SymmetricProperty, FunctionalProperty, InverseFunctionalProperty:
			res = append(res, rdf.Triple{Subject: ops[0], Predicate: rdf.Type, Object: characteristicClass[a.Kind]})
		case PropertyChain:
			// carried by Chains
		default:
			res = append(res, rdf.Triple{Subject: ops[0], Predicate: axiomPredicate[a.Kind], Object: ops[1]})
		}
	}
	return res
}

// Triples returns the schema triples that carry the ontology into the rule
// engine: a type and a reflexive SubClassOf/SubPropertyOf for every class
// and property, and one triple per axiom operand pair. Property chains aren't
// expressible as triples; see Chains. The caller must not modify the result.
func (s *Schema) Triples() []rdf.Triple {
	return s.triples
}

// Chains returns the declared property chains.
func (s *Schema) Chains() []Chain {
	return s.chains
}

// Axioms returns every axiom in declaration order.
func (s *Schema) Axioms() []Axiom {
	return s.axioms
}

// Classes returns the declared classes in declaration order.
func (s *Schema) Classes() []rdf.Term {
	return s.classes
}

// Properties returns the declared properties in declaration order.
func (s *Schema) Properties() []rdf.Term {
	return s.properties
}

// IsClass returns true if c is a declared class.
func (s *Schema) IsClass(c rdf.Term) bool {
	_, exists := s.classSet[c]
	return exists
}

// Property returns the declared property with the given IRI, or nil. The
// caller must not modify the result.
func (s *Schema) Property(iri rdf.Term) *Property {
	return s.props[iri]
}

// ValidateFact checks that t may be asserted as a base fact: it must be
// well-formed, use a declared property (or rdf:type with a declared class),
// and have an object of the kind the property expects. Schema statements
// must be declared as axioms instead.
func (s *Schema) ValidateFact(t rdf.Triple) error {
	if err := t.Validate(); err != nil {
		return malformedFact(t, "%v", err)
	}
	if t.Predicate == rdf.Type {
		if !t.Object.IsIRI() || !s.IsClass(t.Object) {
			return malformedFact(t, "%v is not a declared class", t.Object)
		}
		return nil
	}
	if rdf.IsSchemaPredicate(t.Predicate) {
		return malformedFact(t, "schema statements must be declared as axioms")
	}
	p := s.props[t.Predicate]
	if p == nil {
		return malformedFact(t, "%v is not a declared property", t.Predicate)
	}
	switch p.Kind {
	case ObjectProperty:
		if !t.Object.IsIRI() {
			return malformedFact(t, "object property %v requires an IRI object", p.IRI)
		}
	case DatatypeProperty:
		if !t.Object.IsLiteral() {
			return malformedFact(t, "datatype property %v requires a literal object", p.IRI)
		}
	}
	return nil
}
