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
	"fmt"
	"strings"

	"github.com/i-d-lytvynenko/kg-inference/rdf"
)

// PropertyKind says whether a property relates individuals to individuals or
// individuals to literal values.
type PropertyKind int

// Property kinds.
const (
	ObjectProperty PropertyKind = iota + 1
	DatatypeProperty
)

func (k PropertyKind) String() string {
	switch k {
	case ObjectProperty:
		return "ObjectProperty"
	case DatatypeProperty:
		return "DatatypeProperty"
	}
	return fmt.Sprintf("PropertyKind(%d)", int(k))
}

// AxiomKind enumerates the axioms the model knows about. The kinds from
// SubClassOf through PropertyChain are supported; the rest are recognized so
// that they can be rejected with a precise error.
type AxiomKind int

// Axiom kinds.
const (
	SubClassOf AxiomKind = iota + 1
	EquivalentClass
	DisjointClasses
	SubPropertyOf
	EquivalentProperty
	InverseOf
	PropertyDomain
	PropertyRange
	TransitiveProperty
	SymmetricProperty
	FunctionalProperty
	InverseFunctionalProperty
	// PropertyChain operands are the implied property followed by the chain
	// of 2 or more properties, e.g. [isProneTo, exhibits, leadsTo].
	PropertyChain

	// Outside the supported fragment from here on.
	SomeValuesFrom
	AllValuesFrom
	HasValue
	OneOf
	MinCardinality
	MaxCardinality
	ExactCardinality
	IntersectionOf
	UnionOf
	ComplementOf
	HasSelf
)

// MaxChainLength is the longest property chain that may be declared.
const MaxChainLength = 4

var axiomKindNames = map[AxiomKind]string{
	SubClassOf:                "SubClassOf",
	EquivalentClass:           "EquivalentClass",
	DisjointClasses:           "DisjointClasses",
	SubPropertyOf:             "SubPropertyOf",
	EquivalentProperty:        "EquivalentProperty",
	InverseOf:                 "InverseOf",
	PropertyDomain:            "PropertyDomain",
	PropertyRange:             "PropertyRange",
	TransitiveProperty:        "TransitiveProperty",
	SymmetricProperty:         "SymmetricProperty",
	FunctionalProperty:        "FunctionalProperty",
	InverseFunctionalProperty: "InverseFunctionalProperty",
	PropertyChain:             "PropertyChain",
	SomeValuesFrom:            "SomeValuesFrom",
	AllValuesFrom:             "AllValuesFrom",
	HasValue:                  "HasValue",
	OneOf:                     "OneOf",
	MinCardinality:            "MinCardinality",
	MaxCardinality:            "MaxCardinality",
	ExactCardinality:          "ExactCardinality",
	IntersectionOf:            "IntersectionOf",
	UnionOf:                   "UnionOf",
	ComplementOf:              "ComplementOf",
	HasSelf:                   "HasSelf",
}

func (k AxiomKind) String() string {
	if n, ok := axiomKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("AxiomKind(%d)", int(k))
}

// Supported returns true if the rule engine can evaluate axioms of this kind.
func (k AxiomKind) Supported() bool {
	return k >= SubClassOf && k <= PropertyChain
}

// ParseAxiomKind returns the kind with the given name, ignoring case.
func ParseAxiomKind(name string) (AxiomKind, bool) {
	for k, n := range axiomKindNames {
		if strings.EqualFold(n, name) {
			return k, true
		}
	}
	return 0, false
}

// arity returns the minimum and maximum number of operands.
func (k AxiomKind) arity() (int, int) {
	switch k {
	case TransitiveProperty, SymmetricProperty, FunctionalProperty, InverseFunctionalProperty:
		return 1, 1
	case DisjointClasses:
		return 2, 64
	case PropertyChain:
		return 3, MaxChainLength + 1
	}
	return 2, 2
}

// Axiom is a declarative statement about classes or properties.
type Axiom struct {
	Kind     AxiomKind
	Operands []rdf.Term
}

func (a Axiom) String() string {
	ops := make([]string, len(a.Operands))
	for i, op := range a.Operands {
		ops[i] = op.String()
	}
	return fmt.Sprintf("%v(%s)", a.Kind, strings.Join(ops, ", "))
}

func (a Axiom) key() string {
	return a.String()
}

// Characteristic is an attribute of a property that can be supplied when the
// property is declared. Each one is shorthand for an axiom about the property.
type Characteristic struct {
	Kind    AxiomKind
	Operand rdf.Term
}

// The characteristics that don't take an operand.
var (
	Transitive        = Characteristic{Kind: TransitiveProperty}
	Symmetric         = Characteristic{Kind: SymmetricProperty}
	Functional        = Characteristic{Kind: FunctionalProperty}
	InverseFunctional = Characteristic{Kind: InverseFunctionalProperty}
)

// ParentProperty declares that the property is a sub-property of parent.
func ParentProperty(parent rdf.Term) Characteristic {
	return Characteristic{Kind: SubPropertyOf, Operand: parent}
}

// InverseProperty declares that the property is the inverse of other.
func InverseProperty(other rdf.Term) Characteristic {
	return Characteristic{Kind: InverseOf, Operand: other}
}

// Domain declares the class of the property's subjects.
func Domain(class rdf.Term) Characteristic {
	return Characteristic{Kind: PropertyDomain, Operand: class}
}

// Range declares the class (or datatype) of the property's objects.
func Range(class rdf.Term) Characteristic {
	return Characteristic{Kind: PropertyRange, Operand: class}
}

func (c Characteristic) axiom(property rdf.Term) Axiom {
	if c.Operand.IsAny() {
		return Axiom{Kind: c.Kind, Operands: []rdf.Term{property}}
	}
	return Axiom{Kind: c.Kind, Operands: []rdf.Term{property, c.Operand}}
}
