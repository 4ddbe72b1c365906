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

// Package ontology holds the typed schema that the rule engine reasons with:
// classes, properties and the axioms relating them. Every declaration is
// validated when it's made; a declaration that fails leaves the model exactly
// as it was, so a model never holds a partially applied or contradictory
// ontology.
package ontology

import (
	"fmt"

	"github.com/i-d-lytvynenko/kg-inference/rdf"
)

// Property describes a declared property.
type Property struct {
	IRI               rdf.Term
	Kind              PropertyKind
	Transitive        bool
	Symmetric         bool
	Functional        bool
	InverseFunctional bool
	Parents           []rdf.Term
	Inverses          []rdf.Term
	Domains           []rdf.Term
	Ranges            []rdf.Term
}

func (p *Property) clone() *Property {
	c := *p
	c.Parents = append([]rdf.Term(nil), p.Parents...)
	c.Inverses = append([]rdf.Term(nil), p.Inverses...)
	c.Domains = append([]rdf.Term(nil), p.Domains...)
	c.Ranges = append([]rdf.Term(nil), p.Ranges...)
	return &c
}

// Chain is a property chain: following Steps in order from a subject reaches
// an object that the subject is related to by Result.
type Chain struct {
	Result rdf.Term
	Steps  []rdf.Term
}

// classPair is an unordered pair of classes.
type classPair struct {
	a, b rdf.Term
}

func makeClassPair(a, b rdf.Term) classPair {
	if b.Less(a) {
		a, b = b, a
	}
	return classPair{a, b}
}

// Model is an ontology under construction. It's not safe for concurrent use.
type Model struct {
	classes    []rdf.Term
	classSet   map[rdf.Term]struct{}
	properties []rdf.Term
	props      map[rdf.Term]*Property
	axioms     []Axiom
	axiomSet   map[string]struct{}
	// supers holds the declared SubClassOf edges, keyed by the subclass.
	supers   map[rdf.Term][]rdf.Term
	equiv    *unionFind
	disjoint map[classPair]struct{}
	chains   []Chain
	// inPlace makes commit apply declarations without copying the model.
	// Only set while the model is unreachable to callers, since a rejected
	// declaration leaves it partly applied.
	inPlace bool
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		classSet: make(map[rdf.Term]struct{}),
		props:    make(map[rdf.Term]*Property),
		axiomSet: make(map[string]struct{}),
		supers:   make(map[rdf.Term][]rdf.Term),
		equiv:    newUnionFind(),
		disjoint: make(map[classPair]struct{}),
	}
}

func (m *Model) clone() *Model {
	c := &Model{
		classes:    append([]rdf.Term(nil), m.classes...),
		classSet:   make(map[rdf.Term]struct{}, len(m.classSet)),
		properties: append([]rdf.Term(nil), m.properties...),
		props:      make(map[rdf.Term]*Property, len(m.props)),
		axioms:     append([]Axiom(nil), m.axioms...),
		axiomSet:   make(map[string]struct{}, len(m.axiomSet)),
		supers:     make(map[rdf.Term][]rdf.Term, len(m.supers)),
		equiv:      m.equiv.clone(),
		disjoint:   make(map[classPair]struct{}, len(m.disjoint)),
		chains:     append([]Chain(nil), m.chains...),
	}
	for k := range m.classSet {
		c.classSet[k] = struct{}{}
	}
	for k, p := range m.props {
		c.props[k] = p.clone()
	}
	for k := range m.axiomSet {
		c.axiomSet[k] = struct{}{}
	}
	for k, v := range m.supers {
		c.supers[k] = append([]rdf.Term(nil), v...)
	}
	for k := range m.disjoint {
		c.disjoint[k] = struct{}{}
	}
	return c
}

// commit applies fn to a copy of the model and adopts the copy only if fn
// and the whole-model checks succeed.
func (m *Model) commit(fn func(tmp *Model) (cause Axiom, err error)) error {
	if m.inPlace {
		cause, err := fn(m)
		if err != nil {
			return err
		}
		return m.check(cause)
	}
	tmp := m.clone()
	cause, err := fn(tmp)
	if err != nil {
		return err
	}
	if err := tmp.check(cause); err != nil {
		return err
	}
	*m = *tmp
	return nil
}

// DeclareClass adds a named class. Declaring the same class again is a no-op.
func (m *Model) DeclareClass(iri rdf.Term) error {
	switch {
	case !iri.IsIRI():
		return &MalformedInputError{Reason: fmt.Sprintf("class %v must be an IRI", iri)}
	case isVocabulary(iri):
		return &MalformedInputError{Reason: fmt.Sprintf("%v is reserved vocabulary", iri)}
	case m.props[iri] != nil:
		return &MalformedInputError{Reason: fmt.Sprintf("%v is already declared as a property", iri)}
	}
	if _, exists := m.classSet[iri]; exists {
		return nil
	}
	m.classSet[iri] = struct{}{}
	m.classes = append(m.classes, iri)
	return nil
}

// DeclareProperty adds a named property with the given characteristics. All
// the characteristics are validated together with the declaration; if any
// one is rejected, the property isn't declared. Re-declaring a property adds
// the characteristics to it, but its kind can't change.
func (m *Model) DeclareProperty(iri rdf.Term, kind PropertyKind, characteristics ...Characteristic) error {
	switch {
	case !iri.IsIRI():
		return &MalformedInputError{Reason: fmt.Sprintf("property %v must be an IRI", iri)}
	case isVocabulary(iri):
		return &MalformedInputError{Reason: fmt.Sprintf("%v is reserved vocabulary", iri)}
	case kind != ObjectProperty && kind != DatatypeProperty:
		return &MalformedInputError{Reason: fmt.Sprintf("unknown property kind %v", kind)}
	}
	if _, isClass := m.classSet[iri]; isClass {
		return &MalformedInputError{Reason: fmt.Sprintf("%v is already declared as a class", iri)}
	}
	if p := m.props[iri]; p != nil && p.Kind != kind {
		return &MalformedInputError{Reason: fmt.Sprintf("%v is already declared as a %v", iri, p.Kind)}
	}
	return m.commit(func(tmp *Model) (Axiom, error) {
		var a Axiom
		if tmp.props[iri] == nil {
			tmp.props[iri] = &Property{IRI: iri, Kind: kind}
			tmp.properties = append(tmp.properties, iri)
		}
		for _, c := range characteristics {
			a = c.axiom(iri)
			if err := tmp.apply(a); err != nil {
				return a, err
			}
		}
		return a, nil
	})
}

// DeclareAxiom adds an axiom to the model.
func (m *Model) DeclareAxiom(kind AxiomKind, operands ...rdf.Term) error {
	a := Axiom{Kind: kind, Operands: append([]rdf.Term(nil), operands...)}
	return m.commit(func(tmp *Model) (Axiom, error) {
		return a, tmp.apply(a)
	})
}

// apply validates the axiom's shape and operands and records it.
func (m *Model) apply(a Axiom) error {
	if !a.Kind.Supported() {
		if _, known := axiomKindNames[a.Kind]; !known {
			return malformedAxiom(a, "unknown axiom kind")
		}
		return &UnsupportedConstructError{Axiom: a,
			Reason: "class expressions of this kind need existential or open-world reasoning, which the rule engine doesn't perform"}
	}
	lo, hi := a.Kind.arity()
	if len(a.Operands) < lo || len(a.Operands) > hi {
		if a.Kind == PropertyChain && len(a.Operands) > hi {
			return &UnsupportedConstructError{Axiom: a,
				Reason: fmt.Sprintf("property chains may have at most %d steps", MaxChainLength)}
		}
		if lo == hi {
			return malformedAxiom(a, "expected %d operands, got %d", lo, len(a.Operands))
		}
		return malformedAxiom(a, "expected %d to %d operands, got %d", lo, hi, len(a.Operands))
	}
	for _, op := range a.Operands {
		if !op.IsIRI() {
			return malformedAxiom(a, "operand %v must be an IRI", op)
		}
	}
	if _, exists := m.axiomSet[a.key()]; exists {
		return nil
	}
	ops := a.Operands
	switch a.Kind {
	case SubClassOf:
		if err := m.requireClasses(a, ops...); err != nil {
			return err
		}
		m.supers[ops[0]] = append(m.supers[ops[0]], ops[1])

	case EquivalentClass:
		if err := m.requireClasses(a, ops...); err != nil {
			return err
		}
		m.equiv.union(ops[0], ops[1])

	case DisjointClasses:
		if err := m.requireClasses(a, ops...); err != nil {
			return err
		}
		for i := range ops {
			for j := i + 1; j < len(ops); j++ {
				if ops[i] == ops[j] {
					return &AxiomConflictError{Axiom: a, Reason: fmt.Sprintf("%v can't be disjoint with itself", ops[i])}
				}
				m.disjoint[makeClassPair(ops[i], ops[j])] = struct{}{}
			}
		}

	case SubPropertyOf, EquivalentProperty:
		p, q, err := m.requireSameKind(a)
		if err != nil {
			return err
		}
		if a.Kind == SubPropertyOf {
			p.Parents = append(p.Parents, q.IRI)
		}

	case InverseOf:
		p, q, err := m.requireSameKind(a)
		if err != nil {
			return err
		}
		if p.Kind != ObjectProperty {
			return malformedAxiom(a, "inverses can only be declared between object properties")
		}
		p.Inverses = append(p.Inverses, q.IRI)

	case PropertyDomain:
		p, err := m.requireProperty(a, ops[0])
		if err != nil {
			return err
		}
		if err := m.requireClasses(a, ops[1]); err != nil {
			return err
		}
		p.Domains = append(p.Domains, ops[1])

	case PropertyRange:
		p, err := m.requireProperty(a, ops[0])
		if err != nil {
			return err
		}
		if p.Kind == DatatypeProperty {
			if !rdf.IsDatatype(ops[1]) {
				return malformedAxiom(a, "the range of datatype property %v must be a datatype, not %v", p.IRI, ops[1])
			}
		} else if err := m.requireClasses(a, ops[1]); err != nil {
			return err
		}
		p.Ranges = append(p.Ranges, ops[1])

	case TransitiveProperty, SymmetricProperty, InverseFunctionalProperty:
		p, err := m.requireProperty(a, ops[0])
		if err != nil {
			return err
		}
		if p.Kind != ObjectProperty {
			return malformedAxiom(a, "%v requires an object property", a.Kind)
		}
		switch a.Kind {
		case TransitiveProperty:
			p.Transitive = true
		case SymmetricProperty:
			p.Symmetric = true
		default:
			p.InverseFunctional = true
		}

	case FunctionalProperty:
		p, err := m.requireProperty(a, ops[0])
		if err != nil {
			return err
		}
		p.Functional = true

	case PropertyChain:
		result, err := m.requireProperty(a, ops[0])
		if err != nil {
			return err
		}
		if result.Kind != ObjectProperty {
			return malformedAxiom(a, "the result of a property chain must be an object property")
		}
		for _, step := range ops[1:] {
			if step == rdf.SubClassOf || step == rdf.SubPropertyOf {
				continue
			}
			p, err := m.requireProperty(a, step)
			if err != nil {
				return err
			}
			if p.Kind != ObjectProperty {
				return malformedAxiom(a, "chain step %v must be an object property", step)
			}
		}
		m.chains = append(m.chains, Chain{
			Result: ops[0],
			Steps:  append([]rdf.Term(nil), ops[1:]...),
		})
	}
	m.axioms = append(m.axioms, a)
	m.axiomSet[a.key()] = struct{}{}
	return nil
}

func (m *Model) requireClasses(a Axiom, classes ...rdf.Term) error {
	for _, c := range classes {
		if _, exists := m.classSet[c]; !exists {
			return malformedAxiom(a, "%v is not a declared class", c)
		}
	}
	return nil
}

func (m *Model) requireProperty(a Axiom, iri rdf.Term) (*Property, error) {
	p := m.props[iri]
	if p == nil {
		return nil, malformedAxiom(a, "%v is not a declared property", iri)
	}
	return p, nil
}

func (m *Model) requireSameKind(a Axiom) (*Property, *Property, error) {
	p, err := m.requireProperty(a, a.Operands[0])
	if err != nil {
		return nil, nil, err
	}
	q, err := m.requireProperty(a, a.Operands[1])
	if err != nil {
		return nil, nil, err
	}
	if p.Kind != q.Kind {
		return nil, nil, malformedAxiom(a, "%v is a %v but %v is a %v", p.IRI, p.Kind, q.IRI, q.Kind)
	}
	return p, q, nil
}

func isVocabulary(t rdf.Term) bool {
	for _, v := range rdf.Vocabulary {
		if v == t {
			return true
		}
	}
	return false
}
