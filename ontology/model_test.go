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
	"errors"
	"testing"

	"github.com/i-d-lytvynenko/kg-inference/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	officeItem       = rdf.IRI("OfficeItem")
	writingTool      = rdf.IRI("WritingTool")
	electronicDevice = rdf.IRI("ElectronicDevice")
	person           = rdf.IRI("Person")
	uses             = rdf.IRI("uses")
	name             = rdf.IRI("name")
)

func officeModel(t *testing.T) *Model {
	m := NewModel()
	for _, c := range []rdf.Term{officeItem, writingTool, electronicDevice, person} {
		require.NoError(t, m.DeclareClass(c))
	}
	require.NoError(t, m.DeclareProperty(uses, ObjectProperty, Domain(person), Range(officeItem)))
	require.NoError(t, m.DeclareProperty(name, DatatypeProperty, Range(rdf.IRI(rdf.XSDString))))
	require.NoError(t, m.DeclareAxiom(SubClassOf, writingTool, officeItem))
	require.NoError(t, m.DeclareAxiom(SubClassOf, electronicDevice, officeItem))
	require.NoError(t, m.DeclareAxiom(DisjointClasses, writingTool, electronicDevice))
	return m
}

func Test_OfficeSchemaTriples(t *testing.T) {
	s := officeModel(t).Compile()
	triples := s.Triples()
	exp := []rdf.Triple{
		{Subject: officeItem, Predicate: rdf.Type, Object: rdf.Class},
		{Subject: officeItem, Predicate: rdf.SubClassOf, Object: officeItem},
		{Subject: uses, Predicate: rdf.Type, Object: rdf.ObjectProperty},
		{Subject: uses, Predicate: rdf.SubPropertyOf, Object: uses},
		{Subject: name, Predicate: rdf.Type, Object: rdf.DatatypeProperty},
		{Subject: uses, Predicate: rdf.Domain, Object: person},
		{Subject: uses, Predicate: rdf.Range, Object: officeItem},
		{Subject: writingTool, Predicate: rdf.SubClassOf, Object: officeItem},
		{Subject: writingTool, Predicate: rdf.DisjointWith, Object: electronicDevice},
	}
	for _, e := range exp {
		assert.Contains(t, triples, e)
	}
	// 4 classes * 2 + 2 properties * 2 + 3 characteristics + 3 axioms
	assert.Len(t, triples, 18)
	assert.True(t, s.IsClass(writingTool))
	assert.False(t, s.IsClass(uses))
	assert.Equal(t, ObjectProperty, s.Property(uses).Kind)
	assert.Nil(t, s.Property(person))
	assert.Equal(t, []rdf.Term{uses, name}, s.Properties())
	assert.Len(t, s.Axioms(), 6)
}

func Test_CompileIsIsolatedFromModel(t *testing.T) {
	m := officeModel(t)
	s := m.Compile()
	require.NoError(t, m.DeclareClass(rdf.IRI("Stapler")))
	require.NoError(t, m.DeclareProperty(uses, ObjectProperty, Functional))
	assert.False(t, s.IsClass(rdf.IRI("Stapler")))
	assert.False(t, s.Property(uses).Functional)
	assert.True(t, m.Compile().Property(uses).Functional)
}

func Test_Disjoint(t *testing.T) {
	m := officeModel(t)
	pen := rdf.IRI("Pen")
	require.NoError(t, m.DeclareClass(pen))
	require.NoError(t, m.DeclareAxiom(SubClassOf, pen, writingTool))
	assert.True(t, m.Disjoint(writingTool, electronicDevice))
	assert.True(t, m.Disjoint(electronicDevice, writingTool))
	assert.True(t, m.Disjoint(pen, electronicDevice))
	assert.False(t, m.Disjoint(pen, writingTool))
	assert.False(t, m.Disjoint(officeItem, electronicDevice))
	assert.False(t, m.Disjoint(person, pen))
}

func Test_SubClassCycleIsRejected(t *testing.T) {
	m := NewModel()
	a, b, c := rdf.IRI("A"), rdf.IRI("B"), rdf.IRI("C")
	for _, x := range []rdf.Term{a, b, c} {
		require.NoError(t, m.DeclareClass(x))
	}
	require.NoError(t, m.DeclareAxiom(SubClassOf, a, b))
	require.NoError(t, m.DeclareAxiom(SubClassOf, b, c))
	err := m.DeclareAxiom(SubClassOf, c, a)
	var conflict *AxiomConflictError
	if assert.True(t, errors.As(err, &conflict)) {
		assert.Equal(t, SubClassOf, conflict.Axiom.Kind)
		assert.Contains(t, conflict.Reason, "cycle")
	}
	assert.Len(t, m.Compile().Axioms(), 2)

	// A self loop is harmless.
	assert.NoError(t, m.DeclareAxiom(SubClassOf, a, a))
}

func Test_SubClassCycleThroughEquivalence(t *testing.T) {
	m := NewModel()
	a, b, c := rdf.IRI("A"), rdf.IRI("B"), rdf.IRI("C")
	for _, x := range []rdf.Term{a, b, c} {
		require.NoError(t, m.DeclareClass(x))
	}
	require.NoError(t, m.DeclareAxiom(EquivalentClass, a, b))
	assert.NoError(t, m.DeclareAxiom(SubClassOf, a, b))
	assert.NoError(t, m.DeclareAxiom(SubClassOf, b, a))
	require.NoError(t, m.DeclareAxiom(SubClassOf, b, c))
	// C below A would put C in the equivalence set without saying so.
	err := m.DeclareAxiom(SubClassOf, c, a)
	assert.IsType(t, &AxiomConflictError{}, err)
	assert.Equal(t, []rdf.Term{a, b, c}, m.hierarchy().superClosure(a))
	assert.Equal(t, []rdf.Term{c}, m.hierarchy().superClosure(c))
}

func Test_DisjointEquivalentClassesConflict(t *testing.T) {
	a, b := rdf.IRI("A"), rdf.IRI("B")
	newModel := func() *Model {
		m := NewModel()
		require.NoError(t, m.DeclareClass(a))
		require.NoError(t, m.DeclareClass(b))
		return m
	}
	m := newModel()
	require.NoError(t, m.DeclareAxiom(EquivalentClass, a, b))
	assert.IsType(t, &AxiomConflictError{}, m.DeclareAxiom(DisjointClasses, a, b))

	m = newModel()
	require.NoError(t, m.DeclareAxiom(DisjointClasses, a, b))
	assert.IsType(t, &AxiomConflictError{}, m.DeclareAxiom(EquivalentClass, b, a))
	assert.False(t, m.equiv.same(a, b))

	m = newModel()
	assert.IsType(t, &AxiomConflictError{}, m.DeclareAxiom(DisjointClasses, a, a))

	// A subclass of a class it's disjoint with can't have instances, but that
	// isn't a contradiction in the schema.
	m = newModel()
	require.NoError(t, m.DeclareAxiom(DisjointClasses, a, b))
	assert.NoError(t, m.DeclareAxiom(SubClassOf, a, b))
}

func Test_FunctionalPropertyWithDisjointRanges(t *testing.T) {
	owner := rdf.IRI("owner")
	pen := rdf.IRI("Pen")
	tests := []struct {
		name    string
		declare func(m *Model) error
	}{
		{"characteristics together", func(m *Model) error {
			return m.DeclareProperty(owner, ObjectProperty, Functional, Range(writingTool), Range(electronicDevice))
		}},
		{"functional last", func(m *Model) error {
			if err := m.DeclareProperty(owner, ObjectProperty, Range(writingTool), Range(electronicDevice)); err != nil {
				return err
			}
			return m.DeclareAxiom(FunctionalProperty, owner)
		}},
		{"range last", func(m *Model) error {
			if err := m.DeclareProperty(owner, ObjectProperty, Functional, Range(writingTool)); err != nil {
				return err
			}
			return m.DeclareAxiom(PropertyRange, owner, electronicDevice)
		}},
		{"inherited disjointness", func(m *Model) error {
			if err := m.DeclareProperty(owner, ObjectProperty, Functional, Range(pen)); err != nil {
				return err
			}
			return m.DeclareAxiom(PropertyRange, owner, electronicDevice)
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := officeModel(t)
			require.NoError(t, m.DeclareClass(pen))
			require.NoError(t, m.DeclareAxiom(SubClassOf, pen, writingTool))
			err := test.declare(m)
			var conflict *AxiomConflictError
			if assert.True(t, errors.As(err, &conflict), "err: %v", err) {
				assert.Contains(t, conflict.Reason, "disjoint ranges")
			}
		})
	}

	t.Run("disjointness declared last", func(t *testing.T) {
		m := NewModel()
		require.NoError(t, m.DeclareClass(writingTool))
		require.NoError(t, m.DeclareClass(electronicDevice))
		require.NoError(t, m.DeclareProperty(owner, ObjectProperty, Functional, Range(writingTool), Range(electronicDevice)))
		assert.IsType(t, &AxiomConflictError{}, m.DeclareAxiom(DisjointClasses, writingTool, electronicDevice))
		assert.False(t, m.Disjoint(writingTool, electronicDevice))
	})
}

func Test_MalformedDeclarations(t *testing.T) {
	member := rdf.IRI("member")
	tests := []struct {
		name    string
		declare func(m *Model) error
		reason  string
	}{
		{"undeclared class", func(m *Model) error {
			return m.DeclareAxiom(SubClassOf, writingTool, rdf.IRI("Furniture"))
		}, "not a declared class"},
		{"undeclared property", func(m *Model) error {
			return m.DeclareAxiom(SubPropertyOf, uses, rdf.IRI("handles"))
		}, "not a declared property"},
		{"arity", func(m *Model) error {
			return m.DeclareAxiom(SubClassOf, writingTool)
		}, "expected 2 operands, got 1"},
		{"literal operand", func(m *Model) error {
			return m.DeclareAxiom(SubClassOf, writingTool, rdf.String("OfficeItem"))
		}, "must be an IRI"},
		{"unknown kind", func(m *Model) error {
			return m.DeclareAxiom(AxiomKind(999), writingTool)
		}, "unknown axiom kind"},
		{"mixed kinds", func(m *Model) error {
			return m.DeclareAxiom(SubPropertyOf, name, uses)
		}, "is a DatatypeProperty but"},
		{"datatype transitive", func(m *Model) error {
			return m.DeclareProperty(name, DatatypeProperty, Transitive)
		}, "requires an object property"},
		{"datatype inverse", func(m *Model) error {
			if err := m.DeclareProperty(rdf.IRI("label"), DatatypeProperty); err != nil {
				return err
			}
			return m.DeclareAxiom(InverseOf, name, rdf.IRI("label"))
		}, "object properties"},
		{"datatype range", func(m *Model) error {
			return m.DeclareAxiom(PropertyRange, name, officeItem)
		}, "must be a datatype"},
		{"class range", func(m *Model) error {
			return m.DeclareAxiom(PropertyRange, uses, rdf.IRI(rdf.XSDString))
		}, "not a declared class"},
		{"class as property", func(m *Model) error {
			return m.DeclareProperty(person, ObjectProperty)
		}, "already declared as a class"},
		{"property as class", func(m *Model) error {
			return m.DeclareClass(uses)
		}, "already declared as a property"},
		{"vocabulary", func(m *Model) error {
			return m.DeclareClass(rdf.Class)
		}, "reserved vocabulary"},
		{"redeclare kind", func(m *Model) error {
			return m.DeclareProperty(uses, DatatypeProperty)
		}, "already declared as a ObjectProperty"},
		{"chain result", func(m *Model) error {
			return m.DeclareAxiom(PropertyChain, name, uses, uses)
		}, "must be an object property"},
		{"bad domain keeps property undeclared", func(m *Model) error {
			return m.DeclareProperty(member, ObjectProperty, Symmetric, Domain(rdf.IRI("Team")))
		}, "not a declared class"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := officeModel(t)
			before := len(m.axioms)
			err := test.declare(m)
			var malformed *MalformedInputError
			if assert.True(t, errors.As(err, &malformed), "err: %v", err) {
				assert.Contains(t, malformed.Error(), test.reason)
			}
			assert.Len(t, m.axioms, before)
			assert.Nil(t, m.props[member])
		})
	}
}

func Test_UnsupportedConstructs(t *testing.T) {
	m := officeModel(t)
	err := m.DeclareAxiom(SomeValuesFrom, writingTool, uses, officeItem)
	var unsupported *UnsupportedConstructError
	if assert.True(t, errors.As(err, &unsupported)) {
		assert.Equal(t, SomeValuesFrom, unsupported.Axiom.Kind)
	}
	for _, k := range []AxiomKind{AllValuesFrom, HasValue, OneOf, MinCardinality,
		MaxCardinality, ExactCardinality, IntersectionOf, UnionOf, ComplementOf, HasSelf} {
		assert.IsType(t, &UnsupportedConstructError{}, m.DeclareAxiom(k, writingTool, officeItem), "kind %v", k)
	}
	long := []rdf.Term{uses}
	for i := 0; i <= MaxChainLength; i++ {
		long = append(long, uses)
	}
	err = m.DeclareAxiom(PropertyChain, long...)
	if assert.IsType(t, &UnsupportedConstructError{}, err) {
		assert.Contains(t, err.Error(), "at most 4 steps")
	}
	assert.Empty(t, m.Compile().Chains())
}

func Test_DuplicateDeclarationsAreNoops(t *testing.T) {
	m := officeModel(t)
	n := len(m.Compile().Triples())
	require.NoError(t, m.DeclareClass(writingTool))
	require.NoError(t, m.DeclareAxiom(SubClassOf, writingTool, officeItem))
	require.NoError(t, m.DeclareProperty(uses, ObjectProperty, Domain(person)))
	assert.Len(t, m.Compile().Triples(), n)
}

func Test_RecursiveChains(t *testing.T) {
	ancestor, parent, child := rdf.IRI("hasAncestor"), rdf.IRI("hasParent"), rdf.IRI("hasChild")
	relative, linked := rdf.IRI("relativeOf"), rdf.IRI("linkedTo")
	newModel := func() *Model {
		m := NewModel()
		for _, p := range []rdf.Term{ancestor, parent, child, relative, linked} {
			require.NoError(t, m.DeclareProperty(p, ObjectProperty))
		}
		require.NoError(t, m.DeclareClass(person))
		return m
	}
	rejected := []struct {
		name    string
		setup   func(m *Model)
		declare func(m *Model) error
	}{
		{"result is a step", nil, func(m *Model) error {
			return m.DeclareAxiom(PropertyChain, ancestor, ancestor, parent)
		}},
		{"result is the last step", nil, func(m *Model) error {
			return m.DeclareAxiom(PropertyChain, ancestor, parent, ancestor)
		}},
		{"through a parent property", func(m *Model) {
			require.NoError(t, m.DeclareAxiom(SubPropertyOf, ancestor, relative))
		}, func(m *Model) error {
			return m.DeclareAxiom(PropertyChain, ancestor, relative, parent)
		}},
		{"parent property declared later", func(m *Model) {
			require.NoError(t, m.DeclareAxiom(PropertyChain, ancestor, relative, parent))
		}, func(m *Model) error {
			return m.DeclareAxiom(SubPropertyOf, ancestor, relative)
		}},
		{"through an inverse", func(m *Model) {
			require.NoError(t, m.DeclareAxiom(InverseOf, ancestor, child))
		}, func(m *Model) error {
			return m.DeclareAxiom(PropertyChain, ancestor, parent, child)
		}},
		{"through an equivalent property", func(m *Model) {
			require.NoError(t, m.DeclareAxiom(EquivalentProperty, ancestor, relative))
		}, func(m *Model) error {
			return m.DeclareAxiom(PropertyChain, ancestor, relative, parent)
		}},
		{"through another chain", func(m *Model) {
			require.NoError(t, m.DeclareAxiom(PropertyChain, linked, ancestor, child))
		}, func(m *Model) error {
			return m.DeclareAxiom(PropertyChain, ancestor, linked, parent)
		}},
	}
	for _, test := range rejected {
		t.Run(test.name, func(t *testing.T) {
			m := newModel()
			if test.setup != nil {
				test.setup(m)
			}
			before := m.Compile()
			err := test.declare(m)
			var conflict *AxiomConflictError
			if assert.True(t, errors.As(err, &conflict), "err: %v", err) {
				assert.Contains(t, conflict.Error(), "feeds its own steps")
			}
			after := m.Compile()
			assert.Equal(t, before.Chains(), after.Chains())
			assert.Equal(t, before.Axioms(), after.Axioms())
		})
	}

	accepted := []struct {
		name    string
		declare func(m *Model) error
	}{
		{"composes with itself", func(m *Model) error {
			return m.DeclareAxiom(PropertyChain, ancestor, ancestor, ancestor)
		}},
		{"not recursive", func(m *Model) error {
			return m.DeclareAxiom(PropertyChain, ancestor, parent, parent)
		}},
		{"recursive through the class hierarchy", func(m *Model) error {
			return m.DeclareAxiom(PropertyChain, relative, relative, rdf.SubClassOf)
		}},
		{"chains in sequence", func(m *Model) error {
			require.NoError(t, m.DeclareAxiom(PropertyChain, relative, parent, parent))
			return m.DeclareAxiom(PropertyChain, linked, relative, child)
		}},
	}
	for _, test := range accepted {
		t.Run(test.name, func(t *testing.T) {
			assert.NoError(t, test.declare(newModel()))
		})
	}
}

func Test_HierarchyMemoizesClosures(t *testing.T) {
	m := officeModel(t)
	pen := rdf.IRI("Pen")
	require.NoError(t, m.DeclareClass(pen))
	require.NoError(t, m.DeclareAxiom(SubClassOf, pen, writingTool))
	h := m.hierarchy()
	first := h.superClosure(pen)
	assert.Equal(t, []rdf.Term{officeItem, pen, writingTool}, first)
	assert.Len(t, h.supers, 1)
	assert.Equal(t, first, h.superClosure(pen))
	assert.True(t, h.disjoint(pen, electronicDevice))
	assert.Len(t, h.supers, 2)
	assert.Equal(t, []rdf.Term{electronicDevice, officeItem}, h.supers[electronicDevice])
}

func Test_BiasChain(t *testing.T) {
	m := NewModel()
	for _, c := range []string{"CognitiveBias", "SystematicError", "ConfirmationBias", "Outcome", "SuboptimalDecisions", "DecisionProcess"} {
		require.NoError(t, m.DeclareClass(rdf.IRI(c)))
	}
	exhibits, leadsTo, isProneTo := rdf.IRI("exhibits"), rdf.IRI("leadsTo"), rdf.IRI("isProneTo")
	require.NoError(t, m.DeclareProperty(exhibits, ObjectProperty, Domain(rdf.IRI("DecisionProcess"))))
	require.NoError(t, m.DeclareProperty(leadsTo, ObjectProperty))
	require.NoError(t, m.DeclareProperty(isProneTo, ObjectProperty))
	require.NoError(t, m.DeclareAxiom(SubClassOf, rdf.IRI("ConfirmationBias"), rdf.IRI("SystematicError")))
	require.NoError(t, m.DeclareAxiom(PropertyChain, isProneTo, exhibits, rdf.SubClassOf, leadsTo))
	chains := m.Compile().Chains()
	require.Len(t, chains, 1)
	assert.Equal(t, Chain{Result: isProneTo, Steps: []rdf.Term{exhibits, rdf.SubClassOf, leadsTo}}, chains[0])
	// The chain isn't carried by any triple.
	about := 0
	for _, tr := range m.Compile().Triples() {
		if tr.Subject == isProneTo {
			about++
		}
	}
	assert.Equal(t, 2, about)
}

func Test_ValidateFact(t *testing.T) {
	s := officeModel(t).Compile()
	tests := []struct {
		fact   rdf.Triple
		reason string
	}{
		{rdf.T("John", "uses", "Stapler"), ""},
		{rdf.Triple{Subject: rdf.IRI("John"), Predicate: name, Object: rdf.String("John Smith")}, ""},
		{rdf.Triple{Subject: rdf.IRI("Pen"), Predicate: rdf.Type, Object: writingTool}, ""},
		{rdf.Triple{Subject: rdf.IRI("Pen"), Predicate: rdf.Type, Object: rdf.IRI("Gadget")}, "not a declared class"},
		{rdf.Triple{Subject: rdf.IRI("Pen"), Predicate: rdf.SubClassOf, Object: officeItem}, "declared as axioms"},
		{rdf.T("John", "likes", "Pen"), "not a declared property"},
		{rdf.Triple{Subject: rdf.IRI("John"), Predicate: uses, Object: rdf.String("Pen")}, "requires an IRI object"},
		{rdf.T("John", "name", "Smith"), "requires a literal object"},
		{rdf.Triple{Subject: rdf.String("John"), Predicate: uses, Object: rdf.IRI("Pen")}, "must be an IRI"},
	}
	for _, test := range tests {
		t.Run(test.fact.String(), func(t *testing.T) {
			err := s.ValidateFact(test.fact)
			if test.reason == "" {
				assert.NoError(t, err)
				return
			}
			if assert.IsType(t, &MalformedInputError{}, err) {
				assert.Contains(t, err.Error(), test.reason)
				assert.Contains(t, err.Error(), "malformed fact")
			}
		})
	}
}

func Test_ParseAxiomKind(t *testing.T) {
	k, ok := ParseAxiomKind("disjointclasses")
	assert.True(t, ok)
	assert.Equal(t, DisjointClasses, k)
	_, ok = ParseAxiomKind("SameAs")
	assert.False(t, ok)
	assert.True(t, PropertyChain.Supported())
	assert.False(t, HasSelf.Supported())
	assert.Equal(t, "AxiomKind(99)", AxiomKind(99).String())
}
