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

package rules

import (
	"sort"
	"testing"

	"github.com/i-d-lytvynenko/kg-inference/rdf"
	"github.com/i-d-lytvynenko/kg-inference/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fact(s string, p interface{}, o interface{}) rdf.Triple {
	t := rdf.Triple{Subject: rdf.IRI(s)}
	switch p := p.(type) {
	case string:
		t.Predicate = rdf.IRI(p)
	case rdf.Term:
		t.Predicate = p
	}
	switch o := o.(type) {
	case string:
		t.Object = rdf.IRI(o)
	case rdf.Term:
		t.Object = o
	}
	return t
}

type fixture struct {
	st  *store.Store
	ctx *Context
}

func newFixture(t *testing.T, chains [][]string, facts ...rdf.Triple) *fixture {
	st := store.New()
	for _, f := range facts {
		_, err := st.Insert(f)
		require.NoError(t, err)
	}
	var resolved []Chain
	for _, c := range chains {
		ids := make([]store.ID, len(c))
		for i, name := range c {
			ids[i] = st.Intern(rdf.ResolveIRI(name))
		}
		resolved = append(resolved, Chain{Result: ids[0], Steps: ids[1:]})
	}
	return &fixture{st: st, ctx: NewContext(st, resolved)}
}

func (f *fixture) fire(t *testing.T, id ID, delta rdf.Triple) *Output {
	r, ok := Lookup(id)
	require.True(t, ok, "rule %v", id)
	d, ok := f.st.Lookup(delta)
	require.True(t, ok, "delta %v must be in the store", delta)
	out := NewOutput(f.ctx)
	r.Fire(f.ctx, d, out)
	return out
}

func (f *fixture) conclusions(out *Output) []string {
	var res []string
	for _, d := range out.Derivations {
		res = append(res, f.st.Triple(d.Conclusion).String())
	}
	sort.Strings(res)
	return res
}

func (f *fixture) triples(ids []store.IDTriple) []rdf.Triple {
	res := make([]rdf.Triple, len(ids))
	for i, t := range ids {
		res[i] = f.st.Triple(t)
	}
	return res
}

func strs(triples ...rdf.Triple) []string {
	var res []string
	for _, t := range triples {
		res = append(res, t.String())
	}
	sort.Strings(res)
	return res
}

func Test_Derivations(t *testing.T) {
	tests := []struct {
		rule   ID
		chains [][]string
		facts  []rdf.Triple
		delta  int
		exp    []rdf.Triple
	}{
		{SubClassTransitivity, nil, []rdf.Triple{
			fact("A", rdf.SubClassOf, "B"), fact("B", rdf.SubClassOf, "C"),
		}, 0, []rdf.Triple{fact("A", rdf.SubClassOf, "C")}},
		{SubClassTransitivity, nil, []rdf.Triple{
			fact("A", rdf.SubClassOf, "B"), fact("B", rdf.SubClassOf, "C"),
		}, 1, []rdf.Triple{fact("A", rdf.SubClassOf, "C")}},
		{SubClassTransitivity, nil, []rdf.Triple{
			fact("A", rdf.SubClassOf, "A"), fact("A", rdf.SubClassOf, "C"),
		}, 0, nil},
		{SubClassTypePropagation, nil, []rdf.Triple{
			fact("Pen", rdf.Type, "WritingTool"), fact("WritingTool", rdf.SubClassOf, "OfficeItem"),
		}, 0, []rdf.Triple{fact("Pen", rdf.Type, "OfficeItem")}},
		{SubClassTypePropagation, nil, []rdf.Triple{
			fact("Pen", rdf.Type, "WritingTool"), fact("WritingTool", rdf.SubClassOf, "OfficeItem"),
		}, 1, []rdf.Triple{fact("Pen", rdf.Type, "OfficeItem")}},
		{SubPropertyTransitivity, nil, []rdf.Triple{
			fact("owns", rdf.SubPropertyOf, "uses"), fact("uses", rdf.SubPropertyOf, "relatesTo"),
		}, 1, []rdf.Triple{fact("owns", rdf.SubPropertyOf, "relatesTo")}},
		{SubPropertyFactPropagation, nil, []rdf.Triple{
			fact("John", "owns", "Pen"), fact("owns", rdf.SubPropertyOf, "uses"),
		}, 0, []rdf.Triple{fact("John", "uses", "Pen")}},
		{SubPropertyFactPropagation, nil, []rdf.Triple{
			fact("John", "owns", "Pen"), fact("owns", rdf.SubPropertyOf, "uses"),
		}, 1, []rdf.Triple{fact("John", "uses", "Pen")}},
		{DomainTyping, nil, []rdf.Triple{
			fact("John", "uses", "Stapler"), fact("uses", rdf.Domain, "Person"),
		}, 0, []rdf.Triple{fact("John", rdf.Type, "Person")}},
		{DomainTyping, nil, []rdf.Triple{
			fact("John", "uses", "Stapler"), fact("uses", rdf.Domain, "Person"),
		}, 1, []rdf.Triple{fact("John", rdf.Type, "Person")}},
		{RangeTyping, nil, []rdf.Triple{
			fact("John", "uses", "Stapler"), fact("uses", rdf.Range, "OfficeItem"),
		}, 0, []rdf.Triple{fact("Stapler", rdf.Type, "OfficeItem")}},
		{RangeTyping, nil, []rdf.Triple{
			fact("John", "uses", "Stapler"), fact("uses", rdf.Range, "OfficeItem"),
		}, 1, []rdf.Triple{fact("Stapler", rdf.Type, "OfficeItem")}},
		{RangeTyping, nil, []rdf.Triple{
			fact("John", "name", rdf.String("John Smith")), fact("name", rdf.Range, rdf.IRI(rdf.XSDString)),
		}, 0, nil},
		{SymmetricProperty, nil, []rdf.Triple{
			fact("John", "knows", "Mary"), fact("knows", rdf.Type, rdf.SymmetricProperty),
		}, 0, []rdf.Triple{fact("Mary", "knows", "John")}},
		{SymmetricProperty, nil, []rdf.Triple{
			fact("John", "knows", "Mary"), fact("knows", rdf.Type, rdf.SymmetricProperty),
		}, 1, []rdf.Triple{fact("Mary", "knows", "John")}},
		{SymmetricProperty, nil, []rdf.Triple{
			fact("John", "knows", "Mary"), fact("Mary", "knows", "John"), fact("knows", rdf.Type, rdf.SymmetricProperty),
		}, 0, nil},
		{InverseProperty, nil, []rdf.Triple{
			fact("Ann", "parentOf", "Bob"), fact("parentOf", rdf.InverseOf, "childOf"),
		}, 0, []rdf.Triple{fact("Bob", "childOf", "Ann")}},
		{InverseProperty, nil, []rdf.Triple{
			fact("Bob", "childOf", "Ann"), fact("parentOf", rdf.InverseOf, "childOf"),
		}, 0, []rdf.Triple{fact("Ann", "parentOf", "Bob")}},
		{InverseProperty, nil, []rdf.Triple{
			fact("Ann", "parentOf", "Bob"), fact("Cat", "childOf", "Dan"), fact("parentOf", rdf.InverseOf, "childOf"),
		}, 2, []rdf.Triple{fact("Bob", "childOf", "Ann"), fact("Dan", "parentOf", "Cat")}},
		{TransitiveProperty, nil, []rdf.Triple{
			fact("Key", "partOf", "Keyboard"), fact("Keyboard", "partOf", "Laptop"), fact("partOf", rdf.Type, rdf.TransitiveProperty),
		}, 0, []rdf.Triple{fact("Key", "partOf", "Laptop")}},
		{TransitiveProperty, nil, []rdf.Triple{
			fact("Key", "partOf", "Keyboard"), fact("Keyboard", "partOf", "Laptop"), fact("partOf", rdf.Type, rdf.TransitiveProperty),
		}, 1, []rdf.Triple{fact("Key", "partOf", "Laptop")}},
		{TransitiveProperty, nil, []rdf.Triple{
			fact("Key", "partOf", "Keyboard"), fact("Keyboard", "partOf", "Laptop"), fact("partOf", rdf.Type, rdf.TransitiveProperty),
		}, 2, []rdf.Triple{fact("Key", "partOf", "Laptop")}},
		{TransitiveProperty, nil, []rdf.Triple{
			fact("Key", "partOf", "Keyboard"), fact("Keyboard", "partOf", "Laptop"),
		}, 0, nil},
		{EquivalentClass, nil, []rdf.Triple{
			fact("Human", rdf.EquivalentClass, "Person"),
		}, 0, []rdf.Triple{fact("Human", rdf.SubClassOf, "Person"), fact("Person", rdf.SubClassOf, "Human")}},
		{EquivalentClassClosure, nil, []rdf.Triple{
			fact("Human", rdf.EquivalentClass, "Person"), fact("Person", rdf.EquivalentClass, "Individual"),
		}, 0, []rdf.Triple{fact("Person", rdf.EquivalentClass, "Human"), fact("Human", rdf.EquivalentClass, "Individual")}},
		{EquivalentClassClosure, nil, []rdf.Triple{
			fact("Human", rdf.EquivalentClass, "Person"), fact("Person", rdf.EquivalentClass, "Human"),
		}, 0, nil},
		{EquivalentProperty, nil, []rdf.Triple{
			fact("uses", rdf.EquivalentProperty, "employs"),
		}, 0, []rdf.Triple{fact("uses", rdf.SubPropertyOf, "employs"), fact("employs", rdf.SubPropertyOf, "uses")}},
		{SubClassTransitivity, nil, []rdf.Triple{
			fact("John", "uses", "Pen"),
		}, 0, nil},
	}
	for _, test := range tests {
		t.Run(string(test.rule), func(t *testing.T) {
			f := newFixture(t, test.chains, test.facts...)
			out := f.fire(t, test.rule, test.facts[test.delta])
			assert.Equal(t, strs(test.exp...), f.conclusions(out))
			assert.Empty(t, out.Violations)
			for _, d := range out.Derivations {
				assert.Equal(t, test.rule, d.Rule)
				assert.Contains(t, d.Premises, mustLookup(t, f, test.facts[test.delta]))
			}
		})
	}
}

func mustLookup(t *testing.T, f *fixture, tr rdf.Triple) store.IDTriple {
	id, ok := f.st.Lookup(tr)
	require.True(t, ok)
	return id
}

func Test_PropertyChain(t *testing.T) {
	facts := []rdf.Triple{
		fact("DecisionProcessD", "exhibits", "ConfirmationBias"),
		fact("ConfirmationBias", rdf.SubClassOf, "SystematicError"),
		fact("SystematicError", "leadsTo", "SuboptimalDecisions"),
		fact("SystematicError", "leadsTo", "Overconfidence"),
	}
	chains := [][]string{{"isProneTo", "exhibits", "rdfs:subClassOf", "leadsTo"}}
	both := strs(
		fact("DecisionProcessD", "isProneTo", "SuboptimalDecisions"),
		fact("DecisionProcessD", "isProneTo", "Overconfidence"),
	)
	exp := [][]string{both, both, strs(fact("DecisionProcessD", "isProneTo", "SuboptimalDecisions"))}
	for delta := 0; delta < 3; delta++ {
		f := newFixture(t, chains, facts...)
		out := f.fire(t, PropertyChain, facts[delta])
		assert.Equal(t, exp[delta], f.conclusions(out), "delta %v", facts[delta])
		for _, d := range out.Derivations {
			if f.st.Triple(d.Conclusion).Object == rdf.IRI("SuboptimalDecisions") {
				assert.Equal(t, facts[:3], f.triples(d.Premises))
			}
		}
	}
	f := newFixture(t, chains, facts...)
	assert.Empty(t, f.fire(t, PropertyChain, facts[0]).Violations)
	f = newFixture(t, nil, facts...)
	assert.Empty(t, f.fire(t, PropertyChain, facts[0]).Derivations)
}

func Test_PropertyChainRepeatedStep(t *testing.T) {
	facts := []rdf.Triple{
		fact("Ann", "parentOf", "Bob"),
		fact("Bob", "parentOf", "Cat"),
	}
	chains := [][]string{{"grandparentOf", "parentOf", "parentOf"}}
	for _, delta := range facts {
		f := newFixture(t, chains, facts...)
		out := f.fire(t, PropertyChain, delta)
		assert.Equal(t, strs(fact("Ann", "grandparentOf", "Cat")), f.conclusions(out))
		assert.Equal(t, facts, f.triples(out.Derivations[0].Premises))
	}
}

func Test_DisjointCheck(t *testing.T) {
	facts := []rdf.Triple{
		fact("Pen", rdf.Type, "WritingTool"),
		fact("Pen", rdf.Type, "ElectronicDevice"),
		fact("WritingTool", rdf.DisjointWith, "ElectronicDevice"),
		fact("Pencil", rdf.Type, "WritingTool"),
	}
	for _, delta := range facts[:3] {
		f := newFixture(t, nil, facts...)
		out := f.fire(t, DisjointCheck, delta)
		assert.Empty(t, out.Derivations)
		if assert.Len(t, out.Violations, 1, "delta %v", delta) {
			v := out.Violations[0]
			assert.Equal(t, DisjointCheck, v.Rule)
			assert.Equal(t, rdf.IRI("Pen"), f.st.Dict().Term(v.Subject))
			assert.Equal(t, store.Wildcard, v.Property)
			assert.True(t, v.Values[0] < v.Values[1])
			assert.ElementsMatch(t, []rdf.Term{rdf.IRI("WritingTool"), rdf.IRI("ElectronicDevice")},
				[]rdf.Term{f.st.Dict().Term(v.Values[0]), f.st.Dict().Term(v.Values[1])})
			assert.ElementsMatch(t, facts[:3], f.triples(v.Premises))
			assert.Equal(t, facts[2], f.triples(v.Premises)[2])
		}
	}
	f := newFixture(t, nil, facts...)
	assert.Empty(t, f.fire(t, DisjointCheck, facts[3]).Violations)
}

func Test_FunctionalChecks(t *testing.T) {
	functional := []rdf.Triple{
		fact("John", "hasMother", "Mary"),
		fact("John", "hasMother", "Ann"),
		fact("hasMother", rdf.Type, rdf.FunctionalProperty),
	}
	for _, delta := range functional {
		f := newFixture(t, nil, functional...)
		out := f.fire(t, FunctionalCheck, delta)
		if assert.Len(t, out.Violations, 1, "delta %v", delta) {
			v := out.Violations[0]
			assert.Equal(t, rdf.IRI("John"), f.st.Dict().Term(v.Subject))
			assert.Equal(t, rdf.IRI("hasMother"), f.st.Dict().Term(v.Property))
			assert.ElementsMatch(t, functional, f.triples(v.Premises))
		}
	}
	inverseFunctional := []rdf.Triple{
		fact("John", "hasEmail", "mailto:j@example.com"),
		fact("Johnny", "hasEmail", "mailto:j@example.com"),
		fact("hasEmail", rdf.Type, rdf.InverseFunctionalProperty),
	}
	for _, delta := range inverseFunctional {
		f := newFixture(t, nil, inverseFunctional...)
		out := f.fire(t, InverseFunctionalCheck, delta)
		if assert.Len(t, out.Violations, 1, "delta %v", delta) {
			v := out.Violations[0]
			assert.Equal(t, rdf.IRI("mailto:j@example.com"), f.st.Dict().Term(v.Subject))
			assert.ElementsMatch(t, []rdf.Term{rdf.IRI("John"), rdf.IRI("Johnny")},
				[]rdf.Term{f.st.Dict().Term(v.Values[0]), f.st.Dict().Term(v.Values[1])})
		}
	}
	f := newFixture(t, nil, functional[:2]...)
	assert.Empty(t, f.fire(t, FunctionalCheck, functional[0]).Violations)
}

func Test_OutputFilters(t *testing.T) {
	f := newFixture(t, nil,
		fact("Pen", rdf.Type, "WritingTool"),
		fact("WritingTool", rdf.SubClassOf, "OfficeItem"),
		fact("Pen", rdf.Type, "OfficeItem"),
	)
	// Already known.
	assert.Empty(t, f.fire(t, SubClassTypePropagation, fact("Pen", rdf.Type, "WritingTool")).Derivations)

	out := NewOutput(f.ctx)
	out.rule = SubClassTypePropagation
	lit := f.st.Intern(rdf.String("x"))
	out.derive(store.IDTriple{S: lit, P: store.IDType, O: lit})
	assert.Empty(t, out.Derivations)
	out.violation(1, 2, 4, 3)
	assert.Equal(t, [2]store.ID{3, 4}, out.Violations[0].Values)
	out.Reset()
	assert.Empty(t, out.Violations)
}

func Test_CatalogueIsComplete(t *testing.T) {
	seen := make(map[ID]bool)
	for _, r := range Catalogue {
		assert.False(t, seen[r.ID], "duplicate rule %v", r.ID)
		seen[r.ID] = true
		assert.NotNil(t, r.fire)
		assert.Contains(t, r.String(), string(r.ID))
	}
	assert.Len(t, Catalogue, 16)
	_, ok := Lookup("no-such-rule")
	assert.False(t, ok)
}
