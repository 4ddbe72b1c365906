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

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_TermString(t *testing.T) {
	tests := []struct {
		term Term
		exp  string
	}{
		{Any, "?"},
		{IRI("Pen"), "<Pen>"},
		{Type, "rdf:type"},
		{SubClassOf, "rdfs:subClassOf"},
		{String("hello"), `"hello"`},
		{Int(42), `"42"^^xsd:integer`},
		{Literal("x", "http://example.org/dt"), `"x"^^<http://example.org/dt>`},
	}
	for _, test := range tests {
		t.Run(test.exp, func(t *testing.T) {
			assert.Equal(t, test.exp, test.term.String())
		})
	}
}

func Test_TermMatches(t *testing.T) {
	assert := assert.New(t)
	assert.True(Any.Matches(IRI("a")))
	assert.True(Any.Matches(String("a")))
	assert.True(IRI("a").Matches(IRI("a")))
	assert.False(IRI("a").Matches(String("a")))
	assert.False(IRI("a").Matches(IRI("b")))
}

func Test_ExpandCompact(t *testing.T) {
	assert := assert.New(t)
	iri, ok := Expand("owl:disjointWith")
	assert.True(ok)
	assert.Equal(DisjointWith.Value, iri)
	_, ok = Expand("nope:thing")
	assert.False(ok)
	_, ok = Expand("noprefix")
	assert.False(ok)
	q, ok := Compact(SubPropertyOf.Value)
	assert.True(ok)
	assert.Equal("rdfs:subPropertyOf", q)
}

func Test_ResolveIRI(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(Type, ResolveIRI("rdf:type"))
	assert.Equal(IRI("http://example.com/x"), ResolveIRI(" <http://example.com/x> "))
	assert.Equal(IRI("ConfirmationBias"), ResolveIRI("ConfirmationBias"))
	assert.Equal(IRI("ex:thing"), ResolveIRI("ex:thing"))
}

func Test_TripleValidate(t *testing.T) {
	assert := assert.New(t)
	assert.NoError(T("John", "uses", "Stapler").Validate())
	assert.NoError(Triple{IRI("John"), IRI("name"), String("John")}.Validate())
	assert.Error(Triple{Any, IRI("uses"), IRI("Stapler")}.Validate())
	assert.Error(Triple{String("John"), IRI("uses"), IRI("Stapler")}.Validate())
	assert.Error(Triple{IRI("John"), String("uses"), IRI("Stapler")}.Validate())
}

func Test_TripleLessIsTotal(t *testing.T) {
	triples := []Triple{
		T("b", "p", "x"),
		T("a", "q", "x"),
		T("a", "p", "y"),
		{IRI("a"), IRI("p"), String("x")},
		T("a", "p", "x"),
	}
	sort.Slice(triples, func(i, j int) bool { return triples[i].Less(triples[j]) })
	assert.Equal(t, []Triple{
		T("a", "p", "x"),
		T("a", "p", "y"),
		{IRI("a"), IRI("p"), String("x")},
		T("a", "q", "x"),
		T("b", "p", "x"),
	}, triples)
}

func Test_LocalName(t *testing.T) {
	assert.Equal(t, "type", Type.LocalName())
	assert.Equal(t, "Pen", IRI("http://example.org/office#Pen").LocalName())
	assert.Equal(t, "Pen", IRI("Pen").LocalName())
}
