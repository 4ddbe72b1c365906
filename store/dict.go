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

package store

import (
	"fmt"

	"github.com/i-d-lytvynenko/kg-inference/rdf"
)

// ID is the dense identifier the store assigns to each distinct term. ID 0 is
// never assigned; in a lookup it means "any term".
type ID uint64

// Wildcard is the ID used in a lookup for a position that isn't bound.
const Wildcard ID = 0

// The IDs of the rule engine's vocabulary. Every Dict interns rdf.Vocabulary
// first, in order, so these are the same in every store.
const (
	IDType ID = iota + 1
	IDSubClassOf
	IDSubPropertyOf
	IDDomain
	IDRange
	IDClass
	IDObjectProperty
	IDDatatypeProperty
	IDEquivalentClass
	IDEquivalentProperty
	IDDisjointWith
	IDInverseOf
	IDTransitiveProperty
	IDSymmetricProperty
	IDFunctionalProperty
	IDInverseFunctionalProperty
)

// Dict maps terms to IDs and back. It's append only.
type Dict struct {
	terms []rdf.Term // indexed by ID; terms[0] is unused
	ids   map[rdf.Term]ID
}

// NewDict returns a Dict that already contains the vocabulary.
func NewDict() *Dict {
	d := &Dict{
		terms: make([]rdf.Term, 1, len(rdf.Vocabulary)+64),
		ids:   make(map[rdf.Term]ID, len(rdf.Vocabulary)+64),
	}
	for i, t := range rdf.Vocabulary {
		id := d.Intern(t)
		if id != ID(i+1) {
			panic(fmt.Sprintf("vocabulary term %v interned as %d, expected %d", t, id, i+1))
		}
	}
	return d
}

// Intern returns the ID for the term, assigning a new one if needed.
func (d *Dict) Intern(t rdf.Term) ID {
	if id, exists := d.ids[t]; exists {
		return id
	}
	id := ID(len(d.terms))
	d.terms = append(d.terms, t)
	d.ids[t] = id
	return id
}

// Lookup returns the ID of the term if it's known.
func (d *Dict) Lookup(t rdf.Term) (ID, bool) {
	id, exists := d.ids[t]
	return id, exists
}

// Term returns the term for the ID. It panics if the ID was never assigned.
func (d *Dict) Term(id ID) rdf.Term {
	if id == Wildcard || int(id) >= len(d.terms) {
		panic(fmt.Sprintf("store.Dict: unknown term ID %d", id))
	}
	return d.terms[id]
}

// IsLiteral returns true if the ID refers to a literal term.
func (d *Dict) IsLiteral(id ID) bool {
	return d.Term(id).IsLiteral()
}

// Len returns the number of terms in the dictionary, including the vocabulary.
func (d *Dict) Len() int {
	return len(d.terms) - 1
}

func (d *Dict) clone() *Dict {
	c := &Dict{
		terms: make([]rdf.Term, len(d.terms), cap(d.terms)),
		ids:   make(map[rdf.Term]ID, len(d.ids)),
	}
	copy(c.terms, d.terms)
	for t, id := range d.ids {
		c.ids[t] = id
	}
	return c
}
