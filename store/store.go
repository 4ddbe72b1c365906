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

// Package store is an append-only, in-memory triple store. Terms are interned
// into dense IDs, and each triple is held in three ordered indexes (SPO, POS and
// OSP) so that a lookup with any combination of bound positions is a single
// range scan. A hash set backs exact membership tests and de-duplication.
//
// A Store is built by a single goroutine. Once Frozen it becomes a Snapshot,
// which is immutable and safe for any number of concurrent readers.
package store

import (
	"errors"

	"github.com/google/btree"
	"github.com/i-d-lytvynenko/kg-inference/rdf"
)

// ErrFrozen is returned when inserting into a store that has been frozen.
var ErrFrozen = errors.New("store: insert into frozen store")

// IDTriple is a triple of term IDs, as held in the indexes.
type IDTriple struct {
	S ID
	P ID
	O ID
}

// degree of the btree indexes.
const degree = 32

// Reader is the read side of a store, shared by Store and Snapshot. The rule
// engine only needs this.
type Reader interface {
	// MatchIDs calls fn with every triple matching the pattern, where Wildcard
	// matches anything. Iteration stops early if fn returns false.
	MatchIDs(s, p, o ID, fn func(IDTriple) bool)
	// ContainsID returns true if the triple is in the store.
	ContainsID(t IDTriple) bool
	// Dict returns the store's term dictionary.
	Dict() *Dict
}

// indexes holds the data shared by Store and Snapshot.
type indexes struct {
	dict *Dict
	spo  *btree.BTree
	pos  *btree.BTree
	osp  *btree.BTree
	set  map[IDTriple]struct{}
}

func newIndexes() *indexes {
	return &indexes{
		dict: NewDict(),
		spo:  btree.New(degree),
		pos:  btree.New(degree),
		osp:  btree.New(degree),
		set:  make(map[IDTriple]struct{}),
	}
}

func (x *indexes) Dict() *Dict {
	return x.dict
}

// Len returns the number of triples held.
func (x *indexes) Len() int {
	return len(x.set)
}

func (x *indexes) ContainsID(t IDTriple) bool {
	_, exists := x.set[t]
	return exists
}

// Contains returns true if the triple is in the store.
func (x *indexes) Contains(t rdf.Triple) bool {
	id, ok := x.Lookup(t)
	return ok && x.ContainsID(id)
}

// Lookup converts the triple to IDs. It returns false if any of its terms
// have never been interned, in which case the triple can't be in the store.
func (x *indexes) Lookup(t rdf.Triple) (IDTriple, bool) {
	s, sok := x.dict.Lookup(t.Subject)
	p, pok := x.dict.Lookup(t.Predicate)
	o, ook := x.dict.Lookup(t.Object)
	return IDTriple{S: s, P: p, O: o}, sok && pok && ook
}

// Triple converts an ID triple back into terms.
func (x *indexes) Triple(t IDTriple) rdf.Triple {
	return rdf.Triple{
		Subject:   x.dict.Term(t.S),
		Predicate: x.dict.Term(t.P),
		Object:    x.dict.Term(t.O),
	}
}

func (x *indexes) MatchIDs(s, p, o ID, fn func(IDTriple) bool) {
	switch {
	case s != Wildcard && p != Wildcard && o != Wildcard:
		t := IDTriple{S: s, P: p, O: o}
		if x.ContainsID(t) {
			fn(t)
		}
	case s != Wildcard && p != Wildcard:
		x.spo.AscendGreaterOrEqual(spoItem{S: s, P: p}, func(i btree.Item) bool {
			t := IDTriple(i.(spoItem))
			return t.S == s && t.P == p && fn(t)
		})
	case s != Wildcard && o != Wildcard:
		x.osp.AscendGreaterOrEqual(ospItem{O: o, S: s}, func(i btree.Item) bool {
			t := IDTriple(i.(ospItem))
			return t.O == o && t.S == s && fn(t)
		})
	case s != Wildcard:
		x.spo.AscendGreaterOrEqual(spoItem{S: s}, func(i btree.Item) bool {
			t := IDTriple(i.(spoItem))
			return t.S == s && fn(t)
		})
	case p != Wildcard && o != Wildcard:
		x.pos.AscendGreaterOrEqual(posItem{P: p, O: o}, func(i btree.Item) bool {
			t := IDTriple(i.(posItem))
			return t.P == p && t.O == o && fn(t)
		})
	case p != Wildcard:
		x.pos.AscendGreaterOrEqual(posItem{P: p}, func(i btree.Item) bool {
			t := IDTriple(i.(posItem))
			return t.P == p && fn(t)
		})
	case o != Wildcard:
		x.osp.AscendGreaterOrEqual(ospItem{O: o}, func(i btree.Item) bool {
			t := IDTriple(i.(ospItem))
			return t.O == o && fn(t)
		})
	default:
		x.spo.Ascend(func(i btree.Item) bool {
			return fn(IDTriple(i.(spoItem)))
		})
	}
}

// Match returns the sequence of triples matching the pattern, where rdf.Any
// matches anything. The sequence is evaluated lazily each time it's iterated.
func (x *indexes) Match(s, p, o rdf.Term) Seq {
	return func(yield func(rdf.Triple) bool) {
		var ids [3]ID
		for i, term := range [3]rdf.Term{s, p, o} {
			if term.IsAny() {
				continue
			}
			id, known := x.dict.Lookup(term)
			if !known {
				return
			}
			ids[i] = id
		}
		x.MatchIDs(ids[0], ids[1], ids[2], func(t IDTriple) bool {
			return yield(x.Triple(t))
		})
	}
}

// Store is a triple store that's still being built. It's not safe for
// concurrent use while it's being written to; concurrent reads are fine
// while no writes are happening.
type Store struct {
	*indexes
	frozen bool
}

// New returns an empty Store.
func New() *Store {
	return &Store{indexes: newIndexes()}
}

// Intern returns the ID for the term, adding it to the dictionary if needed.
func (s *Store) Intern(t rdf.Term) ID {
	return s.dict.Intern(t)
}

// Insert adds the triple. It returns true if the triple was not already in
// the store.
func (s *Store) Insert(t rdf.Triple) (bool, error) {
	if s.frozen {
		return false, ErrFrozen
	}
	if err := t.Validate(); err != nil {
		return false, err
	}
	return s.InsertID(IDTriple{
		S: s.dict.Intern(t.Subject),
		P: s.dict.Intern(t.Predicate),
		O: s.dict.Intern(t.Object),
	})
}

// InsertID adds a triple whose terms have already been interned. It returns
// true if the triple was not already in the store.
func (s *Store) InsertID(t IDTriple) (bool, error) {
	if s.frozen {
		return false, ErrFrozen
	}
	if _, exists := s.set[t]; exists {
		return false, nil
	}
	s.set[t] = struct{}{}
	s.spo.ReplaceOrInsert(spoItem(t))
	s.pos.ReplaceOrInsert(posItem(t))
	s.osp.ReplaceOrInsert(ospItem(t))
	return true, nil
}

// Freeze ends the build of this store and returns an immutable Snapshot of
// it. Subsequent inserts into s fail with ErrFrozen.
func (s *Store) Freeze() *Snapshot {
	s.frozen = true
	return &Snapshot{indexes: s.indexes}
}

// Snapshot is an immutable triple store. It's safe for concurrent use.
type Snapshot struct {
	*indexes
}

// Thaw returns a new Store that starts with the contents of the snapshot. The
// indexes are shared copy-on-write, so the snapshot is unaffected by writes
// to the returned store. Thaw must not be called concurrently on the same
// Snapshot.
func (s *Snapshot) Thaw() *Store {
	set := make(map[IDTriple]struct{}, len(s.set))
	for t := range s.set {
		set[t] = struct{}{}
	}
	return &Store{
		indexes: &indexes{
			dict: s.dict.clone(),
			spo:  s.spo.Clone(),
			pos:  s.pos.Clone(),
			osp:  s.osp.Clone(),
			set:  set,
		},
	}
}

type spoItem IDTriple
type posItem IDTriple
type ospItem IDTriple

func (a spoItem) Less(other btree.Item) bool {
	b := other.(spoItem)
	return less3(a.S, a.P, a.O, b.S, b.P, b.O)
}

func (a posItem) Less(other btree.Item) bool {
	b := other.(posItem)
	return less3(a.P, a.O, a.S, b.P, b.O, b.S)
}

func (a ospItem) Less(other btree.Item) bool {
	b := other.(ospItem)
	return less3(a.O, a.S, a.P, b.O, b.S, b.P)
}

func less3(a1, a2, a3, b1, b2, b3 ID) bool {
	if a1 != b1 {
		return a1 < b1
	}
	if a2 != b2 {
		return a2 < b2
	}
	return a3 < b3
}
