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
	"github.com/i-d-lytvynenko/kg-inference/rdf"
)

// Seq is a lazy, restartable sequence of triples. Calling it iterates the
// sequence from the start; iteration stops early if yield returns false.
type Seq func(yield func(rdf.Triple) bool)

// Collect returns all the triples in the sequence.
func (s Seq) Collect() []rdf.Triple {
	var res []rdf.Triple
	s(func(t rdf.Triple) bool {
		res = append(res, t)
		return true
	})
	return res
}

// Count returns the number of triples in the sequence.
func (s Seq) Count() int {
	n := 0
	s(func(rdf.Triple) bool {
		n++
		return true
	})
	return n
}

// First returns the first triple in the sequence, if there is one.
func (s Seq) First() (rdf.Triple, bool) {
	var first rdf.Triple
	found := false
	s(func(t rdf.Triple) bool {
		first, found = t, true
		return false
	})
	return first, found
}

// Limit returns a sequence of at most n triples from s. A limit <= 0 means no
// limit.
func (s Seq) Limit(n int) Seq {
	if n <= 0 {
		return s
	}
	return func(yield func(rdf.Triple) bool) {
		count := 0
		s(func(t rdf.Triple) bool {
			count++
			return yield(t) && count < n
		})
	}
}
