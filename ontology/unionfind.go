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

// unionFind partitions classes into equivalence sets. The representative of
// a set is always its least member, so it doesn't depend on the order of the
// unions.
type unionFind struct {
	parent map[rdf.Term]rdf.Term
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[rdf.Term]rdf.Term)}
}

func (u *unionFind) find(x rdf.Term) rdf.Term {
	for {
		p, exists := u.parent[x]
		if !exists || p == x {
			return x
		}
		// path halving
		if gp, exists := u.parent[p]; exists {
			u.parent[x] = gp
		}
		x = p
	}
}

func (u *unionFind) union(a, b rdf.Term) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if rb.Less(ra) {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	u.parent[ra] = ra
}

func (u *unionFind) same(a, b rdf.Term) bool {
	return u.find(a) == u.find(b)
}

func (u *unionFind) clone() *unionFind {
	c := &unionFind{parent: make(map[rdf.Term]rdf.Term, len(u.parent))}
	for k, v := range u.parent {
		c.parent[k] = v
	}
	return c
}
