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

package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/i-d-lytvynenko/kg-inference/rdf"
	"github.com/i-d-lytvynenko/kg-inference/rules"
	"github.com/i-d-lytvynenko/kg-inference/store"
	opentracing "github.com/opentracing/opentracing-go"
)

// ErrNotInGraph is returned (wrapped) when explaining a triple that the graph
// doesn't hold.
var ErrNotInGraph = errors.New("triple is not in the graph")

// Explanation says where a single triple came from.
type Explanation struct {
	Triple rdf.Triple
	// Asserted is true for base facts and schema triples. The remaining
	// fields are only set for derived triples.
	Asserted bool
	Rule     rules.ID
	// Round is the saturation round in which the triple was first derived.
	Round int
	// Premises are the triples that fired Rule, in the order the rule lists
	// them.
	Premises []rdf.Triple
}

func (e *Explanation) String() string {
	if e.Asserted {
		return fmt.Sprintf("%v: asserted", e.Triple)
	}
	return fmt.Sprintf("%v: derived by %v in round %d from %v", e.Triple, e.Rule, e.Round, e.Premises)
}

// Explain returns how the graph came to hold t.
func (g *Graph) Explain(t rdf.Triple) (*Explanation, error) {
	id, ok := g.snap.Lookup(t)
	if !ok || !g.snap.ContainsID(id) {
		return nil, fmt.Errorf("can't explain %v: %w", t, ErrNotInGraph)
	}
	return g.explain(id), nil
}

func (g *Graph) explain(id store.IDTriple) *Explanation {
	rec, derived := g.result.Derivations[id]
	if !derived {
		return &Explanation{Triple: g.snap.Triple(id), Asserted: true}
	}
	return &Explanation{
		Triple:   g.snap.Triple(id),
		Rule:     rec.Rule,
		Round:    rec.Round,
		Premises: g.triples(rec.Premises),
	}
}

// ExplanationTree is an explanation with each premise explained in turn, down
// to asserted triples. Premises derived along more than one path share a
// single subtree, so the tree may be a DAG.
type ExplanationTree struct {
	Explanation
	// Children has one entry per premise, in the same order.
	Children []*ExplanationTree
}

// ExplainTree returns the full derivation of t. It always terminates, since
// every derivation only uses triples concluded in earlier rounds.
func (g *Graph) ExplainTree(ctx context.Context, t rdf.Triple) (*ExplanationTree, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "explain tree")
	defer span.Finish()
	id, ok := g.snap.Lookup(t)
	if !ok || !g.snap.ContainsID(id) {
		return nil, fmt.Errorf("can't explain %v: %w", t, ErrNotInGraph)
	}
	memo := make(map[store.IDTriple]*ExplanationTree)
	var build func(id store.IDTriple) *ExplanationTree
	build = func(id store.IDTriple) *ExplanationTree {
		if tree, ok := memo[id]; ok {
			return tree
		}
		tree := &ExplanationTree{Explanation: *g.explain(id)}
		memo[id] = tree
		if rec, derived := g.result.Derivations[id]; derived {
			tree.Children = make([]*ExplanationTree, len(rec.Premises))
			for i, p := range rec.Premises {
				tree.Children[i] = build(p)
			}
		}
		return tree
	}
	tree := build(id)
	span.SetTag("nodes", len(memo))
	return tree, nil
}

// Walk calls fn on every distinct node of the tree, parents before their
// children. Walk doesn't descend into the children of a node when fn returns
// false.
func (tree *ExplanationTree) Walk(fn func(*ExplanationTree) bool) {
	seen := make(map[*ExplanationTree]struct{})
	var walk func(*ExplanationTree)
	walk = func(node *ExplanationTree) {
		if _, ok := seen[node]; ok {
			return
		}
		seen[node] = struct{}{}
		if !fn(node) {
			return
		}
		for _, c := range node.Children {
			walk(c)
		}
	}
	walk(tree)
}

// Leaves returns the asserted triples the tree rests on, in triple order.
func (tree *ExplanationTree) Leaves() []rdf.Triple {
	var res []rdf.Triple
	tree.Walk(func(node *ExplanationTree) bool {
		if node.Asserted {
			res = append(res, node.Triple)
		}
		return true
	})
	sort.Slice(res, func(i, j int) bool {
		return res[i].Less(res[j])
	})
	return res
}

// Depth returns the length of the longest path from the root to a leaf,
// counting the root. An asserted triple has depth 1.
func (tree *ExplanationTree) Depth() int {
	depth := make(map[*ExplanationTree]int)
	var measure func(*ExplanationTree) int
	measure = func(node *ExplanationTree) int {
		if d, ok := depth[node]; ok {
			return d
		}
		d := 0
		for _, c := range node.Children {
			if cd := measure(c); cd > d {
				d = cd
			}
		}
		depth[node] = d + 1
		return d + 1
	}
	return measure(tree)
}
