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
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/i-d-lytvynenko/kg-inference/rdf"
	"github.com/i-d-lytvynenko/kg-inference/rules"
	"github.com/i-d-lytvynenko/kg-inference/store"
)

// Stats summarizes the contents of a graph.
type Stats struct {
	Version    uint64
	Triples    int
	Asserted   int
	Derived    int
	Violations int
	Rounds     int
	// Predicates counts triples per predicate, most frequent first.
	Predicates []PredicateCount
	// Rules counts derived triples per rule, most frequent first.
	Rules []RuleCount
}

// PredicateCount is the number of triples using a predicate.
type PredicateCount struct {
	Predicate rdf.Term
	Asserted  int
	Derived   int
}

// Total returns the number of triples with the predicate.
func (c PredicateCount) Total() int {
	return c.Asserted + c.Derived
}

// RuleCount is the number of triples a rule derived.
type RuleCount struct {
	Rule    rules.ID
	Derived int
}

type statsCache struct {
	once  sync.Once
	stats Stats
}

// Stats returns counts of the graph's triples. It's computed on first use.
func (g *Graph) Stats() Stats {
	g.stats.once.Do(func() {
		g.stats.stats = g.computeStats()
	})
	s := g.stats.stats
	s.Predicates = append([]PredicateCount(nil), s.Predicates...)
	s.Rules = append([]RuleCount(nil), s.Rules...)
	return s
}

func (g *Graph) computeStats() Stats {
	s := Stats{
		Version:    g.version,
		Triples:    g.snap.Len(),
		Derived:    len(g.result.Derivations),
		Violations: len(g.violations),
		Rounds:     g.result.Rounds,
	}
	s.Asserted = s.Triples - s.Derived
	preds := make(map[store.ID]*PredicateCount)
	g.snap.MatchIDs(store.Wildcard, store.Wildcard, store.Wildcard, func(t store.IDTriple) bool {
		c := preds[t.P]
		if c == nil {
			c = &PredicateCount{Predicate: g.snap.Dict().Term(t.P)}
			preds[t.P] = c
		}
		if _, derived := g.result.Derivations[t]; derived {
			c.Derived++
		} else {
			c.Asserted++
		}
		return true
	})
	for _, c := range preds {
		s.Predicates = append(s.Predicates, *c)
	}
	sort.Slice(s.Predicates, func(i, j int) bool {
		a, b := s.Predicates[i], s.Predicates[j]
		if a.Total() != b.Total() {
			return a.Total() > b.Total()
		}
		return a.Predicate.Less(b.Predicate)
	})
	byRule := make(map[rules.ID]int)
	for _, rec := range g.result.Derivations {
		byRule[rec.Rule]++
	}
	for r, n := range byRule {
		s.Rules = append(s.Rules, RuleCount{Rule: r, Derived: n})
	}
	sort.Slice(s.Rules, func(i, j int) bool {
		a, b := s.Rules[i], s.Rules[j]
		if a.Derived != b.Derived {
			return a.Derived > b.Derived
		}
		return a.Rule < b.Rule
	})
	return s
}

// Graphviz writes the tree as a Graphviz digraph with an edge from each
// conclusion to its premises. Errors from w are ignored.
func (tree *ExplanationTree) Graphviz(w io.Writer) {
	ids := make(map[*ExplanationTree]int)
	fmt.Fprintf(w, "digraph explanation {\n")
	fmt.Fprintf(w, "\trankdir=BT;\n")
	fmt.Fprintf(w, "\tnode [shape=box];\n")
	tree.Walk(func(node *ExplanationTree) bool {
		id := len(ids)
		ids[node] = id
		if node.Asserted {
			fmt.Fprintf(w, "\tn%d [label=%s, style=filled, fillcolor=lightgrey];\n",
				id, dotQuote(node.Triple.String()))
		} else {
			fmt.Fprintf(w, "\tn%d [label=%s];\n",
				id, dotQuote(fmt.Sprintf("%v\n%v (round %d)", node.Triple, node.Rule, node.Round)))
		}
		return true
	})
	tree.Walk(func(node *ExplanationTree) bool {
		for _, c := range node.Children {
			fmt.Fprintf(w, "\tn%d -> n%d;\n", ids[c], ids[node])
		}
		return true
	})
	fmt.Fprintf(w, "}\n")
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func dotQuote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
