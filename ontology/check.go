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
	"fmt"
	"sort"

	"github.com/i-d-lytvynenko/kg-inference/rdf"
)

// check validates properties of the model as a whole that no single axiom
// can be checked for in isolation. cause is the axiom that was just applied,
// and is reported in any error.
func (m *Model) check(cause Axiom) error {
	h := m.hierarchy()
	if cycle := h.findCycle(m.classes); cycle != nil {
		return &AxiomConflictError{Axiom: cause,
			Reason: fmt.Sprintf("SubClassOf cycle %v isn't mediated by EquivalentClass", cycle)}
	}
	for pair := range m.disjoint {
		if m.equiv.same(pair.a, pair.b) {
			return &AxiomConflictError{Axiom: cause,
				Reason: fmt.Sprintf("%v and %v are equivalent and can't be disjoint", pair.a, pair.b)}
		}
	}
	for _, iri := range m.properties {
		p := m.props[iri]
		if !p.Functional || p.Kind != ObjectProperty {
			continue
		}
		for i := range p.Ranges {
			for j := i + 1; j < len(p.Ranges); j++ {
				if h.disjoint(p.Ranges[i], p.Ranges[j]) {
					return &AxiomConflictError{Axiom: cause,
						Reason: fmt.Sprintf("functional property %v has disjoint ranges %v and %v",
							iri, p.Ranges[i], p.Ranges[j])}
				}
			}
		}
	}
	return m.checkChains(cause)
}

// hierarchy is the class hierarchy collapsed over equivalence sets. It's
// computed once per check and isn't updated as the model changes.
type hierarchy struct {
	model *Model
	// edges holds the SubClassOf edges between equivalence set
	// representatives, without self loops.
	edges map[rdf.Term][]rdf.Term
	// members holds the classes in each equivalence set, keyed by the set's
	// representative.
	members map[rdf.Term][]rdf.Term
	// supers memoizes superClosure, keyed by representative.
	supers map[rdf.Term][]rdf.Term
}

func (m *Model) hierarchy() *hierarchy {
	h := &hierarchy{
		model:   m,
		edges:   make(map[rdf.Term][]rdf.Term, len(m.supers)),
		members: make(map[rdf.Term][]rdf.Term),
		supers:  make(map[rdf.Term][]rdf.Term),
	}
	for _, c := range m.classes {
		rep := m.equiv.find(c)
		h.members[rep] = append(h.members[rep], c)
	}
	for sub, supers := range m.supers {
		from := m.equiv.find(sub)
		for _, super := range supers {
			to := m.equiv.find(super)
			if from != to {
				h.edges[from] = append(h.edges[from], to)
			}
		}
	}
	return h
}

// findCycle returns the classes along a SubClassOf cycle, or nil if the
// collapsed hierarchy is acyclic. classes gives the order in which the walk
// starts, which makes the reported cycle deterministic.
func (h *hierarchy) findCycle(classes []rdf.Term) []rdf.Term {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[rdf.Term]int, len(h.edges))
	var path []rdf.Term
	var visit func(c rdf.Term) []rdf.Term
	visit = func(c rdf.Term) []rdf.Term {
		state[c] = onPath
		path = append(path, c)
		for _, next := range h.edges[c] {
			switch state[next] {
			case onPath:
				for i, p := range path {
					if p == next {
						return append(append([]rdf.Term(nil), path[i:]...), next)
					}
				}
			case unvisited:
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}
		path = path[:len(path)-1]
		state[c] = done
		return nil
	}
	for _, c := range classes {
		rep := h.model.equiv.find(c)
		if state[rep] == unvisited {
			if cycle := visit(rep); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// superClosure returns c and every class it's a subclass of, taking
// equivalences into account. The result is sorted. It's a breadth-first walk
// over the collapsed hierarchy, and must only be called on an acyclic one.
func (h *hierarchy) superClosure(c rdf.Term) []rdf.Term {
	start := h.model.equiv.find(c)
	if res, ok := h.supers[start]; ok {
		return res
	}
	visited := map[rdf.Term]struct{}{}
	queue := []rdf.Term{start}
	for len(queue) > 0 {
		rep := queue[0]
		queue = queue[1:]
		if _, seen := visited[rep]; seen {
			continue
		}
		visited[rep] = struct{}{}
		queue = append(queue, h.edges[rep]...)
	}
	var res []rdf.Term
	for rep := range visited {
		if set, ok := h.members[rep]; ok {
			res = append(res, set...)
		} else {
			res = append(res, rep)
		}
	}
	sortTerms(res)
	h.supers[start] = res
	return res
}

func (h *hierarchy) disjoint(a, b rdf.Term) bool {
	disjoint := h.model.disjoint
	if len(disjoint) == 0 {
		return false
	}
	for _, x := range h.superClosure(a) {
		for _, y := range h.superClosure(b) {
			if x == y {
				continue
			}
			if _, exists := disjoint[makeClassPair(x, y)]; exists {
				return true
			}
		}
	}
	return false
}

// Disjoint returns true if a and b can't share an instance: some class
// above a is declared disjoint with some class above b.
func (m *Model) Disjoint(a, b rdf.Term) bool {
	if len(m.disjoint) == 0 {
		return false
	}
	return m.hierarchy().disjoint(a, b)
}

// checkChains rejects property chains whose conclusions feed back into their
// own steps through individuals. Such a chain extends a path by one
// individual per round, so saturation would need as many rounds as the
// longest path in the data. A recursive chain is accepted when each of its
// steps is either its own result or a schema predicate: the first doubles
// the known paths every round, like a transitive property, and the second is
// bounded by the depth of the hierarchy.
func (m *Model) checkChains(cause Axiom) error {
	if len(m.chains) == 0 {
		return nil
	}
	feeds := m.propertyFeeds()
	for _, c := range m.chains {
		reach := reachable(feeds, c.Result)
		recursive := false
		bounded := true
		for _, step := range c.Steps {
			if isSchemaStep(step) {
				continue
			}
			if _, ok := reach[step]; ok {
				recursive = true
			}
			if step != c.Result {
				bounded = false
			}
		}
		if recursive && !bounded {
			return &AxiomConflictError{Axiom: cause,
				Reason: fmt.Sprintf("property chain %v %v feeds its own steps, so saturation would take a round per individual along a path",
					c.Result, c.Steps)}
		}
	}
	return nil
}

// propertyFeeds returns, for each property, the properties that a triple
// using it can produce triples for in a single rule application.
func (m *Model) propertyFeeds() map[rdf.Term][]rdf.Term {
	feeds := make(map[rdf.Term][]rdf.Term, len(m.props))
	for iri, p := range m.props {
		feeds[iri] = append(feeds[iri], p.Parents...)
		for _, inv := range p.Inverses {
			feeds[iri] = append(feeds[iri], inv)
			feeds[inv] = append(feeds[inv], iri)
		}
	}
	for _, a := range m.axioms {
		if a.Kind == EquivalentProperty {
			p, q := a.Operands[0], a.Operands[1]
			feeds[p] = append(feeds[p], q)
			feeds[q] = append(feeds[q], p)
		}
	}
	for _, c := range m.chains {
		for _, step := range c.Steps {
			if !isSchemaStep(step) {
				feeds[step] = append(feeds[step], c.Result)
			}
		}
	}
	return feeds
}

// reachable returns from and everything reachable from it over edges.
func reachable(edges map[rdf.Term][]rdf.Term, from rdf.Term) map[rdf.Term]struct{} {
	visited := map[rdf.Term]struct{}{from: {}}
	stack := []rdf.Term{from}
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, to := range edges[next] {
			if _, seen := visited[to]; !seen {
				visited[to] = struct{}{}
				stack = append(stack, to)
			}
		}
	}
	return visited
}

func isSchemaStep(step rdf.Term) bool {
	return step == rdf.SubClassOf || step == rdf.SubPropertyOf
}

func sortTerms(terms []rdf.Term) {
	sort.Slice(terms, func(i, j int) bool { return terms[i].Less(terms[j]) })
}
