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

// Package graph is the read-only view of a saturated knowledge graph: pattern
// queries over asserted and derived triples, the consistency violations found
// while building it, and explanations of how each derived triple came about.
//
// A Graph is immutable once constructed and safe for concurrent use.
package graph

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/i-d-lytvynenko/kg-inference/ontology"
	"github.com/i-d-lytvynenko/kg-inference/rdf"
	"github.com/i-d-lytvynenko/kg-inference/rules"
	"github.com/i-d-lytvynenko/kg-inference/saturate"
	"github.com/i-d-lytvynenko/kg-inference/store"
	"github.com/i-d-lytvynenko/kg-inference/util/cmp"
	opentracing "github.com/opentracing/opentracing-go"
)

// Graph is a frozen, saturated knowledge graph.
type Graph struct {
	version    uint64
	built      time.Time
	snap       *store.Snapshot
	schema     *ontology.Schema
	result     *saturate.Result
	violations []Violation
	stats      statsCache
}

// New returns a Graph over a frozen store and the saturation result computed
// on it. The graph takes ownership of result, which must not be modified
// afterwards.
func New(version uint64, built time.Time, snap *store.Snapshot, schema *ontology.Schema, result *saturate.Result) *Graph {
	g := &Graph{
		version: version,
		built:   built,
		snap:    snap,
		schema:  schema,
		result:  result,
	}
	g.violations = make([]Violation, len(result.Violations))
	for i := range result.Violations {
		g.violations[i] = g.violation(&result.Violations[i])
	}
	sort.Slice(g.violations, func(i, j int) bool {
		return g.violations[i].less(&g.violations[j])
	})
	return g
}

// Version identifies the build that produced the graph. Versions increase
// with each graph a knowledge base adopts.
func (g *Graph) Version() uint64 {
	return g.version
}

// Built returns when the graph's build completed.
func (g *Graph) Built() time.Time {
	return g.built
}

// Schema returns the ontology the graph was saturated with.
func (g *Graph) Schema() *ontology.Schema {
	return g.schema
}

// Snapshot returns the graph's triple store.
func (g *Graph) Snapshot() *store.Snapshot {
	return g.snap
}

// Result returns the saturation result behind the graph. It's shared with the
// graph and must not be modified.
func (g *Graph) Result() *saturate.Result {
	return g.result
}

// Len returns the number of triples in the graph, asserted and derived.
func (g *Graph) Len() int {
	return g.snap.Len()
}

// Ask returns the triples that match the pattern. Any of the terms may be
// rdf.Any. The sequence includes derived triples and can be iterated any
// number of times.
func (g *Graph) Ask(subject, predicate, object rdf.Term) store.Seq {
	return g.snap.Match(subject, predicate, object)
}

// Contains returns true if the graph holds the triple.
func (g *Graph) Contains(t rdf.Triple) bool {
	return g.snap.Contains(t)
}

// AskChunks writes the triples matching pattern to callback in chunks of up to
// chunkSize triples. A chunkSize below 1 is treated as 1. It stops at the
// first error from callback or ctx.
func (g *Graph) AskChunks(ctx context.Context, pattern rdf.Triple, chunkSize int, callback rdf.ChunkReadyCallback) error {
	chunkSize = cmp.MaxInt(1, chunkSize)
	span, ctx := opentracing.StartSpanFromContext(ctx, "ask")
	span.SetTag("pattern", pattern.String())
	defer span.Finish()
	sink := rdf.NewTripleSink(callback, chunkSize)
	var err error
	count := 0
	g.Ask(pattern.Subject, pattern.Predicate, pattern.Object)(func(t rdf.Triple) bool {
		if err = sink.Write(t); err != nil {
			return false
		}
		count++
		if count%chunkSize == 0 {
			err = ctx.Err()
		}
		return err == nil
	})
	span.SetTag("results", count)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return sink.Flush()
}

// IsConsistent returns true if no consistency violations were found while the
// graph was built.
func (g *Graph) IsConsistent() bool {
	return len(g.violations) == 0
}

// Violations returns the consistency violations found while the graph was
// built, sorted by rule and then by individual.
func (g *Graph) Violations() []Violation {
	return append([]Violation(nil), g.violations...)
}

// ViolationKind distinguishes the consistency checks.
type ViolationKind int

// Kinds of violations.
const (
	// An individual is typed with two disjoint classes.
	Disjointness ViolationKind = iota + 1
	// An individual has two different values for a functional property.
	FunctionalValues
	// Two different individuals share a value of an inverse functional
	// property.
	InverseFunctionalValues
)

func (k ViolationKind) String() string {
	switch k {
	case Disjointness:
		return "disjointness"
	case FunctionalValues:
		return "functional"
	case InverseFunctionalValues:
		return "inverse-functional"
	}
	return fmt.Sprintf("ViolationKind(%d)", int(k))
}

var violationKinds = map[rules.ID]ViolationKind{
	rules.DisjointCheck:          Disjointness,
	rules.FunctionalCheck:        FunctionalValues,
	rules.InverseFunctionalCheck: InverseFunctionalValues,
}

// Violation is a consistency violation. It's reported as data, not as an
// error: the rest of the graph remains usable.
type Violation struct {
	Kind ViolationKind
	// Individual is the offending individual. For an inverse functional
	// property it's the shared value.
	Individual rdf.Term
	// Property is rdf.Any for Disjointness.
	Property rdf.Term
	// Values holds the two disjoint classes or the two conflicting property
	// values, in term order.
	Values   [2]rdf.Term
	Rule     rules.ID
	Premises []rdf.Triple
}

func (v Violation) String() string {
	switch v.Kind {
	case Disjointness:
		return fmt.Sprintf("%v is typed with disjoint classes %v and %v",
			v.Individual, v.Values[0], v.Values[1])
	case FunctionalValues:
		return fmt.Sprintf("%v has values %v and %v for functional property %v",
			v.Individual, v.Values[0], v.Values[1], v.Property)
	case InverseFunctionalValues:
		return fmt.Sprintf("%v and %v share the value %v for inverse functional property %v",
			v.Values[0], v.Values[1], v.Individual, v.Property)
	}
	return fmt.Sprintf("%v violation of %v by %v", v.Rule, v.Values, v.Individual)
}

func (v *Violation) less(other *Violation) bool {
	if v.Kind != other.Kind {
		return v.Kind < other.Kind
	}
	if v.Individual != other.Individual {
		return v.Individual.Less(other.Individual)
	}
	if v.Property != other.Property {
		return v.Property.Less(other.Property)
	}
	if v.Values[0] != other.Values[0] {
		return v.Values[0].Less(other.Values[0])
	}
	return v.Values[1].Less(other.Values[1])
}

func (g *Graph) violation(v *rules.Violation) Violation {
	dict := g.snap.Dict()
	term := func(id store.ID) rdf.Term {
		if id == store.Wildcard {
			return rdf.Any
		}
		return dict.Term(id)
	}
	res := Violation{
		Kind:       violationKinds[v.Rule],
		Individual: term(v.Subject),
		Property:   term(v.Property),
		Values:     [2]rdf.Term{term(v.Values[0]), term(v.Values[1])},
		Rule:       v.Rule,
		Premises:   g.triples(v.Premises),
	}
	if res.Values[1].Less(res.Values[0]) {
		res.Values[0], res.Values[1] = res.Values[1], res.Values[0]
	}
	return res
}

func (g *Graph) triples(ids []store.IDTriple) []rdf.Triple {
	res := make([]rdf.Triple, len(ids))
	for i, t := range ids {
		res[i] = g.snap.Triple(t)
	}
	return res
}
