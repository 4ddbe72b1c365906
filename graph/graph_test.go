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
	"strings"
	"testing"
	"time"

	"github.com/i-d-lytvynenko/kg-inference/ontology"
	"github.com/i-d-lytvynenko/kg-inference/rdf"
	"github.com/i-d-lytvynenko/kg-inference/rules"
	"github.com/i-d-lytvynenko/kg-inference/saturate"
	"github.com/i-d-lytvynenko/kg-inference/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	exhibits  = rdf.IRI("exhibits")
	leadsTo   = rdf.IRI("leadsTo")
	isProneTo = rdf.IRI("isProneTo")
)

func biasSchema(t *testing.T) *ontology.Schema {
	m := ontology.NewModel()
	for _, c := range []string{"ConfirmationBias", "SystematicError", "SuboptimalDecisions", "DecisionProcess"} {
		require.NoError(t, m.DeclareClass(rdf.IRI(c)))
	}
	require.NoError(t, m.DeclareProperty(exhibits, ontology.ObjectProperty, ontology.Domain(rdf.IRI("DecisionProcess"))))
	require.NoError(t, m.DeclareProperty(leadsTo, ontology.ObjectProperty))
	require.NoError(t, m.DeclareProperty(isProneTo, ontology.ObjectProperty))
	require.NoError(t, m.DeclareAxiom(ontology.SubClassOf, rdf.IRI("ConfirmationBias"), rdf.IRI("SystematicError")))
	require.NoError(t, m.DeclareAxiom(ontology.PropertyChain, isProneTo, exhibits, rdf.SubClassOf, leadsTo))
	return m.Compile()
}

var biasFacts = []rdf.Triple{
	rdf.T("DecisionProcessD", "exhibits", "ConfirmationBias"),
	rdf.T("SystematicError", "leadsTo", "SuboptimalDecisions"),
}

func officeSchema(t *testing.T) *ontology.Schema {
	m := ontology.NewModel()
	for _, c := range []string{"OfficeItem", "WritingTool", "ElectronicDevice"} {
		require.NoError(t, m.DeclareClass(rdf.IRI(c)))
	}
	require.NoError(t, m.DeclareProperty(rdf.IRI("serial"), ontology.DatatypeProperty, ontology.Functional))
	require.NoError(t, m.DeclareAxiom(ontology.SubClassOf, rdf.IRI("WritingTool"), rdf.IRI("OfficeItem")))
	require.NoError(t, m.DeclareAxiom(ontology.SubClassOf, rdf.IRI("ElectronicDevice"), rdf.IRI("OfficeItem")))
	require.NoError(t, m.DeclareAxiom(ontology.DisjointClasses, rdf.IRI("WritingTool"), rdf.IRI("ElectronicDevice")))
	return m.Compile()
}

var officeFacts = []rdf.Triple{
	rdf.T("Pen", rdf.Type.Value, "WritingTool"),
	rdf.T("Pen", rdf.Type.Value, "ElectronicDevice"),
	rdf.T("Pencil", rdf.Type.Value, "WritingTool"),
	{Subject: rdf.IRI("Laptop"), Predicate: rdf.IRI("serial"), Object: rdf.String("B-2")},
	{Subject: rdf.IRI("Laptop"), Predicate: rdf.IRI("serial"), Object: rdf.String("A-1")},
}

func build(t *testing.T, schema *ontology.Schema, facts []rdf.Triple) *Graph {
	st := store.New()
	s := saturate.New(st, nil, saturate.Options{Parallelism: 2, ChunkSize: 4})
	for _, tr := range append(schema.Triples(), facts...) {
		_, err := s.Assert(tr)
		require.NoError(t, err)
	}
	s.SetChains(schema.Chains())
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	return New(7, time.Unix(100, 0), st.Freeze(), schema, res)
}

func Test_Ask(t *testing.T) {
	g := build(t, biasSchema(t), biasFacts)
	assert.Equal(t, uint64(7), g.Version())
	assert.Equal(t, time.Unix(100, 0), g.Built())
	assert.Equal(t, []rdf.Triple{rdf.T("DecisionProcessD", "isProneTo", "SuboptimalDecisions")},
		g.Ask(rdf.IRI("DecisionProcessD"), isProneTo, rdf.Any).Collect())
	types := g.Ask(rdf.IRI("DecisionProcessD"), rdf.Type, rdf.Any)
	assert.Equal(t, []rdf.Triple{rdf.T("DecisionProcessD", rdf.Type.Value, "DecisionProcess")}, types.Collect())
	// Sequences can be iterated again.
	assert.Equal(t, 1, types.Count())
	assert.Empty(t, g.Ask(rdf.IRI("Nobody"), rdf.Any, rdf.Any).Collect())
	assert.True(t, g.Contains(rdf.T("DecisionProcessD", "isProneTo", "SuboptimalDecisions")))
	assert.False(t, g.Contains(rdf.T("SystematicError", "isProneTo", "SuboptimalDecisions")))
	assert.True(t, g.IsConsistent())
	assert.Empty(t, g.Violations())
}

func Test_AskChunks(t *testing.T) {
	g := build(t, officeSchema(t), officeFacts)
	all := g.Ask(rdf.Any, rdf.Any, rdf.Any).Collect()
	var chunks [][]rdf.Triple
	err := g.AskChunks(context.Background(), rdf.Triple{}, 5, func(c *rdf.Chunk) error {
		chunks = append(chunks, c.Triples)
		return nil
	})
	require.NoError(t, err)
	var got []rdf.Triple
	for i, c := range chunks {
		if i < len(chunks)-1 {
			assert.Len(t, c, 5)
		}
		got = append(got, c...)
	}
	assert.Equal(t, all, got)

	errStop := errors.New("stop")
	calls := 0
	err = g.AskChunks(context.Background(), rdf.Triple{}, 2, func(c *rdf.Chunk) error {
		calls++
		return errStop
	})
	assert.Equal(t, errStop, err)
	assert.Equal(t, 1, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = g.AskChunks(ctx, rdf.Triple{}, 2, func(c *rdf.Chunk) error { return nil })
	assert.Equal(t, context.Canceled, err)
}

func Test_AskChunks_nonPositiveChunkSize(t *testing.T) {
	g := build(t, officeSchema(t), officeFacts)
	all := g.Ask(rdf.Any, rdf.Any, rdf.Any).Collect()
	for _, size := range []int{0, -3} {
		var got []rdf.Triple
		err := g.AskChunks(context.Background(), rdf.Triple{}, size, func(c *rdf.Chunk) error {
			assert.Len(t, c.Triples, 1)
			got = append(got, c.Triples...)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, all, got, "chunkSize %d", size)
	}
}

func Test_Violations(t *testing.T) {
	g := build(t, officeSchema(t), officeFacts)
	assert.False(t, g.IsConsistent())
	vs := g.Violations()
	require.Len(t, vs, 2)
	assert.Equal(t, Disjointness, vs[0].Kind)
	assert.Equal(t, rdf.IRI("Pen"), vs[0].Individual)
	assert.Equal(t, rdf.Any, vs[0].Property)
	assert.Equal(t, [2]rdf.Term{rdf.IRI("ElectronicDevice"), rdf.IRI("WritingTool")}, vs[0].Values)
	assert.Equal(t, rules.DisjointCheck, vs[0].Rule)
	assert.Contains(t, vs[0].Premises, rdf.T("Pen", rdf.Type.Value, "WritingTool"))
	assert.Equal(t, "<Pen> is typed with disjoint classes <ElectronicDevice> and <WritingTool>", vs[0].String())

	assert.Equal(t, FunctionalValues, vs[1].Kind)
	assert.Equal(t, rdf.IRI("serial"), vs[1].Property)
	assert.Equal(t, [2]rdf.Term{rdf.String("A-1"), rdf.String("B-2")}, vs[1].Values)
	assert.Equal(t, `<Laptop> has values "A-1" and "B-2" for functional property <serial>`, vs[1].String())

	// The returned slice is a copy.
	vs[0].Individual = rdf.IRI("Other")
	assert.Equal(t, rdf.IRI("Pen"), g.Violations()[0].Individual)
}

func Test_Explain(t *testing.T) {
	g := build(t, biasSchema(t), biasFacts)
	e, err := g.Explain(biasFacts[0])
	require.NoError(t, err)
	assert.True(t, e.Asserted)
	assert.Empty(t, e.Premises)
	assert.Equal(t, "<DecisionProcessD> <exhibits> <ConfirmationBias>: asserted", e.String())

	conclusion := rdf.T("DecisionProcessD", "isProneTo", "SuboptimalDecisions")
	e, err = g.Explain(conclusion)
	require.NoError(t, err)
	assert.False(t, e.Asserted)
	assert.Equal(t, rules.PropertyChain, e.Rule)
	assert.Equal(t, []rdf.Triple{
		rdf.T("DecisionProcessD", "exhibits", "ConfirmationBias"),
		rdf.T("ConfirmationBias", rdf.SubClassOf.Value, "SystematicError"),
		rdf.T("SystematicError", "leadsTo", "SuboptimalDecisions"),
	}, e.Premises)
	assert.True(t, e.Round > 0)

	_, err = g.Explain(rdf.T("SystematicError", "isProneTo", "SuboptimalDecisions"))
	assert.True(t, errors.Is(err, ErrNotInGraph))
	_, err = g.Explain(rdf.T("Unknown", "isProneTo", "SuboptimalDecisions"))
	assert.True(t, errors.Is(err, ErrNotInGraph))
}

func Test_ExplanationRoundTrip(t *testing.T) {
	for name, g := range map[string]*Graph{
		"bias":   build(t, biasSchema(t), biasFacts),
		"office": build(t, officeSchema(t), officeFacts),
	} {
		t.Run(name, func(t *testing.T) {
			g.Ask(rdf.Any, rdf.Any, rdf.Any)(func(tr rdf.Triple) bool {
				tree, err := g.ExplainTree(context.Background(), tr)
				require.NoError(t, err)
				tree.Walk(func(node *ExplanationTree) bool {
					if node.Asserted {
						assert.Empty(t, node.Children, "%v", node.Triple)
						return true
					}
					assert.Len(t, node.Children, len(node.Premises))
					for i, c := range node.Children {
						assert.Equal(t, node.Premises[i], c.Triple)
						if !c.Asserted {
							assert.True(t, c.Round < node.Round, "%v", c.Triple)
						}
					}
					return true
				})
				assert.NotEmpty(t, tree.Leaves())
				return true
			})
		})
	}
}

func Test_ExplainTree(t *testing.T) {
	g := build(t, biasSchema(t), biasFacts)
	conclusion := rdf.T("DecisionProcessD", rdf.Type.Value, "DecisionProcess")
	tree, err := g.ExplainTree(context.Background(), conclusion)
	require.NoError(t, err)
	assert.Equal(t, rules.DomainTyping, tree.Rule)
	assert.Equal(t, 2, tree.Depth())
	assert.Equal(t, []rdf.Triple{
		rdf.T("DecisionProcessD", "exhibits", "ConfirmationBias"),
		{Subject: exhibits, Predicate: rdf.Domain, Object: rdf.IRI("DecisionProcess")},
	}, tree.Leaves())

	var buf strings.Builder
	tree.Graphviz(&buf)
	dot := buf.String()
	assert.True(t, strings.HasPrefix(dot, "digraph explanation {\n"))
	assert.Contains(t, dot, `n0 [label="<DecisionProcessD> rdf:type <DecisionProcess>\ndomain-typing (round `)
	assert.Contains(t, dot, "n1 -> n0;")
	assert.Contains(t, dot, "n2 -> n0;")

	_, err = g.ExplainTree(context.Background(), rdf.T("a", "b", "c"))
	assert.True(t, errors.Is(err, ErrNotInGraph))
}

func Test_Stats(t *testing.T) {
	g := build(t, officeSchema(t), officeFacts)
	s := g.Stats()
	assert.Equal(t, uint64(7), s.Version)
	assert.Equal(t, g.Len(), s.Triples)
	assert.Equal(t, s.Triples, s.Asserted+s.Derived)
	assert.Equal(t, len(g.Result().Derivations), s.Derived)
	assert.Equal(t, 2, s.Violations)
	total := 0
	for i, p := range s.Predicates {
		total += p.Total()
		if i > 0 {
			assert.True(t, s.Predicates[i-1].Total() >= p.Total())
		}
	}
	assert.Equal(t, s.Triples, total)
	assert.Equal(t, rdf.Type, s.Predicates[0].Predicate)
	derived := 0
	for _, r := range s.Rules {
		derived += r.Derived
	}
	assert.Equal(t, s.Derived, derived)
	// Pen and Pencil become OfficeItems.
	assert.Contains(t, s.Rules, RuleCount{Rule: rules.SubClassTypePropagation, Derived: 2})
}
