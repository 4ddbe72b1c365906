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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cheggaaa/pb"
	"github.com/i-d-lytvynenko/kg-inference/api"
	"github.com/i-d-lytvynenko/kg-inference/config"
	"github.com/i-d-lytvynenko/kg-inference/graph"
	"github.com/i-d-lytvynenko/kg-inference/kb"
	"github.com/i-d-lytvynenko/kg-inference/parser"
	"github.com/i-d-lytvynenko/kg-inference/rdf"
	"github.com/i-d-lytvynenko/kg-inference/saturate"
	"github.com/i-d-lytvynenko/kg-inference/util/graphviz"
	"github.com/i-d-lytvynenko/kg-inference/util/stats"
	"github.com/i-d-lytvynenko/kg-inference/util/table"
	log "github.com/sirupsen/logrus"
)

// reasoner runs the subcommands.
type reasoner struct {
	cfg     *config.Reasoner
	options *options
	// Results are printed here. Progress bars go to stderr.
	out io.Writer
}

func (r *reasoner) newBar(total int, prefix string) *pb.ProgressBar {
	bar := pb.New(total).Prefix(prefix)
	bar.Output = os.Stderr
	bar.NotPrint = r.options.Quiet
	bar.ShowCounters = true
	bar.SetMaxWidth(100)
	return bar.Start()
}

// load builds a knowledge base from the ontology and facts files.
func (r *reasoner) load(ctx context.Context) (*kb.KnowledgeBase, *kb.BuildResult, error) {
	schema, err := loadSchema(r.options.Ontology)
	if err != nil {
		return nil, nil, err
	}
	bar := r.newBar(len(r.options.Facts), "Loading ")
	facts, err := loadFacts(r.options.Facts, schema, r.options.ingestOptions(), bar)
	bar.Finish()
	if err != nil {
		return nil, nil, err
	}

	base := kb.New(nil)
	opts := kb.OptionsFromConfig(r.cfg.Saturation)
	bar = r.newBar(0, "Derived ")
	opts.Progress = func(st saturate.RoundStats) {
		bar.Add(st.Derived)
	}
	res, err := base.Build(ctx, schema, facts, opts)
	bar.Finish()
	if err != nil {
		return nil, nil, err
	}
	return base, res, nil
}

// graph builds the knowledge base and returns its graph, failing if the graph
// wasn't adopted.
func (r *reasoner) graph(ctx context.Context) (*kb.KnowledgeBase, *graph.Graph, error) {
	base, res, err := r.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !res.Adopted {
		return nil, nil, fmt.Errorf("graph rejected with %d consistency violations", len(res.Violations))
	}
	return base, res.Graph, nil
}

func (r *reasoner) build(ctx context.Context) error {
	_, res, err := r.load(ctx)
	if err != nil {
		return err
	}
	fmtr.Fprintf(r.out, "%v\n", res)
	if len(res.Violations) > 0 {
		fmtr.Fprintf(r.out, "\nFound %d consistency violations:\n", len(res.Violations))
		stats.PrintViolations(r.out, res.Violations)
	}
	if !res.Adopted {
		return fmt.Errorf("graph rejected with %d consistency violations", len(res.Violations))
	}
	return nil
}

func (r *reasoner) ask(ctx context.Context) error {
	pattern, err := parser.ParsePattern(r.options.Pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern: %v", err)
	}
	_, g, err := r.graph(ctx)
	if err != nil {
		return err
	}
	t := [][]string{{"Subject", "Predicate", "Object"}}
	truncated := false
	errLimit := errors.New("limit reached")
	err = g.AskChunks(ctx, pattern, 1024, func(chunk *rdf.Chunk) error {
		for _, tr := range chunk.Triples {
			if r.options.Limit > 0 && len(t)-1 == r.options.Limit {
				truncated = true
				return errLimit
			}
			t = append(t, []string{tr.Subject.String(), tr.Predicate.String(), tr.Object.String()})
		}
		return nil
	})
	if err != nil && err != errLimit {
		return err
	}
	table.PrettyPrint(r.out, t, table.HeaderRow|table.SkipEmpty)
	if truncated {
		fmtr.Fprintf(r.out, "First %d triples matching %v\n", len(t)-1, pattern)
	} else {
		fmtr.Fprintf(r.out, "%d triples matching %v\n", len(t)-1, pattern)
	}
	return nil
}

func (r *reasoner) explain(ctx context.Context) error {
	triple, err := parser.ParseTriple(r.options.Triple)
	if err != nil {
		return fmt.Errorf("invalid triple: %v", err)
	}
	_, g, err := r.graph(ctx)
	if err != nil {
		return err
	}
	if !r.options.Tree && r.options.Graph == "" {
		e, err := g.Explain(triple)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, e)
		return nil
	}
	tree, err := g.ExplainTree(ctx, triple)
	if err != nil {
		return err
	}
	printTree(r.out, tree)
	if r.options.Graph != "" {
		if err := graphviz.Create(r.options.Graph, tree.Graphviz, graphviz.Options{}); err != nil {
			return err
		}
		log.Infof("Wrote explanation diagram to %v", r.options.Graph)
	}
	return nil
}

// printTree writes one line per node, indented by depth. A node shared by
// several derivations is only expanded the first time.
func printTree(w io.Writer, tree *graph.ExplanationTree) {
	seen := make(map[*graph.ExplanationTree]bool)
	var visit func(node *graph.ExplanationTree, depth int)
	visit = func(node *graph.ExplanationTree, depth int) {
		indent := strings.Repeat("  ", depth)
		if node.Asserted {
			fmt.Fprintf(w, "%s%v (asserted)\n", indent, node.Triple)
			return
		}
		if seen[node] {
			fmt.Fprintf(w, "%s%v (see above)\n", indent, node.Triple)
			return
		}
		seen[node] = true
		fmt.Fprintf(w, "%s%v [%v, round %d]\n", indent, node.Triple, node.Rule, node.Round)
		for _, child := range node.Children {
			visit(child, depth+1)
		}
	}
	visit(tree, 0)
}

func (r *reasoner) stats(ctx context.Context) error {
	_, g, err := r.graph(ctx)
	if err != nil {
		return err
	}
	stats.PrettyPrint(r.out, g.Stats())
	if violations := g.Violations(); len(violations) > 0 {
		io.WriteString(r.out, "\n")
		stats.PrintViolations(r.out, violations)
	}
	return nil
}

func (r *reasoner) serve(ctx context.Context) error {
	base, _, err := r.graph(ctx)
	if err != nil {
		return err
	}
	return api.New(r.cfg, base, r.options.ingestOptions()).Run(ctx)
}
