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

// Package kb manages the lifecycle of a knowledge graph: building a saturated
// graph from an ontology and base facts, extending it with more facts, and
// publishing the result to readers.
//
// Readers always see a complete, frozen graph. A build happens off to the side
// and the new graph replaces the current one in a single atomic step, only
// once the build has reached its fixpoint. A build that fails or is cancelled
// leaves the current graph in place.
package kb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/i-d-lytvynenko/kg-inference/config"
	"github.com/i-d-lytvynenko/kg-inference/graph"
	"github.com/i-d-lytvynenko/kg-inference/ontology"
	"github.com/i-d-lytvynenko/kg-inference/rdf"
	"github.com/i-d-lytvynenko/kg-inference/saturate"
	"github.com/i-d-lytvynenko/kg-inference/store"
	"github.com/i-d-lytvynenko/kg-inference/util/clocks"
	opentracing "github.com/opentracing/opentracing-go"
	log "github.com/sirupsen/logrus"
)

// ErrBuildCancelled is returned (wrapped together with the context's error)
// when a build's context ends before it reaches a fixpoint.
var ErrBuildCancelled = errors.New("build cancelled")

// ErrNoGraph is returned by Extend and Validate when nothing has been built
// yet.
var ErrNoGraph = errors.New("no graph has been built")

// Status is the outcome of a build that reached its fixpoint.
type Status int

// Build statuses.
const (
	// The graph is consistent.
	Success Status = iota + 1
	// The graph has consistency violations. It's otherwise complete and
	// usable.
	SuccessWithViolations
	// The graph has consistency violations and was not adopted, because
	// BuildOptions.RejectInconsistent was set.
	Rejected
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case SuccessWithViolations:
		return "success with violations"
	case Rejected:
		return "rejected"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// BuildOptions control a build. The zero value is usable.
type BuildOptions struct {
	// See saturate.Options.
	Parallelism int
	ChunkSize   int
	RoundSize   int
	MaxRounds   int
	// If set, a graph with consistency violations is not adopted.
	RejectInconsistent bool
	// Called after every saturation round. Optional.
	Progress func(saturate.RoundStats)
}

// OptionsFromConfig returns the build options given in cfg, which may be nil.
func OptionsFromConfig(cfg *config.Saturation) BuildOptions {
	if cfg == nil {
		return BuildOptions{}
	}
	return BuildOptions{
		Parallelism:        cfg.Parallelism,
		ChunkSize:          cfg.ChunkSize,
		MaxRounds:          cfg.MaxRounds,
		RejectInconsistent: cfg.RejectInconsistent,
	}
}

func (opts *BuildOptions) saturate(clock clocks.Source) saturate.Options {
	return saturate.Options{
		Parallelism: opts.Parallelism,
		ChunkSize:   opts.ChunkSize,
		RoundSize:   opts.RoundSize,
		MaxRounds:   opts.MaxRounds,
		Clock:       clock,
		Progress:    opts.Progress,
	}
}

// BuildResult describes a completed build.
type BuildResult struct {
	Status Status
	// Violations holds every consistency violation in Graph, not only those
	// introduced by this build.
	Violations []graph.Violation
	// Graph is the graph the build produced. It's published only if Adopted
	// is set.
	Graph   *graph.Graph
	Adopted bool
	// Asserted counts the facts given to the build that the graph didn't
	// already assert.
	Asserted int
	// Derived counts the triples first derived by this build.
	Derived  int
	Rounds   int
	Duration time.Duration
}

func (r *BuildResult) String() string {
	return fmt.Sprintf("%v: version %d, %d triples (%d new facts, %d derived) in %d rounds, %d violations, took %v",
		r.Status, r.Graph.Version(), r.Graph.Len(), r.Asserted, r.Derived, r.Rounds, len(r.Violations), r.Duration)
}

// KnowledgeBase holds the current graph. Current may be called concurrently
// with anything; builds are serialized.
type KnowledgeBase struct {
	clock   clocks.Source
	current atomic.Value // *graph.Graph
	// lock is held for the duration of a build.
	lock    sync.Mutex
	version uint64
}

// New returns an empty knowledge base. Durations are measured with clock,
// which defaults to clocks.Wall if nil.
func New(clock clocks.Source) *KnowledgeBase {
	if clock == nil {
		clock = clocks.Wall
	}
	return &KnowledgeBase{clock: clock}
}

// Current returns the graph currently published, or nil if nothing has been
// built yet. The returned graph never changes; later builds publish new
// graphs.
func (kb *KnowledgeBase) Current() *graph.Graph {
	g, _ := kb.current.Load().(*graph.Graph)
	return g
}

// Build saturates the schema and facts from scratch. On success the new graph
// replaces the current one, unless opts.RejectInconsistent is set and the
// graph has violations.
func (kb *KnowledgeBase) Build(ctx context.Context, schema *ontology.Schema, facts []rdf.Triple, opts BuildOptions) (*BuildResult, error) {
	return kb.build(ctx, "build", schema, facts, opts, true)
}

// Extend adds facts to the current graph and saturates only what follows from
// them. The schema stays the same. On success the new graph replaces the
// current one, as for Build.
func (kb *KnowledgeBase) Extend(ctx context.Context, facts []rdf.Triple, opts BuildOptions) (*BuildResult, error) {
	return kb.build(ctx, "extend", nil, facts, opts, true)
}

// Validate is like Extend but never publishes the resulting graph. It's used
// to check whether a batch of facts would keep the graph consistent.
func (kb *KnowledgeBase) Validate(ctx context.Context, facts []rdf.Triple, opts BuildOptions) (*BuildResult, error) {
	return kb.build(ctx, "validate", nil, facts, opts, false)
}

func (kb *KnowledgeBase) build(ctx context.Context, op string, schema *ontology.Schema, facts []rdf.Triple, opts BuildOptions, publish bool) (*BuildResult, error) {
	kb.lock.Lock()
	defer kb.lock.Unlock()
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()
	start := kb.clock.Now()

	var base *graph.Graph
	if schema == nil {
		base = kb.Current()
		if base == nil {
			return nil, fmt.Errorf("can't %v: %w", op, ErrNoGraph)
		}
		schema = base.Schema()
	}
	for i, f := range facts {
		if err := schema.ValidateFact(f); err != nil {
			metrics.buildsTotal.WithLabelValues("failed").Inc()
			return nil, fmt.Errorf("fact %d: %w", i, err)
		}
	}

	var st *store.Store
	var prior *saturate.Result
	if base != nil {
		st = base.Snapshot().Thaw()
		prior = base.Result()
	} else {
		st = store.New()
	}
	sat := saturate.New(st, prior, opts.saturate(kb.clock))
	if base == nil {
		for _, t := range schema.Triples() {
			if _, err := sat.Assert(t); err != nil {
				metrics.buildsTotal.WithLabelValues("failed").Inc()
				return nil, fmt.Errorf("schema triple %v: %w", t, err)
			}
		}
	}
	res := &BuildResult{}
	for _, f := range facts {
		isNew, err := sat.Assert(f)
		if err != nil {
			metrics.buildsTotal.WithLabelValues("failed").Inc()
			return nil, fmt.Errorf("fact %v: %w", f, err)
		}
		if isNew {
			res.Asserted++
		}
	}
	sat.SetChains(schema.Chains())
	logger := log.WithFields(log.Fields{
		"op":      op,
		"facts":   len(facts),
		"pending": sat.Pending(),
	})
	logger.Info("Starting build")

	satRes, err := sat.Run(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			metrics.buildsTotal.WithLabelValues("cancelled").Inc()
			logger.WithError(err).Warn("Build cancelled")
			return nil, fmt.Errorf("%w: %w", ErrBuildCancelled, ctxErr)
		}
		metrics.buildsTotal.WithLabelValues("failed").Inc()
		logger.WithError(err).Warn("Build failed")
		return nil, fmt.Errorf("%v failed: %w", op, err)
	}

	version := kb.version + 1
	res.Graph = graph.New(version, kb.clock.Now(), st.Freeze(), schema, satRes)
	res.Violations = res.Graph.Violations()
	res.Rounds = len(satRes.RoundStats)
	firstRound := 1
	if prior != nil {
		firstRound = prior.Rounds + 1
	}
	for _, rec := range satRes.Derivations {
		if rec.Round >= firstRound {
			res.Derived++
		}
	}
	res.Duration = clocks.Since(kb.clock, start)
	res.Status = Success
	if len(res.Violations) > 0 {
		res.Status = SuccessWithViolations
		if opts.RejectInconsistent {
			res.Status = Rejected
		}
	}
	outcome := "validated"
	if publish && res.Status != Rejected {
		kb.version = version
		kb.current.Store(res.Graph)
		res.Adopted = true
		outcome = "success"
		if res.Status == SuccessWithViolations {
			outcome = "violations"
		}
		metrics.graphVersion.Set(float64(version))
		metrics.graphTriples.Set(float64(res.Graph.Len()))
		metrics.graphDerived.Set(float64(len(satRes.Derivations)))
		metrics.graphViolations.Set(float64(len(res.Violations)))
	} else if publish {
		outcome = "rejected"
	}
	metrics.buildsTotal.WithLabelValues(outcome).Inc()
	metrics.buildDurationSeconds.Observe(res.Duration.Seconds())
	span.SetTag("status", res.Status.String())
	logger.WithFields(log.Fields{
		"build":      version,
		"status":     res.Status,
		"adopted":    res.Adopted,
		"rounds":     res.Rounds,
		"triples":    res.Graph.Len(),
		"derived":    res.Derived,
		"violations": len(res.Violations),
		"duration":   res.Duration,
	}).Info("Build complete")
	return res, nil
}
