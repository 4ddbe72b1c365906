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

// Package saturate computes the fixpoint of the rule catalogue over a triple
// store using semi-naive forward chaining.
//
// Round 0 is the loading of asserted facts: every newly inserted triple forms
// the first delta. Each following round fires every rule with each delta
// triple, joined against the whole store, and the triples concluded for the
// first time form the next delta. Saturation ends with the first empty delta.
//
// The store is only read while rules fire, so a round's delta is split into
// chunks that are evaluated concurrently. Conclusions are then merged in chunk
// order, which makes the derivations recorded for a given input the same from
// run to run regardless of parallelism.
package saturate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/i-d-lytvynenko/kg-inference/ontology"
	"github.com/i-d-lytvynenko/kg-inference/rdf"
	"github.com/i-d-lytvynenko/kg-inference/rules"
	"github.com/i-d-lytvynenko/kg-inference/store"
	"github.com/i-d-lytvynenko/kg-inference/util/clocks"
	"github.com/i-d-lytvynenko/kg-inference/util/parallel"
	opentracing "github.com/opentracing/opentracing-go"
	log "github.com/sirupsen/logrus"
)

// ErrRoundLimit is returned (wrapped) when saturation doesn't reach a
// fixpoint within Options.MaxRounds.
var ErrRoundLimit = errors.New("saturation round limit exceeded")

// Options control a Saturator. The zero value is usable.
type Options struct {
	// The number of goroutines firing rules within a round. Defaults to 1.
	Parallelism int
	// The number of delta triples handed to a goroutine at a time. Defaults to
	// 256.
	ChunkSize int
	// If positive, at most this many delta triples are evaluated per round;
	// the rest are carried over to the next round. This changes how many
	// rounds a build takes but not its fixpoint.
	RoundSize int
	// If positive, Run fails with ErrRoundLimit after this many rounds.
	MaxRounds int
	// The rules to fire, in order. Defaults to rules.Catalogue.
	Rules []rules.Rule
	// Used to time rounds. Defaults to clocks.Wall.
	Clock clocks.Source
	// Called after every round. Optional.
	Progress func(RoundStats)
}

// Record is the derivation that first concluded a triple.
type Record struct {
	rules.Derivation
	// The round in which the triple was concluded, starting from 1.
	Round int
}

// RoundStats describes one round.
type RoundStats struct {
	Round      int
	Delta      int
	Derived    int
	Violations int
	Duration   time.Duration
}

// Result is the outcome of saturation. Derivations holds one record for every
// derived triple in the store; triples without a record were asserted.
type Result struct {
	Derivations map[store.IDTriple]Record
	// Violations are distinct by rules.ViolationKey, in the order they were
	// found.
	Violations []rules.Violation
	Rounds     int
	RoundStats []RoundStats
}

// Saturator drives one saturation of a store. It's not safe for concurrent
// use.
type Saturator struct {
	store       *store.Store
	opts        Options
	chains      []rules.Chain
	derivations map[store.IDTriple]Record
	violations  []rules.Violation
	seen        map[rules.ViolationKey]struct{}
	// The delta for the next round.
	pending []store.IDTriple
	rounds  int
}

// New returns a Saturator over st. If prior is not nil, st must already hold
// prior's fixpoint (typically a Thaw of the snapshot it was computed on), and
// prior's derivations and violations are carried forward. prior isn't
// modified.
func New(st *store.Store, prior *Result, opts Options) *Saturator {
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 256
	}
	if opts.Rules == nil {
		opts.Rules = rules.Catalogue
	}
	if opts.Clock == nil {
		opts.Clock = clocks.Wall
	}
	s := &Saturator{
		store:       st,
		opts:        opts,
		derivations: make(map[store.IDTriple]Record),
		seen:        make(map[rules.ViolationKey]struct{}),
	}
	if prior != nil {
		for t, r := range prior.Derivations {
			s.derivations[t] = r
		}
		for _, v := range prior.Violations {
			s.addViolation(v)
		}
		s.rounds = prior.Rounds
	}
	return s
}

// SetChains resolves the property chains against the store's dictionary.
func (s *Saturator) SetChains(chains []ontology.Chain) {
	s.chains = s.chains[:0]
	for _, c := range chains {
		rc := rules.Chain{Result: s.store.Intern(c.Result)}
		for _, step := range c.Steps {
			rc.Steps = append(rc.Steps, s.store.Intern(step))
		}
		s.chains = append(s.chains, rc)
	}
}

// Assert inserts an asserted triple. A triple that's new to the store joins the
// next delta. A triple that was previously derived becomes asserted instead.
// It returns true if the store didn't already hold the triple as asserted.
func (s *Saturator) Assert(t rdf.Triple) (bool, error) {
	isNew, err := s.store.Insert(t)
	if err != nil {
		return false, err
	}
	id, _ := s.store.Lookup(t)
	if isNew {
		s.pending = append(s.pending, id)
		return true, nil
	}
	if _, derived := s.derivations[id]; derived {
		delete(s.derivations, id)
		return true, nil
	}
	return false, nil
}

// Pending returns the number of triples waiting to be evaluated.
func (s *Saturator) Pending() int {
	return len(s.pending)
}

// Run saturates the store. If ctx is cancelled, Run returns ctx's error
// (wrapped) and the store holds a partial closure that must be discarded.
func (s *Saturator) Run(ctx context.Context) (*Result, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "saturate")
	defer span.Finish()
	rctx := rules.NewContext(s.store, s.chains)
	var stats []RoundStats
	for len(s.pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("saturation cancelled after %d rounds: %w", len(stats), err)
		}
		if s.opts.MaxRounds > 0 && len(stats) >= s.opts.MaxRounds {
			return nil, fmt.Errorf("%w: no fixpoint after %d rounds, %d triples still pending",
				ErrRoundLimit, len(stats), len(s.pending))
		}
		st, err := s.round(ctx, rctx)
		if err != nil {
			return nil, fmt.Errorf("saturation cancelled in round %d: %w", st.Round, err)
		}
		stats = append(stats, st)
		if s.opts.Progress != nil {
			s.opts.Progress(st)
		}
	}
	span.SetTag("rounds", len(stats))
	span.SetTag("derived", len(s.derivations))
	return &Result{
		Derivations: s.derivations,
		Violations:  s.violations,
		Rounds:      s.rounds,
		RoundStats:  stats,
	}, nil
}

func (s *Saturator) round(ctx context.Context, rctx *rules.Context) (RoundStats, error) {
	start := s.opts.Clock.Now()
	s.rounds++
	st := RoundStats{Round: s.rounds}
	delta := s.pending
	var carry []store.IDTriple
	if s.opts.RoundSize > 0 && len(delta) > s.opts.RoundSize {
		delta, carry = delta[:s.opts.RoundSize], delta[s.opts.RoundSize:]
	}
	st.Delta = len(delta)
	span, ctx := opentracing.StartSpanFromContext(ctx, "saturate round")
	span.SetTag("round", st.Round)
	span.SetTag("delta", st.Delta)
	defer span.Finish()

	outputs := make([]*rules.Output, parallel.NumChunks(len(delta), s.opts.ChunkSize))
	err := parallel.InvokeChunks(ctx, len(delta), s.opts.ChunkSize, s.opts.Parallelism,
		func(ctx context.Context, chunk, begin, end int) error {
			out := rules.NewOutput(rctx)
			for _, t := range delta[begin:end] {
				for _, r := range s.opts.Rules {
					r.Fire(rctx, t, out)
				}
			}
			outputs[chunk] = out
			return nil
		})
	if err != nil {
		return st, err
	}

	next := append([]store.IDTriple(nil), carry...)
	for _, out := range outputs {
		for _, d := range out.Derivations {
			isNew, err := s.store.InsertID(d.Conclusion)
			if err != nil {
				return st, err
			}
			if !isNew {
				continue
			}
			s.derivations[d.Conclusion] = Record{Derivation: d, Round: st.Round}
			next = append(next, d.Conclusion)
			st.Derived++
			metrics.derivedTotal.WithLabelValues(string(d.Rule)).Inc()
		}
		for _, v := range out.Violations {
			if s.addViolation(v) {
				st.Violations++
				metrics.violationsTotal.WithLabelValues(string(v.Rule)).Inc()
				log.WithFields(log.Fields{
					"rule":    v.Rule,
					"subject": s.store.Dict().Term(v.Subject),
					"values":  fmt.Sprintf("%v, %v", s.store.Dict().Term(v.Values[0]), s.store.Dict().Term(v.Values[1])),
				}).Warn("Consistency violation")
			}
		}
	}
	s.pending = next
	st.Duration = clocks.Since(s.opts.Clock, start)
	metrics.roundsTotal.Inc()
	metrics.deltaSize.Observe(float64(st.Delta))
	metrics.roundDurationSeconds.Observe(st.Duration.Seconds())
	log.WithFields(log.Fields{
		"round":      st.Round,
		"delta":      st.Delta,
		"derived":    st.Derived,
		"violations": st.Violations,
		"duration":   st.Duration,
	}).Debug("Saturation round done")
	return st, nil
}

func (s *Saturator) addViolation(v rules.Violation) bool {
	key := v.Key()
	if _, exists := s.seen[key]; exists {
		return false
	}
	s.seen[key] = struct{}{}
	s.violations = append(s.violations, v)
	return true
}
