// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
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

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/i-d-lytvynenko/kg-inference/graph"
	"github.com/i-d-lytvynenko/kg-inference/kb"
	"github.com/i-d-lytvynenko/kg-inference/parser"
	"github.com/i-d-lytvynenko/kg-inference/rdf"
	"github.com/i-d-lytvynenko/kg-inference/util/tracing"
	"github.com/i-d-lytvynenko/kg-inference/util/web"
	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"
)

// askChunkSize is how many triples /ask reads from the graph at a time.
const askChunkSize = 256

var errLimitReached = errors.New("result limit reached")

// current returns the graph to answer a request from.
func (s *Server) current() (*graph.Graph, error) {
	g := s.kb.Current()
	if g == nil {
		return nil, web.Errorf(http.StatusServiceUnavailable, "%w", kb.ErrNoGraph)
	}
	return g, nil
}

// parsePattern reads the s, p, and o query parameters. A missing parameter is
// a wildcard.
func parsePattern(r *http.Request) (rdf.Triple, error) {
	q := r.URL.Query()
	var terms [3]rdf.Term
	for i, name := range []string{"s", "p", "o"} {
		term, err := parser.ParseTerm(q.Get(name))
		if err != nil {
			return rdf.Triple{}, web.Errorf(http.StatusBadRequest, "unable to parse %s: %v", name, err)
		}
		terms[i] = term
	}
	return rdf.Triple{Subject: terms[0], Predicate: terms[1], Object: terms[2]}, nil
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, web.Errorf(http.StatusBadRequest, "limit must be a non-negative integer, got %q", raw)
	}
	return limit, nil
}

// statusOf returns the status code to report err with.
func statusOf(err error) int {
	var se *web.StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return http.StatusInternalServerError
}

func tripleStrings(t rdf.Triple) [3]string {
	return [3]string{t.Subject.String(), t.Predicate.String(), t.Object.String()}
}

// Structure to hold the JSON response for /ask.
type askResponse struct {
	Error     string      `json:"error,omitempty"`
	Pattern   string      `json:"pattern"`
	Version   uint64      `json:"version"`
	Count     int         `json:"count"`
	Truncated bool        `json:"truncated,omitempty"`
	Triples   [][3]string `json:"triples"`
}

// ask returns the triples matching a pattern. With format=text, it writes one
// triple per line in the same syntax /build accepts.
func (s *Server) ask(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	span, ctx := tracing.StartSpan(r.Context(), "api ask", metrics.askLatencySeconds)
	defer span.Finish()

	resp := askResponse{Triples: [][3]string{}}
	var triples []rdf.Triple
	status := http.StatusOK
	asText := r.URL.Query().Get("format") == "text"
	defer func() {
		if status != http.StatusOK {
			metrics.requestErrorsTotal.WithLabelValues("ask").Inc()
		}
		if asText && status == http.StatusOK {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			for _, t := range triples {
				io.WriteString(w, parser.Format(t))
				io.WriteString(w, "\n")
			}
			return
		}
		// Always write out JSON, even for errors.
		web.WriteJSON(w, status, resp)
	}()

	pattern, err := parsePattern(r)
	if err != nil {
		resp.Error, status = err.Error(), statusOf(err)
		return
	}
	resp.Pattern = pattern.String()
	limit, err := parseLimit(r)
	if err != nil {
		resp.Error, status = err.Error(), statusOf(err)
		return
	}
	g, err := s.current()
	if err != nil {
		resp.Error, status = err.Error(), statusOf(err)
		return
	}
	resp.Version = g.Version()
	err = g.AskChunks(ctx, pattern, askChunkSize, func(chunk *rdf.Chunk) error {
		for _, t := range chunk.Triples {
			if limit > 0 && len(triples) == limit {
				resp.Truncated = true
				return errLimitReached
			}
			triples = append(triples, t)
		}
		return nil
	})
	if err != nil && err != errLimitReached {
		log.WithError(err).WithField("pattern", pattern).Warn("Ask failed")
		resp.Error, status = err.Error(), http.StatusInternalServerError
		return
	}
	for _, t := range triples {
		resp.Triples = append(resp.Triples, tripleStrings(t))
	}
	resp.Count = len(triples)
	span.SetTag("results", resp.Count)
	metrics.askResults.Observe(float64(resp.Count))
}

type violationJSON struct {
	Kind       string    `json:"kind"`
	Individual string    `json:"individual"`
	Property   string    `json:"property,omitempty"`
	Values     [2]string `json:"values"`
	Rule       string    `json:"rule"`
	Premises   []string  `json:"premises"`
	Message    string    `json:"message"`
}

func toViolationJSON(v graph.Violation) violationJSON {
	res := violationJSON{
		Kind:       v.Kind.String(),
		Individual: v.Individual.String(),
		Values:     [2]string{v.Values[0].String(), v.Values[1].String()},
		Rule:       string(v.Rule),
		Premises:   make([]string, len(v.Premises)),
		Message:    v.String(),
	}
	if !v.Property.IsAny() {
		res.Property = v.Property.String()
	}
	for i, p := range v.Premises {
		res.Premises[i] = p.String()
	}
	return res
}

// Structure to hold the JSON response for /consistency.
type consistencyResponse struct {
	Version    uint64          `json:"version"`
	Consistent bool            `json:"consistent"`
	Violations []violationJSON `json:"violations"`
}

func (s *Server) consistency(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	g, err := s.current()
	if err != nil {
		metrics.requestErrorsTotal.WithLabelValues("consistency").Inc()
		web.Write(w, err)
		return
	}
	resp := consistencyResponse{
		Version:    g.Version(),
		Consistent: g.IsConsistent(),
		Violations: []violationJSON{},
	}
	for _, v := range g.Violations() {
		resp.Violations = append(resp.Violations, toViolationJSON(v))
	}
	web.WriteJSON(w, http.StatusOK, resp)
}

// explanationJSON is one node of an explanation. In a tree, each distinct
// node has an ID and is written out once; later uses of it hold only the
// triple and a Ref to that ID.
type explanationJSON struct {
	ID       int                `json:"id,omitempty"`
	Ref      int                `json:"ref,omitempty"`
	Triple   [3]string          `json:"triple"`
	Asserted bool               `json:"asserted"`
	Rule     string             `json:"rule,omitempty"`
	Round    int                `json:"round,omitempty"`
	Premises [][3]string        `json:"premises,omitempty"`
	Children []*explanationJSON `json:"children,omitempty"`
}

func toExplanationJSON(e *graph.Explanation) *explanationJSON {
	res := &explanationJSON{
		Triple:   tripleStrings(e.Triple),
		Asserted: e.Asserted,
		Rule:     string(e.Rule),
		Round:    e.Round,
	}
	for _, p := range e.Premises {
		res.Premises = append(res.Premises, tripleStrings(p))
	}
	return res
}

// toTreeJSON converts a tree, numbering nodes in the order they're first
// reached. The result is linear in the number of distinct nodes.
func toTreeJSON(tree *graph.ExplanationTree) *explanationJSON {
	ids := make(map[*graph.ExplanationTree]int)
	var convert func(node *graph.ExplanationTree) *explanationJSON
	convert = func(node *graph.ExplanationTree) *explanationJSON {
		if id, ok := ids[node]; ok {
			return &explanationJSON{Ref: id, Triple: tripleStrings(node.Triple)}
		}
		ids[node] = len(ids) + 1
		res := toExplanationJSON(&node.Explanation)
		res.ID = ids[node]
		for _, child := range node.Children {
			res.Children = append(res.Children, convert(child))
		}
		return res
	}
	return convert(tree)
}

// explain says how the graph came to hold the triple given by s, p, and o.
// With tree=true, it explains the premises too, down to asserted triples.
// With format=dot, it writes the tree as a Graphviz digraph.
func (s *Server) explain(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	span, ctx := tracing.StartSpan(r.Context(), "api explain", metrics.explainLatencySeconds)
	defer span.Finish()

	res, err := s.explainTriple(ctx, r)
	if err != nil {
		metrics.requestErrorsTotal.WithLabelValues("explain").Inc()
		web.Write(w, err)
		return
	}
	web.Write(w, res)
}

type dotWriter struct {
	tree *graph.ExplanationTree
}

func (d dotWriter) HTTPWrite(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	d.tree.Graphviz(w)
}

func (s *Server) explainTriple(ctx context.Context, r *http.Request) (interface{}, error) {
	t, err := parsePattern(r)
	if err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, web.Errorf(http.StatusBadRequest, "can't explain %v: %v", t, err)
	}
	g, err := s.current()
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	asDot := q.Get("format") == "dot"
	wantTree, _ := strconv.ParseBool(q.Get("tree"))
	if !wantTree && !asDot {
		e, err := g.Explain(t)
		if err != nil {
			return nil, notFound(err)
		}
		return toExplanationJSON(e), nil
	}
	tree, err := g.ExplainTree(ctx, t)
	if err != nil {
		return nil, notFound(err)
	}
	if asDot {
		return dotWriter{tree}, nil
	}
	return toTreeJSON(tree), nil
}

func notFound(err error) error {
	if errors.Is(err, graph.ErrNotInGraph) {
		return web.Errorf(http.StatusNotFound, "%w", err)
	}
	return err
}
