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

package api

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/i-d-lytvynenko/kg-inference/ingest"
	"github.com/i-d-lytvynenko/kg-inference/kb"
	"github.com/i-d-lytvynenko/kg-inference/ontology"
	"github.com/i-d-lytvynenko/kg-inference/parser"
	"github.com/i-d-lytvynenko/kg-inference/rdf"
	"github.com/i-d-lytvynenko/kg-inference/util/tracing"
	"github.com/i-d-lytvynenko/kg-inference/util/web"
	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"
)

// maxBuildBody limits the size of a /build request body.
const maxBuildBody = 64 << 20

// Structure to hold the JSON response for /build.
type buildResponse struct {
	Error      string          `json:"error,omitempty"`
	Status     string          `json:"status,omitempty"`
	Adopted    bool            `json:"adopted"`
	Version    uint64          `json:"version,omitempty"`
	Triples    int             `json:"triples,omitempty"`
	Asserted   int             `json:"asserted"`
	Derived    int             `json:"derived"`
	Rounds     int             `json:"rounds"`
	Duration   string          `json:"duration,omitempty"`
	Violations []violationJSON `json:"violations"`
}

// build extends the current graph with the facts in the request body. The
// body is either triples, one per line, or an extraction document when the
// Content-Type is application/json. With validate=true, the new graph is
// built and reported on but not published.
func (s *Server) build(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	span, ctx := tracing.StartSpan(r.Context(), "api build", metrics.buildLatencySeconds)
	defer span.Finish()

	resp := buildResponse{Violations: []violationJSON{}}
	status := http.StatusOK
	// Always write out JSON, even for errors.
	defer func() {
		if status != http.StatusOK {
			metrics.requestErrorsTotal.WithLabelValues("build").Inc()
		}
		web.WriteJSON(w, status, resp)
	}()
	fail := func(err error) {
		resp.Error, status = err.Error(), buildStatusOf(err)
	}

	validate, _ := strconv.ParseBool(r.URL.Query().Get("validate"))
	g, err := s.current()
	if err != nil {
		fail(err)
		return
	}
	facts, err := s.readFacts(w, r, g.Schema())
	if err != nil {
		fail(err)
		return
	}
	span.SetTag("facts", len(facts))

	var res *kb.BuildResult
	if validate {
		res, err = s.kb.Validate(ctx, facts, s.buildOpts)
	} else {
		res, err = s.kb.Extend(ctx, facts, s.buildOpts)
	}
	if err != nil {
		log.WithError(err).Warn("Build requested over HTTP failed")
		fail(err)
		return
	}
	resp.Status = res.Status.String()
	resp.Adopted = res.Adopted
	resp.Version = res.Graph.Version()
	resp.Triples = res.Graph.Len()
	resp.Asserted = res.Asserted
	resp.Derived = res.Derived
	resp.Rounds = res.Rounds
	resp.Duration = res.Duration.String()
	for _, v := range res.Violations {
		resp.Violations = append(resp.Violations, toViolationJSON(v))
	}
}

func (s *Server) readFacts(w http.ResponseWriter, r *http.Request, schema *ontology.Schema) ([]rdf.Triple, error) {
	body := http.MaxBytesReader(w, r.Body, maxBuildBody)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		extraction, err := ingest.Load(body)
		if err != nil {
			return nil, web.Errorf(http.StatusBadRequest, "%v", err)
		}
		return extraction.Triples(schema, s.ingestOpts)
	}
	facts, err := parser.ReadTriples(body)
	if err != nil {
		return nil, web.Errorf(http.StatusBadRequest, "%v", err)
	}
	return facts, nil
}

// buildStatusOf returns the status code to report a failed build with.
func buildStatusOf(err error) int {
	var malformed *ontology.MalformedInputError
	switch {
	case errors.As(err, &malformed):
		return http.StatusBadRequest
	case errors.Is(err, kb.ErrNoGraph), errors.Is(err, kb.ErrBuildCancelled):
		return http.StatusServiceUnavailable
	}
	return statusOf(err)
}
