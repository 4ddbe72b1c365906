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
	"io"
	"net/http"

	"github.com/i-d-lytvynenko/kg-inference/util/stats"
	"github.com/i-d-lytvynenko/kg-inference/util/web"
	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"
)

type predicateCountJSON struct {
	Predicate string `json:"predicate"`
	Asserted  int    `json:"asserted"`
	Derived   int    `json:"derived"`
}

type ruleCountJSON struct {
	Rule    string `json:"rule"`
	Derived int    `json:"derived"`
}

// Structure to hold the JSON response for /stats.
type statsResponse struct {
	Version    uint64               `json:"version"`
	Built      string               `json:"built"`
	Triples    int                  `json:"triples"`
	Asserted   int                  `json:"asserted"`
	Derived    int                  `json:"derived"`
	Violations int                  `json:"violations"`
	Rounds     int                  `json:"rounds"`
	Predicates []predicateCountJSON `json:"predicates"`
	Rules      []ruleCountJSON      `json:"rules"`
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	g, err := s.current()
	if err != nil {
		web.Write(w, err)
		return
	}
	st := g.Stats()
	resp := statsResponse{
		Version:    st.Version,
		Built:      g.Built().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Triples:    st.Triples,
		Asserted:   st.Asserted,
		Derived:    st.Derived,
		Violations: st.Violations,
		Rounds:     st.Rounds,
		Predicates: make([]predicateCountJSON, len(st.Predicates)),
		Rules:      make([]ruleCountJSON, len(st.Rules)),
	}
	for i, p := range st.Predicates {
		resp.Predicates[i] = predicateCountJSON{
			Predicate: p.Predicate.String(),
			Asserted:  p.Asserted,
			Derived:   p.Derived,
		}
	}
	for i, rc := range st.Rules {
		resp.Rules[i] = ruleCountJSON{Rule: string(rc.Rule), Derived: rc.Derived}
	}
	web.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) statsTable(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	g, err := s.current()
	if err != nil {
		web.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	stats.PrettyPrint(w, g.Stats())
	if violations := g.Violations(); len(violations) > 0 {
		io.WriteString(w, "\n")
		stats.PrintViolations(w, violations)
	}
}

func (s *Server) setLogLevel(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	levelName := r.URL.Query().Get("l")
	level, err := log.ParseLevel(levelName)
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "Unable to parse level name: %s, %v", levelName, err)
		return
	}
	log.Infof("Setting log level to %v", level)
	log.SetLevel(level)
	w.WriteHeader(http.StatusNoContent)
}
