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

// Package api serves a knowledge base over HTTP. Queries read whichever graph
// is current when they start; /build extends it with new facts.
package api

import (
	"context"
	"errors"
	"net/http"
	_ "net/http/pprof" // enable pprof endpoints
	"time"

	"github.com/i-d-lytvynenko/kg-inference/config"
	"github.com/i-d-lytvynenko/kg-inference/ingest"
	"github.com/i-d-lytvynenko/kg-inference/kb"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// shutdownTimeout bounds how long Run waits for in-flight requests once its
// context is done.
const shutdownTimeout = 5 * time.Second

// New returns a new instance of the API server. The returned Server will not
// start handling traffic until a subsequent call to Server.Run(). cfg should
// have had its defaults applied.
func New(cfg *config.Reasoner, base *kb.KnowledgeBase, ingestOpts ingest.Options) *Server {
	return &Server{
		cfg:        cfg,
		kb:         base,
		buildOpts:  kb.OptionsFromConfig(cfg.Saturation),
		ingestOpts: ingestOpts,
	}
}

// Server is an implementation of the HTTP interface to a knowledge base.
type Server struct {
	cfg        *config.Reasoner
	kb         *kb.KnowledgeBase
	buildOpts  kb.BuildOptions
	ingestOpts ingest.Options
}

// Handler returns the HTTP handler for every endpoint.
func (s *Server) Handler() http.Handler {
	m := httprouter.New()

	m.GET("/ask", s.ask)
	m.GET("/consistency", s.consistency)
	m.GET("/explain", s.explain)
	m.POST("/build", s.build)
	// prometheus metrics
	m.Handler("GET", "/metrics", promhttp.Handler())
	m.GET("/stats", s.stats)
	m.GET("/stats.txt", s.statsTable)
	m.POST("/logLevel", s.setLogLevel)

	m.NotFound = http.DefaultServeMux
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debugf("[API] %v %v", r.Method, r.URL)
		m.ServeHTTP(w, r)
	})
}

// Run will start listening for HTTP requests. This function will block until
// ctx is done or the server fails.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	srv := &http.Server{
		Addr:    s.cfg.API.HTTPAddress,
		Handler: s.Handler(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Error shutting down HTTP server")
		}
	}()
	log.WithField("address", srv.Addr).Info("Serving HTTP API")
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
