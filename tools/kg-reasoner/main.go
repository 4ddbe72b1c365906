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

// Command kg-reasoner builds a knowledge base from an ontology and facts,
// then queries it or serves it over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	docopt "github.com/docopt/docopt-go"
	"github.com/i-d-lytvynenko/kg-inference/config"
	"github.com/i-d-lytvynenko/kg-inference/ingest"
	"github.com/i-d-lytvynenko/kg-inference/util/debuglog"
	"github.com/i-d-lytvynenko/kg-inference/util/tracing"
	opentracing "github.com/opentracing/opentracing-go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var fmtr = message.NewPrinter(language.English)

const usage = `kg-reasoner builds a knowledge base from an ontology and facts, saturates
it, and answers questions about the result.

Usage:
  kg-reasoner [options] build ONTOLOGY [FACTS...]
  kg-reasoner [options] ask --pattern=PATTERN [--limit=NUM] ONTOLOGY [FACTS...]
  kg-reasoner [options] explain --triple=TRIPLE [--tree] [--graph=FILE] ONTOLOGY [FACTS...]
  kg-reasoner [options] stats ONTOLOGY [FACTS...]
  kg-reasoner [options] serve [--api=HOST] ONTOLOGY [FACTS...]
  kg-reasoner -h | --help

Options:
  -h, --help              Show this message.
  --config=FILE           Reasoner configuration file. Defaults apply if not given.
  -q, --quiet             Don't show progress bars.
  --reject                Don't adopt a graph that has consistency violations.
  --namespace=NS          Prefix for IRIs minted from extracted entity names.
  --min-confidence=NUM    Drop extracted entities with a lower confidence [default: 0].
  --pattern=PATTERN       Triple pattern to match. Use ? or ?name for wildcards.
  --limit=NUM             Print at most this many triples; 0 prints them all [default: 0].
  --triple=TRIPLE         Triple to explain.
  --tree                  Explain the premises too, down to asserted facts.
  --graph=FILE            Write the explanation as a diagram (.dot, .pdf, .png, or .svg).
  --api=HOST              Host and port to serve the HTTP API on. Overrides the config.

The ONTOLOGY file is a JSON ontology definition. Each FACTS file holds triples,
one per line, or an extraction result if its name ends in .json. Either may be
- to read standard input.

Examples:
  # Saturate and report on consistency.
  kg-reasoner build office.json facts.nt

  # Find everything typed as an office item.
  kg-reasoner ask --pattern '?x rdf:type <OfficeItem>' office.json facts.nt

  # Show how a triple was derived, as a diagram.
  kg-reasoner explain --triple '<Pen> rdf:type <OfficeItem>' --graph why.svg office.json facts.nt

  # Serve the saturated graph.
  kg-reasoner serve --api localhost:9988 office.json facts.nt extraction.json
`

type options struct {
	ConfigFile string `docopt:"--config"`
	Quiet      bool   `docopt:"--quiet"`
	Reject     bool   `docopt:"--reject"`

	Ontology string   `docopt:"ONTOLOGY"`
	Facts    []string `docopt:"FACTS"`

	Namespace           string `docopt:"--namespace"`
	MinConfidence       float64
	MinConfidenceString string `docopt:"--min-confidence"`

	// Build
	Build bool `docopt:"build"`

	// Ask
	Ask         bool   `docopt:"ask"`
	Pattern     string `docopt:"--pattern"`
	Limit       int
	LimitString string `docopt:"--limit"`

	// Explain
	Explain bool   `docopt:"explain"`
	Triple  string `docopt:"--triple"`
	Tree    bool   `docopt:"--tree"`
	Graph   string `docopt:"--graph"`

	// Stats
	Stats bool `docopt:"stats"`

	// Serve
	Serve       bool   `docopt:"serve"`
	HTTPAddress string `docopt:"--api"`

	Help bool `docopt:"--help"`
}

func parseArgs() *options {
	opts, err := docopt.ParseDoc(usage)
	if err != nil {
		log.Fatalf("Error parsing command-line arguments: %v", err)
	}
	var options options
	err = opts.Bind(&options)
	if err != nil {
		log.Fatalf("Error binding command-line arguments: %v\nfrom: %+v", err, opts)
	}
	if options.MinConfidenceString != "" {
		options.MinConfidence, err = strconv.ParseFloat(options.MinConfidenceString, 64)
		if err != nil {
			log.Fatalf("Unable to parse min-confidence value: %v", err)
		}
	}
	if options.LimitString != "" {
		options.Limit, err = strconv.Atoi(options.LimitString)
		if err != nil || options.Limit < 0 {
			log.Fatalf("Limit must be a non-negative integer, got %q", options.LimitString)
		}
	}
	return &options
}

func (opts *options) ingestOptions() ingest.Options {
	return ingest.Options{
		Namespace:     opts.Namespace,
		MinConfidence: opts.MinConfidence,
	}
}

func main() {
	options := parseArgs()
	cfg, err := config.Load(options.ConfigFile)
	if err != nil {
		log.Fatalf("Unable to load configuration: %v", err)
	}
	if options.Reject {
		cfg.Saturation.RejectInconsistent = true
	}
	if options.HTTPAddress != "" {
		cfg.API.HTTPAddress = options.HTTPAddress
	}
	debuglog.ConfigureFrom(cfg.Logging)

	tracer, err := tracing.New(cfg.Tracing)
	if err != nil {
		log.WithError(err).Warn("Could not initialize OpenTracing tracer")
		tracer = &tracing.Tracer{}
	}
	defer tracer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	span, ctx := opentracing.StartSpanFromContext(ctx, "kg-reasoner run")
	defer span.Finish()

	r := &reasoner{cfg: cfg, options: options, out: os.Stdout}
	switch {
	case options.Build:
		err = r.build(ctx)
	case options.Ask:
		err = r.ask(ctx)
	case options.Explain:
		err = r.explain(ctx)
	case options.Stats:
		err = r.stats(ctx)
	case options.Serve:
		err = r.serve(ctx)
	default:
		log.Fatalf("command not implemented")
	}
	if err != nil {
		span.Finish()
		tracer.Close()
		log.Fatalf("Error: %v", err)
	}
}
