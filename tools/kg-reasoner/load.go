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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cheggaaa/pb"
	"github.com/i-d-lytvynenko/kg-inference/ingest"
	"github.com/i-d-lytvynenko/kg-inference/ontology"
	"github.com/i-d-lytvynenko/kg-inference/parser"
	"github.com/i-d-lytvynenko/kg-inference/rdf"
	log "github.com/sirupsen/logrus"
)

// openInput opens the named file. filename may be "-" to read from stdin.
func openInput(filename string) (io.ReadCloser, error) {
	if filename == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(filename)
}

// loadSchema reads a JSON ontology definition and compiles it.
func loadSchema(filename string) (*ontology.Schema, error) {
	f, err := openInput(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	def, err := ontology.LoadDefinition(f)
	if err != nil {
		return nil, fmt.Errorf("%v: %v", filename, err)
	}
	model, err := ontology.FromDefinition(def)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", filename, err)
	}
	schema := model.Compile()
	log.WithFields(log.Fields{
		"filename":   filename,
		"classes":    len(schema.Classes()),
		"properties": len(schema.Properties()),
		"axioms":     len(schema.Axioms()),
	}).Info("Loaded ontology")
	return schema, nil
}

// loadFacts reads the facts in every file. Files named *.json hold extraction
// results; any other file holds triples, one per line. bar is advanced once
// per file.
func loadFacts(filenames []string, schema *ontology.Schema, opts ingest.Options, bar *pb.ProgressBar) ([]rdf.Triple, error) {
	var res []rdf.Triple
	for _, filename := range filenames {
		facts, err := loadFactsFile(filename, schema, opts)
		if err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{
			"filename": filename,
			"facts":    len(facts),
		}).Debug("Loaded facts")
		res = append(res, facts...)
		bar.Increment()
	}
	return res, nil
}

func loadFactsFile(filename string, schema *ontology.Schema, opts ingest.Options) ([]rdf.Triple, error) {
	f, err := openInput(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.HasSuffix(strings.ToLower(filename), ".json") {
		extraction, err := ingest.Load(f)
		if err != nil {
			return nil, fmt.Errorf("%v: %v", filename, err)
		}
		facts, err := extraction.Triples(schema, opts)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", filename, err)
		}
		return facts, nil
	}
	facts, err := parser.ReadTriples(f)
	if err != nil {
		return nil, fmt.Errorf("%v: %v", filename, err)
	}
	return facts, nil
}
