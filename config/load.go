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

package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/i-d-lytvynenko/kg-inference/util/errors"
	log "github.com/sirupsen/logrus"
)

// Load parses the configuration from the given JSON file, validates it, and
// fills in defaults. If filename is empty, it returns Default(). Otherwise,
// upon success, it returns a non-nil configuration; upon failure, it returns
// an error, which already includes the filename.
func Load(filename string) (*Reasoner, error) {
	if filename == "" {
		return Default(), nil
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	reader := bufio.NewReader(f)
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	cfg := new(Reasoner)
	// This **Reasoner double-pointer appears to be required to detect an invalid
	// input of "null". See Test_Load/file_contains_null test.
	err = decoder.Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("error decoding JSON value in %v: %v", filename, err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("loading %v resulted in nil config", filename)
	}
	if decoder.More() {
		return nil, fmt.Errorf("found unexpected data after config in %v", filename)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %v: %v", filename, err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// Validate returns an error for settings that can't be defaulted away.
func (cfg *Reasoner) Validate() error {
	if cfg.Saturation != nil {
		if cfg.Saturation.Parallelism < 0 || cfg.Saturation.ChunkSize < 0 || cfg.Saturation.MaxRounds < 0 {
			return fmt.Errorf("saturation settings may not be negative")
		}
	}
	if cfg.Tracing != nil && (cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1) {
		return fmt.Errorf("tracing sampleRate must be between 0 and 1, got %v", cfg.Tracing.SampleRate)
	}
	if cfg.Logging != nil {
		if cfg.Logging.Level != "" {
			if _, err := log.ParseLevel(cfg.Logging.Level); err != nil {
				return err
			}
		}
		switch cfg.Logging.Format {
		case "", "text", "json":
		default:
			return fmt.Errorf("logging format must be text or json, got %q", cfg.Logging.Format)
		}
	}
	return nil
}

// Write marshalls the configuration as JSON to the given file. It truncates the
// file if it already exists. It returns nil upon success. Otherwise, it returns
// an error, which already includes the filename.
func Write(cfg *Reasoner, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	writer := bufio.NewWriter(f)
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "\t")
	err = errors.Any(
		encoder.Encode(cfg),
		writer.Flush(),
		f.Close(),
	)
	if err != nil {
		return fmt.Errorf("failed to write %v: %v", filename, err)
	}
	return nil
}
