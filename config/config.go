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

// Package config defines the reasoner's configuration file.
package config

import (
	"runtime"
)

// Reasoner is the top-level configuration. Any section may be omitted, in
// which case its defaults apply.
type Reasoner struct {
	Saturation *Saturation `json:"saturation,omitempty"`
	API        *API        `json:"api,omitempty"`
	// If nil, traces aren't reported anywhere.
	Tracing *Tracing `json:"tracing,omitempty"`
	Logging *Logging `json:"logging,omitempty"`
}

// Saturation controls how builds saturate the knowledge base.
type Saturation struct {
	// The number of goroutines that fire rules within a round. Defaults to the
	// number of CPUs.
	Parallelism int `json:"parallelism,omitempty"`
	// The number of delta triples each goroutine takes at a time.
	ChunkSize int `json:"chunkSize,omitempty"`
	// A build that hasn't reached its fixpoint after this many rounds fails.
	MaxRounds int `json:"maxRounds,omitempty"`
	// If set, a build that finds consistency violations doesn't replace the
	// current graph.
	RejectInconsistent bool `json:"rejectInconsistent,omitempty"`
}

// API configures the HTTP query server.
type API struct {
	// host:port to listen on.
	HTTPAddress string `json:"httpAddress,omitempty"`
}

// Tracing configures where OpenTracing spans are reported.
type Tracing struct {
	ServiceName string `json:"serviceName,omitempty"`
	// host:port of a Jaeger agent accepting spans over UDP.
	AgentAddress string `json:"agentAddress,omitempty"`
	// URL of a Jaeger collector accepting jaeger.thrift over HTTP. It takes
	// precedence over AgentAddress.
	CollectorURL string `json:"collectorURL,omitempty"`
	// Fraction of traces to sample, from 0 to 1. Defaults to 1.
	SampleRate float64 `json:"sampleRate,omitempty"`
}

// Logging configures logrus.
type Logging struct {
	// One of the logrus level names, such as "debug" or "warning".
	Level       string `json:"level,omitempty"`
	ForceColors bool   `json:"forceColors,omitempty"`
	// "text" (the default) or "json", for log collectors that ingest one
	// JSON object per line.
	Format string `json:"format,omitempty"`
}

// Defaults.
const (
	DefaultChunkSize   = 256
	DefaultMaxRounds   = 1000
	DefaultHTTPAddress = "localhost:9988"
	DefaultServiceName = "kg-reasoner"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// Default returns a configuration with every section filled in with its
// defaults.
func Default() *Reasoner {
	cfg := &Reasoner{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in missing sections and zero fields with their
// defaults. Tracing is left alone, since a nil Tracing section turns tracing
// off.
func (cfg *Reasoner) ApplyDefaults() {
	if cfg.Saturation == nil {
		cfg.Saturation = new(Saturation)
	}
	if cfg.Saturation.Parallelism <= 0 {
		cfg.Saturation.Parallelism = runtime.NumCPU()
	}
	if cfg.Saturation.ChunkSize <= 0 {
		cfg.Saturation.ChunkSize = DefaultChunkSize
	}
	if cfg.Saturation.MaxRounds <= 0 {
		cfg.Saturation.MaxRounds = DefaultMaxRounds
	}
	if cfg.API == nil {
		cfg.API = new(API)
	}
	if cfg.API.HTTPAddress == "" {
		cfg.API.HTTPAddress = DefaultHTTPAddress
	}
	if cfg.Tracing != nil {
		if cfg.Tracing.ServiceName == "" {
			cfg.Tracing.ServiceName = DefaultServiceName
		}
		if cfg.Tracing.SampleRate <= 0 {
			cfg.Tracing.SampleRate = 1
		}
	}
	if cfg.Logging == nil {
		cfg.Logging = new(Logging)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
}
