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
	metricsutil "github.com/i-d-lytvynenko/kg-inference/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type apiMetrics struct {
	askLatencySeconds     prometheus.Summary
	explainLatencySeconds prometheus.Summary
	buildLatencySeconds   prometheus.Summary
	askResults            prometheus.Histogram
	requestErrorsTotal    *prometheus.CounterVec
}

var metrics apiMetrics

func init() {
	mr := metricsutil.Registry{R: prometheus.DefaultRegisterer}
	objectives := map[float64]float64{
		0.5:  0.05,
		0.9:  0.01,
		0.99: 0.001,
	}
	metrics = apiMetrics{
		askLatencySeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  metricsutil.Namespace,
			Subsystem:  "api",
			Name:       "ask_latency_seconds",
			Help:       `The time taken to answer /ask requests.`,
			Objectives: objectives,
		}),
		explainLatencySeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  metricsutil.Namespace,
			Subsystem:  "api",
			Name:       "explain_latency_seconds",
			Help:       `The time taken to answer /explain requests.`,
			Objectives: objectives,
		}),
		buildLatencySeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  metricsutil.Namespace,
			Subsystem:  "api",
			Name:       "build_latency_seconds",
			Help:       `The time taken to answer /build requests, including saturation.`,
			Objectives: objectives,
		}),
		askResults: mr.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "api",
			Name:      "ask_results",
			Help:      `The number of triples returned by /ask requests.`,
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		requestErrorsTotal: mr.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "api",
			Name:      "request_errors_total",
			Help:      `The number of requests that failed, by endpoint.`,
		}, []string{"endpoint"}),
	}
}
