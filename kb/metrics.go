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

package kb

import (
	metricsutil "github.com/i-d-lytvynenko/kg-inference/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type kbMetrics struct {
	buildsTotal          *prometheus.CounterVec
	buildDurationSeconds prometheus.Histogram
	graphVersion         prometheus.Gauge
	graphTriples         prometheus.Gauge
	graphDerived         prometheus.Gauge
	graphViolations      prometheus.Gauge
}

var metrics kbMetrics

func init() {
	mr := metricsutil.Registry{R: prometheus.DefaultRegisterer}
	metrics = kbMetrics{
		buildsTotal: mr.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "kb",
			Name:      "builds_total",
			Help: `The number of builds attempted, by outcome. The outcome is one of
success, violations, rejected, validated, cancelled, or failed.`,
		}, []string{"outcome"}),
		buildDurationSeconds: mr.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "kb",
			Name:      "build_duration_seconds",
			Help:      `The time taken by builds that reached a fixpoint.`,
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		graphVersion: mr.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "kb",
			Name:      "graph_version",
			Help:      `The version of the graph currently served.`,
		}),
		graphTriples: mr.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "kb",
			Name:      "graph_triples",
			Help:      `The number of triples, asserted and derived, in the graph currently served.`,
		}),
		graphDerived: mr.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "kb",
			Name:      "graph_derived_triples",
			Help:      `The number of derived triples in the graph currently served.`,
		}),
		graphViolations: mr.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "kb",
			Name:      "graph_violations",
			Help:      `The number of consistency violations in the graph currently served.`,
		}),
	}
}
