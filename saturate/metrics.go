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

package saturate

import (
	metricsutil "github.com/i-d-lytvynenko/kg-inference/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type saturateMetrics struct {
	roundsTotal          prometheus.Counter
	roundDurationSeconds prometheus.Histogram
	deltaSize            prometheus.Histogram
	derivedTotal         *prometheus.CounterVec
	violationsTotal      *prometheus.CounterVec
}

var metrics saturateMetrics

func init() {
	mr := metricsutil.Registry{R: prometheus.DefaultRegisterer}
	metrics = saturateMetrics{
		roundsTotal: mr.NewCounter(prometheus.CounterOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "saturate",
			Name:      "rounds_total",
			Help:      `The cumulative number of semi-naive rounds evaluated by all builds.`,
		}),
		roundDurationSeconds: mr.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "saturate",
			Name:      "round_duration_seconds",
			Help: `The time it takes to fire every rule on one round's delta and
insert the conclusions.`,
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		deltaSize: mr.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "saturate",
			Name:      "delta_triples",
			Help: `The number of triples in each round's delta.

The delta shrinks towards zero as a build approaches its fixpoint. Large deltas
late in a build point to long transitive chains in the data.`,
			Buckets: prometheus.ExponentialBuckets(1, 4, 12),
		}),
		derivedTotal: mr.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "saturate",
			Name:      "derived_triples_total",
			Help:      `The cumulative number of new triples concluded, by the rule that first concluded them.`,
		}, []string{"rule"}),
		violationsTotal: mr.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsutil.Namespace,
			Subsystem: "saturate",
			Name:      "violations_total",
			Help:      `The cumulative number of distinct consistency violations found, by rule.`,
		}, []string{"rule"}),
	}
}
