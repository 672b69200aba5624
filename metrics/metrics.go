// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package metrics holds the Prometheus collectors for concept matching.
//
// All methods are safe to call on a nil *Metrics, which disables collection.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "conceptmatch"

// Document outcomes used as the status label.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds the collectors for matcher and pipeline activity.
type Metrics struct {
	lookups           *prometheus.CounterVec // By tier
	matches           *prometheus.CounterVec // By tier
	concepts          *prometheus.CounterVec // By tier
	skippedCandidates prometheus.Counter

	documents        *prometheus.CounterVec // By status
	documentDuration prometheus.Histogram
}

// New creates the collectors and registers them with reg.
// A nil reg returns nil, which disables metrics.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matcher",
			Name:      "lookups_total",
			Help:      "Dictionary lookups attempted, by tier",
		}, []string{"tier"}),

		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matcher",
			Name:      "matches_total",
			Help:      "Candidate spans matched, by the tier that matched them",
		}, []string{"tier"}),

		concepts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matcher",
			Name:      "concepts_total",
			Help:      "Concepts emitted, by tier",
		}, []string{"tier"}),

		skippedCandidates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matcher",
			Name:      "trivial_candidates_total",
			Help:      "Candidate spans skipped because every part of speech in them is trivial",
		}),

		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "documents_total",
			Help:      "Documents processed, by status",
		}, []string{"status"}),

		documentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "document_duration_seconds",
			Help:      "Time spent matching one document",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}

	for _, c := range []prometheus.Collector{
		m.lookups, m.matches, m.concepts, m.skippedCandidates, m.documents, m.documentDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveLookup counts one dictionary lookup in tier.
func (m *Metrics) ObserveLookup(tier string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(tier).Inc()
}

// ObserveMatch counts a candidate matched in tier with the given number of
// concepts.
func (m *Metrics) ObserveMatch(tier string, concepts int) {
	if m == nil {
		return
	}
	m.matches.WithLabelValues(tier).Inc()
	m.concepts.WithLabelValues(tier).Add(float64(concepts))
}

// ObserveSkip counts a candidate skipped as trivial.
func (m *Metrics) ObserveSkip() {
	if m == nil {
		return
	}
	m.skippedCandidates.Inc()
}

// ObserveDocument records one processed document.
func (m *Metrics) ObserveDocument(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.documents.WithLabelValues(status).Inc()
	m.documentDuration.Observe(elapsed.Seconds())
}
