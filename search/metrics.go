// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the prometheus instruments of a search.
type Metrics struct {
	Iterations prometheus.Counter
	// Calls counts feasibility checks by outcome: sat, unsat, trivial (no
	// solver needed) and error.
	Calls   *prometheus.CounterVec
	Clauses *prometheus.GaugeVec
	Best    prometheus.Gauge
	Bounds  *prometheus.GaugeVec
}

// NewMetrics registers the search metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Iterations: f.NewCounter(prometheus.CounterOpts{
			Namespace: "dccopt",
			Name:      "search_iterations_total",
			Help:      "Bisection steps taken."}),
		Calls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dccopt",
			Name:      "feasibility_checks_total",
			Help:      "Clock period feasibility checks by outcome."},
			[]string{"result"}),
		Clauses: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "dccopt",
			Name:      "clauses",
			Help:      "Clauses per set in the last problem."},
			[]string{"set"}),
		Best: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "dccopt",
			Name:      "best_tc",
			Help:      "Smallest feasible clock period found."}),
		Bounds: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "dccopt",
			Name:      "bound_tc",
			Help:      "Current search bounds."},
			[]string{"bound"})}
}
