// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package questmap

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Refresh outcomes.
const (
	StatusSuccess = "success"
	StatusAborted = "aborted"
)

// Refreshes counts refresh passes by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Refreshes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "questmap_refreshes_total",
		Help: "Total number of marker refreshes by status",
	},
	[]string{"status"},
)

// RefreshDuration observes how long successful refreshes take.
var RefreshDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "questmap_refresh_duration_seconds",
		Help:    "Marker refresh duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
)

// PublishedMarkers is the size of the currently published marker list.
var PublishedMarkers = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "questmap_published_markers",
		Help: "Number of markers in the published list",
	},
)

// StrategyHits counts resolved tasks by the strategy that placed them.
var StrategyHits = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "questmap_strategy_hits_total",
		Help: "Total number of task positions resolved by strategy",
	},
	[]string{"strategy"},
)

// RegisterMetrics registers engine metrics with reg.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Refreshes)
	reg.MustRegister(RefreshDuration)
	reg.MustRegister(PublishedMarkers)
	reg.MustRegister(StrategyHits)
}

func recordRefresh(status string, start time.Time) {
	Refreshes.WithLabelValues(status).Inc()
	if status == StatusSuccess {
		RefreshDuration.Observe(time.Since(start).Seconds())
	}
}
