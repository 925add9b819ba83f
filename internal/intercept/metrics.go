// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package intercept

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Spawn sources recorded by the spawn event counter.
const (
	SourceItem   = "item"
	SourcePrefab = "prefab"
)

// SpawnEvents counts spawn records added by hooks.
// Use RegisterMetrics to register this with a Prometheus registry.
var SpawnEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "questmap_spawn_events_total",
		Help: "Total number of intercepted spawns recorded by source",
	},
	[]string{"source"},
)

// DroppedEvents counts hook events dropped after an introspection failure.
var DroppedEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "questmap_hook_events_dropped_total",
		Help: "Total number of hook events dropped by operation",
	},
	[]string{"operation"},
)

// InstallFailures counts hooks that failed to install.
var InstallFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "questmap_hook_install_failures_total",
		Help: "Total number of hook installation failures by operation",
	},
	[]string{"operation"},
)

// RegisterMetrics registers interception metrics with reg.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(SpawnEvents)
	reg.MustRegister(DroppedEvents)
	reg.MustRegister(InstallFailures)
}
