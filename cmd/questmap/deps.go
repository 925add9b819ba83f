// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"

	"github.com/holomush/questmap/internal/observability"
	"github.com/holomush/questmap/internal/sim"
)

// RunDeps contains injectable dependencies for the run command.
// All fields with nil values will use their default implementations.
type RunDeps struct {
	// ScenarioLoader resolves and parses a scenario reference.
	// Default: pipeline.LoadScenario
	ScenarioLoader func(ref string) (*sim.Scenario, string, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer with the engine metrics registered
	ObservabilityServerFactory func(addr string, ready observability.ReadinessChecker) ObservabilityServer
}

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}
