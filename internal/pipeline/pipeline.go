// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package pipeline assembles the marker engine, its hooks and the refresh
// controller around a simulated world.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/holomush/questmap/internal/config"
	"github.com/holomush/questmap/internal/intercept"
	"github.com/holomush/questmap/internal/questmap"
	"github.com/holomush/questmap/internal/refresh"
	"github.com/holomush/questmap/internal/resolve"
	"github.com/holomush/questmap/internal/sim"
	"github.com/holomush/questmap/internal/spawn"
	"github.com/holomush/questmap/internal/trigger"
)

// Pipeline is one fully wired world and engine.
type Pipeline struct {
	World      *sim.World
	Table      *intercept.Table
	Registry   *spawn.Registry
	Engine     *questmap.Engine
	Patcher    *intercept.Patcher
	Renderer   *sim.Renderer
	Controller *refresh.Controller

	runner *sim.Runner
	logger *slog.Logger
}

// New wires a pipeline for scenario. The controller is not enabled until
// Start.
func New(scenario *sim.Scenario, cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	matcher, err := resolve.NewSceneMatcher(cfg.Scene.Aliases)
	if err != nil {
		return nil, err
	}

	table := intercept.NewTable(sim.Operations...)
	world, err := sim.NewWorld(scenario, table, sim.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	registry := spawn.NewRegistry(spawn.WithTolerance(cfg.Engine.SpawnTolerance))
	resolver := resolve.New(
		resolve.WithSceneMatcher(matcher),
		resolve.WithRadiusPolicy(cfg.Engine.DefaultRadius, cfg.Engine.MinRadius),
		resolve.WithLogger(logger),
	)
	engine := questmap.NewEngine(world, world, registry, trigger.NewCache(logger), resolver,
		questmap.WithBucketSize(cfg.Engine.BucketSize),
		questmap.WithLogger(logger),
	)
	patcher := intercept.NewPatcher(table, registry, world,
		intercept.WithSpawnRadius(cfg.Engine.DefaultRadius),
		intercept.WithPatcherLogger(logger),
	)
	renderer := sim.NewRenderer()
	ctl := refresh.NewController(engine, patcher, world, world, renderer, refresh.WithLogger(logger))
	world.SetListener(ctl)

	return &Pipeline{
		World:      world,
		Table:      table,
		Registry:   registry,
		Engine:     engine,
		Patcher:    patcher,
		Renderer:   renderer,
		Controller: ctl,
		runner:     sim.NewRunner(world, renderer),
		logger:     logger,
	}, nil
}

// Start enables the controller.
func (p *Pipeline) Start(ctx context.Context) {
	p.Controller.Enable(ctx)
}

// Stop disables the controller and removes every hook.
func (p *Pipeline) Stop() {
	p.Controller.Disable()
}

// RunScript executes a scenario script against the world.
func (p *Pipeline) RunScript(ctx context.Context, name, src string) error {
	p.logger.Info("running script", "script", name)
	return p.runner.Run(ctx, name, src)
}

// Ready reports whether the loaded scene has been scanned.
func (p *Pipeline) Ready() bool {
	return p.Engine.Ready()
}

// Drawn returns the markers currently on the map.
func (p *Pipeline) Drawn() []sim.DrawnMarker {
	return p.Renderer.Drawn()
}
