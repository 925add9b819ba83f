// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"

	"github.com/holomush/questmap/internal/config"
	"github.com/holomush/questmap/internal/intercept"
	"github.com/holomush/questmap/internal/logging"
	"github.com/holomush/questmap/internal/observability"
	"github.com/holomush/questmap/internal/pipeline"
	"github.com/holomush/questmap/internal/questmap"
	"github.com/holomush/questmap/internal/sim"
)

// runConfig holds configuration for the run command.
type runConfig struct {
	scenario string
	script   string
	output   string
	hold     bool
}

// Validate checks that the configuration is valid.
func (cfg *runConfig) Validate() error {
	if cfg.scenario == "" {
		return fmt.Errorf("scenario is required")
	}
	if cfg.output != "text" && cfg.output != "json" {
		return fmt.Errorf("output must be 'text' or 'json', got %q", cfg.output)
	}
	return nil
}

const (
	defaultOutput      = "text"
	serviceName        = "questmap"
	observabilityTries = 3
)

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	cfg := &runConfig{}

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run a scenario and print the markers drawn on the map",
		Long: `Load a scenario, enable the marker engine against it, run the scenario
script (or the one given with --script) and print the markers left on the
map. A scenario is a file path or a name under XDG_DATA_HOME/questmap/scenarios.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.scenario = args[0]
			return runScenarioWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}

	cmd.Flags().StringVar(&cfg.script, "script", "", "Lua script to run instead of the scenario's own")
	cmd.Flags().StringVar(&cfg.output, "output", defaultOutput, "output format (text or json)")
	cmd.Flags().BoolVar(&cfg.hold, "hold", false, "keep serving metrics until interrupted")
	config.RegisterFlags(cmd.Flags())

	return cmd
}

// runScenarioWithDeps runs a scenario with injectable dependencies.
// If deps is nil, default implementations are used.
func runScenarioWithDeps(ctx context.Context, cfg *runConfig, cmd *cobra.Command, deps *RunDeps) error {
	if deps == nil {
		deps = &RunDeps{}
	}
	if deps.ScenarioLoader == nil {
		deps.ScenarioLoader = pipeline.LoadScenario
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, ready observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, ready, intercept.RegisterMetrics, questmap.RegisterMetrics)
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	conf, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	level, err := logging.ParseLevel(conf.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	logger := logging.SetDefault(serviceName, version, conf.Log.Format, level, cmd.ErrOrStderr())

	scenario, path, err := deps.ScenarioLoader(cfg.scenario)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}
	logger.Info("scenario loaded", "path", path, "scene_id", scenario.Scene, "quests", len(scenario.Quests))

	p, err := pipeline.New(scenario, conf, logger)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var obsServer ObservabilityServer
	if conf.Metrics.Addr != "" {
		obsServer = deps.ObservabilityServerFactory(conf.Metrics.Addr, p.Ready)
		obsErrChan, err := startObservability(ctx, obsServer)
		if err != nil {
			return fmt.Errorf("failed to start observability server: %w", err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		defer stopObservability(obsServer)
	}

	p.Start(ctx)
	defer p.Stop()

	name, src, err := scriptSource(cfg.script, path, scenario)
	if err != nil {
		return err
	}
	if src != "" {
		if err := p.RunScript(ctx, name, src); err != nil {
			return fmt.Errorf("script failed: %w", err)
		}
	}

	if err := writeMarkers(cmd.OutOrStdout(), cfg.output, p.Drawn()); err != nil {
		return err
	}

	if cfg.hold && obsServer != nil {
		waitForShutdown(ctx)
	}
	return nil
}

// scriptSource picks the --script file if given, else the scenario's inline
// script. An empty source means there is nothing to run.
func scriptSource(scriptPath, scenarioPath string, scenario *sim.Scenario) (string, string, error) {
	if scriptPath == "" {
		return filepath.Base(scenarioPath), scenario.Script, nil
	}
	data, err := os.ReadFile(scriptPath) //nolint:gosec // path is chosen by the operator
	if err != nil {
		return "", "", fmt.Errorf("failed to read script: %w", err)
	}
	return filepath.Base(scriptPath), string(data), nil
}

// startObservability starts srv, retrying while the address is still held
// by a previous run.
func startObservability(ctx context.Context, srv ObservabilityServer) (<-chan error, error) {
	var errCh <-chan error
	backoff := retry.WithMaxRetries(observabilityTries, retry.NewExponential(100*time.Millisecond))
	err := retry.Do(ctx, backoff, func(_ context.Context) error {
		ch, err := srv.Start()
		if err != nil {
			slog.Debug("observability server start failed", "error", err)
			return retry.RetryableError(err)
		}
		errCh = ch
		return nil
	})
	if err != nil {
		return nil, err
	}
	return errCh, nil
}

func stopObservability(srv ObservabilityServer) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping observability server", "error", err)
	}
}

// monitorServerErrors cancels ctx when a background server fails.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, name string) {
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok && err != nil {
			slog.Error("server failed", "server", name, "error", err)
			cancel()
		}
	}
}

func waitForShutdown(ctx context.Context) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	slog.Info("holding; interrupt to exit")
	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}
}

// writeMarkers prints drawn markers as a table or as JSON.
func writeMarkers(out io.Writer, format string, markers []sim.DrawnMarker) error {
	if format == "json" {
		if markers == nil {
			markers = []sim.DrawnMarker{}
		}
		data, err := json.MarshalIndent(markers, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode markers: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	if len(markers) == 0 {
		_, err := fmt.Fprintln(out, "no markers drawn")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "QUEST\tX\tY\tZ\tRADIUS")
	for _, m := range markers {
		_, _ = fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\n",
			m.Label, m.Position.X, m.Position.Y, m.Position.Z, m.Radius)
	}
	return w.Flush()
}
