// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/questmap/internal/config"
	"github.com/holomush/questmap/internal/geom"
	"github.com/holomush/questmap/internal/refresh"
	"github.com/holomush/questmap/internal/sim"
	"github.com/holomush/questmap/pkg/errutil"
)

const farmPath = "../sim/testdata/farm.yaml"

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	return cfg
}

func newFarm(t *testing.T) *Pipeline {
	t.Helper()
	scenario, _, err := LoadScenario(farmPath)
	require.NoError(t, err)
	p, err := New(scenario, defaultConfig(t), nil)
	require.NoError(t, err)
	t.Cleanup(p.Stop)
	return p
}

func labels(drawn []sim.DrawnMarker) []string {
	out := make([]string, 0, len(drawn))
	for _, m := range drawn {
		out = append(out, m.Label)
	}
	return out
}

func find(t *testing.T, drawn []sim.DrawnMarker, label string) sim.DrawnMarker {
	t.Helper()
	for _, m := range drawn {
		if m.Label == label {
			return m
		}
	}
	t.Fatalf("no marker labelled %q in %v", label, labels(drawn))
	return sim.DrawnMarker{}
}

func TestPipeline_NothingDrawnUntilMapOpens(t *testing.T) {
	p := newFarm(t)
	ctx := context.Background()

	p.Start(ctx)

	assert.True(t, p.Ready())
	assert.Equal(t, refresh.Inactive, p.Controller.State())
	assert.Empty(t, p.Drawn())
	for _, op := range sim.Operations {
		assert.Equal(t, 1, p.Table.Installed(op), op)
	}
}

func TestPipeline_OpenMapDrawsResolvedObjectives(t *testing.T) {
	p := newFarm(t)
	ctx := context.Background()
	p.Start(ctx)

	require.NoError(t, p.RunScript(ctx, "open", `sim.open_map()`))

	drawn := p.Drawn()
	assert.ElementsMatch(t,
		[]string{"Find the Key", "Ring the Bell", "Open the Gate", "Reach the Well", "Hunt the Fox"},
		labels(drawn))

	key := find(t, drawn, "Find the Key")
	assert.Equal(t, geom.V(12, 0, -4), key.Position)
	assert.InDelta(t, 6.0, key.Radius, 1e-9)

	assert.Equal(t, geom.V(0, 3, 30), find(t, drawn, "Ring the Bell").Position)
	assert.Equal(t, geom.V(5, 0, 5), find(t, drawn, "Open the Gate").Position)
	assert.Equal(t, geom.V(40, 0, 40), find(t, drawn, "Hunt the Fox").Position)

	well := find(t, drawn, "Reach the Well")
	assert.Equal(t, geom.V(-20, 1, 8), well.Position)
	assert.InDelta(t, 10.0, well.Radius, 1e-9, "radius at or under the minimum falls back to the default")
}

func TestPipeline_SpawnsAppearAfterRefresh(t *testing.T) {
	p := newFarm(t)
	ctx := context.Background()
	p.Start(ctx)

	err := p.RunScript(ctx, "spawn", `
		sim.open_map()
		sim.spawn_item("egg-spawner", 2, 0, 2)
		sim.spawn_item("egg-spawner", 2, 0, 2)
		sim.spawn_prefab("fox-spawner", 60, 0, 60)
		assert(sim.refresh())
		assert(#sim.markers() == 7)
	`)
	require.NoError(t, err)

	drawn := p.Drawn()
	assert.Equal(t, geom.V(2, 0, 2), find(t, drawn, "Collect Eggs").Position)
	foxes := 0
	for _, m := range drawn {
		if m.Label == "Hunt the Fox" {
			foxes++
		}
	}
	assert.Equal(t, 2, foxes)
	assert.Equal(t, 2, p.Registry.Len())
}

func TestPipeline_FinishedTasksDisappear(t *testing.T) {
	p := newFarm(t)
	ctx := context.Background()
	p.Start(ctx)

	err := p.RunScript(ctx, "finish", `
		sim.open_map()
		sim.spawn_item("egg-spawner", 2, 0, 2)
		sim.finish_task("eggs")
		sim.finish_task("gate")
		sim.refresh()
	`)
	require.NoError(t, err)

	assert.NotContains(t, labels(p.Drawn()), "Collect Eggs")
	assert.NotContains(t, labels(p.Drawn()), "Open the Gate")
	assert.Zero(t, p.Registry.Len())
}

func TestPipeline_SceneChangeRedraws(t *testing.T) {
	p := newFarm(t)
	ctx := context.Background()
	p.Start(ctx)

	err := p.RunScript(ctx, "travel", `
		sim.open_map()
		sim.spawn_item("egg-spawner", 2, 0, 2)
		sim.load_scene("Level_Town")
	`)
	require.NoError(t, err)

	drawn := p.Drawn()
	assert.ElementsMatch(t, []string{"Find the Key", "Open the Gate", "Hunt the Fox"}, labels(drawn))
	assert.Equal(t, geom.V(90, 0, 90), find(t, drawn, "Find the Key").Position)
	assert.Equal(t, geom.V(70, 0, 70), find(t, drawn, "Open the Gate").Position)
	assert.Equal(t, geom.V(1, 0, 1), find(t, drawn, "Hunt the Fox").Position)
}

func TestPipeline_CloseMapDisposesMarkers(t *testing.T) {
	p := newFarm(t)
	ctx := context.Background()
	p.Start(ctx)

	require.NoError(t, p.RunScript(ctx, "close", `sim.open_map() sim.close_map()`))

	assert.Empty(t, p.Drawn())
	assert.Equal(t, 5, p.Renderer.Created())
}

func TestPipeline_StopRemovesHooks(t *testing.T) {
	p := newFarm(t)
	ctx := context.Background()
	p.Start(ctx)
	p.Stop()

	require.NoError(t, p.RunScript(ctx, "after-stop", `sim.spawn_item("egg-spawner", 2, 0, 2)`))

	assert.Zero(t, p.Registry.Len())
	for _, op := range sim.Operations {
		assert.Zero(t, p.Table.Installed(op), op)
	}
}

func TestPipeline_SceneAliasesExtendMatching(t *testing.T) {
	scenario, _, err := LoadScenario(farmPath)
	require.NoError(t, err)
	cfg := defaultConfig(t)
	cfg.Scene.Aliases = map[string][]string{"Level_Farm": {"Level_T*"}}
	p, err := New(scenario, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(p.Stop)
	ctx := context.Background()
	p.Start(ctx)

	require.NoError(t, p.RunScript(ctx, "open", `sim.open_map()`))

	assert.Equal(t, geom.V(1, 0, 1), find(t, p.Drawn(), "Hunt the Fox").Position,
		"the aliased town location is listed first")
}

func TestNew_RejectsBadAliases(t *testing.T) {
	scenario, _, err := LoadScenario(farmPath)
	require.NoError(t, err)
	cfg := defaultConfig(t)
	cfg.Scene.Aliases = map[string][]string{"Level_Farm": {"[unclosed"}}

	_, err = New(scenario, cfg, nil)

	assert.Error(t, err)
}

func TestResolveScenario(t *testing.T) {
	data := t.TempDir()
	t.Setenv("XDG_DATA_HOME", data)
	dir := filepath.Join(data, "questmap", "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "farm.yaml"), []byte("version: 1.0.0\n"), 0o600))

	t.Run("existing path", func(t *testing.T) {
		path, err := ResolveScenario(farmPath)
		require.NoError(t, err)
		assert.Equal(t, farmPath, path)
	})
	t.Run("name without extension", func(t *testing.T) {
		path, err := ResolveScenario("farm")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "farm.yaml"), path)
	})
	t.Run("name with extension", func(t *testing.T) {
		path, err := ResolveScenario("farm.yaml")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "farm.yaml"), path)
	})
	t.Run("unknown name", func(t *testing.T) {
		_, err := ResolveScenario("moon")
		errutil.AssertErrorCode(t, err, CodeScenarioNotFound)
		errutil.AssertErrorContext(t, err, "scenario", "moon")
	})
	t.Run("missing path", func(t *testing.T) {
		_, err := ResolveScenario(filepath.Join(dir, "gone.yaml"))
		errutil.AssertErrorCode(t, err, CodeScenarioNotFound)
	})
	t.Run("empty", func(t *testing.T) {
		_, err := ResolveScenario("")
		errutil.AssertErrorCode(t, err, CodeScenarioNotFound)
	})
}

func TestLoadScenario_RejectsInvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1.0.0\nquests: 7\n"), 0o600))

	_, _, err := LoadScenario(path)

	errutil.AssertErrorCode(t, err, sim.CodeInvalidScenario)
}
