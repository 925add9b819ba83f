// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package refresh

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/questmap/internal/geom"
	"github.com/holomush/questmap/internal/host"
)

func TestController_EnableAppliesHooksAndScansScene(t *testing.T) {
	f := newFixture()

	f.ctl.Enable(context.Background())
	f.ctl.Enable(context.Background())

	assert.True(t, f.ctl.Enabled())
	f.hooks.AssertNumberOfCalls(t, "Apply", 1)
	assert.True(t, f.engine.Ready())
	assert.Equal(t, Inactive, f.ctl.State())
}

func TestController_OpenDrawsMarkers(t *testing.T) {
	f := newFixture()
	f.ctl.Enable(context.Background())

	f.view.mapOpen = true
	f.ctl.OnActiveViewChanged(context.Background())

	assert.Equal(t, Active, f.ctl.State())
	assert.Equal(t, 1, f.ctl.MarkerCount())
	assert.Equal(t, []string{"create Gate"}, f.renderer.log)
}

func TestController_RepeatedOpenIsNoOp(t *testing.T) {
	f := newFixture()
	f.ctl.Enable(context.Background())
	f.view.mapOpen = true

	f.ctl.OnActiveViewChanged(context.Background())
	f.ctl.OnActiveViewChanged(context.Background())

	assert.Equal(t, 1, f.renderer.created)
	assert.Equal(t, 1, f.renderer.live)
}

func TestController_CloseDisposesMarkers(t *testing.T) {
	f := newFixture()
	f.ctl.Enable(context.Background())
	f.view.mapOpen = true
	f.ctl.OnActiveViewChanged(context.Background())

	f.view.mapOpen = false
	f.ctl.OnActiveViewChanged(context.Background())

	assert.Equal(t, Inactive, f.ctl.State())
	assert.Equal(t, 0, f.ctl.MarkerCount())
	assert.Equal(t, 0, f.renderer.live)
}

func TestController_RefreshDisposesBeforeCreate(t *testing.T) {
	f := newFixture()
	f.ctl.Enable(context.Background())
	f.view.mapOpen = true
	f.ctl.OnActiveViewChanged(context.Background())

	require.NoError(t, f.ctl.Refresh(context.Background()))

	assert.Equal(t, []string{"create Gate", "dispose Gate", "create Gate"}, f.renderer.log)
	assert.Equal(t, 1, f.renderer.live)
}

func TestController_RefreshIgnoredWhileClosed(t *testing.T) {
	f := newFixture()
	f.ctl.Enable(context.Background())

	require.NoError(t, f.ctl.Refresh(context.Background()))

	assert.Equal(t, 0, f.renderer.created)
}

func TestController_AbortedRefreshRedrawsPreviousList(t *testing.T) {
	f := newFixture()
	f.ctl.Enable(context.Background())
	f.view.mapOpen = true
	f.ctl.OnActiveViewChanged(context.Background())

	f.quests.err = errors.New("quest manager gone")
	err := f.ctl.Refresh(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, f.ctl.MarkerCount())
	assert.Equal(t, 1, f.renderer.live)
}

func TestController_RendererFailureSkipsMarker(t *testing.T) {
	f := newFixture()
	f.quests.list = append(f.quests.list, &quest{id: 2, name: "Broken", tasks: []host.Task{&task{id: "t2", quest: 2}}})
	f.scene.triggers = append(f.scene.triggers, &gate{pos: geom.V(9, 0, 9), quests: []int{2}})
	f.renderer.failOn = "Broken"
	f.ctl.Enable(context.Background())

	f.view.mapOpen = true
	f.ctl.OnActiveViewChanged(context.Background())

	assert.Equal(t, 1, f.ctl.MarkerCount())
}

func TestController_IgnoresEventsWhileDisabled(t *testing.T) {
	f := newFixture()
	f.view.mapOpen = true

	f.ctl.OnActiveViewChanged(context.Background())
	f.ctl.OnSceneLoaded(context.Background())

	assert.Equal(t, Inactive, f.ctl.State())
	assert.Equal(t, 0, f.renderer.created)
	assert.False(t, f.engine.Ready())
}

func TestController_EnableWithMapOpenDraws(t *testing.T) {
	f := newFixture()
	f.view.mapOpen = true

	f.ctl.Enable(context.Background())

	assert.Equal(t, Active, f.ctl.State())
	assert.Equal(t, 1, f.ctl.MarkerCount())
}

func TestController_DisableRestoresHost(t *testing.T) {
	f := newFixture()
	f.ctl.Enable(context.Background())
	f.view.mapOpen = true
	f.ctl.OnActiveViewChanged(context.Background())
	f.registry.RecordItem("t1", "Gate", geom.V(1, 0, 1), 10, "Level_A")

	f.ctl.Disable()
	f.ctl.Disable()

	assert.False(t, f.ctl.Enabled())
	f.hooks.AssertNumberOfCalls(t, "Remove", 1)
	assert.Equal(t, Inactive, f.ctl.State())
	assert.Equal(t, 0, f.renderer.live)
	assert.Equal(t, 0, f.registry.Len())
	assert.Empty(t, f.engine.Markers())
}

func TestController_SceneLoadWhileOpenRedraws(t *testing.T) {
	f := newFixture()
	f.ctl.Enable(context.Background())
	f.view.mapOpen = true
	f.ctl.OnActiveViewChanged(context.Background())

	f.scene.id = "Level_B"
	f.scene.triggers = []host.SceneTrigger{&gate{pos: geom.V(7, 0, 7), quests: []int{1}}}
	f.ctl.OnSceneLoaded(context.Background())

	markers := f.engine.Markers()
	require.Len(t, markers, 1)
	assert.Equal(t, geom.V(7, 0, 7), markers[0].Position)
	assert.Equal(t, 1, f.renderer.live)
}

func TestController_SceneLoadWhileClosedClearsList(t *testing.T) {
	f := newFixture()
	f.ctl.Enable(context.Background())
	f.view.mapOpen = true
	f.ctl.OnActiveViewChanged(context.Background())
	f.view.mapOpen = false
	f.ctl.OnActiveViewChanged(context.Background())

	f.ctl.OnSceneLoaded(context.Background())

	assert.Empty(t, f.engine.Markers())
	assert.Equal(t, 0, f.renderer.live)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "active", Active.String())
	assert.Equal(t, "inactive", Inactive.String())
}
