// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package refresh drives marker refreshes from map view and scene lifecycle
// events and keeps the renderer in sync with the published list.
package refresh

import (
	"context"
	"log/slog"
	"sync"

	"github.com/holomush/questmap/internal/host"
	"github.com/holomush/questmap/internal/questmap"
	"github.com/holomush/questmap/pkg/errutil"
)

// State is the map view state as seen by the controller.
type State int

// Controller states.
const (
	Inactive State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "inactive"
}

// Hooks installs and removes the interception hooks. *intercept.Patcher
// satisfies it.
type Hooks interface {
	Apply() int
	Remove()
}

// Controller owns the markers currently drawn by the renderer.
type Controller struct {
	mu       sync.Mutex
	engine   *questmap.Engine
	hooks    Hooks
	scene    host.Scene
	view     host.ViewState
	renderer host.Renderer
	color    host.Color
	logger   *slog.Logger

	enabled bool
	state   State
	handles []host.MarkerHandle
}

// Option configures a Controller.
type Option func(*Controller)

// WithColor sets the marker color.
func WithColor(c host.Color) Option {
	return func(ctl *Controller) { ctl.color = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(ctl *Controller) {
		if l != nil {
			ctl.logger = l
		}
	}
}

// NewController creates a disabled controller.
func NewController(engine *questmap.Engine, hooks Hooks, scene host.Scene, view host.ViewState,
	renderer host.Renderer, opts ...Option,
) *Controller {
	ctl := &Controller{
		engine:   engine,
		hooks:    hooks,
		scene:    scene,
		view:     view,
		renderer: renderer,
		color:    host.Green,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(ctl)
	}
	ctl.logger = ctl.logger.With("component", "refresh_controller")
	return ctl
}

// Enable installs hooks and indexes the scene if one is already loaded.
// Enabling twice is a no-op.
func (c *Controller) Enable(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enabled {
		return
	}
	c.enabled = true
	installed := c.hooks.Apply()
	if c.scene.Loaded() {
		c.engine.OnSceneLoaded(ctx)
	}
	c.logger.Info("enabled", "hooks", installed)
	if c.view.IsMapViewActive() {
		c.begin(ctx)
	}
}

// Disable ends drawing, drops every cache and uninstalls all hooks so the
// host behaves as if the controller had never been enabled.
func (c *Controller) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	c.end()
	c.engine.Reset()
	c.hooks.Remove()
	c.enabled = false
	c.logger.Info("disabled")
}

// Enabled reports whether hooks are installed.
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// State returns the current view state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// MarkerCount returns the number of markers currently drawn.
func (c *Controller) MarkerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handles)
}

// OnActiveViewChanged reacts to the host switching views. Opening the map
// while already active does nothing.
func (c *Controller) OnActiveViewChanged(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	if c.view.IsMapViewActive() {
		c.begin(ctx)
		return
	}
	c.end()
}

// OnSceneLoaded re-indexes the new scene. Markers of the old scene are
// removed; if the map is open it is redrawn.
func (c *Controller) OnSceneLoaded(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	c.engine.OnSceneLoaded(ctx)
	c.disposeAll()
	if c.state == Active {
		c.redraw(ctx)
	}
}

// Refresh forces a refresh and redraw while the map is open. It returns the
// engine error when the refresh was aborted.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled || c.state != Active {
		return nil
	}
	return c.redraw(ctx)
}

func (c *Controller) begin(ctx context.Context) {
	if c.state == Active {
		return
	}
	c.logger.Debug("map opened")
	c.disposeAll()
	c.state = Active
	_ = c.redraw(ctx)
}

func (c *Controller) end() {
	if c.state != Active {
		return
	}
	c.logger.Debug("map closed")
	c.state = Inactive
	c.disposeAll()
}

// redraw disposes every drawn marker before creating the new set. An aborted
// refresh redraws the previously published list.
func (c *Controller) redraw(ctx context.Context) error {
	markers, err := c.engine.Refresh(ctx)
	if err != nil {
		markers = c.engine.Markers()
	}
	c.disposeAll()
	for _, m := range markers {
		h, rerr := c.renderer.CreateMarker(m.Position, m.Radius, m.Label(), c.color, true)
		if rerr != nil {
			errutil.LogError(c.logger, "marker not drawn", ErrRender(m.Label(), rerr))
			continue
		}
		if h != nil {
			c.handles = append(c.handles, h)
		}
	}
	c.logger.Debug("markers drawn", "count", len(c.handles))
	return err
}

func (c *Controller) disposeAll() {
	for _, h := range c.handles {
		h.Dispose()
	}
	c.handles = nil
}
