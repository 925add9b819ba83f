// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package intercept

import (
	"fmt"
	"log/slog"

	"github.com/holomush/questmap/internal/geom"
	"github.com/holomush/questmap/internal/host"
	"github.com/holomush/questmap/internal/spawn"
	"github.com/holomush/questmap/pkg/errutil"
)

// Owner is the hook owner name used by Patcher.
const Owner = "questmap"

// DefaultSpawnRadius is the marker radius for intercepted spawns.
const DefaultSpawnRadius = 10.0

// Patcher translates intercepted simulation calls into spawn records.
//
// Prefab spawns are correlated in two phases: the prefix on OpSpawnPrefab
// remembers which spawner is in flight, and the very next OpInstantiate
// postfix consumes that marker. This relies on the host running both calls on
// one thread without reentrancy.
type Patcher struct {
	interceptor Interceptor
	registry    *spawn.Registry
	quests      host.QuestSystem
	radius      float64
	logger      *slog.Logger

	inflight host.PrefabSpawner
}

// PatcherOption configures a Patcher.
type PatcherOption func(*Patcher)

// WithSpawnRadius sets the radius of intercepted spawn records.
func WithSpawnRadius(r float64) PatcherOption {
	return func(p *Patcher) {
		if r > 0 {
			p.radius = r
		}
	}
}

// WithPatcherLogger sets the logger.
func WithPatcherLogger(l *slog.Logger) PatcherOption {
	return func(p *Patcher) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPatcher creates a patcher feeding registry.
func NewPatcher(interceptor Interceptor, registry *spawn.Registry, quests host.QuestSystem, opts ...PatcherOption) *Patcher {
	p := &Patcher{
		interceptor: interceptor,
		registry:    registry,
		quests:      quests,
		radius:      DefaultSpawnRadius,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "patcher")
	return p
}

type binding struct {
	op   Operation
	hook Hook
}

func (p *Patcher) bindings() []binding {
	return []binding{
		{OpSpawnItem, Hook{After: p.guard(OpSpawnItem, p.OnItemSpawned)}},
		{OpSpawnPrefab, Hook{Before: p.guard(OpSpawnPrefab, p.OnPrefabSpawn)}},
		{OpInstantiate, Hook{After: p.guard(OpInstantiate, p.OnInstantiate)}},
		{OpSetVisibility, Hook{After: p.guard(OpSetVisibility, p.OnSetVisibility)}},
		{OpDespawnAll, Hook{After: p.guard(OpDespawnAll, p.OnDespawnAll)}},
	}
}

// Apply installs every hook. Each hook installs independently: a failure is
// logged and counted, and the rest still install. Returns the number of
// hooks installed.
func (p *Patcher) Apply() int {
	count := 0
	for _, h := range p.bindings() {
		if err := p.interceptor.Install(Owner, h.op, h.hook); err != nil {
			InstallFailures.WithLabelValues(string(h.op)).Inc()
			errutil.LogError(p.logger, "hook install failed", ErrHookInstall(h.op, err))
			continue
		}
		count++
		p.logger.Debug("hook installed", "operation", string(h.op))
	}
	p.logger.Info("hooks applied", "installed", count)
	return count
}

// Remove uninstalls every hook and clears the in-flight marker.
func (p *Patcher) Remove() {
	p.interceptor.UninstallAll(Owner)
	p.inflight = nil
	p.logger.Info("hooks removed")
}

// InFlight reports whether a prefab spawn is waiting for its instantiate.
func (p *Patcher) InFlight() bool {
	return p.inflight != nil
}

// guard keeps a hook from ever panicking into the host; a failure drops only
// the one event.
func (p *Patcher) guard(op Operation, fn func(*Call)) func(*Call) {
	return func(c *Call) {
		defer func() {
			if rec := recover(); rec != nil {
				p.drop(op, fmt.Sprintf("panic: %v", rec))
			}
		}()
		fn(c)
	}
}

func (p *Patcher) drop(op Operation, reason string) {
	DroppedEvents.WithLabelValues(string(op)).Inc()
	errutil.LogWarn(p.logger, "hook event dropped", ErrEventDropped(op, reason))
}

// OnItemSpawned records an item spawned for a task. The receiver is the
// spawning component and Args[0] the spawn position.
func (p *Patcher) OnItemSpawned(c *Call) {
	spawner, ok := c.Receiver.(host.ItemSpawner)
	if !ok {
		p.drop(c.Op, fmt.Sprintf("receiver %T is not an item spawner", c.Receiver))
		return
	}
	pos, ok := c.Arg(0).(geom.Vec3)
	if !ok {
		p.drop(c.Op, fmt.Sprintf("argument %T is not a position", c.Arg(0)))
		return
	}
	task, err := spawner.Task()
	if err != nil {
		p.drop(c.Op, err.Error())
		return
	}
	p.record(c.Op, task, pos)
}

// OnPrefabSpawn marks the spawner as in flight for the next instantiate.
func (p *Patcher) OnPrefabSpawn(c *Call) {
	spawner, ok := c.Receiver.(host.PrefabSpawner)
	if !ok {
		p.drop(c.Op, fmt.Sprintf("receiver %T is not a prefab spawner", c.Receiver))
		return
	}
	p.inflight = spawner
}

// OnInstantiate consumes the in-flight marker. The marker is cleared before
// anything else so a failure here cannot leak ownership to an unrelated
// instantiation.
func (p *Patcher) OnInstantiate(c *Call) {
	spawner := p.inflight
	p.inflight = nil
	if spawner == nil {
		return
	}
	obj, ok := c.Result.(host.SceneObject)
	if !ok || obj == nil || !obj.Alive() {
		p.logger.Debug("instantiate produced no object; marker cleared",
			"result_type", fmt.Sprintf("%T", c.Result))
		return
	}
	task, err := spawner.Task()
	if err != nil {
		p.drop(c.Op, err.Error())
		return
	}
	p.record(c.Op, task, obj.Position())
}

func (p *Patcher) record(op Operation, task host.Task, pos geom.Vec3) {
	if task == nil || task.IsFinished() {
		return
	}
	quest, ok := p.quests.QuestByID(task.QuestID())
	if !ok || quest == nil {
		p.drop(op, fmt.Sprintf("quest %d of task %s is not active", task.QuestID(), task.ID()))
		return
	}
	sceneID := quest.RequiredSceneID()
	if sceneID == "" {
		p.logger.Warn("spawned task has no scene id",
			"quest", quest.DisplayName(),
			"task_id", string(task.ID()))
		return
	}

	var added bool
	var source string
	if op == OpInstantiate {
		source = SourcePrefab
		added = p.registry.RecordPrefab(task.ID(), quest.DisplayName(), pos, p.radius, sceneID)
	} else {
		source = SourceItem
		added = p.registry.RecordItem(task.ID(), quest.DisplayName(), pos, p.radius, sceneID)
	}
	if !added {
		return
	}
	SpawnEvents.WithLabelValues(source).Inc()
	p.logger.Info("spawn intercepted",
		"source", source,
		"quest", quest.DisplayName(),
		"task_id", string(task.ID()),
		"scene_id", sceneID,
		"position", pos.String())
}

// OnSetVisibility tracks static map elements the simulation shows or hides.
// Args[0] is the new visibility.
func (p *Patcher) OnSetVisibility(c *Call) {
	visible, ok := c.Arg(0).(bool)
	if !ok {
		p.drop(c.Op, fmt.Sprintf("argument %T is not a visibility flag", c.Arg(0)))
		return
	}
	if visible {
		if p.registry.MarkVisible(c.Receiver) {
			p.logger.Debug("map element shown", "element", fmt.Sprintf("%v", c.Receiver))
		}
		return
	}
	if p.registry.MarkHidden(c.Receiver) {
		p.logger.Debug("map element hidden", "element", fmt.Sprintf("%v", c.Receiver))
	}
}

// OnDespawnAll removes the element from the visible set unconditionally.
func (p *Patcher) OnDespawnAll(c *Call) {
	if p.registry.MarkHidden(c.Receiver) {
		p.logger.Debug("map element despawned", "element", fmt.Sprintf("%v", c.Receiver))
	}
}
