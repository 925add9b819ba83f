// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package questmap aggregates resolved task positions and intercepted spawns
// into the published list of quest-objective markers.
package questmap

import (
	"context"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/questmap/internal/host"
	"github.com/holomush/questmap/internal/resolve"
	"github.com/holomush/questmap/internal/spawn"
	"github.com/holomush/questmap/internal/trigger"
	"github.com/holomush/questmap/pkg/errutil"
)

var tracer = otel.Tracer("questmap/engine")

// Engine owns the marker publication. One engine is shared by the refresh
// controller and the interception layer.
type Engine struct {
	quests     host.QuestSystem
	scene      host.Scene
	registry   *spawn.Registry
	triggers   *trigger.Cache
	resolver   *resolve.Resolver
	bucketSize float64
	logger     *slog.Logger

	published atomic.Pointer[[]Marker]
	scanned   atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithBucketSize sets the dedup grid resolution.
func WithBucketSize(size float64) Option {
	return func(e *Engine) {
		if size > 0 {
			e.bucketSize = size
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine over the given host and collaborators.
func NewEngine(quests host.QuestSystem, scene host.Scene, registry *spawn.Registry,
	triggers *trigger.Cache, resolver *resolve.Resolver, opts ...Option,
) *Engine {
	e := &Engine{
		quests:     quests,
		scene:      scene,
		registry:   registry,
		triggers:   triggers,
		resolver:   resolver,
		bucketSize: DefaultBucketSize,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "engine")
	return e
}

// Registry returns the spawn registry the engine reads.
func (e *Engine) Registry() *spawn.Registry {
	return e.registry
}

// Markers returns a copy of the published list.
func (e *Engine) Markers() []Marker {
	p := e.published.Load()
	if p == nil {
		return nil
	}
	return slices.Clone(*p)
}

// Ready reports whether the loaded scene has been scanned for triggers.
func (e *Engine) Ready() bool {
	return e.scanned.Load()
}

// Refresh recomputes and publishes the marker list. When a host dependency
// is unavailable the refresh is aborted, the previous list stays published
// and an error with code DEPENDENCY_UNAVAILABLE is returned.
func (e *Engine) Refresh(ctx context.Context) (markers []Marker, err error) {
	start := time.Now()
	_, span := tracer.Start(ctx, "questmap.refresh")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			recordRefresh(StatusAborted, start)
			errutil.LogWarn(e.logger, "refresh aborted", err)
		} else {
			recordRefresh(StatusSuccess, start)
		}
		span.End()
	}()

	current, err := e.scene.CurrentSceneID()
	if err != nil {
		return nil, ErrDependencyUnavailable(DependencyScene, err)
	}
	if current == "" {
		return nil, ErrDependencyUnavailable(DependencyScene, nil)
	}
	quests, err := e.quests.ActiveQuests()
	if err != nil {
		return nil, ErrDependencyUnavailable(DependencyQuestSystem, err)
	}
	span.SetAttributes(
		attribute.String("scene.id", current),
		attribute.Int("quests.active", len(quests)),
	)

	active := e.activeTasks(quests)
	if pruned := e.registry.Prune(active); pruned > 0 {
		e.logger.Debug("pruned spawn records", "count", pruned)
	}
	if !e.triggers.Built() && e.scene.Loaded() {
		e.triggers.Rebuild(e.scene)
	}

	collected := e.resolveAll(quests, current)
	resolved := len(collected)
	for _, rec := range e.registry.QueryByScene(current) {
		collected = append(collected, Marker{
			TaskID:     rec.TaskID,
			QuestName:  rec.QuestName,
			Position:   rec.Position,
			Radius:     rec.Radius,
			SceneID:    rec.SceneID,
			SubSceneID: rec.SubSceneID,
			Source:     SourceSpawn,
		})
	}

	list := Dedup(collected, e.bucketSize)
	e.published.Store(&list)
	PublishedMarkers.Set(float64(len(list)))

	span.SetAttributes(attribute.Int("markers.published", len(list)))
	e.logger.Debug("markers refreshed",
		"scene_id", current,
		"resolved", resolved,
		"spawned", len(collected)-resolved,
		"published", len(list))
	return slices.Clone(list), nil
}

func (e *Engine) resolveAll(quests []host.Quest, current string) []Marker {
	var out []Marker
	for _, q := range quests {
		tasks, name, ok := e.questTasks(q)
		if !ok {
			continue
		}
		for _, task := range tasks {
			if m, ok := e.resolveTask(q, name, task, current); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

// questTasks reads a quest's tasks and display name. A quest whose host
// object is gone yields false.
func (e *Engine) questTasks(q host.Quest) (tasks []host.Task, name string, ok bool) {
	if q == nil {
		return nil, "", false
	}
	ok = e.resolver.Guard(q, "Tasks", func() {
		tasks = q.Tasks()
		name = q.DisplayName()
	})
	return tasks, name, ok
}

// resolveTask places one task. A task whose accessors panic is skipped
// without affecting its siblings.
func (e *Engine) resolveTask(q host.Quest, name string, task host.Task, current string) (m Marker, ok bool) {
	if task == nil {
		return Marker{}, false
	}
	e.resolver.Guard(task, "IsFinished", func() {
		if task.IsFinished() {
			return
		}
		res, found := e.resolver.Resolve(resolve.Input{
			Task:         task,
			Quest:        q,
			CurrentScene: current,
			Scene:        e.scene,
			Triggers:     e.triggers,
		})
		if !found {
			return
		}
		m = Marker{
			TaskID:     task.ID(),
			QuestName:  name,
			Position:   res.Position,
			Radius:     res.Radius,
			SceneID:    current,
			SubSceneID: res.SubSceneID,
			Source:     SourceResolved,
			Strategy:   res.Strategy,
		}
		ok = true
	})
	if ok {
		StrategyHits.WithLabelValues(string(m.Strategy)).Inc()
	}
	return m, ok
}

// activeTasks indexes the live tasks of every quest by id. Tasks whose host
// object is gone, or already finished, are left out so the registry prunes
// their spawns.
func (e *Engine) activeTasks(quests []host.Quest) map[host.TaskID]host.Task {
	active := make(map[host.TaskID]host.Task)
	for _, q := range quests {
		tasks, _, ok := e.questTasks(q)
		if !ok {
			continue
		}
		for _, t := range tasks {
			if t == nil {
				continue
			}
			e.resolver.Guard(t, "IsFinished", func() {
				if !t.IsFinished() {
					active[t.ID()] = t
				}
			})
		}
	}
	return active
}

// OnSceneLoaded clears the published list and re-indexes scene triggers.
func (e *Engine) OnSceneLoaded(ctx context.Context) {
	_, span := tracer.Start(ctx, "questmap.scene_loaded", trace.WithAttributes(
		attribute.Bool("scene.loaded", e.scene.Loaded()),
	))
	defer span.End()

	e.clearPublished()
	e.triggers.Invalidate()
	e.scanned.Store(false)
	if !e.scene.Loaded() {
		return
	}
	e.triggers.Rebuild(e.scene)
	e.scanned.Store(true)
	e.logger.Info("scene scanned", "quests_with_triggers", e.triggers.Len())
}

// Reset drops every cache the engine owns: the published list, trigger
// index, spawn records and memoized task capabilities.
func (e *Engine) Reset() {
	e.clearPublished()
	e.triggers.Invalidate()
	e.registry.Reset()
	e.resolver.Reset()
	e.scanned.Store(false)
}

func (e *Engine) clearPublished() {
	e.published.Store(nil)
	PublishedMarkers.Set(0)
}
