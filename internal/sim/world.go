// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package sim is an in-memory simulation host built from a YAML scenario. It
// implements the host contracts the marker engine consumes and routes every
// interceptable operation through an intercept.Table, so the engine's hooks
// observe it exactly as they would a real host.
package sim

import (
	"context"
	"log/slog"
	"slices"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/questmap/internal/geom"
	"github.com/holomush/questmap/internal/host"
	"github.com/holomush/questmap/internal/intercept"
)

// Operations the simulated host exposes for interception.
var Operations = []intercept.Operation{
	intercept.OpSpawnItem,
	intercept.OpSpawnPrefab,
	intercept.OpInstantiate,
	intercept.OpSetVisibility,
	intercept.OpDespawnAll,
}

// Listener receives host lifecycle notifications. *refresh.Controller
// satisfies it.
type Listener interface {
	OnActiveViewChanged(ctx context.Context)
	OnSceneLoaded(ctx context.Context)
}

// World is the simulated host. It is not safe for concurrent use; like the
// game it stands in for, everything happens on one goroutine.
type World struct {
	table    *intercept.Table
	listener Listener
	logger   *slog.Logger

	sceneID string
	loaded  bool
	mapOpen bool

	quests   []*quest
	tasks    map[host.TaskID]finisher
	triggers []*sceneTrigger
	emitters []*eventEmitter
	spawners map[string]any
	elements map[string]*element
	spawned  map[ulid.ULID]*object
}

// WorldOption configures a World.
type WorldOption func(*World)

// WithListener sets the lifecycle listener.
func WithListener(l Listener) WorldOption {
	return func(w *World) { w.listener = l }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) WorldOption {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorld builds a world from a scenario with its starting scene loaded.
// Listeners are only notified by later lifecycle operations.
func NewWorld(s *Scenario, table *intercept.Table, opts ...WorldOption) (*World, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		table:    table,
		logger:   slog.Default(),
		sceneID:  s.Scene,
		loaded:   true,
		mapOpen:  s.MapOpen,
		tasks:    make(map[host.TaskID]finisher),
		spawners: make(map[string]any),
		elements: make(map[string]*element),
		spawned:  make(map[ulid.ULID]*object),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("component", "sim")

	for _, qs := range s.Quests {
		q := &quest{id: qs.ID, name: qs.Name, scene: qs.Scene}
		for _, ts := range qs.Tasks {
			t := newTask(qs.ID, ts)
			w.tasks[t.ID()] = t
			q.tasks = append(q.tasks, t)
		}
		w.quests = append(w.quests, q)
	}
	for _, ts := range s.Triggers {
		w.triggers = append(w.triggers, &sceneTrigger{
			object: object{id: NewID(), name: ts.Name, scene: ts.Scene, pos: ts.Position, alive: true},
			quests: ts.Quests,
		})
	}
	for _, es := range s.Emitters {
		w.emitters = append(w.emitters, &eventEmitter{
			object: object{id: NewID(), name: es.Name, scene: es.Scene, pos: es.Position, alive: true},
			key:    es.EventKey,
		})
	}
	for _, sp := range s.Spawners {
		task := w.tasks[host.TaskID(sp.Task)]
		switch sp.Kind {
		case SpawnerItem:
			w.spawners[sp.Name] = &itemSpawner{name: sp.Name, task: task}
		case SpawnerPrefab:
			if et, ok := task.(*eventTask); ok && et.spawner != nil {
				w.spawners[sp.Name] = et.spawner
				continue
			}
			w.spawners[sp.Name] = &prefabSpawner{name: sp.Name, task: task}
		}
	}
	for _, es := range s.Elements {
		w.elements[es.Name] = &element{name: es.Name}
	}
	return w, nil
}

// SetListener replaces the lifecycle listener.
func (w *World) SetListener(l Listener) {
	w.listener = l
}

// CurrentSceneID implements host.Scene. It reports "" while no scene is loaded.
func (w *World) CurrentSceneID() (string, error) {
	if !w.loaded {
		return "", nil
	}
	return w.sceneID, nil
}

// Loaded implements host.Scene.
func (w *World) Loaded() bool {
	return w.loaded
}

// Triggers implements host.Scene.
func (w *World) Triggers() []host.SceneTrigger {
	var out []host.SceneTrigger
	for _, t := range w.triggers {
		if t.scene == w.sceneID {
			out = append(out, t)
		}
	}
	return out
}

// Emitters implements host.Scene.
func (w *World) Emitters() []host.EventEmitter {
	var out []host.EventEmitter
	for _, e := range w.emitters {
		if e.scene == w.sceneID {
			out = append(out, e)
		}
	}
	return out
}

// ActiveQuests implements host.QuestSystem.
func (w *World) ActiveQuests() ([]host.Quest, error) {
	var out []host.Quest
	for _, q := range w.quests {
		if q.active() {
			out = append(out, q)
		}
	}
	return out, nil
}

// QuestByID implements host.QuestSystem.
func (w *World) QuestByID(id int) (host.Quest, bool) {
	for _, q := range w.quests {
		if q.id == id && q.active() {
			return q, true
		}
	}
	return nil, false
}

// IsMapViewActive implements host.ViewState.
func (w *World) IsMapViewActive() bool {
	return w.mapOpen
}

// SpawnItem spawns an item for the named item spawner's task.
func (w *World) SpawnItem(spawner string, pos geom.Vec3) (ulid.ULID, error) {
	sp, ok := w.spawners[spawner].(*itemSpawner)
	if !ok {
		return ulid.ULID{}, ErrUnknownObject("item spawner", spawner)
	}
	var obj *object
	w.table.Invoke(intercept.OpSpawnItem, sp, []any{pos}, func() any {
		obj = w.place("item:"+sp.name, pos)
		return obj
	})
	return obj.id, nil
}

// SpawnPrefab spawns the named prefab spawner's prefab. With no position it
// uses the first spawn location of the current scene. It reports false when
// no position was available and nothing was instantiated.
func (w *World) SpawnPrefab(spawner string, pos *geom.Vec3) (ulid.ULID, bool, error) {
	sp, ok := w.spawners[spawner].(*prefabSpawner)
	if !ok {
		return ulid.ULID{}, false, ErrUnknownObject("prefab spawner", spawner)
	}
	if pos == nil {
		pos = w.spawnPoint(sp)
	}
	res := w.table.Invoke(intercept.OpSpawnPrefab, sp, []any{pos}, func() any {
		return w.instantiate("prefab:"+sp.name, pos)
	})
	obj, ok := res.(*object)
	if !ok {
		return ulid.ULID{}, false, nil
	}
	return obj.id, true, nil
}

func (w *World) spawnPoint(sp *prefabSpawner) *geom.Vec3 {
	for _, loc := range sp.locs {
		if loc.SceneID() != w.sceneID {
			continue
		}
		if p, ok := loc.TryPosition(); ok {
			return &p
		}
	}
	return nil
}

// Instantiate places a free-standing object. A nil position instantiates
// nothing, which is how a failed instantiation looks to hooks.
func (w *World) Instantiate(name string, pos *geom.Vec3) (ulid.ULID, bool) {
	obj, ok := w.instantiate(name, pos).(*object)
	if !ok {
		return ulid.ULID{}, false
	}
	return obj.id, true
}

func (w *World) instantiate(name string, pos *geom.Vec3) any {
	return w.table.Invoke(intercept.OpInstantiate, nil, []any{name, pos}, func() any {
		if pos == nil {
			return nil
		}
		return w.place(name, *pos)
	})
}

func (w *World) place(name string, pos geom.Vec3) *object {
	obj := &object{id: NewID(), name: name, scene: w.sceneID, pos: pos, alive: true}
	w.spawned[obj.id] = obj
	w.logger.Debug("object placed", "id", obj.id.String(), "object", obj.String())
	return obj
}

// Destroy removes a spawned object.
func (w *World) Destroy(id string) error {
	uid, err := ParseID(id)
	if err != nil {
		return err
	}
	obj, ok := w.spawned[uid]
	if !ok {
		return ErrUnknownObject("object", id)
	}
	obj.alive = false
	delete(w.spawned, uid)
	return nil
}

// SetVisibility shows or hides a static map element.
func (w *World) SetVisibility(name string, visible bool) error {
	el, ok := w.elements[name]
	if !ok {
		return ErrUnknownObject("element", name)
	}
	w.table.Invoke(intercept.OpSetVisibility, el, []any{visible}, func() any {
		el.visible = visible
		return nil
	})
	return nil
}

// DespawnAll hides a static map element and everything it spawned.
func (w *World) DespawnAll(name string) error {
	el, ok := w.elements[name]
	if !ok {
		return ErrUnknownObject("element", name)
	}
	w.table.Invoke(intercept.OpDespawnAll, el, nil, func() any {
		el.visible = false
		return nil
	})
	return nil
}

// FinishTask marks a task finished.
func (w *World) FinishTask(id string) error {
	t, ok := w.tasks[host.TaskID(id)]
	if !ok {
		return ErrUnknownObject("task", id)
	}
	t.finish()
	return nil
}

// LoadScene switches scenes. Objects spawned in the previous scene are
// destroyed and the listener is told once the new scene is ready.
func (w *World) LoadScene(ctx context.Context, sceneID string) {
	for id, obj := range w.spawned {
		obj.alive = false
		delete(w.spawned, id)
	}
	w.sceneID = sceneID
	w.loaded = sceneID != ""
	w.logger.Info("scene loaded", "scene_id", sceneID)
	if w.listener != nil {
		w.listener.OnSceneLoaded(ctx)
	}
}

// OpenMap makes the map the active view.
func (w *World) OpenMap(ctx context.Context) {
	w.setMap(ctx, true)
}

// CloseMap switches away from the map view.
func (w *World) CloseMap(ctx context.Context) {
	w.setMap(ctx, false)
}

func (w *World) setMap(ctx context.Context, open bool) {
	w.mapOpen = open
	if w.listener != nil {
		w.listener.OnActiveViewChanged(ctx)
	}
}

// SpawnedCount returns the number of live spawned objects.
func (w *World) SpawnedCount() int {
	return len(w.spawned)
}

// VisibleElements returns the names of elements currently shown.
func (w *World) VisibleElements() []string {
	var out []string
	for name, el := range w.elements {
		if el.visible {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}
