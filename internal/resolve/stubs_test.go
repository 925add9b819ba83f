// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package resolve

import (
	"github.com/holomush/questmap/internal/geom"
	"github.com/holomush/questmap/internal/host"
)

type stubLocation struct {
	scene string
	pos   geom.Vec3
	ok    bool
}

func loc(scene string, x, z float64) *stubLocation {
	return &stubLocation{scene: scene, pos: geom.V(x, 0, z), ok: true}
}

func (l *stubLocation) SceneID() string                { return l.scene }
func (l *stubLocation) TryPosition() (geom.Vec3, bool) { return l.pos, l.ok }

type stubElement struct {
	locs []host.Location
	rng  float64
}

func (e *stubElement) Locations() []host.Location { return e.locs }
func (e *stubElement) Range() float64             { return e.rng }

type baseTask struct {
	id       host.TaskID
	quest    int
	finished bool
}

func (t *baseTask) ID() host.TaskID  { return t.id }
func (t *baseTask) QuestID() int     { return t.quest }
func (t *baseTask) IsFinished() bool { return t.finished }

type plainTask struct{ baseTask }

type mapTask struct {
	baseTask
	elem host.MapElement
	err  error
}

func (t *mapTask) MapElement() (host.MapElement, error) { return t.elem, t.err }

type spawner struct {
	locs []host.Location
	err  error
}

func (s *spawner) Task() (host.Task, error)                  { return nil, nil }
func (s *spawner) SpawnLocations() ([]host.Location, error) { return s.locs, s.err }

type eventTask struct {
	baseTask
	key     string
	keyErr  error
	spawner host.PrefabSpawner
}

func (t *eventTask) EventKey() (string, error)                  { return t.key, t.keyErr }
func (t *eventTask) PrefabSpawner() (host.PrefabSpawner, error) { return t.spawner, nil }

type reachTask struct {
	baseTask
	target    host.Location
	radius    float64
	radiusErr error
}

func (t *reachTask) TargetLocation() (host.Location, error) { return t.target, nil }
func (t *reachTask) TargetRadius() (float64, error)         { return t.radius, t.radiusErr }

type panicTask struct{ baseTask }

func (t *panicTask) MapElement() (host.MapElement, error) { panic("field missing") }

type stubTrigger struct {
	pos   geom.Vec3
	alive bool
}

func (t *stubTrigger) Position() geom.Vec3     { return t.pos }
func (t *stubTrigger) Alive() bool             { return t.alive }
func (t *stubTrigger) RequiredQuestIDs() []int { return nil }

type triggerIndex map[int]host.SceneTrigger

func (ti triggerIndex) Lookup(questID int) (host.SceneTrigger, bool) {
	t, ok := ti[questID]
	return t, ok
}

type stubEmitter struct {
	key   string
	pos   geom.Vec3
	alive bool
}

func (e *stubEmitter) Position() geom.Vec3       { return e.pos }
func (e *stubEmitter) Alive() bool               { return e.alive }
func (e *stubEmitter) EventKey() (string, error) { return e.key, nil }

type stubScene struct {
	emitters []host.EventEmitter
}

func (s *stubScene) CurrentSceneID() (string, error) { return "Level_X", nil }
func (s *stubScene) Loaded() bool                    { return true }
func (s *stubScene) Triggers() []host.SceneTrigger   { return nil }
func (s *stubScene) Emitters() []host.EventEmitter   { return s.emitters }
