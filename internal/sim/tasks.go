// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package sim

import (
	"github.com/holomush/questmap/internal/host"
)

type baseTask struct {
	id       host.TaskID
	questID  int
	finished bool
}

func (t *baseTask) ID() host.TaskID  { return t.id }
func (t *baseTask) QuestID() int     { return t.questID }
func (t *baseTask) IsFinished() bool { return t.finished }
func (t *baseTask) finish()          { t.finished = true }

// plainTask has no location data at all; only scene triggers can place it.
type plainTask struct {
	baseTask
}

type mapElementTask struct {
	baseTask
	element *mapElement
}

func (t *mapElementTask) MapElement() (host.MapElement, error) { return t.element, nil }

type eventTask struct {
	baseTask
	key     string
	spawner *prefabSpawner
}

func (t *eventTask) EventKey() (string, error) { return t.key, nil }

func (t *eventTask) PrefabSpawner() (host.PrefabSpawner, error) {
	if t.spawner == nil {
		return nil, nil
	}
	return t.spawner, nil
}

type reachTask struct {
	baseTask
	target *location
	radius float64
}

func (t *reachTask) TargetLocation() (host.Location, error) { return t.target, nil }
func (t *reachTask) TargetRadius() (float64, error)         { return t.radius, nil }

type finisher interface {
	host.Task
	finish()
}

func newTask(questID int, spec TaskSpec) finisher {
	base := baseTask{id: host.TaskID(spec.ID), questID: questID, finished: spec.Finished}
	switch spec.Kind {
	case KindMapElement:
		return &mapElementTask{baseTask: base, element: &mapElement{locs: locations(spec.Locations), rng: spec.Range}}
	case KindEvent:
		t := &eventTask{baseTask: base, key: spec.EventKey}
		if len(spec.SpawnLocations) > 0 {
			t.spawner = &prefabSpawner{name: spec.ID + ".spawner", task: t, locs: locations(spec.SpawnLocations)}
		}
		return t
	case KindReach:
		return &reachTask{baseTask: base, target: &location{scene: spec.Target.Scene, pos: spec.Target.Position}, radius: spec.Radius}
	default:
		return &plainTask{baseTask: base}
	}
}

type quest struct {
	id    int
	name  string
	scene string
	tasks []host.Task
}

func (q *quest) ID() int                 { return q.id }
func (q *quest) DisplayName() string     { return q.name }
func (q *quest) RequiredSceneID() string { return q.scene }
func (q *quest) Tasks() []host.Task      { return q.tasks }

// active reports whether any task is left. A quest without tasks stays active.
func (q *quest) active() bool {
	if len(q.tasks) == 0 {
		return true
	}
	for _, t := range q.tasks {
		if !t.IsFinished() {
			return true
		}
	}
	return false
}
