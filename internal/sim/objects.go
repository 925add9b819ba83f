// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package sim

import (
	"github.com/oklog/ulid/v2"

	"github.com/holomush/questmap/internal/geom"
	"github.com/holomush/questmap/internal/host"
)

type location struct {
	scene string
	pos   *geom.Vec3
}

func (l *location) SceneID() string { return l.scene }

func (l *location) TryPosition() (geom.Vec3, bool) {
	if l.pos == nil {
		return geom.Vec3{}, false
	}
	return *l.pos, true
}

func locations(specs []LocationSpec) []host.Location {
	out := make([]host.Location, 0, len(specs))
	for _, s := range specs {
		out = append(out, &location{scene: s.Scene, pos: s.Position})
	}
	return out
}

type mapElement struct {
	locs []host.Location
	rng  float64
}

func (e *mapElement) Locations() []host.Location { return e.locs }
func (e *mapElement) Range() float64             { return e.rng }

// object is anything placed in a scene.
type object struct {
	id    ulid.ULID
	name  string
	scene string
	pos   geom.Vec3
	alive bool
}

func (o *object) Position() geom.Vec3 { return o.pos }
func (o *object) Alive() bool         { return o.alive }
func (o *object) String() string      { return o.name + "@" + o.pos.String() }

type sceneTrigger struct {
	object
	quests []int
}

func (t *sceneTrigger) RequiredQuestIDs() []int { return t.quests }

type eventEmitter struct {
	object
	key string
}

func (e *eventEmitter) EventKey() (string, error) { return e.key, nil }

// element is a static map element that scripts show and hide.
type element struct {
	name    string
	visible bool
}

func (e *element) String() string { return e.name }

type itemSpawner struct {
	name string
	task host.Task
}

func (s *itemSpawner) Task() (host.Task, error) { return s.task, nil }

type prefabSpawner struct {
	name string
	task host.Task
	locs []host.Location
}

func (s *prefabSpawner) Task() (host.Task, error)                  { return s.task, nil }
func (s *prefabSpawner) SpawnLocations() ([]host.Location, error) { return s.locs, nil }
