// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package host defines the contracts the marker engine consumes from the
// simulation it runs inside. The engine never owns any of these objects: quests,
// tasks and scene objects belong to the host and may disappear at any time.
package host

import "github.com/holomush/questmap/internal/geom"

// TaskID identifies a task for the lifetime of a play session. The engine keeps
// TaskIDs instead of task references and re-resolves liveness on every read.
type TaskID string

// Task is one step of a quest. Concrete variants are opaque; the resolver
// recognizes them only through the capability interfaces in package resolve.
type Task interface {
	ID() TaskID
	QuestID() int
	IsFinished() bool
}

// Quest is a tracked unit of player progress.
type Quest interface {
	ID() int
	DisplayName() string
	// RequiredSceneID returns the nominal scene of the quest, or "" if none.
	RequiredSceneID() string
	Tasks() []Task
}

// QuestSystem enumerates the currently active quests.
type QuestSystem interface {
	ActiveQuests() ([]Quest, error)
	// QuestByID returns the active quest with the given id.
	QuestByID(id int) (Quest, bool)
}

// Location is one scene-qualified candidate position.
type Location interface {
	SceneID() string
	// TryPosition returns the world position if the location can currently
	// be resolved in the loaded scene.
	TryPosition() (geom.Vec3, bool)
}

// MapElement is an authored static descriptor of candidate locations.
type MapElement interface {
	Locations() []Location
	Range() float64
}

// PrefabSpawner is a task component that spawns a prefab at one of its
// configured locations.
type PrefabSpawner interface {
	Task() (Task, error)
	SpawnLocations() ([]Location, error)
}

// ItemSpawner is a task component that spawns an item for its task.
type ItemSpawner interface {
	Task() (Task, error)
}

// SceneObject is any placed object with a position that may be destroyed.
type SceneObject interface {
	Position() geom.Vec3
	Alive() bool
}

// SceneTrigger gates visibility of objects behind a set of active quests.
type SceneTrigger interface {
	SceneObject
	RequiredQuestIDs() []int
}

// EventEmitter is a placed object that fires a task event key.
type EventEmitter interface {
	SceneObject
	EventKey() (string, error)
}

// Scene exposes the currently loaded scene.
type Scene interface {
	CurrentSceneID() (string, error)
	Loaded() bool
	Triggers() []SceneTrigger
	Emitters() []EventEmitter
}

// ViewState answers whether the map view is the active view.
type ViewState interface {
	IsMapViewActive() bool
}

// Color is an RGBA marker color with components in [0,1].
type Color struct {
	R, G, B, A float64
}

// Green is the marker color used for quest areas.
var Green = Color{R: 0, G: 1, B: 0, A: 1}

// MarkerHandle is a disposable marker returned by the renderer.
type MarkerHandle interface {
	Dispose()
}

// Renderer turns a position, radius and label into an on-screen marker.
type Renderer interface {
	CreateMarker(pos geom.Vec3, radius float64, label string, color Color, area bool) (MarkerHandle, error)
}
