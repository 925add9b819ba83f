// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package questmap

import (
	"github.com/holomush/questmap/internal/geom"
	"github.com/holomush/questmap/internal/host"
)

type stubLocation struct {
	scene string
	pos   geom.Vec3
}

func (l stubLocation) SceneID() string                { return l.scene }
func (l stubLocation) TryPosition() (geom.Vec3, bool) { return l.pos, true }

type stubElement struct {
	locs []host.Location
	rng  float64
}

func (e *stubElement) Locations() []host.Location { return e.locs }
func (e *stubElement) Range() float64             { return e.rng }

type stubTask struct {
	id       host.TaskID
	quest    int
	finished bool
	elem     host.MapElement
}

func (t *stubTask) ID() host.TaskID  { return t.id }
func (t *stubTask) QuestID() int     { return t.quest }
func (t *stubTask) IsFinished() bool { return t.finished }

// mapTask carries a static map element.
type mapTask struct{ stubTask }

func (t *mapTask) MapElement() (host.MapElement, error) { return t.elem, nil }

func newMapTask(id host.TaskID, quest int, scene string, pos geom.Vec3, radius float64) *mapTask {
	return &mapTask{stubTask{
		id:    id,
		quest: quest,
		elem:  &stubElement{locs: []host.Location{stubLocation{scene: scene, pos: pos}}, rng: radius},
	}}
}

// destroyedTask models a task whose host object was torn down mid-refresh.
type destroyedTask struct{ stubTask }

func (t *destroyedTask) IsFinished() bool { panic("object destroyed") }

type destroyedQuest struct{ stubQuest }

func (q *destroyedQuest) Tasks() []host.Task { panic("object destroyed") }

type stubQuest struct {
	id    int
	name  string
	scene string
	tasks []host.Task
}

func (q *stubQuest) ID() int                 { return q.id }
func (q *stubQuest) DisplayName() string     { return q.name }
func (q *stubQuest) RequiredSceneID() string { return q.scene }
func (q *stubQuest) Tasks() []host.Task      { return q.tasks }

type stubQuests struct {
	quests []host.Quest
	err    error
}

func (s *stubQuests) ActiveQuests() ([]host.Quest, error) { return s.quests, s.err }

func (s *stubQuests) QuestByID(id int) (host.Quest, bool) {
	for _, q := range s.quests {
		if q.ID() == id {
			return q, true
		}
	}
	return nil, false
}

type stubTrigger struct {
	pos    geom.Vec3
	quests []int
	dead   bool
}

func (t *stubTrigger) Position() geom.Vec3     { return t.pos }
func (t *stubTrigger) Alive() bool             { return !t.dead }
func (t *stubTrigger) RequiredQuestIDs() []int { return t.quests }

type stubScene struct {
	id       string
	err      error
	loaded   bool
	triggers []host.SceneTrigger
	scans    int
}

func (s *stubScene) CurrentSceneID() (string, error) { return s.id, s.err }
func (s *stubScene) Loaded() bool                    { return s.loaded }
func (s *stubScene) Emitters() []host.EventEmitter   { return nil }

func (s *stubScene) Triggers() []host.SceneTrigger {
	s.scans++
	return s.triggers
}
