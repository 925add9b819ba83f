// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package refresh

import (
	"errors"
	"fmt"

	"github.com/stretchr/testify/mock"

	"github.com/holomush/questmap/internal/geom"
	"github.com/holomush/questmap/internal/host"
	"github.com/holomush/questmap/internal/questmap"
	"github.com/holomush/questmap/internal/resolve"
	"github.com/holomush/questmap/internal/spawn"
	"github.com/holomush/questmap/internal/trigger"
)

type task struct {
	id    host.TaskID
	quest int
}

func (t *task) ID() host.TaskID  { return t.id }
func (t *task) QuestID() int     { return t.quest }
func (t *task) IsFinished() bool { return false }

type quest struct {
	id    int
	name  string
	tasks []host.Task
}

func (q *quest) ID() int                 { return q.id }
func (q *quest) DisplayName() string     { return q.name }
func (q *quest) RequiredSceneID() string { return "" }
func (q *quest) Tasks() []host.Task      { return q.tasks }

type quests struct {
	list []host.Quest
	err  error
}

func (s *quests) ActiveQuests() ([]host.Quest, error) { return s.list, s.err }
func (s *quests) QuestByID(int) (host.Quest, bool)    { return nil, false }

type gate struct {
	pos    geom.Vec3
	quests []int
}

func (g *gate) Position() geom.Vec3     { return g.pos }
func (g *gate) Alive() bool             { return true }
func (g *gate) RequiredQuestIDs() []int { return g.quests }

type scene struct {
	id       string
	loaded   bool
	triggers []host.SceneTrigger
}

func (s *scene) CurrentSceneID() (string, error) { return s.id, nil }
func (s *scene) Loaded() bool                    { return s.loaded }
func (s *scene) Triggers() []host.SceneTrigger   { return s.triggers }
func (s *scene) Emitters() []host.EventEmitter   { return nil }

type view struct{ mapOpen bool }

func (v *view) IsMapViewActive() bool { return v.mapOpen }

// mockHooks is a mock for Hooks.
type mockHooks struct {
	mock.Mock
}

func (m *mockHooks) Apply() int {
	args := m.Called()
	return args.Int(0)
}

func (m *mockHooks) Remove() {
	m.Called()
}

func newMockHooks() *mockHooks {
	h := new(mockHooks)
	h.On("Apply").Return(5).Maybe()
	h.On("Remove").Return().Maybe()
	return h
}

type handle struct {
	r     *renderer
	label string
}

func (h *handle) Dispose() {
	h.r.log = append(h.r.log, "dispose "+h.label)
	h.r.live--
}

type renderer struct {
	log     []string
	live    int
	created int
	failOn  string
}

func (r *renderer) CreateMarker(pos geom.Vec3, radius float64, label string, _ host.Color, area bool) (host.MarkerHandle, error) {
	if label == r.failOn {
		return nil, errors.New("no icon")
	}
	if !area {
		return nil, fmt.Errorf("unexpected non-area marker")
	}
	r.created++
	r.live++
	r.log = append(r.log, "create "+label)
	return &handle{r: r, label: label}, nil
}

type fixture struct {
	quests   *quests
	scene    *scene
	view     *view
	hooks    *mockHooks
	renderer *renderer
	registry *spawn.Registry
	engine   *questmap.Engine
	ctl      *Controller
}

// newFixture builds a controller over one quest gated by a trigger at (3,0,3).
func newFixture() *fixture {
	f := &fixture{
		quests: &quests{list: []host.Quest{
			&quest{id: 1, name: "Gate", tasks: []host.Task{&task{id: "t1", quest: 1}}},
		}},
		scene:    &scene{id: "Level_A", loaded: true, triggers: []host.SceneTrigger{&gate{pos: geom.V(3, 0, 3), quests: []int{1}}}},
		view:     &view{},
		hooks:    newMockHooks(),
		renderer: &renderer{},
		registry: spawn.NewRegistry(),
	}
	f.engine = questmap.NewEngine(f.quests, f.scene, f.registry, trigger.NewCache(nil), resolve.New())
	f.ctl = NewController(f.engine, f.hooks, f.scene, f.view, f.renderer)
	return f
}
