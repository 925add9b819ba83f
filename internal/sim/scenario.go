// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package sim

import (
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/holomush/questmap/internal/geom"
)

// SupportedVersions is the scenario format range this build reads.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

// TaskKind selects the concrete task variant a scenario task becomes.
type TaskKind string

// Task kinds.
const (
	KindPlain      TaskKind = "plain"
	KindMapElement TaskKind = "map_element"
	KindEvent      TaskKind = "event"
	KindReach      TaskKind = "reach"
)

// SpawnerKind selects how a spawner places its object.
type SpawnerKind string

// Spawner kinds.
const (
	SpawnerItem   SpawnerKind = "item"
	SpawnerPrefab SpawnerKind = "prefab"
)

// Scenario describes a simulated play session.
type Scenario struct {
	Version  string        `yaml:"version" jsonschema:"description=Scenario format version (semver)"`
	Scene    string        `yaml:"scene" jsonschema:"minLength=1,description=Scene loaded at start"`
	MapOpen  bool          `yaml:"map_open,omitempty"`
	Quests   []QuestSpec   `yaml:"quests,omitempty"`
	Triggers []TriggerSpec `yaml:"triggers,omitempty"`
	Emitters []EmitterSpec `yaml:"emitters,omitempty"`
	Spawners []SpawnerSpec `yaml:"spawners,omitempty"`
	Elements []ElementSpec `yaml:"elements,omitempty"`
	Script   string        `yaml:"script,omitempty" jsonschema:"description=Lua script run after setup"`
}

// QuestSpec is one active quest.
type QuestSpec struct {
	ID    int        `yaml:"id" jsonschema:"minimum=1"`
	Name  string     `yaml:"name" jsonschema:"minLength=1"`
	Scene string     `yaml:"scene,omitempty" jsonschema:"description=Required scene id; empty for none"`
	Tasks []TaskSpec `yaml:"tasks,omitempty"`
}

// TaskSpec is one task of a quest.
type TaskSpec struct {
	ID             string         `yaml:"id" jsonschema:"minLength=1"`
	Kind           TaskKind       `yaml:"kind,omitempty" jsonschema:"enum=plain,enum=map_element,enum=event,enum=reach"`
	Finished       bool           `yaml:"finished,omitempty"`
	Locations      []LocationSpec `yaml:"locations,omitempty" jsonschema:"description=map_element candidate locations"`
	Range          float64        `yaml:"range,omitempty"`
	EventKey       string         `yaml:"event_key,omitempty"`
	SpawnLocations []LocationSpec `yaml:"spawn_locations,omitempty" jsonschema:"description=event task prefab spawn locations"`
	Target         *LocationSpec  `yaml:"target,omitempty" jsonschema:"description=reach task target"`
	Radius         float64        `yaml:"radius,omitempty"`
}

// LocationSpec is a scene-qualified position. A location without a position
// never resolves.
type LocationSpec struct {
	Scene    string     `yaml:"scene"`
	Position *geom.Vec3 `yaml:"position,omitempty"`
}

// TriggerSpec is a quest-gated scene trigger.
type TriggerSpec struct {
	Name     string    `yaml:"name" jsonschema:"minLength=1"`
	Scene    string    `yaml:"scene"`
	Position geom.Vec3 `yaml:"position"`
	Quests   []int     `yaml:"quests"`
}

// EmitterSpec is a placed task event emitter.
type EmitterSpec struct {
	Name     string    `yaml:"name" jsonschema:"minLength=1"`
	Scene    string    `yaml:"scene"`
	Position geom.Vec3 `yaml:"position"`
	EventKey string    `yaml:"event_key"`
}

// SpawnerSpec is a task component scripts can trigger.
type SpawnerSpec struct {
	Name string      `yaml:"name" jsonschema:"minLength=1"`
	Kind SpawnerKind `yaml:"kind" jsonschema:"enum=item,enum=prefab"`
	Task string      `yaml:"task"`
}

// ElementSpec is a static map element whose visibility scripts toggle.
type ElementSpec struct {
	Name string `yaml:"name" jsonschema:"minLength=1"`
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	if len(data) == 0 {
		return nil, invalid("", "scenario data is empty")
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, oops.Code(CodeInvalidScenario).Wrapf(err, "invalid YAML")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks cross references and the format version.
func (s *Scenario) Validate() error {
	v, err := semver.StrictNewVersion(s.Version)
	if err != nil {
		return oops.Code(CodeInvalidScenario).With("field", "version").With("value", s.Version).
			Wrapf(err, "version must be semver")
	}
	supported, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return oops.Code(CodeInvalidScenario).Wrap(err)
	}
	if !supported.Check(v) {
		return oops.Code(CodeUnsupportedVersion).
			With("version", s.Version).
			With("supported", SupportedVersions).
			Errorf("scenario version %s is not supported", s.Version)
	}
	if s.Scene == "" {
		return invalid("scene", "scene is required")
	}

	questIDs := make(map[int]bool, len(s.Quests))
	taskIDs := make(map[string]bool)
	for _, q := range s.Quests {
		if q.ID <= 0 || questIDs[q.ID] {
			return invalid("quests.id", "quest id %d must be positive and unique", q.ID)
		}
		questIDs[q.ID] = true
		for _, t := range q.Tasks {
			if t.ID == "" || taskIDs[t.ID] {
				return invalid("tasks.id", "task id %q must be set and unique", t.ID)
			}
			taskIDs[t.ID] = true
			if err := t.validate(); err != nil {
				return err
			}
		}
	}

	names := make(map[string]bool)
	checkName := func(field, name string) error {
		if !namePattern.MatchString(name) || names[name] {
			return invalid(field, "object name %q must be unique and match %s", name, namePattern)
		}
		names[name] = true
		return nil
	}
	for _, tr := range s.Triggers {
		if err := checkName("triggers.name", tr.Name); err != nil {
			return err
		}
	}
	for _, e := range s.Emitters {
		if err := checkName("emitters.name", e.Name); err != nil {
			return err
		}
	}
	for _, sp := range s.Spawners {
		if err := checkName("spawners.name", sp.Name); err != nil {
			return err
		}
		if sp.Kind != SpawnerItem && sp.Kind != SpawnerPrefab {
			return invalid("spawners.kind", "spawner %s has unknown kind %q", sp.Name, sp.Kind)
		}
		if !taskIDs[sp.Task] {
			return invalid("spawners.task", "spawner %s references unknown task %q", sp.Name, sp.Task)
		}
	}
	for _, el := range s.Elements {
		if err := checkName("elements.name", el.Name); err != nil {
			return err
		}
	}
	return nil
}

func (t TaskSpec) validate() error {
	switch t.Kind {
	case "", KindPlain:
	case KindMapElement:
		if len(t.Locations) == 0 {
			return invalid("tasks.locations", "map_element task %s needs locations", t.ID)
		}
	case KindEvent:
		if t.EventKey == "" {
			return invalid("tasks.event_key", "event task %s needs an event_key", t.ID)
		}
	case KindReach:
		if t.Target == nil {
			return invalid("tasks.target", "reach task %s needs a target", t.ID)
		}
	default:
		return invalid("tasks.kind", "task %s has unknown kind %q", t.ID, t.Kind)
	}
	return nil
}
