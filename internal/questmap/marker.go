// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package questmap

import (
	"github.com/holomush/questmap/internal/geom"
	"github.com/holomush/questmap/internal/host"
	"github.com/holomush/questmap/internal/resolve"
)

// Source tells where a marker position came from.
type Source string

// Marker sources.
const (
	SourceResolved Source = "resolved"
	SourceSpawn    Source = "spawn"
)

// Marker is one published quest-objective marker.
type Marker struct {
	TaskID     host.TaskID      `json:"task_id"`
	QuestName  string           `json:"quest_name"`
	Position   geom.Vec3        `json:"position"`
	Radius     float64          `json:"radius"`
	SceneID    string           `json:"scene_id"`
	SubSceneID string           `json:"sub_scene_id,omitempty"`
	Source     Source           `json:"source"`
	Strategy   resolve.Strategy `json:"strategy,omitempty"`
}

// Label is the text shown next to the marker.
func (m Marker) Label() string {
	return m.QuestName
}
