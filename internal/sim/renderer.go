// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package sim

import (
	"cmp"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/questmap/internal/geom"
	"github.com/holomush/questmap/internal/host"
)

// DrawnMarker is a marker currently on screen.
type DrawnMarker struct {
	ID       ulid.ULID  `json:"id"`
	Label    string     `json:"label"`
	Position geom.Vec3  `json:"position"`
	Radius   float64    `json:"radius"`
	Color    host.Color `json:"color"`
	Area     bool       `json:"area"`
}

// Renderer records the markers it is asked to draw.
type Renderer struct {
	mu      sync.Mutex
	live    map[ulid.ULID]DrawnMarker
	created int
}

// NewRenderer creates an empty renderer.
func NewRenderer() *Renderer {
	return &Renderer{live: make(map[ulid.ULID]DrawnMarker)}
}

// CreateMarker implements host.Renderer.
func (r *Renderer) CreateMarker(pos geom.Vec3, radius float64, label string, color host.Color, area bool) (host.MarkerHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := DrawnMarker{ID: NewID(), Label: label, Position: pos, Radius: radius, Color: color, Area: area}
	r.live[m.ID] = m
	r.created++
	return &markerHandle{r: r, id: m.ID}, nil
}

// Drawn returns the markers on screen ordered by label, then position.
func (r *Renderer) Drawn() []DrawnMarker {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]DrawnMarker, 0, len(r.live))
	for _, m := range r.live {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b DrawnMarker) int {
		return cmp.Or(
			cmp.Compare(a.Label, b.Label),
			cmp.Compare(a.Position.X, b.Position.X),
			cmp.Compare(a.Position.Z, b.Position.Z),
			a.ID.Compare(b.ID),
		)
	})
	return out
}

// Created returns how many markers were ever created.
func (r *Renderer) Created() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created
}

type markerHandle struct {
	r  *Renderer
	id ulid.ULID
}

// Dispose removes the marker. Disposing twice is harmless.
func (h *markerHandle) Dispose() {
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	delete(h.r.live, h.id)
}
