// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package spawn tracks quest objectives that only exist because the
// simulation spawned something at runtime.
package spawn

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/questmap/internal/geom"
	"github.com/holomush/questmap/internal/host"
)

// DefaultTolerance is the distance under which two prefab spawns for the same
// task are considered the same spawn.
const DefaultTolerance = 0.1

// Record is one dynamically discovered objective position.
type Record struct {
	ID         ulid.ULID
	TaskID     host.TaskID
	QuestName  string
	Position   geom.Vec3
	Radius     float64
	SceneID    string
	SubSceneID string
}

// Registry holds spawn records keyed weakly by task and the set of map
// elements the simulation currently shows.
//
// The simulation drives it from a single thread; the mutex only guards
// against diagnostics reads from other goroutines.
type Registry struct {
	mu        sync.RWMutex
	records   []Record
	visible   map[any]struct{}
	tolerance float64
	entropy   *ulid.MonotonicEntropy
}

// Option configures a Registry.
type Option func(*Registry)

// WithTolerance sets the prefab dedup distance.
func WithTolerance(d float64) Option {
	return func(r *Registry) {
		if d > 0 {
			r.tolerance = d
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		visible:   make(map[any]struct{}),
		tolerance: DefaultTolerance,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) newID() ulid.ULID {
	return ulid.MustNew(ulid.Timestamp(time.Now()), r.entropy)
}

// RecordItem adds a record for an item spawn. It is a no-op if the task
// already has any record. Reports whether a record was added.
func (r *Registry) RecordItem(task host.TaskID, questName string, pos geom.Vec3, radius float64, sceneID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records {
		if rec.TaskID == task {
			return false
		}
	}
	r.append(task, questName, pos, radius, sceneID)
	return true
}

// RecordPrefab adds a record for a prefab spawn. It is a no-op if the task
// already has a record within the tolerance of pos, so repeated instantiate
// calls for one spawn collapse into one record.
func (r *Registry) RecordPrefab(task host.TaskID, questName string, pos geom.Vec3, radius float64, sceneID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records {
		if rec.TaskID == task && geom.Distance(rec.Position, pos) < r.tolerance {
			return false
		}
	}
	r.append(task, questName, pos, radius, sceneID)
	return true
}

func (r *Registry) append(task host.TaskID, questName string, pos geom.Vec3, radius float64, sceneID string) {
	r.records = append(r.records, Record{
		ID:        r.newID(),
		TaskID:    task,
		QuestName: questName,
		Position:  pos,
		Radius:    radius,
		SceneID:   sceneID,
	})
}

// Prune drops every record whose task is not in active or reports finished.
// It returns the number of records removed.
func (r *Registry) Prune(active map[host.TaskID]host.Task) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.records[:0]
	for _, rec := range r.records {
		task, ok := active[rec.TaskID]
		if !ok || task == nil || task.IsFinished() {
			continue
		}
		kept = append(kept, rec)
	}
	removed := len(r.records) - len(kept)
	clear(r.records[len(kept):])
	r.records = kept
	return removed
}

// QueryByScene returns a copy of the records whose scene id equals sceneID.
// Dynamic spawns carry the exact scene they happened in, so no fuzzy
// matching is applied here.
func (r *Registry) QueryByScene(sceneID string) []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Record
	for _, rec := range r.records {
		if rec.SceneID == sceneID {
			out = append(out, rec)
		}
	}
	return out
}

// Len returns the number of records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Reset drops all records and visible elements.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
	clear(r.visible)
}

// MarkVisible adds a static map element to the visible set. Reports whether
// the element was newly added.
func (r *Registry) MarkVisible(element any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.visible[element]; ok {
		return false
	}
	r.visible[element] = struct{}{}
	return true
}

// MarkHidden removes a static map element from the visible set. Reports
// whether it was present.
func (r *Registry) MarkHidden(element any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.visible[element]; !ok {
		return false
	}
	delete(r.visible, element)
	return true
}

// VisibleCount returns the number of currently visible static elements.
func (r *Registry) VisibleCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.visible)
}
