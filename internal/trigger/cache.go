// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package trigger indexes the quest-gated triggers placed in the loaded scene.
package trigger

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/holomush/questmap/internal/host"
)

// Cache maps quest ids to the triggers that require them. It is built once
// per scene generation; Invalidate starts a new generation.
type Cache struct {
	mu         sync.RWMutex
	byQuest    map[int][]host.SceneTrigger
	generation uint64
	builtFor   uint64
	built      bool
	logger     *slog.Logger
}

// NewCache creates an empty cache.
func NewCache(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		byQuest: make(map[int][]host.SceneTrigger),
		logger:  logger.With("component", "trigger_cache"),
	}
}

// Invalidate discards the index. The next Rebuild scans the scene again.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.built = false
	c.byQuest = make(map[int][]host.SceneTrigger)
}

// Built reports whether the index is current for this scene generation.
func (c *Cache) Built() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.built && c.builtFor == c.generation
}

// Rebuild scans scene triggers once per generation. Calling it again before
// Invalidate is a no-op.
func (c *Cache) Rebuild(scene host.Scene) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.built && c.builtFor == c.generation {
		return
	}

	index := make(map[int][]host.SceneTrigger)
	triggers := scene.Triggers()
	for _, trig := range triggers {
		if trig == nil || !trig.Alive() {
			continue
		}
		for _, questID := range trig.RequiredQuestIDs() {
			if containsTrigger(index[questID], trig) {
				continue
			}
			index[questID] = append(index[questID], trig)
		}
	}

	c.byQuest = index
	c.built = true
	c.builtFor = c.generation
	c.logger.Debug("scene triggers indexed",
		"triggers", len(triggers),
		"quests", len(index),
		"generation", c.generation)
}

// containsTrigger reports whether t is already in list. Triggers whose
// dynamic type is not comparable are never treated as duplicates.
func containsTrigger(list []host.SceneTrigger, t host.SceneTrigger) bool {
	typ := reflect.TypeOf(t)
	if !typ.Comparable() {
		return false
	}
	for _, existing := range list {
		if reflect.TypeOf(existing) == typ && existing == t {
			return true
		}
	}
	return false
}

// Lookup returns the first trigger for questID that is still alive.
func (c *Cache) Lookup(questID int) (host.SceneTrigger, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, trig := range c.byQuest[questID] {
		if trig != nil && trig.Alive() {
			return trig, true
		}
	}
	return nil, false
}

// Len returns the number of quest ids indexed.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byQuest)
}
