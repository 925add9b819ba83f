// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package resolve

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// SceneMatcher decides whether a location authored for one scene id belongs
// to the currently loaded scene.
//
// Authored ids are inconsistent ("Level_X_Main" vs "Level_X"), so two ids
// match when they are equal or either contains the other. This accepts
// unrelated scenes whose ids happen to nest; it is a known precision/recall
// tradeoff. Configured aliases add glob patterns per current scene for ids
// the substring rule cannot reach.
type SceneMatcher struct {
	aliases map[string][]glob.Glob
}

// NewSceneMatcher compiles alias patterns keyed by current scene id.
func NewSceneMatcher(aliases map[string][]string) (*SceneMatcher, error) {
	m := &SceneMatcher{aliases: make(map[string][]glob.Glob, len(aliases))}
	for scene, patterns := range aliases {
		for _, p := range patterns {
			g, err := glob.Compile(p)
			if err != nil {
				return nil, oops.Code(CodeInvalidScenePattern).
					With("scene", scene).
					With("pattern", p).
					Wrap(err)
			}
			m.aliases[scene] = append(m.aliases[scene], g)
		}
	}
	return m, nil
}

// Match reports whether locationScene belongs to currentScene. Empty ids
// never match: an empty id would be a substring of every scene.
func (m *SceneMatcher) Match(locationScene, currentScene string) bool {
	if locationScene == "" || currentScene == "" {
		return false
	}
	if locationScene == currentScene ||
		strings.Contains(locationScene, currentScene) ||
		strings.Contains(currentScene, locationScene) {
		return true
	}
	if m == nil {
		return false
	}
	for _, g := range m.aliases[currentScene] {
		if g.Match(locationScene) {
			return true
		}
	}
	return false
}
