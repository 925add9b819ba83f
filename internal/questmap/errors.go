// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package questmap

import "github.com/samber/oops"

// CodeDependencyUnavailable marks a refresh aborted because a host
// dependency could not answer.
const CodeDependencyUnavailable = "DEPENDENCY_UNAVAILABLE"

// Host dependency names used in error context.
const (
	DependencyQuestSystem = "quest_system"
	DependencyScene       = "scene"
)

// ErrDependencyUnavailable wraps a failed host dependency. cause may be nil.
func ErrDependencyUnavailable(dependency string, cause error) error {
	b := oops.Code(CodeDependencyUnavailable).With("dependency", dependency)
	if cause == nil {
		return b.Errorf("%s unavailable", dependency)
	}
	return b.Wrapf(cause, "%s unavailable", dependency)
}
