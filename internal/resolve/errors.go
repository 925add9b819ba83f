// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package resolve

import (
	"github.com/samber/oops"
)

// CodeIntrospectionFailed marks a task accessor that was absent, returned an
// error, or panicked. The strategy using it is treated as inapplicable.
const CodeIntrospectionFailed = "INTROSPECTION_FAILED"

// CodeInvalidScenePattern marks a scene alias glob that does not compile.
const CodeInvalidScenePattern = "INVALID_SCENE_PATTERN"

// ErrIntrospection creates an introspection failure for a task type.
func ErrIntrospection(taskType, accessor string, cause error) error {
	b := oops.Code(CodeIntrospectionFailed).
		With("task_type", taskType).
		With("accessor", accessor)
	if cause != nil {
		return b.Wrap(cause)
	}
	return b.Errorf("%s.%s unavailable", taskType, accessor)
}
