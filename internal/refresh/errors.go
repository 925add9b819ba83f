// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package refresh

import "github.com/samber/oops"

// CodeRenderFailed marks a marker the renderer could not create.
const CodeRenderFailed = "RENDER_FAILED"

// ErrRender wraps a renderer failure for one marker.
func ErrRender(label string, cause error) error {
	return oops.Code(CodeRenderFailed).
		With("label", label).
		Wrapf(cause, "create marker %q", label)
}
