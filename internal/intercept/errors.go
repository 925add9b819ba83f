// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package intercept

import "github.com/samber/oops"

// Error codes for interception failures.
const (
	CodeHookInstallFailed = "HOOK_INSTALL_FAILED"
	CodeHookEventDropped  = "HOOK_EVENT_DROPPED"
	CodeInvalidOwner      = "INVALID_OWNER"
)

// ErrHookInstall wraps a failed hook installation.
func ErrHookInstall(op Operation, cause error) error {
	return oops.Code(CodeHookInstallFailed).
		With("operation", string(op)).
		Wrap(cause)
}

// ErrEventDropped describes a hook event that could not be translated.
func ErrEventDropped(op Operation, reason string) error {
	return oops.Code(CodeHookEventDropped).
		With("operation", string(op)).
		With("reason", reason).
		Errorf("%s event dropped: %s", op, reason)
}
