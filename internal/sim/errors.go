// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package sim

import "github.com/samber/oops"

// Error codes.
const (
	CodeInvalidScenario    = "INVALID_SCENARIO"
	CodeUnsupportedVersion = "UNSUPPORTED_SCENARIO_VERSION"
	CodeUnknownObject      = "UNKNOWN_OBJECT"
	CodeScriptFailed       = "SCRIPT_FAILED"
)

func invalid(field, format string, args ...any) error {
	return oops.Code(CodeInvalidScenario).
		With("field", field).
		Errorf(format, args...)
}

// ErrUnknownObject reports a script reference to a missing object.
func ErrUnknownObject(kind, name string) error {
	return oops.Code(CodeUnknownObject).
		With("kind", kind).
		With("name", name).
		Errorf("unknown %s %q", kind, name)
}
