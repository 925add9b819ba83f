// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pipeline

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"

	"github.com/holomush/questmap/internal/sim"
	"github.com/holomush/questmap/internal/xdg"
)

// CodeScenarioNotFound is returned when a scenario reference names no file.
const CodeScenarioNotFound = "SCENARIO_NOT_FOUND"

// ResolveScenario maps ref to a file. A ref that is not an existing path is
// looked up by name in the XDG scenario directory, with or without a .yaml
// extension.
func ResolveScenario(ref string) (string, error) {
	if ref == "" {
		return "", oops.Code(CodeScenarioNotFound).Errorf("no scenario given")
	}
	if _, err := os.Stat(ref); err == nil {
		return ref, nil
	}
	if strings.ContainsRune(ref, filepath.Separator) {
		return "", oops.Code(CodeScenarioNotFound).With("scenario", ref).Errorf("scenario file not found")
	}

	dir, err := xdg.ScenarioDir()
	if err != nil {
		return "", err
	}
	candidates := []string{filepath.Join(dir, ref)}
	if filepath.Ext(ref) == "" {
		candidates = append(candidates, filepath.Join(dir, ref+".yaml"), filepath.Join(dir, ref+".yml"))
	}
	for _, path := range candidates {
		_, err := os.Stat(path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", oops.Code(CodeScenarioNotFound).With("scenario", path).Wrap(err)
		}
	}
	return "", oops.Code(CodeScenarioNotFound).
		With("scenario", ref).
		With("dir", dir).
		Errorf("scenario %q not found", ref)
}

// LoadScenario resolves ref, checks it against the scenario schema and
// parses it.
func LoadScenario(ref string) (*sim.Scenario, string, error) {
	path, err := ResolveScenario(ref)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the operator
	if err != nil {
		return nil, "", oops.Code(CodeScenarioNotFound).With("scenario", path).Wrap(err)
	}
	if err := sim.ValidateSchema(data); err != nil {
		return nil, "", err
	}
	scenario, err := sim.ParseScenario(data)
	if err != nil {
		return nil, "", err
	}
	return scenario, path, nil
}
