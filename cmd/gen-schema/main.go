// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Command gen-schema writes the scenario JSON Schema file, or with --check
// fails if the file on disk is stale.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/spf13/pflag"

	"github.com/holomush/questmap/internal/sim"
)

func main() {
	out := pflag.StringP("out", "o", filepath.Join("schemas", "scenario.schema.json"), "schema output path")
	check := pflag.Bool("check", false, "verify the schema file is up to date instead of writing it")
	pflag.Parse()

	if err := run(*out, *check); err != nil {
		fmt.Fprintf(os.Stderr, "gen-schema: %v\n", err)
		os.Exit(1)
	}
}

func run(outPath string, check bool) error {
	schema, err := sim.GenerateSchema()
	if err != nil {
		return fmt.Errorf("generating schema: %w", err)
	}
	schema = append(schema, '\n')

	if check {
		current, err := os.ReadFile(outPath) //nolint:gosec // path comes from the build
		if err != nil {
			return fmt.Errorf("reading %s: %w", outPath, err)
		}
		same, err := sameJSON(current, schema)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", outPath, err)
		}
		if !same {
			return fmt.Errorf("%s is stale; run go run ./cmd/gen-schema", outPath)
		}
		fmt.Printf("%s is up to date\n", outPath)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(outPath, schema, 0o600); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	fmt.Printf("Generated %s\n", outPath)
	return nil
}

// sameJSON compares two JSON documents by value, so key order and
// whitespace in the committed file do not matter.
func sameJSON(a, b []byte) (bool, error) {
	var x, y any
	if err := json.Unmarshal(a, &x); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, &y); err != nil {
		return false, err
	}
	return reflect.DeepEqual(x, y), nil
}
