// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/holomush/questmap/internal/pipeline"
	"github.com/holomush/questmap/internal/sim"
)

// NewValidateCmd creates the validate subcommand.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario>...",
		Short: "Validate scenario files without running them",
		Long: `Checks each scenario against the scenario schema and its cross
references. Exits with code 0 on success, non-zero on failure.

Useful in CI pipelines to catch scenario errors early:
  questmap validate scenarios/*.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args)
		},
	}
}

func runValidate(cmd *cobra.Command, refs []string) error {
	failed := 0
	for _, ref := range refs {
		_, path, err := pipeline.LoadScenario(ref)
		if err != nil {
			failed++
			slog.Error("scenario invalid", "scenario", ref, "detail", sim.FormatSchemaError(err))
			cmd.PrintErrf("%s: %v\n", ref, err)
			continue
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("validation failed: %d of %d scenarios invalid", failed, len(refs))
	}
	return nil
}
