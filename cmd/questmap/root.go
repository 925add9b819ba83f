// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the questmap CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questmap",
		Short: "questmap - quest objective markers for the world map",
		Long: `questmap resolves the world positions of active quest objectives and
draws them on the map. The CLI drives the engine against a simulated host
described by a scenario file.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/questmap/config.yaml)")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}
