// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/encore/internal/catalog"
	"github.com/tomtom215/encore/internal/database"
)

func cmdOverlap() *cobra.Command {
	return &cobra.Command{
		Use:   "overlap LEFT RIGHT",
		Short: "Compare the track identities of two raw datasets",
		Long: "Reports how many tracks two source files share. External ids are " +
			"compared when both files carry them, otherwise canonical " +
			"title, primary artist and duration.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := database.Open(ctx, database.Config{
				Threads:   cfg.Catalog.DuckDBThreads,
				MaxMemory: cfg.Catalog.DuckDBMaxMemory,
			})
			if err != nil {
				return fmt.Errorf("open duckdb: %w", err)
			}
			defer func() { _ = db.Close() }()

			left, err := db.ReadTable(ctx, args[0])
			if err != nil {
				return err
			}
			right, err := db.ReadTable(ctx, args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), catalog.Overlap(left, right))
		},
	}
}
