// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package main

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/encore/internal/catalog"
)

func cmdStats() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print summary statistics for the merged catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			c, res, err := loadCatalog(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer closeComponents(c)

			return printJSON(cmd.OutOrStdout(), catalog.ComputeStats(res.Catalog))
		},
	}
}
