// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package main

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/encore/internal/catalog"
)

type buildSummary struct {
	Fingerprint string               `json:"fingerprint"`
	Rows        int                  `json:"rows"`
	Hit         bool                 `json:"cache_hit"`
	Sources     []string             `json:"sources"`
	Report      *catalog.MergeReport `json:"report,omitempty"`
}

func cmdBuild() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Merge the catalog sources and cache the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			c, res, err := loadCatalog(cmd.Context(), cfg, force)
			if err != nil {
				return err
			}
			defer closeComponents(c)

			return printJSON(cmd.OutOrStdout(), buildSummary{
				Fingerprint: res.Fingerprint,
				Rows:        res.Catalog.Len(),
				Hit:         res.Hit,
				Sources:     cfg.Catalog.Sources,
				Report:      res.Report,
			})
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Rebuild even when cached artifacts match the sources")
	return cmd
}
