// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/encore/internal/app"
	"github.com/tomtom215/encore/internal/catalogcache"
	"github.com/tomtom215/encore/internal/config"
	"github.com/tomtom215/encore/internal/logging"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "encore",
		Short:         "Playlist-seeded track recommendations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			logging.Init(logging.Config{
				Level:  level,
				Format: "console",
				Output: cmd.ErrOrStderr(),
			})
			return nil
		},
	}
	cmd.PersistentFlags().StringP("config", "c", "", "Config file (overrides CONFIG_PATH)")
	cmd.PersistentFlags().StringArrayP("source", "s", nil, "Catalog source file, repeatable (overrides catalog.sources)")
	cmd.PersistentFlags().String("cache-dir", "", "Artifact directory (overrides catalog.cache_dir)")
	cmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")

	cmd.AddCommand(cmdBuild(), cmdRecommend(), cmdStats(), cmdOverlap())
	return cmd
}

// loadConfig loads the layered configuration and applies the persistent
// flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := os.Setenv(config.ConfigPathEnvVar, path); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if sources, _ := cmd.Flags().GetStringArray("source"); len(sources) > 0 {
		cfg.Catalog.Sources = sources
	}
	if dir, _ := cmd.Flags().GetString("cache-dir"); dir != "" {
		cfg.Catalog.CacheDir = dir
	}
	return cfg, nil
}

// loadCatalog opens the catalog stack and returns the catalog for the
// configured sources, from cache when possible.
func loadCatalog(ctx context.Context, cfg *config.Config, force bool) (*app.Components, *catalogcache.Result, error) {
	c, err := app.Open(ctx, cfg, logging.WithComponent("catalogcache"))
	if err != nil {
		return nil, nil, err
	}
	res, err := c.Cache.Get(ctx, cfg.Catalog.Sources, force)
	if err != nil {
		_ = c.Close()
		return nil, nil, err
	}
	return c, res, nil
}

func closeComponents(c *app.Components) {
	if err := c.Close(); err != nil {
		logging.Warn().Err(err).Msg("close catalog stack")
	}
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
