// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package app wires the catalog stack (DuckDB, artifact store, build
// manifest, catalog cache) and the recommendation engine from a loaded
// configuration. Both binaries start through it.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/encore/internal/catalogcache"
	"github.com/tomtom215/encore/internal/config"
	"github.com/tomtom215/encore/internal/database"
	"github.com/tomtom215/encore/internal/recommend"
	"github.com/tomtom215/encore/internal/storage"
)

// Components are the opened catalog dependencies. Close releases them.
type Components struct {
	DB       *database.DB
	Store    *storage.Store
	Manifest storage.Manifest
	Cache    *catalogcache.Cache
}

// EngineConfig maps the recommend section onto engine settings.
//
//nolint:gocritic // hugeParam: read once at startup
func EngineConfig(c config.RecommendConfig) recommend.Config {
	return recommend.Config{
		TopN:                c.TopN,
		MaxTopN:             c.MaxTopN,
		MinPopularity:       c.MinPopularity,
		ProfileMethod:       c.ProfileMethod,
		Components:          c.Components,
		DurationToleranceMS: c.DurationToleranceMS,
		FuzzyArtistFallback: c.FuzzyArtistFallback,
		FuzzyMaxDistance:    c.FuzzyMaxDistance,
		ResponseCacheTTL:    c.ResponseCacheTTL,
		ResponseCacheSize:   c.ResponseCacheSize,
	}
}

// Open opens DuckDB, the artifact store and the manifest, then builds the
// catalog cache on top of them. An empty manifest path keeps the build
// history in memory.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Components, error) {
	db, err := database.Open(ctx, database.Config{
		Threads:   cfg.Catalog.DuckDBThreads,
		MaxMemory: cfg.Catalog.DuckDBMaxMemory,
	})
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	c := &Components{DB: db}

	c.Store, err = storage.NewStore(cfg.Catalog.CacheDir)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open artifact store: %w", err), c.Close())
	}

	if cfg.Catalog.ManifestPath != "" {
		m, err := storage.OpenBadgerManifest(cfg.Catalog.ManifestPath)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("open build manifest: %w", err), c.Close())
		}
		c.Manifest = m
	} else {
		c.Manifest = storage.NewInMemoryManifest()
	}

	c.Cache = catalogcache.New(c.Store, db, c.Manifest, logger, catalogcache.Options{
		PruneStale: cfg.Catalog.PruneStale,
	})
	return c, nil
}

// NewEngine creates an engine from the recommend section.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *config.Config, logger zerolog.Logger) (*recommend.Engine, error) {
	return recommend.NewEngine(EngineConfig(cfg.Recommend), logger)
}

// Close releases the manifest and the database.
func (c *Components) Close() error {
	var errs []error
	if c.Manifest != nil {
		if err := c.Manifest.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close manifest: %w", err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close duckdb: %w", err))
		}
	}
	return errors.Join(errs...)
}
