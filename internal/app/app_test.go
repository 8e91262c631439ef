// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/encore/internal/config"
	"github.com/tomtom215/encore/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Catalog.CacheDir = filepath.Join(t.TempDir(), "cache")
	cfg.Catalog.DuckDBThreads = 1
	cfg.Recommend = config.RecommendConfig{
		TopN:                10,
		MaxTopN:             100,
		MinPopularity:       20,
		ProfileMethod:       "median",
		DurationToleranceMS: 2000,
		Components:          10,
		FuzzyMaxDistance:    2,
		ResponseCacheSize:   16,
	}
	return cfg
}

func TestEngineConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	ec := EngineConfig(cfg.Recommend)
	if err := ec.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if ec.TopN != 10 || ec.MaxTopN != 100 || ec.ProfileMethod != "median" || ec.DurationToleranceMS != 2000 {
		t.Errorf("EngineConfig() = %+v", ec)
	}

	e, err := NewEngine(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if e.Ready() {
		t.Error("new engine reports ready")
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("in-memory manifest", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)
		c, err := Open(context.Background(), cfg, zerolog.Nop())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if _, ok := c.Manifest.(*storage.InMemoryManifest); !ok {
			t.Errorf("manifest = %T, want *storage.InMemoryManifest", c.Manifest)
		}
		if _, err := os.Stat(cfg.Catalog.CacheDir); err != nil {
			t.Errorf("cache dir not created: %v", err)
		}
		if c.Cache.Manifest() != c.Manifest {
			t.Error("cache does not record into the opened manifest")
		}
		if err := c.Close(); err != nil {
			t.Errorf("Close() = %v", err)
		}
	})

	t.Run("badger manifest", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)
		cfg.Catalog.ManifestPath = filepath.Join(t.TempDir(), "manifest")
		c, err := Open(context.Background(), cfg, zerolog.Nop())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if _, ok := c.Manifest.(*storage.BadgerManifest); !ok {
			t.Errorf("manifest = %T, want *storage.BadgerManifest", c.Manifest)
		}
		if err := c.Close(); err != nil {
			t.Errorf("Close() = %v", err)
		}
	})

	t.Run("unusable cache dir", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
		cfg.Catalog.CacheDir = filepath.Join(file, "cache")
		if _, err := Open(context.Background(), cfg, zerolog.Nop()); err == nil {
			t.Error("Open() succeeded with a cache dir below a regular file")
		}
	})
}
