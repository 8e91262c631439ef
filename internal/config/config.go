// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for all settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Catalog   CatalogConfig   `koanf:"catalog"`
	Recommend RecommendConfig `koanf:"recommend"`
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// CatalogConfig controls where track datasets come from and how the
// merged catalog is cached.
//
// Environment Variables:
//   - CATALOG_SOURCES: Comma-separated source files (CSV, TSV, Parquet, JSON)
//   - CATALOG_CACHE_DIR: Directory for merged artifacts (default: .dataset_cache)
//   - CATALOG_MANIFEST_PATH: Badger directory for the build history (default: in-memory)
//   - CATALOG_REFRESH_INTERVAL: How often source files are re-fingerprinted (default: 5m)
//   - CATALOG_WARM_ON_STARTUP: Build or load the catalog before serving (default: true)
//   - CATALOG_PRUNE_STALE: Remove artifacts of other fingerprints after a build (default: false)
//   - DUCKDB_THREADS: DuckDB worker threads, 0 = NumCPU (default: 0)
//   - DUCKDB_MAX_MEMORY: DuckDB memory limit such as "2GB" (default: DuckDB's own)
type CatalogConfig struct {
	Sources         []string      `koanf:"sources"`
	CacheDir        string        `koanf:"cache_dir"`
	ManifestPath    string        `koanf:"manifest_path"`
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	WarmOnStartup   bool          `koanf:"warm_on_startup"`
	PruneStale      bool          `koanf:"prune_stale"`
	DuckDBThreads   int           `koanf:"duckdb_threads"`
	DuckDBMaxMemory string        `koanf:"duckdb_max_memory"`
}

// RecommendConfig holds recommendation defaults. Every field except
// RequestTimeout and the cache settings can be overridden per request.
type RecommendConfig struct {
	TopN                int           `koanf:"top_n"`
	MaxTopN             int           `koanf:"max_top_n"`
	MinPopularity       int           `koanf:"min_popularity"`
	ProfileMethod       string        `koanf:"profile_method"` // mean or median
	DurationToleranceMS int64         `koanf:"duration_tolerance_ms"`
	Components          int           `koanf:"components"`
	FuzzyArtistFallback bool          `koanf:"fuzzy_artist_fallback"`
	FuzzyMaxDistance    int           `koanf:"fuzzy_max_distance"`
	ResponseCacheTTL    time.Duration `koanf:"response_cache_ttl"` // 0 disables response memoization
	ResponseCacheSize   int           `koanf:"response_cache_size"`
	RequestTimeout      time.Duration `koanf:"request_timeout"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// SecurityConfig holds the HTTP edge protections.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// JSON is recommended for production (structured, machine-parseable).
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Load reads configuration from defaults, an optional config file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
