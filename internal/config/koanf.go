// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/encore/config.yaml",
	"/etc/encore/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Sources:         []string{},
			CacheDir:        ".dataset_cache",
			ManifestPath:    "", // in-memory build history
			RefreshInterval: 5 * time.Minute,
			WarmOnStartup:   true,
			PruneStale:      false,
			DuckDBThreads:   0, // 0 = use runtime.NumCPU()
			DuckDBMaxMemory: "",
		},
		Recommend: RecommendConfig{
			TopN:                10,
			MaxTopN:             100,
			MinPopularity:       20,
			ProfileMethod:       "median",
			DurationToleranceMS: 2000,
			Components:          10,
			FuzzyArtistFallback: false,
			FuzzyMaxDistance:    2,
			ResponseCacheTTL:    5 * time.Minute,
			ResponseCacheSize:   512,
			RequestTimeout:      30 * time.Second,
		},
		Server: ServerConfig{
			Port:    8090,
			Host:    "0.0.0.0",
			Timeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// CATALOG_SOURCES -> catalog.sources
	// HTTP_PORT -> server.port
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"catalog.sources",
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Catalog
	"catalog_sources":          "catalog.sources",
	"catalog_cache_dir":        "catalog.cache_dir",
	"catalog_manifest_path":    "catalog.manifest_path",
	"catalog_refresh_interval": "catalog.refresh_interval",
	"catalog_warm_on_startup":  "catalog.warm_on_startup",
	"catalog_prune_stale":      "catalog.prune_stale",
	"duckdb_threads":           "catalog.duckdb_threads",
	"duckdb_max_memory":        "catalog.duckdb_max_memory",

	// Recommendation defaults
	"recommend_top_n":                 "recommend.top_n",
	"recommend_max_top_n":             "recommend.max_top_n",
	"recommend_min_popularity":        "recommend.min_popularity",
	"recommend_profile_method":        "recommend.profile_method",
	"recommend_duration_tolerance_ms": "recommend.duration_tolerance_ms",
	"recommend_components":            "recommend.components",
	"recommend_fuzzy_artist_fallback": "recommend.fuzzy_artist_fallback",
	"recommend_fuzzy_max_distance":    "recommend.fuzzy_max_distance",
	"recommend_response_cache_ttl":    "recommend.response_cache_ttl",
	"recommend_response_cache_size":   "recommend.response_cache_size",
	"recommend_request_timeout":       "recommend.request_timeout",

	// Server
	"http_port":      "server.port",
	"http_host":      "server.host",
	"server_timeout": "server.timeout",

	// Security
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"rate_limit_disabled": "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped so unrelated environment
// never leaks into the config.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
