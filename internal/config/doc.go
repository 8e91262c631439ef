// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

/*
Package config provides centralized configuration management for Encore.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. The file is taken from CONFIG_PATH
or the first of config.yaml, config.yml, /etc/encore/config.yaml and
/etc/encore/config.yml that exists.

# Sections

  - catalog: source files, artifact cache directory, build manifest,
    refresh interval and DuckDB tuning
  - recommend: per-request defaults (top_n, min_popularity,
    profile_method, components) and response caching
  - server: HTTP listen address and timeout
  - security: CORS origins and rate limiting
  - logging: zerolog level, format and caller reporting

# Example YAML

	catalog:
	  sources:
	    - /data/tracks_a.csv
	    - /data/tracks_b.parquet
	  cache_dir: /var/cache/encore
	  manifest_path: /var/lib/encore/manifest
	recommend:
	  min_popularity: 10
	  profile_method: mean
	server:
	  port: 8090

# Environment Variables

Only the variables listed in envMappings are read; everything else in the
environment is ignored. Slice settings (CATALOG_SOURCES, CORS_ORIGINS) are
comma-separated.

# Thread Safety

Config is immutable after Load and safe for concurrent reads.
*/
package config
