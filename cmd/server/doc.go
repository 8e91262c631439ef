// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

/*
Package main is the entry point for the Encore recommendation server.

Encore merges track datasets (CSV, TSV, Parquet, JSON) into one cached
catalog and ranks catalog tracks by audio-feature similarity to a seed
playlist.

# Application Architecture

	RootSupervisor ("encore")
	├── DataSupervisor ("data-layer")
	│   └── CatalogService (warm on startup, poll source fingerprints)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi)

Component initialization order:

 1. Configuration: koanf v2 with defaults, config.yaml and environment variables
 2. Logging: zerolog, with an slog adapter for the supervisor
 3. Catalog stack: DuckDB, artifact store, build manifest (badger or in-memory)
 4. Recommendation engine, empty until the catalog service installs a snapshot
 5. HTTP handler and chi router
 6. Supervisor tree

SIGINT and SIGTERM cancel the root context; the tree stops its services
within the shutdown timeout and the catalog stack is closed afterwards.
*/
package main
