// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

/*
Package models defines the HTTP envelope and the status payloads of the
Encore API.

Domain types (tracks, seeds, recommendation lists) live with the code that
produces them in internal/catalog and internal/recommend; this package only
holds the types that exist for the wire:

  - APIResponse: the envelope every endpoint returns
  - APIError: error code, message and optional details
  - HealthStatus: readiness probe payload
  - CatalogStatus: active catalog snapshot and latest build
  - RebuildResult: outcome of a forced catalog rebuild
*/
package models
