// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package models

import (
	"time"

	"github.com/tomtom215/encore/internal/catalog"
	"github.com/tomtom215/encore/internal/storage"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "EMPTY_SEED_SET",
//	    "message": "No seed track matched the catalog"
//	  },
//	  "metadata": {"timestamp": "2026-10-17T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Error codes:
//   - VALIDATION_ERROR: request body failed validation
//   - INVALID_JSON: request body is not valid JSON
//   - EMPTY_SEED_SET: no seed matched the catalog
//   - UNSUPPORTED_METHOD: the profile method is recognized but not implemented
//   - CATALOG_NOT_READY: no catalog has been loaded yet
//   - CATALOG_BUILD_FAILED: a rebuild could not complete
//   - INTERNAL_ERROR: anything else
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the readiness probe payload.
type HealthStatus struct {
	Status      string  `json:"status"` // ready or not_ready
	Version     string  `json:"version"`
	Fingerprint string  `json:"fingerprint,omitempty"`
	Tracks      int     `json:"tracks"`
	Uptime      float64 `json:"uptime_seconds"`
}

// CatalogStatus describes the active catalog snapshot.
type CatalogStatus struct {
	Ready       bool                 `json:"ready"`
	Fingerprint string               `json:"fingerprint,omitempty"`
	Tracks      int                  `json:"tracks"`
	LoadedAt    *time.Time           `json:"loaded_at,omitempty"`
	Sources     []string             `json:"sources"`
	LatestBuild *storage.BuildRecord `json:"latest_build,omitempty"`
	CacheStats  ResponseCacheStats   `json:"response_cache"`
}

// ResponseCacheStats reports recommendation memoization effectiveness.
type ResponseCacheStats struct {
	Entries int     `json:"entries"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// RebuildResult is returned by a forced catalog rebuild.
type RebuildResult struct {
	Fingerprint string               `json:"fingerprint"`
	Tracks      int                  `json:"tracks"`
	DurationMS  int64                `json:"duration_ms"`
	Report      *catalog.MergeReport `json:"report,omitempty"`
}
