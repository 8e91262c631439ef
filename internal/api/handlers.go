// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package api

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/encore/internal/cache"
	"github.com/tomtom215/encore/internal/catalog"
	"github.com/tomtom215/encore/internal/catalogcache"
	"github.com/tomtom215/encore/internal/recommend"
	"github.com/tomtom215/encore/internal/storage"
)

// Recommender serves rankings and seed matches. *recommend.Engine
// implements it.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	MatchSeeds(ctx context.Context, seeds []recommend.Seed) ([]recommend.SeedMatch, error)
	Snapshot() *recommend.Snapshot
	CacheStats() cache.Stats
}

// CatalogController owns the catalog lifecycle. The supervisor's
// CatalogService implements it.
type CatalogController interface {
	// Rebuild forces a rebuild from the configured sources and installs
	// the result.
	Rebuild(ctx context.Context) (*catalogcache.Result, error)
	Sources() []string
	Manifest() storage.Manifest
}

// HandlerConfig holds handler dependencies and limits.
type HandlerConfig struct {
	Engine  Recommender
	Catalog CatalogController // optional

	// RequestTimeout bounds recommendation and match requests; zero
	// leaves them bounded only by the client.
	RequestTimeout time.Duration

	// MaxBodyBytes caps request bodies; zero uses defaultMaxBodyBytes.
	MaxBodyBytes int64

	Version string
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: response writing, body decoding, validation
//   - handlers_health.go: liveness and readiness probes
//   - handlers_recommend.go: recommendations and seed matching
//   - handlers_catalog.go: catalog status, statistics and rebuild
type Handler struct {
	engine         Recommender
	catalog        CatalogController
	requestTimeout time.Duration
	maxBodyBytes   int64
	version        string
	startTime      time.Time

	// stats are memoized per fingerprint
	statsMu sync.Mutex
	statsFP string
	stats   *catalog.Stats
}

const defaultMaxBodyBytes = 1 << 20

// NewHandler creates a new API handler.
//
//nolint:gocritic // hugeParam: config is read once at construction
func NewHandler(cfg HandlerConfig) *Handler {
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		engine:         cfg.Engine,
		catalog:        cfg.Catalog,
		requestTimeout: cfg.RequestTimeout,
		maxBodyBytes:   maxBody,
		version:        version,
		startTime:      time.Now(),
	}
}

// withTimeout applies the configured request timeout.
func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.requestTimeout)
}
