// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/encore/internal/catalog"
	"github.com/tomtom215/encore/internal/catalogcache"
	"github.com/tomtom215/encore/internal/storage"
)

// CatalogLoader builds or loads catalogs. *catalogcache.Cache implements it.
type CatalogLoader interface {
	Fingerprint(paths []string) (string, error)
	Get(ctx context.Context, paths []string, forceRebuild bool) (*catalogcache.Result, error)
	Manifest() storage.Manifest
}

// CatalogInstaller receives ready catalogs. *recommend.Engine implements it.
type CatalogInstaller interface {
	SetCatalog(cat *catalog.Catalog, idx *catalog.MatchIndex) error
}

// CatalogServiceConfig holds configuration for the catalog service.
type CatalogServiceConfig struct {
	Sources []string

	// WarmOnStartup loads or builds the catalog as soon as the service starts.
	WarmOnStartup bool

	// RefreshInterval is how often source fingerprints are checked. Zero
	// disables polling; rebuilds then happen only on request.
	RefreshInterval time.Duration
}

// CatalogService keeps the engine's catalog in step with the source files.
// It also serves forced rebuilds for the HTTP API.
type CatalogService struct {
	loader    CatalogLoader
	installer CatalogInstaller
	config    CatalogServiceConfig
	logger    zerolog.Logger
	name      string

	// mu serializes load-and-install so a poll cannot install an older
	// result over a concurrent forced rebuild.
	mu        sync.Mutex
	installed string
}

// NewCatalogService creates a catalog service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCatalogService(loader CatalogLoader, installer CatalogInstaller, cfg CatalogServiceConfig, logger zerolog.Logger) *CatalogService {
	cfg.Sources = slices.Clone(cfg.Sources)
	return &CatalogService{
		loader:    loader,
		installer: installer,
		config:    cfg,
		logger:    logger.With().Str("service", "catalog").Logger(),
		name:      "catalog-service",
	}
}

// Serve implements suture.Service. Load failures are logged and retried on
// the next tick instead of restarting the service.
func (s *CatalogService) Serve(ctx context.Context) error {
	s.logger.Info().
		Int("sources", len(s.config.Sources)).
		Bool("warm_on_startup", s.config.WarmOnStartup).
		Dur("refresh_interval", s.config.RefreshInterval).
		Msg("catalog service starting")

	if len(s.config.Sources) == 0 {
		s.logger.Warn().Msg("no catalog sources configured, recommendations stay unavailable")
		<-ctx.Done()
		return ctx.Err()
	}

	if s.config.WarmOnStartup {
		if _, err := s.refresh(ctx, false); err != nil {
			s.logger.Error().Err(err).Msg("initial catalog load failed (will retry on schedule)")
		}
	}

	if s.config.RefreshInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("catalog service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

// poll reloads the catalog when the source fingerprint moved away from the
// installed one.
func (s *CatalogService) poll(ctx context.Context) {
	fp, err := s.loader.Fingerprint(s.config.Sources)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cannot fingerprint catalog sources")
		return
	}
	if fp == s.Fingerprint() {
		s.logger.Debug().Str("fingerprint", fp).Msg("catalog sources unchanged")
		return
	}
	s.logger.Info().Str("fingerprint", fp).Str("installed", s.Fingerprint()).Msg("catalog sources changed")
	if _, err := s.refresh(ctx, false); err != nil {
		s.logger.Error().Err(err).Msg("catalog refresh failed, keeping the installed catalog")
	}
}

// Rebuild forces a rebuild from the sources and installs it.
func (s *CatalogService) Rebuild(ctx context.Context) (*catalogcache.Result, error) {
	return s.refresh(ctx, true)
}

func (s *CatalogService) refresh(ctx context.Context, force bool) (*catalogcache.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	res, err := s.loader.Get(ctx, s.config.Sources, force)
	if err != nil {
		return nil, err
	}
	if !force && res.Fingerprint == s.installed {
		return res, nil
	}
	if err := s.installer.SetCatalog(res.Catalog, res.Index); err != nil {
		return nil, fmt.Errorf("install catalog %s: %w", res.Fingerprint, err)
	}
	s.installed = res.Fingerprint

	s.logger.Info().
		Str("fingerprint", res.Fingerprint).
		Int("rows", res.Catalog.Len()).
		Bool("cache_hit", res.Hit).
		Bool("forced", force).
		Dur("duration", time.Since(start)).
		Msg("catalog ready")
	return res, nil
}

// Fingerprint returns the fingerprint of the installed catalog, or "".
func (s *CatalogService) Fingerprint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.installed
}

// Sources returns the configured source paths.
func (s *CatalogService) Sources() []string {
	return slices.Clone(s.config.Sources)
}

// Manifest returns the build manifest.
func (s *CatalogService) Manifest() storage.Manifest {
	return s.loader.Manifest()
}

// String returns the service name for logging.
func (s *CatalogService) String() string {
	return s.name
}
