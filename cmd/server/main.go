// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/encore/internal/api"
	"github.com/tomtom215/encore/internal/app"
	"github.com/tomtom215/encore/internal/config"
	"github.com/tomtom215/encore/internal/logging"
	"github.com/tomtom215/encore/internal/metrics"
	"github.com/tomtom215/encore/internal/supervisor"
	"github.com/tomtom215/encore/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Strs("sources", cfg.Catalog.Sources).
		Str("cache_dir", cfg.Catalog.CacheDir).
		Bool("persistent_manifest", cfg.Catalog.ManifestPath != "").
		Msg("Starting Encore")
	metrics.SetAppInfo(version)

	if len(cfg.Catalog.Sources) == 0 {
		logging.Warn().Msg("No catalog sources configured (CATALOG_SOURCES); recommendations will return 503")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (RATE_LIMIT_DISABLED=true)")
	}
	for _, o := range cfg.Security.CORSOrigins {
		if o == "*" {
			logging.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*); set explicit origins in production")
			break
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := app.Open(ctx, cfg, logging.WithComponent("catalogcache"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open catalog stack")
	}
	defer func() {
		if err := components.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing catalog stack")
		}
	}()

	engine, err := app.NewEngine(cfg, logging.WithComponent("engine"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	catalogSvc := services.NewCatalogService(components.Cache, engine, services.CatalogServiceConfig{
		Sources:         cfg.Catalog.Sources,
		WarmOnStartup:   cfg.Catalog.WarmOnStartup,
		RefreshInterval: cfg.Catalog.RefreshInterval,
	}, logging.Logger())

	handler := api.NewHandler(api.HandlerConfig{
		Engine:         engine,
		Catalog:        catalogSvc,
		RequestTimeout: cfg.Recommend.RequestTimeout,
		Version:        version,
	})
	router := api.NewRouter(handler, api.ChiMiddlewareConfigFrom(cfg.Security))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddDataService(catalogSvc)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logging.Logger()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	// the channel carries exactly one value and is never closed
	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Encore stopped")
}
