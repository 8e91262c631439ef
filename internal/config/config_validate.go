// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks that the configuration is usable. All problems are
// reported together.
func (c *Config) Validate() error {
	return errors.Join(
		c.validateCatalog(),
		c.validateRecommend(),
		c.validateServer(),
		c.validateRateLimits(),
		c.validateLogging(),
	)
}

func (c *Config) validateCatalog() error {
	if c.Catalog.CacheDir == "" {
		return fmt.Errorf("CATALOG_CACHE_DIR must not be empty")
	}
	if c.Catalog.RefreshInterval < 0 {
		return fmt.Errorf("CATALOG_REFRESH_INTERVAL must not be negative")
	}
	if c.Catalog.DuckDBThreads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}

const maxComponents = 10

func (c *Config) validateRecommend() error {
	r := c.Recommend
	var errs []error
	if r.TopN < 1 || r.MaxTopN < r.TopN {
		errs = append(errs, fmt.Errorf("RECOMMEND_TOP_N must be positive and at most RECOMMEND_MAX_TOP_N (%d)", r.MaxTopN))
	}
	if r.MinPopularity < 0 || r.MinPopularity > 100 {
		errs = append(errs, fmt.Errorf("RECOMMEND_MIN_POPULARITY must be between 0 and 100"))
	}
	if r.ProfileMethod != "mean" && r.ProfileMethod != "median" {
		errs = append(errs, fmt.Errorf("RECOMMEND_PROFILE_METHOD must be one of: mean, median"))
	}
	if r.DurationToleranceMS < 0 {
		errs = append(errs, fmt.Errorf("RECOMMEND_DURATION_TOLERANCE_MS must not be negative"))
	}
	if r.Components < 1 || r.Components > maxComponents {
		errs = append(errs, fmt.Errorf("RECOMMEND_COMPONENTS must be between 1 and %d", maxComponents))
	}
	if r.FuzzyArtistFallback && r.FuzzyMaxDistance < 1 {
		errs = append(errs, fmt.Errorf("RECOMMEND_FUZZY_MAX_DISTANCE must be positive when the fuzzy fallback is enabled"))
	}
	if r.ResponseCacheTTL < 0 || r.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("RECOMMEND_RESPONSE_CACHE_TTL and RECOMMEND_REQUEST_TIMEOUT must not be negative"))
	}
	return errors.Join(errs...)
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
