// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package recommend

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/encore/internal/catalog"
	"github.com/tomtom215/encore/internal/features"
)

// Config holds engine defaults and limits.
type Config struct {
	// TopN is the list length when a request does not set one.
	TopN int `json:"top_n"`

	// MaxTopN caps any requested list length.
	MaxTopN int `json:"max_top_n"`

	// MinPopularity applies when a request does not set min_popularity.
	MinPopularity int `json:"min_popularity"`

	// ProfileMethod is mean or median.
	ProfileMethod string `json:"profile_method"`

	// Components is the reduced dimension when a request enables reduction
	// without choosing one.
	Components int `json:"components"`

	DurationToleranceMS int64 `json:"duration_tolerance_ms"`
	FuzzyArtistFallback bool  `json:"fuzzy_artist_fallback"`
	FuzzyMaxDistance    int   `json:"fuzzy_max_distance"`

	// ResponseCacheTTL of zero disables response memoization.
	ResponseCacheTTL  time.Duration `json:"response_cache_ttl"`
	ResponseCacheSize int           `json:"response_cache_size"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		TopN:                10,
		MaxTopN:             100,
		MinPopularity:       20,
		ProfileMethod:       string(MethodMedian),
		Components:          features.MaxComponents,
		DurationToleranceMS: catalog.DefaultDurationToleranceMS,
		FuzzyMaxDistance:    2,
		ResponseCacheTTL:    5 * time.Minute,
		ResponseCacheSize:   512,
	}
}

// Validate checks the configuration.
//
//nolint:gocritic // value receiver keeps Config immutable
func (c Config) Validate() error {
	var errs []error
	if c.TopN < 1 {
		errs = append(errs, fmt.Errorf("top_n must be positive, got %d", c.TopN))
	}
	if c.MaxTopN < c.TopN {
		errs = append(errs, fmt.Errorf("max_top_n (%d) must be at least top_n (%d)", c.MaxTopN, c.TopN))
	}
	if c.MinPopularity < 0 || c.MinPopularity > 100 {
		errs = append(errs, fmt.Errorf("min_popularity must be within [0, 100], got %d", c.MinPopularity))
	}
	if _, err := ParseProfileMethod(c.ProfileMethod); err != nil {
		errs = append(errs, fmt.Errorf("profile_method: %w", err))
	}
	if c.Components < 1 || c.Components > features.MaxComponents {
		errs = append(errs, fmt.Errorf("components must be within [1, %d], got %d", features.MaxComponents, c.Components))
	}
	if c.DurationToleranceMS < 0 {
		errs = append(errs, fmt.Errorf("duration_tolerance_ms must not be negative"))
	}
	if c.FuzzyArtistFallback && c.FuzzyMaxDistance < 1 {
		errs = append(errs, fmt.Errorf("fuzzy_max_distance must be positive when the fuzzy fallback is enabled"))
	}
	if c.ResponseCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("response_cache_ttl must not be negative"))
	}
	return errors.Join(errs...)
}

//nolint:gocritic // value receiver keeps Config immutable
func (c Config) matcher() catalog.Matcher {
	return catalog.Matcher{
		ToleranceMS:      c.DurationToleranceMS,
		FuzzyFallback:    c.FuzzyArtistFallback,
		FuzzyMaxDistance: c.FuzzyMaxDistance,
	}
}
