// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package recommend

import (
	"errors"

	"github.com/tomtom215/encore/internal/catalog"
)

var (
	// ErrEmptySeedSet means no seed could be matched to the catalog.
	ErrEmptySeedSet = errors.New("no seed track matched the catalog")

	// ErrCatalogNotReady is returned before the first catalog is installed.
	ErrCatalogNotReady = errors.New("catalog not loaded")

	// ErrInvalidRequest marks request parameters that are individually
	// valid but inconsistent together.
	ErrInvalidRequest = errors.New("invalid recommendation request")
)

// Seed is a playlist track to resolve against the catalog.
type Seed = catalog.Seed

// YearRange is an inclusive release year range, encoded as [from, to].
type YearRange [2]int

// Request asks for tracks similar to Seeds. Zero or nil fields take the
// engine defaults.
type Request struct {
	Seeds         []Seed             `json:"seeds" validate:"required,min=1,max=1000,dive"`
	TopN          int                `json:"top_n,omitempty" validate:"omitempty,min=1"`
	MinPopularity *int               `json:"min_popularity,omitempty" validate:"omitempty,min=0,max=100"`
	MaxPopularity *int               `json:"max_popularity,omitempty" validate:"omitempty,min=0,max=100"`
	YearRange     *YearRange         `json:"year_range,omitempty"`
	Weights       map[string]float64 `json:"weights,omitempty" validate:"omitempty,dive,keys,feature_name,endkeys,gte=0"`
	UseReduction  bool               `json:"use_reduction,omitempty"`
	Components    int                `json:"components,omitempty" validate:"omitempty,min=1,max=10"`
	ProfileMethod string             `json:"profile_method,omitempty" validate:"omitempty,oneof=mean median clustered"`
}

// ScoredTrack is a recommended catalog track.
type ScoredTrack struct {
	Position int `json:"position"`
	catalog.Track
	Similarity float32 `json:"similarity"`
}

// SeedMatch reports how one seed was resolved.
type SeedMatch struct {
	Seed     Seed              `json:"seed"`
	Path     catalog.MatchPath `json:"match"`
	Position *int              `json:"position,omitempty"`
	Track    *catalog.Track    `json:"track,omitempty"`
}

// Matched reports whether the seed resolved to a catalog track.
func (m SeedMatch) Matched() bool {
	return m.Position != nil
}

// Response is a ranked recommendation list with request metadata.
type Response struct {
	Tracks        []ScoredTrack `json:"tracks"`
	Seeds         []SeedMatch   `json:"seeds"`
	Matched       int           `json:"matched_seeds"`
	Candidates    int           `json:"candidates"`
	Fingerprint   string        `json:"fingerprint"`
	ProfileMethod ProfileMethod `json:"profile_method"`
	Components    int           `json:"components,omitempty"`
	Cached        bool          `json:"cached"`
	LatencyMS     int64         `json:"latency_ms"`
}
