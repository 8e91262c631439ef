// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package features turns catalog tracks into standardized numeric vectors.
//
// Every track maps to Dims values in the order of Names. Tempo, loudness and
// duration are reshaped first (clamped, and log-compressed for tempo and
// duration), missing values are imputed with column medians, and each
// column is standardized with the mean and population standard deviation
// fitted by FitScaler.
package features

import (
	"errors"
	"math"
	"sort"

	"github.com/tomtom215/encore/internal/catalog"
)

// Names lists the feature dimensions in vector order.
var Names = []string{
	"danceability",
	"energy",
	"valence",
	"acousticness",
	"instrumentalness",
	"liveness",
	"speechiness",
	"tempo",
	"loudness",
	"duration_ms",
}

// Dims is the number of feature dimensions.
const Dims = 10

const (
	dimTempo    = 7
	dimLoudness = 8
	dimDuration = 9
)

var (
	// ErrMissingFeature means a dimension has no value in any fitted track.
	ErrMissingFeature = errors.New("missing required feature")

	// ErrUnknownFeature is returned for weight names outside Names.
	ErrUnknownFeature = errors.New("unknown feature")

	// ErrInvalidWeight is returned for negative or non-finite weights.
	ErrInvalidWeight = errors.New("invalid feature weight")
)

// Index returns the vector position of a feature name, or -1.
func Index(name string) int {
	for i, n := range Names {
		if n == name {
			return i
		}
	}
	return -1
}

// value extracts dimension d of t after the per-feature transform.
func value(t *catalog.Track, d int) (float64, bool) {
	var p *float64
	switch d {
	case 0:
		p = t.Danceability
	case 1:
		p = t.Energy
	case 2:
		p = t.Valence
	case 3:
		p = t.Acousticness
	case 4:
		p = t.Instrumentalness
	case 5:
		p = t.Liveness
	case 6:
		p = t.Speechiness
	case dimTempo:
		if t.Tempo == nil {
			return 0, false
		}
		return math.Log1p(clamp(*t.Tempo, 0, 300)), true
	case dimLoudness:
		p = t.Loudness
		if p == nil {
			return 0, false
		}
		return clamp(*p, -60, 0), true
	case dimDuration:
		if t.DurationMS == nil {
			return 0, false
		}
		ms := clamp(float64(*t.DurationMS), 30000, 1200000)
		return math.Log1p(ms / 60000), true
	}
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0, false
	}
	return *p, true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// columns collects the present transformed values of every dimension.
func columns(tracks []*catalog.Track) [Dims][]float64 {
	var cols [Dims][]float64
	for _, t := range tracks {
		for d := 0; d < Dims; d++ {
			if v, ok := value(t, d); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
				cols[d] = append(cols[d], v)
			}
		}
	}
	return cols
}

// Median averages the two middle values for even lengths. NaN for empty input.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

func pointers(tracks []catalog.Track) []*catalog.Track {
	out := make([]*catalog.Track, len(tracks))
	for i := range tracks {
		out[i] = &tracks[i]
	}
	return out
}
