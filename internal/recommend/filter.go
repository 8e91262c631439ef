// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package recommend

import (
	"github.com/tomtom215/encore/internal/catalog"
)

// FilterOptions restricts the candidate pool.
type FilterOptions struct {
	// ExcludeIDs holds normalized external IDs to drop.
	ExcludeIDs map[string]struct{}

	// ExcludePositions holds catalog positions to drop.
	ExcludePositions map[int]struct{}

	// MinPopularity treats a missing popularity as 0.
	MinPopularity *int

	// MaxPopularity treats a missing popularity as 100.
	MaxPopularity *int

	// YearRange drops tracks without a release year when set.
	YearRange *YearRange
}

// FilterCandidates returns the catalog positions passing opts, in catalog
// order. The catalog is not modified; an empty result is valid.
func FilterCandidates(cat *catalog.Catalog, opts FilterOptions) []int {
	out := make([]int, 0, cat.Len())
	for i := range cat.Tracks {
		if _, skip := opts.ExcludePositions[i]; skip {
			continue
		}
		t := &cat.Tracks[i]
		if t.ExternalID != nil {
			if _, skip := opts.ExcludeIDs[*t.ExternalID]; skip {
				continue
			}
		}
		if opts.MinPopularity != nil && popularityOr(t, 0) < int64(*opts.MinPopularity) {
			continue
		}
		if opts.MaxPopularity != nil && popularityOr(t, 100) > int64(*opts.MaxPopularity) {
			continue
		}
		if r := opts.YearRange; r != nil {
			if t.ReleaseYear == nil || *t.ReleaseYear < int64(r[0]) || *t.ReleaseYear > int64(r[1]) {
				continue
			}
		}
		out = append(out, i)
	}
	return out
}

func popularityOr(t *catalog.Track, def int64) int64 {
	if t.Popularity == nil {
		return def
	}
	return *t.Popularity
}
