// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package catalog

import (
	"sort"

	"github.com/agnivade/levenshtein"

	"github.com/tomtom215/encore/internal/canon"
)

// DefaultDurationToleranceMS is the default duration window for
// disambiguating seeds that share a composite key.
const DefaultDurationToleranceMS = 2000

// Seed describes an external track to resolve against the catalog, as
// supplied by a playlist fetcher.
type Seed struct {
	ID         *string  `json:"id,omitempty"`
	Title      string   `json:"title"`
	Artists    []string `json:"artists"`
	DurationMS *int64   `json:"duration_ms,omitempty"`
}

// MatchPath records how a seed was resolved.
type MatchPath string

const (
	MatchByID    MatchPath = "id"
	MatchByKey   MatchPath = "key"
	MatchByFuzzy MatchPath = "fuzzy"
	MatchNone    MatchPath = "none"
)

// MatchResult is the outcome of resolving one seed.
type MatchResult struct {
	Position int
	Path     MatchPath
}

// Matcher resolves seeds against a catalog and its index.
type Matcher struct {
	// ToleranceMS bounds the duration gap between a seed and a candidate
	// when a composite key matches several tracks.
	ToleranceMS int64

	// FuzzyFallback enables a title edit-distance search within the
	// seed's artist when the composite key has no candidates.
	FuzzyFallback    bool
	FuzzyMaxDistance int
}

// NewMatcher returns a Matcher with the default tolerance and no fuzzy
// fallback.
func NewMatcher() Matcher {
	return Matcher{ToleranceMS: DefaultDurationToleranceMS}
}

// Match resolves seed to a catalog position.
//
// An external ID present in the index wins outright. Otherwise candidates
// sharing the seed's canonical (title, primary artist) key are narrowed by
// duration when the seed reports one and more than one candidate exists;
// candidates without a duration always survive that filter. Remaining ties
// go to the candidate that is not a variant, then the most popular, then
// the most recent.
func (m Matcher) Match(seed Seed, idx *MatchIndex, cat *Catalog) (MatchResult, bool) {
	if seed.ID != nil {
		if pos, ok := idx.ByID[NormalizeID(*seed.ID)]; ok {
			return MatchResult{Position: pos, Path: MatchByID}, true
		}
	}

	title := canon.Title(seed.Title)
	artist := canon.PrimaryArtist(seed.Artists)
	if title == "" || artist == "" {
		return MatchResult{Position: -1, Path: MatchNone}, false
	}

	bucket := idx.ByKey[CompositeKey{Title: title, Artist: artist}]
	cands := m.filterDuration(append([]int(nil), bucket...), seed, cat)
	if len(cands) > 0 {
		sortByPreference(cands, cat)
		return MatchResult{Position: cands[0], Path: MatchByKey}, true
	}

	if m.FuzzyFallback {
		if pos, ok := m.fuzzy(title, artist, seed, idx, cat); ok {
			return MatchResult{Position: pos, Path: MatchByFuzzy}, true
		}
	}

	return MatchResult{Position: -1, Path: MatchNone}, false
}

func (m Matcher) filterDuration(cands []int, seed Seed, cat *Catalog) []int {
	if seed.DurationMS == nil || *seed.DurationMS <= 0 || len(cands) < 2 {
		return cands
	}
	want := *seed.DurationMS
	kept := cands[:0]
	for _, pos := range cands {
		d := cat.Tracks[pos].DurationMS
		if d == nil || abs64(*d-want) <= m.ToleranceMS {
			kept = append(kept, pos)
		}
	}
	return kept
}

func (m Matcher) fuzzy(title, artist string, seed Seed, idx *MatchIndex, cat *Catalog) (int, bool) {
	dist := make(map[int]int)
	var cands []int
	for _, pos := range idx.ByArtist[artist] {
		d := levenshtein.ComputeDistance(title, cat.Tracks[pos].TitleCanon)
		if d <= m.FuzzyMaxDistance {
			dist[pos] = d
			cands = append(cands, pos)
		}
	}
	cands = m.filterDuration(cands, seed, cat)
	if len(cands) == 0 {
		return -1, false
	}

	sortByPreference(cands, cat)
	sort.SliceStable(cands, func(i, j int) bool {
		return dist[cands[i]] < dist[cands[j]]
	})
	return cands[0], true
}

// preference is the composite tie-break key: lower sorts first.
type preference struct {
	variant    int
	popularity int64
	year       int64
}

func preferenceOf(t *Track) preference {
	p := preference{}
	if canon.IsVariant(t.TitleRaw) {
		p.variant = 1
	}
	if t.Popularity != nil {
		p.popularity = -*t.Popularity
	}
	if t.ReleaseYear != nil {
		p.year = -*t.ReleaseYear
	}
	return p
}

func (p preference) less(o preference) bool {
	if p.variant != o.variant {
		return p.variant < o.variant
	}
	if p.popularity != o.popularity {
		return p.popularity < o.popularity
	}
	return p.year < o.year
}

// sortByPreference orders positions by tie-break preference, keeping
// bucket order among equal keys.
func sortByPreference(positions []int, cat *Catalog) {
	if len(positions) < 2 {
		return
	}
	keys := make(map[int]preference, len(positions))
	for _, pos := range positions {
		keys[pos] = preferenceOf(&cat.Tracks[pos])
	}
	sort.SliceStable(positions, func(i, j int) bool {
		return keys[positions[i]].less(keys[positions[j]])
	})
}
