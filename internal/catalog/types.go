// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package catalog unifies heterogeneous track datasets into one
// deduplicated catalog and resolves playlist seeds against it.
//
// The flow is: source tables (RawTable) are mapped column by column onto
// the fixed Track schema (AutoColumns, NormalizeRow), merged with three
// dedupe passes (Merge) and indexed for lookup (BuildIndex). A Matcher
// then resolves external seed descriptors to catalog positions.
//
// A Catalog and its MatchIndex are never mutated after construction and
// are safe for concurrent readers.
package catalog

// Audio holds the per-track audio descriptors. Bounded descriptors are in
// [0, 1]; Tempo is positive BPM; Loudness is dBFS and is not range-checked
// here.
type Audio struct {
	Danceability     *float64 `json:"danceability"`
	Energy           *float64 `json:"energy"`
	Valence          *float64 `json:"valence"`
	Acousticness     *float64 `json:"acousticness"`
	Instrumentalness *float64 `json:"instrumentalness"`
	Liveness         *float64 `json:"liveness"`
	Speechiness      *float64 `json:"speechiness"`
	Tempo            *float64 `json:"tempo"`
	Loudness         *float64 `json:"loudness"`
	Key              *int64   `json:"key"`
	Mode             *int64   `json:"mode"`
}

// Track is one canonical catalog record.
//
// TitleCanon and ArtistPrimaryCanon are always canon.Title(TitleRaw) and
// canon.PrimaryArtist(ArtistsRaw).
type Track struct {
	ExternalID         *string  `json:"external_id"`
	TitleRaw           string   `json:"title_raw"`
	TitleCanon         string   `json:"title_canon"`
	ArtistsRaw         []string `json:"artists_raw"`
	ArtistPrimaryCanon string   `json:"artist_primary_canon"`
	DurationMS         *int64   `json:"duration_ms"`
	Explicit           *bool    `json:"explicit"`
	Popularity         *int64   `json:"popularity"`
	ReleaseYear        *int64   `json:"release_year"`
	ISRC               *string  `json:"isrc"`
	Album              *string  `json:"album"`
	Audio
}

// Catalog is the ordered, deduplicated track collection built from a set
// of source files identified by Fingerprint.
type Catalog struct {
	Fingerprint string
	Tracks      []Track
}

// Len returns the number of tracks.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Tracks)
}

// At returns a pointer to the track at position i. The track must not be
// modified.
func (c *Catalog) At(i int) *Track {
	return &c.Tracks[i]
}

// RawTable is one loaded source dataset: column names in source order and
// rows of loosely typed values (string, integer, float, bool, []any,
// time.Time or nil).
type RawTable struct {
	Source  string
	Columns []string
	Rows    [][]any
}

func ptr[T any](v T) *T {
	return &v
}
