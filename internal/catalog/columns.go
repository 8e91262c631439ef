// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package catalog

import (
	"strings"
)

// Field identifies one canonical track attribute a source column can feed.
type Field int

const (
	FieldID Field = iota
	FieldTitle
	FieldArtists
	FieldAlbum
	FieldISRC
	FieldDuration
	FieldYear
	FieldExplicit
	FieldPopularity
	FieldDanceability
	FieldEnergy
	FieldValence
	FieldAcousticness
	FieldInstrumentalness
	FieldLiveness
	FieldSpeechiness
	FieldTempo
	FieldLoudness
	FieldKey
	FieldMode

	fieldCount
)

var fieldNames = [fieldCount]string{
	"id", "title", "artists", "album", "isrc", "duration", "year", "explicit",
	"popularity", "danceability", "energy", "valence", "acousticness",
	"instrumentalness", "liveness", "speechiness", "tempo", "loudness", "key",
	"mode",
}

// String returns the field's canonical name.
func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "unknown"
	}
	return fieldNames[f]
}

// exact aliases, compared against lowercased, trimmed column names
var aliases = map[Field][]string{
	FieldID:               {"id", "track_id", "spotify_id", "uri"},
	FieldTitle:            {"name", "track_name", "title"},
	FieldArtists:          {"artists", "artist", "artist_name"},
	FieldAlbum:            {"album", "album_name"},
	FieldISRC:             {"isrc"},
	FieldDanceability:     {"danceability"},
	FieldEnergy:           {"energy"},
	FieldValence:          {"valence"},
	FieldAcousticness:     {"acousticness"},
	FieldInstrumentalness: {"instrumentalness"},
	FieldLiveness:         {"liveness"},
	FieldSpeechiness:      {"speechiness"},
	FieldTempo:            {"tempo"},
	FieldLoudness:         {"loudness"},
	FieldKey:              {"key"},
	FieldMode:             {"mode"},
}

// substring matches, first column wins
var substrings = map[Field]string{
	FieldDuration:   "duration",
	FieldYear:       "year",
	FieldExplicit:   "explicit",
	FieldPopularity: "popularity",
}

// ColumnMap maps canonical fields to source column positions. A missing
// field has index -1.
type ColumnMap struct {
	index [fieldCount]int

	// DurationSeconds is set when the duration column holds seconds
	// rather than milliseconds.
	DurationSeconds bool
}

// Index returns the source column feeding f, or -1.
func (m ColumnMap) Index(f Field) int {
	return m.index[f]
}

// Has reports whether any source column feeds f.
func (m ColumnMap) Has(f Field) bool {
	return m.index[f] >= 0
}

// AutoColumns detects which source column feeds each canonical field.
//
// Matching is case-insensitive. Identity and audio fields use exact
// aliases tried in preference order (an "id" column beats "track_id");
// duration, year, explicit and
// popularity match the first column whose name contains the keyword. A
// release date column serves as the year source when no column mentions
// "year". A duration column is read as seconds when it is exactly
// "duration", ends in "_s" or mentions "sec".
func AutoColumns(columns []string) ColumnMap {
	var m ColumnMap
	for i := range m.index {
		m.index[i] = -1
	}

	lower := make([]string, len(columns))
	for i, c := range columns {
		lower[i] = strings.ToLower(strings.TrimSpace(c))
	}

	for field, names := range aliases {
		m.index[field] = firstAlias(lower, names)
	}

	for field, sub := range substrings {
		for i, col := range lower {
			if strings.Contains(col, sub) {
				m.index[field] = i
				break
			}
		}
	}

	if !m.Has(FieldYear) {
		for i, col := range lower {
			if col == "release_date" || col == "date" || strings.Contains(col, "release_date") {
				m.index[FieldYear] = i
				break
			}
		}
	}

	if i := m.index[FieldDuration]; i >= 0 {
		col := lower[i]
		m.DurationSeconds = col == "duration" || strings.HasSuffix(col, "_s") || strings.Contains(col, "sec")
	}

	return m
}

// firstAlias returns the column of the earliest alias present in columns,
// or -1.
func firstAlias(columns, names []string) int {
	for _, alias := range names {
		for i, col := range columns {
			if col == alias {
				return i
			}
		}
	}
	return -1
}
