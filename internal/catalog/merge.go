// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package catalog

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tomtom215/encore/internal/canon"
)

// mergeToleranceMS is the largest duration gap for which two merged records
// are treated as the same master and the longer duration is kept.
const mergeToleranceMS = 2000

// durationBucketMS is the width of the duration bucket used by the
// composite-key dedupe pass.
const durationBucketMS = 3000

// SourceReport describes one input table.
type SourceReport struct {
	Source  string   `json:"source"`
	Rows    int      `json:"rows"`
	Columns []string `json:"mapped_fields"`
}

// MergeReport summarizes a merge run.
type MergeReport struct {
	Sources       []SourceReport `json:"sources"`
	RowsIn        int            `json:"rows_in"`
	DroppedByID   int            `json:"dropped_by_id"`
	DroppedByISRC int            `json:"dropped_by_isrc"`
	DroppedByKey  int            `json:"dropped_by_key"`
	DroppedExact  int            `json:"dropped_exact"`
	RowsOut       int            `json:"rows_out"`
	ParseFailures map[string]int `json:"parse_failures,omitempty"`
}

// Merge normalizes every row of every table and deduplicates the result.
//
// Rows are deduplicated in three passes: by external ID, by ISRC, then by
// (canonical title, canonical primary artist, duration bucket). Rows
// without the pass key are left untouched by that pass. A final pass drops
// exact duplicates of (external ID, ISRC, canonical title, canonical
// artist, duration). Surviving records keep the position of the first row
// of their identity, so tables earlier in the slice take precedence.
func Merge(tables []RawTable) (*Catalog, MergeReport) {
	report := MergeReport{ParseFailures: make(map[string]int)}

	var tracks []Track
	for _, tbl := range tables {
		cols := AutoColumns(tbl.Columns)
		src := SourceReport{Source: tbl.Source, Rows: len(tbl.Rows)}
		for f := Field(0); f < fieldCount; f++ {
			if cols.Has(f) {
				src.Columns = append(src.Columns, f.String())
			}
		}
		report.Sources = append(report.Sources, src)

		for _, row := range tbl.Rows {
			t, failed := NormalizeRow(row, cols)
			for _, f := range failed {
				report.ParseFailures[f.String()]++
			}
			tracks = append(tracks, t)
		}
	}
	report.RowsIn = len(tracks)

	tracks, report.DroppedByID = dedupe(tracks, idKey)
	tracks, report.DroppedByISRC = dedupe(tracks, isrcKey)
	tracks, report.DroppedByKey = dedupe(tracks, compositeKey)
	tracks, report.DroppedExact = dropExact(tracks)
	report.RowsOut = len(tracks)

	if len(report.ParseFailures) == 0 {
		report.ParseFailures = nil
	}

	return &Catalog{Tracks: tracks}, report
}

type keyFunc func(t *Track) (string, bool)

func idKey(t *Track) (string, bool) {
	if t.ExternalID == nil {
		return "", false
	}
	return *t.ExternalID, true
}

func isrcKey(t *Track) (string, bool) {
	if t.ISRC == nil {
		return "", false
	}
	return *t.ISRC, true
}

func compositeKey(t *Track) (string, bool) {
	if t.TitleCanon == "" || t.ArtistPrimaryCanon == "" || t.DurationMS == nil {
		return "", false
	}
	bucket := int64(math.RoundToEven(float64(*t.DurationMS) / durationBucketMS))
	return t.TitleCanon + "\x00" + t.ArtistPrimaryCanon + "\x00" + strconv.FormatInt(bucket, 10), true
}

// dedupe folds every keyed track into the first track sharing its key and
// returns the surviving tracks in first-seen order with the number dropped.
func dedupe(tracks []Track, key keyFunc) ([]Track, int) {
	out := make([]Track, 0, len(tracks))
	seen := make(map[string]int, len(tracks))
	dropped := 0

	for i := range tracks {
		k, ok := key(&tracks[i])
		if !ok {
			out = append(out, tracks[i])
			continue
		}
		if at, dup := seen[k]; dup {
			out[at] = mergeTracks(out[at], tracks[i])
			dropped++
			continue
		}
		seen[k] = len(out)
		out = append(out, tracks[i])
	}
	return out, dropped
}

func dropExact(tracks []Track) ([]Track, int) {
	out := make([]Track, 0, len(tracks))
	seen := make(map[string]struct{}, len(tracks))

	for i := range tracks {
		t := &tracks[i]
		var b strings.Builder
		writeOpt(&b, t.ExternalID)
		writeOpt(&b, t.ISRC)
		b.WriteString(t.TitleCanon)
		b.WriteByte(0)
		b.WriteString(t.ArtistPrimaryCanon)
		b.WriteByte(0)
		if t.DurationMS != nil {
			b.WriteString(strconv.FormatInt(*t.DurationMS, 10))
		} else {
			b.WriteByte(1)
		}
		k := b.String()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, *t)
	}
	return out, len(tracks) - len(out)
}

// writeOpt writes s, or a null marker when s is nil, followed by a
// separator.
func writeOpt(b *strings.Builder, s *string) {
	if s == nil {
		b.WriteByte(1)
	} else {
		b.WriteString(*s)
	}
	b.WriteByte(0)
}

// mergeTracks combines two records of the same identity. x is the record
// seen first.
func mergeTracks(x, y Track) Track {
	m := x

	m.ExternalID = firstString(x.ExternalID, y.ExternalID)
	m.ISRC = firstString(x.ISRC, y.ISRC)

	if utf8.RuneCountInString(y.TitleRaw) > utf8.RuneCountInString(x.TitleRaw) {
		m.TitleRaw = y.TitleRaw
	}
	if longerArtists(y.ArtistsRaw, x.ArtistsRaw) {
		m.ArtistsRaw = y.ArtistsRaw
	}
	m.Album = longerString(x.Album, y.Album)

	m.Popularity = maxInt(x.Popularity, y.Popularity)
	m.ReleaseYear = maxInt(x.ReleaseYear, y.ReleaseYear)

	switch {
	case x.Explicit == nil && y.Explicit == nil:
		m.Explicit = nil
	default:
		m.Explicit = ptr((x.Explicit != nil && *x.Explicit) || (y.Explicit != nil && *y.Explicit))
	}

	switch {
	case x.DurationMS == nil:
		m.DurationMS = y.DurationMS
	case y.DurationMS == nil:
		m.DurationMS = x.DurationMS
	case abs64(*x.DurationMS-*y.DurationMS) <= mergeToleranceMS:
		m.DurationMS = maxInt(x.DurationMS, y.DurationMS)
	default:
		m.DurationMS = x.DurationMS
	}

	m.Danceability = firstFloat(x.Danceability, y.Danceability)
	m.Energy = firstFloat(x.Energy, y.Energy)
	m.Valence = firstFloat(x.Valence, y.Valence)
	m.Acousticness = firstFloat(x.Acousticness, y.Acousticness)
	m.Instrumentalness = firstFloat(x.Instrumentalness, y.Instrumentalness)
	m.Liveness = firstFloat(x.Liveness, y.Liveness)
	m.Speechiness = firstFloat(x.Speechiness, y.Speechiness)
	m.Tempo = firstFloat(x.Tempo, y.Tempo)
	m.Loudness = firstFloat(x.Loudness, y.Loudness)
	m.Key = firstInt(x.Key, y.Key)
	m.Mode = firstInt(x.Mode, y.Mode)

	m.TitleCanon = canon.Title(m.TitleRaw)
	m.ArtistPrimaryCanon = canon.PrimaryArtist(m.ArtistsRaw)
	return m
}

// longerArtists reports whether a credits more names than b. Equal counts
// keep the first list.
func longerArtists(a, b []string) bool {
	return len(a) > len(b)
}

func longerString(x, y *string) *string {
	switch {
	case x == nil:
		return y
	case y == nil:
		return x
	case utf8.RuneCountInString(*y) > utf8.RuneCountInString(*x):
		return y
	}
	return x
}

func firstString(x, y *string) *string {
	if x != nil {
		return x
	}
	return y
}

func firstFloat(x, y *float64) *float64 {
	if x != nil {
		return x
	}
	return y
}

func firstInt(x, y *int64) *int64 {
	if x != nil {
		return x
	}
	return y
}

func maxInt(x, y *int64) *int64 {
	switch {
	case x == nil:
		return y
	case y == nil:
		return x
	case *y > *x:
		return y
	}
	return x
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
