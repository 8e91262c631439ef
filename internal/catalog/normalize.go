// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/encore/internal/canon"
)

// NormalizeRow maps one source row onto the canonical Track schema.
//
// A value that is present but cannot be parsed nulls only its own field;
// the row is always produced. The fields that failed to parse are returned
// so callers can report them.
func NormalizeRow(row []any, m ColumnMap) (Track, []Field) {
	var (
		t      Track
		failed []Field
	)

	get := func(f Field) any {
		i := m.Index(f)
		if i < 0 || i >= len(row) {
			return nil
		}
		return row[i]
	}
	fail := func(f Field) {
		failed = append(failed, f)
	}

	if v := get(FieldID); !isBlank(v) {
		if id := normalizeID(stringOf(v)); id != "" {
			t.ExternalID = &id
		} else {
			fail(FieldID)
		}
	}

	if s, ok := asString(get(FieldTitle)); ok {
		t.TitleRaw = s
	}
	t.ArtistsRaw = asArtists(get(FieldArtists))

	if s, ok := asString(get(FieldAlbum)); ok {
		t.Album = &s
	}
	if s, ok := asString(get(FieldISRC)); ok {
		isrc := strings.ToUpper(s)
		t.ISRC = &isrc
	}

	if v := get(FieldDuration); !isBlank(v) {
		if d, ok := asFloat(v); ok && d >= 0 {
			if m.DurationSeconds {
				d *= 1000
			}
			t.DurationMS = ptr(int64(math.Round(d)))
		} else {
			fail(FieldDuration)
		}
	}

	if v := get(FieldYear); !isBlank(v) {
		if y, ok := asYear(v); ok {
			t.ReleaseYear = &y
		} else {
			fail(FieldYear)
		}
	}

	if v := get(FieldExplicit); !isBlank(v) {
		if b, ok := asBool(v); ok {
			t.Explicit = &b
		} else {
			fail(FieldExplicit)
		}
	}

	if v := get(FieldPopularity); !isBlank(v) {
		if p, ok := asInt(v); ok {
			t.Popularity = &p
		} else {
			fail(FieldPopularity)
		}
	}

	bounded := []struct {
		field Field
		dst   **float64
	}{
		{FieldDanceability, &t.Danceability},
		{FieldEnergy, &t.Energy},
		{FieldValence, &t.Valence},
		{FieldAcousticness, &t.Acousticness},
		{FieldInstrumentalness, &t.Instrumentalness},
		{FieldLiveness, &t.Liveness},
		{FieldSpeechiness, &t.Speechiness},
	}
	for _, b := range bounded {
		v := get(b.field)
		if isBlank(v) {
			continue
		}
		f, ok := asFloat(v)
		if !ok {
			fail(b.field)
			continue
		}
		*b.dst = ptr(math.Min(1, math.Max(0, f)))
	}

	if v := get(FieldTempo); !isBlank(v) {
		if f, ok := asFloat(v); ok && f > 0 {
			t.Tempo = &f
		} else {
			fail(FieldTempo)
		}
	}

	if v := get(FieldLoudness); !isBlank(v) {
		if f, ok := asFloat(v); ok {
			t.Loudness = &f
		} else {
			fail(FieldLoudness)
		}
	}

	for _, k := range []struct {
		field Field
		dst   **int64
	}{{FieldKey, &t.Key}, {FieldMode, &t.Mode}} {
		v := get(k.field)
		if isBlank(v) {
			continue
		}
		if n, ok := asInt(v); ok {
			*k.dst = &n
		} else {
			fail(k.field)
		}
	}

	t.TitleCanon = canon.Title(t.TitleRaw)
	t.ArtistPrimaryCanon = canon.PrimaryArtist(t.ArtistsRaw)

	return t, failed
}

// NormalizeID strips URI and URL prefixes from an external track ID:
// "spotify:track:abc" and "https://open.spotify.com/track/abc?si=x" both
// become "abc".
func NormalizeID(raw string) string {
	return normalizeID(raw)
}

func normalizeID(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []byte:
		return strings.TrimSpace(string(x)) == ""
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// stringOf renders any scalar as text.
func stringOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		return x.Format(time.DateOnly)
	default:
		return fmt.Sprint(x)
	}
}

func asString(v any) (string, bool) {
	if isBlank(v) {
		return "", false
	}
	return strings.TrimSpace(stringOf(v)), true
}

func asArtists(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case []string:
		return canon.ParseArtists(strings.Join(x, ","))
	case []any:
		names := make([]string, 0, len(x))
		for _, e := range x {
			if s, ok := asString(e); ok {
				names = append(names, s)
			}
		}
		if len(names) == 0 {
			return nil
		}
		return names
	default:
		return canon.ParseArtists(stringOf(v))
	}
}

func asFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case bool:
		if x {
			f = 1
		}
	case string, []byte:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(stringOf(x)), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	}
	f, ok := asFloat(v)
	if !ok || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(math.Round(f)), true
}

func asBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string, []byte:
		switch strings.ToLower(strings.TrimSpace(stringOf(x))) {
		case "true", "t", "yes", "y", "1", "1.0":
			return true, true
		case "false", "f", "no", "n", "0", "0.0":
			return false, true
		}
		return false, false
	}
	if f, ok := asFloat(v); ok {
		return f != 0, true
	}
	return false, false
}

// asYear reads a release year from the first four characters of a year or
// date value.
func asYear(v any) (int64, bool) {
	if t, ok := v.(time.Time); ok {
		return int64(t.Year()), true
	}
	s := strings.TrimSpace(stringOf(v))
	if len(s) > 4 {
		s = s[:4]
	}
	y, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return y, true
}
