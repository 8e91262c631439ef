// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package catalog

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tomtom215/encore/internal/canon"
)

// OverlapMode names the identity used to compare two sources.
type OverlapMode string

const (
	OverlapByID        OverlapMode = "id"
	OverlapByComposite OverlapMode = "composite"
)

// OverlapReport compares the distinct track identities of two sources.
type OverlapReport struct {
	Left         string      `json:"left"`
	Right        string      `json:"right"`
	Mode         OverlapMode `json:"mode"`
	LeftCount    int         `json:"left_count"`
	RightCount   int         `json:"right_count"`
	Intersection int         `json:"intersection"`
	OnlyLeft     int         `json:"only_left"`
	OnlyRight    int         `json:"only_right"`
	Jaccard      float64     `json:"jaccard"`
}

var overlapIDColumns = map[string]bool{
	"id": true, "track_id": true, "spotify_id": true, "uri": true,
	"track_uri": true, "spotify_uri": true, "url": true, "spotify_url": true,
	"track_url": true,
}

var spotifyID = regexp.MustCompile(`(?i)(?:spotify:track:|https?://open\.spotify\.com/track/)?([A-Za-z0-9]{22})`)

// secondsThreshold separates duration columns in seconds from ones in
// milliseconds by their median value.
const secondsThreshold = 10000

// Overlap measures how many track identities two sources share.
//
// When both sources carry external IDs they are compared by ID (URIs and
// share URLs reduced to the bare ID). Otherwise identities are the
// canonical (title, primary artist, duration in whole seconds) tuple.
func Overlap(left, right RawTable) OverlapReport {
	r := OverlapReport{Left: left.Source, Right: right.Source}

	var a, b map[string]struct{}
	la, lok := idSet(left)
	ra, rok := idSet(right)
	if lok && rok {
		r.Mode = OverlapByID
		a, b = la, ra
	} else {
		r.Mode = OverlapByComposite
		a, b = compositeSet(left), compositeSet(right)
	}

	r.LeftCount, r.RightCount = len(a), len(b)
	for k := range a {
		if _, ok := b[k]; ok {
			r.Intersection++
		}
	}
	r.OnlyLeft = r.LeftCount - r.Intersection
	r.OnlyRight = r.RightCount - r.Intersection
	if union := r.LeftCount + r.RightCount - r.Intersection; union > 0 {
		r.Jaccard = float64(r.Intersection) / float64(union)
	}
	return r
}

func idSet(tbl RawTable) (map[string]struct{}, bool) {
	col := -1
	for i, c := range tbl.Columns {
		if overlapIDColumns[strings.ToLower(strings.TrimSpace(c))] {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, false
	}

	set := make(map[string]struct{})
	for _, row := range tbl.Rows {
		if col >= len(row) || isBlank(row[col]) {
			continue
		}
		if id := extractID(stringOf(row[col])); id != "" {
			set[id] = struct{}{}
		}
	}
	return set, len(set) > 0
}

func extractID(raw string) string {
	s := strings.TrimSpace(raw)
	if m := spotifyID.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return normalizeID(s)
}

func compositeSet(tbl RawTable) map[string]struct{} {
	cols := AutoColumns(tbl.Columns)
	set := make(map[string]struct{})

	title, artists, dur := cols.Index(FieldTitle), cols.Index(FieldArtists), cols.Index(FieldDuration)
	if title < 0 || artists < 0 {
		return set
	}

	inSeconds := dur >= 0 && durationLooksLikeSeconds(tbl.Rows, dur)

	for _, row := range tbl.Rows {
		if title >= len(row) || artists >= len(row) {
			continue
		}
		t := canon.Title(stringOf(row[title]))
		a := canon.PrimaryArtist(asArtists(row[artists]))
		if t == "" || a == "" {
			continue
		}
		key := t + "\x00" + a + "\x00"
		if dur >= 0 && dur < len(row) {
			if d, ok := asFloat(row[dur]); ok {
				if !inSeconds {
					d /= 1000
				}
				key += strconv.FormatInt(int64(math.Round(d)), 10)
			}
		}
		set[key] = struct{}{}
	}
	return set
}

func durationLooksLikeSeconds(rows [][]any, col int) bool {
	vals := make([]float64, 0, len(rows))
	for _, row := range rows {
		if col < len(row) {
			if d, ok := asFloat(row[col]); ok {
				vals = append(vals, d)
			}
		}
	}
	if len(vals) == 0 {
		return false
	}
	sort.Float64s(vals)
	return vals[len(vals)/2] < secondsThreshold
}
