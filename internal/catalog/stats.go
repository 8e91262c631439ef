// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package catalog

import (
	"gonum.org/v1/gonum/floats"
)

// DescriptorStats summarizes one audio descriptor column.
type DescriptorStats struct {
	Name    string   `json:"name"`
	NonNull int      `json:"non_null"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
}

// Stats is a health summary of a catalog.
type Stats struct {
	Rows         int               `json:"rows"`
	WithoutID    int               `json:"without_external_id"`
	DuplicateIDs int               `json:"duplicate_external_ids"`
	WithoutISRC  int               `json:"without_isrc"`
	WithDuration int               `json:"with_duration"`
	Descriptors  []DescriptorStats `json:"descriptors"`
}

type descriptor struct {
	name string
	get  func(t *Track) *float64
}

var descriptors = []descriptor{
	{"danceability", func(t *Track) *float64 { return t.Danceability }},
	{"energy", func(t *Track) *float64 { return t.Energy }},
	{"valence", func(t *Track) *float64 { return t.Valence }},
	{"acousticness", func(t *Track) *float64 { return t.Acousticness }},
	{"instrumentalness", func(t *Track) *float64 { return t.Instrumentalness }},
	{"liveness", func(t *Track) *float64 { return t.Liveness }},
	{"speechiness", func(t *Track) *float64 { return t.Speechiness }},
	{"tempo", func(t *Track) *float64 { return t.Tempo }},
	{"loudness", func(t *Track) *float64 { return t.Loudness }},
}

// ComputeStats walks the catalog once per descriptor. DuplicateIDs counts
// rows whose external ID already appeared earlier; a merged catalog always
// reports zero.
func ComputeStats(cat *Catalog) Stats {
	s := Stats{Rows: cat.Len()}

	ids := make(map[string]struct{}, cat.Len())
	for i := range cat.Tracks {
		t := &cat.Tracks[i]
		if t.ExternalID == nil {
			s.WithoutID++
		} else if _, dup := ids[*t.ExternalID]; dup {
			s.DuplicateIDs++
		} else {
			ids[*t.ExternalID] = struct{}{}
		}
		if t.ISRC == nil {
			s.WithoutISRC++
		}
		if t.DurationMS != nil {
			s.WithDuration++
		}
	}

	for _, d := range descriptors {
		vals := make([]float64, 0, cat.Len())
		for i := range cat.Tracks {
			if v := d.get(&cat.Tracks[i]); v != nil {
				vals = append(vals, *v)
			}
		}
		ds := DescriptorStats{Name: d.name, NonNull: len(vals)}
		if len(vals) > 0 {
			ds.Min = ptr(floats.Min(vals))
			ds.Max = ptr(floats.Max(vals))
		}
		s.Descriptors = append(s.Descriptors, ds)
	}

	return s
}
