// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package catalog

import (
	"reflect"
	"testing"
)

func TestMergeTracks_Duration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		x, y *int64
		want *int64
	}{
		{"within tolerance keeps larger", i64(260000), i64(260500), i64(260500)},
		{"within tolerance larger first", i64(260500), i64(260000), i64(260500)},
		{"beyond tolerance keeps first", i64(260000), i64(300000), i64(260000)},
		{"first null", nil, i64(1000), i64(1000)},
		{"second null", i64(1000), nil, i64(1000)},
		{"both null", nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := mergeTracks(Track{DurationMS: tt.x}, Track{DurationMS: tt.y})
			if !reflect.DeepEqual(got.DurationMS, tt.want) {
				t.Errorf("DurationMS = %v, want %v", deref(got.DurationMS), deref(tt.want))
			}
		})
	}
}

func deref(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func TestMergeTracks_Fields(t *testing.T) {
	t.Parallel()

	x := Track{
		ExternalID:  nil,
		TitleRaw:    "Song",
		ArtistsRaw:  []string{"A"},
		Album:       strp("Album"),
		Popularity:  i64(10),
		ReleaseYear: nil,
		Explicit:    ptr(false),
		ISRC:        strp("X1"),
		Audio:       Audio{Energy: f64(0.3)},
	}
	y := Track{
		ExternalID:  strp("id-y"),
		TitleRaw:    "Song (Remastered 2011)",
		ArtistsRaw:  []string{"A", "B"},
		Album:       strp("Album (Deluxe)"),
		Popularity:  i64(40),
		ReleaseYear: i64(2011),
		Explicit:    nil,
		ISRC:        strp("Y1"),
		Audio:       Audio{Energy: f64(0.9), Valence: f64(0.5)},
	}

	m := mergeTracks(x, y)

	if m.ExternalID == nil || *m.ExternalID != "id-y" {
		t.Errorf("ExternalID = %v, want id-y", m.ExternalID)
	}
	if *m.ISRC != "X1" {
		t.Errorf("ISRC = %q, want first non-null X1", *m.ISRC)
	}
	if m.TitleRaw != "Song (Remastered 2011)" {
		t.Errorf("TitleRaw = %q, want the longer title", m.TitleRaw)
	}
	if m.TitleCanon != "song" {
		t.Errorf("TitleCanon = %q, want %q", m.TitleCanon, "song")
	}
	if !reflect.DeepEqual(m.ArtistsRaw, []string{"A", "B"}) {
		t.Errorf("ArtistsRaw = %v", m.ArtistsRaw)
	}
	if *m.Album != "Album (Deluxe)" {
		t.Errorf("Album = %q", *m.Album)
	}
	if *m.Popularity != 40 {
		t.Errorf("Popularity = %d, want 40", *m.Popularity)
	}
	if *m.ReleaseYear != 2011 {
		t.Errorf("ReleaseYear = %d, want 2011", *m.ReleaseYear)
	}
	if m.Explicit == nil || *m.Explicit {
		t.Errorf("Explicit = %v, want false", m.Explicit)
	}
	if *m.Energy != 0.3 {
		t.Errorf("Energy = %v, want first value 0.3", *m.Energy)
	}
	if m.Valence == nil || *m.Valence != 0.5 {
		t.Errorf("Valence = %v, want 0.5 from second", m.Valence)
	}
}

func TestMergeTracks_ExplicitOr(t *testing.T) {
	t.Parallel()

	m := mergeTracks(Track{Explicit: ptr(false)}, Track{Explicit: ptr(true)})
	if m.Explicit == nil || !*m.Explicit {
		t.Errorf("Explicit = %v, want true", m.Explicit)
	}
	m = mergeTracks(Track{}, Track{})
	if m.Explicit != nil {
		t.Errorf("Explicit = %v, want nil", *m.Explicit)
	}
}

func TestMergeTracks_TitleTieKeepsFirst(t *testing.T) {
	t.Parallel()

	m := mergeTracks(Track{TitleRaw: "abcd"}, Track{TitleRaw: "wxyz"})
	if m.TitleRaw != "abcd" {
		t.Errorf("TitleRaw = %q, want first on tie", m.TitleRaw)
	}
}

func TestMergeTracks_ArtistTieKeepsFirst(t *testing.T) {
	t.Parallel()

	m := mergeTracks(
		Track{ArtistsRaw: []string{"A", "B"}},
		Track{ArtistsRaw: []string{"A feat. Someone", "B and Friends"}},
	)
	if !reflect.DeepEqual(m.ArtistsRaw, []string{"A", "B"}) {
		t.Errorf("ArtistsRaw = %v, want first list on equal count", m.ArtistsRaw)
	}
}

func table(source string, columns []string, rows ...[]any) RawTable {
	return RawTable{Source: source, Columns: columns, Rows: rows}
}

func TestMerge_Passes(t *testing.T) {
	t.Parallel()

	cols := []string{"id", "name", "artists", "isrc", "duration_ms", "popularity"}

	a := table("a.csv", cols,
		[]any{"spotify:track:1", "Song One", "Alpha", "ISRC1", "200000", "10"},
		[]any{"2", "Song Two", "Beta", nil, "180000", "20"},
		[]any{nil, "Song Three", "Gamma", nil, "240000", "30"},
	)
	b := table("b.csv", cols,
		// same id as a/1
		[]any{"1", "Song One (Remastered)", "Alpha", nil, "200400", "50"},
		// same isrc as a/1, different id
		[]any{"9", "Song One", "Alpha", "ISRC1", "200000", "5"},
		// composite key + bucket of a/3
		[]any{nil, "Song Three", "Gamma", nil, "241000", "35"},
		// same key, different bucket
		[]any{nil, "Song Three", "Gamma", nil, "300000", "1"},
	)

	cat, report := Merge([]RawTable{a, b})

	if report.RowsIn != 7 {
		t.Errorf("RowsIn = %d, want 7", report.RowsIn)
	}
	if report.DroppedByID != 1 {
		t.Errorf("DroppedByID = %d, want 1", report.DroppedByID)
	}
	if report.DroppedByISRC != 1 {
		t.Errorf("DroppedByISRC = %d, want 1", report.DroppedByISRC)
	}
	if report.DroppedByKey != 1 {
		t.Errorf("DroppedByKey = %d, want 1", report.DroppedByKey)
	}
	if cat.Len() != 4 || report.RowsOut != 4 {
		t.Fatalf("catalog has %d rows (report %d), want 4", cat.Len(), report.RowsOut)
	}

	first := cat.Tracks[0]
	if *first.ExternalID != "1" || *first.Popularity != 50 || *first.DurationMS != 200400 {
		t.Errorf("merged first track = id %s pop %d dur %d", *first.ExternalID, *first.Popularity, *first.DurationMS)
	}
	if first.TitleRaw != "Song One (Remastered)" {
		t.Errorf("TitleRaw = %q", first.TitleRaw)
	}

	third := cat.Tracks[2]
	if third.TitleCanon != "song three" || *third.DurationMS != 241000 || *third.Popularity != 35 {
		t.Errorf("composite merge = %+v", third)
	}
	if *cat.Tracks[3].DurationMS != 300000 {
		t.Errorf("different bucket should survive, got %d", *cat.Tracks[3].DurationMS)
	}
}

func TestMerge_NoDuplicateIDs(t *testing.T) {
	t.Parallel()

	cols := []string{"track_id", "title", "artist"}
	var rows [][]any
	for i := 0; i < 50; i++ {
		rows = append(rows, []any{[]string{"a", "b", "c"}[i%3], "T", "X"})
	}
	cat, _ := Merge([]RawTable{table("dups", cols, rows...)})

	seen := map[string]bool{}
	for _, tr := range cat.Tracks {
		if tr.ExternalID == nil {
			continue
		}
		if seen[*tr.ExternalID] {
			t.Fatalf("duplicate external id %q", *tr.ExternalID)
		}
		seen[*tr.ExternalID] = true
	}
	if s := ComputeStats(cat); s.DuplicateIDs != 0 {
		t.Errorf("DuplicateIDs = %d, want 0", s.DuplicateIDs)
	}
}

func TestMerge_ExactDuplicateDrop(t *testing.T) {
	t.Parallel()

	// no id, no isrc, no duration: untouched by every pass but identical
	cols := []string{"name", "artists"}
	cat, report := Merge([]RawTable{table("x", cols,
		[]any{"Same", "Band"},
		[]any{"Same", "Band"},
		[]any{"Other", "Band"},
	)})

	if cat.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cat.Len())
	}
	if report.DroppedExact != 1 {
		t.Errorf("DroppedExact = %d, want 1", report.DroppedExact)
	}
}

func TestMerge_ParseFailuresReported(t *testing.T) {
	t.Parallel()

	_, report := Merge([]RawTable{table("x", []string{"name", "popularity"},
		[]any{"A", "high"},
		[]any{"B", "low"},
	)})
	if report.ParseFailures["popularity"] != 2 {
		t.Errorf("ParseFailures = %v, want popularity:2", report.ParseFailures)
	}
}
