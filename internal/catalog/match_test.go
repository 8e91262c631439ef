// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package catalog

import (
	"reflect"
	"testing"

	"github.com/tomtom215/encore/internal/canon"
)

func track(id, title, artist string, dur, pop, year *int64) Track {
	t := Track{
		TitleRaw:    title,
		ArtistsRaw:  []string{artist},
		DurationMS:  dur,
		Popularity:  pop,
		ReleaseYear: year,
	}
	if id != "" {
		t.ExternalID = strp(id)
	}
	t.TitleCanon = canon.Title(title)
	t.ArtistPrimaryCanon = canon.PrimaryArtist(t.ArtistsRaw)
	return t
}

func TestBuildIndex(t *testing.T) {
	t.Parallel()

	cat := &Catalog{Tracks: []Track{
		track("a", "Song", "Band", nil, nil, nil),
		track("", "Song (Live)", "Band", nil, nil, nil),
		track("c", "", "Band", nil, nil, nil),
		track("d", "Other", "", nil, nil, nil),
	}}
	idx := BuildIndex(cat)

	if idx.Rows != 4 {
		t.Errorf("Rows = %d, want 4", idx.Rows)
	}
	if len(idx.ByID) != 3 || idx.ByID["c"] != 2 {
		t.Errorf("ByID = %v", idx.ByID)
	}
	if got := idx.ByKey[CompositeKey{"song", "band"}]; !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("ByKey[song/band] = %v, want [0 1]", got)
	}
	if len(idx.ByKey) != 1 {
		t.Errorf("len(ByKey) = %d, want 1", len(idx.ByKey))
	}
	if got := idx.ByArtist["band"]; !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("ByArtist[band] = %v", got)
	}
	if err := idx.Validate(4); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := idx.Validate(5); err == nil {
		t.Error("Validate() with wrong row count should fail")
	}
}

func TestIndexSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	cat := &Catalog{Tracks: []Track{
		track("a", "Song", "Band", nil, nil, nil),
		track("b", "Song", "Band", nil, nil, nil),
		track("", "Tune", "Group", nil, nil, nil),
	}}
	idx := BuildIndex(cat)

	snap := idx.Snapshot()
	if !reflect.DeepEqual(snap, idx.Snapshot()) {
		t.Error("Snapshot() is not deterministic")
	}
	back, err := IndexFromSnapshot(snap)
	if err != nil {
		t.Fatalf("IndexFromSnapshot() error = %v", err)
	}
	if !reflect.DeepEqual(back, idx) {
		t.Errorf("IndexFromSnapshot() = %+v, want %+v", back, idx)
	}
}

func TestMatch_ByID(t *testing.T) {
	t.Parallel()

	cat := &Catalog{Tracks: []Track{
		track("x1", "Alpha", "One", nil, nil, nil),
		track("x2", "Beta", "Two", nil, nil, nil),
	}}
	idx := BuildIndex(cat)

	res, ok := NewMatcher().Match(Seed{ID: strp("spotify:track:x2"), Title: "Unrelated"}, idx, cat)
	if !ok || res.Position != 1 || res.Path != MatchByID {
		t.Errorf("Match() = %+v, %v; want position 1 by id", res, ok)
	}
}

func TestMatch_ByKey(t *testing.T) {
	t.Parallel()

	cat := &Catalog{Tracks: []Track{
		track("", "Song", "Band", i64(200000), nil, nil),
	}}
	idx := BuildIndex(cat)

	res, ok := NewMatcher().Match(Seed{ID: strp("missing"), Title: "Song - Remastered", Artists: []string{"BAND", "Guest"}}, idx, cat)
	if !ok || res.Position != 0 || res.Path != MatchByKey {
		t.Errorf("Match() = %+v, %v; want position 0 by key", res, ok)
	}

	if _, ok := NewMatcher().Match(Seed{Title: "Nope", Artists: []string{"Band"}}, idx, cat); ok {
		t.Error("Match() found a track for an unknown title")
	}
	if _, ok := NewMatcher().Match(Seed{Title: "Song"}, idx, cat); ok {
		t.Error("Match() without artists should not match")
	}
}

func TestMatch_DurationFilter(t *testing.T) {
	t.Parallel()

	cat := &Catalog{Tracks: []Track{
		track("", "Song", "Band", i64(300000), i64(90), nil),
		track("", "Song", "Band", i64(200500), i64(10), nil),
		track("", "Song", "Band", nil, i64(5), nil),
	}}
	idx := BuildIndex(cat)
	m := NewMatcher()

	// 300000 is out of tolerance; the null-duration row is never filtered
	res, ok := m.Match(Seed{Title: "Song", Artists: []string{"Band"}, DurationMS: i64(200000)}, idx, cat)
	if !ok || res.Position != 1 {
		t.Errorf("Match() = %+v, want position 1", res)
	}

	// all durations out of range still leaves the null-duration row
	res, ok = m.Match(Seed{Title: "Song", Artists: []string{"Band"}, DurationMS: i64(10000)}, idx, cat)
	if !ok || res.Position != 2 {
		t.Errorf("Match() = %+v, want position 2", res)
	}

	// without a seed duration the most popular wins
	res, _ = m.Match(Seed{Title: "Song", Artists: []string{"Band"}}, idx, cat)
	if res.Position != 0 {
		t.Errorf("Match() = %+v, want position 0", res)
	}
}

func TestMatch_SingleCandidateIgnoresDuration(t *testing.T) {
	t.Parallel()

	cat := &Catalog{Tracks: []Track{track("", "Song", "Band", i64(900000), nil, nil)}}
	idx := BuildIndex(cat)

	if _, ok := NewMatcher().Match(Seed{Title: "Song", Artists: []string{"Band"}, DurationMS: i64(100000)}, idx, cat); !ok {
		t.Error("single candidate should not be filtered by duration")
	}
}

func TestMatch_TieBreakPrefersOriginal(t *testing.T) {
	t.Parallel()

	orig := track("", "Song", "Band", nil, i64(50), i64(2000))
	remix := track("", "Song", "Band", nil, i64(50), i64(2000))
	remix.TitleRaw = "Song (Remix)"
	// canonical titles differ only by the bracket, so force the same key
	remix.TitleCanon = orig.TitleCanon

	for _, order := range [][]Track{{orig, remix}, {remix, orig}} {
		cat := &Catalog{Tracks: order}
		res, ok := NewMatcher().Match(Seed{Title: "Song", Artists: []string{"Band"}}, BuildIndex(cat), cat)
		if !ok {
			t.Fatal("Match() found nothing")
		}
		if got := cat.Tracks[res.Position].TitleRaw; got != "Song" {
			t.Errorf("Match() picked %q, want the non-remix", got)
		}
	}
}

func TestMatch_TieBreakPopularityThenYear(t *testing.T) {
	t.Parallel()

	cat := &Catalog{Tracks: []Track{
		track("", "Song", "Band", nil, nil, i64(2020)),
		track("", "Song", "Band", nil, i64(30), i64(1990)),
		track("", "Song", "Band", nil, i64(30), i64(2005)),
	}}
	res, _ := NewMatcher().Match(Seed{Title: "Song", Artists: []string{"Band"}}, BuildIndex(cat), cat)
	if res.Position != 2 {
		t.Errorf("Match() = %d, want 2 (popular, then recent)", res.Position)
	}
}

func TestMatch_FuzzyFallback(t *testing.T) {
	t.Parallel()

	cat := &Catalog{Tracks: []Track{
		track("", "Bohemian Rhapsody", "Queen", nil, nil, nil),
		track("", "Bohemian Rhapsodies", "Queen", nil, nil, nil),
	}}
	idx := BuildIndex(cat)
	seed := Seed{Title: "Bohemian Rapsody", Artists: []string{"Queen"}}

	if _, ok := NewMatcher().Match(seed, idx, cat); ok {
		t.Fatal("default matcher must not fuzzy match")
	}

	m := NewMatcher()
	m.FuzzyFallback = true
	m.FuzzyMaxDistance = 2
	res, ok := m.Match(seed, idx, cat)
	if !ok || res.Path != MatchByFuzzy || res.Position != 0 {
		t.Errorf("Match() = %+v, %v; want position 0 by fuzzy", res, ok)
	}
}
