// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package catalog

import (
	"fmt"
	"sort"
)

// CompositeKey is the canonical (title, primary artist) join key.
type CompositeKey struct {
	Title  string
	Artist string
}

// MatchIndex holds lookup facets over a catalog's positions. It is derived
// data: BuildIndex reconstructs it from the catalog at any time.
type MatchIndex struct {
	// ByID maps a normalized external ID to its position.
	ByID map[string]int

	// ByKey maps a composite key to positions in insertion order.
	ByKey map[CompositeKey][]int

	// ByArtist maps a canonical primary artist to positions in insertion
	// order.
	ByArtist map[string][]int

	// Rows is the catalog length the index was built for.
	Rows int
}

// BuildIndex indexes cat in a single pass.
func BuildIndex(cat *Catalog) *MatchIndex {
	idx := &MatchIndex{
		ByID:     make(map[string]int, cat.Len()),
		ByKey:    make(map[CompositeKey][]int, cat.Len()),
		ByArtist: make(map[string][]int),
		Rows:     cat.Len(),
	}

	for i := range cat.Tracks {
		t := &cat.Tracks[i]
		if t.ExternalID != nil {
			idx.ByID[*t.ExternalID] = i
		}
		if t.TitleCanon != "" && t.ArtistPrimaryCanon != "" {
			k := CompositeKey{Title: t.TitleCanon, Artist: t.ArtistPrimaryCanon}
			idx.ByKey[k] = append(idx.ByKey[k], i)
		}
		if t.ArtistPrimaryCanon != "" {
			idx.ByArtist[t.ArtistPrimaryCanon] = append(idx.ByArtist[t.ArtistPrimaryCanon], i)
		}
	}
	return idx
}

// Validate checks that the index fits a catalog of n rows.
func (idx *MatchIndex) Validate(n int) error {
	if idx.Rows != n {
		return fmt.Errorf("index built for %d rows, catalog has %d", idx.Rows, n)
	}
	for id, pos := range idx.ByID {
		if pos < 0 || pos >= n {
			return fmt.Errorf("index position %d for id %q out of range", pos, id)
		}
	}
	return nil
}

// IndexEntry is one flattened facet bucket.
type IndexEntry struct {
	Key       string
	Secondary string
	Positions []int
}

// IndexSnapshot is a MatchIndex flattened into sorted slices, which gives a
// byte-stable encoding regardless of map iteration order.
type IndexSnapshot struct {
	Rows     int
	ByID     []IndexEntry
	ByKey    []IndexEntry
	ByArtist []IndexEntry
}

// Snapshot flattens the index.
func (idx *MatchIndex) Snapshot() IndexSnapshot {
	s := IndexSnapshot{
		Rows:     idx.Rows,
		ByID:     make([]IndexEntry, 0, len(idx.ByID)),
		ByKey:    make([]IndexEntry, 0, len(idx.ByKey)),
		ByArtist: make([]IndexEntry, 0, len(idx.ByArtist)),
	}
	for id, pos := range idx.ByID {
		s.ByID = append(s.ByID, IndexEntry{Key: id, Positions: []int{pos}})
	}
	for k, pos := range idx.ByKey {
		s.ByKey = append(s.ByKey, IndexEntry{Key: k.Title, Secondary: k.Artist, Positions: pos})
	}
	for a, pos := range idx.ByArtist {
		s.ByArtist = append(s.ByArtist, IndexEntry{Key: a, Positions: pos})
	}

	for _, entries := range [][]IndexEntry{s.ByID, s.ByKey, s.ByArtist} {
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Key != entries[j].Key {
				return entries[i].Key < entries[j].Key
			}
			return entries[i].Secondary < entries[j].Secondary
		})
	}
	return s
}

// IndexFromSnapshot rebuilds a MatchIndex from its flattened form.
func IndexFromSnapshot(s IndexSnapshot) (*MatchIndex, error) {
	idx := &MatchIndex{
		ByID:     make(map[string]int, len(s.ByID)),
		ByKey:    make(map[CompositeKey][]int, len(s.ByKey)),
		ByArtist: make(map[string][]int, len(s.ByArtist)),
		Rows:     s.Rows,
	}
	for _, e := range s.ByID {
		if len(e.Positions) != 1 {
			return nil, fmt.Errorf("id entry %q has %d positions", e.Key, len(e.Positions))
		}
		idx.ByID[e.Key] = e.Positions[0]
	}
	for _, e := range s.ByKey {
		idx.ByKey[CompositeKey{Title: e.Key, Artist: e.Secondary}] = e.Positions
	}
	for _, e := range s.ByArtist {
		idx.ByArtist[e.Key] = e.Positions
	}
	return idx, nil
}
