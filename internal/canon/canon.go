// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package canon turns raw track titles and artist credits into normalized
// comparison keys.
//
// Every function in this package is pure. The keys it produces are used by
// the catalog merger for deduplication and by the matcher to resolve
// playlist seeds against the catalog, so the two always agree on what
// "the same track" means.
package canon

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// trailing (...), [...] or {...} group; group 3 is the bracket content
	trailingBracket = regexp.MustCompile(`^(.*?)([\(\[\{]([^\(\)\[\]\{\}]+)[\)\]\}])\s*$`)

	// trailing " - suffix"; group 2 is the suffix text
	trailingDash = regexp.MustCompile(`^(.*?)\s*-\s*(.+)$`)

	versionKeywords = regexp.MustCompile(`(?i)\b(?:clean|explicit|radio edit|remaster|remastered|instrumental|acoustic|live|deluxe|anniversary edition|club mix|extended mix)\b`)

	nonWord    = regexp.MustCompile(`[^\w\s]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// variantTags mark non-original releases. Matching is a plain substring
// test on the lowercased raw title.
var variantTags = []string{
	"live", "remix", "instrumental", "clean", "explicit",
	"karaoke", "cover", "demo", "edit",
}

// FoldASCII decomposes s (NFKD) and drops every rune outside ASCII, which
// strips diacritics ("Beyoncé" -> "Beyonce") and removes scripts that have
// no ASCII decomposition.
func FoldASCII(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Title returns the canonical comparison form of a track title.
//
// Version decorations such as "(Remastered 2011)", "[Live]" or
// " - Radio Edit" are removed, punctuation becomes whitespace and the
// result is lowercased. Title is idempotent.
func Title(title string) string {
	s := strings.ToLower(strings.TrimSpace(FoldASCII(title)))

	for {
		m := trailingBracket.FindStringSubmatch(s)
		if m == nil || !versionKeywords.MatchString(m[3]) {
			break
		}
		s = strings.TrimSpace(m[1])
	}

	if m := trailingDash.FindStringSubmatch(s); m != nil && versionKeywords.MatchString(m[2]) {
		s = strings.TrimSpace(m[1])
	}

	s = nonWord.ReplaceAllString(s, " ")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Artist returns the canonical comparison form of a single artist name.
func Artist(name string) string {
	s := strings.ToLower(FoldASCII(name))
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// PrimaryArtist canonicalizes the first credited artist. An empty list
// yields "".
func PrimaryArtist(artists []string) string {
	if len(artists) == 0 {
		return ""
	}
	return Artist(artists[0])
}

// PrimaryArtistString is PrimaryArtist for a raw artist field that may hold
// a serialized list ("['A', 'B']", `["A","B"]`) or a comma separated
// string.
func PrimaryArtistString(raw string) string {
	return PrimaryArtist(ParseArtists(raw))
}

// IsVariant reports whether the raw title carries a variant tag such as
// "live" or "remix". Variants lose ambiguous matches to canonical releases.
func IsVariant(titleRaw string) bool {
	lower := strings.ToLower(titleRaw)
	for _, tag := range variantTags {
		if strings.Contains(lower, tag) {
			return true
		}
	}
	return false
}
