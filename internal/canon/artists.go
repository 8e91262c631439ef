// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package canon

import (
	"errors"
	"strings"

	"github.com/goccy/go-json"
)

var errNotList = errors.New("not a list literal")

// ParseArtists splits a raw artist field into an ordered list of names.
//
// Datasets export artist credits in several shapes: a JSON array, a
// single-quoted list literal as written by Python tooling ("['A', 'B']"),
// or a plain comma separated string. Values that start with "[" but fail
// both list parsers fall back to comma splitting. Blank names are dropped
// and a blank field yields nil.
func ParseArtists(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	if strings.HasPrefix(s, "[") {
		var names []string
		if err := json.Unmarshal([]byte(s), &names); err == nil {
			return compact(names)
		}
		if names, err := parseListLiteral(s); err == nil {
			return compact(names)
		}
	}

	return compact(strings.Split(s, ","))
}

func compact(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parseListLiteral reads a bracketed list of single- or double-quoted
// strings with backslash escapes.
func parseListLiteral(s string) ([]string, error) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, errNotList
	}
	body := s[1 : len(s)-1]

	var (
		out       []string
		i         int
		expectSep bool
	)
	for i < len(body) {
		c := body[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == ',':
			if !expectSep {
				return nil, errNotList
			}
			expectSep = false
			i++
		case c == '\'' || c == '"':
			if expectSep {
				return nil, errNotList
			}
			val, next, err := readQuoted(body, i)
			if err != nil {
				return nil, err
			}
			out = append(out, val)
			i = next
			expectSep = true
		default:
			return nil, errNotList
		}
	}
	return out, nil
}

// readQuoted returns the unescaped string starting at body[start] (a quote)
// and the index just past its closing quote.
func readQuoted(body string, start int) (string, int, error) {
	quote := body[start]
	var b strings.Builder
	for i := start + 1; i < len(body); i++ {
		c := body[i]
		switch c {
		case '\\':
			if i+1 >= len(body) {
				return "", 0, errNotList
			}
			i++
			switch body[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(body[i])
			}
		case quote:
			return b.String(), i + 1, nil
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, errNotList
}
