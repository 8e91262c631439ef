// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package recommend

import (
	"fmt"
	"sort"
)

// Ranked is a scored catalog position.
type Ranked struct {
	Position int
	Score    float32
}

// TopN returns the n best positions by score, ties broken by the lower
// catalog position.
func TopN(scores []float32, positions []int, n int) []Ranked {
	if len(scores) != len(positions) {
		panic(fmt.Sprintf("recommend: %d scores for %d positions", len(scores), len(positions)))
	}
	if n <= 0 || len(scores) == 0 {
		return []Ranked{}
	}

	ranked := make([]Ranked, len(scores))
	for i := range scores {
		ranked[i] = Ranked{Position: positions[i], Score: scores[i]}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Position < ranked[j].Position
	})

	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
