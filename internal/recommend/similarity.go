// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package recommend

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Cosine scores every row of m against profile. Scores are within [-1, 1];
// rows with zero norm score 0, and a zero profile scores everything 0.
func Cosine(profile []float64, m *mat.Dense) []float32 {
	if m == nil {
		return nil
	}
	rows, cols := m.Dims()
	if len(profile) != cols {
		panic(fmt.Sprintf("recommend: profile has %d dimensions, matrix has %d", len(profile), cols))
	}

	scores := make([]float32, rows)
	pn := floats.Norm(profile, 2)
	if pn == 0 || math.IsNaN(pn) {
		return scores
	}

	for i := 0; i < rows; i++ {
		row := m.RawRowView(i)
		rn := floats.Norm(row, 2)
		if rn == 0 || math.IsNaN(rn) {
			continue
		}
		s := floats.Dot(profile, row) / (pn * rn)
		scores[i] = float32(math.Max(-1, math.Min(1, s)))
	}
	return scores
}
