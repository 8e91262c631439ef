// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package features

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// WeightVector expands per-feature weights into vector order. Missing
// names weigh 1.0.
func WeightVector(weights map[string]float64) ([]float64, error) {
	w := make([]float64, Dims)
	for i := range w {
		w[i] = 1
	}

	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := weights[name]
		i := Index(name)
		if i < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, name)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s must be a finite non-negative number, got %v", ErrInvalidWeight, name, v)
		}
		w[i] = v
	}
	return w, nil
}

// IsUniform reports whether every weight is 1.
func IsUniform(w []float64) bool {
	for _, v := range w {
		if v != 1 {
			return false
		}
	}
	return true
}

// ApplyWeights scales each column of m by the matching weight and returns a
// new matrix. Nil in, nil out.
func ApplyWeights(m *mat.Dense, w []float64) *mat.Dense {
	if m == nil {
		return nil
	}
	_, c := m.Dims()
	if len(w) != c {
		panic(fmt.Sprintf("features: %d weights for %d columns", len(w), c))
	}
	var out mat.Dense
	out.Mul(m, mat.NewDiagDense(c, w))
	return &out
}

// ApplyWeightsVector is ApplyWeights for a single vector.
func ApplyWeightsVector(v, w []float64) []float64 {
	out := make([]float64, len(v))
	floats.MulTo(out, v, w)
	return out
}
