// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package features

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// MaxComponents caps the reduced dimension.
const MaxComponents = 10

// ErrReduction is returned when principal components cannot be fitted.
var ErrReduction = errors.New("dimensionality reduction failed")

// Reducer projects feature vectors onto principal components.
type Reducer struct {
	means   []float64
	vectors *mat.Dense // dims x k
	// Explained holds the variance along each kept component.
	Explained []float64
}

// FitReducer fits principal components on m (rows are tracks) through a
// thin SVD of the column-centered matrix. The number of components is
// min(components, MaxComponents, columns, rows).
func FitReducer(m *mat.Dense, components int) (*Reducer, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: no rows", ErrReduction)
	}
	rows, cols := m.Dims()
	if rows < 2 {
		return nil, fmt.Errorf("%w: need at least 2 rows, have %d", ErrReduction, rows)
	}
	if components < 1 {
		return nil, fmt.Errorf("%w: components must be positive, got %d", ErrReduction, components)
	}
	k := min(components, MaxComponents, cols, rows)

	means := make([]float64, cols)
	for j := range means {
		means[j] = stat.Mean(mat.Col(nil, j, m), nil)
	}
	centered := mat.NewDense(rows, cols, nil)
	centered.Apply(func(_, j int, v float64) float64 { return v - means[j] }, m)

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%w: decomposition did not converge", ErrReduction)
	}

	// columns of V are the principal directions, strongest first
	var v mat.Dense
	svd.VTo(&v)
	vectors := mat.DenseCopyOf(v.Slice(0, cols, 0, k))

	values := svd.Values(nil)
	explained := make([]float64, k)
	for i := range explained {
		explained[i] = values[i] * values[i] / float64(rows-1)
	}

	return &Reducer{means: means, vectors: vectors, Explained: explained}, nil
}

// Components is the reduced dimension.
func (r *Reducer) Components() int {
	_, k := r.vectors.Dims()
	return k
}

// Project centers m with the fitted means and projects it. Nil in, nil out.
func (r *Reducer) Project(m *mat.Dense) *mat.Dense {
	if m == nil {
		return nil
	}
	rows, cols := m.Dims()
	centered := mat.NewDense(rows, cols, nil)
	centered.Apply(func(_, j int, v float64) float64 { return v - r.means[j] }, m)

	var out mat.Dense
	out.Mul(centered, r.vectors)
	return &out
}

// ProjectVector projects a single vector.
func (r *Reducer) ProjectVector(v []float64) []float64 {
	row := mat.NewDense(1, len(v), append([]float64(nil), v...))
	return mat.Row(nil, 0, r.Project(row))
}
