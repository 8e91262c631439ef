// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package recommend

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/encore/internal/features"
)

// ProfileMethod selects how seed vectors collapse into one profile.
type ProfileMethod string

const (
	MethodMean   ProfileMethod = "mean"
	MethodMedian ProfileMethod = "median"

	// MethodClustered is recognized but not supported.
	MethodClustered ProfileMethod = "clustered"
)

var (
	// ErrEmptyProfile means there were no seed vectors.
	ErrEmptyProfile = errors.New("cannot build a profile from zero tracks")

	// ErrUnsupportedMethod is returned for clustered and unknown methods.
	ErrUnsupportedMethod = errors.New("unsupported profile method")
)

// ParseProfileMethod validates a method name. Empty means median.
func ParseProfileMethod(s string) (ProfileMethod, error) {
	switch m := ProfileMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MethodMedian, nil
	case MethodMean, MethodMedian:
		return m, nil
	case MethodClustered:
		return "", fmt.Errorf("%w: clustered profiles are not supported", ErrUnsupportedMethod)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, s)
	}
}

// BuildProfile collapses the rows of m into one vector, column by column.
// NaN entries are ignored; a column with no values yields 0.
func BuildProfile(m *mat.Dense, method ProfileMethod) ([]float64, error) {
	if m == nil {
		return nil, ErrEmptyProfile
	}
	rows, cols := m.Dims()
	if rows == 0 {
		return nil, ErrEmptyProfile
	}

	var reduce func([]float64) float64
	switch method {
	case MethodMean:
		reduce = func(v []float64) float64 { return stat.Mean(v, nil) }
	case MethodMedian, "":
		reduce = features.Median
	default:
		_, err := ParseProfileMethod(string(method))
		if err == nil {
			err = fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
		}
		return nil, err
	}

	profile := make([]float64, cols)
	col := make([]float64, 0, rows)
	for j := 0; j < cols; j++ {
		col = col[:0]
		for i := 0; i < rows; i++ {
			if v := m.At(i, j); !math.IsNaN(v) {
				col = append(col, v)
			}
		}
		if len(col) > 0 {
			profile[j] = reduce(col)
		}
	}
	return profile, nil
}
