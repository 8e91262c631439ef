// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/encore/internal/catalog"
)

// Scaler holds the per-dimension statistics fitted on a catalog.
type Scaler struct {
	Medians [Dims]float64 `json:"medians"`
	Means   [Dims]float64 `json:"means"`
	Scales  [Dims]float64 `json:"scales"`
}

// FitScaler fits imputation medians and standardization parameters on
// tracks. Columns are imputed before mean and deviation are taken, so an
// imputed value counts towards both.
func FitScaler(tracks []catalog.Track) (*Scaler, error) {
	ptrs := pointers(tracks)
	cols := columns(ptrs)

	s := &Scaler{}
	for d := 0; d < Dims; d++ {
		if len(cols[d]) == 0 {
			return nil, fmt.Errorf("%w: %s has no values", ErrMissingFeature, Names[d])
		}
		s.Medians[d] = Median(cols[d])

		full := make([]float64, len(ptrs))
		for i, t := range ptrs {
			v, ok := value(t, d)
			if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
				v = s.Medians[d]
			}
			full[i] = v
		}
		mean, std := stat.PopMeanStdDev(full, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		s.Means[d] = mean
		s.Scales[d] = std
	}
	return s, nil
}

// Transform maps tracks to a standardized len(tracks) x Dims matrix.
// Missing values take the median of the given tracks. A column with no
// values in the batch has no median, so its entries become 0 like any other
// non-finite result. Returns nil for no tracks.
func (s *Scaler) Transform(tracks []catalog.Track) *mat.Dense {
	return s.transform(pointers(tracks))
}

// TransformAt transforms the catalog rows at positions, in that order.
func (s *Scaler) TransformAt(cat *catalog.Catalog, positions []int) *mat.Dense {
	ptrs := make([]*catalog.Track, 0, len(positions))
	for _, p := range positions {
		ptrs = append(ptrs, cat.At(p))
	}
	return s.transform(ptrs)
}

func (s *Scaler) transform(tracks []*catalog.Track) *mat.Dense {
	if len(tracks) == 0 {
		return nil
	}

	cols := columns(tracks)
	var fill [Dims]float64
	for d := 0; d < Dims; d++ {
		fill[d] = math.NaN()
		if len(cols[d]) > 0 {
			fill[d] = Median(cols[d])
		}
	}

	out := mat.NewDense(len(tracks), Dims, nil)
	for i, t := range tracks {
		for d := 0; d < Dims; d++ {
			v, ok := value(t, d)
			if !ok {
				v = fill[d]
			}
			z := (v - s.Means[d]) / s.Scales[d]
			if math.IsNaN(z) || math.IsInf(z, 0) {
				z = 0
			}
			out.Set(i, d, z)
		}
	}
	return out
}
