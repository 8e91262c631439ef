// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package features

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/encore/internal/catalog"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

// track fills every feature with base-derived values.
func track(base float64) catalog.Track {
	return catalog.Track{
		DurationMS: i64(int64(180000 + base*60000)),
		Audio: catalog.Audio{
			Danceability:     f64(base),
			Energy:           f64(base),
			Valence:          f64(base),
			Acousticness:     f64(1 - base),
			Instrumentalness: f64(base / 2),
			Liveness:         f64(base / 3),
			Speechiness:      f64(base / 4),
			Tempo:            f64(90 + base*60),
			Loudness:         f64(-20 + base*10),
		},
	}
}

const eps = 1e-9

func TestNamesAndIndex(t *testing.T) {
	t.Parallel()

	if len(Names) != Dims {
		t.Fatalf("len(Names) = %d, want %d", len(Names), Dims)
	}
	if Index("tempo") != dimTempo || Index("duration_ms") != dimDuration || Index("bpm") != -1 {
		t.Error("Index() returned wrong positions")
	}
}

func TestValueTransforms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tr   catalog.Track
		dim  int
		want float64
	}{
		{"tempo log1p", catalog.Track{Audio: catalog.Audio{Tempo: f64(120)}}, dimTempo, math.Log1p(120)},
		{"tempo clamped high", catalog.Track{Audio: catalog.Audio{Tempo: f64(900)}}, dimTempo, math.Log1p(300)},
		{"loudness clamped low", catalog.Track{Audio: catalog.Audio{Loudness: f64(-80)}}, dimLoudness, -60},
		{"loudness clamped high", catalog.Track{Audio: catalog.Audio{Loudness: f64(3)}}, dimLoudness, 0},
		{"duration minutes", catalog.Track{DurationMS: i64(240000)}, dimDuration, math.Log1p(4)},
		{"duration clamped short", catalog.Track{DurationMS: i64(1000)}, dimDuration, math.Log1p(0.5)},
		{"duration clamped long", catalog.Track{DurationMS: i64(5000000)}, dimDuration, math.Log1p(20)},
		{"bounded passes through", catalog.Track{Audio: catalog.Audio{Energy: f64(0.7)}}, 1, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := value(&tt.tr, tt.dim)
			if !ok || math.Abs(got-tt.want) > eps {
				t.Errorf("value() = %v, %v; want %v", got, ok, tt.want)
			}
		})
	}

	if _, ok := value(&catalog.Track{}, dimTempo); ok {
		t.Error("missing tempo reported as present")
	}
}

func TestMedian(t *testing.T) {
	t.Parallel()

	if got := Median([]float64{3, 1, 2}); got != 2 {
		t.Errorf("odd median = %v", got)
	}
	if got := Median([]float64{4, 1, 3, 2}); got != 2.5 {
		t.Errorf("even median = %v", got)
	}
	if !math.IsNaN(Median(nil)) {
		t.Error("Median(nil) should be NaN")
	}
}

func TestFitScaler(t *testing.T) {
	t.Parallel()

	s, err := FitScaler([]catalog.Track{track(0.2), track(0.6)})
	if err != nil {
		t.Fatalf("FitScaler() error = %v", err)
	}
	// energy: values 0.2, 0.6 -> mean 0.4, population std 0.2
	if math.Abs(s.Means[1]-0.4) > eps || math.Abs(s.Scales[1]-0.2) > eps {
		t.Errorf("energy mean/scale = %v/%v", s.Means[1], s.Scales[1])
	}

	m := s.Transform([]catalog.Track{track(0.2), track(0.6)})
	if math.Abs(m.At(0, 1)+1) > eps || math.Abs(m.At(1, 1)-1) > eps {
		t.Errorf("standardized energy = %v, %v; want -1, 1", m.At(0, 1), m.At(1, 1))
	}
}

func TestFitScaler_ConstantColumn(t *testing.T) {
	t.Parallel()

	s, err := FitScaler([]catalog.Track{track(0.5), track(0.5)})
	if err != nil {
		t.Fatal(err)
	}
	for d := 0; d < Dims; d++ {
		if s.Scales[d] != 1 {
			t.Errorf("scale[%s] = %v, want 1", Names[d], s.Scales[d])
		}
	}
	m := s.Transform([]catalog.Track{track(0.5)})
	if floats.Norm(mat.Row(nil, 0, m), 2) != 0 {
		t.Errorf("constant columns should standardize to 0, got %v", mat.Row(nil, 0, m))
	}
}

func TestFitScaler_MissingFeature(t *testing.T) {
	t.Parallel()

	a, b := track(0.1), track(0.9)
	a.Tempo, b.Tempo = nil, nil
	_, err := FitScaler([]catalog.Track{a, b})
	if !errors.Is(err, ErrMissingFeature) {
		t.Errorf("FitScaler() error = %v, want ErrMissingFeature", err)
	}
}

func TestTransform_Imputation(t *testing.T) {
	t.Parallel()

	s, err := FitScaler([]catalog.Track{track(0), track(0.5), track(1)})
	if err != nil {
		t.Fatal(err)
	}

	gap := track(0.9)
	gap.Energy = nil
	m := s.Transform([]catalog.Track{track(0.2), track(0.4), gap})

	// energy of the gap row takes the batch median 0.3
	want := (0.3 - s.Means[1]) / s.Scales[1]
	if math.Abs(m.At(2, 1)-want) > eps {
		t.Errorf("imputed energy = %v, want %v", m.At(2, 1), want)
	}

	// a column empty in the batch has no median and becomes 0
	lone := track(0.9)
	lone.Energy = nil
	m = s.Transform([]catalog.Track{lone})
	if m.At(0, 1) != 0 {
		t.Errorf("all-null energy = %v, want 0", m.At(0, 1))
	}

	if s.Transform(nil) != nil {
		t.Error("Transform(nil) should be nil")
	}
}

func TestTransformAt(t *testing.T) {
	t.Parallel()

	cat := &catalog.Catalog{Tracks: []catalog.Track{track(0), track(0.5), track(1)}}
	s, err := FitScaler(cat.Tracks)
	if err != nil {
		t.Fatal(err)
	}
	m := s.TransformAt(cat, []int{2, 0})
	full := s.Transform(cat.Tracks)
	if !floats.EqualApprox(mat.Row(nil, 0, m), mat.Row(nil, 2, full), eps) {
		t.Error("TransformAt row 0 differs from catalog row 2")
	}
}

func TestWeightVector(t *testing.T) {
	t.Parallel()

	w, err := WeightVector(map[string]float64{"energy": 2, "tempo": 0})
	if err != nil {
		t.Fatal(err)
	}
	if w[1] != 2 || w[dimTempo] != 0 || w[0] != 1 || IsUniform(w) {
		t.Errorf("WeightVector() = %v", w)
	}

	def, _ := WeightVector(nil)
	if !IsUniform(def) {
		t.Errorf("default weights = %v", def)
	}

	if _, err := WeightVector(map[string]float64{"bpm": 1}); !errors.Is(err, ErrUnknownFeature) {
		t.Errorf("unknown name error = %v", err)
	}
	if _, err := WeightVector(map[string]float64{"energy": -1}); err == nil {
		t.Error("negative weight accepted")
	}
}

func TestApplyWeights(t *testing.T) {
	t.Parallel()

	w := make([]float64, Dims)
	for i := range w {
		w[i] = float64(i)
	}
	row := make([]float64, Dims)
	for i := range row {
		row[i] = 2
	}
	m := mat.NewDense(2, Dims, append(append([]float64(nil), row...), row...))

	got := ApplyWeights(m, w)
	want := ApplyWeightsVector(row, w)
	if !floats.Equal(mat.Row(nil, 1, got), want) || want[3] != 6 {
		t.Errorf("ApplyWeights() row = %v, want %v", mat.Row(nil, 1, got), want)
	}
	if m.At(0, 3) != 2 {
		t.Error("ApplyWeights() mutated its input")
	}
	if ApplyWeights(nil, w) != nil {
		t.Error("ApplyWeights(nil) should be nil")
	}
}

func TestFitReducer(t *testing.T) {
	t.Parallel()

	// points on a line through (1, 2, 0): one direction carries everything
	data := []float64{
		1, 2, 0,
		2, 4, 0,
		3, 6, 0,
		4, 8, 0,
	}
	m := mat.NewDense(4, 3, data)

	r, err := FitReducer(m, 2)
	if err != nil {
		t.Fatalf("FitReducer() error = %v", err)
	}
	if r.Components() != 2 {
		t.Errorf("Components() = %d, want 2", r.Components())
	}
	if r.Explained[0] <= 0 || r.Explained[1] > 1e-9 {
		t.Errorf("Explained = %v", r.Explained)
	}

	p := r.Project(m)
	rows, cols := p.Dims()
	if rows != 4 || cols != 2 {
		t.Fatalf("Project() dims = %dx%d", rows, cols)
	}
	for i := 0; i < rows; i++ {
		if math.Abs(p.At(i, 1)) > 1e-9 {
			t.Errorf("row %d second component = %v, want 0", i, p.At(i, 1))
		}
	}
	// distances along the line are preserved
	if d := math.Abs(p.At(1, 0) - p.At(0, 0)); math.Abs(d-math.Sqrt(5)) > 1e-9 {
		t.Errorf("projected step = %v, want sqrt(5)", d)
	}

	v := r.ProjectVector([]float64{3, 6, 0})
	if !floats.EqualApprox(v, mat.Row(nil, 2, p), 1e-12) {
		t.Errorf("ProjectVector() = %v, want %v", v, mat.Row(nil, 2, p))
	}
}

func TestFitReducer_Limits(t *testing.T) {
	t.Parallel()

	m := mat.NewDense(3, Dims, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < Dims; j++ {
			m.Set(i, j, float64((i+1)*(j+1)%7))
		}
	}
	r, err := FitReducer(m, 50)
	if err != nil {
		t.Fatal(err)
	}
	if r.Components() != 3 {
		t.Errorf("Components() = %d, want 3 (row bound)", r.Components())
	}

	if _, err := FitReducer(mat.NewDense(1, Dims, nil), 2); !errors.Is(err, ErrReduction) {
		t.Errorf("single row error = %v", err)
	}
	if _, err := FitReducer(m, 0); !errors.Is(err, ErrReduction) {
		t.Errorf("zero components error = %v", err)
	}
	if _, err := FitReducer(nil, 2); !errors.Is(err, ErrReduction) {
		t.Errorf("nil matrix error = %v", err)
	}
}
