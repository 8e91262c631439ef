// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/encore/internal/cache"
	"github.com/tomtom215/encore/internal/catalog"
	"github.com/tomtom215/encore/internal/features"
	"github.com/tomtom215/encore/internal/logging"
	"github.com/tomtom215/encore/internal/metrics"
)

// Recommendation outcomes reported to metrics.
const (
	outcomeOK           = "ok"
	outcomeCached       = "cached"
	outcomeNoSeeds      = "no_seeds"
	outcomeNoCandidates = "no_candidates"
	outcomeError        = "error"
)

// Snapshot is an immutable, fully prepared catalog.
type Snapshot struct {
	Catalog  *catalog.Catalog
	Index    *catalog.MatchIndex
	Scaler   *features.Scaler
	LoadedAt time.Time

	// matrix is the standardized catalog, one row per track
	matrix *mat.Dense

	mu       sync.Mutex
	reducers map[int]*features.Reducer
}

// NewSnapshot fits the scaler on the whole catalog and standardizes it.
func NewSnapshot(cat *catalog.Catalog, idx *catalog.MatchIndex) (*Snapshot, error) {
	if cat == nil || idx == nil {
		return nil, errors.New("snapshot needs a catalog and an index")
	}
	if err := idx.Validate(cat.Len()); err != nil {
		return nil, fmt.Errorf("index does not match catalog: %w", err)
	}
	scaler, err := features.FitScaler(cat.Tracks)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Catalog:  cat,
		Index:    idx,
		Scaler:   scaler,
		LoadedAt: time.Now(),
		matrix:   scaler.Transform(cat.Tracks),
		reducers: make(map[int]*features.Reducer),
	}, nil
}

// Fingerprint identifies the catalog sources of the snapshot.
func (s *Snapshot) Fingerprint() string {
	return s.Catalog.Fingerprint
}

// reducer returns principal components fitted on the catalog matrix after
// weighting, so the centering means live in the same space as the weighted
// vectors they are subtracted from. Unweighted fits are cached per
// component count; weighted ones are fitted per request.
func (s *Snapshot) reducer(components int, weights []float64) (*features.Reducer, error) {
	if !features.IsUniform(weights) {
		return features.FitReducer(features.ApplyWeights(s.matrix, weights), components)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.reducers[components]; ok {
		return r, nil
	}
	r, err := features.FitReducer(s.matrix, components)
	if err != nil {
		return nil, err
	}
	s.reducers[components] = r
	return r, nil
}

// candidateMatrix standardizes the candidate rows as their own batch, so
// missing values take the candidates' medians. The precomputed catalog
// matrix is reused only when nothing was filtered out.
func (s *Snapshot) candidateMatrix(positions []int) *mat.Dense {
	if len(positions) == 0 {
		return nil
	}
	if len(positions) != s.Catalog.Len() {
		return s.Scaler.TransformAt(s.Catalog, positions)
	}
	out := mat.NewDense(len(positions), features.Dims, nil)
	for i, p := range positions {
		out.SetRow(i, s.matrix.RawRowView(p))
	}
	return out
}

// Engine serves recommendations from the current snapshot. It is safe for
// concurrent use.
type Engine struct {
	cfg     Config
	logger  zerolog.Logger
	matcher catalog.Matcher

	snapshot  atomic.Pointer[Snapshot]
	responses *cache.Cache[*Response]
}

// NewEngine creates an engine without a catalog; Recommend returns
// ErrCatalogNotReady until SetCatalog succeeds.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg Config, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Engine{
		cfg:       cfg,
		logger:    logger.With().Str("component", "recommend").Logger(),
		matcher:   cfg.matcher(),
		responses: cache.New[*Response](cfg.ResponseCacheTTL, cfg.ResponseCacheSize),
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// SetCatalog prepares and installs a new snapshot. The previous snapshot
// stays active when preparation fails.
func (e *Engine) SetCatalog(cat *catalog.Catalog, idx *catalog.MatchIndex) error {
	snap, err := NewSnapshot(cat, idx)
	if err != nil {
		return fmt.Errorf("prepare catalog: %w", err)
	}
	e.Install(snap)
	return nil
}

// Install swaps in a prepared snapshot and drops memoized responses.
func (e *Engine) Install(snap *Snapshot) {
	prev := e.snapshot.Swap(snap)
	e.responses.Clear()
	metrics.SetActiveCatalog(snap.Catalog.Len())

	ev := e.logger.Info().Str("fingerprint", snap.Fingerprint()).Int("rows", snap.Catalog.Len())
	if prev != nil {
		ev = ev.Str("previous", prev.Fingerprint())
	}
	ev.Msg("Catalog installed")
}

// Snapshot returns the active snapshot or nil.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// Ready reports whether a catalog is installed.
func (e *Engine) Ready() bool {
	return e.snapshot.Load() != nil
}

// CacheStats reports response cache effectiveness.
func (e *Engine) CacheStats() cache.Stats {
	return e.responses.GetStats()
}

// MatchSeeds resolves seeds against the active catalog without ranking.
func (e *Engine) MatchSeeds(ctx context.Context, seeds []Seed) ([]SeedMatch, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return nil, ErrCatalogNotReady
	}
	return e.match(ctx, snap, seeds)
}

func (e *Engine) match(ctx context.Context, snap *Snapshot, seeds []Seed) ([]SeedMatch, error) {
	out := make([]SeedMatch, len(seeds))
	for i, seed := range seeds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, ok := e.matcher.Match(seed, snap.Index, snap.Catalog)
		metrics.RecordSeedMatch(string(res.Path))
		out[i] = SeedMatch{Seed: seed, Path: res.Path}
		if !ok {
			logging.Ctx(ctx).Debug().Str("title", seed.Title).Strs("artists", seed.Artists).Msg("Seed not matched")
			continue
		}
		pos := res.Position
		track := snap.Catalog.Tracks[pos]
		out[i].Position = &pos
		out[i].Track = &track
	}
	return out, nil
}

// resolved is a request with defaults applied.
type resolved struct {
	Fingerprint   string             `json:"fingerprint"`
	Seeds         []Seed             `json:"seeds"`
	TopN          int                `json:"top_n"`
	MinPopularity *int               `json:"min_popularity"`
	MaxPopularity *int               `json:"max_popularity"`
	YearRange     *YearRange         `json:"year_range"`
	Weights       map[string]float64 `json:"weights"`
	Components    int                `json:"components"`
	Method        ProfileMethod      `json:"profile_method"`

	weights []float64
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) resolve(snap *Snapshot, req Request) (*resolved, error) {
	method, err := ParseProfileMethod(req.ProfileMethod)
	if err != nil {
		return nil, err
	}
	if req.ProfileMethod == "" {
		method, _ = ParseProfileMethod(e.cfg.ProfileMethod)
	}

	w, err := features.WeightVector(req.Weights)
	if err != nil {
		return nil, err
	}

	r := &resolved{
		Fingerprint:   snap.Fingerprint(),
		Seeds:         req.Seeds,
		TopN:          req.TopN,
		MinPopularity: req.MinPopularity,
		MaxPopularity: req.MaxPopularity,
		YearRange:     req.YearRange,
		Weights:       req.Weights,
		Method:        method,
		weights:       w,
	}
	if r.TopN <= 0 {
		r.TopN = e.cfg.TopN
	}
	r.TopN = min(r.TopN, e.cfg.MaxTopN)
	if r.MinPopularity == nil {
		mp := e.cfg.MinPopularity
		r.MinPopularity = &mp
	}
	if yr := r.YearRange; yr != nil && yr[0] > yr[1] {
		return nil, fmt.Errorf("%w: year_range start %d is after end %d", ErrInvalidRequest, yr[0], yr[1])
	}
	if req.UseReduction {
		r.Components = req.Components
		if r.Components <= 0 {
			r.Components = e.cfg.Components
		}
		r.Components = min(r.Components, features.MaxComponents)
	}
	return r, nil
}

// Recommend ranks catalog tracks by similarity to the request seeds.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	snap := e.snapshot.Load()
	if snap == nil {
		return nil, ErrCatalogNotReady
	}
	ctx = logging.ContextWithFingerprint(ctx, snap.Fingerprint())
	log := logging.Ctx(ctx)

	resp, candidates, outcome, err := e.recommend(ctx, snap, req)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, ErrEmptySeedSet) {
			outcome = outcomeNoSeeds
		} else {
			outcome = outcomeError
		}
		metrics.RecordRecommendation(outcome, elapsed, -1)
		log.Debug().Err(err).Int("seeds", len(req.Seeds)).Msg("Recommendation failed")
		return nil, err
	}

	resp.LatencyMS = elapsed.Milliseconds()
	metrics.RecordRecommendation(outcome, elapsed, candidates)
	log.Debug().
		Int("seeds", len(req.Seeds)).
		Int("matched", resp.Matched).
		Int("candidates", resp.Candidates).
		Int("returned", len(resp.Tracks)).
		Bool("cached", resp.Cached).
		Dur("elapsed", elapsed).
		Msg("Recommendation served")
	return resp, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) recommend(ctx context.Context, snap *Snapshot, req Request) (*Response, int, string, error) {
	if len(req.Seeds) == 0 {
		return nil, -1, "", ErrEmptySeedSet
	}
	r, err := e.resolve(snap, req)
	if err != nil {
		return nil, -1, "", err
	}

	key := cache.GenerateKey("recommend", r)
	if cached, ok := e.responses.Get(key); ok {
		out := *cached
		out.Cached = true
		return &out, -1, outcomeCached, nil
	}

	matches, err := e.match(ctx, snap, r.Seeds)
	if err != nil {
		return nil, -1, "", err
	}

	var (
		positions []int
		excludeID = make(map[string]struct{})
		excludePo = make(map[int]struct{})
	)
	for _, m := range matches {
		if m.Seed.ID != nil {
			excludeID[catalog.NormalizeID(*m.Seed.ID)] = struct{}{}
		}
		if !m.Matched() {
			continue
		}
		positions = append(positions, *m.Position)
		excludePo[*m.Position] = struct{}{}
		if id := m.Track.ExternalID; id != nil {
			excludeID[*id] = struct{}{}
		}
	}
	if len(positions) == 0 {
		return nil, -1, "", ErrEmptySeedSet
	}

	profile, err := BuildProfile(snap.Scaler.TransformAt(snap.Catalog, positions), r.Method)
	if err != nil {
		return nil, -1, "", err
	}

	cands := FilterCandidates(snap.Catalog, FilterOptions{
		ExcludeIDs:       excludeID,
		ExcludePositions: excludePo,
		MinPopularity:    r.MinPopularity,
		MaxPopularity:    r.MaxPopularity,
		YearRange:        r.YearRange,
	})

	resp := &Response{
		Tracks:        []ScoredTrack{},
		Seeds:         matches,
		Matched:       len(positions),
		Candidates:    len(cands),
		Fingerprint:   snap.Fingerprint(),
		ProfileMethod: r.Method,
		Components:    r.Components,
	}
	if len(cands) == 0 {
		e.remember(key, resp)
		return resp, 0, outcomeNoCandidates, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, -1, "", err
	}

	// weight first, then project with components fitted on the weighted
	// catalog
	matrix := snap.candidateMatrix(cands)
	if !features.IsUniform(r.weights) {
		profile = features.ApplyWeightsVector(profile, r.weights)
		matrix = features.ApplyWeights(matrix, r.weights)
	}
	if r.Components > 0 {
		red, err := snap.reducer(r.Components, r.weights)
		if err != nil {
			return nil, -1, "", err
		}
		profile = red.ProjectVector(profile)
		matrix = red.Project(matrix)
		resp.Components = red.Components()
	}

	for _, rk := range TopN(Cosine(profile, matrix), cands, r.TopN) {
		resp.Tracks = append(resp.Tracks, ScoredTrack{
			Position:   rk.Position,
			Track:      snap.Catalog.Tracks[rk.Position],
			Similarity: rk.Score,
		})
	}

	e.remember(key, resp)
	return resp, len(cands), outcomeOK, nil
}

// remember stores a copy so later changes to resp (latency) never reach
// the shared cached value.
func (e *Engine) remember(key string, resp *Response) {
	stored := *resp
	e.responses.Set(key, &stored)
}
