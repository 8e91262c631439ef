// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package catalogcache builds the merged catalog and its match index from
// source files, persists both under a fingerprint of those files and serves
// later requests from disk until a source changes.
//
// A cache hit needs the complete artifact pair and an index that agrees with
// the catalog. Anything less (one file missing, unreadable parquet, checksum
// failure, row count mismatch) is treated as a miss and rebuilt.
package catalogcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/encore/internal/catalog"
	"github.com/tomtom215/encore/internal/metrics"
	"github.com/tomtom215/encore/internal/storage"
)

// ErrNoSources is returned when Get is called without source paths.
var ErrNoSources = errors.New("no catalog sources configured")

// Backend loads source tables and reads/writes the tabular catalog artifact.
// *database.DB implements it.
type Backend interface {
	ReadTable(ctx context.Context, path string) (catalog.RawTable, error)
	WriteCatalog(ctx context.Context, path string, cat *catalog.Catalog) error
	ReadCatalog(ctx context.Context, path, fingerprint string) (*catalog.Catalog, error)
}

// Result is a ready catalog together with its index.
type Result struct {
	Catalog     *catalog.Catalog
	Index       *catalog.MatchIndex
	Fingerprint string
	// Hit is true when both artifacts came from disk.
	Hit bool
	// Report is the merge report of the build that produced the artifacts,
	// when known.
	Report *catalog.MergeReport
}

// Options tunes a Cache.
type Options struct {
	// PruneStale removes artifacts of other fingerprints after a rebuild.
	PruneStale bool
}

// Cache serializes catalog builds and serves cached artifacts.
type Cache struct {
	store    *storage.Store
	backend  Backend
	manifest storage.Manifest
	logger   zerolog.Logger
	opts     Options

	mu  sync.Mutex
	now func() time.Time
}

// New creates a Cache. A nil manifest records nothing.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(store *storage.Store, backend Backend, manifest storage.Manifest, logger zerolog.Logger, opts Options) *Cache {
	if manifest == nil {
		manifest = storage.NewInMemoryManifest()
	}
	return &Cache{
		store:    store,
		backend:  backend,
		manifest: manifest,
		logger:   logger.With().Str("component", "catalogcache").Logger(),
		opts:     opts,
		now:      time.Now,
	}
}

// Manifest returns the build manifest.
func (c *Cache) Manifest() storage.Manifest {
	return c.manifest
}

// Store returns the artifact store.
func (c *Cache) Store() *storage.Store {
	return c.store
}

// Fingerprint computes the cache key for paths without building anything.
func (c *Cache) Fingerprint(paths []string) (string, error) {
	if len(paths) == 0 {
		return "", ErrNoSources
	}
	return storage.Fingerprint(paths)
}

// Get returns the catalog for paths, loading it from the cache directory
// when a valid artifact pair exists for the current fingerprint and
// forceRebuild is false, and rebuilding it otherwise.
func (c *Cache) Get(ctx context.Context, paths []string, forceRebuild bool) (*Result, error) {
	if len(paths) == 0 {
		return nil, ErrNoSources
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	descs, err := storage.Describe(paths)
	if err != nil {
		return nil, err
	}
	fp, err := storage.FingerprintOf(descs)
	if err != nil {
		return nil, err
	}
	log := c.logger.With().Str("fingerprint", fp).Logger()

	switch {
	case forceRebuild:
		metrics.RecordCacheLookup(metrics.CacheForced)
		log.Info().Msg("Forced catalog rebuild")
	case c.store.Exists(fp):
		res, err := c.load(ctx, fp)
		if err == nil {
			metrics.RecordCacheLookup(metrics.CacheHit)
			log.Debug().Int("rows", res.Catalog.Len()).Msg("Catalog cache hit")
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		metrics.RecordCacheLookup(metrics.CacheInvalid)
		log.Warn().Err(err).Msg("Cached catalog is inconsistent, rebuilding")
	default:
		metrics.RecordCacheLookup(metrics.CacheMiss)
		log.Info().Int("sources", len(descs)).Msg("Catalog cache miss")
	}

	return c.rebuild(ctx, fp, descs, log)
}

func (c *Cache) load(ctx context.Context, fp string) (*Result, error) {
	cat, err := c.backend.ReadCatalog(ctx, c.store.CatalogPath(fp), fp)
	if err != nil {
		return nil, fmt.Errorf("load catalog artifact: %w", err)
	}
	idx, _, err := c.store.LoadIndex(ctx, fp)
	if err != nil {
		return nil, fmt.Errorf("load index artifact: %w", err)
	}
	if err := idx.Validate(cat.Len()); err != nil {
		return nil, fmt.Errorf("index does not match catalog: %w", err)
	}

	res := &Result{Catalog: cat, Index: idx, Fingerprint: fp, Hit: true}
	if rec, err := c.manifest.Latest(ctx); err == nil && rec != nil && rec.Fingerprint == fp {
		report := rec.Report
		res.Report = &report
	}
	return res, nil
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (c *Cache) rebuild(ctx context.Context, fp string, descs []storage.SourceDescriptor, log zerolog.Logger) (*Result, error) {
	start := c.now()

	res, report, err := c.build(ctx, fp, descs)
	elapsed := c.now().Sub(start)
	if err != nil {
		metrics.RecordCatalogBuild(elapsed, 0, nil, nil, err)
		log.Error().Err(err).Msg("Catalog build failed")
		return nil, err
	}

	metrics.RecordCatalogBuild(elapsed, report.RowsIn, droppedByPass(report), report.ParseFailures, nil)
	log.Info().
		Int("rows_in", report.RowsIn).
		Int("rows_out", report.RowsOut).
		Int("dropped_by_id", report.DroppedByID).
		Int("dropped_by_isrc", report.DroppedByISRC).
		Int("dropped_by_key", report.DroppedByKey).
		Int("dropped_exact", report.DroppedExact).
		Dur("elapsed", elapsed).
		Msg("Catalog built")
	for field, n := range report.ParseFailures {
		log.Debug().Str("field", field).Int("count", n).Msg("Unparseable values nulled")
	}

	rec := &storage.BuildRecord{
		Fingerprint: fp,
		Sources:     descs,
		BuiltAt:     start.UTC(),
		DurationMS:  elapsed.Milliseconds(),
		Rows:        res.Catalog.Len(),
		Report:      report,
	}

	if c.opts.PruneStale {
		n, err := c.store.Prune(ctx, fp)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to prune stale artifacts")
		}
		rec.Pruned = n
		if n > 0 {
			log.Info().Int("removed", n).Msg("Pruned stale artifacts")
		}
	}

	if err := c.manifest.Record(ctx, rec); err != nil {
		log.Warn().Err(err).Msg("Failed to record catalog build")
	}
	return res, nil
}

// build reads sources in fingerprint order so the merged catalog only
// depends on the source set, never on argument order.
func (c *Cache) build(ctx context.Context, fp string, descs []storage.SourceDescriptor) (*Result, catalog.MergeReport, error) {
	tables := make([]catalog.RawTable, 0, len(descs))
	for _, d := range descs {
		tbl, err := c.backend.ReadTable(ctx, d.Path)
		if err != nil {
			return nil, catalog.MergeReport{}, fmt.Errorf("read source %s: %w", d.Path, err)
		}
		tables = append(tables, tbl)
	}
	if err := ctx.Err(); err != nil {
		return nil, catalog.MergeReport{}, err
	}

	cat, report := catalog.Merge(tables)
	cat.Fingerprint = fp
	idx := catalog.BuildIndex(cat)

	catTmp := c.store.TempPath(c.store.CatalogPath(fp))
	if err := c.backend.WriteCatalog(ctx, catTmp, cat); err != nil {
		c.store.Discard(catTmp)
		return nil, report, fmt.Errorf("write catalog artifact: %w", err)
	}
	idxTmp, err := c.store.WriteIndex(ctx, fp, idx, c.now())
	if err != nil {
		c.store.Discard(catTmp)
		return nil, report, err
	}

	// catalog first: a crash between the two renames leaves a half pair,
	// which the next Get treats as a miss
	if err := c.store.Commit(catTmp, c.store.CatalogPath(fp)); err != nil {
		c.store.Discard(catTmp)
		c.store.Discard(idxTmp)
		return nil, report, err
	}
	if err := c.store.Commit(idxTmp, c.store.IndexPath(fp)); err != nil {
		c.store.Discard(idxTmp)
		return nil, report, err
	}

	return &Result{Catalog: cat, Index: idx, Fingerprint: fp, Report: &report}, report, nil
}

func droppedByPass(r catalog.MergeReport) map[string]int {
	return map[string]int{
		"id":    r.DroppedByID,
		"isrc":  r.DroppedByISRC,
		"key":   r.DroppedByKey,
		"exact": r.DroppedExact,
	}
}
