// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package catalogcache

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/encore/internal/catalog"
	"github.com/tomtom215/encore/internal/database"
	"github.com/tomtom215/encore/internal/storage"
)

// countingBackend counts source reads so tests can tell hits from rebuilds.
type countingBackend struct {
	*database.DB
	reads atomic.Int32
}

func (b *countingBackend) ReadTable(ctx context.Context, path string) (catalog.RawTable, error) {
	b.reads.Add(1)
	return b.DB.ReadTable(ctx, path)
}

type fixture struct {
	cache   *Cache
	backend *countingBackend
	store   *storage.Store
	sources []string
}

func setup(t *testing.T, opts Options) *fixture {
	t.Helper()

	db, err := database.Open(context.Background(), database.Config{Threads: 1})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	dir := t.TempDir()
	store, err := storage.NewStore(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	writeCSV(t, a, "id,name,artists,duration_ms,popularity,energy,tempo\n"+
		"spotify:track:1,Song Title (Remastered 2011),Band,260000,40,0.5,120\n"+
		"2,Other Song,Someone,200000,70,0.9,90\n")
	writeCSV(t, b, "track_id,track_name,artist_name,duration_ms,popularity,energy,tempo\n"+
		"1,Song Title,Band,260500,45,0.5,120\n"+
		"3,Third,Another,180000,10,0.1,60\n")

	backend := &countingBackend{DB: db}
	return &fixture{
		cache:   New(store, backend, storage.NewInMemoryManifest(), zerolog.Nop(), opts),
		backend: backend,
		store:   store,
		sources: []string{a, b},
	}
}

func writeCSV(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	return data
}

func TestGet_BuildThenHit(t *testing.T) {
	t.Parallel()
	f := setup(t, Options{})
	ctx := context.Background()

	first, err := f.cache.Get(ctx, f.sources, false)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if first.Hit {
		t.Error("first Get() reported a hit")
	}
	if first.Catalog.Len() != 3 {
		t.Errorf("catalog rows = %d, want 3", first.Catalog.Len())
	}
	if first.Report == nil || first.Report.RowsIn != 4 || first.Report.DroppedByID != 1 {
		t.Errorf("report = %+v", first.Report)
	}
	if f.backend.reads.Load() != 2 {
		t.Errorf("source reads = %d, want 2", f.backend.reads.Load())
	}

	catBytes := readFile(t, f.store.CatalogPath(first.Fingerprint))
	idxBytes := readFile(t, f.store.IndexPath(first.Fingerprint))

	second, err := f.cache.Get(ctx, f.sources, false)
	if err != nil {
		t.Fatalf("second Get() error = %v", err)
	}
	if !second.Hit || second.Fingerprint != first.Fingerprint {
		t.Errorf("second Get() = hit %v fp %s", second.Hit, second.Fingerprint)
	}
	if f.backend.reads.Load() != 2 {
		t.Error("cache hit read the sources again")
	}
	if second.Report == nil || second.Report.RowsOut != 3 {
		t.Errorf("hit report = %+v", second.Report)
	}
	if second.Catalog.Len() != first.Catalog.Len() || second.Index.Rows != first.Index.Rows {
		t.Error("cached catalog differs from built catalog")
	}

	if !bytes.Equal(catBytes, readFile(t, f.store.CatalogPath(first.Fingerprint))) ||
		!bytes.Equal(idxBytes, readFile(t, f.store.IndexPath(first.Fingerprint))) {
		t.Error("artifacts changed across an unchanged Get()")
	}

	hist, _ := f.cache.Manifest().History(ctx, 0)
	if len(hist) != 1 {
		t.Errorf("manifest records = %d, want 1", len(hist))
	}
}

func TestGet_SourceChangeRebuilds(t *testing.T) {
	t.Parallel()
	f := setup(t, Options{PruneStale: true})
	ctx := context.Background()

	first, err := f.cache.Get(ctx, f.sources, false)
	if err != nil {
		t.Fatal(err)
	}

	writeCSV(t, f.sources[1], "track_id,track_name,artist_name,duration_ms\n9,New,Artist,100000\n")
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(f.sources[1], later, later); err != nil {
		t.Fatal(err)
	}

	second, err := f.cache.Get(ctx, f.sources, false)
	if err != nil {
		t.Fatal(err)
	}
	if second.Hit || second.Fingerprint == first.Fingerprint {
		t.Errorf("expected a rebuild under a new fingerprint, got hit=%v fp=%s", second.Hit, second.Fingerprint)
	}
	if f.store.Exists(first.Fingerprint) {
		t.Error("stale artifacts not pruned")
	}
}

func TestGet_HalfPairIsMiss(t *testing.T) {
	t.Parallel()
	f := setup(t, Options{})
	ctx := context.Background()

	first, err := f.cache.Get(ctx, f.sources, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(f.store.IndexPath(first.Fingerprint)); err != nil {
		t.Fatal(err)
	}

	second, err := f.cache.Get(ctx, f.sources, false)
	if err != nil {
		t.Fatalf("Get() with half pair error = %v", err)
	}
	if second.Hit {
		t.Error("half pair reported as hit")
	}
	if !f.store.Exists(first.Fingerprint) {
		t.Error("rebuild did not restore the pair")
	}
}

func TestGet_CorruptArtifactsRebuild(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		corrupt func(s *storage.Store, fp string) string
	}{
		{"index", func(s *storage.Store, fp string) string { return s.IndexPath(fp) }},
		{"catalog", func(s *storage.Store, fp string) string { return s.CatalogPath(fp) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := setup(t, Options{})
			ctx := context.Background()

			first, err := f.cache.Get(ctx, f.sources, false)
			if err != nil {
				t.Fatal(err)
			}
			writeCSV(t, tt.corrupt(f.store, first.Fingerprint), "garbage")

			second, err := f.cache.Get(ctx, f.sources, false)
			if err != nil {
				t.Fatalf("Get() after corruption error = %v", err)
			}
			if second.Hit || second.Catalog.Len() != 3 {
				t.Errorf("Get() = hit %v rows %d", second.Hit, second.Catalog.Len())
			}
		})
	}
}

func TestGet_Force(t *testing.T) {
	t.Parallel()
	f := setup(t, Options{})
	ctx := context.Background()

	if _, err := f.cache.Get(ctx, f.sources, false); err != nil {
		t.Fatal(err)
	}
	res, err := f.cache.Get(ctx, f.sources, true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Hit || f.backend.reads.Load() != 4 {
		t.Errorf("forced Get() hit=%v reads=%d", res.Hit, f.backend.reads.Load())
	}
}

func TestGet_Errors(t *testing.T) {
	t.Parallel()
	f := setup(t, Options{})
	ctx := context.Background()

	if _, err := f.cache.Get(ctx, nil, false); !errors.Is(err, ErrNoSources) {
		t.Errorf("Get(nil) error = %v, want ErrNoSources", err)
	}
	if _, err := f.cache.Get(ctx, []string{filepath.Join(t.TempDir(), "missing.csv")}, false); err == nil {
		t.Error("Get() of a missing source should fail")
	}

	bad := filepath.Join(t.TempDir(), "tracks.xlsx")
	writeCSV(t, bad, "x")
	if _, err := f.cache.Get(ctx, []string{bad}, false); !errors.Is(err, database.ErrUnsupportedFormat) {
		t.Errorf("Get() of an unsupported source error = %v", err)
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()
	f := setup(t, Options{})

	fp, err := f.cache.Fingerprint(f.sources)
	if err != nil {
		t.Fatal(err)
	}
	res, err := f.cache.Get(context.Background(), f.sources, false)
	if err != nil {
		t.Fatal(err)
	}
	if fp != res.Fingerprint {
		t.Errorf("Fingerprint() = %s, Get() used %s", fp, res.Fingerprint)
	}
}
