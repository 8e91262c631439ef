// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/encore/internal/catalog"
	"github.com/tomtom215/encore/internal/catalogcache"
	"github.com/tomtom215/encore/internal/storage"
)

type fakeLoader struct {
	mu     sync.Mutex
	fp     string
	getErr error
	gets   []bool // forceRebuild of each Get
}

func (f *fakeLoader) setFingerprint(fp string) {
	f.mu.Lock()
	f.fp = fp
	f.mu.Unlock()
}

func (f *fakeLoader) Fingerprint([]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fp, nil
}

func (f *fakeLoader) Get(_ context.Context, _ []string, force bool) (*catalogcache.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets = append(f.gets, force)
	if f.getErr != nil {
		return nil, f.getErr
	}
	cat := &catalog.Catalog{Fingerprint: f.fp}
	return &catalogcache.Result{Catalog: cat, Index: catalog.BuildIndex(cat), Fingerprint: f.fp, Hit: !force}, nil
}

func (f *fakeLoader) Manifest() storage.Manifest { return storage.NewInMemoryManifest() }

func (f *fakeLoader) getCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.gets)
}

type fakeInstaller struct {
	mu        sync.Mutex
	installed []string
	err       error
}

func (f *fakeInstaller) SetCatalog(cat *catalog.Catalog, _ *catalog.MatchIndex) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.installed = append(f.installed, cat.Fingerprint)
	return nil
}

func (f *fakeInstaller) list() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.installed...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func serve(t *testing.T, svc *CatalogService) (cancel func() error) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	return func() error {
		stop()
		select {
		case err := <-errCh:
			return err
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return")
			return nil
		}
	}
}

func TestCatalogService_WarmAndPoll(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{fp: "aaaa"}
	inst := &fakeInstaller{}
	svc := NewCatalogService(loader, inst, CatalogServiceConfig{
		Sources:         []string{"a.csv"},
		WarmOnStartup:   true,
		RefreshInterval: 10 * time.Millisecond,
	}, zerolog.Nop())
	stop := serve(t, svc)

	waitFor(t, "warm install", func() bool { return svc.Fingerprint() == "aaaa" })

	// unchanged sources are not reloaded
	time.Sleep(50 * time.Millisecond)
	if n := loader.getCount(); n != 1 {
		t.Errorf("Get called %d times with unchanged sources, want 1", n)
	}

	loader.setFingerprint("bbbb")
	waitFor(t, "refresh install", func() bool { return svc.Fingerprint() == "bbbb" })

	if err := stop(); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if got := inst.list(); len(got) != 2 || got[0] != "aaaa" || got[1] != "bbbb" {
		t.Errorf("installed = %v, want [aaaa bbbb]", got)
	}
}

func TestCatalogService_Rebuild(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{fp: "aaaa"}
	inst := &fakeInstaller{}
	svc := NewCatalogService(loader, inst, CatalogServiceConfig{Sources: []string{"a.csv"}}, zerolog.Nop())

	for i := 0; i < 2; i++ {
		res, err := svc.Rebuild(context.Background())
		if err != nil {
			t.Fatalf("Rebuild() error = %v", err)
		}
		if res.Fingerprint != "aaaa" {
			t.Errorf("Rebuild() fingerprint = %q", res.Fingerprint)
		}
	}
	if got := inst.list(); len(got) != 2 {
		t.Errorf("forced rebuilds installed %v, want two installs", got)
	}
	for i, force := range loader.gets {
		if !force {
			t.Errorf("Get #%d not forced", i)
		}
	}
	if got := svc.Sources(); len(got) != 1 || got[0] != "a.csv" {
		t.Errorf("Sources() = %v", got)
	}
	if svc.Manifest() == nil {
		t.Error("Manifest() = nil")
	}
}

func TestCatalogService_Failures(t *testing.T) {
	t.Parallel()

	t.Run("install failure keeps previous catalog", func(t *testing.T) {
		t.Parallel()
		loader := &fakeLoader{fp: "aaaa"}
		inst := &fakeInstaller{}
		svc := NewCatalogService(loader, inst, CatalogServiceConfig{Sources: []string{"a.csv"}}, zerolog.Nop())

		if _, err := svc.Rebuild(context.Background()); err != nil {
			t.Fatal(err)
		}
		loader.setFingerprint("bbbb")
		inst.mu.Lock()
		inst.err = errors.New("missing feature column")
		inst.mu.Unlock()

		if _, err := svc.Rebuild(context.Background()); err == nil {
			t.Fatal("Rebuild() succeeded with a failing installer")
		}
		if got := svc.Fingerprint(); got != "aaaa" {
			t.Errorf("Fingerprint() = %q, want aaaa", got)
		}
	})

	t.Run("warm failure does not stop the service", func(t *testing.T) {
		t.Parallel()
		loader := &fakeLoader{fp: "aaaa", getErr: errors.New("read a.csv: no such file")}
		svc := NewCatalogService(loader, &fakeInstaller{}, CatalogServiceConfig{
			Sources:         []string{"a.csv"},
			WarmOnStartup:   true,
			RefreshInterval: 10 * time.Millisecond,
		}, zerolog.Nop())
		stop := serve(t, svc)

		// the poll keeps retrying because nothing is installed
		waitFor(t, "retries", func() bool { return loader.getCount() >= 3 })
		if err := stop(); !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	})

	t.Run("no sources", func(t *testing.T) {
		t.Parallel()
		loader := &fakeLoader{fp: "aaaa"}
		svc := NewCatalogService(loader, &fakeInstaller{}, CatalogServiceConfig{
			WarmOnStartup:   true,
			RefreshInterval: 10 * time.Millisecond,
		}, zerolog.Nop())
		stop := serve(t, svc)
		time.Sleep(30 * time.Millisecond)
		if err := stop(); !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
		if n := loader.getCount(); n != 0 {
			t.Errorf("Get called %d times without sources", n)
		}
	})
}
