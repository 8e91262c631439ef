// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package metrics

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Collectors are process-global, so tests assert on deltas and use label
// values no other test touches.

func TestRecordCacheLookup(t *testing.T) {
	before := testutil.ToFloat64(CatalogCacheLookups.WithLabelValues(CacheInvalid))
	RecordCacheLookup(CacheInvalid)
	RecordCacheLookup(CacheInvalid)
	if got := testutil.ToFloat64(CatalogCacheLookups.WithLabelValues(CacheInvalid)) - before; got != 2 {
		t.Errorf("invalid lookups delta = %v, want 2", got)
	}
}

func TestRecordCatalogBuild(t *testing.T) {
	errsBefore := testutil.ToFloat64(CatalogBuildErrors)
	rowsBefore := testutil.ToFloat64(CatalogSourceRows)
	isrcBefore := testutil.ToFloat64(CatalogMergeDropped.WithLabelValues("isrc"))
	tempoBefore := testutil.ToFloat64(CatalogParseFailures.WithLabelValues("tempo"))

	RecordCatalogBuild(2*time.Second, 120,
		map[string]int{"id": 3, "isrc": 2},
		map[string]int{"tempo": 4},
		nil)

	if got := testutil.ToFloat64(CatalogSourceRows) - rowsBefore; got != 120 {
		t.Errorf("source rows delta = %v, want 120", got)
	}
	if got := testutil.ToFloat64(CatalogMergeDropped.WithLabelValues("isrc")) - isrcBefore; got != 2 {
		t.Errorf("isrc dropped delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(CatalogParseFailures.WithLabelValues("tempo")) - tempoBefore; got != 4 {
		t.Errorf("tempo failures delta = %v, want 4", got)
	}

	RecordCatalogBuild(time.Second, 999, map[string]int{"isrc": 50}, nil, errors.New("read failed"))
	if got := testutil.ToFloat64(CatalogBuildErrors) - errsBefore; got != 1 {
		t.Errorf("errors delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(CatalogMergeDropped.WithLabelValues("isrc")) - isrcBefore; got != 2 {
		t.Error("failed build recorded merge counters")
	}
}

func TestSetActiveCatalog(t *testing.T) {
	SetActiveCatalog(42)
	if got := testutil.ToFloat64(CatalogRows); got != 42 {
		t.Errorf("rows = %v, want 42", got)
	}
	if testutil.ToFloat64(CatalogLoadedTimestamp) <= 0 {
		t.Error("loaded timestamp not set")
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("test-1.2.3")
	if got := testutil.ToFloat64(AppInfo.WithLabelValues("test-1.2.3", runtime.Version())); got != 1 {
		t.Errorf("app info = %v, want 1", got)
	}
}

func TestRecordSeedMatchAndRecommendation(t *testing.T) {
	fuzzyBefore := testutil.ToFloat64(SeedMatches.WithLabelValues("fuzzy"))
	okBefore := testutil.ToFloat64(RecommendRequests.WithLabelValues("no_candidates"))

	RecordSeedMatch("fuzzy")
	RecordRecommendation("no_candidates", 5*time.Millisecond, 0)
	RecordRecommendation("no_candidates", time.Millisecond, -1)

	if got := testutil.ToFloat64(SeedMatches.WithLabelValues("fuzzy")) - fuzzyBefore; got != 1 {
		t.Errorf("fuzzy delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(RecommendRequests.WithLabelValues("no_candidates")) - okBefore; got != 2 {
		t.Errorf("requests delta = %v, want 2", got)
	}
}

func TestTrackActiveRequest_Concurrent(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			TrackActiveRequest(true)
			RecordAPIRequest("GET", "/api/v1/health", "200", time.Millisecond)
			TrackActiveRequest(false)
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active requests = %v, want %v", got, before)
	}
	if testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/health", "200")) < 50 {
		t.Error("API requests not counted")
	}
}
