// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package metrics holds the Prometheus collectors for catalog builds, seed
// matching, recommendation requests and the HTTP API. Collectors register
// on the default registry and are exposed at /metrics.
package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Catalog cache outcomes.
const (
	CacheHit     = "hit"
	CacheMiss    = "miss"
	CacheInvalid = "invalid"
	CacheForced  = "forced"
)

var (
	// Catalog
	CatalogBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "encore_catalog_build_duration_seconds",
			Help:    "Duration of catalog rebuilds from source files",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	CatalogBuildErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "encore_catalog_build_errors_total",
			Help: "Total number of failed catalog builds",
		},
	)

	CatalogCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encore_catalog_cache_lookups_total",
			Help: "Catalog cache lookups by outcome",
		},
		[]string{"outcome"}, // hit, miss, invalid, forced
	)

	CatalogRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "encore_catalog_rows",
			Help: "Number of tracks in the active catalog",
		},
	)

	CatalogSourceRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "encore_catalog_source_rows_total",
			Help: "Rows read from source files across all builds",
		},
	)

	CatalogMergeDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encore_catalog_merge_dropped_total",
			Help: "Rows removed while merging, by dedupe pass",
		},
		[]string{"pass"}, // id, isrc, key, exact
	)

	CatalogParseFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encore_catalog_parse_failures_total",
			Help: "Source values that could not be parsed and were nulled, by field",
		},
		[]string{"field"},
	)

	CatalogLoadedTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "encore_catalog_loaded_timestamp_seconds",
			Help: "Unix time the active catalog was installed",
		},
	)

	// Recommendation
	SeedMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encore_seed_matches_total",
			Help: "Seed resolution outcomes by match path",
		},
		[]string{"path"}, // id, key, fuzzy, none
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "encore_recommend_duration_seconds",
			Help:    "Duration of recommendation requests",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encore_recommend_requests_total",
			Help: "Recommendation requests by outcome",
		},
		[]string{"outcome"}, // ok, no_seeds, no_candidates, error, cached
	)

	RecommendCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "encore_recommend_candidates",
			Help:    "Candidate pool size after filtering",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
	)

	// API
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "encore_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encore_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "encore_api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "encore_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordCacheLookup counts one catalog cache lookup.
func RecordCacheLookup(outcome string) {
	CatalogCacheLookups.WithLabelValues(outcome).Inc()
}

// RecordCatalogBuild records a rebuild. Dropped maps a dedupe pass to the
// number of rows it removed; failures maps a field name to its parse failures.
func RecordCatalogBuild(duration time.Duration, rowsIn int, dropped map[string]int, failures map[string]int, err error) {
	CatalogBuildDuration.Observe(duration.Seconds())
	if err != nil {
		CatalogBuildErrors.Inc()
		return
	}
	CatalogSourceRows.Add(float64(rowsIn))
	for pass, n := range dropped {
		CatalogMergeDropped.WithLabelValues(pass).Add(float64(n))
	}
	for field, n := range failures {
		CatalogParseFailures.WithLabelValues(field).Add(float64(n))
	}
}

// SetActiveCatalog publishes the size of a newly installed catalog.
func SetActiveCatalog(rows int) {
	CatalogRows.Set(float64(rows))
	CatalogLoadedTimestamp.SetToCurrentTime()
}

// RecordSeedMatch counts one seed resolution.
func RecordSeedMatch(path string) {
	SeedMatches.WithLabelValues(path).Inc()
}

// RecordRecommendation records a finished recommendation request.
// A negative candidates count is not observed.
func RecordRecommendation(outcome string, duration time.Duration, candidates int) {
	RecommendRequests.WithLabelValues(outcome).Inc()
	RecommendDuration.Observe(duration.Seconds())
	if candidates >= 0 {
		RecommendCandidates.Observe(float64(candidates))
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// SetAppInfo publishes the running version.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}
