// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package middleware provides HTTP middleware for the Encore API.
//
// All middleware has the func(http.Handler) http.Handler shape used by chi:
//
//   - RequestID: assigns or propagates X-Request-ID and stores it in the
//     logging context so every log line of the request carries it
//   - PrometheusMetrics: request count, latency histogram and active
//     requests, labeled by chi route pattern
//   - Compression: gzip for clients that send Accept-Encoding: gzip
//
// Usage:
//
//	r := chi.NewRouter()
//	r.Use(middleware.RequestID)
//	r.Group(func(r chi.Router) {
//	    r.Use(middleware.PrometheusMetrics, middleware.Compression)
//	    r.Post("/api/v1/recommendations", h.Recommend)
//	})
package middleware
