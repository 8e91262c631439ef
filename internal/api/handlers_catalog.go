// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/encore/internal/catalog"
	"github.com/tomtom215/encore/internal/models"
	"github.com/tomtom215/encore/internal/recommend"
)

// CatalogStatus reports the active snapshot, the latest build record and
// the response cache counters.
func (h *Handler) CatalogStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	cs := h.engine.CacheStats()
	status := models.CatalogStatus{
		Sources: []string{},
		CacheStats: models.ResponseCacheStats{
			Entries: cs.Entries,
			Hits:    cs.Hits,
			Misses:  cs.Misses,
			HitRate: hitRate(cs.Hits, cs.Misses),
		},
	}
	if snap := h.engine.Snapshot(); snap != nil {
		loaded := snap.LoadedAt
		status.Ready = true
		status.Fingerprint = snap.Fingerprint()
		status.Tracks = snap.Catalog.Len()
		status.LoadedAt = &loaded
	}

	if h.catalog != nil {
		if src := h.catalog.Sources(); len(src) > 0 {
			status.Sources = src
		}
		if m := h.catalog.Manifest(); m != nil {
			latest, err := m.Latest(r.Context())
			if err != nil {
				respondErr(w, r, err)
				return
			}
			status.LatestBuild = latest
		}
	}

	respondSuccess(w, r, start, status)
}

func hitRate(hits, misses int64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses) * 100
}

// CatalogStats returns descriptor statistics of the active catalog.
func (h *Handler) CatalogStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	snap := h.engine.Snapshot()
	if snap == nil {
		respondErr(w, r, recommend.ErrCatalogNotReady)
		return
	}
	respondSuccess(w, r, start, h.statsFor(snap))
}

// statsFor computes catalog statistics once per fingerprint.
func (h *Handler) statsFor(snap *recommend.Snapshot) *catalog.Stats {
	h.statsMu.Lock()
	defer h.statsMu.Unlock()

	fp := snap.Fingerprint()
	if h.stats == nil || h.statsFP != fp {
		s := catalog.ComputeStats(snap.Catalog)
		h.stats = &s
		h.statsFP = fp
	}
	return h.stats
}

// CatalogRebuild forces a rebuild from the configured sources.
func (h *Handler) CatalogRebuild(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.catalog == nil {
		respondErr(w, r, ErrRebuildUnavailable)
		return
	}

	res, err := h.catalog.Rebuild(r.Context())
	if err != nil {
		status, code, message := classify(err)
		if code == CodeInternal {
			code, message = CodeBuildFailed, "Catalog rebuild failed"
		}
		respondError(w, r, status, code, message, err)
		return
	}

	respondSuccess(w, r, start, models.RebuildResult{
		Fingerprint: res.Fingerprint,
		Tracks:      res.Catalog.Len(),
		DurationMS:  time.Since(start).Milliseconds(),
		Report:      res.Report,
	})
}
