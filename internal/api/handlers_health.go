// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/encore/internal/models"
)

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of the catalog.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, time.Time{}, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 200 OK once a catalog snapshot is installed and 503 before.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	health := models.HealthStatus{
		Status:  "not_ready",
		Version: h.version,
		Uptime:  time.Since(h.startTime).Seconds(),
	}

	status := http.StatusServiceUnavailable
	if snap := h.engine.Snapshot(); snap != nil {
		health.Status = "ready"
		health.Fingerprint = snap.Fingerprint()
		health.Tracks = snap.Catalog.Len()
		status = http.StatusOK
	}

	respondJSON(w, status, &models.APIResponse{
		Status:   "success",
		Data:     health,
		Metadata: metadata(r, time.Time{}),
	})
}
