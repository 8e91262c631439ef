// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/encore/internal/models"
	"github.com/tomtom215/encore/internal/recommend"
)

// MatchRequest is the body of POST /api/v1/match.
type MatchRequest struct {
	Seeds []recommend.Seed `json:"seeds" validate:"required,min=1,max=1000,dive"`
}

// MatchResponse reports how each seed resolved.
type MatchResponse struct {
	Seeds   []recommend.SeedMatch `json:"seeds"`
	Matched int                   `json:"matched_seeds"`
}

// Recommendations ranks catalog tracks against the seed playlist in the body.
//
// Request body: recommend.Request. Response data: recommend.Response.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req recommend.Request
	if apiErr := h.decodeJSONBody(w, r, &req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	resp, err := h.engine.Recommend(ctx, req)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	md := metadata(r, start)
	md.Cached = resp.Cached
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     resp,
		Metadata: md,
	})
}

// Match resolves seeds against the active catalog without ranking.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req MatchRequest
	if apiErr := h.decodeJSONBody(w, r, &req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	matches, err := h.engine.MatchSeeds(ctx, req.Seeds)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	out := MatchResponse{Seeds: matches}
	for i := range matches {
		if matches[i].Matched() {
			out.Matched++
		}
	}
	respondSuccess(w, r, start, out)
}
