// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide. Field names in error
// messages are taken from json tags so they match the request body the
// client sent.
//
// # Custom Validators
//
//   - feature_name: the string names one of the recommendation features
//     (danceability, energy, ... duration_ms)
//   - catalog.Seed struct rule: a seed carries an id, or a title and at
//     least one artist
//
// # Usage
//
//	var req recommend.Request
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// # Thread Safety
//
// GetValidator and ValidateStruct are safe for concurrent use.
package validation
