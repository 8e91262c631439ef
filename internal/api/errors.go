// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/encore/internal/catalogcache"
	"github.com/tomtom215/encore/internal/features"
	"github.com/tomtom215/encore/internal/recommend"
)

// Error codes returned in models.APIError.Code.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeInvalidJSON     = "INVALID_JSON"
	CodeUnsupported     = "UNSUPPORTED_METHOD"
	CodeEmptySeedSet    = "EMPTY_SEED_SET"
	CodeNoSources       = "NO_SOURCES"
	CodeNotReady        = "CATALOG_NOT_READY"
	CodeTimeout         = "REQUEST_TIMEOUT"
	CodeBuildFailed     = "CATALOG_BUILD_FAILED"
	CodeInternal        = "INTERNAL_ERROR"
	CodeRateLimited     = "RATE_LIMITED"
	CodeUnavailable     = "REBUILD_UNAVAILABLE"
)

// ErrRebuildUnavailable is returned when the server has no catalog controller.
var ErrRebuildUnavailable = errors.New("catalog rebuild is not available")

// classify maps an engine or cache error to a status, a code and a client
// message. Internal errors get a generic message.
func classify(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, recommend.ErrEmptySeedSet):
		return http.StatusUnprocessableEntity, CodeEmptySeedSet, "No seed track matched the catalog"
	case errors.Is(err, recommend.ErrUnsupportedMethod):
		return http.StatusBadRequest, CodeUnsupported, err.Error()
	case errors.Is(err, recommend.ErrCatalogNotReady):
		return http.StatusServiceUnavailable, CodeNotReady, "Catalog is not loaded yet"
	case errors.Is(err, recommend.ErrInvalidRequest),
		errors.Is(err, features.ErrUnknownFeature),
		errors.Is(err, features.ErrInvalidWeight):
		return http.StatusBadRequest, CodeValidation, err.Error()
	case errors.Is(err, catalogcache.ErrNoSources):
		return http.StatusConflict, CodeNoSources, "No catalog sources are configured"
	case errors.Is(err, ErrRebuildUnavailable):
		return http.StatusNotImplemented, CodeUnavailable, "Catalog rebuild is not available"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeTimeout, "Request timed out"
	default:
		return http.StatusInternalServerError, CodeInternal, "Internal server error"
	}
}
