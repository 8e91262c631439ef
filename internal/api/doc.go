// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

/*
Package api provides the HTTP REST API layer for Encore.

Routes (chi, see SetupChi):

	GET  /api/v1/health/live        liveness probe, always 200
	GET  /api/v1/health/ready       200 once a catalog snapshot is installed, else 503
	POST /api/v1/recommendations    rank catalog tracks against a seed playlist
	POST /api/v1/match              resolve seeds without ranking
	GET  /api/v1/catalog/status     active fingerprint, latest build, response cache stats
	GET  /api/v1/catalog/stats      descriptor statistics of the active catalog
	POST /api/v1/catalog/rebuild    force a catalog rebuild and install it
	GET  /metrics                   Prometheus exposition

Every JSON endpoint answers with models.APIResponse. Errors carry a stable
code in Error.Code:

	VALIDATION_ERROR      400  request failed validation
	INVALID_JSON          400  body is not a JSON object of the expected shape
	UNSUPPORTED_METHOD    400  profile_method is recognized but not implemented
	EMPTY_SEED_SET        422  no seed matched the catalog
	NO_SOURCES            409  rebuild requested without configured sources
	CATALOG_NOT_READY     503  no catalog installed yet
	REBUILD_UNAVAILABLE   501  the server runs without a catalog controller
	REQUEST_TIMEOUT       504  the request exceeded recommend.request_timeout
	CATALOG_BUILD_FAILED  500  a rebuild could not complete
	RATE_LIMITED          429  too many requests from one client
	INTERNAL_ERROR        500  anything else

Middleware order: request ID, RealIP, Recoverer and CORS globally; rate
limiting, security headers, Prometheus instrumentation and gzip
compression per route group.
*/
package api
