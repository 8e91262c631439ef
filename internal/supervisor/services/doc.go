// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package services provides suture.Service wrappers for Encore's long-running
// components: the catalog refresher and the HTTP server.
package services
