// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/encore/internal/logging"
)

var (
	// ErrUnsupportedFormat is returned for source files whose extension has
	// no DuckDB reader.
	ErrUnsupportedFormat = errors.New("unsupported source format")
)

// closeWithLog closes a resource and logs any error
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource, ignoring errors
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
