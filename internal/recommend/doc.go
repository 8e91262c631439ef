// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package recommend ranks catalog tracks by similarity to a set of seed
// tracks.
//
// A request flows through these stages:
//
//  1. Seeds are resolved to catalog rows (catalog.Matcher).
//  2. Matched rows are standardized (features.Scaler) and collapsed into one
//     taste profile (BuildProfile).
//  3. The catalog is filtered (FilterCandidates): seeds, popularity bounds
//     and release year range.
//  4. Feature weights are applied to profile and candidates alike, and both
//     are optionally projected onto principal components.
//  5. Candidates are scored by cosine similarity (Cosine) and the best are
//     returned (TopN).
//
// The Engine holds an immutable Snapshot (catalog, index, fitted scaler,
// standardized catalog matrix) behind an atomic pointer. Installing a new
// catalog swaps the pointer; requests in flight keep the snapshot they
// started with.
package recommend
