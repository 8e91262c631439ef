// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"
)

// fingerprintLen is the number of hex characters kept from the digest.
const fingerprintLen = 16

// SourceDescriptor identifies one source file version.
type SourceDescriptor struct {
	Path  string `json:"path"`
	Size  int64  `json:"size"`
	MTime int64  `json:"mtime"`
}

// Describe stats every source path. Paths are made absolute and the result
// is sorted by path.
func Describe(paths []string) ([]SourceDescriptor, error) {
	out := make([]SourceDescriptor, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve source path %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat source %s: %w", abs, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("source %s is a directory", abs)
		}
		out = append(out, SourceDescriptor{
			Path:  abs,
			Size:  info.Size(),
			MTime: info.ModTime().Unix(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// FingerprintOf hashes descriptors. The input must already be sorted.
func FingerprintOf(descs []SourceDescriptor) (string, error) {
	data, err := json.Marshal(descs)
	if err != nil {
		return "", fmt.Errorf("encode source descriptors: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:fingerprintLen], nil
}

// Fingerprint returns the cache key for a set of source files: a truncated
// SHA-256 over their absolute paths, sizes and modification times. Any
// change in size or mtime yields a different fingerprint; argument order
// does not matter.
func Fingerprint(paths []string) (string, error) {
	descs, err := Describe(paths)
	if err != nil {
		return "", err
	}
	return FingerprintOf(descs)
}
