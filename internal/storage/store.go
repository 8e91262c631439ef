// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package storage provides persistence for catalog build artifacts.
//
// Each catalog build is identified by a fingerprint of its source files and
// produces two paired artifacts in the cache directory:
//
//	merged_<fingerprint>.parquet   the catalog (written by the database package)
//	indexes_<fingerprint>.idx      the MatchIndex (written here)
//
// # Index Format
//
// Indexes are gob encoded, checksummed with SHA-256 and gzip compressed,
// then stored together with their metadata as a single gob value.
//
// # Atomicity
//
// Artifacts are written to a temporary file in the same directory and
// renamed into place, so a reader never observes a partial file.
package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/encore/internal/catalog"
)

const (
	catalogPrefix = "merged_"
	catalogSuffix = ".parquet"
	indexPrefix   = "indexes_"
	indexSuffix   = ".idx"
	tempMarker    = ".tmp-"
)

// ErrChecksumMismatch is returned when a stored index fails verification.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// IndexMetadata describes a stored index artifact.
type IndexMetadata struct {
	Fingerprint string    `json:"fingerprint"`
	Rows        int       `json:"rows"`
	BuiltAt     time.Time `json:"built_at"`
	Checksum    string    `json:"checksum"`
	SizeBytes   int64     `json:"size_bytes"`
}

// storedFile is the on-disk format for index files.
type storedFile struct {
	Metadata       IndexMetadata
	CompressedData []byte
}

// Store manages catalog artifacts under a single directory.
type Store struct {
	baseDir string
	mu      sync.RWMutex
}

// NewStore creates the cache directory if needed.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for cache storage
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.baseDir
}

// CatalogPath is where the catalog artifact for fingerprint lives.
func (s *Store) CatalogPath(fingerprint string) string {
	return filepath.Join(s.baseDir, catalogPrefix+fingerprint+catalogSuffix)
}

// IndexPath is where the index artifact for fingerprint lives.
func (s *Store) IndexPath(fingerprint string) string {
	return filepath.Join(s.baseDir, indexPrefix+fingerprint+indexSuffix)
}

// Exists reports whether both paired artifacts for fingerprint are present.
func (s *Store) Exists(fingerprint string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return isFile(s.CatalogPath(fingerprint)) && isFile(s.IndexPath(fingerprint))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// TempPath returns a unique temporary sibling of final. The extension is
// preserved so format sniffing tools still recognize the file.
func (s *Store) TempPath(final string) string {
	ext := filepath.Ext(final)
	base := strings.TrimSuffix(filepath.Base(final), ext)
	return filepath.Join(filepath.Dir(final), base+tempMarker+uuid.NewString()+ext)
}

// Commit renames a finished temporary artifact into place.
func (s *Store) Commit(tmp, final string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("commit artifact %s: %w", filepath.Base(final), err)
	}
	return nil
}

// Discard removes a temporary artifact, ignoring a missing file.
func (s *Store) Discard(tmp string) {
	_ = os.Remove(tmp) //nolint:errcheck // best-effort cleanup
}

// EncodeIndex serializes an index to the on-disk format.
func EncodeIndex(fingerprint string, idx *catalog.MatchIndex, builtAt time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(idx.Snapshot()); err != nil {
		return nil, fmt.Errorf("encode index: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return nil, fmt.Errorf("compress index: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}

	sf := storedFile{
		Metadata: IndexMetadata{
			Fingerprint: fingerprint,
			Rows:        idx.Rows,
			BuiltAt:     builtAt.UTC(),
			Checksum:    hex.EncodeToString(hash[:]),
			SizeBytes:   int64(compressed.Len()),
		},
		CompressedData: compressed.Bytes(),
	}

	var out bytes.Buffer
	if err := gob.NewEncoder(&out).Encode(sf); err != nil {
		return nil, fmt.Errorf("write index file: %w", err)
	}
	return out.Bytes(), nil
}

// DecodeIndex parses and verifies an index file.
func DecodeIndex(r io.Reader) (*catalog.MatchIndex, *IndexMetadata, error) {
	var sf storedFile
	if err := gob.NewDecoder(r).Decode(&sf); err != nil {
		return nil, nil, fmt.Errorf("read index file: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, nil, fmt.Errorf("decompress index: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	checksum := hex.EncodeToString(hash[:])
	if checksum != sf.Metadata.Checksum {
		return nil, nil, fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, sf.Metadata.Checksum, checksum)
	}

	var snap catalog.IndexSnapshot
	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(&snap); err != nil {
		return nil, nil, fmt.Errorf("decode index: %w", err)
	}

	idx, err := catalog.IndexFromSnapshot(snap)
	if err != nil {
		return nil, nil, fmt.Errorf("decode index: %w", err)
	}
	return idx, &sf.Metadata, nil
}

// WriteIndex encodes idx into a temporary file next to the index artifact
// path and returns the temporary path for Commit.
func (s *Store) WriteIndex(ctx context.Context, fingerprint string, idx *catalog.MatchIndex, builtAt time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := EncodeIndex(fingerprint, idx, builtAt)
	if err != nil {
		return "", err
	}

	tmp := s.TempPath(s.IndexPath(fingerprint))
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		s.Discard(tmp)
		return "", fmt.Errorf("write index file: %w", err)
	}
	return tmp, nil
}

// LoadIndex reads and verifies the index artifact for fingerprint.
func (s *Store) LoadIndex(ctx context.Context, fingerprint string) (*catalog.MatchIndex, *IndexMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.IndexPath(fingerprint))
	if err != nil {
		return nil, nil, fmt.Errorf("open index file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	idx, meta, err := DecodeIndex(f)
	if err != nil {
		return nil, nil, err
	}
	if meta.Fingerprint != fingerprint {
		return nil, nil, fmt.Errorf("index belongs to fingerprint %s, not %s", meta.Fingerprint, fingerprint)
	}
	return idx, meta, nil
}

// List returns the fingerprints with a complete artifact pair, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var fps []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.Contains(name, tempMarker) {
			continue
		}
		if !strings.HasPrefix(name, catalogPrefix) || !strings.HasSuffix(name, catalogSuffix) {
			continue
		}
		fp := strings.TrimSuffix(strings.TrimPrefix(name, catalogPrefix), catalogSuffix)
		if isFile(s.IndexPath(fp)) {
			fps = append(fps, fp)
		}
	}
	sort.Strings(fps)
	return fps, nil
}

// Prune removes artifacts and leftover temporary files that do not belong
// to keep. It returns the number of files removed.
func (s *Store) Prune(ctx context.Context, keep string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, fmt.Errorf("read directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		isArtifact := (strings.HasPrefix(name, catalogPrefix) && strings.HasSuffix(name, catalogSuffix)) ||
			(strings.HasPrefix(name, indexPrefix) && strings.HasSuffix(name, indexSuffix))
		if !isArtifact {
			continue
		}
		if !strings.Contains(name, tempMarker) && strings.Contains(name, "_"+keep+".") {
			continue
		}
		if err := os.Remove(filepath.Join(s.baseDir, name)); err != nil {
			return removed, fmt.Errorf("delete artifact: %w", err)
		}
		removed++
	}
	return removed, nil
}
