// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/encore/internal/catalog"
)

const (
	// latestKey holds the most recent build record.
	latestKey = "catalog:build:latest"

	// historyPrefix prefixes per-build records, ordered by build time.
	historyPrefix = "catalog:build:at:"
)

// BuildRecord describes one catalog build.
type BuildRecord struct {
	Fingerprint string              `json:"fingerprint"`
	Sources     []SourceDescriptor  `json:"sources"`
	BuiltAt     time.Time           `json:"built_at"`
	DurationMS  int64               `json:"duration_ms"`
	Rows        int                 `json:"rows"`
	Report      catalog.MergeReport `json:"report"`
	Pruned      int                 `json:"pruned_files,omitempty"`
}

// Manifest records catalog builds.
type Manifest interface {
	Record(ctx context.Context, rec *BuildRecord) error
	// Latest returns nil, nil when nothing was recorded yet.
	Latest(ctx context.Context) (*BuildRecord, error)
	// History returns up to limit records, newest first.
	History(ctx context.Context, limit int) ([]BuildRecord, error)
	Close() error
}

// BadgerManifest implements Manifest on BadgerDB so build history survives
// restarts.
type BadgerManifest struct {
	db    *badger.DB
	owned bool
}

// OpenBadgerManifest opens (or creates) a BadgerDB at path.
func OpenBadgerManifest(path string) (*BadgerManifest, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open manifest store: %w", err)
	}
	return &BadgerManifest{db: db, owned: true}, nil
}

// NewBadgerManifest wraps an already open BadgerDB. Close leaves it open.
func NewBadgerManifest(db *badger.DB) *BadgerManifest {
	return &BadgerManifest{db: db}
}

// historyKey sorts lexicographically in build order.
func historyKey(t time.Time) []byte {
	return []byte(fmt.Sprintf("%s%020d", historyPrefix, t.UnixNano()))
}

// Record persists rec as the latest build and appends it to the history.
func (m *BadgerManifest) Record(ctx context.Context, rec *BuildRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal build record: %w", err)
	}

	return m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(latestKey), data); err != nil {
			return err
		}
		return txn.Set(historyKey(rec.BuiltAt), data)
	})
}

// Latest retrieves the last recorded build.
func (m *BadgerManifest) Latest(ctx context.Context) (*BuildRecord, error) {
	var (
		rec   BuildRecord
		found bool
	)

	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(latestKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load latest build: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &rec, nil
}

// History iterates build records newest first.
func (m *BadgerManifest) History(ctx context.Context, limit int) ([]BuildRecord, error) {
	var out []BuildRecord

	err := m.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(historyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// reverse iteration seeks from just past the prefix range
		seek := append([]byte(historyPrefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix); it.Next() {
			if limit > 0 && len(out) >= limit {
				break
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec BuildRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load build history: %w", err)
	}
	return out, nil
}

// Close closes the underlying database when this manifest opened it.
func (m *BadgerManifest) Close() error {
	if !m.owned {
		return nil
	}
	return m.db.Close()
}

// InMemoryManifest implements Manifest without persistence.
type InMemoryManifest struct {
	mu      sync.RWMutex
	records []BuildRecord
}

// NewInMemoryManifest creates an empty in-memory manifest.
func NewInMemoryManifest() *InMemoryManifest {
	return &InMemoryManifest{}
}

// Record stores a copy of rec.
func (m *InMemoryManifest) Record(_ context.Context, rec *BuildRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *rec)
	return nil
}

// Latest returns a copy of the most recent record.
func (m *InMemoryManifest) Latest(_ context.Context) (*BuildRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.records) == 0 {
		return nil, nil
	}
	rec := m.records[len(m.records)-1]
	return &rec, nil
}

// History returns up to limit records, newest first.
func (m *InMemoryManifest) History(_ context.Context, limit int) ([]BuildRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]BuildRecord, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, m.records[i])
	}
	return out, nil
}

// Close is a no-op.
func (m *InMemoryManifest) Close() error {
	return nil
}
