// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Package database wraps an in-process DuckDB instance used to load source
// datasets of any tabular format and to read and write the columnar
// catalog artifact.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

// defaultQueryTimeout bounds queries whose context carries no deadline.
const defaultQueryTimeout = 5 * time.Minute

// Config tunes the DuckDB instance.
type Config struct {
	// Threads caps DuckDB worker threads. Zero uses the CPU count.
	Threads int

	// MaxMemory is a DuckDB memory limit such as "2GB". Empty leaves the
	// DuckDB default.
	MaxMemory string
}

// DB wraps an in-memory DuckDB connection pool.
type DB struct {
	conn *sql.DB
	cfg  Config
}

// Open starts an in-memory DuckDB instance.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	// extensions bundled with the driver (parquet, json) still load; no
	// network installs are attempted
	params := []string{
		fmt.Sprintf("threads=%d", threads),
		"autoinstall_known_extensions=false",
	}
	if cfg.MaxMemory != "" {
		params = append(params, "max_memory="+cfg.MaxMemory)
	}

	conn, err := sql.Open("duckdb", ":memory:?"+strings.Join(params, "&"))
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	conn.SetMaxIdleConns(2)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	db := &DB{conn: conn, cfg: cfg}
	if err := db.Ping(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}
	return db, nil
}

// Close releases the DuckDB instance.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// ensureContext adds the default timeout to contexts without a deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), defaultQueryTimeout)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, defaultQueryTimeout)
	}
	return ctx, func() {}
}

// quoteLiteral renders s as a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// quoteIdent renders s as a SQL identifier.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
