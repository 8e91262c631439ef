// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package database

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tomtom215/encore/internal/catalog"
)

// sourceReader returns the DuckDB table function reading path, chosen by
// file extension. CSV and TSV are read as text so that no value is lost to
// type sniffing; the catalog normalizer parses each field itself.
func sourceReader(path string) (string, error) {
	lit := quoteLiteral(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return fmt.Sprintf("read_csv_auto(%s, header=true, all_varchar=true)", lit), nil
	case ".tsv", ".tab":
		return fmt.Sprintf("read_csv_auto(%s, header=true, all_varchar=true, delim='\t')", lit), nil
	case ".parquet", ".pq":
		return fmt.Sprintf("read_parquet(%s)", lit), nil
	case ".json", ".ndjson", ".jsonl":
		return fmt.Sprintf("read_json_auto(%s)", lit), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// projection casts columns whose driver values the normalizer cannot read
// (decimals, huge integers, nested and binary types) to DOUBLE or VARCHAR.
func (db *DB) projection(ctx context.Context, reader string) ([]string, string, error) {
	rows, err := db.conn.QueryContext(ctx, "DESCRIBE SELECT * FROM "+reader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to describe source: %w", err)
	}
	defer closeWithLog(rows, "describe rows")

	var (
		names []string
		exprs []string
	)
	for rows.Next() {
		var name, typ string
		var null, key, dflt, extra any
		if err := rows.Scan(&name, &typ, &null, &key, &dflt, &extra); err != nil {
			return nil, "", fmt.Errorf("failed to scan column description: %w", err)
		}
		names = append(names, name)

		col := quoteIdent(name)
		upper := strings.ToUpper(typ)
		switch {
		case strings.HasPrefix(upper, "DECIMAL"), upper == "HUGEINT", upper == "UHUGEINT", upper == "UBIGINT":
			exprs = append(exprs, fmt.Sprintf("CAST(%s AS DOUBLE) AS %s", col, col))
		case strings.HasSuffix(upper, "[]") && strings.Contains(upper, "VARCHAR"):
			exprs = append(exprs, col)
		case strings.HasPrefix(upper, "STRUCT"), strings.HasPrefix(upper, "MAP"),
			strings.HasSuffix(upper, "[]"), upper == "UUID", upper == "BLOB",
			upper == "INTERVAL", upper == "JSON", strings.HasPrefix(upper, "TIME WITH"),
			upper == "TIME", upper == "BIT":
			exprs = append(exprs, fmt.Sprintf("CAST(%s AS VARCHAR) AS %s", col, col))
		default:
			exprs = append(exprs, col)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("failed to describe source: %w", err)
	}
	if len(names) == 0 {
		return nil, "", fmt.Errorf("source has no columns")
	}
	return names, strings.Join(exprs, ", "), nil
}

// ReadTable loads every row of a source file.
//
// Supported formats are CSV, TSV, Parquet and JSON (array or newline
// delimited). Row order follows the file.
func (db *DB) ReadTable(ctx context.Context, path string) (catalog.RawTable, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	reader, err := sourceReader(path)
	if err != nil {
		return catalog.RawTable{}, err
	}

	columns, exprs, err := db.projection(ctx, reader)
	if err != nil {
		return catalog.RawTable{}, fmt.Errorf("%s: %w", path, err)
	}

	rows, err := db.conn.QueryContext(ctx, "SELECT "+exprs+" FROM "+reader)
	if err != nil {
		return catalog.RawTable{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer closeWithLog(rows, "source rows")

	tbl := catalog.RawTable{Source: path, Columns: columns}
	for rows.Next() {
		vals := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return catalog.RawTable{}, fmt.Errorf("failed to scan %s: %w", path, err)
		}
		tbl.Rows = append(tbl.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return catalog.RawTable{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return tbl, nil
}
