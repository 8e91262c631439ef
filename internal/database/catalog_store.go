// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	duckdb "github.com/duckdb/duckdb-go/v2"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/encore/internal/catalog"
	"github.com/tomtom215/encore/internal/logging"
)

// catalogSchema is the column layout of the Parquet catalog artifact.
// artists_raw holds a JSON array.
var catalogSchema = []struct {
	name string
	typ  string
}{
	{"position", "BIGINT"},
	{"external_id", "VARCHAR"},
	{"title_raw", "VARCHAR"},
	{"title_canon", "VARCHAR"},
	{"artists_raw", "VARCHAR"},
	{"artist_primary_canon", "VARCHAR"},
	{"duration_ms", "BIGINT"},
	{"explicit", "BOOLEAN"},
	{"popularity", "BIGINT"},
	{"release_year", "BIGINT"},
	{"isrc", "VARCHAR"},
	{"album", "VARCHAR"},
	{"danceability", "DOUBLE"},
	{"energy", "DOUBLE"},
	{"valence", "DOUBLE"},
	{"acousticness", "DOUBLE"},
	{"instrumentalness", "DOUBLE"},
	{"liveness", "DOUBLE"},
	{"speechiness", "DOUBLE"},
	{"tempo", "DOUBLE"},
	{"loudness", "DOUBLE"},
	{"key", "BIGINT"},
	{"mode", "BIGINT"},
}

func schemaDDL() string {
	cols := make([]string, len(catalogSchema))
	for i, c := range catalogSchema {
		cols[i] = quoteIdent(c.name) + " " + c.typ
	}
	return strings.Join(cols, ", ")
}

func schemaColumns() string {
	cols := make([]string, len(catalogSchema))
	for i, c := range catalogSchema {
		cols[i] = quoteIdent(c.name)
	}
	return strings.Join(cols, ", ")
}

// WriteCatalog writes cat to a ZSTD-compressed Parquet file at path,
// replacing any existing file. Callers wanting atomic replacement write to
// a temporary path and rename.
func (db *DB) WriteCatalog(ctx context.Context, path string, cat *catalog.Catalog) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	conn, err := db.conn.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer closeWithLog(conn, "duckdb connection")

	table := "catalog_export_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := conn.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", table, schemaDDL())); err != nil {
		return fmt.Errorf("failed to create export table: %w", err)
	}
	defer func() {
		if _, err := conn.ExecContext(context.Background(), "DROP TABLE IF EXISTS "+table); err != nil {
			logging.Warn().Err(err).Str("table", table).Msg("Failed to drop export table")
		}
	}()

	err = conn.Raw(func(raw any) error {
		dc, ok := raw.(driver.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection type %T", raw)
		}
		appender, err := duckdb.NewAppenderFromConn(dc, "", table)
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		for i := range cat.Tracks {
			if err := ctx.Err(); err != nil {
				closeQuietly(appender)
				return err
			}
			vals, err := trackValues(i, &cat.Tracks[i])
			if err != nil {
				closeQuietly(appender)
				return err
			}
			if err := appender.AppendRow(vals...); err != nil {
				closeQuietly(appender)
				return fmt.Errorf("failed to append row %d: %w", i, err)
			}
		}
		// Close flushes the remaining rows
		if err := appender.Close(); err != nil {
			return fmt.Errorf("failed to flush appender: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	exportQuery := fmt.Sprintf(`
		COPY (SELECT * FROM %s ORDER BY position) TO %s (
			FORMAT PARQUET,
			COMPRESSION 'ZSTD',
			ROW_GROUP_SIZE 100000
		)`, table, quoteLiteral(path))
	if _, err := conn.ExecContext(ctx, exportQuery); err != nil {
		return fmt.Errorf("failed to export catalog: %w", err)
	}
	return nil
}

func trackValues(pos int, t *catalog.Track) ([]driver.Value, error) {
	artists := t.ArtistsRaw
	if artists == nil {
		artists = []string{}
	}
	artistsJSON, err := json.Marshal(artists)
	if err != nil {
		return nil, fmt.Errorf("failed to encode artists for row %d: %w", pos, err)
	}

	return []driver.Value{
		int64(pos),
		optString(t.ExternalID),
		t.TitleRaw,
		t.TitleCanon,
		string(artistsJSON),
		t.ArtistPrimaryCanon,
		optInt(t.DurationMS),
		optBool(t.Explicit),
		optInt(t.Popularity),
		optInt(t.ReleaseYear),
		optString(t.ISRC),
		optString(t.Album),
		optFloat(t.Danceability),
		optFloat(t.Energy),
		optFloat(t.Valence),
		optFloat(t.Acousticness),
		optFloat(t.Instrumentalness),
		optFloat(t.Liveness),
		optFloat(t.Speechiness),
		optFloat(t.Tempo),
		optFloat(t.Loudness),
		optInt(t.Key),
		optInt(t.Mode),
	}, nil
}

func optString(p *string) driver.Value {
	if p == nil {
		return nil
	}
	return *p
}

func optInt(p *int64) driver.Value {
	if p == nil {
		return nil
	}
	return *p
}

func optFloat(p *float64) driver.Value {
	if p == nil {
		return nil
	}
	return *p
}

func optBool(p *bool) driver.Value {
	if p == nil {
		return nil
	}
	return *p
}

// ReadCatalog loads a catalog written by WriteCatalog and tags it with
// fingerprint.
func (db *DB) ReadCatalog(ctx context.Context, path, fingerprint string) (*catalog.Catalog, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf("SELECT %s FROM read_parquet(%s) ORDER BY position", schemaColumns(), quoteLiteral(path))
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	defer closeWithLog(rows, "catalog rows")

	cat := &catalog.Catalog{Fingerprint: fingerprint}
	for rows.Next() {
		var (
			pos                                   int64
			id, isrc, album                       sql.NullString
			title, titleCanon, artists, artistKey string
			duration, popularity, year, key, mode sql.NullInt64
			explicit                              sql.NullBool
			dance, energy, valence, acoustic      sql.NullFloat64
			instrumental, live, speech            sql.NullFloat64
			tempo, loudness                       sql.NullFloat64
		)
		if err := rows.Scan(
			&pos, &id, &title, &titleCanon, &artists, &artistKey,
			&duration, &explicit, &popularity, &year, &isrc, &album,
			&dance, &energy, &valence, &acoustic, &instrumental, &live, &speech,
			&tempo, &loudness, &key, &mode,
		); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		if pos != int64(len(cat.Tracks)) {
			return nil, fmt.Errorf("catalog row %d out of sequence (expected %d)", pos, len(cat.Tracks))
		}

		t := catalog.Track{
			ExternalID:         nullString(id),
			TitleRaw:           title,
			TitleCanon:         titleCanon,
			ArtistPrimaryCanon: artistKey,
			DurationMS:         nullInt(duration),
			Explicit:           nullBool(explicit),
			Popularity:         nullInt(popularity),
			ReleaseYear:        nullInt(year),
			ISRC:               nullString(isrc),
			Album:              nullString(album),
			Audio: catalog.Audio{
				Danceability:     nullFloat(dance),
				Energy:           nullFloat(energy),
				Valence:          nullFloat(valence),
				Acousticness:     nullFloat(acoustic),
				Instrumentalness: nullFloat(instrumental),
				Liveness:         nullFloat(live),
				Speechiness:      nullFloat(speech),
				Tempo:            nullFloat(tempo),
				Loudness:         nullFloat(loudness),
				Key:              nullInt(key),
				Mode:             nullInt(mode),
			},
		}
		if err := json.Unmarshal([]byte(artists), &t.ArtistsRaw); err != nil {
			return nil, fmt.Errorf("failed to decode artists for row %d: %w", pos, err)
		}
		if len(t.ArtistsRaw) == 0 {
			t.ArtistsRaw = nil
		}
		cat.Tracks = append(cat.Tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return cat, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func nullBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	return &v.Bool
}
