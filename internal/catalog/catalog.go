/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package catalog keeps a local SQLite record of compiled events: which
// source produced which output, with content hashes. The compile command
// uses it to skip sources whose inputs have not changed and to answer
// "what built this file" later. Only successful compiles are recorded.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "dxeventgen/internal/log"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// schemaVersion tracks the catalog schema. Bump on breaking changes.
const schemaVersion = 1

// Catalog wraps the catalog database. Safe for use from one process.
type Catalog struct {
	db *sql.DB
}

// Record is one successful compile.
type Record struct {
	EventName  string
	SourcePath string
	SourceHash string // SHA-256 of the source document bytes
	OutputPath string
	OutputHash string // SHA-256 of the emitted bytes
	CompiledAt time.Time
}

// Open opens (or creates) the catalog at path and brings the schema up to
// date. WAL mode and a single connection, as fits an embedded per-user
// database.
func Open(path string) (*Catalog, error) {
	l := applog.WithOperation(applog.WithComponent("catalog"), "open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	l.Debug("catalog ready")
	return &Catalog{db: db}, nil
}

// Close releases the underlying database.
func (c *Catalog) Close() error { return c.db.Close() }

func ensureSchema(ctx context.Context, db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS events (
    source_path TEXT PRIMARY KEY,
    event_name  TEXT NOT NULL,
    source_hash TEXT NOT NULL,
    output_path TEXT NOT NULL,
    output_hash TEXT NOT NULL,
    compiled_at TEXT NOT NULL
);
`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure catalog schema: %w", err)
	}
	var current string
	err := db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key='schema_version'").Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx,
			"INSERT INTO meta(key,value) VALUES('schema_version',?)", fmt.Sprint(schemaVersion)); err != nil {
			return fmt.Errorf("write schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case current != fmt.Sprint(schemaVersion):
		return fmt.Errorf("catalog schema version %s unsupported (want %d)", current, schemaVersion)
	}
	return nil
}

// Put upserts the record for its source path.
func (c *Catalog) Put(ctx context.Context, rec Record) error {
	_, err := c.db.ExecContext(ctx, `
INSERT INTO events (source_path, event_name, source_hash, output_path, output_hash, compiled_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(source_path) DO UPDATE SET
    event_name  = excluded.event_name,
    source_hash = excluded.source_hash,
    output_path = excluded.output_path,
    output_hash = excluded.output_hash,
    compiled_at = excluded.compiled_at
`, rec.SourcePath, rec.EventName, rec.SourceHash, rec.OutputPath, rec.OutputHash,
		rec.CompiledAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record compile: %w", err)
	}
	return nil
}

// Get returns the record for a source path, if any.
func (c *Catalog) Get(ctx context.Context, sourcePath string) (Record, bool, error) {
	var rec Record
	var stamp string
	err := c.db.QueryRowContext(ctx, `
SELECT source_path, event_name, source_hash, output_path, output_hash, compiled_at
FROM events WHERE source_path = ?`, sourcePath).
		Scan(&rec.SourcePath, &rec.EventName, &rec.SourceHash, &rec.OutputPath, &rec.OutputHash, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("read record: %w", err)
	}
	if t, perr := time.Parse(time.RFC3339, stamp); perr == nil {
		rec.CompiledAt = t
	}
	return rec, true, nil
}

// List returns all records ordered by source path.
func (c *Catalog) List(ctx context.Context) ([]Record, error) {
	rows, err := c.db.QueryContext(ctx, `
SELECT source_path, event_name, source_hash, output_path, output_hash, compiled_at
FROM events ORDER BY source_path`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var stamp string
		if err := rows.Scan(&rec.SourcePath, &rec.EventName, &rec.SourceHash, &rec.OutputPath, &rec.OutputHash, &stamp); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if t, perr := time.Parse(time.RFC3339, stamp); perr == nil {
			rec.CompiledAt = t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
