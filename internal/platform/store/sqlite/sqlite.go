// Package sqlite provides a SQLite client over database/sql with optional query tracing
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Config configures the embedded database for sqlite
type Config struct {
	Path          string // file path or ":memory:"
	SlowMs        int
	BusyTimeoutMs int
}

// DB is a sqlite client with handle and optional tracer
type DB struct {
	SQL    *sql.DB
	Tracer QueryTracer
	SlowMs int
}

var sqlOpen = sql.Open

// Open creates a new sqlite client with the given config and optional tracer.
// The parent directory is created for file-backed databases
func Open(ctx context.Context, cfg Config, tracer QueryTracer) (*DB, error) {
	dsn := cfg.Path
	if dsn == "" {
		return nil, fmt.Errorf("sqlite: empty path")
	}
	if dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite: create data directory: %w", err)
			}
		}
	}

	db, err := sqlOpen("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// Single connection: one writer, and :memory: databases are per-connection
	db.SetMaxOpenConns(1)

	busy := cfg.BusyTimeoutMs
	if busy <= 0 {
		busy = 5000
	}
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", busy),
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}

	return &DB{SQL: db, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

// Close closes the handle
func (d *DB) Close() error {
	if d == nil || d.SQL == nil {
		return nil
	}
	return d.SQL.Close()
}
