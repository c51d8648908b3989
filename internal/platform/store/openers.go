package store

import (
	"context"
	"time"

	"chatlake/internal/platform/store/sqlite"
)

// openSQLite opens the embedded database and wraps it with our sql adapter
func openSQLite(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer sqlite.QueryTracer
	if cfg.SQLite.LogSQL {
		tracer = sqlite.Tracer(s.Log)
	}

	d, err := sqlite.Open(ctx, sqlite.Config{
		Path:          cfg.SQLite.Path,
		SlowMs:        cfg.SQLite.SlowQueryMs,
		BusyTimeoutMs: cfg.SQLite.BusyTimeoutMs,
	}, tracer)
	if err != nil {
		return nil, err
	}

	// Sanity ping before publishing the adapter
	a := newSQLiteAdapter(d)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.Ping(pingCtx); err != nil {
		_ = d.Close()
		return nil, err
	}
	s.DB = a
	return a, nil
}
