package store

// Config aggregates per backend configuration
type Config struct {
	AppName string

	SQLite SQLiteConfig
}

// SQLiteConfig configures the embedded database file and tracing
type SQLiteConfig struct {
	Enabled     bool
	Path        string // database file path, ":memory:" for tests
	LogSQL      bool
	SlowQueryMs int

	// BusyTimeoutMs is the PRAGMA busy_timeout value; default 5000
	BusyTimeoutMs int
}
