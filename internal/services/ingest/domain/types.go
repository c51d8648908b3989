// Package domain defines the ingest pipeline types and ports
package domain

import "time"

// Direction values; a record carries exactly one of the two
const (
	DirectionIncoming = "Incoming"
	DirectionOutgoing = "Outgoing"
)

// UnknownName is the sentinel for unresolved instance/company names
const UnknownName = "Unknown"

// UnknownValue is the default for absent type/status fields
const UnknownValue = "unknown"

// Record is the persisted unit: one enriched message row.
// Immutable once enriched; nil pointer fields persist as NULL
type Record struct {
	MessageID string // "" persists as NULL

	Direction string
	Type      string
	Status    string

	Body       string
	BodyLength int
	WordCount  int

	IsBroadcast bool
	IsDeleted   bool
	IsGroup     bool
	HasQuestion bool
	HasEmoji    bool
	HasLink     bool

	CustomerPhone *string

	InstanceID   *string
	InstanceName string
	CompanyID    *string
	CompanyName  string

	Category  string
	Sentiment string
	Urgency   string
	Intent    string

	// Temporal fields: all nil together when the timestamp could not be decoded
	Timestamp *time.Time
	Date      *string
	Hour      *int
	DayOfWeek *string
	Month     *string
	Week      *string
}

// RunStart opens one ingest_runs bookkeeping row
type RunStart struct {
	ID        string
	Source    string
	StartedAt time.Time
}

// RunFinish closes the bookkeeping row; purely observational
type RunFinish struct {
	Status     string // "ok" | "truncated" | "error"
	Candidates int
	Decoded    int
	Malformed  int
	Inserted   int
	Commits    int
	ElapsedMS  int
	ErrText    string
}

// RunResult is what the orchestrator reports back to the caller
type RunResult struct {
	RunID      string
	Candidates int
	Decoded    int
	Malformed  int
	Inserted   int
	Commits    int
	Truncated  bool
	Elapsed    time.Duration

	// Post-run store totals, best-effort (zero when the count query fails)
	TotalRows       int64
	UniqueCustomers int64
}
