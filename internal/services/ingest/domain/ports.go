package domain

import "context"

// RunnerPort drives one complete load of a message file
type RunnerPort interface {
	Run(ctx context.Context) (RunResult, error)
}

// StorageRepo persists enriched records and run bookkeeping
type StorageRepo interface {
	// InsertMessages appends records in slice order.
	// Callers wrap it in a transaction for batch atomicity
	InsertMessages(ctx context.Context, recs []Record) error

	StartRun(ctx context.Context, start RunStart) error
	FinishRun(ctx context.Context, runID string, fin RunFinish) error

	CountMessages(ctx context.Context) (int64, error)
	CountCustomers(ctx context.Context) (int64, error)
}
