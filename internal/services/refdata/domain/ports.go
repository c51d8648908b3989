package domain

import "context"

// LoaderPort reads the reference files, persists the reference tables, and
// returns the read-only lookup maps
type LoaderPort interface {
	Load(ctx context.Context) (Maps, error)
}

// StorageRepo persists reference tables; bound per transaction
type StorageRepo interface {
	UpsertCompanies(ctx context.Context, refs []CompanyRef) error
	UpsertInstances(ctx context.Context, refs []InstanceRef) error
	UpsertBroadcasts(ctx context.Context, refs []BroadcastRef) error
}
