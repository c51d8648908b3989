// Package repo provides the reference-table repository
package repo

import (
	"context"

	"chatlake/internal/modkit/repokit"
	"chatlake/internal/services/refdata/domain"
)

type binder struct{}

// NewSQLite constructs a new repo binder for the embedded store
func NewSQLite() repokit.Binder[domain.StorageRepo] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) domain.StorageRepo { return &sqliteRepo{q: q} }

type sqliteRepo struct{ q repokit.Queryer }

// UpsertCompanies implements domain.StorageRepo
func (r *sqliteRepo) UpsertCompanies(ctx context.Context, refs []domain.CompanyRef) error {
	const sql = `INSERT OR REPLACE INTO companies (id, name, data) VALUES (?, ?, ?)`
	for _, c := range refs {
		if c.ID == "" {
			continue
		}
		if _, err := r.q.Exec(ctx, sql, c.ID, c.Name, c.Raw); err != nil {
			return err
		}
	}
	return nil
}

// UpsertInstances implements domain.StorageRepo
func (r *sqliteRepo) UpsertInstances(ctx context.Context, refs []domain.InstanceRef) error {
	const sql = `INSERT OR REPLACE INTO instances (id, name, company_id, phone, data) VALUES (?, ?, ?, ?, ?)`
	for _, in := range refs {
		if in.ID == "" {
			continue
		}
		if _, err := r.q.Exec(ctx, sql, in.ID, in.Name, nullable(in.CompanyID), in.Phone, in.Raw); err != nil {
			return err
		}
	}
	return nil
}

// UpsertBroadcasts implements domain.StorageRepo
func (r *sqliteRepo) UpsertBroadcasts(ctx context.Context, refs []domain.BroadcastRef) error {
	const sql = `INSERT OR REPLACE INTO broadcasts (id, name, data) VALUES (?, ?, ?)`
	for _, b := range refs {
		if b.ID == "" {
			continue
		}
		if _, err := r.q.Exec(ctx, sql, b.ID, b.Name, b.Raw); err != nil {
			return err
		}
	}
	return nil
}

// nullable maps "" to NULL for optional foreign keys
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
