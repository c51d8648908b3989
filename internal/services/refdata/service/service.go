// Package service builds the reference lookup maps and persists the reference tables
package service

import (
	"context"
	"encoding/json"
	"os"

	"chatlake/internal/core/extjson"
	"chatlake/internal/modkit/repokit"
	"chatlake/internal/platform/logger"
	"chatlake/internal/services/refdata/domain"
)

// Config holds the reference file locations; empty paths are skipped
type Config struct {
	InstancesPath  string
	CompaniesPath  string
	BroadcastsPath string
}

// Service implements domain.LoaderPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
	Cfg    Config
}

// New constructs the refdata service
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo], cfg Config) *Service {
	if db == nil {
		panic("refdata.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("refdata.Service requires a non nil Repo binder")
	}
	return &Service{DB: db, Binder: binder, Cfg: cfg}
}

// Load implements domain.LoaderPort: two pure passes over immutable input,
// then one transaction persisting the reference tables.
// A missing or unreadable reference file degrades to an empty map, never an error
func (s *Service) Load(ctx context.Context) (domain.Maps, error) {
	companies := buildCompanies(readReferenceFile(ctx, s.Cfg.CompaniesPath))
	instances := buildInstances(readReferenceFile(ctx, s.Cfg.InstancesPath))
	broadcasts := buildBroadcasts(readReferenceFile(ctx, s.Cfg.BroadcastsPath))

	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		repo := s.Binder.Bind(q)
		if err := repo.UpsertCompanies(ctx, companies); err != nil {
			return err
		}
		if err := repo.UpsertInstances(ctx, instances); err != nil {
			return err
		}
		return repo.UpsertBroadcasts(ctx, broadcasts)
	})
	if err != nil {
		return domain.Maps{}, err
	}

	m := domain.NewMaps(instances, companies)
	ni, nc := m.Counts()
	logger.C(ctx).Info().
		Int("instances", ni).
		Int("companies", nc).
		Int("broadcasts", len(broadcasts)).
		Msg("refdata: reference maps built")
	return m, nil
}

// readReferenceFile loads one small JSON array file; the whole-file read is
// deliberate, reference files are small by contract
func readReferenceFile(ctx context.Context, path string) []extjson.Object {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.C(ctx).Warn().Str("path", path).Err(err).Msg("refdata: reference file unreadable; skipping")
		return nil
	}
	var objs []extjson.Object
	if err := json.Unmarshal(data, &objs); err != nil {
		logger.C(ctx).Warn().Str("path", path).Err(err).Msg("refdata: reference file not a JSON array; skipping")
		return nil
	}
	return objs
}

// buildCompanies is pass one for companies: id -> entry
func buildCompanies(objs []extjson.Object) []domain.CompanyRef {
	out := make([]domain.CompanyRef, 0, len(objs))
	for _, o := range objs {
		id, ok := extjson.ID(o, "_id")
		if !ok {
			continue
		}
		out = append(out, domain.CompanyRef{
			ID:   id,
			Name: extjson.Str(o, "name"),
			Raw:  rawJSON(o),
		})
	}
	return out
}

// buildInstances is pass one and two for instances: id -> entry, then
// instance -> company link resolution (either identifier encoding)
func buildInstances(objs []extjson.Object) []domain.InstanceRef {
	out := make([]domain.InstanceRef, 0, len(objs))
	for _, o := range objs {
		id, ok := extjson.ID(o, "_id")
		if !ok {
			continue
		}
		companyID, _ := extjson.ForeignKey(o, "company", "companyId", "company_id")
		out = append(out, domain.InstanceRef{
			ID:        id,
			Name:      extjson.Str(o, "name"),
			Phone:     extjson.Scalar(o, "phone"),
			CompanyID: companyID,
			Raw:       rawJSON(o),
		})
	}
	return out
}

func buildBroadcasts(objs []extjson.Object) []domain.BroadcastRef {
	out := make([]domain.BroadcastRef, 0, len(objs))
	for _, o := range objs {
		id, ok := extjson.ID(o, "_id")
		if !ok {
			continue
		}
		out = append(out, domain.BroadcastRef{
			ID:   id,
			Name: extjson.Str(o, "name"),
			Raw:  rawJSON(o),
		})
	}
	return out
}

// rawJSON re-encodes the decoded object for the data column; best-effort
func rawJSON(o extjson.Object) string {
	b, err := json.Marshal(o)
	if err != nil {
		return "{}"
	}
	return string(b)
}
