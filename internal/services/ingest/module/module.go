// Package module provides the ingest module implementation
package module

import (
	"chatlake/internal/modkit"
	"chatlake/internal/services/ingest/domain"
	"chatlake/internal/services/ingest/enrich"
	"chatlake/internal/services/ingest/repo"
	"chatlake/internal/services/ingest/service"
	refdomain "chatlake/internal/services/refdata/domain"
)

// Ports defines the ingest module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the ingest module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the ingest module. Reference maps come from the refdata
// loader and must be built before the pipeline starts
func New(deps modkit.Deps, refs refdomain.Maps) (*Module, error) {
	opts, err := FromConfig(deps.Cfg)
	if err != nil {
		return nil, err
	}

	enr, err := enrich.New(refs)
	if err != nil {
		return nil, err
	}

	svc := service.New(deps.DB, repo.NewSQLite(), enr, service.Config{
		MessagesPath:  opts.MessagesPath,
		BatchSize:     opts.BatchSize,
		QueueDepth:    opts.QueueDepth,
		CommitRetries: opts.CommitRetries,
		RetryBase:     opts.RetryBase,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc}
	return m, nil
}

// Name returns the module name
func (m *Module) Name() string { return "ingest" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
