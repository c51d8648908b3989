// Package module provides the refdata module implementation
package module

import (
	"chatlake/internal/modkit"
	"chatlake/internal/services/refdata/domain"
	"chatlake/internal/services/refdata/repo"
	"chatlake/internal/services/refdata/service"
)

// Ports defines the refdata module ports
type Ports struct {
	Loader domain.LoaderPort
}

// Module implements the refdata module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the refdata module from config in deps.Cfg
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	svc := service.New(deps.DB, repo.NewSQLite(), service.Config{
		InstancesPath:  opts.InstancesPath,
		CompaniesPath:  opts.CompaniesPath,
		BroadcastsPath: opts.BroadcastsPath,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Loader: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "refdata" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
