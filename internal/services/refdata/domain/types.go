// Package domain defines reference-data types and ports
package domain

// CompanyRef is one company reference entry
type CompanyRef struct {
	ID   string
	Name string
	Raw  string // original JSON payload, persisted alongside the resolved fields
}

// InstanceRef is one messaging-instance reference entry.
// CompanyID is resolved at build time so the enricher reaches the owning
// company in a single lookup
type InstanceRef struct {
	ID        string
	Name      string
	Phone     string
	CompanyID string
	Raw       string
}

// BroadcastRef is one broadcast reference entry
type BroadcastRef struct {
	ID   string
	Name string
	Raw  string
}

// Maps is the read-only lookup view consumed by the enricher.
// Built once before scanning starts and never mutated afterward
type Maps struct {
	instances map[string]InstanceRef
	companies map[string]CompanyRef
}

// NewMaps builds the lookup maps from resolved reference slices
func NewMaps(instances []InstanceRef, companies []CompanyRef) Maps {
	m := Maps{
		instances: make(map[string]InstanceRef, len(instances)),
		companies: make(map[string]CompanyRef, len(companies)),
	}
	for _, c := range companies {
		if c.ID != "" {
			m.companies[c.ID] = c
		}
	}
	for _, in := range instances {
		if in.ID != "" {
			m.instances[in.ID] = in
		}
	}
	return m
}

// Instance looks up an instance by normalized identifier
func (m Maps) Instance(id string) (InstanceRef, bool) {
	r, ok := m.instances[id]
	return r, ok
}

// Company looks up a company by normalized identifier
func (m Maps) Company(id string) (CompanyRef, bool) {
	r, ok := m.companies[id]
	return r, ok
}

// CompanyOfInstance resolves instance -> owning company transitively
func (m Maps) CompanyOfInstance(instanceID string) (CompanyRef, bool) {
	in, ok := m.instances[instanceID]
	if !ok || in.CompanyID == "" {
		return CompanyRef{}, false
	}
	return m.Company(in.CompanyID)
}

// Counts reports map sizes for startup logging
func (m Maps) Counts() (instances, companies int) {
	return len(m.instances), len(m.companies)
}
