package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"chatlake/internal/platform/store"
	"chatlake/internal/platform/testkit"
	ingestrepo "chatlake/internal/services/ingest/repo"
	"chatlake/internal/services/refdata/repo"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), store.Config{
		AppName: "test",
		SQLite:  store.SQLiteConfig{Enabled: true, Path: ":memory:"},
	})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	if err := ingestrepo.EnsureSchema(context.Background(), st.DB); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return st
}

func writeRef(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadBuildsMapsAndPersists(t *testing.T) {
	st := openStore(t)
	cfg := Config{
		CompaniesPath: writeRef(t, "companies.json", `[
			{"_id": {"$oid": "co-1"}, "name": "Acme Pharma"},
			{"name": "no id, skipped"}
		]`),
		InstancesPath: writeRef(t, "instances.json", `[
			{"_id": "inst-1", "name": "Main Line", "company": {"$oid": "co-1"}, "phone": 201000000001},
			{"_id": "inst-2", "name": "Floating Line"}
		]`),
		BroadcastsPath: writeRef(t, "broadcasts.json", `[
			{"_id": "bc-1", "name": "July Promo"}
		]`),
	}

	maps, err := New(st.DB, repo.NewSQLite(), cfg).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	ni, nc := maps.Counts()
	if ni != 2 || nc != 1 {
		t.Fatalf("counts = %d/%d", ni, nc)
	}

	in, ok := maps.Instance("inst-1")
	if !ok || in.Name != "Main Line" || in.CompanyID != "co-1" {
		t.Fatalf("instance = %+v, ok = %v", in, ok)
	}
	if c, ok := maps.CompanyOfInstance("inst-1"); !ok || c.Name != "Acme Pharma" {
		t.Fatalf("transitive lookup failed: %+v, %v", c, ok)
	}
	if _, ok := maps.CompanyOfInstance("inst-2"); ok {
		t.Fatalf("unlinked instance resolved a company")
	}

	// reference tables persisted with raw payloads
	var n int
	if err := st.DB.QueryRow(context.Background(), `SELECT COUNT(*) FROM companies`).Scan(&n); err != nil || n != 1 {
		t.Fatalf("companies = %d (%v)", n, err)
	}
	if err := st.DB.QueryRow(context.Background(), `SELECT COUNT(*) FROM instances`).Scan(&n); err != nil || n != 2 {
		t.Fatalf("instances = %d (%v)", n, err)
	}
	if err := st.DB.QueryRow(context.Background(), `SELECT COUNT(*) FROM broadcasts`).Scan(&n); err != nil || n != 1 {
		t.Fatalf("broadcasts = %d (%v)", n, err)
	}

	var data string
	if err := st.DB.QueryRow(context.Background(), `SELECT data FROM instances WHERE id = 'inst-1'`).Scan(&data); err != nil {
		t.Fatalf("raw payload: %v", err)
	}
	if data == "" || data == "{}" {
		t.Fatalf("raw payload empty: %q", data)
	}
}

func TestLoadMissingFilesDegradeToEmptyMaps(t *testing.T) {
	st := openStore(t)
	cfg := Config{
		CompaniesPath: filepath.Join(t.TempDir(), "absent.json"),
		InstancesPath: "",
	}
	maps, err := New(st.DB, repo.NewSQLite(), cfg).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ni, nc := maps.Counts()
	if ni != 0 || nc != 0 {
		t.Fatalf("counts = %d/%d, want 0/0", ni, nc)
	}
}

func TestLoadMalformedFileSkipped(t *testing.T) {
	st := openStore(t)
	cfg := Config{CompaniesPath: writeRef(t, "companies.json", `{"not": "an array"}`)}
	maps, err := New(st.DB, repo.NewSQLite(), cfg).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, nc := maps.Counts(); nc != 0 {
		t.Fatalf("companies = %d, want 0", nc)
	}
}

func TestLoadUpsertReplacesExisting(t *testing.T) {
	st := openStore(t)
	first := Config{CompaniesPath: writeRef(t, "a.json", `[{"_id": "co-1", "name": "Old Name"}]`)}
	if _, err := New(st.DB, repo.NewSQLite(), first).Load(context.Background()); err != nil {
		t.Fatalf("first Load: %v", err)
	}
	second := Config{CompaniesPath: writeRef(t, "b.json", `[{"_id": "co-1", "name": "New Name"}]`)}
	maps, err := New(st.DB, repo.NewSQLite(), second).Load(context.Background())
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if c, ok := maps.Company("co-1"); !ok || c.Name != "New Name" {
		t.Fatalf("company = %+v", c)
	}
	var name string
	if err := st.DB.QueryRow(context.Background(), `SELECT name FROM companies WHERE id = 'co-1'`).Scan(&name); err != nil {
		t.Fatalf("query: %v", err)
	}
	if name != "New Name" {
		t.Fatalf("persisted name = %q", name)
	}
}

func TestNewPanicsOnNilDeps(t *testing.T) {
	testkit.MustPanic(t, func() { New(nil, repo.NewSQLite(), Config{}) })
}
