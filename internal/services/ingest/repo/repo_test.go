package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"chatlake/internal/modkit/repokit"
	"chatlake/internal/platform/store"
	"chatlake/internal/services/ingest/domain"
)

func openDB(t *testing.T) repokit.TxRunner {
	t.Helper()
	st, err := store.Open(context.Background(), store.Config{
		AppName: "test",
		SQLite:  store.SQLiteConfig{Enabled: true, Path: ":memory:"},
	})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	if err := EnsureSchema(context.Background(), st.DB); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return st.DB
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	db := openDB(t)
	// second application must be a no-op, not an error
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}
}

func TestInsertMessagesNullables(t *testing.T) {
	db := openDB(t)
	r := NewSQLite().Bind(db)

	phone := "201000000001"
	ts := time.Date(2023, 7, 15, 10, 30, 0, 0, time.UTC)
	date := "2023-07-15"
	hour := 10

	err := r.InsertMessages(context.Background(), []domain.Record{
		{
			MessageID:     "m1",
			Direction:     domain.DirectionIncoming,
			Type:          "chat",
			Status:        "delivered",
			Body:          "hello",
			CustomerPhone: &phone,
			Timestamp:     &ts,
			Date:          &date,
			Hour:          &hour,
		},
		{
			// no id, no phone, no timestamp: all NULL
			Direction: domain.DirectionOutgoing,
			Type:      domain.UnknownValue,
			Status:    domain.UnknownValue,
		},
	})
	if err != nil {
		t.Fatalf("InsertMessages: %v", err)
	}

	var n int
	q := `SELECT COUNT(*) FROM messages WHERE message_id IS NULL AND customer_phone IS NULL AND timestamp IS NULL`
	if err := db.QueryRow(context.Background(), q).Scan(&n); err != nil || n != 1 {
		t.Fatalf("null row count = %d (%v)", n, err)
	}

	var gotTS string
	if err := db.QueryRow(context.Background(),
		`SELECT timestamp FROM messages WHERE message_id = 'm1'`).Scan(&gotTS); err != nil {
		t.Fatalf("query: %v", err)
	}
	if gotTS != "2023-07-15T10:30:00Z" {
		t.Fatalf("timestamp = %q", gotTS)
	}
}

func TestInsertMessagesChunksLargeBatches(t *testing.T) {
	db := openDB(t)
	r := NewSQLite().Bind(db)

	recs := make([]domain.Record, insertChunk+7)
	for i := range recs {
		recs[i] = domain.Record{
			MessageID: fmt.Sprintf("m%04d", i),
			Direction: domain.DirectionIncoming,
			Type:      domain.UnknownValue,
			Status:    domain.UnknownValue,
		}
	}
	if err := r.InsertMessages(context.Background(), recs); err != nil {
		t.Fatalf("InsertMessages: %v", err)
	}

	n, err := r.CountMessages(context.Background())
	if err != nil {
		t.Fatalf("CountMessages: %v", err)
	}
	if n != int64(len(recs)) {
		t.Fatalf("rows = %d, want %d", n, len(recs))
	}

	// insertion order survives chunking
	var first, last string
	if err := db.QueryRow(context.Background(),
		`SELECT message_id FROM messages ORDER BY id LIMIT 1`).Scan(&first); err != nil {
		t.Fatalf("query: %v", err)
	}
	if err := db.QueryRow(context.Background(),
		`SELECT message_id FROM messages ORDER BY id DESC LIMIT 1`).Scan(&last); err != nil {
		t.Fatalf("query: %v", err)
	}
	if first != "m0000" || last != fmt.Sprintf("m%04d", len(recs)-1) {
		t.Fatalf("order broken: %q .. %q", first, last)
	}
}

func TestCountCustomersDistinct(t *testing.T) {
	db := openDB(t)
	r := NewSQLite().Bind(db)

	a, b := "201000000001", "201000000002"
	err := r.InsertMessages(context.Background(), []domain.Record{
		{CustomerPhone: &a, Direction: domain.DirectionIncoming, Type: "chat", Status: "sent"},
		{CustomerPhone: &a, Direction: domain.DirectionIncoming, Type: "chat", Status: "sent"},
		{CustomerPhone: &b, Direction: domain.DirectionIncoming, Type: "chat", Status: "sent"},
		{Direction: domain.DirectionIncoming, Type: "chat", Status: "sent"},
	})
	if err != nil {
		t.Fatalf("InsertMessages: %v", err)
	}

	n, err := r.CountCustomers(context.Background())
	if err != nil {
		t.Fatalf("CountCustomers: %v", err)
	}
	if n != 2 {
		t.Fatalf("distinct customers = %d, want 2", n)
	}
}

func TestRunBookkeeping(t *testing.T) {
	db := openDB(t)
	r := NewSQLite().Bind(db)
	ctx := context.Background()

	if err := r.StartRun(ctx, domain.RunStart{ID: "run-1", Source: "messages.json", StartedAt: time.Now()}); err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	var status string
	if err := db.QueryRow(ctx, `SELECT status FROM ingest_runs WHERE id = 'run-1'`).Scan(&status); err != nil {
		t.Fatalf("query: %v", err)
	}
	if status != "running" {
		t.Fatalf("status = %q", status)
	}

	err := r.FinishRun(ctx, "run-1", domain.RunFinish{
		Status: "ok", Candidates: 10, Decoded: 9, Malformed: 1,
		Inserted: 9, Commits: 2, ElapsedMS: 1234,
	})
	if err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	var inserted, malformed int
	var errText any
	err = db.QueryRow(ctx,
		`SELECT status, inserted, malformed, err_text FROM ingest_runs WHERE id = 'run-1'`).
		Scan(&status, &inserted, &malformed, &errText)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if status != "ok" || inserted != 9 || malformed != 1 {
		t.Fatalf("run row = %q/%d/%d", status, inserted, malformed)
	}
	if errText != nil {
		t.Fatalf("err_text = %v, want NULL", errText)
	}
}

func TestBatchAtomicityUnderRollback(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	boom := fmt.Errorf("boom")
	err := db.Tx(ctx, func(q repokit.Queryer) error {
		r := NewSQLite().Bind(q)
		if err := r.InsertMessages(ctx, []domain.Record{
			{MessageID: "m1", Direction: domain.DirectionIncoming, Type: "chat", Status: "sent"},
		}); err != nil {
			return err
		}
		return boom
	})
	if err == nil {
		t.Fatalf("expected tx error")
	}

	r := NewSQLite().Bind(db)
	n, err := r.CountMessages(ctx)
	if err != nil {
		t.Fatalf("CountMessages: %v", err)
	}
	if n != 0 {
		t.Fatalf("rows survived rollback: %d", n)
	}
}
