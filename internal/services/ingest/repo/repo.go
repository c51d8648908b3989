// Package repo persists enriched messages and run bookkeeping
package repo

import (
	"context"
	_ "embed"
	"strings"
	"time"

	"chatlake/internal/modkit/repokit"
	perr "chatlake/internal/platform/errors"
	"chatlake/internal/services/ingest/domain"
)

//go:embed schema.sql
var schemaSQL string

// insertChunk bounds the number of rows per multi-row INSERT so the
// placeholder count stays well under the SQLite variable limit
const insertChunk = 500

// messageColumns is the insert column list; insert order matches Record
const messageColumns = `message_id, direction, type, status, body,
	body_length, word_count, is_broadcast, is_deleted, is_group,
	has_question, has_emoji, has_link, customer_phone, instance_id,
	instance_name, company_id, company_name, category, sentiment, urgency,
	intent, timestamp, date, hour, day_of_week, month, week`

const messageColumnCount = 28

// EnsureSchema creates the warehouse tables and indexes when absent.
// Run before reference loading so the reference tables exist
func EnsureSchema(ctx context.Context, db repokit.TxRunner) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "schema apply failed")
	}
	return nil
}

type binder struct{}

// NewSQLite constructs a new repo binder for the embedded store
func NewSQLite() repokit.Binder[domain.StorageRepo] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) domain.StorageRepo { return &sqliteRepo{q: q} }

type sqliteRepo struct{ q repokit.Queryer }

// InsertMessages implements domain.StorageRepo.
// Rows are inserted in slice order; chunking is an arity concern only,
// atomicity comes from the caller's transaction
func (r *sqliteRepo) InsertMessages(ctx context.Context, recs []domain.Record) error {
	for len(recs) > 0 {
		n := len(recs)
		if n > insertChunk {
			n = insertChunk
		}
		if err := r.insertChunk(ctx, recs[:n]); err != nil {
			return err
		}
		recs = recs[n:]
	}
	return nil
}

func (r *sqliteRepo) insertChunk(ctx context.Context, recs []domain.Record) error {
	var sb strings.Builder
	sb.WriteString("INSERT INTO messages (")
	sb.WriteString(messageColumns)
	sb.WriteString(") VALUES ")

	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", messageColumnCount), ", ") + ")"
	args := make([]any, 0, len(recs)*messageColumnCount)
	for i, rec := range recs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(row)
		args = append(args,
			nullable(rec.MessageID),
			rec.Direction,
			rec.Type,
			rec.Status,
			rec.Body,
			rec.BodyLength,
			rec.WordCount,
			boolInt(rec.IsBroadcast),
			boolInt(rec.IsDeleted),
			boolInt(rec.IsGroup),
			boolInt(rec.HasQuestion),
			boolInt(rec.HasEmoji),
			boolInt(rec.HasLink),
			rec.CustomerPhone,
			rec.InstanceID,
			rec.InstanceName,
			rec.CompanyID,
			rec.CompanyName,
			rec.Category,
			rec.Sentiment,
			rec.Urgency,
			rec.Intent,
			timeText(rec.Timestamp),
			rec.Date,
			rec.Hour,
			rec.DayOfWeek,
			rec.Month,
			rec.Week,
		)
	}

	if _, err := r.q.Exec(ctx, sb.String(), args...); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "message insert failed")
	}
	return nil
}

// StartRun implements domain.StorageRepo
func (r *sqliteRepo) StartRun(ctx context.Context, start domain.RunStart) error {
	const sql = `
		INSERT INTO ingest_runs (id, source, started_at, status)
		VALUES (?, ?, ?, 'running')`
	if _, err := r.q.Exec(ctx, sql, start.ID, start.Source, start.StartedAt.UTC().Format(time.RFC3339)); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "run start failed")
	}
	return nil
}

// FinishRun implements domain.StorageRepo
func (r *sqliteRepo) FinishRun(ctx context.Context, runID string, fin domain.RunFinish) error {
	const sql = `
		UPDATE ingest_runs
		SET finished_at = ?, status = ?, candidates = ?, decoded = ?,
		    malformed = ?, inserted = ?, commits = ?, elapsed_ms = ?, err_text = ?
		WHERE id = ?`
	_, err := r.q.Exec(ctx, sql,
		time.Now().UTC().Format(time.RFC3339),
		fin.Status, fin.Candidates, fin.Decoded, fin.Malformed,
		fin.Inserted, fin.Commits, fin.ElapsedMS, nullable(fin.ErrText),
		runID,
	)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "run finish failed")
	}
	return nil
}

// CountMessages implements domain.StorageRepo
func (r *sqliteRepo) CountMessages(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeDB, "message count failed")
	}
	return n, nil
}

// CountCustomers implements domain.StorageRepo
func (r *sqliteRepo) CountCustomers(ctx context.Context) (int64, error) {
	const sql = `SELECT COUNT(DISTINCT customer_phone) FROM messages WHERE customer_phone IS NOT NULL`
	var n int64
	if err := r.q.QueryRow(ctx, sql).Scan(&n); err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeDB, "customer count failed")
	}
	return n, nil
}

// nullable maps "" to NULL
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// boolInt stores flags the SQLite way
func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timeText renders an optional timestamp as RFC3339 text or NULL
func timeText(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
