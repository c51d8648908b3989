// Package service orchestrates the scan -> enrich -> write pipeline
package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"chatlake/internal/core/extjson"
	"chatlake/internal/core/streamjson"
	"chatlake/internal/modkit/repokit"
	perr "chatlake/internal/platform/errors"
	"chatlake/internal/platform/logger"
	"chatlake/internal/services/ingest/domain"
	"chatlake/internal/services/ingest/enrich"
)

// Config tunes one load run
type Config struct {
	// MessagesPath is the candidate file to scan
	MessagesPath string

	// BatchSize is the commit threshold in records
	BatchSize int

	// QueueDepth bounds the hand-off channels between stages
	QueueDepth int

	// CommitRetries and RetryBase govern retry of retryable commit
	// failures (busy/locked); any other failure is fatal immediately
	CommitRetries int
	RetryBase     time.Duration
}

// Service runs one complete load of a message file.
// Each stage is a single goroutine over bounded channels, so records reach
// the store in scan order and at most one commit is in flight
type Service struct {
	db     repokit.TxRunner
	binder repokit.Binder[domain.StorageRepo]
	enr    *enrich.Enricher
	cfg    Config
}

// New constructs the orchestrator. Panics on nil dependencies
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo], enr *enrich.Enricher, cfg Config) *Service {
	if db == nil {
		panic("ingest service: nil db")
	}
	if binder == nil {
		panic("ingest service: nil binder")
	}
	if enr == nil {
		panic("ingest service: nil enricher")
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.QueueDepth < 1 {
		cfg.QueueDepth = 1
	}
	if cfg.CommitRetries < 1 {
		cfg.CommitRetries = 1
	}
	return &Service{db: db, binder: binder, enr: enr, cfg: cfg}
}

// Run implements domain.RunnerPort
func (s *Service) Run(ctx context.Context) (domain.RunResult, error) {
	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID, filepath.Base(s.cfg.MessagesPath))
	log := logger.C(ctx)

	res := domain.RunResult{RunID: runID}

	f, err := os.Open(s.cfg.MessagesPath)
	if err != nil {
		return res, err
	}
	defer f.Close()

	var sizeMB float64
	if fi, err := f.Stat(); err == nil {
		sizeMB = float64(fi.Size()) / (1 << 20)
	}

	root := s.binder.Bind(s.db)
	started := time.Now()
	if err := root.StartRun(ctx, domain.RunStart{
		ID:        runID,
		Source:    filepath.Base(s.cfg.MessagesPath),
		StartedAt: started,
	}); err != nil {
		return res, err
	}

	log.Info().
		Str("path", s.cfg.MessagesPath).
		Float64("size_mb", sizeMB).
		Int("batch_size", s.cfg.BatchSize).
		Msg("load starting")

	var truncErr error
	runErr := s.pipeline(ctx, f, started, &res, &truncErr)

	res.Elapsed = time.Since(started)

	status := "ok"
	errText := ""
	switch {
	case runErr != nil:
		status = "error"
		errText = runErr.Error()
	case truncErr != nil:
		status = "truncated"
		errText = truncErr.Error()
		res.Truncated = true
	}

	if runErr == nil {
		s.summarize(ctx, root, &res)
	}

	if ferr := root.FinishRun(ctx, runID, domain.RunFinish{
		Status:     status,
		Candidates: res.Candidates,
		Decoded:    res.Decoded,
		Malformed:  res.Malformed,
		Inserted:   res.Inserted,
		Commits:    res.Commits,
		ElapsedMS:  int(res.Elapsed.Milliseconds()),
		ErrText:    errText,
	}); ferr != nil {
		log.Warn().Err(ferr).Msg("run bookkeeping update failed")
	}

	if runErr != nil {
		return res, runErr
	}
	if truncErr != nil {
		log.Warn().
			Int("inserted", res.Inserted).
			Msg("input truncated, batched work was committed")
		return res, truncErr
	}
	return res, nil
}

// pipeline wires the three stages and waits for them.
// A truncated input is not a stage failure: the scanner stops producing,
// downstream flushes what it holds, and the error surfaces via truncErr
func (s *Service) pipeline(ctx context.Context, r io.Reader, started time.Time, res *domain.RunResult, truncErr *error) error {
	g, gctx := errgroup.WithContext(ctx)

	rawCh := make(chan string, s.cfg.QueueDepth)
	recCh := make(chan domain.Record, s.cfg.QueueDepth)

	g.Go(func() error {
		defer close(rawCh)
		sc := streamjson.NewScanner(r)
		defer func() { res.Candidates, _ = sc.Stats() }()
		for {
			raw, err := sc.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				if streamjson.IsTruncated(err) {
					*truncErr = err
					return nil
				}
				return err
			}
			select {
			case rawCh <- raw:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	g.Go(func() error {
		defer close(recCh)
		log := logger.C(gctx)
		for raw := range rawCh {
			obj, err := extjson.Decode(raw)
			if err != nil {
				res.Malformed++
				log.Debug().Err(err).Msg("candidate skipped")
				continue
			}
			res.Decoded++
			select {
			case recCh <- s.enr.Enrich(obj):
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	g.Go(func() error {
		log := logger.C(gctx)
		batch := make([]domain.Record, 0, s.cfg.BatchSize)
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			if err := s.commit(gctx, batch); err != nil {
				return err
			}
			res.Inserted += len(batch)
			res.Commits++
			elapsed := time.Since(started)
			log.Info().
				Int("inserted", res.Inserted).
				Float64("elapsed_s", elapsed.Seconds()).
				Float64("rate_per_s", float64(res.Inserted)/elapsed.Seconds()).
				Msg("batch committed")
			batch = make([]domain.Record, 0, s.cfg.BatchSize)
			return nil
		}
		for rec := range recCh {
			batch = append(batch, rec)
			if len(batch) >= s.cfg.BatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		return flush()
	})

	return g.Wait()
}

// commit writes one batch atomically, retrying only retryable store errors
func (s *Service) commit(ctx context.Context, batch []domain.Record) error {
	var err error
	for attempt := 1; attempt <= s.cfg.CommitRetries; attempt++ {
		err = repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
			return s.binder.Bind(q).InsertMessages(ctx, batch)
		})
		if err == nil {
			return nil
		}
		if !perr.Retryable(err) || attempt == s.cfg.CommitRetries {
			return err
		}
		select {
		case <-time.After(s.cfg.RetryBase * time.Duration(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// summarize fills the post-run store totals, best-effort
func (s *Service) summarize(ctx context.Context, root domain.StorageRepo, res *domain.RunResult) {
	log := logger.C(ctx)
	var err error
	if res.TotalRows, err = root.CountMessages(ctx); err != nil {
		log.Warn().Err(err).Msg("total count unavailable")
	}
	if res.UniqueCustomers, err = root.CountCustomers(ctx); err != nil {
		log.Warn().Err(err).Msg("customer count unavailable")
	}
	log.Info().
		Int("inserted", res.Inserted).
		Int("malformed", res.Malformed).
		Int("commits", res.Commits).
		Int64("total_rows", res.TotalRows).
		Int64("unique_customers", res.UniqueCustomers).
		Float64("elapsed_s", res.Elapsed.Seconds()).
		Msg("load finished")
}
