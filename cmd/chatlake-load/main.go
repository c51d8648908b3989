package main

import (
	"context"
	"flag"
	"os"
	"strconv"

	"chatlake/internal/modkit"
	"chatlake/internal/platform/config"
	"chatlake/internal/platform/logger"
	"chatlake/internal/platform/store"

	ingestmod "chatlake/internal/services/ingest/module"
	ingestrepo "chatlake/internal/services/ingest/repo"
	refdatamod "chatlake/internal/services/refdata/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	var (
		fMessages   = flag.String("messages", "", "path to the message export JSON array (required)")
		fInstances  = flag.String("instances", "", "path to the instances reference file")
		fCompanies  = flag.String("companies", "", "path to the companies reference file")
		fBroadcasts = flag.String("broadcasts", "", "path to the broadcasts reference file")
		fDB         = flag.String("db", "chatlake.db", "output database path")
		fBatch      = flag.Int("batch", 5000, "records per commit")
		fQueue      = flag.Int("queue", 256, "pipeline queue depth")
	)
	flag.Parse()

	logger.Init(logger.FromEnv())
	l := logger.Get()

	if *fMessages == "" {
		l.Fatal().Msg("must provide -messages")
	}

	// Surface flags to the modules that read FromConfig
	mustSetEnv("CORE_LOAD_MESSAGES", *fMessages)
	mustSetEnv("CORE_LOAD_BATCH_SIZE", strconv.Itoa(*fBatch))
	mustSetEnv("CORE_LOAD_QUEUE_DEPTH", strconv.Itoa(*fQueue))
	mustSetEnv("CORE_REFDATA_INSTANCES", *fInstances)
	mustSetEnv("CORE_REFDATA_COMPANIES", *fCompanies)
	mustSetEnv("CORE_REFDATA_BROADCASTS", *fBroadcasts)

	root := config.New()
	dbCfg := root.Prefix("STORE_SQLITE_")

	ctx := context.Background()

	st, err := store.Open(ctx, store.Config{
		AppName: "chatlake-load",
		SQLite: store.SQLiteConfig{
			Enabled:       true,
			Path:          dbCfg.MayString("PATH", *fDB),
			LogSQL:        dbCfg.MayBool("LOG_SQL", false),
			SlowQueryMs:   dbCfg.MayInt("SLOW_MS", 500),
			BusyTimeoutMs: dbCfg.MayInt("BUSY_TIMEOUT_MS", 5000),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if err := ingestrepo.EnsureSchema(ctx, st.DB); err != nil {
		l.Fatal().Err(err).Msg("schema apply failed")
	}

	deps := modkit.Deps{
		Cfg: root,
		DB:  st.DB,
		Log: *l,
	}

	rd := refdatamod.New(deps)
	maps, err := rd.Ports().(refdatamod.Ports).Loader.Load(ctx)
	if err != nil {
		l.Fatal().Err(err).Msg("reference load failed")
	}

	im, err := ingestmod.New(deps, maps)
	if err != nil {
		l.Fatal().Err(err).Msg("ingest module init failed")
	}

	res, err := im.Ports().(ingestmod.Ports).Runner.Run(ctx)
	if err != nil {
		// Batched work up to the failure point is already committed;
		// a nonzero exit tells the operator the input did not fully load
		l.Error().Err(err).
			Str("run_id", res.RunID).
			Int("inserted", res.Inserted).
			Msg("load did not complete")
		os.Exit(1)
	}
}
