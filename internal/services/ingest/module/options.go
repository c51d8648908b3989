package module

import (
	"time"

	"github.com/go-playground/validator/v10"

	"chatlake/internal/platform/config"
	perr "chatlake/internal/platform/errors"
)

// Options holds configuration options for the ingest pipeline
type Options struct {
	MessagesPath  string        `validate:"required"`
	BatchSize     int           `validate:"gte=1,lte=100000"`
	QueueDepth    int           `validate:"gte=1,lte=65536"`
	CommitRetries int           `validate:"gte=1,lte=10"`
	RetryBase     time.Duration `validate:"gte=0"`
}

// FromConfig reads the ingest options from config with CORE_LOAD_ prefix
func FromConfig(cfg config.Conf) (Options, error) {
	ld := cfg.Prefix("CORE_LOAD_")
	opts := Options{
		MessagesPath:  ld.MayString("MESSAGES", ""),
		BatchSize:     ld.MayInt("BATCH_SIZE", 5000),
		QueueDepth:    ld.MayInt("QUEUE_DEPTH", 256),
		CommitRetries: ld.MayInt("COMMIT_RETRIES", 3),
		RetryBase:     ld.MayDuration("RETRY_BASE", 200*time.Millisecond),
	}
	if err := validator.New().Struct(opts); err != nil {
		return Options{}, perr.Wrap(err, perr.ErrorCodeValidation, "ingest options invalid")
	}
	return opts, nil
}
