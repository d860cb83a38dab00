package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/harun/loginstats/internal/config"
	"github.com/harun/loginstats/internal/eventlog"
	"github.com/harun/loginstats/internal/logger"
	"github.com/harun/loginstats/internal/store"
	"github.com/harun/loginstats/pkg/ledger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// errNoSource is returned when neither a flag nor the config names an event source.
var errNoSource = errors.New("usage error: expected an events file argument, --db, or events_file/database.path in the config")

// loadConfig loads the config file and applies the --log-level override.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. Console output goes to stderr so it
// never mixes with query answers on stdout.
func newLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   true,
		Pretty:    true,
		Redaction: cfg.Logging.Redaction,
		MaxSize:   cfg.Logging.MaxSize,
		MaxAge:    cfg.Logging.MaxAge,
		Compress:  cfg.Logging.Compress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

// eventSource says where events are read from. Exactly one field is set.
type eventSource struct {
	file string
	db   string
}

// resolveSource picks the event source: explicit flags first, then the
// configured events file, then the configured database.
func resolveSource(cfg *config.Config, file, db string) (eventSource, error) {
	switch {
	case file != "":
		return eventSource{file: file}, nil
	case db != "":
		return eventSource{db: db}, nil
	case cfg.Source() == config.SourceFile:
		return eventSource{file: cfg.EventsFile}, nil
	case cfg.Source() == config.SourceDatabase:
		return eventSource{db: cfg.Database.Path}, nil
	default:
		return eventSource{}, errNoSource
	}
}

func (s eventSource) String() string {
	if s.file != "" {
		return "file " + s.file
	}
	return "database " + s.db
}

// load builds a ledger holding every event of the source.
func (s eventSource) load(ctx context.Context, log zerolog.Logger) (*ledger.Ledger, error) {
	l := ledger.New()

	if s.file != "" {
		if _, err := eventlog.LoadFile(s.file, l); err != nil {
			return nil, err
		}
		return l, nil
	}

	st, err := store.Open(store.Config{Path: s.db, Logger: log})
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if _, err := st.LoadInto(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}
