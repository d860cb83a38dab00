// Package store archives terminal events in SQLite so that large histories
// can be imported once and queried many times.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/harun/loginstats/pkg/ledger"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

const (
	kindLogin  = "login"
	kindLogout = "logout"
)

// Store is a SQLite-backed event archive.
type Store struct {
	db     *sql.DB
	path   string
	logger zerolog.Logger
}

// Config holds store configuration
type Config struct {
	Path   string
	Logger zerolog.Logger
}

// Open opens (creating if needed) the archive at cfg.Path.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("database path is required")
	}
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{
		db:     db,
		path:   cfg.Path,
		logger: cfg.Logger.With().Str("component", "store").Logger(),
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s.logger.Debug().Str("path", cfg.Path).Msg("Event store opened")
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			terminal INTEGER NOT NULL CHECK (terminal >= 0),
			kind TEXT NOT NULL CHECK (kind IN ('login', 'logout')),
			username TEXT NOT NULL,
			ts_ms INTEGER NOT NULL,
			UNIQUE (terminal, kind, username, ts_ms)
		);
		CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts_ms);
		CREATE INDEX IF NOT EXISTS idx_events_user ON events(username);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveEvents stores events in a single transaction. Events already present
// are skipped; the number of newly stored events is returned.
func (s *Store) SaveEvents(ctx context.Context, events []ledger.Event) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO events (terminal, kind, username, ts_ms) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, e := range events {
		res, err := stmt.ExecContext(ctx, e.Terminal(), kindName(e.Kind()), e.Username(), e.UnixMilli())
		if err != nil {
			return 0, fmt.Errorf("failed to insert event %s: %w", e, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			saved++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit events: %w", err)
	}

	s.logger.Info().Int("received", len(events)).Int("saved", saved).Msg("Events archived")
	return saved, nil
}

// LoadInto inserts every archived event into l, oldest first, and returns
// the number inserted.
func (s *Store) LoadInto(ctx context.Context, l *ledger.Ledger) (int, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		`SELECT terminal, kind, username, ts_ms FROM events ORDER BY ts_ms, id`)
	if err != nil {
		return 0, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var (
			terminal int
			kind     string
			username string
			ms       int64
		)
		if err := rows.Scan(&terminal, &kind, &username, &ms); err != nil {
			return n, fmt.Errorf("failed to scan event: %w", err)
		}
		k, err := parseKind(kind)
		if err != nil {
			return n, err
		}
		e, err := ledger.NewEvent(terminal, k, username, time.UnixMilli(ms))
		if err != nil {
			return n, fmt.Errorf("archived event is invalid: %w", err)
		}
		if l.Insert(e) {
			n++
		}
	}
	if err := rows.Err(); err != nil {
		return n, fmt.Errorf("failed to read events: %w", err)
	}

	s.logger.Debug().Int("events", n).Dur("elapsed", time.Since(start)).Msg("Events loaded from store")
	return n, nil
}

// Count returns the number of archived events.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

// Users returns the distinct archived usernames in alphabetical order.
func (s *Store) Users(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT username FROM events ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func kindName(k ledger.Kind) string {
	if k == ledger.Logout {
		return kindLogout
	}
	return kindLogin
}

func parseKind(s string) (ledger.Kind, error) {
	switch s {
	case kindLogin:
		return ledger.Login, nil
	case kindLogout:
		return ledger.Logout, nil
	default:
		return 0, fmt.Errorf("unknown event kind %q in store", s)
	}
}
