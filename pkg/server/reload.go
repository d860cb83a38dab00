package server

import (
	"context"
	"fmt"
	"time"

	"github.com/harun/loginstats/internal/tracing"
	"github.com/harun/loginstats/pkg/watcher"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Reload rebuilds the ledger from the loader and swaps it in. Concurrent
// reloads are serialised; queries keep reading the previous ledger until the
// swap. On failure the previous ledger stays in place.
func (s *Server) Reload(ctx context.Context, source string) (Stats, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	ctx = tracing.WithOperation(ctx, "reload")
	ctx, span := tracing.StartSpan(ctx, "ledger.reload", attribute.String("loginstats.reload.source", source))
	defer span.End()

	logger := tracing.LoggerFromContext(ctx, s.logger)
	start := time.Now()

	l, err := s.loader(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.ObserveReload(source, err, 0, 0, time.Since(start))
		s.audit.RecordReload(ctx, source, 0, err)
		logger.Error().Err(err).Str("source", source).Msg("Ledger reload failed")
		return Stats{}, fmt.Errorf("reload (%s): %w", source, err)
	}

	users := len(l.Users())
	s.ledger.Swap(l)
	elapsed := time.Since(start)
	s.metrics.ObserveReload(source, nil, l.Len(), users, elapsed)

	stats := s.ledger.Stats()
	s.audit.RecordReload(ctx, source, stats.Events, nil)
	reached := s.broadcaster.Broadcast(EventMessage{
		Type:    MessageReloaded,
		Source:  source,
		Events:  stats.Events,
		Users:   stats.Users,
		At:      stats.LoadedAt.UTC(),
		TraceID: tracing.GetTraceID(ctx),
	})

	logger.Info().
		Str("source", source).
		Int("events", stats.Events).
		Int("users", stats.Users).
		Int("notified", reached).
		Dur("elapsed", elapsed).
		Msg("Ledger reloaded")

	return stats, nil
}

func (s *Server) reloadInBackground(source string) error {
	ctx := tracing.NewRequestContext(context.Background(), "")
	_, err := s.Reload(ctx, source)
	return err
}

func (s *Server) startScheduler() error {
	if s.schedule == "" {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() {
		_ = s.reloadInBackground(SourceSchedule)
	}); err != nil {
		return fmt.Errorf("invalid reload schedule %q: %w", s.schedule, err)
	}
	c.Start()
	s.cron = c

	s.logger.Info().Str("schedule", s.schedule).Msg("Scheduled reloads enabled")
	return nil
}

// stopScheduler stops the cron and waits for a running reload, bounded by ctx.
func (s *Server) stopScheduler(ctx context.Context) {
	if s.cron == nil {
		return
	}
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn().Msg("Timed out waiting for scheduled reload to finish")
	}
	s.cron = nil
}

func (s *Server) startWatcher() error {
	if s.watchPath == "" {
		return nil
	}

	w, err := watcher.New(watcher.Config{
		Path:               s.watchPath,
		StabilityThreshold: s.watchDelay,
		Logger:             &s.logger,
		OnChange: func(string) error {
			return s.reloadInBackground(SourceWatch)
		},
		OnRemove: func(path string) error {
			s.logger.Warn().Str("path", path).Msg("Events file removed, keeping current ledger")
			return nil
		},
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	s.watcher = w
	return nil
}
