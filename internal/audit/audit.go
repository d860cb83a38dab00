// Package audit records reloads, imports and rejected API calls as JSON lines.
package audit

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/harun/loginstats/internal/tracing"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Event types
const (
	TypeReload   = "reload"
	TypeImport   = "import"
	TypeSecurity = "security"
)

// Statuses
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Event represents a structured entry in the audit log
type Event struct {
	Type      string                 `json:"event_type"`
	Timestamp time.Time              `json:"timestamp"`
	Actor     string                 `json:"actor,omitempty"` // reload source, remote address or CLI
	Action    string                 `json:"action"`
	Status    string                 `json:"status"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	TraceID   string                 `json:"trace_id,omitempty"`
}

// Logger writes audit events
type Logger struct {
	logger zerolog.Logger
	mu     sync.Mutex
	file   *os.File
}

// New opens (appending) the audit log at path
func New(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	return &Logger{
		logger: zerolog.New(file).With().Timestamp().Logger(),
		file:   file,
	}, nil
}

// NewWriter creates an audit logger writing to w
func NewWriter(w io.Writer) *Logger {
	return &Logger{logger: zerolog.New(w).With().Timestamp().Logger()}
}

// Nop returns a logger that discards every event
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// Record emits an audit event and, when ctx carries a span, a span event
func (a *Logger) Record(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		event.TraceID = span.SpanContext().TraceID().String()

		span.AddEvent(event.Action, trace.WithAttributes(
			attribute.String("audit.type", event.Type),
			attribute.String("audit.status", event.Status),
			attribute.String("audit.actor", event.Actor),
		))
	}
	if event.TraceID == "" {
		event.TraceID = tracing.GetTraceID(ctx)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	entry := a.logger.Log().
		Str("event_type", event.Type).
		Time("at", event.Timestamp).
		Str("actor", event.Actor).
		Str("action", event.Action).
		Str("status", event.Status)

	if event.TraceID != "" {
		entry.Str("trace_id", event.TraceID)
	}
	if requestID := tracing.GetRequestID(ctx); requestID != "" {
		entry.Str("request_id", requestID)
	}
	if event.Metadata != nil {
		entry.Interface("metadata", event.Metadata)
	}

	entry.Msg("")
}

// Close closes the audit log file
func (a *Logger) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file != nil {
		err := a.file.Close()
		a.file = nil
		return err
	}
	return nil
}

// RecordReload records the outcome of a ledger reload
func (a *Logger) RecordReload(ctx context.Context, source string, events int, err error) {
	event := Event{
		Type:     TypeReload,
		Actor:    source,
		Action:   "ledger.reload",
		Status:   StatusSuccess,
		Metadata: map[string]interface{}{"events": events},
	}
	if err != nil {
		event.Status = StatusFailure
		event.Metadata["error"] = err.Error()
	}
	a.Record(ctx, event)
}

// RecordImport records an events file imported into the archive
func (a *Logger) RecordImport(ctx context.Context, file, db string, read, added int) {
	a.Record(ctx, Event{
		Type:   TypeImport,
		Actor:  "cli",
		Action: "store.import",
		Status: StatusSuccess,
		Metadata: map[string]interface{}{
			"file":  file,
			"db":    db,
			"read":  read,
			"added": added,
		},
	})
}

// RecordSecurity records a rejected request
func (a *Logger) RecordSecurity(ctx context.Context, action, actor string) {
	a.Record(ctx, Event{
		Type:   TypeSecurity,
		Actor:  actor,
		Action: action,
		Status: StatusFailure,
	})
}
