package tracing

import (
	"context"
	"testing"
)

func TestNewTraceID(t *testing.T) {
	id1 := NewTraceID()
	id2 := NewTraceID()

	if id1 == "" {
		t.Error("NewTraceID returned empty string")
	}

	if id1 == id2 {
		t.Error("NewTraceID returned duplicate IDs")
	}
}

func TestWithTraceID(t *testing.T) {
	ctx := WithTraceID(context.Background(), "test-trace-id")

	if got := GetTraceID(ctx); got != "test-trace-id" {
		t.Errorf("Expected trace ID test-trace-id, got %s", got)
	}
}

func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")

	if got := GetRequestID(ctx); got != "req-1" {
		t.Errorf("Expected request ID req-1, got %s", got)
	}
}

func TestWithUsernameAndOperation(t *testing.T) {
	ctx := WithUsername(context.Background(), "alice")
	ctx = WithOperation(ctx, "first")

	if got := GetUsername(ctx); got != "alice" {
		t.Errorf("Expected username alice, got %s", got)
	}
	if got := GetOperation(ctx); got != "first" {
		t.Errorf("Expected operation first, got %s", got)
	}
}

func TestGettersOnEmptyContext(t *testing.T) {
	ctx := context.Background()

	if GetTraceID(ctx) != "" || GetRequestID(ctx) != "" || GetUsername(ctx) != "" || GetOperation(ctx) != "" {
		t.Error("Expected empty values from empty context")
	}
}

func TestFromContextAndNewContext(t *testing.T) {
	tc := &TraceContext{
		TraceID:   "trace-1",
		RequestID: "req-1",
		Username:  "bob",
		Operation: "total",
	}

	ctx := NewContext(context.Background(), tc)
	got := FromContext(ctx)

	if *got != *tc {
		t.Errorf("Expected %+v, got %+v", tc, got)
	}
}

func TestNewContextSkipsEmptyFields(t *testing.T) {
	ctx := NewContext(context.Background(), &TraceContext{TraceID: "trace-only"})

	if GetTraceID(ctx) != "trace-only" {
		t.Error("Trace ID not set")
	}
	if ctx.Value(RequestIDKey) != nil {
		t.Error("Request ID should not be set")
	}
}

func TestNewRequestContext(t *testing.T) {
	ctx := NewRequestContext(context.Background(), "req-42")

	if GetTraceID(ctx) == "" {
		t.Error("Trace ID not generated")
	}
	if GetRequestID(ctx) != "req-42" {
		t.Errorf("Expected request ID req-42, got %s", GetRequestID(ctx))
	}

	other := NewRequestContext(context.Background(), "")
	if GetTraceID(other) == GetTraceID(ctx) {
		t.Error("Expected distinct trace IDs per request")
	}
	if GetRequestID(other) != "" {
		t.Error("Expected no request ID")
	}
}
