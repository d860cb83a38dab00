package tracing

import (
	"context"

	"github.com/rs/zerolog"
)

// LoggerFromContext adds tracing context to a zerolog logger
func LoggerFromContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	tc := FromContext(ctx)

	lc := logger.With()
	if tc.TraceID != "" {
		lc = lc.Str("trace_id", tc.TraceID)
	}
	if tc.RequestID != "" {
		lc = lc.Str("request_id", tc.RequestID)
	}
	if tc.Username != "" {
		lc = lc.Str("username", tc.Username)
	}
	if tc.Operation != "" {
		lc = lc.Str("op", tc.Operation)
	}
	return lc.Logger()
}

// Detach returns a background context carrying the tracing values of ctx.
// Work that must outlive the request, such as a reload broadcast, uses it.
func Detach(ctx context.Context) context.Context {
	return MergeContext(context.Background(), ctx)
}

// MergeContext copies tracing values from source into target where target has none
func MergeContext(target, source context.Context) context.Context {
	tc := FromContext(source)

	if tc.TraceID != "" && GetTraceID(target) == "" {
		target = WithTraceID(target, tc.TraceID)
	}
	if tc.RequestID != "" && GetRequestID(target) == "" {
		target = WithRequestID(target, tc.RequestID)
	}
	if tc.Username != "" && GetUsername(target) == "" {
		target = WithUsername(target, tc.Username)
	}
	if tc.Operation != "" && GetOperation(target) == "" {
		target = WithOperation(target, tc.Operation)
	}

	return target
}
