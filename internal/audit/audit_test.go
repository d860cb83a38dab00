package audit

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/harun/loginstats/internal/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, data []byte) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestRecordReload(t *testing.T) {
	var buf bytes.Buffer
	a := NewWriter(&buf)

	ctx := tracing.NewRequestContext(context.Background(), "req-1")
	a.RecordReload(ctx, "watch", 42, nil)
	a.RecordReload(ctx, "schedule", 0, errors.New("source unavailable"))

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 2)

	assert.Equal(t, TypeReload, entries[0]["event_type"])
	assert.Equal(t, "watch", entries[0]["actor"])
	assert.Equal(t, StatusSuccess, entries[0]["status"])
	assert.Equal(t, "req-1", entries[0]["request_id"])
	assert.Equal(t, tracing.GetTraceID(ctx), entries[0]["trace_id"])
	assert.Equal(t, float64(42), entries[0]["metadata"].(map[string]interface{})["events"])

	assert.Equal(t, StatusFailure, entries[1]["status"])
	assert.Equal(t, "source unavailable", entries[1]["metadata"].(map[string]interface{})["error"])
}

func TestRecordImportAndSecurity(t *testing.T) {
	var buf bytes.Buffer
	a := NewWriter(&buf)

	a.RecordImport(context.Background(), "events.txt", "events.db", 10, 7)
	a.RecordSecurity(context.Background(), "reload.unauthorized", "10.0.0.1:5000")

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 2)

	assert.Equal(t, TypeImport, entries[0]["event_type"])
	assert.Equal(t, float64(7), entries[0]["metadata"].(map[string]interface{})["added"])

	assert.Equal(t, TypeSecurity, entries[1]["event_type"])
	assert.Equal(t, "10.0.0.1:5000", entries[1]["actor"])
	assert.NotContains(t, entries[1], "trace_id")
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.log")

	a, err := New(path)
	require.NoError(t, err)
	a.RecordImport(context.Background(), "a.txt", "a.db", 1, 1)
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, decodeLines(t, data), 1)
}

func TestNop(t *testing.T) {
	a := Nop()
	a.RecordReload(context.Background(), "api", 1, nil)
	assert.NoError(t, a.Close())
}
