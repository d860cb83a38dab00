package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/harun/loginstats/pkg/ledger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{
		Path:   filepath.Join(t.TempDir(), "events.db"),
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleEvents() []ledger.Event {
	return []ledger.Event{
		ledger.MustEvent(1, ledger.Logout, "a", time.UnixMilli(500)),
		ledger.MustEvent(1, ledger.Login, "a", time.UnixMilli(100)),
		ledger.MustEvent(2, ledger.Login, "b", time.UnixMilli(300)),
	}
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestStore_SaveAndLoad(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveEvents(ctx, sampleEvents())
	require.NoError(t, err)
	assert.Equal(t, 3, saved)

	l := ledger.New()
	n, err := s.LoadInto(ctx, l)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	session, err := l.FirstSession("a")
	require.NoError(t, err)
	assert.Equal(t, int64(400), session.DurationMillis())
}

func TestStore_SaveSkipsDuplicates(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.SaveEvents(ctx, sampleEvents())
	require.NoError(t, err)

	saved, err := s.SaveEvents(ctx, sampleEvents())
	require.NoError(t, err)
	assert.Equal(t, 0, saved)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestStore_Users(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.SaveEvents(ctx, sampleEvents())
	require.NoError(t, err)

	users, err := s.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, users)
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.db")
	ctx := context.Background()

	s, err := Open(Config{Path: path, Logger: zerolog.Nop()})
	require.NoError(t, err)
	_, err = s.SaveEvents(ctx, sampleEvents())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(Config{Path: path, Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer s.Close()

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
