package eventlog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harun/loginstats/pkg/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		wantTerminal int
		wantKind     ledger.Kind
		wantUser     string
		wantMillis   int64
		wantErr      bool
	}{
		{"login", "3 1000 alice", 3, ledger.Login, "alice", 1000, false},
		{"logout", "-3 2000 alice", 3, ledger.Logout, "alice", 2000, false},
		{"zero terminal is logout", "0 5 bob", 0, ledger.Logout, "bob", 5, false},
		{"extra spaces", "  7   10   carol ", 7, ledger.Login, "carol", 10, false},
		{"missing field", "3 1000", 0, 0, "", 0, true},
		{"too many fields", "3 1000 a b", 0, 0, "", 0, true},
		{"bad terminal", "x 1000 alice", 0, 0, "", 0, true},
		{"bad timestamp", "3 soon alice", 0, 0, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ParseLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTerminal, e.Terminal())
			assert.Equal(t, tt.wantKind, e.Kind())
			assert.Equal(t, tt.wantUser, e.Username())
			assert.Equal(t, tt.wantMillis, e.UnixMilli())
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("skips blank lines", func(t *testing.T) {
		input := "1 100 a\n\n-1 500 a\n   \n"
		events, err := Parse(strings.NewReader(input))
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("reports line number", func(t *testing.T) {
		input := "1 100 a\n\nbroken line here too\n"
		_, err := Parse(strings.NewReader(input))

		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 3, perr.Line)
		assert.Contains(t, err.Error(), "line 3")
	})
}

func TestWriteRoundTrip(t *testing.T) {
	input := "1 100 a\n-1 500 a\n2 700 b\n"
	events, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, events))
	assert.Equal(t, input, buf.String())
}

func TestLoadFile(t *testing.T) {
	t.Run("inserts in timestamp order", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "events.txt")
		require.NoError(t, os.WriteFile(path, []byte("-1 500 a\n1 100 a\n"), 0644))

		l := ledger.New()
		n, err := LoadFile(path, l)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		s, err := l.FirstSession("a")
		require.NoError(t, err)
		assert.Equal(t, int64(400), s.DurationMillis())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.txt"), ledger.New())
		assert.ErrorIs(t, err, ErrFileNotExist)
		assert.Contains(t, err.Error(), "nope.txt")
	})

	t.Run("directory", func(t *testing.T) {
		_, err := LoadFile(t.TempDir(), ledger.New())
		assert.ErrorIs(t, err, ErrFileUnreadable)
	})
}
