package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	tests := []struct {
		name     string
		terminal int
		kind     Kind
		user     string
		wantErr  bool
	}{
		{"valid login", 1, Login, "a", false},
		{"terminal zero", 0, Logout, "a", false},
		{"negative terminal", -1, Login, "a", true},
		{"empty user", 1, Login, "", true},
		{"unknown kind", 1, Kind(9), "a", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEvent(tt.terminal, tt.kind, tt.user, time.UnixMilli(1))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEvent_EqualAndCompare(t *testing.T) {
	a := login(1, 100, "a")

	assert.True(t, a.Equal(login(1, 100, "a")))
	assert.False(t, a.Equal(logout(1, 100, "a")))
	assert.False(t, a.Equal(login(2, 100, "a")))
	assert.False(t, a.Equal(login(1, 101, "a")))
	assert.False(t, a.Equal(login(1, 100, "b")))

	assert.Equal(t, 0, a.Compare(login(9, 100, "z")))
	assert.Equal(t, -1, a.Compare(login(1, 200, "a")))
	assert.Equal(t, 1, a.Compare(login(1, 50, "a")))
}

func TestNewSession(t *testing.T) {
	in := login(1, 100, "a")
	ptr := func(e Event) *Event { return &e }

	tests := []struct {
		name    string
		login   Event
		logout  *Event
		wantErr bool
	}{
		{"closed", in, ptr(logout(1, 300, "a")), false},
		{"open", in, nil, false},
		{"login is a logout", logout(1, 100, "a"), nil, true},
		{"logout is a login", in, ptr(login(1, 300, "a")), true},
		{"different user", in, ptr(logout(1, 300, "b")), true},
		{"different terminal", in, ptr(logout(2, 300, "a")), true},
		{"same instant", in, ptr(logout(1, 100, "a")), true},
		{"logout before login", in, ptr(logout(1, 50, "a")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSession(tt.login, tt.logout)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSession)
				return
			}
			require.NoError(t, err)
			if tt.logout == nil {
				assert.Equal(t, OpenDuration, s.DurationMillis())
			} else {
				assert.Equal(t, int64(200), s.DurationMillis())
			}
		})
	}
}

func TestSession_EqualAndOrder(t *testing.T) {
	out := logout(1, 300, "a")
	closed, err := NewSession(login(1, 100, "a"), &out)
	require.NoError(t, err)
	open, err := NewSession(login(1, 100, "a"), nil)
	require.NoError(t, err)
	later, err := NewSession(login(1, 200, "a"), nil)
	require.NoError(t, err)

	assert.True(t, closed.Equal(closed))
	assert.False(t, closed.Equal(open))
	assert.False(t, open.Equal(closed))
	assert.True(t, open.Equal(open))
	assert.Equal(t, -1, open.Compare(later))
}

func TestSession_String(t *testing.T) {
	out := logout(4, 100+61_000, "a")
	closed, err := NewSession(login(4, 100, "a"), &out)
	require.NoError(t, err)

	text := closed.String()
	assert.True(t, strings.HasPrefix(text, "a, terminal 4, duration 0 days, 0 hours, 1 minutes, 1 seconds\n logged in: "))
	assert.Contains(t, text, "\n logged out: ")

	open, err := NewSession(login(4, 100, "a"), nil)
	require.NoError(t, err)
	assert.Contains(t, open.String(), "duration active session")
	assert.Contains(t, open.String(), "logged out: still logged in")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0 days, 0 hours, 0 minutes, 0 seconds", FormatDuration(0))
	assert.Equal(t, "0 days, 0 hours, 0 minutes, 0 seconds", FormatDuration(999))
	assert.Equal(t, "0 days, 1 hours, 0 minutes, 0 seconds", FormatDuration(3_600_000))
	assert.Equal(t, "2 days, 0 hours, 0 minutes, 5 seconds", FormatDuration(2*86_400_000+5_000))
}
