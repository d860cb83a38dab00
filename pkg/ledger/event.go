package ledger

import (
	"fmt"
	"time"
)

// Kind distinguishes login events from logout events.
type Kind int

const (
	Login Kind = iota + 1
	Logout
)

func (k Kind) String() string {
	switch k {
	case Login:
		return "login"
	case Logout:
		return "logout"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is a single login or logout on a terminal.
type Event struct {
	terminal int
	kind     Kind
	username string
	at       time.Time
}

// NewEvent validates and builds an event. Timestamps are truncated to
// millisecond precision.
func NewEvent(terminal int, kind Kind, username string, at time.Time) (Event, error) {
	if terminal < 0 {
		return Event{}, fmt.Errorf("%w: terminal must be non-negative, got %d", ErrInvalidArgument, terminal)
	}
	if kind != Login && kind != Logout {
		return Event{}, fmt.Errorf("%w: unknown event kind %d", ErrInvalidArgument, int(kind))
	}
	if username == "" {
		return Event{}, fmt.Errorf("%w: username cannot be empty", ErrInvalidArgument)
	}
	return Event{
		terminal: terminal,
		kind:     kind,
		username: username,
		at:       time.UnixMilli(at.UnixMilli()),
	}, nil
}

// MustEvent is like NewEvent but panics on invalid input.
func MustEvent(terminal int, kind Kind, username string, at time.Time) Event {
	e, err := NewEvent(terminal, kind, username, at)
	if err != nil {
		panic(err)
	}
	return e
}

func (e Event) Terminal() int    { return e.terminal }
func (e Event) Kind() Kind       { return e.kind }
func (e Event) Username() string { return e.username }
func (e Event) Time() time.Time  { return e.at }
func (e Event) IsLogin() bool    { return e.kind == Login }
func (e Event) IsLogout() bool   { return e.kind == Logout }
func (e Event) UnixMilli() int64 { return e.at.UnixMilli() }

// Compare orders events by timestamp only.
func (e Event) Compare(other Event) int {
	return e.at.Compare(other.at)
}

// Equal reports whether kind, terminal, timestamp and username all match.
func (e Event) Equal(other Event) bool {
	return e.kind == other.kind &&
		e.terminal == other.terminal &&
		e.at.Equal(other.at) &&
		e.username == other.username
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s terminal %d at %d", e.username, e.kind, e.terminal, e.at.UnixMilli())
}
