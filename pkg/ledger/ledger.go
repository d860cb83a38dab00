package ledger

import (
	"fmt"
	"iter"

	"github.com/harun/loginstats/pkg/sortedlist"
)

// Ledger holds terminal events in timestamp order and answers per-user
// session queries.
type Ledger struct {
	events *sortedlist.List[Event]
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{events: sortedlist.New[Event]()}
}

// Insert adds an event at its timestamp position. Events sharing a
// timestamp keep their insertion order.
func (l *Ledger) Insert(e Event) bool {
	return l.events.Insert(e)
}

// Len returns the number of stored events.
func (l *Ledger) Len() int {
	return l.events.Len()
}

// Clear drops every event.
func (l *Ledger) Clear() {
	l.events.Clear()
}

// Events iterates over the stored events in ascending timestamp order.
func (l *Ledger) Events() iter.Seq[Event] {
	return l.events.All()
}

// Users returns the distinct usernames in order of their first event.
func (l *Ledger) Users() []string {
	seen := make(map[string]struct{})
	var users []string
	for e := range l.events.All() {
		if _, ok := seen[e.username]; ok {
			continue
		}
		seen[e.username] = struct{}{}
		users = append(users, e.username)
	}
	return users
}

// FirstSession returns the session opened by the user's earliest login.
func (l *Ledger) FirstSession(user string) (Session, error) {
	if err := checkUser(user); err != nil {
		return Session{}, err
	}
	events := l.events.Slice()
	at := -1
	for i, e := range events {
		if e.IsLogin() && e.username == user {
			at = i
			break
		}
	}
	if at < 0 {
		return Session{}, notFound(user)
	}
	return pair(events, at)
}

// LastSession returns the session opened by the user's latest login.
// A logout is searched for only after that login.
func (l *Ledger) LastSession(user string) (Session, error) {
	if err := checkUser(user); err != nil {
		return Session{}, err
	}
	events := l.events.Slice()
	at := -1
	for i, e := range events {
		if e.IsLogin() && e.username == user {
			at = i
		}
	}
	if at < 0 {
		return Session{}, notFound(user)
	}
	return pair(events, at)
}

// AllSessions returns one session per login of the user, ordered by login time.
func (l *Ledger) AllSessions(user string) (*sortedlist.List[Session], error) {
	if err := checkUser(user); err != nil {
		return nil, err
	}
	events := l.events.Slice()
	sessions := sortedlist.New[Session]()
	for i, e := range events {
		if !e.IsLogin() || e.username != user {
			continue
		}
		s, err := pair(events, i)
		if err != nil {
			return nil, err
		}
		sessions.Insert(s)
	}
	if sessions.Len() == 0 {
		return nil, notFound(user)
	}
	return sessions, nil
}

// TotalDuration sums, in milliseconds, the durations of the user's closed
// sessions. Open sessions do not contribute.
func (l *Ledger) TotalDuration(user string) (int64, error) {
	if _, err := l.FirstSession(user); err != nil {
		return 0, err
	}
	sessions, err := l.AllSessions(user)
	if err != nil {
		return 0, err
	}
	var total int64
	for s := range sessions.All() {
		if s.duration > 0 {
			total += s.duration
		}
	}
	return total, nil
}

// TotalDurationFormatted is TotalDuration rendered by FormatDuration.
func (l *Ledger) TotalDurationFormatted(user string) (string, error) {
	total, err := l.TotalDuration(user)
	if err != nil {
		return "", err
	}
	return FormatDuration(total), nil
}

// pair builds the session for the login at events[at], matching it with the
// first later logout by the same user on the same terminal.
func pair(events []Event, at int) (Session, error) {
	login := events[at]
	var logout *Event
	for i := at + 1; i < len(events); i++ {
		e := events[i]
		if e.IsLogout() && e.username == login.username && e.terminal == login.terminal {
			logout = &events[i]
			break
		}
	}
	s, err := NewSession(login, logout)
	if err != nil {
		return Session{}, fmt.Errorf("%w: list not in order: %w", ErrNotFound, err)
	}
	return s, nil
}

func checkUser(user string) error {
	if user == "" {
		return fmt.Errorf("%w: username cannot be empty", ErrInvalidArgument)
	}
	return nil
}

func notFound(user string) error {
	return fmt.Errorf("%w: user %q does not have a login record", ErrNotFound, user)
}
