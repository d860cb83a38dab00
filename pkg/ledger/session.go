package ledger

import (
	"fmt"
	"time"
)

// OpenDuration is the duration reported by a session without a logout.
const OpenDuration int64 = -1

// Session pairs a login with its matching logout, if any.
type Session struct {
	login    Event
	logout   *Event
	duration int64
}

// NewSession builds a session from a login and an optional logout.
// It fails with ErrInvalidSession when the events do not belong together.
func NewSession(login Event, logout *Event) (Session, error) {
	if !login.IsLogin() {
		return Session{}, fmt.Errorf("%w: %s is not a login", ErrInvalidSession, login)
	}
	if logout == nil {
		return Session{login: login, duration: OpenDuration}, nil
	}

	out := *logout
	switch {
	case !out.IsLogout():
		return Session{}, fmt.Errorf("%w: %s is not a logout", ErrInvalidSession, out)
	case out.username != login.username:
		return Session{}, fmt.Errorf("%w: login and logout are from different users", ErrInvalidSession)
	case out.terminal != login.terminal:
		return Session{}, fmt.Errorf("%w: login terminal %d does not match logout terminal %d",
			ErrInvalidSession, login.terminal, out.terminal)
	case !out.at.After(login.at):
		return Session{}, fmt.Errorf("%w: logout at %d is not after login at %d",
			ErrInvalidSession, out.UnixMilli(), login.UnixMilli())
	}

	return Session{
		login:    login,
		logout:   &out,
		duration: out.UnixMilli() - login.UnixMilli(),
	}, nil
}

func (s Session) Username() string     { return s.login.username }
func (s Session) Terminal() int        { return s.login.terminal }
func (s Session) LoginTime() time.Time { return s.login.at }

// LogoutTime returns the logout timestamp and whether the session is closed.
func (s Session) LogoutTime() (time.Time, bool) {
	if s.logout == nil {
		return time.Time{}, false
	}
	return s.logout.at, true
}

// Open reports whether the session has no matching logout.
func (s Session) Open() bool { return s.logout == nil }

// DurationMillis returns the connected time in milliseconds, or OpenDuration.
func (s Session) DurationMillis() int64 { return s.duration }

// Compare orders sessions by login timestamp.
func (s Session) Compare(other Session) int {
	return s.login.Compare(other.login)
}

// Equal reports whether both sessions share the same login and logout events.
func (s Session) Equal(other Session) bool {
	if !s.login.Equal(other.login) {
		return false
	}
	if s.logout == nil || other.logout == nil {
		return s.logout == nil && other.logout == nil
	}
	return s.logout.Equal(*other.logout)
}

func (s Session) String() string {
	if s.logout == nil {
		return fmt.Sprintf("%s, terminal %d, duration active session\n logged in: %s\n logged out: still logged in",
			s.Username(), s.Terminal(), formatInstant(s.login.at))
	}
	return fmt.Sprintf("%s, terminal %d, duration %s\n logged in: %s\n logged out: %s",
		s.Username(), s.Terminal(), FormatDuration(s.duration),
		formatInstant(s.login.at), formatInstant(s.logout.at))
}

func formatInstant(t time.Time) string {
	return t.Format(time.UnixDate)
}
