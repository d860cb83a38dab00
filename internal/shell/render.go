package shell

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/harun/loginstats/pkg/ledger"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Render.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// SessionView is the serialisable form of a session.
type SessionView struct {
	Username       string     `json:"username" yaml:"username"`
	Terminal       int        `json:"terminal" yaml:"terminal"`
	LoginTime      time.Time  `json:"login_time" yaml:"login_time"`
	LogoutTime     *time.Time `json:"logout_time,omitempty" yaml:"logout_time,omitempty"`
	DurationMillis int64      `json:"duration_ms" yaml:"duration_ms"`
	Open           bool       `json:"open" yaml:"open"`
}

// TotalView is the serialisable form of a total duration answer.
type TotalView struct {
	Username       string `json:"username" yaml:"username"`
	DurationMillis int64  `json:"duration_ms" yaml:"duration_ms"`
	Formatted      string `json:"formatted" yaml:"formatted"`
}

// ViewOf converts a session into its serialisable form.
func ViewOf(s ledger.Session) SessionView {
	v := SessionView{
		Username:       s.Username(),
		Terminal:       s.Terminal(),
		LoginTime:      s.LoginTime().UTC(),
		DurationMillis: s.DurationMillis(),
		Open:           s.Open(),
	}
	if out, ok := s.LogoutTime(); ok {
		out = out.UTC()
		v.LogoutTime = &out
	}
	return v
}

// Query operations accepted by Query.
const (
	OpFirst = "first"
	OpLast  = "last"
	OpAll   = "all"
	OpTotal = "total"
)

// Query answers one ledger query for user as a serialisable view:
// SessionView for first and last, []SessionView for all, TotalView for total.
func Query(l *ledger.Ledger, op, user string) (any, error) {
	switch op {
	case OpFirst:
		session, err := l.FirstSession(user)
		if err != nil {
			return nil, err
		}
		return ViewOf(session), nil
	case OpLast:
		session, err := l.LastSession(user)
		if err != nil {
			return nil, err
		}
		return ViewOf(session), nil
	case OpAll:
		sessions, err := l.AllSessions(user)
		if err != nil {
			return nil, err
		}
		views := make([]SessionView, 0, sessions.Len())
		for session := range sessions.All() {
			views = append(views, ViewOf(session))
		}
		return views, nil
	case OpTotal:
		ms, err := l.TotalDuration(user)
		if err != nil {
			return nil, err
		}
		return TotalOf(user, ms), nil
	default:
		return nil, fmt.Errorf("unknown query %q (must be: first, last, all, total)", op)
	}
}

// TotalOf builds the total duration view.
func TotalOf(user string, ms int64) TotalView {
	return TotalView{Username: user, DurationMillis: ms, Formatted: ledger.FormatDuration(ms)}
}

// Render writes a query result in the requested format. Text output mirrors
// the interactive shell.
func Render(w io.Writer, format string, result any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return renderText(w, result)
	default:
		return fmt.Errorf("unknown output format %q (must be: text, json, yaml)", format)
	}
}

func renderText(w io.Writer, result any) error {
	var err error
	switch v := result.(type) {
	case SessionView:
		_, err = fmt.Fprintln(w, textSession(v))
	case []SessionView:
		for _, s := range v {
			if _, err = fmt.Fprintf(w, "%s\n\n", textSession(s)); err != nil {
				return err
			}
		}
	case TotalView:
		_, err = fmt.Fprintf(w, "%s , total duration %s\n", v.Username, v.Formatted)
	default:
		_, err = fmt.Fprintln(w, v)
	}
	return err
}

func textSession(v SessionView) string {
	login := v.LoginTime.Local().Format(time.UnixDate)
	if v.LogoutTime == nil {
		return fmt.Sprintf("%s, terminal %d, duration active session\n logged in: %s\n logged out: still logged in",
			v.Username, v.Terminal, login)
	}
	return fmt.Sprintf("%s, terminal %d, duration %s\n logged in: %s\n logged out: %s",
		v.Username, v.Terminal, ledger.FormatDuration(v.DurationMillis),
		login, v.LogoutTime.Local().Format(time.UnixDate))
}
