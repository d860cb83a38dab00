// Package shell runs the interactive query loop over a ledger.
//
// Commands are "first USER", "last USER", "all USER", "total USER" and
// "quit", matched case-insensitively.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/harun/loginstats/pkg/ledger"
	"github.com/rs/zerolog"
)

const (
	invalidCommand  = "Error: this is not a valid command. Try again.\n"
	invalidUsername = "Invalid username; username cannot be null or empty.\n"
)

// Shell reads commands from in and writes answers to out.
type Shell struct {
	in     *bufio.Scanner
	out    io.Writer
	ledger *ledger.Ledger
	logger zerolog.Logger
}

// New creates a shell over l.
func New(in io.Reader, out io.Writer, l *ledger.Ledger, logger zerolog.Logger) *Shell {
	return &Shell{
		in:     bufio.NewScanner(in),
		out:    out,
		ledger: l,
		logger: logger.With().Str("component", "shell").Logger(),
	}
}

// Run prints the banner and executes commands until "quit" or end of input.
func (s *Shell) Run() error {
	s.printBanner()
	for s.in.Scan() {
		quit, err := s.Execute(s.in.Text())
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
	return s.in.Err()
}

// Execute runs a single command line. It reports quit=true when the line is
// exactly "quit"; "quit" followed by arguments is ignored. Query failures are
// answered on out and only unexpected errors are returned.
func (s *Shell) Execute(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		fmt.Fprint(s.out, invalidCommand)
		return false, nil
	}
	cmd := strings.ToLower(fields[0])
	if cmd == "quit" {
		return len(fields) == 1, nil
	}
	if len(fields) != 2 {
		fmt.Fprint(s.out, invalidCommand)
		return false, nil
	}
	user := fields[1]

	s.logger.Debug().Str("command", cmd).Str("user", user).Msg("Executing command")

	switch cmd {
	case "first":
		session, qerr := s.ledger.FirstSession(user)
		if qerr == nil {
			fmt.Fprintln(s.out, session)
		}
		err = qerr
	case "last":
		session, qerr := s.ledger.LastSession(user)
		if qerr == nil {
			fmt.Fprintln(s.out, session)
		}
		err = qerr
	case "all":
		sessions, qerr := s.ledger.AllSessions(user)
		if qerr == nil {
			for session := range sessions.All() {
				fmt.Fprintln(s.out, session)
				fmt.Fprintln(s.out)
			}
		}
		err = qerr
	case "total":
		total, qerr := s.ledger.TotalDurationFormatted(user)
		if qerr == nil {
			fmt.Fprintf(s.out, "%s , total duration %s\n", user, total)
		}
		err = qerr
	default:
		fmt.Fprint(s.out, invalidCommand)
		return false, nil
	}

	return false, s.answerError(user, err)
}

// answerError prints a friendly message for expected query failures and
// returns everything else. Inconsistent event data surfaces as not found.
func (s *Shell) answerError(user string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ledger.ErrNotFound):
		if errors.Is(err, ledger.ErrInvalidSession) {
			s.logger.Error().Err(err).Str("user", user).Msg("Event data is inconsistent")
		}
		fmt.Fprintf(s.out, "No user matching %s found\n\n", user)
		return nil
	case errors.Is(err, ledger.ErrInvalidArgument):
		fmt.Fprint(s.out, invalidUsername)
		return nil
	default:
		return err
	}
}

func (s *Shell) printBanner() {
	fmt.Fprintln(s.out, "Welcome to Login Stats!")
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Available commands:")
	fmt.Fprintln(s.out, "  first USERNAME   -   retrieves first login session for the USER")
	fmt.Fprintln(s.out, "  last USERNAME    -   retrieves last login session for the USER")
	fmt.Fprintln(s.out, "  all USERNAME     -   retrieves all login sessions for the USER")
	fmt.Fprintln(s.out, "  total USERNAME   -   retrieves total login duration for the USER")
	fmt.Fprintln(s.out, "  quit             -   terminates this program")
	fmt.Fprintln(s.out)
}
