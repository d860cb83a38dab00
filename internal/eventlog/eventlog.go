package eventlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/harun/loginstats/pkg/ledger"
	"github.com/rs/zerolog/log"
)

var (
	// ErrFileNotExist is returned when the events file is missing.
	ErrFileNotExist = errors.New("events file does not exist")
	// ErrFileUnreadable is returned when the events file cannot be opened.
	ErrFileUnreadable = errors.New("events file cannot be opened")
)

// ParseError describes a malformed line in an events file.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseLine parses "<signed-terminal> <epoch-millis> <username>".
// A positive terminal is a login; zero or negative is a logout at abs(terminal).
func ParseLine(line string) (ledger.Event, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return ledger.Event{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}

	terminal, err := strconv.Atoi(fields[0])
	if err != nil {
		return ledger.Event{}, fmt.Errorf("invalid terminal: %w", err)
	}
	kind := ledger.Login
	if terminal <= 0 {
		kind = ledger.Logout
		terminal = -terminal
	}

	ms, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return ledger.Event{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	return ledger.NewEvent(terminal, kind, fields[2], time.UnixMilli(ms))
}

// Format renders an event in the events file line format.
func Format(e ledger.Event) string {
	terminal := e.Terminal()
	if e.IsLogout() {
		terminal = -terminal
	}
	return fmt.Sprintf("%d %d %s", terminal, e.UnixMilli(), e.Username())
}

// Parse reads every event from r. Blank lines are skipped; the first
// malformed line aborts with a *ParseError.
func Parse(r io.Reader) ([]ledger.Event, error) {
	var events []ledger.Event
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		e, err := ParseLine(text)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: text, Err: err}
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}

// Write renders events to w, one per line.
func Write(w io.Writer, events []ledger.Event) error {
	bw := bufio.NewWriter(w)
	for _, e := range events {
		if _, err := fmt.Fprintln(bw, Format(e)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadFile parses the events file at path.
func ReadFile(path string) ([]ledger.Event, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotExist, abs)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrFileUnreadable, abs, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFileUnreadable, abs, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrFileUnreadable, abs)
	}

	return Parse(file)
}

// LoadFile reads the events file at path into l and returns the number of
// events inserted.
func LoadFile(path string, l *ledger.Ledger) (int, error) {
	start := time.Now()
	events, err := ReadFile(path)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, e := range events {
		if l.Insert(e) {
			n++
		}
	}

	log.Debug().
		Str("path", path).
		Int("events", n).
		Dur("elapsed", time.Since(start)).
		Msg("Events file loaded")

	return n, nil
}
