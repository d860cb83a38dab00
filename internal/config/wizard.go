package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Wizard provides an interactive configuration wizard
type Wizard struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewWizard creates a new configuration wizard
func NewWizard(in io.Reader, out io.Writer) *Wizard {
	return &Wizard{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run runs the interactive configuration wizard
func (w *Wizard) Run() (*Config, error) {
	fmt.Fprintln(w.out, "=== Login Stats Configuration Wizard ===")
	fmt.Fprintln(w.out)

	cfg := DefaultConfig()
	validator := NewValidator()

	// Event sources
	fmt.Fprintln(w.out, "Event sources (at least one is required):")
	fmt.Fprintln(w.out)

	for {
		fmt.Fprint(w.out, "Events file (press Enter to skip): ")
		path, err := w.readLine()
		if err != nil {
			return nil, err
		}

		if path == "" {
			break
		}

		if err := validator.ValidateEventsFile(path); err != nil {
			fmt.Fprintf(w.out, "Error: %v\n", err)
			continue
		}

		cfg.EventsFile = path
		break
	}

	fmt.Fprint(w.out, "SQLite database path (press Enter to skip): ")
	dbPath, err := w.readLine()
	if err != nil {
		return nil, err
	}
	cfg.Database.Path = dbPath

	if cfg.Source() == "" {
		return nil, fmt.Errorf("an events file or a database path is required")
	}

	fmt.Fprintln(w.out)

	// Server
	fmt.Fprintln(w.out, "Query Server:")
	fmt.Fprintf(w.out, "Host [%s]: ", cfg.Server.Host)
	host, err := w.readLine()
	if err != nil {
		return nil, err
	}
	if host != "" {
		cfg.Server.Host = host
	}

	for {
		fmt.Fprintf(w.out, "Port [%d]: ", cfg.Server.Port)
		raw, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if raw == "" {
			break
		}

		port, convErr := strconv.Atoi(raw)
		if convErr == nil {
			convErr = validator.ValidatePort(port)
		}
		if convErr != nil {
			fmt.Fprintf(w.out, "Error: %v\n", convErr)
			continue
		}

		cfg.Server.Port = port
		break
	}

	fmt.Fprint(w.out, "Reload schedule, e.g. @every 5m (press Enter to skip): ")
	schedule, err := w.readLine()
	if err != nil {
		return nil, err
	}
	if schedule != "" {
		if err := validator.ValidateSchedule(schedule); err != nil {
			fmt.Fprintf(w.out, "Warning: %v, scheduled reload disabled\n", err)
		} else {
			cfg.Reload.Schedule = schedule
		}
	}

	fmt.Fprintln(w.out)

	// Log Level
	fmt.Fprintln(w.out, "Logging:")
	fmt.Fprint(w.out, "Log level (debug/info/warn/error) [info]: ")
	level, err := w.readLine()
	if err != nil {
		return nil, err
	}

	if level != "" {
		if err := validator.ValidateLogLevel(level); err != nil {
			fmt.Fprintf(w.out, "Warning: %v, using default (info)\n", err)
		} else {
			cfg.Logging.Level = level
		}
	}

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "Configuration complete!")

	return cfg, nil
}

func (w *Wizard) readLine() (string, error) {
	line, err := w.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
