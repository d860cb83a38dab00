package cli

import (
	"fmt"
	"path/filepath"

	"github.com/harun/loginstats/internal/audit"
	"github.com/harun/loginstats/internal/eventlog"
	"github.com/harun/loginstats/internal/store"
	"github.com/spf13/cobra"
)

var importDB string

var importCmd = &cobra.Command{
	Use:   "import <events-file>",
	Short: "Import an events file into the SQLite archive",
	Long: `Parse an events file and append its events to the SQLite archive.
Events already present in the archive are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importDB, "db", "", "SQLite archive path (default is database.path from the config)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	dbPath := importDB
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	if dbPath == "" {
		return fmt.Errorf("no database configured: pass --db or set database.path")
	}

	events, err := eventlog.ReadFile(args[0])
	if err != nil {
		return err
	}

	st, err := store.Open(store.Config{Path: dbPath, Logger: log.GetZerolog()})
	if err != nil {
		return err
	}
	defer st.Close()

	added, err := st.SaveEvents(cmd.Context(), events)
	if err != nil {
		return err
	}

	total, err := st.Count(cmd.Context())
	if err != nil {
		return err
	}

	users, err := st.Users(cmd.Context())
	if err != nil {
		return err
	}

	if auditLog, err := audit.New(filepath.Join(cfg.DataDir, "audit.log")); err == nil {
		auditLog.RecordImport(cmd.Context(), args[0], dbPath, len(events), added)
		auditLog.Close()
	} else {
		log.Warn().Err(err).Msg("Failed to open audit log")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d new events (%d read, %d in archive)\n", added, len(events), total)
	fmt.Fprintf(cmd.OutOrStdout(), "Users in archive: %d\n", len(users))
	return nil
}
