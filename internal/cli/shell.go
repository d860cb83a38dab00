package cli

import (
	"fmt"

	"github.com/harun/loginstats/internal/shell"
	"github.com/spf13/cobra"
)

var shellDB string

var shellCmd = &cobra.Command{
	Use:   "shell [events-file]",
	Short: "Start the interactive query shell",
	Long: `Load events and start the interactive query shell.

Commands:
  first USERNAME   retrieves first login session for the USER
  last USERNAME    retrieves last login session for the USER
  all USERNAME     retrieves all login sessions for the USER
  total USERNAME   retrieves total login duration for the USER
  quit             terminates this program`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShell,
}

func init() {
	shellCmd.Flags().StringVar(&shellDB, "db", "", "load events from this SQLite archive instead of a file")
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	file := ""
	if len(args) == 1 {
		file = args[0]
	}
	src, err := resolveSource(cfg, file, shellDB)
	if err != nil {
		return err
	}

	l, err := src.load(cmd.Context(), log.GetZerolog())
	if err != nil {
		return err
	}

	log.Debug().Str("source", src.String()).Int("events", l.Len()).Msg("Starting shell")

	sh := shell.New(cmd.InOrStdin(), cmd.OutOrStdout(), l, log.GetZerolog())
	if err := sh.Run(); err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	return nil
}
