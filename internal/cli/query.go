package cli

import (
	"strings"

	"github.com/harun/loginstats/internal/shell"
	"github.com/spf13/cobra"
)

var (
	queryFile   string
	queryDB     string
	queryOutput string
)

var queryCmd = &cobra.Command{
	Use:   "query <first|last|all|total> <username>",
	Short: "Answer a single session query",
	Long: `Answer a single session query and exit.

The answer is printed as text (the same format as the shell), json or yaml.`,
	Example: `  loginstats query first alice --file events.txt
  loginstats query total bob --db ~/.loginstats/events.db --output json`,
	Args: cobra.ExactArgs(2),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryFile, "file", "", "events file to load")
	queryCmd.Flags().StringVar(&queryDB, "db", "", "SQLite archive to load")
	queryCmd.Flags().StringVarP(&queryOutput, "output", "o", shell.FormatText, "output format (text, json, yaml)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	op := strings.ToLower(args[0])
	user := args[1]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	src, err := resolveSource(cfg, queryFile, queryDB)
	if err != nil {
		return err
	}

	l, err := src.load(cmd.Context(), log.GetZerolog())
	if err != nil {
		return err
	}

	result, err := shell.Query(l, op, user)
	if err != nil {
		return err
	}
	return shell.Render(cmd.OutOrStdout(), queryOutput, result)
}
