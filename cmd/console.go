package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"veritas-console/internal/history"
	"veritas-console/internal/ui"
)

// consoleCmd launches the interactive terminal UI.
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Launch the interactive console",
	Long: `Launch the interactive console: a query bar, a paged case table with
expandable detail, a citation verification panel, and your query history.

Selecting a history entry replays its stored result from the service instead
of re-running the agent pipeline.

Keys:
  /        focus the query bar
  s        cycle sort (Newest, Oldest, MostCited, LeastCited)
  f        open the court / citation-count filter
  n, p     next / previous page
  x, Enter expand or collapse the selected case
  F5       reload history
  q        quit`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()

	_, api, logger, err := buildSession("[console] ")
	if err != nil {
		return err
	}

	// The history cache lives exactly as long as this console session.
	cache := history.NewCache(api, logger)
	defer cache.Reset()

	console := ui.NewConsole(ctx, api, cache, config.View.PageSize, logger)
	if err := console.Run(); err != nil {
		return fmt.Errorf("console exited with error: %w", err)
	}
	return nil
}
