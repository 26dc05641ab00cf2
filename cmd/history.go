package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"veritas-console/internal/history"
)

var historyReplay bool

// historyCmd lists past query executions, optionally replaying their stored
// results.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List your past queries",
	Long: `List the authenticated user's past query executions.

With --replay, each entry's stored result is fetched and summarized. Entries
without a stored result are reported as such, not treated as errors.

Examples:
  veritas-console history
  veritas-console history --replay`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().BoolVar(&historyReplay, "replay", false, "Fetch and summarize each entry's stored result")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_, api, logger, err := buildSession("[history] ")
	if err != nil {
		return err
	}

	entries, err := api.UserQueries(ctx)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No past queries.")
		return nil
	}

	cache := history.NewCache(api, logger)
	defer cache.Reset()

	fmt.Printf("Found %d past queries:\n\n", len(entries))
	for i, entry := range entries {
		fmt.Printf("%d. %s\n", i+1, entry.Query)
		fmt.Printf("   At: %s\n", entry.Timestamp)

		if historyReplay {
			cases, err := cache.Resolve(ctx, entry)
			switch {
			case err == nil:
				fmt.Printf("   Stored result: %d cases\n", len(cases))
			case errors.Is(err, history.ErrNotFound):
				fmt.Println("   Stored result: none")
			default:
				return fmt.Errorf("failed to resolve %q: %w", entry.Query, err)
			}
		}
		fmt.Println()
	}
	return nil
}
