package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"veritas-console/internal/normalize"
	"veritas-console/internal/record"
	"veritas-console/internal/view"
)

var (
	querySort    string
	queryCourt   string
	queryMinCite int
)

// queryCmd submits one query and prints the normalized result.
var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Submit a legal query and print the result",
	Long: `Submit a free-text legal query to the agent pipeline and print the
normalized case list and citation verdicts.

Examples:
  # Plain query
  veritas-console query "fourth amendment vehicle search"

  # Filtered and sorted
  veritas-console query --court "9th Cir" --min-citations 5 --sort MostCited "qualified immunity"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVar(&querySort, "sort", string(view.SortNewest), "Sort order: Newest, Oldest, MostCited, LeastCited")
	queryCmd.Flags().StringVar(&queryCourt, "court", "", "Only show cases whose court contains this substring")
	queryCmd.Flags().IntVar(&queryMinCite, "min-citations", 0, "Only show cases cited at least this often")
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_, api, _, err := buildSession("[query] ")
	if err != nil {
		return err
	}

	queryText := strings.Join(args, " ")
	raw, err := api.SubmitQuery(ctx, queryText)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	res := normalize.Normalize(raw)

	sortKey := view.SortKey(querySort)
	switch sortKey {
	case view.SortNewest, view.SortOldest, view.SortMostCited, view.SortLeastCited:
	default:
		return fmt.Errorf("unknown sort order: %s", querySort)
	}

	// One-shot output is not paged; size the single page to fit everything.
	state := view.NewState(len(res.Cases) + 1)
	state.SetSort(sortKey)
	state.SetCourtFilter(queryCourt)
	state.SetMinCitations(queryMinCite)

	page, err := view.Apply(res.Cases, state)
	if err != nil {
		return err
	}

	printResult(res, page.Cases)
	return nil
}

func printResult(res *record.AnalysisResult, cases []record.CaseRecord) {
	fmt.Printf("Found %d cases (showing %d):\n\n", res.TotalResults, len(cases))
	for i, c := range cases {
		fmt.Printf("%d. %s\n", i+1, c.Title)
		fmt.Printf("   Court: %s\n", c.Court)
		fmt.Printf("   Date: %s   Decision: %s   Cited: %d\n", c.DecisionDate, c.Decision, c.CitationCount)
		if c.Summary != "" {
			fmt.Printf("   %s\n", strings.ReplaceAll(c.Summary, "\n", "\n   "))
		}
		fmt.Println()
	}

	if res.Summary != "" {
		fmt.Printf("Summary:\n%s\n\n", res.Summary)
	}
	if len(res.Issues) > 0 {
		fmt.Println("Issues:")
		for _, issue := range res.Issues {
			fmt.Printf("  - %s\n", issue)
		}
		fmt.Println()
	}
	if res.CitationAnalyses != nil {
		fmt.Println("Citation verification:")
		for _, a := range res.CitationAnalyses {
			fmt.Printf("  [%s] %s\n", a.Status, a.CitationText)
			if a.Issues != "" {
				fmt.Printf("        issues: %s\n", a.Issues)
			}
		}
	} else if res.RawVerification != "" {
		fmt.Printf("Citation verification (unparsed):\n%s\n", res.RawVerification)
	}
}
