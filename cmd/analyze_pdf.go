package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"veritas-console/internal/normalize"
)

// analyzePDFCmd uploads a PDF for extraction and analysis.
var analyzePDFCmd = &cobra.Command{
	Use:   "analyze-pdf <file.pdf>",
	Short: "Upload a PDF for extraction and analysis",
	Long: `Upload a PDF document to the analysis service. The service extracts the
case text and runs it through the agent pipeline; the normalized result is
printed the same way as for a text query.

Examples:
  veritas-console analyze-pdf brief.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyzePDF,
}

func init() {
	rootCmd.AddCommand(analyzePDFCmd)
}

func runAnalyzePDF(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_, api, _, err := buildSession("[analyze-pdf] ")
	if err != nil {
		return err
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read PDF: %w", err)
	}

	raw, err := api.AnalyzePDF(ctx, filepath.Base(path), content)
	if err != nil {
		return fmt.Errorf("PDF analysis failed: %w", err)
	}

	res := normalize.Normalize(raw)
	printResult(res, res.Cases)
	return nil
}
