package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"veritas-console/internal/client"
	"veritas-console/internal/normalize"
)

var watchSettle time.Duration

// watchCmd watches a directory and submits newly dropped PDFs for analysis.
var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory and analyze new PDFs",
	Long: `Watch a directory and automatically submit newly created PDF files for
analysis. Files are given a settle period after the last write before upload,
so partially copied documents are not submitted.

Runs until interrupted.

Examples:
  veritas-console watch ./inbox
  veritas-console watch --settle 5s ./inbox`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchSettle, "settle", 2*time.Second, "Quiet period after the last write before a file is uploaded")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dir := args[0]

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	_, api, logger, err := buildSession("[watch] ")
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logger.Printf("Watching %s for PDFs", dir)

	// Last write time per pending file; a file uploads once it has been
	// quiet for the settle period.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), ".pdf") {
				continue
			}
			pending[ev.Name] = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Printf("watch error: %v", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < watchSettle {
					continue
				}
				delete(pending, path)
				if err := submitPDF(ctx, api, path, logger); err != nil {
					if errors.Is(err, client.ErrAuthExpired) {
						return fmt.Errorf("session expired while watching: %w", err)
					}
					logger.Printf("analysis failed for %s (will not retry): %v", path, err)
				}
			}
		}
	}
}

func submitPDF(ctx context.Context, api *client.Client, path string, logger *log.Logger) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read failed: %w", err)
	}

	logger.Printf("Analyzing %s (%d bytes)", filepath.Base(path), len(content))
	raw, err := api.AnalyzePDF(ctx, filepath.Base(path), content)
	if err != nil {
		return err
	}

	res := normalize.Normalize(raw)
	logger.Printf("%s: %d cases, confidence %.2f", filepath.Base(path), res.TotalResults, res.Confidence)
	return nil
}
