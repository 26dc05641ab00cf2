package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"veritas-console/internal/client"
)

// statusCmd checks service health. It works without a session token since
// the status endpoint is unauthenticated.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check service health",
	RunE: func(cmd *cobra.Command, args []string) error {
		config := GetConfig()
		logger := log.New(os.Stderr, "[status] ", log.LstdFlags)

		api, err := client.New(client.Config{
			BaseURL:      config.API.URL,
			Timeout:      config.API.Timeout,
			RateLimitRPS: config.API.RateLimitRPS,
		}, logger)
		if err != nil {
			return err
		}

		status, err := api.Status(cmd.Context())
		if err != nil {
			return fmt.Errorf("service unreachable: %w", err)
		}
		for k, v := range status {
			fmt.Printf("%s: %s\n", k, v)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
