package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// whoamiCmd shows the identity behind the configured session token, both as
// decoded locally and as confirmed by the service.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, api, _, err := buildSession("[whoami] ")
		if err != nil {
			return err
		}

		fmt.Printf("Session: %s\n", session.ID)
		if !session.Expiry.IsZero() {
			fmt.Printf("Token expires: %s\n", session.Expiry)
		}

		profile, err := api.Profile(cmd.Context())
		if err != nil {
			return fmt.Errorf("profile lookup failed: %w", err)
		}
		fmt.Printf("User: %s\n", profile.UserID)
		fmt.Printf("Email: %s\n", profile.Email)
		if profile.Name != "" {
			fmt.Printf("Name: %s\n", profile.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
