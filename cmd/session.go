package cmd

import (
	"fmt"
	"log"
	"os"

	"veritas-console/internal/auth"
	"veritas-console/internal/client"
)

// buildSession constructs the authenticated session and API client from the
// current configuration. Submission is blocked up front when the token is
// missing or already expired, rather than failing on the first request.
func buildSession(prefix string) (*auth.Session, *client.Client, *log.Logger, error) {
	config := GetConfig()
	logger := log.New(os.Stderr, prefix, log.LstdFlags)

	session, err := auth.NewSession(config.API.Token)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("session setup failed (set --token or VERITAS_API_TOKEN): %w", err)
	}
	if session.Expired() {
		return nil, nil, nil, fmt.Errorf("session token expired at %s: %w", session.Expiry, client.ErrAuthExpired)
	}

	api, err := client.New(client.Config{
		BaseURL:      config.API.URL,
		Token:        session.Token,
		Timeout:      config.API.Timeout,
		RateLimitRPS: config.API.RateLimitRPS,
	}, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return session, api, logger, nil
}
