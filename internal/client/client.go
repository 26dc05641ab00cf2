// Package client is the HTTP transport for the VeritasAI API. It is the only
// place that talks to the network; everything above it works with raw
// payload bytes or canonical records.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"veritas-console/internal/record"
)

// ErrAuthExpired reports that the service rejected the session token. The
// caller must prompt for re-authentication; retrying with the same token is
// pointless.
var ErrAuthExpired = errors.New("authentication expired")

// ErrNoStoredResult reports that the service has no stored result for a
// history entry. It is an expected outcome, not a transport failure.
var ErrNoStoredResult = errors.New("no stored result")

// Config holds client connection settings.
type Config struct {
	BaseURL      string
	Token        string
	Timeout      time.Duration
	RateLimitRPS int
	BurstLimit   int
}

// Client is an authenticated VeritasAI API client with request throttling.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// New creates a client from config, filling in defaults for unset knobs.
func New(config Config, logger *log.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("API base URL is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimitRPS <= 0 {
		config.RateLimitRPS = 5
	}
	if config.BurstLimit <= 0 {
		config.BurstLimit = config.RateLimitRPS * 2
	}

	httpClient := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     30 * time.Second,
		},
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		token:      config.Token,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(config.RateLimitRPS), config.BurstLimit),
		logger:     logger,
	}, nil
}

// SubmitQuery sends a free-text legal query through the agent pipeline and
// returns the raw result payload. Normalization is the caller's concern.
func (c *Client) SubmitQuery(ctx context.Context, query string) ([]byte, error) {
	body := map[string]string{"query": query}
	resp, err := c.do(ctx, http.MethodPost, "/query", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

// AnalyzePDF uploads a PDF for extraction and analysis. Content is sent
// base64-encoded in the request body.
func (c *Client) AnalyzePDF(ctx context.Context, filename string, content []byte) ([]byte, error) {
	body := map[string]string{
		"filename": filename,
		"content":  base64.StdEncoding.EncodeToString(content),
	}
	resp, err := c.do(ctx, http.MethodPost, "/analyze-pdf", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

// UserQueries lists the authenticated user's past query executions.
func (c *Client) UserQueries(ctx context.Context) ([]record.HistoryEntry, error) {
	resp, err := c.do(ctx, http.MethodGet, "/user/queries", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var payload struct {
		Queries []record.HistoryEntry `json:"queries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	return payload.Queries, nil
}

// StoredResult fetches the stored result for a prior query execution, keyed
// by query and timestamp. A response that explicitly carries no result maps
// to ErrNoStoredResult.
func (c *Client) StoredResult(ctx context.Context, query, timestamp string) ([]byte, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("timestamp", timestamp)

	resp, err := c.do(ctx, http.MethodGet, "/user/result?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoStoredResult
	}
	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored result: %w", err)
	}
	// Some service versions answer 200 with a result envelope, where a null
	// result is the explicit no-result marker.
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if result, exists := envelope["result"]; exists {
			if string(result) == "null" {
				return nil, ErrNoStoredResult
			}
			return result, nil
		}
	}
	return raw, nil
}

// Status reports service health.
func (c *Client) Status(ctx context.Context) (map[string]string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/status", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var status map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status: %w", err)
	}
	return status, nil
}

// Profile returns the authenticated user's identity as reported by the
// service.
func (c *Client) Profile(ctx context.Context) (*UserProfile, error) {
	resp, err := c.do(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var profile UserProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &profile, nil
}

// UserProfile is the identity payload from /auth/me.
type UserProfile struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
}

// do issues one authenticated, rate-limited request.
func (c *Client) do(ctx context.Context, method, endpoint string, body interface{}) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// checkStatus maps error responses onto the client's error taxonomy. 401 is
// always ErrAuthExpired so callers can distinguish it from retryable
// transport failures.
func (c *Client) checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrAuthExpired
	case resp.StatusCode >= 400:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Printf("API error %d on %s: %s", resp.StatusCode, resp.Request.URL.Path, string(snippet))
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	default:
		return nil
	}
}
