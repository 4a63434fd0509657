// Package birthdays is a Go client for the birthday reminder service.
package birthdays

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config holds the configuration for the reminder client.
type Config struct {
	// BaseURL is the root URL of the reminder service, e.g. "https://mail.birthdays.run".
	BaseURL string

	// Token is the shared bearer token configured on the server.
	Token string

	// HTTPClient is an optional custom HTTP client.
	// If nil, a default client with 15s timeout is used.
	HTTPClient *http.Client
}

func (c *Config) defaults() {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
}

// Client calls the reminder service.
type Client struct {
	cfg Config
}

// NewClient creates a new client with the given configuration.
func NewClient(cfg Config) *Client {
	cfg.defaults()
	return &Client{cfg: cfg}
}

// SendReminder asks the service to email the owner of r.UserID.
// A response with ok=false is returned as *APIError, even when the
// server answers 200.
func (c *Client) SendReminder(ctx context.Context, r Reminder) error {
	if r.UserID == "" {
		return ErrMissingUserID
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("birthdays: failed to encode reminder: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/sendemail", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("birthdays: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("birthdays: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("birthdays: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	var result sendResult
	if err := json.Unmarshal(body, &result); err != nil {
		return parseAPIError(resp.StatusCode, body)
	}
	if resp.StatusCode != http.StatusOK || !result.OK {
		return parseAPIError(resp.StatusCode, body)
	}

	return nil
}

// Healthy reports whether the service and its dependencies are up.
func (c *Client) Healthy(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/health", nil)
	if err != nil {
		return false, fmt.Errorf("birthdays: failed to create request: %w", err)
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("birthdays: request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK, nil
}
