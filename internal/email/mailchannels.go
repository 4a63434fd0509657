package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// MailChannelsConfig holds the configuration for the MailChannels sender.
type MailChannelsConfig struct {
	// Endpoint is the transactional send URL.
	Endpoint string
	// APIKey is sent as X-Api-Key when non-empty.
	APIKey string
	// DryRun appends dry-run=true so the provider validates without sending.
	DryRun        bool
	SenderAddress string
	SenderName    string
	// HTTPClient is optional; a 10s-timeout client is used when nil.
	HTTPClient *http.Client
}

// MailChannelsSender implements Sender using the MailChannels transactional API.
type MailChannelsSender struct {
	client        *http.Client
	endpoint      string
	apiKey        string
	senderAddress string
	senderName    string
}

type mcAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mcPersonalization struct {
	To []mcAddress `json:"to"`
}

type mcContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mcSendRequest struct {
	Personalizations []mcPersonalization `json:"personalizations"`
	From             mcAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []mcContent         `json:"content"`
}

// NewMailChannelsSender creates a new MailChannelsSender.
func NewMailChannelsSender(cfg MailChannelsConfig) (*MailChannelsSender, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("mailchannels: endpoint is required")
	}
	if cfg.SenderAddress == "" {
		return nil, fmt.Errorf("mailchannels: sender address is required")
	}

	endpoint := cfg.Endpoint
	if cfg.DryRun {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("mailchannels: invalid endpoint: %w", err)
		}
		q := u.Query()
		q.Set("dry-run", "true")
		u.RawQuery = q.Encode()
		endpoint = u.String()
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &MailChannelsSender{
		client:        client,
		endpoint:      endpoint,
		apiKey:        cfg.APIKey,
		senderAddress: cfg.SenderAddress,
		senderName:    cfg.SenderName,
	}, nil
}

// Send posts msg to MailChannels. Any non-2xx response is an error.
func (s *MailChannelsSender) Send(ctx context.Context, msg Message) error {
	payload := mcSendRequest{
		Personalizations: []mcPersonalization{
			{To: []mcAddress{{Email: msg.To}}},
		},
		From: mcAddress{
			Email: s.senderAddress,
			Name:  s.senderName,
		},
		Subject: msg.Subject,
		Content: []mcContent{
			{Type: "text/html", Value: msg.HTMLBody},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("mailchannels: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mailchannels: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("mailchannels: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &ProviderError{
			Provider:   "mailchannels",
			StatusCode: resp.StatusCode,
			Body:       string(bytes.TrimSpace(excerpt)),
		}
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return nil
}
