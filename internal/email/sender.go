package email

import (
	"context"
	"fmt"
	"net/http"

	"github.com/birthdaysrun/reminder/internal/config"
)

// Sender is the interface that all email providers must implement.
type Sender interface {
	// Send makes exactly one delivery attempt for msg.
	Send(ctx context.Context, msg Message) error
}

// Message represents an email message to be sent.
type Message struct {
	To       string // recipient email address
	Subject  string // email subject
	HTMLBody string // HTML email body
}

// NewSender builds the Sender selected by cfg.Provider.
// httpClient is used by HTTP-based providers; nil selects a default client.
func NewSender(ctx context.Context, cfg config.EmailConfig, httpClient *http.Client) (Sender, error) {
	switch cfg.Provider {
	case config.ProviderMailChannels:
		return NewMailChannelsSender(MailChannelsConfig{
			Endpoint:      cfg.MailChannels.Endpoint,
			APIKey:        cfg.MailChannels.APIKey,
			DryRun:        cfg.MailChannels.DryRun,
			SenderAddress: cfg.SenderAddress,
			SenderName:    cfg.SenderName,
			HTTPClient:    httpClient,
		})
	case config.ProviderGmail:
		if cfg.Gmail.CredentialsJSON != "" {
			return NewGmailSender(ctx, GmailConfig{
				CredentialsJSON: cfg.Gmail.CredentialsJSON,
				SenderAddress:   cfg.SenderAddress,
				SenderName:      cfg.SenderName,
			})
		}
		return NewGmailSenderWithToken(ctx,
			cfg.Gmail.ClientID, cfg.Gmail.ClientSecret, cfg.Gmail.RefreshToken,
			cfg.SenderAddress, cfg.SenderName,
		)
	case config.ProviderResend:
		return NewResendSender(ResendConfig{
			APIKey:        cfg.Resend.APIKey,
			SenderAddress: cfg.SenderAddress,
			SenderName:    cfg.SenderName,
		})
	default:
		return nil, fmt.Errorf("email: unknown provider %q", cfg.Provider)
	}
}

// formatFrom renders an RFC 5322 sender address.
func formatFrom(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}
