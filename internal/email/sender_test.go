package email

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birthdaysrun/reminder/internal/config"
)

func TestNewSender_SelectsProvider(t *testing.T) {
	t.Parallel()

	base := config.EmailConfig{
		SenderAddress: "reminder@birthdays.run",
		SenderName:    "Birthday Reminders",
		MailChannels:  config.MailChannelsConfig{Endpoint: "https://api.mailchannels.net/tx/v1/send"},
		Resend:        config.ResendEmailConfig{APIKey: "re_test"},
	}

	mc := base
	mc.Provider = config.ProviderMailChannels
	s, err := NewSender(context.Background(), mc, nil)
	require.NoError(t, err)
	assert.IsType(t, &MailChannelsSender{}, s)

	rs := base
	rs.Provider = config.ProviderResend
	s, err = NewSender(context.Background(), rs, nil)
	require.NoError(t, err)
	assert.IsType(t, &ResendSender{}, s)

	unknown := base
	unknown.Provider = "fax"
	_, err = NewSender(context.Background(), unknown, nil)
	assert.Error(t, err)
}

func TestNewSender_GmailRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewSender(context.Background(), config.EmailConfig{
		Provider:      config.ProviderGmail,
		SenderAddress: "reminder@birthdays.run",
		Gmail:         config.GmailEmailConfig{CredentialsJSON: "{not json"},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gmail: failed to parse credentials")
}

func TestBuildMIME(t *testing.T) {
	t.Parallel()

	raw := buildMIME(formatFrom("Birthday Reminders", "reminder@birthdays.run"), Message{
		To:       "ada@example.com",
		Subject:  "Ada's Birthday",
		HTMLBody: "<p>hi</p>",
	})

	assert.True(t, strings.HasPrefix(raw, "From: Birthday Reminders <reminder@birthdays.run>\r\n"))
	assert.Contains(t, raw, "To: ada@example.com\r\n")
	assert.Contains(t, raw, "Subject: Ada's Birthday\r\n")
	assert.Contains(t, raw, "Content-Type: text/html; charset=UTF-8\r\n\r\n<p>hi</p>")
}
