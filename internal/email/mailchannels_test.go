package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailChannelsSender_Send_Payload(t *testing.T) {
	t.Parallel()

	var (
		gotBody   map[string]any
		gotHeader http.Header
		gotQuery  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		gotQuery = r.URL.RawQuery
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s, err := NewMailChannelsSender(MailChannelsConfig{
		Endpoint:      srv.URL + "/tx/v1/send",
		APIKey:        "mc-key",
		SenderAddress: "reminder@birthdays.run",
		SenderName:    "Birthday Reminders",
		HTTPClient:    srv.Client(),
	})
	require.NoError(t, err)

	err = s.Send(context.Background(), Message{
		To:       "ada@example.com",
		Subject:  "Ada's Birthday",
		HTMLBody: "<p>hi</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, "mc-key", gotHeader.Get("X-Api-Key"))
	assert.Empty(t, gotQuery)

	personalizations := gotBody["personalizations"].([]any)
	to := personalizations[0].(map[string]any)["to"].([]any)
	assert.Equal(t, "ada@example.com", to[0].(map[string]any)["email"])

	from := gotBody["from"].(map[string]any)
	assert.Equal(t, "reminder@birthdays.run", from["email"])
	assert.Equal(t, "Birthday Reminders", from["name"])

	assert.Equal(t, "Ada's Birthday", gotBody["subject"])

	content := gotBody["content"].([]any)[0].(map[string]any)
	assert.Equal(t, "text/html", content["type"])
	assert.Equal(t, "<p>hi</p>", content["value"])
}

func TestMailChannelsSender_Send_DryRun(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("dry-run")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := NewMailChannelsSender(MailChannelsConfig{
		Endpoint:      srv.URL,
		DryRun:        true,
		SenderAddress: "reminder@birthdays.run",
	})
	require.NoError(t, err)

	require.NoError(t, s.Send(context.Background(), Message{To: "ada@example.com"}))
	assert.Equal(t, "true", gotQuery)
}

func TestMailChannelsSender_Send_NonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":["bad sender"]}`))
	}))
	defer srv.Close()

	s, err := NewMailChannelsSender(MailChannelsConfig{
		Endpoint:      srv.URL,
		SenderAddress: "reminder@birthdays.run",
	})
	require.NoError(t, err)

	err = s.Send(context.Background(), Message{To: "ada@example.com"})
	require.Error(t, err)

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
	assert.Contains(t, perr.Body, "bad sender")
}

func TestMailChannelsSender_Send_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	s, err := NewMailChannelsSender(MailChannelsConfig{
		Endpoint:      endpoint,
		SenderAddress: "reminder@birthdays.run",
	})
	require.NoError(t, err)

	err = s.Send(context.Background(), Message{To: "ada@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mailchannels: request failed")
}

func TestNewMailChannelsSender_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewMailChannelsSender(MailChannelsConfig{SenderAddress: "a@b.c"})
	assert.Error(t, err)

	_, err = NewMailChannelsSender(MailChannelsConfig{Endpoint: "https://example.com"})
	assert.Error(t, err)
}
