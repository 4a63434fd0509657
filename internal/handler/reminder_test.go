package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birthdaysrun/reminder/internal/config"
	"github.com/birthdaysrun/reminder/internal/email"
	"github.com/birthdaysrun/reminder/internal/logger"
	"github.com/birthdaysrun/reminder/internal/metrics"
	"github.com/birthdaysrun/reminder/internal/model"
	"github.com/birthdaysrun/reminder/internal/repository"
	"github.com/birthdaysrun/reminder/internal/service"
)

type stubReminders struct {
	err  error
	got  *model.BirthdayReminder
	hits int
}

func (s *stubReminders) SendReminder(_ context.Context, req *model.BirthdayReminder) error {
	s.hits++
	s.got = req
	return s.err
}

type failureRecorder struct {
	metrics.Nop
	reasons []string
}

func (f *failureRecorder) RecordFailure(reason string) { f.reasons = append(f.reasons, reason) }

type memoryUsers map[string]*model.User

func (m memoryUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

type captureSender struct {
	sent []email.Message
	err  error
}

func (c *captureSender) Send(_ context.Context, msg email.Message) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func postSendEmail(t *testing.T, h *Handler, body string) (*httptest.ResponseRecorder, SendEmailResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/sendemail", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.SendEmail(rec, req)

	var resp SendEmailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestSendEmail_Success(t *testing.T) {
	stub := &stubReminders{}
	h := New(stub, nil, nil, logger.Nop(), &config.Config{})

	rec, resp := postSendEmail(t, h, `{"id":"b1","userId":"u1","name":"Ada","nextBirthday":1767225600000,"onDay":true}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.True(t, resp.OK)
	assert.Equal(t, "Message sent", resp.Message)
	assert.Nil(t, resp.Error)

	require.NotNil(t, stub.got)
	assert.Equal(t, "u1", stub.got.UserID)
	assert.Equal(t, int64(1767225600000), stub.got.NextBirthday)
	assert.True(t, stub.got.OnDay)
}

func TestSendEmail_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "malformed", err: fmt.Errorf("%w: month", service.ErrMalformedRequest), status: http.StatusBadRequest, code: "malformed_request"},
		{name: "user not found", err: fmt.Errorf("%w: u9", service.ErrUserNotFound), status: http.StatusNotFound, code: "user_not_found"},
		{name: "dispatch", err: fmt.Errorf("%w: 500", service.ErrDispatchFailed), status: http.StatusBadGateway, code: "dispatch_failed"},
		{name: "timeout", err: fmt.Errorf("%w: %w", service.ErrDispatchFailed, context.DeadlineExceeded), status: http.StatusGatewayTimeout, code: "timeout"},
		{name: "other", err: errors.New("connection refused"), status: http.StatusInternalServerError, code: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(&stubReminders{err: tt.err}, nil, nil, logger.Nop(), &config.Config{})

			rec, resp := postSendEmail(t, h, `{"userId":"u1","nextBirthday":1767225600000}`)

			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, resp.OK)
			assert.Equal(t, "Error occurred", resp.Message)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestSendEmail_UniformStatus(t *testing.T) {
	cfg := &config.Config{Reminder: config.ReminderConfig{UniformStatus: true}}
	h := New(&stubReminders{err: service.ErrUserNotFound}, nil, nil, logger.Nop(), cfg)

	rec, resp := postSendEmail(t, h, `{"userId":"missing","nextBirthday":1767225600000}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resp.OK)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "user_not_found", resp.Error.Code)
}

func TestSendEmail_BadBody(t *testing.T) {
	for name, body := range map[string]string{
		"empty":      "",
		"not json":   "hello",
		"wrong type": `{"userId":"u1","nextBirthday":"tomorrow"}`,
		"trailing":   `{"userId":"u1","nextBirthday":1767225600000} {"userId":"u2"}`,
	} {
		t.Run(name, func(t *testing.T) {
			stub := &stubReminders{}
			failures := &failureRecorder{}
			h := New(stub, nil, failures, logger.Nop(), &config.Config{})

			rec, resp := postSendEmail(t, h, body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, resp.OK)
			assert.Equal(t, "malformed_request", resp.Error.Code)
			assert.Zero(t, stub.hits)
			assert.Equal(t, []string{metrics.ReasonMalformed}, failures.reasons)
		})
	}
}

func newServiceHandler(users service.UserFinder, sender email.Sender, now time.Time) *Handler {
	composer := email.NewComposer(email.Branding{
		Name:    "Birthdays.run",
		URL:     "https://birthdays.run",
		LogoURL: "https://birthdays.run/birthdays.svg",
	}, time.UTC).WithClock(func() time.Time { return now })

	svc := service.NewReminderService(users, composer, sender, nil, config.ReminderConfig{}, logger.Nop())
	return New(svc, nil, nil, logger.Nop(), &config.Config{})
}

func TestSendEmail_WeekAheadReminder(t *testing.T) {
	now := time.Date(2026, time.March, 27, 9, 30, 0, 0, time.UTC)
	next := now.Add(7 * 24 * time.Hour)
	sender := &captureSender{}
	h := newServiceHandler(memoryUsers{
		"u1": {ID: "u1", Username: "ada", Email: "ada@example.com"},
	}, sender, now)

	body := fmt.Sprintf(`{"id":"b1","userId":"u1","name":"Ada","nextBirthday":%d,`+
		`"onDay":true,"dayBefore":false,"oneWeekBefore":true,"twoWeeksBefore":false}`, next.UnixMilli())

	rec, resp := postSendEmail(t, h, body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.OK)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "Ada's Birthday", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "in 1 week")
	assert.Contains(t, msg.HTMLBody, "Reminders: On Day, 1 Week Before")
	assert.Contains(t, msg.HTMLBody, "On April 3rd")
	assert.Contains(t, msg.HTMLBody, "Name: Ada  </p>")
}

func TestSendEmail_UnknownUserDoesNotSend(t *testing.T) {
	now := time.Date(2026, time.March, 27, 9, 30, 0, 0, time.UTC)
	sender := &captureSender{}
	h := newServiceHandler(memoryUsers{}, sender, now)

	body := fmt.Sprintf(`{"userId":"ghost","name":"Nobody","nextBirthday":%d}`, now.UnixMilli())

	for range 2 {
		rec, resp := postSendEmail(t, h, body)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.False(t, resp.OK)
	}
	assert.Empty(t, sender.sent)
}

func TestSendEmail_ProviderFailure(t *testing.T) {
	now := time.Date(2026, time.March, 27, 9, 30, 0, 0, time.UTC)
	sender := &captureSender{err: &email.ProviderError{Provider: "mailchannels", StatusCode: 500, Body: "boom"}}
	h := newServiceHandler(memoryUsers{
		"u1": {ID: "u1", Email: "ada@example.com"},
	}, sender, now)

	body := fmt.Sprintf(`{"userId":"u1","name":"Ada","nextBirthday":%d}`, now.UnixMilli())
	rec, resp := postSendEmail(t, h, body)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.False(t, resp.OK)
	assert.Equal(t, "dispatch_failed", resp.Error.Code)
}

func TestSendEmail_TimestampOutOfRange(t *testing.T) {
	now := time.Date(2026, time.March, 27, 9, 30, 0, 0, time.UTC)
	sender := &captureSender{}
	h := newServiceHandler(memoryUsers{
		"u1": {ID: "u1", Email: "ada@example.com"},
	}, sender, now)

	for _, ts := range []string{"8640000000000001", "9223372036854775807"} {
		rec, resp := postSendEmail(t, h, `{"userId":"u1","name":"Ada","nextBirthday":`+ts+`}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code, ts)
		assert.False(t, resp.OK)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "malformed_request", resp.Error.Code)
	}
	assert.Empty(t, sender.sent)
}
