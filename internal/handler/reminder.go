package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/birthdaysrun/reminder/internal/metrics"
	"github.com/birthdaysrun/reminder/internal/middleware"
	"github.com/birthdaysrun/reminder/internal/model"
	"github.com/birthdaysrun/reminder/internal/service"
)

// SendEmail handles POST /sendemail.
// The body is a birthday record; the owner of userId receives one reminder email.
func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithRequestID(middleware.GetRequestID(r.Context()))

	var req model.BirthdayReminder
	if err := readJSON(w, r, &req); err != nil {
		h.metrics.RecordFailure(metrics.ReasonMalformed)
		log.Warn().Err(err).Msg("undecodable reminder request")
		h.writeFailure(w, http.StatusBadRequest, "malformed_request", err.Error())
		return
	}

	if err := h.reminders.SendReminder(r.Context(), &req); err != nil {
		status, code, message := classify(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("user_id", req.UserID).Msg("failed to send birthday reminder")
		} else {
			log.Warn().Err(err).Str("user_id", req.UserID).Msg("birthday reminder rejected")
		}
		h.writeFailure(w, status, code, message)
		return
	}

	writeJSON(w, http.StatusOK, SendEmailResponse{Message: "Message sent", OK: true})
}

func (h *Handler) writeFailure(w http.ResponseWriter, status int, code, message string) {
	if h.cfg != nil && h.cfg.Reminder.UniformStatus {
		status = http.StatusOK
	}
	writeJSON(w, status, SendEmailResponse{
		Message: "Error occurred",
		Error:   &ErrorBody{Code: code, Message: message},
		OK:      false,
	})
}

// classify maps a reminder error to an HTTP status and a public error code.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout", "An upstream call timed out"
	case errors.Is(err, service.ErrMalformedRequest):
		return http.StatusBadRequest, "malformed_request", err.Error()
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found", "No email address is registered for this user"
	case errors.Is(err, service.ErrDispatchFailed):
		return http.StatusBadGateway, "dispatch_failed", "The email provider did not accept the message"
	default:
		return http.StatusInternalServerError, "internal_error", "An unexpected error occurred"
	}
}
