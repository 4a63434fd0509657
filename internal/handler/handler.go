package handler

import (
	"context"

	"github.com/birthdaysrun/reminder/internal/config"
	"github.com/birthdaysrun/reminder/internal/logger"
	"github.com/birthdaysrun/reminder/internal/metrics"
	"github.com/birthdaysrun/reminder/internal/model"
)

// ReminderSender sends one birthday reminder
type ReminderSender interface {
	SendReminder(ctx context.Context, req *model.BirthdayReminder) error
}

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds all HTTP handlers
type Handler struct {
	reminders ReminderSender
	checks    map[string]HealthChecker
	metrics   metrics.Recorder
	log       *logger.Logger
	cfg       *config.Config
}

// New creates a new Handler instance. checks maps a dependency name to its health check.
// rec counts requests rejected before they reach reminders.
func New(reminders ReminderSender, checks map[string]HealthChecker, rec metrics.Recorder, log *logger.Logger, cfg *config.Config) *Handler {
	if checks == nil {
		checks = make(map[string]HealthChecker)
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Handler{
		reminders: reminders,
		checks:    checks,
		metrics:   rec,
		log:       log,
		cfg:       cfg,
	}
}
