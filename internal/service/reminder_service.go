package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/birthdaysrun/reminder/internal/config"
	"github.com/birthdaysrun/reminder/internal/email"
	"github.com/birthdaysrun/reminder/internal/logger"
	"github.com/birthdaysrun/reminder/internal/metrics"
	"github.com/birthdaysrun/reminder/internal/model"
	"github.com/birthdaysrun/reminder/internal/repository"
)

// Reminder errors
var (
	ErrMalformedRequest = errors.New("malformed reminder request")
	ErrUserNotFound     = errors.New("user not found")
	ErrDispatchFailed   = errors.New("failed to dispatch reminder email")
)

const (
	defaultLookupTimeout   = 5 * time.Second
	defaultDispatchTimeout = 10 * time.Second
)

// UserFinder looks users up in the identity store.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// ReminderService resolves the recipient, composes the reminder and sends it.
// Every call is independent; nothing is retried or remembered.
type ReminderService struct {
	users    UserFinder
	composer *email.Composer
	sender   email.Sender
	validate *validator.Validate
	metrics  metrics.Recorder
	cfg      config.ReminderConfig
	log      *logger.Logger
}

// NewReminderService creates a new ReminderService.
func NewReminderService(
	users UserFinder,
	composer *email.Composer,
	sender email.Sender,
	rec metrics.Recorder,
	cfg config.ReminderConfig,
	log *logger.Logger,
) *ReminderService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = defaultLookupTimeout
	}
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = defaultDispatchTimeout
	}
	return &ReminderService{
		users:    users,
		composer: composer,
		sender:   sender,
		validate: validator.New(),
		metrics:  rec,
		cfg:      cfg,
		log:      log.WithComponent("reminder"),
	}
}

// Validate checks the structural constraints of req.
func (s *ReminderService) Validate(req *model.BirthdayReminder) error {
	if req == nil {
		return ErrMalformedRequest
	}
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedRequest, err.Error())
	}
	return nil
}

// LookupEmail returns the email address of userID.
// A missing row or an empty email yields ErrUserNotFound.
func (s *ReminderService) LookupEmail(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: userId is required", ErrMalformedRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.LookupTimeout)
	defer cancel()

	start := time.Now()
	user, err := s.users.GetByID(ctx, userID)
	s.metrics.RecordLookupLatency(time.Since(start))

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.HasEmail() {
		return "", fmt.Errorf("%w: %s has no email address", ErrUserNotFound, userID)
	}

	return user.Email, nil
}

// SendReminder validates req, looks up the recipient and sends one email.
// It stops at the first failure.
func (s *ReminderService) SendReminder(ctx context.Context, req *model.BirthdayReminder) error {
	err := s.sendReminder(ctx, req)
	if err != nil {
		s.metrics.RecordFailure(FailureReason(err))
		return err
	}
	s.metrics.RecordSent()
	return nil
}

func (s *ReminderService) sendReminder(ctx context.Context, req *model.BirthdayReminder) error {
	if err := s.Validate(req); err != nil {
		return err
	}

	to, err := s.LookupEmail(ctx, req.UserID)
	if err != nil {
		return err
	}

	reminder, err := s.composer.Compose(req)
	if err != nil {
		return err
	}

	dispatchCtx, cancel := context.WithTimeout(ctx, s.cfg.DispatchTimeout)
	defer cancel()

	start := time.Now()
	err = s.sender.Send(dispatchCtx, email.Message{
		To:       to,
		Subject:  reminder.Subject,
		HTMLBody: reminder.HTML,
	})
	elapsed := time.Since(start)
	s.metrics.RecordDispatchLatency(elapsed)
	s.log.Delivery(req.UserID, req.ID, elapsed, err)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}
	return nil
}

// FailureReason classifies err into a metrics label.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return metrics.ReasonTimeout
	case errors.Is(err, ErrMalformedRequest):
		return metrics.ReasonMalformed
	case errors.Is(err, ErrUserNotFound):
		return metrics.ReasonUserNotFound
	case errors.Is(err, ErrDispatchFailed):
		return metrics.ReasonDispatch
	default:
		return metrics.ReasonInternal
	}
}
