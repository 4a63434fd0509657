package middleware

import (
	"context"
	"net/netip"
	"time"

	"github.com/birthdaysrun/reminder/internal/config"
	"github.com/birthdaysrun/reminder/internal/logger"
	"github.com/birthdaysrun/reminder/internal/metrics"
)

// WindowCounter counts hits per key within a fixed window.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Middleware holds all HTTP middleware
type Middleware struct {
	counter WindowCounter
	log     *logger.Logger
	cfg     *config.Config
	metrics metrics.Recorder

	trustedProxies []netip.Prefix
}

// New creates a new Middleware instance. counter may be nil when rate limiting is disabled.
func New(counter WindowCounter, log *logger.Logger, cfg *config.Config, rec metrics.Recorder) *Middleware {
	if rec == nil {
		rec = metrics.Nop{}
	}

	trusted, err := cfg.Security.TrustedProxyPrefixes()
	if err != nil {
		log.Warn().Err(err).Msg("ignoring trusted proxies; X-Forwarded-For will not be used")
		trusted = nil
	}

	return &Middleware{
		counter:        counter,
		log:            log,
		cfg:            cfg,
		metrics:        rec,
		trustedProxies: trusted,
	}
}
