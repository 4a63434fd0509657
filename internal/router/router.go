package router

import (
	"net/http"

	"github.com/birthdaysrun/reminder/internal/config"
	"github.com/birthdaysrun/reminder/internal/handler"
	"github.com/birthdaysrun/reminder/internal/middleware"
)

// New creates and configures the HTTP router
func New(h *handler.Handler, mw *middleware.Middleware, cfg *config.Config, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoints (no auth required)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	sendRateLimit := mw.RateLimit(middleware.RateLimitConfig{
		Limit:  cfg.Security.RateLimiting.Limit,
		Window: cfg.Security.RateLimiting.Window,
		KeyFn:  mw.IPKey,
	})

	mux.Handle("POST /sendemail", mw.BearerAuth(sendRateLimit(http.HandlerFunc(h.SendEmail))))

	// Apply middleware stack
	var handler http.Handler = mux

	// CORS runs before auth so preflight requests succeed without a token
	handler = mw.CORS(cfg.Security.CORS.AllowedOrigins)(handler)

	// Security headers
	handler = mw.SecurityHeaders(handler)

	// Request logging
	handler = mw.Logger(handler)

	// Request ID
	handler = mw.RequestID(handler)

	// Panic recovery (outermost)
	handler = mw.Recover(handler)

	return handler
}
