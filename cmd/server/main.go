package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/birthdaysrun/reminder/internal/config"
	"github.com/birthdaysrun/reminder/internal/database"
	"github.com/birthdaysrun/reminder/internal/email"
	"github.com/birthdaysrun/reminder/internal/handler"
	"github.com/birthdaysrun/reminder/internal/logger"
	"github.com/birthdaysrun/reminder/internal/metrics"
	"github.com/birthdaysrun/reminder/internal/middleware"
	"github.com/birthdaysrun/reminder/internal/repository"
	"github.com/birthdaysrun/reminder/internal/router"
	"github.com/birthdaysrun/reminder/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", handler.Version).Msg("starting birthday reminder server")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Connect to PostgreSQL
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("connected to PostgreSQL")

	checks := map[string]handler.HealthChecker{"postgres": db}

	// Redis only backs rate limiting
	var counter middleware.WindowCounter
	if cfg.Security.RateLimiting.Enabled {
		rdb, err := database.NewRedis(cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("connected to Redis")

		counter = rdb
		checks["redis"] = rdb
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewCollector(reg)

	// Email sender
	sender, err := email.NewSender(context.Background(), cfg.Email, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize email sender")
	}
	log.Info().Str("provider", cfg.Email.Provider).Msg("email sender initialized")

	composer := email.NewComposer(email.Branding{
		Name:    cfg.Reminder.BrandName,
		URL:     cfg.Reminder.BrandURL,
		LogoURL: cfg.Reminder.LogoURL,
	}, cfg.Reminder.Location())

	// Initialize services
	userRepo := repository.NewUserRepository(db.DB)
	reminderSvc := service.NewReminderService(userRepo, composer, sender, rec, cfg.Reminder, log)

	// Initialize handlers
	h := handler.New(reminderSvc, checks, rec, log, cfg)

	// Initialize middleware
	mw := middleware.New(counter, log, cfg, rec)

	// Set up router
	r := router.New(h, mw, cfg, metrics.Handler(reg))

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
