package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"famiglia/internal/action"
	"famiglia/internal/actions"
	"famiglia/internal/backend"
	"famiglia/internal/config"
	"famiglia/internal/events"
	apphttp "famiglia/internal/http"
	"famiglia/internal/session"
	"famiglia/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	db, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open local database", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer db.Close()

	sessions := session.NewSQLiteStore(db)
	legacyFamilies := storage.NewFamilyRepository(db)

	api := backend.New(cfg.BackendBaseURL)
	resolver := &action.Resolver{
		Sessions:  apphttp.ContextSessions{},
		Selection: apphttp.ContextSelection{},
		Families:  &actions.Directory{API: api},
	}

	// Event publishing is optional: without AMQP the app still works, family
	// members just get no notifications.
	var publisher actions.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	svc := actions.New(api, resolver, apphttp.ContextViews{}, publisher)

	verifier := session.NewOAuthVerifier(session.OAuthConfig{
		RedirectBase:       cfg.OAuthRedirectBase,
		GoogleClientID:     cfg.GoogleClientID,
		GoogleClientSecret: cfg.GoogleClientSecret,
		NaverClientID:      cfg.NaverClientID,
		NaverClientSecret:  cfg.NaverClientSecret,
	})

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Actions:         svc,
		Sessions:        sessions,
		Verifier:        verifier,
		Legacy:          legacyFamilies,
		SessionTTL:      cfg.SessionTTL,
		FamilyCookieTTL: cfg.FamilyCookieTTL,
		SecureCookies:   cfg.SecureCookies,
	})

	// Expired sessions pile up otherwise; sweep hourly.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := sessions.PurgeExpired(ctx); err != nil {
					logger.Error("Session purge failed", "error", err)
				} else if n > 0 {
					logger.Info("Purged expired sessions", "count", n)
				}
			}
		}
	}()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting famiglia server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
