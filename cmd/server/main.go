// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

// Command server runs the StepSocial recommendation API.
//
// Startup order matters: configuration and logging first, then the
// DuckDB store, then the recommendation engine, and finally the HTTP
// server under the supervisor tree. Shutdown reverses it via signal
// handling and the supervisor's graceful stop.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/stepsocial/stepsocial/internal/api"
	"github.com/stepsocial/stepsocial/internal/auth"
	"github.com/stepsocial/stepsocial/internal/config"
	"github.com/stepsocial/stepsocial/internal/database"
	"github.com/stepsocial/stepsocial/internal/logging"
	"github.com/stepsocial/stepsocial/internal/recommend"
	"github.com/stepsocial/stepsocial/internal/supervisor"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	// === CONFIGURATION ===

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("database", databaseLabel(cfg.Database.Path)).
		Msg("Configuration loaded")

	// === STORAGE ===

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close database")
		}
	}()
	logging.Info().Msg("Database initialized")

	// === RECOMMENDATION ENGINE ===

	provider := database.NewProvider(db)
	engine, err := recommend.NewEngine(&recommend.Config{
		PoolSize:       cfg.Recommend.PoolSize,
		FriendsLimit:   cfg.Recommend.FriendsLimit,
		EventsLimit:    cfg.Recommend.EventsLimit,
		TeachersLimit:  cfg.Recommend.TeachersLimit,
		ContentLimit:   cfg.Recommend.ContentLimit,
		MaxLimit:       cfg.Recommend.MaxLimit,
		UpcomingWindow: cfg.Recommend.UpcomingWindow,
		ContentWindow:  cfg.Recommend.ContentWindow,
		TopStyleCount:  cfg.Recommend.TopStyleCount,
	}, provider, logging.Logger())
	if err != nil {
		return fmt.Errorf("failed to create recommendation engine: %w", err)
	}
	logging.Info().
		Int("pool_size", cfg.Recommend.PoolSize).
		Int("max_limit", cfg.Recommend.MaxLimit).
		Msg("Recommendation engine ready")

	// === AUTHENTICATION ===

	jwtManager, err := auth.NewJWTManager(&cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to create JWT manager: %w", err)
	}
	loginLimiter := auth.NewLoginRateLimiter(cfg.Auth.LoginRatePerMinute, cfg.Auth.LoginBurst)
	defer loginLimiter.Stop()

	// === HTTP SERVER ===

	handler := api.NewHandler(cfg, engine, db, jwtManager, loginLimiter)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	// === SUPERVISOR TREE ===

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}
	tree.AddAPIService(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === RUN ===

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor closes the channel.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped gracefully")
	return nil
}

// databaseLabel keeps file paths out of logs when running in-memory.
func databaseLabel(path string) string {
	if path == "" {
		return ":memory:"
	}
	return path
}
