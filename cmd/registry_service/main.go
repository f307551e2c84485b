package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bluecarbonmrv/registry/internal/platform/config"
	"github.com/bluecarbonmrv/registry/internal/platform/database"
	"github.com/bluecarbonmrv/registry/internal/platform/logger"
	"github.com/bluecarbonmrv/registry/internal/platform/messagebroker"
	"github.com/bluecarbonmrv/registry/internal/registry/app"
	"github.com/bluecarbonmrv/registry/internal/registry/repository"
	"github.com/bluecarbonmrv/registry/internal/registry/repository/memory"
	"github.com/bluecarbonmrv/registry/internal/registry/repository/postgres"
	httptransport "github.com/bluecarbonmrv/registry/internal/registry/transport/http"
)

const (
	serviceName     = "registry_service"
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("Registry service starting...", "port", cfg.HTTPPort, "storage", cfg.StorageDriver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, cleanup, err := openStorage(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to open storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// The dispatcher only runs when a broker is configured; without one,
	// events stay queued in the outbox.
	if cfg.NATSUrl != "" {
		natsClient, err := messagebroker.NewNATSClient(cfg.NATSUrl, serviceName, appLogger)
		if err != nil {
			appLogger.Error("Failed to connect to NATS", "url", cfg.NATSUrl, "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()

		dispatcher := app.NewOutboxDispatcher(repos.Outbox, natsClient, app.DispatcherConfig{
			PollInterval: cfg.OutboxPollInterval(),
			BatchSize:    cfg.OutboxBatchSize,
			MaxAttempts:  cfg.OutboxMaxAttempts,
		}, appLogger)
		go dispatcher.Run(ctx)
	} else {
		appLogger.Warn("NATS_URL not configured; domain events will accumulate in the outbox")
	}

	validate := validator.New()
	chain := app.NewChainSimulator()

	authService := app.NewAuthService(repos.Users, repos.Sessions, app.AuthConfig{
		JWTSecret:  cfg.JWTSecret,
		SessionTTL: cfg.SessionTTL(),
	}, appLogger)
	userService := app.NewUserService(repos.Users, validate, appLogger)
	projectService := app.NewProjectService(repos.Projects, repos.Outbox, validate, appLogger)
	activityService := app.NewActivityService(repos.Activities, repos.Projects, repos.Outbox, chain, validate, appLogger)
	creditService := app.NewCreditService(repos.Credits, repos.Projects, repos.Users, repos.Outbox, chain, validate, appLogger)
	reportService := app.NewReportService(repos.Projects, validate, appLogger)

	router := httptransport.NewRouter(httptransport.Handlers{
		Auth:       httptransport.NewAuthHandler(authService, validate, appLogger),
		Users:      httptransport.NewUserHandler(userService, appLogger),
		Projects:   httptransport.NewProjectHandler(projectService, appLogger),
		Activities: httptransport.NewActivityHandler(activityService, appLogger),
		Credits:    httptransport.NewCreditHandler(creditService, validate, appLogger),
		Reports:    httptransport.NewReportHandler(reportService, appLogger),
	}, authService, appLogger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		appLogger.Info("HTTP server listening", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		appLogger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Graceful shutdown failed", "error", err)
			_ = server.Close()
		}
	}

	appLogger.Info("Registry service stopped")
}

// openStorage builds the repository set for the configured driver.
func openStorage(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) (repository.Set, func(), error) {
	switch cfg.StorageDriver {
	case "postgres":
		dbPool, err := database.NewDBPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return repository.Set{}, nil, fmt.Errorf("connecting to PostgreSQL: %w", err)
		}
		appLogger.Info("Connected to PostgreSQL database")
		return postgres.NewSet(dbPool, appLogger), dbPool.Close, nil
	case "memory", "":
		store, err := memory.Open(cfg.SnapshotPath, appLogger)
		if err != nil {
			return repository.Set{}, nil, fmt.Errorf("opening snapshot store: %w", err)
		}
		appLogger.Info("Opened snapshot store", "path", cfg.SnapshotPath)
		return store.Repositories(), func() {}, nil
	default:
		return repository.Set{}, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
