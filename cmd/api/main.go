package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/volleyball-bot/internal/app"
	"github.com/riskibarqy/volleyball-bot/internal/config"
	"github.com/riskibarqy/volleyball-bot/internal/observability"
	"github.com/riskibarqy/volleyball-bot/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSON(cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"env", cfg.AppEnv,
	)
	logging.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("service stopped with error", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(cfg config.Config, logger *logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry, err := observability.Start(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("start observability: %w", err)
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return errors.Join(fmt.Errorf("build app: %w", err), telemetry.Shutdown(context.Background()))
	}

	logger.Info("volleyball bot starting",
		"telegram_mode", cfg.TelegramMode,
		"storage", cfg.StorageDriver,
		"addr", cfg.HTTPAddr,
		"exporters", telemetry.Enabled(),
	)
	runErr := application.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Close(shutdownCtx); err != nil {
		logger.Error("close app", "error", err)
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown observability", "error", err)
	}

	return runErr
}
