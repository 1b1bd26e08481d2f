// Package main runs the item service HTTP API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/R3E-Network/item_service/internal/app/runtime"
	"github.com/R3E-Network/item_service/internal/config"
	"github.com/R3E-Network/item_service/pkg/logger"
)

func main() {
	// Local runs may keep settings in .env; real environment wins.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePrefix: cfg.Logging.FilePrefix,
	})
	if cfg.TestMode() {
		log.Warn("APP_ENV=test: destructive test endpoints are enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := runtime.NewApplication(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialise application: %v", err)
	}

	runErr := application.Run(ctx)
	if runErr != nil {
		log.WithError(runErr).Error("HTTP server stopped unexpectedly")
	} else {
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
		os.Exit(1)
	}
	if runErr != nil {
		os.Exit(1)
	}
	log.Info("Server stopped")
}
