package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tevslin/emailai/internal/app"
	"github.com/tevslin/emailai/internal/config"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg := config.LoadConfig()
	logger := cfg.NewLogger()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("startup failed")
	}
	defer application.Close()

	application.DocProcessor.Start(ctx, cfg.Workers)

	errCh := make(chan error, 1)
	go func() { errCh <- application.Server.Start() }()

	logger.WithField("workers", cfg.Workers).Info("emailai is running")
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("server error")
		}
	}

	logger.Info("shutting down...")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("graceful shutdown failed")
	}
}
