package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/goliatone/go-legaldocs/internal/app"
	"github.com/goliatone/go-legaldocs/internal/config"
	"github.com/goliatone/go-legaldocs/internal/logging"
	"github.com/goliatone/go-legaldocs/pkg/httpapi"
)

func main() {
	configPath := flag.String("config", os.Getenv("LEGALDOCS_CONFIG"), "YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Service)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("build application", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close application", zap.Error(err))
		}
	}()

	server, err := httpapi.New(a.Orchestrator,
		httpapi.WithDocuments(a.Documents),
		httpapi.WithHealthCheck(a.HealthCheck),
		httpapi.WithBodyLimit(cfg.HTTP.BodyLimit),
		httpapi.WithLogger(logger.Named("http")),
	)
	if err != nil {
		logger.Fatal("build http server", zap.Error(err))
	}

	errs := make(chan error, 1)
	go func() {
		errs <- server.Start(cfg.HTTP.Addr)
	}()

	select {
	case err := <-errs:
		if err != nil {
			logger.Error("http server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			logger.Error("shutdown", zap.Error(err))
		}
	}
}
