// cmd/validator-server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"saas-validator/internal/agent"
	"saas-validator/internal/common/config"
	"saas-validator/internal/common/logger"
	"saas-validator/internal/common/observability"
	"saas-validator/internal/server"
)

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Reopen at the configured level once config is known.
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
		defer zapLog.Sync()
	}
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting validator server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	if err := cfg.Validate(); err != nil {
		zapLog.Fatal("invalid configuration", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	validator := agent.New(cfg, obs, log)
	defer validator.Close()

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: server.New(validator, cfg, log).Router(),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}

	zapLog.Info("Server stopped")
}
