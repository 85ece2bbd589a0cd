package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/konainfatima28/Turbothrill-Webhook-Test/cmd/mainconfig"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/app/bootstrap"
	appconfig "github.com/konainfatima28/Turbothrill-Webhook-Test/internal/config"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

func main() {
	// A missing .env is normal in production.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.NewWithFormat(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	logger.Info("starting turbothrill webhook server",
		"env", cfg.Env,
		"port", cfg.Port,
		"state_backend", cfg.StateBackend,
	)

	ctx := context.Background()
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	app, err := bootstrap.BuildApp(ctx, cfg, awsCfg, prometheus.DefaultRegisterer, logger)
	if err != nil {
		logger.Error("failed to build app", "error", err)
		os.Exit(1)
	}

	if !cfg.WhatsAppConfigured() {
		logger.Warn("WHATSAPP_TOKEN or PHONE_ID missing; replies will be logged but not sent")
	}
	checkCtx, cancelCheck := context.WithTimeout(ctx, 10*time.Second)
	app.TokenGuard.Validate(checkCtx)
	cancelCheck()
	app.Scheduler.Start()

	srv := newServer(cfg.Port, app.Handler(promhttp.Handler()))

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown, long enough for an in-flight message to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.DrainTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error("in-flight work did not drain", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func newServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
