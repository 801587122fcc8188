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
	"splitter/internal/amqp"
	"splitter/internal/config"
	apphttp "splitter/internal/http"
	"splitter/internal/push"
	"splitter/internal/services"
	"splitter/internal/storage"
	"splitter/internal/storage/memory"
	"splitter/internal/storage/sqlite"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Choose data backend
	var store storage.Store
	switch cfg.DataBackend {
	case "sqlite":
		s, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.DatabasePath)
			os.Exit(1)
		}
		store = s
		logger.Info("Initialized SQLite backend", "path", cfg.DatabasePath)
	default:
		store = memory.New()
		logger.Info("Initialized memory backend")
	}
	defer store.Close()

	dispatcher := push.NewClient(cfg.PushGatewayURL, cfg.PushTimeout)

	// AMQP event feed is optional; without it expenses are still served,
	// only the spreadsheet export falls back to the worker's pending scan.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		events = amqpClient
		logger.Info("AMQP event feed enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP event feed disabled - no AMQP_URL provided")
	}

	expenseService := services.NewExpenseService(store, dispatcher, events, cfg.PushTitle)

	srv := apphttp.NewServer(":"+cfg.Port, store, expenseService)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	logger.Info("Starting splitter server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
