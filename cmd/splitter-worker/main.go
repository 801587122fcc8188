package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"splitter/internal/amqp"
	"splitter/internal/config"
	"splitter/internal/sheets/google"
	"splitter/internal/storage/sqlite"
	"splitter/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting splitter-worker")

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker reads pending expenses straight from the ledger file.
	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.DatabasePath)
		os.Exit(1)
	}
	defer store.Close()

	// Initialize Google Sheets client for the export target
	sheetsClient, err := google.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized")

	exportWorker := worker.NewExportWorker(store, sheetsClient, cfg.ExportBatchSize)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// On startup, export any rows that were missed while the worker was down
	if err := exportWorker.ProcessPending(ctx); err != nil {
		logger.Error("Startup export check failed", "error", err)
		// Don't exit - continue with normal operation
	}

	g, ctx := errgroup.WithContext(ctx)

	// Consume expense-created events when the feed is configured
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			return amqpClient.ConsumeExpenseCreated(ctx, exportWorker.HandleExpenseCreated)
		})
		logger.Info("Consuming expense events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP event feed disabled - relying on periodic scan only")
	}

	// Periodic scan re-drives anything the event feed missed
	g.Go(func() error {
		ticker := time.NewTicker(cfg.ExportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := exportWorker.ProcessPending(ctx); err != nil {
					logger.Error("Periodic export failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
