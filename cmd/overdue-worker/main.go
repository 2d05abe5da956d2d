package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oeduardop1/life-assistant-sub001/internal/amqp"
	"github.com/oeduardop1/life-assistant-sub001/internal/config"
	applog "github.com/oeduardop1/life-assistant-sub001/internal/log"
	"github.com/oeduardop1/life-assistant-sub001/internal/services"
	"github.com/oeduardop1/life-assistant-sub001/internal/storage"
	"github.com/oeduardop1/life-assistant-sub001/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting overdue-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		logger.Error("Failed to load default timezone", "error", err, "timezone", cfg.DefaultTimezone)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without event publishing", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
		}
	}

	checker := services.NewOverdueChecker(store.Debts, amqpClient, loc)
	overdueWorker := worker.NewOverdueWorker(checker, cfg.OverdueCron, cfg.OverdueSweepTimeout, loc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := overdueWorker.Start(ctx); err != nil {
		logger.Error("Failed to start overdue worker", "error", err, "schedule", cfg.OverdueCron)
		os.Exit(1)
	}

	if amqpClient != nil {
		eventLogger := worker.NewEventLogger()
		go func() {
			if err := eventLogger.Run(ctx, amqpClient); err != nil {
				logger.Error("Event consumer stopped", "error", err)
			}
		}()
		logger.Info("Event consumer started", "queue", cfg.AMQPQueue)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Shutdown signal received", "signal", sig.String())

	cancel()
	overdueWorker.Stop()
	logger.Info("Overdue-worker shutdown complete")
}
