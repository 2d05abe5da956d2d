package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oeduardop1/life-assistant-sub001/internal/amqp"
	"github.com/oeduardop1/life-assistant-sub001/internal/config"
	apphttp "github.com/oeduardop1/life-assistant-sub001/internal/http"
	applog "github.com/oeduardop1/life-assistant-sub001/internal/log"
	"github.com/oeduardop1/life-assistant-sub001/internal/services"
	"github.com/oeduardop1/life-assistant-sub001/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting finance-api")

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
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - finance events will not be published")
	}

	debts := services.NewDebtService(store.Debts, amqpClient)
	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Store:           store,
		Bills:           services.NewBillService(store.Bills, amqpClient),
		Incomes:         services.NewIncomeService(store.Incomes, amqpClient),
		Expenses:        services.NewExpenseService(store.Expenses, amqpClient),
		Debts:           debts,
		Summaries:       services.NewSummaryService(store, debts),
		JWTSecret:       cfg.JWTSecret,
		DefaultLocation: loc,
	})

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

	logger.Info("Starting finance-api server", "port", cfg.Port, "timezone", cfg.DefaultTimezone)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
