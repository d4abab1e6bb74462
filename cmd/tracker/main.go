package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/Charan170903/expense-tracker/internal/amqp"
	"github.com/Charan170903/expense-tracker/internal/backend"
	"github.com/Charan170903/expense-tracker/internal/cli"
	apphttp "github.com/Charan170903/expense-tracker/internal/http"
	"github.com/Charan170903/expense-tracker/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting tracker server")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()

	factory := backend.NewFactory(backend.FromAppConfig(cfg))
	result, err := factory.CreateBackend(ctx)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	// AMQP is optional for the API server; without it ledger changes are
	// simply not broadcast and the worker relies on its backup timer.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without event publishing", "error", err)
			amqpClient = nil
		}
	}

	insightSvc := services.NewInsightService(result.Backend, result.Backend)
	defer insightSvc.Close()
	ledgerSvc := services.NewLedgerService(result.Backend, result.Backend, amqpClient)
	defer ledgerSvc.Close()

	srv := apphttp.NewServer(":"+cfg.Port, insightSvc, ledgerSvc, result.Backend)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(stopCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting tracker server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
