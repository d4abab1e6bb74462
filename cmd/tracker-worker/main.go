package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Charan170903/expense-tracker/internal/amqp"
	"github.com/Charan170903/expense-tracker/internal/backend"
	"github.com/Charan170903/expense-tracker/internal/cli"
	"github.com/Charan170903/expense-tracker/internal/insights"
	"github.com/Charan170903/expense-tracker/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting tracker-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	archivist := insights.NewArchivist(result.Backend)
	processor := services.NewArchiveProcessor(result.Backend, result.Backend, archivist,
		services.ArchiveProcessorConfig{Interval: cfg.ArchiveInterval})

	// AMQP is optional; without it the worker runs on its backup timer only.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in timer-only mode", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	// Backup timer loop: runs an archival pass immediately, then on every tick.
	g.Go(func() error {
		if err := processor.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()

		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		return processor.Stop(stopCtx)
	})

	// Event loop: every ledger change triggers an immediate pass.
	if amqpClient != nil {
		g.Go(func() error {
			err := amqpClient.ConsumeLedgerChanged(gctx, func(msg *amqp.LedgerChangedMessage) error {
				logger.Info("Ledger change received", "reason", msg.Reason, "transaction_id", msg.TransactionID)
				return processor.RunOnce(gctx, time.Now())
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	// Shutdown on signal.
	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker terminated with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
