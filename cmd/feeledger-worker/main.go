// feeledger-worker consumes export requests from AMQP and writes the
// requested sessions to the spreadsheet.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"feeledger/internal/amqp"
	"feeledger/internal/backend"
	"feeledger/internal/cli"
	"feeledger/internal/log"
	"feeledger/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()

	logger, closer, err := cli.SetupLogger(cfg, log.ComponentWorker, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closer.Close()

	logger.Info("Starting feeledger-worker", log.FieldOperation, log.OpStartup)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid export backend", log.FieldError, err)
		os.Exit(1)
	}
	store, err := backend.NewFactory(logger.WithComponent(log.ComponentSheets)).CreateRowStore(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to initialize export backend", log.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	exportWorker := worker.NewExportWorker(repo, store, cfg.ExportTimeout, 0)

	consumerDone := make(chan struct{})
	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func() {
		<-consumerDone
		if err := amqpClient.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", log.FieldError, err)
		}
	})
	ctx = log.WithContext(ctx, logger)

	// Requests whose message was lost are still pending in SQLite.
	logger.Info("Performing startup export check...")
	if err := exportWorker.StartupExportCheck(ctx); err != nil {
		logger.Error("Failed startup export check", log.FieldError, err)
	}

	go func() {
		defer close(consumerDone)
		if err := amqpClient.ConsumeExportRequests(ctx, exportWorker.HandleExportRequest); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
