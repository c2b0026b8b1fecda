package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	backfillUser := flag.String("backfill-user", "", "export every transaction of this user id, then exit")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(log.ComponentWorker)
	logger.Info("Starting fintrack-worker", log.FieldOperation, log.OpStartup)

	if err := run(logger, *backfillUser); err != nil {
		logger.Error("Worker failed", log.FieldError, err)
		os.Exit(1)
	}
}

func run(logger *log.Logger, backfillUser string) error {
	validate := (*config.Config).ValidateWorker
	if backfillUser != "" {
		// a backfill reads the database directly and needs no broker
		validate = (*config.Config).Validate
	}
	cfg := cli.LoadAndValidateConfig(logger, validate)

	ctx := context.Background()
	factory, bcfg, b := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := b.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	}()

	sink, err := factory.CreateActivitySink(ctx, bcfg)
	if err != nil {
		return fmt.Errorf("initialize %s activity sink: %w", bcfg.Sink, err)
	}
	w := worker.NewExportWorker(b.Repo, sink, cfg.ExportBatchSize)

	if backfillUser != "" {
		n, err := w.Backfill(ctx, backfillUser)
		if err != nil {
			return fmt.Errorf("backfill user %s: %w", backfillUser, err)
		}
		logger.Info("Backfill complete", log.FieldUserID, backfillUser, "rows", n)
		return nil
	}

	if b.Events == nil {
		return errors.New("AMQP broker unavailable")
	}

	runCtx, done := cli.GracefulShutdown(logger, 15*time.Second, nil)
	logger.Info("Consuming events", "queue", cfg.AMQPQueue, "sink", bcfg.Sink.String())
	if err := b.Events.Consume(runCtx, w.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consume events: %w", err)
	}

	cli.WaitForShutdown(runCtx, done)
	logger.Info("Worker stopped gracefully")
	return nil
}
