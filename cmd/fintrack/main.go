package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"fintrack/internal/api"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting fintrack", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)
	_, _, b := cli.InitBackend(context.Background(), logger, cfg)

	schema, err := api.Services{
		Auth:         b.Auth,
		Users:        b.Users,
		Categories:   b.Categories,
		Transactions: b.Transactions,
		Dashboard:    b.Dashboard,
	}.NewSchema(logger)
	if err != nil {
		logger.Error("Failed to build GraphQL schema", log.FieldError, err)
		_ = b.Cleanup()
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Dependencies{
		Schema:            schema,
		Auth:              b.Auth,
		Ready:             b.Repo.Ping,
		Logger:            logger,
		CORSOrigin:        cfg.CORSOrigin,
		RequestsPerMinute: cfg.RateLimitPerMinute,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := b.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Server listening",
		"addr", srv.Addr,
		"graphql", "/graphql",
		"cors_origin", cfg.CORSOrigin,
		"event_bus", b.Events != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		_ = b.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
