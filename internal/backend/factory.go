package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/sheets/memory"
	"fintrack/internal/storage"
)

const cacheCleanupInterval = time.Minute

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend opens storage and wires the services. AMQP failures are
// logged and the backend runs without events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	var (
		amqpClient *amqp.Client
		publisher  services.EventPublisher
	)
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
			amqpClient = nil
		} else {
			publisher = amqpClient
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	caches := cache.NewManager()
	var dashCache cache.Cache[core.Dashboard]
	if config.DashboardCacheTTL > 0 {
		lru := cache.NewLRUCache[core.Dashboard](config.DashboardCacheSize, config.DashboardCacheTTL)
		caches.Register(lru)
		caches.StartCleanup(cacheCleanupInterval)
		dashCache = lru
	}

	dashboard := services.NewDashboardService(repo, dashCache, config.Location)
	b := &Backend{
		Repo:         repo,
		Auth:         services.NewAuthService(repo, auth.NewTokenIssuer(config.JWTSecret)),
		Users:        services.NewUserService(repo),
		Categories:   services.NewCategoryService(repo, publisher, dashboard),
		Transactions: services.NewTransactionService(repo, publisher, dashboard, config.Location),
		Dashboard:    dashboard,
		Events:       amqpClient,
		Caches:       caches,
	}
	b.Cleanup = func() error {
		caches.Stop()
		var errs []error
		if amqpClient != nil {
			errs = append(errs, amqpClient.Close())
		}
		errs = append(errs, repo.Close())
		return errors.Join(errs...)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil,
		"dashboard_cache", dashCache != nil)

	return b, nil
}

// CreateActivitySink returns the Google Sheets exporter, or an in-memory
// sink when no spreadsheet is configured.
func (f *DefaultFactory) CreateActivitySink(ctx context.Context, config Config) (sheets.ActivityWriter, error) {
	switch config.Sink {
	case SheetsSink:
		cli, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetBase:       config.GoogleSheetName,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized Google Sheets sink")
		return cli, nil
	case MemorySink, "":
		f.logger.WarnContext(ctx, "No spreadsheet configured, activity is kept in memory only")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported sink type: %s", config.Sink)
	}
}
