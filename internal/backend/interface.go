package backend

import (
	"context"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Backend bundles the domain services sharing one storage handle.
type Backend struct {
	Repo         *storage.SQLiteRepository
	Auth         *services.AuthService
	Users        *services.UserService
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Dashboard    *services.DashboardService

	// Events is nil when AMQP is not configured.
	Events *amqp.Client
	Caches *cache.Manager

	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Backend, error)
	CreateActivitySink(ctx context.Context, config Config) (sheets.ActivityWriter, error)
}

// Config holds configuration for backend creation
type Config struct {
	SQLiteDBPath string
	JWTSecret    string
	Location     *time.Location

	DashboardCacheTTL  time.Duration
	DashboardCacheSize int

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	Sink                     SinkType
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// SinkType selects where exported activity goes.
type SinkType string

const (
	SheetsSink SinkType = "sheets"
	MemorySink SinkType = "memory"
)

// String implements fmt.Stringer
func (st SinkType) String() string {
	return string(st)
}

// IsValid returns true if the sink type is valid
func (st SinkType) IsValid() bool {
	switch st {
	case SheetsSink, MemorySink:
		return true
	default:
		return false
	}
}
