package services

import (
	"context"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// The store interfaces are satisfied by *storage.SQLiteRepository.

type UserStore interface {
	CreateUser(ctx context.Context, u core.User) error
	GetUserByID(ctx context.Context, id string) (*core.User, error)
	GetUserByEmail(ctx context.Context, email string) (*core.User, error)
	UpdateUserName(ctx context.Context, id, name string, now time.Time) (*core.User, error)
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, c core.Category) error
	ListCategoriesWithCounts(ctx context.Context, userID string) ([]core.CategoryWithCount, error)
	GetCategory(ctx context.Context, userID, id string) (*core.CategoryWithCount, error)
	UpdateCategory(ctx context.Context, userID, id string, p core.CategoryPatch, now time.Time) (*core.Category, error)
	DeleteCategory(ctx context.Context, userID, id string) error
	CountCategories(ctx context.Context, userID string) (int, error)
	CountTransactions(ctx context.Context, userID string) (int, error)
	MostUsedCategory(ctx context.Context, userID string) (*core.CategoryWithCount, error)
}

type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) error
	GetTransaction(ctx context.Context, userID, id string) (*core.Transaction, error)
	ListTransactions(ctx context.Context, q storage.TransactionQuery) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id string, p core.TransactionPatch, now time.Time) error
	DeleteTransaction(ctx context.Context, userID, id string) error
}

type DashboardStore interface {
	SumByType(ctx context.Context, userID string, from, to *time.Time) (income, expense core.Money, err error)
	ListTransactions(ctx context.Context, q storage.TransactionQuery) ([]core.Transaction, error)
	TopCategories(ctx context.Context, userID string, limit int) ([]core.CategoryUsage, error)
}

// EventPublisher is implemented by *amqp.Client.
type EventPublisher interface {
	Publish(ctx context.Context, e amqp.Event) error
}

// DashboardInvalidator drops cached dashboards after a user's data changed.
type DashboardInvalidator interface {
	Invalidate(userID string)
}
