package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

type CategoryService struct {
	store CategoryStore
	notifier
	now func() time.Time
}

func NewCategoryService(store CategoryStore, publisher EventPublisher, dashboards DashboardInvalidator) *CategoryService {
	return &CategoryService{
		store:    store,
		notifier: notifier{publisher: publisher, dashboards: dashboards},
		now:      time.Now,
	}
}

func (s *CategoryService) Create(ctx context.Context, userID string, in core.NewCategory) (*core.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := core.Category{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		Icon:        in.Icon,
		Color:       in.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, core.ErrDuplicateCategoryName) {
			return nil, err
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.changed(ctx, amqp.NewCategoryEvent(amqp.EventCategoryCreated, userID, c.ID))
	return &c, nil
}

// FindAll returns the user's categories newest first with usage counts.
func (s *CategoryService) FindAll(ctx context.Context, userID string) ([]core.CategoryWithCount, error) {
	return s.store.ListCategoriesWithCounts(ctx, userID)
}

// FindByID returns nil when the category is absent or owned by someone else.
func (s *CategoryService) FindByID(ctx context.Context, id, userID string) (*core.CategoryWithCount, error) {
	return s.store.GetCategory(ctx, userID, id)
}

func (s *CategoryService) Update(ctx context.Context, id, userID string, p core.CategoryPatch) (*core.Category, error) {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	c, err := s.store.UpdateCategory(ctx, userID, id, p, s.now().UTC())
	if err != nil {
		return nil, err
	}

	s.changed(ctx, amqp.NewCategoryEvent(amqp.EventCategoryUpdated, userID, id))
	return c, nil
}

// Delete removes the category. Its transactions stay, uncategorized.
func (s *CategoryService) Delete(ctx context.Context, id, userID string) error {
	if err := s.store.DeleteCategory(ctx, userID, id); err != nil {
		return err
	}

	log.FromContext(ctx).InfoContext(ctx, "Category deleted",
		log.FieldOperation, log.OpDelete, log.FieldCategoryID, id, log.FieldUserID, userID)
	s.changed(ctx, amqp.NewCategoryEvent(amqp.EventCategoryDeleted, userID, id))
	return nil
}

func (s *CategoryService) Stats(ctx context.Context, userID string) (*core.CategoryStats, error) {
	totalCategories, err := s.store.CountCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	totalTransactions, err := s.store.CountTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	most, err := s.store.MostUsedCategory(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &core.CategoryStats{
		TotalCategories:   totalCategories,
		TotalTransactions: totalTransactions,
	}
	if most != nil {
		c := most.Category
		stats.MostUsedCategory = &c
		stats.MostUsedCategoryCount = most.TransactionCount
	}
	return stats, nil
}
