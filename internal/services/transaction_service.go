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
	"fintrack/internal/storage"
)

type TransactionService struct {
	store TransactionStore
	notifier
	loc *time.Location
	now func() time.Time
}

// NewTransactionService builds the service; loc defines calendar months for
// the month/year filters.
func NewTransactionService(store TransactionStore, publisher EventPublisher, dashboards DashboardInvalidator, loc *time.Location) *TransactionService {
	if loc == nil {
		loc = time.UTC
	}
	return &TransactionService{
		store:    store,
		notifier: notifier{publisher: publisher, dashboards: dashboards},
		loc:      loc,
		now:      time.Now,
	}
}

func (s *TransactionService) Create(ctx context.Context, userID string, in core.NewTransaction) (*core.Transaction, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	date := now
	if in.Date != nil {
		date = in.Date.UTC()
	}

	t := core.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Description: in.Description,
		Amount:      in.Amount,
		Type:        in.Type,
		Date:        date,
		CategoryID:  in.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateTransaction(ctx, t); err != nil {
		if errors.Is(err, core.ErrCategoryOwnership) {
			return nil, err
		}
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	created, err := s.reload(ctx, userID, t.ID)
	if err != nil {
		return nil, err
	}

	log.FromContext(ctx).InfoContext(ctx, "Transaction created",
		log.NewFields().
			WithOperation(log.OpCreate).
			WithUser(userID).
			WithTransaction(t.ID, string(t.Type), t.Amount.String()).
			ToSlice()...)
	s.changed(ctx, amqp.NewTransactionEvent(amqp.EventTransactionCreated, userID, t.ID))
	return created, nil
}

// FindAll returns every transaction of the user, newest first.
func (s *TransactionService) FindAll(ctx context.Context, userID string) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, storage.TransactionQuery{UserID: userID})
}

// FindAllWithFilters narrows by type, category and calendar period in SQL,
// then applies the description substring match and pagination in memory.
// Total counts the rows left after the description match.
func (s *TransactionService) FindAllWithFilters(ctx context.Context, userID string, f *core.TransactionFilter, p *core.Pagination) (*core.PaginatedTransactions, error) {
	var filter core.TransactionFilter
	if f != nil {
		filter = *f
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	// An empty category id means no category filter.
	if filter.CategoryID != nil && *filter.CategoryID == "" {
		filter.CategoryID = nil
	}

	var page core.Pagination
	if p != nil {
		page = *p
	}
	page = page.Normalize()

	q := storage.TransactionQuery{
		UserID:     userID,
		Type:       filter.Type,
		CategoryID: filter.CategoryID,
	}
	// A month without a year is ignored.
	switch {
	case filter.Year != nil && filter.Month != nil:
		from, to := core.MonthRange(*filter.Year, *filter.Month, s.loc)
		q.From, q.To = &from, &to
	case filter.Year != nil:
		from, to := core.YearRange(*filter.Year, s.loc)
		q.From, q.To = &from, &to
	}

	all, err := s.store.ListTransactions(ctx, q)
	if err != nil {
		return nil, err
	}

	if needle := strings.ToLower(filter.Description); needle != "" {
		matched := make([]core.Transaction, 0, len(all))
		for _, t := range all {
			if strings.Contains(strings.ToLower(t.Description), needle) {
				matched = append(matched, t)
			}
		}
		all = matched
	}

	total := len(all)
	return &core.PaginatedTransactions{
		Transactions: core.Paginate(all, page),
		Total:        total,
		Page:         page.Page,
		Limit:        page.Limit,
		TotalPages:   page.TotalPages(total),
	}, nil
}

// FindByID returns nil when the transaction is absent or not owned.
func (s *TransactionService) FindByID(ctx context.Context, id, userID string) (*core.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

func (s *TransactionService) Update(ctx context.Context, id, userID string, p core.TransactionPatch) (*core.Transaction, error) {
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		p.Description = &desc
	}
	if p.Date != nil {
		d := p.Date.UTC()
		p.Date = &d
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.UpdateTransaction(ctx, userID, id, p, s.now().UTC()); err != nil {
		return nil, err
	}

	updated, err := s.reload(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	s.changed(ctx, amqp.NewTransactionEvent(amqp.EventTransactionUpdated, userID, id))
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, id, userID string) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}

	log.FromContext(ctx).InfoContext(ctx, "Transaction deleted",
		log.FieldOperation, log.OpDelete, log.FieldTransactionID, id, log.FieldUserID, userID)
	s.changed(ctx, amqp.NewTransactionEvent(amqp.EventTransactionDeleted, userID, id))
	return nil
}

func (s *TransactionService) reload(ctx context.Context, userID, id string) (*core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, core.ErrTransactionNotFound
	}
	return t, nil
}
