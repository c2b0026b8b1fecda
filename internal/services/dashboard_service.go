package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

const (
	recentTransactionsLimit = 5
	topCategoriesLimit      = 5
)

// DashboardService aggregates balances and activity for one calendar month.
type DashboardService struct {
	store DashboardStore
	cache cache.Cache[core.Dashboard]
	group singleflight.Group
	loc   *time.Location
	now   func() time.Time

	mu          sync.Mutex
	generations map[string]uint64
}

// NewDashboardService builds the service. A nil cache disables caching.
func NewDashboardService(store DashboardStore, c cache.Cache[core.Dashboard], loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		store:       store,
		cache:       c,
		loc:         loc,
		now:         time.Now,
		generations: make(map[string]uint64),
	}
}

// Get returns the dashboard for month/year, defaulting to the current month
// in the configured location.
func (s *DashboardService) Get(ctx context.Context, userID string, month, year *int) (*core.Dashboard, error) {
	if err := core.ValidatePeriod(month, year); err != nil {
		return nil, err
	}
	m, y := core.ResolvePeriod(month, year, s.now().In(s.loc))

	if s.cache == nil {
		return s.compute(ctx, userID, m, y)
	}

	key := cacheKey(userID, y, m)
	if d, ok := s.cache.Get(key); ok {
		return &d, nil
	}

	// The flight is shared, so it must outlive any single caller.
	flightCtx := context.WithoutCancel(ctx)
	gen := s.generation(userID)
	ch := s.group.DoChan(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		d, err := s.compute(flightCtx, userID, m, y)
		if err != nil {
			return nil, err
		}
		// Skip the store if the user's data changed while computing.
		if s.generation(userID) == gen {
			s.cache.Set(key, *d)
		}
		return d, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		d := *res.Val.(*core.Dashboard)
		return &d, nil
	}
}

// Invalidate drops every cached month of userID.
func (s *DashboardService) Invalidate(userID string) {
	s.mu.Lock()
	s.generations[userID]++
	s.mu.Unlock()

	if s.cache != nil {
		s.cache.DeletePrefix(userID + ":")
	}
}

func (s *DashboardService) generation(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[userID]
}

func (s *DashboardService) compute(ctx context.Context, userID string, month, year int) (*core.Dashboard, error) {
	from, to := core.MonthRange(year, month, s.loc)

	var (
		d                              core.Dashboard
		lifetimeIncome, lifetimeExpense core.Money
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lifetimeIncome, lifetimeExpense, err = s.store.SumByType(gctx, userID, nil, nil)
		return err
	})
	g.Go(func() error {
		var err error
		d.Balance.Income, d.Balance.Expense, err = s.store.SumByType(gctx, userID, &from, &to)
		return err
	})
	g.Go(func() error {
		var err error
		d.RecentTransactions, err = s.store.ListTransactions(gctx, storage.TransactionQuery{
			UserID: userID,
			Limit:  recentTransactionsLimit,
		})
		return err
	})
	g.Go(func() error {
		var err error
		d.TopCategories, err = s.store.TopCategories(gctx, userID, topCategoriesLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	d.Balance.Total = lifetimeIncome.Sub(lifetimeExpense)

	log.FromContext(ctx).DebugContext(ctx, "Dashboard computed",
		log.NewFields().WithUser(userID).WithPeriod(year, month).ToSlice()...)
	return &d, nil
}

func cacheKey(userID string, year, month int) string {
	return fmt.Sprintf("%s:%04d-%02d", userID, year, month)
}
