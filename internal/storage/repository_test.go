package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "fintrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *SQLiteRepository, email string) core.User {
	t.Helper()
	now := time.Now().UTC()
	u := core.User{
		ID:           uuid.NewString(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	return u
}

func seedCategory(t *testing.T, repo *SQLiteRepository, userID, name string) core.Category {
	t.Helper()
	now := time.Now().UTC()
	c := core.Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Icon:      "tag",
		Color:     "#000000",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.CreateCategory(context.Background(), c))
	return c
}

func seedTransaction(t *testing.T, repo *SQLiteRepository, userID string, typ core.TransactionType, cents int64, date time.Time, categoryID *string) core.Transaction {
	t.Helper()
	now := time.Now().UTC()
	tx := core.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Description: "entry",
		Amount:      core.Money{Cents: cents},
		Type:        typ,
		Date:        date,
		CategoryID:  categoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, repo.CreateTransaction(context.Background(), tx))
	return tx
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	u := seedUser(t, repo, "ann@example.com")

	got, err := repo.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	missing, err := repo.GetUserByID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)

	dup := u
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, repo.CreateUser(ctx, dup), core.ErrUserAlreadyExists)

	updated, err := repo.UpdateUserName(ctx, u.ID, "Ann Other", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Ann Other", updated.Name)
	assert.Equal(t, u.Email, updated.Email)

	_, err = repo.UpdateUserName(ctx, uuid.NewString(), "Nobody", time.Now())
	assert.ErrorIs(t, err, core.ErrUserNotFound)
}

func TestCategoryNameUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	alice := seedUser(t, repo, "alice@example.com")
	bob := seedUser(t, repo, "bob@example.com")

	food := seedCategory(t, repo, alice.ID, "Food")
	travel := seedCategory(t, repo, alice.ID, "Travel")

	dup := food
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, repo.CreateCategory(ctx, dup), core.ErrDuplicateCategoryName)

	// Same name for another user is fine.
	seedCategory(t, repo, bob.ID, "Food")

	same := "Food"
	renamed, err := repo.UpdateCategory(ctx, alice.ID, food.ID, core.CategoryPatch{Name: &same}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Food", renamed.Name)

	_, err = repo.UpdateCategory(ctx, alice.ID, travel.ID, core.CategoryPatch{Name: &same}, time.Now())
	assert.ErrorIs(t, err, core.ErrDuplicateCategoryName)

	_, err = repo.UpdateCategory(ctx, bob.ID, travel.ID, core.CategoryPatch{Name: &same}, time.Now())
	assert.ErrorIs(t, err, core.ErrCategoryNotFound)
}

func TestUpdateCategoryPartial(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := seedUser(t, repo, "p@example.com")
	c := seedCategory(t, repo, u.ID, "Bills")

	desc := "monthly"
	got, err := repo.UpdateCategory(ctx, u.ID, c.ID, core.CategoryPatch{Description: &desc}, time.Now())
	require.NoError(t, err)
	require.NotNil(t, got.Description)
	assert.Equal(t, "monthly", *got.Description)
	assert.Equal(t, "Bills", got.Name)
	assert.Equal(t, "tag", got.Icon)

	color := "#ffffff"
	got, err = repo.UpdateCategory(ctx, u.ID, c.ID, core.CategoryPatch{Color: &color}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "#ffffff", got.Color)
	require.NotNil(t, got.Description)
	assert.Equal(t, "monthly", *got.Description)
}

func TestCreateTransactionRejectsForeignCategory(t *testing.T) {
	repo := newTestRepo(t)
	alice := seedUser(t, repo, "alice@example.com")
	bob := seedUser(t, repo, "bob@example.com")
	bobs := seedCategory(t, repo, bob.ID, "Salary")

	tx := core.Transaction{
		ID:          uuid.NewString(),
		UserID:      alice.ID,
		Description: "sneaky",
		Amount:      core.Money{Cents: 100},
		Type:        core.Income,
		Date:        time.Now(),
		CategoryID:  &bobs.ID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	assert.ErrorIs(t, repo.CreateTransaction(context.Background(), tx), core.ErrCategoryOwnership)

	all, err := repo.ListTransactions(context.Background(), TransactionQuery{UserID: alice.ID})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateTransaction(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	alice := seedUser(t, repo, "alice@example.com")
	bob := seedUser(t, repo, "bob@example.com")
	mine := seedCategory(t, repo, alice.ID, "Food")
	theirs := seedCategory(t, repo, bob.ID, "Food")
	tx := seedTransaction(t, repo, alice.ID, core.Expense, 500, time.Now(), nil)

	t.Run("assign owned category", func(t *testing.T) {
		require.NoError(t, repo.UpdateTransaction(ctx, alice.ID, tx.ID, core.TransactionPatch{CategoryID: &mine.ID}, time.Now()))
		got, err := repo.GetTransaction(ctx, alice.ID, tx.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Category)
		assert.Equal(t, mine.ID, got.Category.ID)
	})

	t.Run("foreign category", func(t *testing.T) {
		err := repo.UpdateTransaction(ctx, alice.ID, tx.ID, core.TransactionPatch{CategoryID: &theirs.ID}, time.Now())
		assert.ErrorIs(t, err, core.ErrCategoryOwnership)
	})

	t.Run("foreign transaction", func(t *testing.T) {
		desc := "hijack"
		err := repo.UpdateTransaction(ctx, bob.ID, tx.ID, core.TransactionPatch{Description: &desc}, time.Now())
		assert.ErrorIs(t, err, core.ErrTransactionNotFound)
	})

	t.Run("partial fields", func(t *testing.T) {
		amount := core.Money{Cents: 1234}
		require.NoError(t, repo.UpdateTransaction(ctx, alice.ID, tx.ID, core.TransactionPatch{Amount: &amount}, time.Now()))
		got, err := repo.GetTransaction(ctx, alice.ID, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1234), got.Amount.Cents)
		assert.Equal(t, core.Expense, got.Type)
		assert.Equal(t, "entry", got.Description)
		require.NotNil(t, got.CategoryID)
	})

	t.Run("clear category", func(t *testing.T) {
		require.NoError(t, repo.UpdateTransaction(ctx, alice.ID, tx.ID, core.TransactionPatch{ClearCategory: true}, time.Now()))
		got, err := repo.GetTransaction(ctx, alice.ID, tx.ID)
		require.NoError(t, err)
		assert.Nil(t, got.CategoryID)
		assert.Nil(t, got.Category)
	})
}

func TestDeleteCategoryKeepsTransactions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := seedUser(t, repo, "u@example.com")
	c := seedCategory(t, repo, u.ID, "Food")
	tx := seedTransaction(t, repo, u.ID, core.Expense, 100, time.Now(), &c.ID)

	require.NoError(t, repo.DeleteCategory(ctx, u.ID, c.ID))
	assert.ErrorIs(t, repo.DeleteCategory(ctx, u.ID, c.ID), core.ErrCategoryNotFound)

	got, err := repo.GetTransaction(ctx, u.ID, tx.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.Category)
}

func TestListTransactionsOrderingAndFilters(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := seedUser(t, repo, "u@example.com")
	c := seedCategory(t, repo, u.ID, "Food")

	mar5 := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	mar20 := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)
	apr1 := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	a := seedTransaction(t, repo, u.ID, core.Expense, 5000, mar5, &c.ID)
	b := seedTransaction(t, repo, u.ID, core.Income, 20000, mar20, nil)
	d := seedTransaction(t, repo, u.ID, core.Expense, 100, apr1, nil)

	all, err := repo.ListTransactions(ctx, TransactionQuery{UserID: u.ID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{d.ID, b.ID, a.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	from, to := core.MonthRange(2024, 3, time.UTC)
	march, err := repo.ListTransactions(ctx, TransactionQuery{UserID: u.ID, From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, march, 2)

	expense := core.Expense
	expenses, err := repo.ListTransactions(ctx, TransactionQuery{UserID: u.ID, Type: &expense})
	require.NoError(t, err)
	assert.Len(t, expenses, 2)

	byCategory, err := repo.ListTransactions(ctx, TransactionQuery{UserID: u.ID, CategoryID: &c.ID})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, a.ID, byCategory[0].ID)
	require.NotNil(t, byCategory[0].Category)
	assert.Equal(t, "Food", byCategory[0].Category.Name)

	limited, err := repo.ListTransactions(ctx, TransactionQuery{UserID: u.ID, Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, d.ID, limited[0].ID)
}

func TestAggregates(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := seedUser(t, repo, "u@example.com")
	other := seedUser(t, repo, "o@example.com")

	food := seedCategory(t, repo, u.ID, "Food")
	rent := seedCategory(t, repo, u.ID, "Rent")
	seedCategory(t, repo, u.ID, "Unused")

	mar5 := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	mar20 := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	jan := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)

	seedTransaction(t, repo, u.ID, core.Expense, 5000, mar5, &food.ID)
	seedTransaction(t, repo, u.ID, core.Income, 20000, mar20, nil)
	seedTransaction(t, repo, u.ID, core.Expense, 1000, jan, &food.ID)
	seedTransaction(t, repo, u.ID, core.Expense, 70000, jan, &rent.ID)
	seedTransaction(t, repo, other.ID, core.Income, 99999, mar5, nil)

	income, expense, err := repo.SumByType(ctx, u.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), income.Cents)
	assert.Equal(t, int64(76000), expense.Cents)

	from, to := core.MonthRange(2024, 3, time.UTC)
	income, expense, err = repo.SumByType(ctx, u.ID, &from, &to)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), income.Cents)
	assert.Equal(t, int64(5000), expense.Cents)

	top, err := repo.TopCategories(ctx, u.ID, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, food.ID, top[0].Category.ID)
	assert.Equal(t, 2, top[0].TransactionCount)
	assert.Equal(t, int64(6000), top[0].TotalAmount.Cents)
	assert.Equal(t, rent.ID, top[1].Category.ID)

	most, err := repo.MostUsedCategory(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, most)
	assert.Equal(t, food.ID, most.ID)

	cats, err := repo.ListCategoriesWithCounts(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	counts := map[string]int{}
	for _, c := range cats {
		counts[c.Name] = c.TransactionCount
	}
	assert.Equal(t, map[string]int{"Food": 2, "Rent": 1, "Unused": 0}, counts)

	n, err := repo.CountTransactions(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = repo.CountCategories(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestTopCategoriesTieBreak(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := seedUser(t, repo, "u@example.com")

	a := seedCategory(t, repo, u.ID, "A")
	b := seedCategory(t, repo, u.ID, "B")
	seedTransaction(t, repo, u.ID, core.Expense, 1, time.Now(), &a.ID)
	seedTransaction(t, repo, u.ID, core.Expense, 1, time.Now(), &b.ID)

	top, err := repo.TopCategories(ctx, u.ID, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)

	first, second := a.ID, b.ID
	if second < first {
		first, second = second, first
	}
	assert.Equal(t, first, top[0].Category.ID)
	assert.Equal(t, second, top[1].Category.ID)
}

func TestMostUsedCategoryEmpty(t *testing.T) {
	repo := newTestRepo(t)
	u := seedUser(t, repo, "u@example.com")
	seedCategory(t, repo, u.ID, "Idle")

	most, err := repo.MostUsedCategory(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Nil(t, most)
}
