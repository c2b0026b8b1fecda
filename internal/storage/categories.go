package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
)

const categoryColumns = `id, user_id, name, description, icon, color, created_at, updated_at`

func scanCategory(s scanner, extra ...any) (core.Category, error) {
	var (
		c                    core.Category
		desc                 sql.NullString
		createdAt, updatedAt int64
	)
	dest := append([]any{&c.ID, &c.UserID, &c.Name, &desc, &c.Icon, &c.Color, &createdAt, &updatedAt}, extra...)
	if err := s.Scan(dest...); err != nil {
		return core.Category{}, err
	}
	c.Description = stringPtr(desc)
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return c, nil
}

// CreateCategory inserts c. The (user_id, name) unique index rejects
// duplicates with core.ErrDuplicateCategoryName.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, nullString(c.Description), c.Icon, c.Color,
		toMillis(c.CreatedAt), toMillis(c.UpdatedAt))
	if isUniqueViolation(err) {
		return core.ErrDuplicateCategoryName
	}
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category saved to SQLite", "category_id", c.ID, "user_id", c.UserID)
	return nil
}

// ListCategoriesWithCounts returns the user's categories newest first, each
// with the number of transactions referencing it.
func (r *SQLiteRepository) ListCategoriesWithCounts(ctx context.Context, userID string) ([]core.CategoryWithCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.name, c.description, c.icon, c.color, c.created_at, c.updated_at,
		       COUNT(t.id)
		FROM categories c
		LEFT JOIN transactions t ON t.category_id = c.id
		WHERE c.user_id = ?
		GROUP BY c.id
		ORDER BY c.created_at DESC, c.id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := []core.CategoryWithCount{}
	for rows.Next() {
		var count int
		c, err := scanCategory(rows, &count)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, core.CategoryWithCount{Category: c, TransactionCount: count})
	}
	return out, rows.Err()
}

// GetCategory returns the category with its usage count, or nil when it
// does not exist for userID.
func (r *SQLiteRepository) GetCategory(ctx context.Context, userID, id string) (*core.CategoryWithCount, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT c.id, c.user_id, c.name, c.description, c.icon, c.color, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM transactions t WHERE t.category_id = c.id)
		FROM categories c
		WHERE c.id = ? AND c.user_id = ?`, id, userID)
	var count int
	c, err := scanCategory(row, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &core.CategoryWithCount{Category: c, TransactionCount: count}, nil
}

// UpdateCategory applies the non-nil fields of p in one statement scoped to
// the owner. Renaming onto another category's name fails with
// core.ErrDuplicateCategoryName; keeping the current name is allowed.
func (r *SQLiteRepository) UpdateCategory(ctx context.Context, userID, id string, p core.CategoryPatch, now time.Time) (*core.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE categories SET
			name        = COALESCE(?, name),
			description = CASE WHEN ? THEN ? ELSE description END,
			icon        = COALESCE(?, icon),
			color       = COALESCE(?, color),
			updated_at  = ?
		WHERE id = ? AND user_id = ?
		RETURNING `+categoryColumns,
		nullString(p.Name),
		boolInt(p.Description != nil), nullString(p.Description),
		nullString(p.Icon),
		nullString(p.Color),
		toMillis(now),
		id, userID)
	c, err := scanCategory(row)
	if isUniqueViolation(err) {
		return nil, core.ErrDuplicateCategoryName
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return &c, nil
}

// DeleteCategory removes the category; referencing transactions keep living
// with a NULL category_id.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrCategoryNotFound
	}

	slog.InfoContext(ctx, "Category deleted from SQLite", "category_id", id, "user_id", userID)
	return nil
}

func (r *SQLiteRepository) CountCategories(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

// MostUsedCategory returns the category with the most transactions, ties
// broken by id ascending. It returns nil when the user has no categorized
// transactions.
func (r *SQLiteRepository) MostUsedCategory(ctx context.Context, userID string) (*core.CategoryWithCount, error) {
	usage, err := r.TopCategories(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(usage) == 0 {
		return nil, nil
	}
	return &core.CategoryWithCount{Category: usage[0].Category, TransactionCount: usage[0].TransactionCount}, nil
}
