package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// SumByType returns the INCOME and EXPENSE totals of the user's
// transactions, optionally bounded by an inclusive date range.
func (r *SQLiteRepository) SumByType(ctx context.Context, userID string, from, to *time.Time) (income, expense core.Money, err error) {
	var lo, hi sql.NullInt64
	if from != nil {
		lo = sql.NullInt64{Int64: toMillis(*from), Valid: true}
	}
	if to != nil {
		hi = sql.NullInt64{Int64: toMillis(*to), Valid: true}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT type, COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE user_id = ?
		  AND (? IS NULL OR date >= ?)
		  AND (? IS NULL OR date <= ?)
		GROUP BY type`,
		userID, lo, lo, hi, hi)
	if err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("sum by type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			txType string
			cents  int64
		)
		if err := rows.Scan(&txType, &cents); err != nil {
			return core.Money{}, core.Money{}, fmt.Errorf("scan sum: %w", err)
		}
		switch core.TransactionType(txType) {
		case core.Income:
			income = core.Money{Cents: cents}
		case core.Expense:
			expense = core.Money{Cents: cents}
		}
	}
	return income, expense, rows.Err()
}

// TopCategories ranks the user's categories by transaction count, ties
// broken by category id ascending. Categories without transactions are
// not listed.
func (r *SQLiteRepository) TopCategories(ctx context.Context, userID string, limit int) ([]core.CategoryUsage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.name, c.description, c.icon, c.color, c.created_at, c.updated_at,
		       COUNT(t.id), COALESCE(SUM(t.amount_cents), 0)
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ?
		GROUP BY c.id
		ORDER BY COUNT(t.id) DESC, c.id ASC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	defer rows.Close()

	out := []core.CategoryUsage{}
	for rows.Next() {
		var (
			count int
			cents int64
		)
		c, err := scanCategory(rows, &count, &cents)
		if err != nil {
			return nil, fmt.Errorf("scan category usage: %w", err)
		}
		out = append(out, core.CategoryUsage{Category: c, TransactionCount: count, TotalAmount: core.Money{Cents: cents}})
	}
	return out, rows.Err()
}
