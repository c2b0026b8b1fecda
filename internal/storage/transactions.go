package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fintrack/internal/core"
)

const transactionSelect = `
	SELECT t.id, t.user_id, t.category_id, t.description, t.amount_cents, t.type,
	       t.date, t.created_at, t.updated_at,
	       c.id, c.user_id, c.name, c.description, c.icon, c.color, c.created_at, c.updated_at
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id`

// TransactionQuery narrows ListTransactions. Zero values mean "no filter";
// From/To are inclusive.
type TransactionQuery struct {
	UserID     string
	Type       *core.TransactionType
	CategoryID *string
	From       *time.Time
	To         *time.Time
	Limit      int
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t                        core.Transaction
		categoryID               sql.NullString
		amountCents              int64
		txType                   string
		date, createdAt, updated int64

		cID, cUserID, cName, cDesc, cIcon, cColor sql.NullString
		cCreated, cUpdated                        sql.NullInt64
	)
	err := s.Scan(
		&t.ID, &t.UserID, &categoryID, &t.Description, &amountCents, &txType,
		&date, &createdAt, &updated,
		&cID, &cUserID, &cName, &cDesc, &cIcon, &cColor, &cCreated, &cUpdated,
	)
	if err != nil {
		return core.Transaction{}, err
	}

	t.CategoryID = stringPtr(categoryID)
	t.Amount = core.Money{Cents: amountCents}
	t.Type = core.TransactionType(txType)
	t.Date = fromMillis(date)
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updated)

	if cID.Valid {
		t.Category = &core.Category{
			ID:          cID.String,
			UserID:      cUserID.String,
			Name:        cName.String,
			Description: stringPtr(cDesc),
			Icon:        cIcon.String,
			Color:       cColor.String,
			CreatedAt:   fromMillis(cCreated.Int64),
			UpdatedAt:   fromMillis(cUpdated.Int64),
		}
	}
	return t, nil
}

// CreateTransaction inserts t only if its category (when set) belongs to the
// same user. The check and the insert are one statement.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	catID := nullString(t.CategoryID)
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions
			(id, user_id, category_id, description, amount_cents, type, date, created_at, updated_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?
		WHERE ? IS NULL
		   OR EXISTS (SELECT 1 FROM categories WHERE id = ? AND user_id = ?)`,
		t.ID, t.UserID, catID, t.Description, t.Amount.Cents, string(t.Type),
		toMillis(t.Date), toMillis(t.CreatedAt), toMillis(t.UpdatedAt),
		catID, catID, t.UserID)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create transaction rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrCategoryOwnership
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"transaction_id", t.ID, "user_id", t.UserID, "type", t.Type, "amount", t.Amount.String())
	return nil
}

// GetTransaction returns the owned transaction joined with its category, or
// nil when absent.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id string) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, transactionSelect+` WHERE t.id = ? AND t.user_id = ?`, id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

// ListTransactions returns matching transactions ordered by date, then
// creation time, then id, all descending.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, q TransactionQuery) ([]core.Transaction, error) {
	var (
		where = []string{"t.user_id = ?"}
		args  = []any{q.UserID}
	)
	if q.Type != nil {
		where = append(where, "t.type = ?")
		args = append(args, string(*q.Type))
	}
	if q.CategoryID != nil {
		where = append(where, "t.category_id = ?")
		args = append(args, *q.CategoryID)
	}
	if q.From != nil {
		where = append(where, "t.date >= ?")
		args = append(args, toMillis(*q.From))
	}
	if q.To != nil {
		where = append(where, "t.date <= ?")
		args = append(args, toMillis(*q.To))
	}

	query := transactionSelect + " WHERE " + strings.Join(where, " AND ") +
		" ORDER BY t.date DESC, t.created_at DESC, t.id DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateTransaction applies p in a single statement guarded by ownership of
// the transaction and, when a new category is given, of that category.
// When nothing is updated it tells apart a missing transaction
// (core.ErrTransactionNotFound) from a foreign category
// (core.ErrCategoryOwnership).
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, userID, id string, p core.TransactionPatch, now time.Time) error {
	var (
		amount  sql.NullInt64
		txType  sql.NullString
		date    sql.NullInt64
		newCat  sql.NullString
		checkID sql.NullString
	)
	if p.Amount != nil {
		amount = sql.NullInt64{Int64: p.Amount.Cents, Valid: true}
	}
	if p.Type != nil {
		txType = sql.NullString{String: string(*p.Type), Valid: true}
	}
	if p.Date != nil {
		date = sql.NullInt64{Int64: toMillis(*p.Date), Valid: true}
	}
	if !p.ClearCategory {
		newCat = nullString(p.CategoryID)
		checkID = newCat
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET
			description  = COALESCE(?, description),
			amount_cents = COALESCE(?, amount_cents),
			type         = COALESCE(?, type),
			date         = COALESCE(?, date),
			category_id  = CASE WHEN ? = 1 THEN NULL ELSE COALESCE(?, category_id) END,
			updated_at   = ?
		WHERE id = ? AND user_id = ?
		  AND (? IS NULL OR EXISTS (SELECT 1 FROM categories WHERE id = ? AND user_id = ?))`,
		nullString(p.Description), amount, txType, date,
		boolInt(p.ClearCategory), newCat,
		toMillis(now),
		id, userID,
		checkID, checkID, userID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	exists, err := r.transactionExists(ctx, userID, id)
	if err != nil {
		return err
	}
	if !exists {
		return core.ErrTransactionNotFound
	}
	return core.ErrCategoryOwnership
}

func (r *SQLiteRepository) transactionExists(ctx context.Context, userID, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM transactions WHERE id = ? AND user_id = ?`, id, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check transaction: %w", err)
	}
	return true, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrTransactionNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted from SQLite", "transaction_id", id, "user_id", userID)
	return nil
}

func (r *SQLiteRepository) CountTransactions(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}
