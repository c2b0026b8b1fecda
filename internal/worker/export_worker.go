package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// EventBackfill marks rows written by Backfill rather than by a live event.
const EventBackfill = "transaction.backfill"

// TransactionReader is satisfied by *storage.SQLiteRepository.
type TransactionReader interface {
	GetTransaction(ctx context.Context, userID, id string) (*core.Transaction, error)
	ListTransactions(ctx context.Context, q storage.TransactionQuery) ([]core.Transaction, error)
}

// ExportWorker turns change events into activity rows on a spreadsheet.
type ExportWorker struct {
	store     TransactionReader
	sink      sheets.ActivityWriter
	batchSize int
	now       func() time.Time
}

func NewExportWorker(store TransactionReader, sink sheets.ActivityWriter, batchSize int) *ExportWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &ExportWorker{
		store:     store,
		sink:      sink,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// HandleEvent exports a single event. Returning an error makes the consumer
// requeue the message.
func (w *ExportWorker) HandleEvent(ctx context.Context, e *amqp.Event) error {
	slog.InfoContext(ctx, "Processing event",
		"event_type", e.Type,
		"user_id", e.UserID,
		"transaction_id", e.TransactionID,
		"category_id", e.CategoryID)

	rec := sheets.ActivityRecord{
		At:            e.Timestamp,
		Event:         string(e.Type),
		UserID:        e.UserID,
		TransactionID: e.TransactionID,
		CategoryID:    e.CategoryID,
	}
	if rec.At.IsZero() {
		rec.At = w.now().UTC()
	}

	switch e.Type {
	case amqp.EventTransactionCreated, amqp.EventTransactionUpdated:
		t, err := w.store.GetTransaction(ctx, e.UserID, e.TransactionID)
		if err != nil {
			return fmt.Errorf("load transaction: %w", err)
		}
		if t == nil {
			// Deleted before we got here; its delete event will be exported.
			slog.WarnContext(ctx, "Transaction no longer exists, skipping",
				"transaction_id", e.TransactionID)
			return nil
		}
		rec = rec.FromTransaction(*t)
	}

	ref, err := w.sink.AppendActivity(ctx, []sheets.ActivityRecord{rec})
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}

	slog.InfoContext(ctx, "Successfully exported event",
		"event_type", e.Type,
		"sheets_ref", ref)
	return nil
}

// Backfill exports every transaction of a user, oldest first, in batches.
// It returns the number of rows written.
func (w *ExportWorker) Backfill(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, errors.New("backfill requires a user id")
	}

	txs, err := w.store.ListTransactions(ctx, storage.TransactionQuery{UserID: userID})
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}
	slices.Reverse(txs)

	slog.InfoContext(ctx, "Starting backfill", "user_id", userID, "count", len(txs))

	at := w.now().UTC()
	written := 0
	for start := 0; start < len(txs); start += w.batchSize {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		end := min(start+w.batchSize, len(txs))

		batch := make([]sheets.ActivityRecord, 0, end-start)
		for _, t := range txs[start:end] {
			batch = append(batch, sheets.ActivityRecord{
				At:     at,
				Event:  EventBackfill,
				UserID: userID,
			}.FromTransaction(t))
		}

		ref, err := w.sink.AppendActivity(ctx, batch)
		if err != nil {
			return written, fmt.Errorf("append batch at %d: %w", start, err)
		}
		written += len(batch)
		slog.InfoContext(ctx, "Exported batch", "user_id", userID, "rows", len(batch), "sheets_ref", ref)
	}

	slog.InfoContext(ctx, "Backfill completed", "user_id", userID, "rows", written)
	return written, nil
}
