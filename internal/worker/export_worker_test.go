package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets"
	"fintrack/internal/sheets/memory"
	"fintrack/internal/storage"
)

type fakeReader struct {
	txs map[string]core.Transaction
	// ordered as storage returns them: newest first
	list []core.Transaction
	err  error
}

func (f *fakeReader) GetTransaction(_ context.Context, userID, id string) (*core.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.txs[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeReader) ListTransactions(_ context.Context, q storage.TransactionQuery) ([]core.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []core.Transaction
	for _, t := range f.list {
		if t.UserID == q.UserID {
			out = append(out, t)
		}
	}
	return out, nil
}

type failingSink struct{}

func (failingSink) AppendActivity(context.Context, []sheets.ActivityRecord) (string, error) {
	return "", errors.New("quota exceeded")
}

func sampleTx(id string, day int) core.Transaction {
	food := core.Category{ID: "cat-1", Name: "Food"}
	catID := food.ID
	return core.Transaction{
		ID:          id,
		UserID:      "user-1",
		Description: "Lunch " + id,
		Amount:      core.Money{Cents: 1500},
		Type:        core.Expense,
		Date:        time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC),
		CategoryID:  &catID,
		Category:    &food,
	}
}

func TestHandleEvent_TransactionCreated(t *testing.T) {
	tx := sampleTx("tx-1", 3)
	sink := memory.New()
	w := NewExportWorker(&fakeReader{txs: map[string]core.Transaction{tx.ID: tx}}, sink, 10)

	ts := time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)
	err := w.HandleEvent(context.Background(), &amqp.Event{
		Type: amqp.EventTransactionCreated, UserID: "user-1", TransactionID: tx.ID, Timestamp: ts,
	})
	require.NoError(t, err)

	rows := sink.All()
	require.Len(t, rows, 1)
	assert.Equal(t, "transaction.created", rows[0].Event)
	assert.Equal(t, ts, rows[0].At)
	assert.Equal(t, "Food", rows[0].Category)
	assert.Equal(t, int64(1500), rows[0].Amount.Cents)
	assert.Equal(t, core.Expense, rows[0].Type)
}

func TestHandleEvent_MissingTransactionIsSkipped(t *testing.T) {
	sink := memory.New()
	w := NewExportWorker(&fakeReader{txs: map[string]core.Transaction{}}, sink, 10)

	err := w.HandleEvent(context.Background(), &amqp.Event{
		Type: amqp.EventTransactionUpdated, UserID: "user-1", TransactionID: "gone",
	})
	require.NoError(t, err)
	assert.Empty(t, sink.All())
}

func TestHandleEvent_IDOnlyRows(t *testing.T) {
	sink := memory.New()
	w := NewExportWorker(&fakeReader{}, sink, 10)
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	ctx := context.Background()
	require.NoError(t, w.HandleEvent(ctx, &amqp.Event{Type: amqp.EventTransactionDeleted, UserID: "user-1", TransactionID: "tx-9"}))
	require.NoError(t, w.HandleEvent(ctx, &amqp.Event{Type: amqp.EventCategoryDeleted, UserID: "user-1", CategoryID: "cat-9"}))

	rows := sink.All()
	require.Len(t, rows, 2)
	assert.Equal(t, "tx-9", rows[0].TransactionID)
	assert.True(t, rows[0].Date.IsZero())
	assert.Equal(t, fixed, rows[0].At, "missing timestamp falls back to now")
	assert.Equal(t, "cat-9", rows[1].CategoryID)
}

func TestHandleEvent_Errors(t *testing.T) {
	ctx := context.Background()

	w := NewExportWorker(&fakeReader{err: errors.New("db down")}, memory.New(), 10)
	err := w.HandleEvent(ctx, &amqp.Event{Type: amqp.EventTransactionCreated, UserID: "u", TransactionID: "t"})
	assert.ErrorContains(t, err, "load transaction")

	w = NewExportWorker(&fakeReader{}, failingSink{}, 10)
	err = w.HandleEvent(ctx, &amqp.Event{Type: amqp.EventCategoryCreated, UserID: "u", CategoryID: "c"})
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestBackfill(t *testing.T) {
	list := []core.Transaction{sampleTx("tx-5", 5), sampleTx("tx-4", 4), sampleTx("tx-3", 3), sampleTx("tx-2", 2), sampleTx("tx-1", 1)}
	other := sampleTx("tx-x", 6)
	other.UserID = "user-2"
	list = append(list, other)

	sink := memory.New()
	w := NewExportWorker(&fakeReader{list: list}, sink, 2)

	n, err := w.Backfill(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	rows := sink.All()
	require.Len(t, rows, 5)
	for i, r := range rows {
		assert.Equal(t, EventBackfill, r.Event)
		assert.Equal(t, "user-1", r.UserID)
		if i > 0 {
			assert.True(t, rows[i-1].Date.Before(r.Date), "rows are exported oldest first")
		}
	}
}

func TestBackfill_Errors(t *testing.T) {
	w := NewExportWorker(&fakeReader{}, memory.New(), 0)
	_, err := w.Backfill(context.Background(), "")
	assert.Error(t, err)
	assert.Equal(t, 50, w.batchSize)

	w = NewExportWorker(&fakeReader{list: []core.Transaction{sampleTx("tx-1", 1)}}, failingSink{}, 10)
	n, err := w.Backfill(context.Background(), "user-1")
	assert.Error(t, err)
	assert.Zero(t, n)
}
