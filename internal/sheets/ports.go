// Package sheets defines the outbound ports for the activity export.
package sheets

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// ActivityRecord is one exported row. Transaction fields are empty for
// category events and for deleted transactions.
type ActivityRecord struct {
	At            time.Time
	Event         string
	UserID        string
	TransactionID string
	CategoryID    string
	Date          time.Time
	Description   string
	Type          core.TransactionType
	Amount        core.Money
	Category      string
}

// Ports for outbound adapters.
type (
	ActivityWriter interface {
		// AppendActivity appends rows in order and returns a range reference.
		AppendActivity(ctx context.Context, records []ActivityRecord) (ref string, err error)
	}

	ActivityReader interface {
		// ListActivity returns the rows exported during year.
		ListActivity(ctx context.Context, year int) ([]ActivityRecord, error)
	}
)

// FromTransaction fills the transaction columns of r.
func (r ActivityRecord) FromTransaction(t core.Transaction) ActivityRecord {
	r.TransactionID = t.ID
	r.Date = t.Date
	r.Description = t.Description
	r.Type = t.Type
	r.Amount = t.Amount
	if t.Category != nil {
		r.CategoryID = t.Category.ID
		r.Category = t.Category.Name
	}
	return r
}
