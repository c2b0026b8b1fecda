package google

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

// Column layout: A timestamp, B event, C user, D transaction, E category id,
// F date, G description, H type, I amount, J category name.
const lastColumn = "J"

const dateLayout = "2006-01-02"

func encodeRow(r ports.ActivityRecord) []any {
	row := []any{
		r.At.UTC().Format(time.RFC3339),
		r.Event,
		r.UserID,
		r.TransactionID,
		r.CategoryID,
		"",
		r.Description,
		string(r.Type),
		"",
		r.Category,
	}
	if r.TransactionID != "" && !r.Date.IsZero() {
		row[5] = r.Date.UTC().Format(dateLayout)
		row[8] = r.Amount.String()
	}
	return row
}

func decodeRow(row []any) (ports.ActivityRecord, bool) {
	cols := toStrings(row)
	at, err := time.Parse(time.RFC3339, safeGet(cols, 0))
	if err != nil {
		return ports.ActivityRecord{}, false
	}

	r := ports.ActivityRecord{
		At:            at,
		Event:         safeGet(cols, 1),
		UserID:        safeGet(cols, 2),
		TransactionID: safeGet(cols, 3),
		CategoryID:    safeGet(cols, 4),
		Description:   safeGet(cols, 6),
		Type:          core.TransactionType(safeGet(cols, 7)),
		Category:      safeGet(cols, 9),
	}
	if d, err := time.Parse(dateLayout, safeGet(cols, 5)); err == nil {
		r.Date = d
	}
	if cents, ok := parseAmountToCents(safeGet(cols, 8)); ok {
		r.Amount = core.Money{Cents: cents}
	}
	return r, true
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// parseAmountToCents accepts "12.34", "12,34" and "-7" as rendered by Sheets.
func parseAmountToCents(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return 0, false
	}
	return d.Round(2).Shift(2).IntPart(), true
}
