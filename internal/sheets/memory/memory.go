// Package memory is an in-process activity sink used when no spreadsheet
// is configured, and by tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fintrack/internal/sheets"
)

type Store struct {
	mu    sync.Mutex
	items []sheets.ActivityRecord
}

var (
	_ sheets.ActivityWriter = (*Store)(nil)
	_ sheets.ActivityReader = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// AppendActivity stores the records and returns a synthetic row range.
func (s *Store) AppendActivity(_ context.Context, records []sheets.ActivityRecord) (string, error) {
	if len(records) == 0 {
		return "", errors.New("no records to append")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	first := len(s.items) + 1
	s.items = append(s.items, records...)
	return fmt.Sprintf("mem:%d-%d", first, len(s.items)), nil
}

func (s *Store) ListActivity(_ context.Context, year int) ([]sheets.ActivityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sheets.ActivityRecord
	for _, r := range s.items {
		if r.At.Year() == year {
			out = append(out, r)
		}
	}
	return out, nil
}

// All returns a copy of every stored record.
func (s *Store) All() []sheets.ActivityRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.ActivityRecord(nil), s.items...)
}
