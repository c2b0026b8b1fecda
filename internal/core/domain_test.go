package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func TestParseTransactionType(t *testing.T) {
	for in, want := range map[string]TransactionType{"INCOME": Income, "expense": Expense, " Income ": Income} {
		got, err := ParseTransactionType(in)
		if err != nil || got != want {
			t.Fatalf("%q: expected %s, got %s (err=%v)", in, want, got, err)
		}
	}
	if _, err := ParseTransactionType("transfer"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestValidateRegistration(t *testing.T) {
	if err := ValidateRegistration("Ana Lima", "ana@example.com", "s3cretpass"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := [][3]string{
		{"Al", "ana@example.com", "s3cretpass"},
		{"Ana Lima", "not-an-email", "s3cretpass"},
		{"Ana Lima", "ana@example.com", "short"},
		{"Ana Lima", "ana@example.com", strings.Repeat("x", 101)},
	}
	for i, b := range bads {
		err := ValidateRegistration(b[0], b[1], b[2])
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestNewCategoryValidate(t *testing.T) {
	good := NewCategory{Name: "Food", Icon: "utensils", Color: "green"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []NewCategory{
		{Name: "", Icon: "a", Color: "b"},
		{Name: strings.Repeat("n", 51), Icon: "a", Color: "b"},
		{Name: "Food", Icon: "", Color: "b"},
		{Name: "Food", Icon: "a", Color: " "},
		{Name: "Food", Icon: "a", Color: "b", Description: ptr(strings.Repeat("d", 201))},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestNewTransactionValidate(t *testing.T) {
	good := NewTransaction{Description: "Salary", Amount: Money{Cents: 100}, Type: Income}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (NewTransaction{Description: "  ", Type: Income}).Validate(); err == nil {
		t.Fatalf("expected error for blank description")
	}
	if err := (NewTransaction{Description: "x", Type: "GIFT"}).Validate(); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestValidatePeriod(t *testing.T) {
	if err := ValidatePeriod(ptr(12), ptr(2024)); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := ValidatePeriod(ptr(13), nil); err == nil {
		t.Fatalf("expected error for month 13")
	}
	if err := ValidatePeriod(nil, ptr(0)); err == nil {
		t.Fatalf("expected error for year 0")
	}
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(2024, 2, time.UTC)
	if !start.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", start)
	}
	if !end.Equal(time.Date(2024, 2, 29, 23, 59, 59, int(999*time.Millisecond), time.UTC)) {
		t.Fatalf("unexpected end %v", end)
	}
	ys, ye := YearRange(2023, time.UTC)
	if ys.Month() != time.January || ye.Month() != time.December || ye.Day() != 31 {
		t.Fatalf("unexpected year range %v - %v", ys, ye)
	}
}

func TestResolvePeriod(t *testing.T) {
	now := time.Date(2025, 7, 14, 10, 0, 0, 0, time.UTC)
	m, y := ResolvePeriod(nil, nil, now)
	if m != 7 || y != 2025 {
		t.Fatalf("expected 7/2025, got %d/%d", m, y)
	}
	m, y = ResolvePeriod(ptr(3), ptr(2024), now)
	if m != 3 || y != 2024 {
		t.Fatalf("expected 3/2024, got %d/%d", m, y)
	}
}

func TestPagination(t *testing.T) {
	p := Pagination{}.Normalize()
	if p.Page != 1 || p.Limit != 10 {
		t.Fatalf("unexpected defaults %+v", p)
	}
	if (Pagination{Page: 1, Limit: 500}).Normalize().Limit != MaxLimit {
		t.Fatalf("limit not capped")
	}
	p = Pagination{Page: 2, Limit: 1}
	if p.Offset() != 1 || p.TotalPages(3) != 3 || p.TotalPages(0) != 0 {
		t.Fatalf("unexpected pagination math")
	}
	items := []int{1, 2, 3}
	if got := Paginate(items, p); len(got) != 1 || got[0] != 2 {
		t.Fatalf("unexpected page %v", got)
	}
	if got := Paginate(items, Pagination{Page: 5, Limit: 2}); len(got) != 0 {
		t.Fatalf("expected empty page, got %v", got)
	}
	if (Pagination{Limit: 4}).TotalPages(9) != 3 {
		t.Fatalf("expected ceil(9/4)=3")
	}
}

func TestIsDomainError(t *testing.T) {
	if !IsDomainError(ErrCategoryNotFound) || !IsDomainError(invalid("x", "y")) {
		t.Fatalf("expected domain errors")
	}
	if IsDomainError(errors.New("disk I/O error")) {
		t.Fatalf("storage errors must not be domain errors")
	}
}
