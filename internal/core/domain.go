package core

import (
	"net/mail"
	"strings"
	"time"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

type (
	TransactionType string

	User struct {
		ID           string
		Name         string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	Category struct {
		ID          string
		UserID      string
		Name        string
		Description *string
		Icon        string
		Color       string
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// CategoryWithCount is a category annotated with its usage count.
	CategoryWithCount struct {
		Category
		TransactionCount int
	}

	Transaction struct {
		ID          string
		UserID      string
		Description string
		Amount      Money
		Type        TransactionType
		Date        time.Time
		CategoryID  *string
		Category    *Category // nil when uncategorized
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	NewCategory struct {
		Name        string
		Description *string
		Icon        string
		Color       string
	}

	// CategoryPatch holds the fields to change; nil fields keep their stored value.
	CategoryPatch struct {
		Name        *string
		Description *string
		Icon        *string
		Color       *string
	}

	NewTransaction struct {
		Description string
		Amount      Money
		Type        TransactionType
		Date        *time.Time
		CategoryID  *string
	}

	// TransactionPatch holds the fields to change. ClearCategory detaches the
	// transaction from its category and wins over CategoryID.
	TransactionPatch struct {
		Description   *string
		Amount        *Money
		Type          *TransactionType
		Date          *time.Time
		CategoryID    *string
		ClearCategory bool
	}

	TransactionFilter struct {
		Description string
		Type        *TransactionType
		CategoryID  *string
		Month       *int
		Year        *int
	}

	PaginatedTransactions struct {
		Transactions []Transaction
		Total        int
		Page         int
		Limit        int
		TotalPages   int
	}

	CategoryStats struct {
		TotalCategories       int
		TotalTransactions     int
		MostUsedCategory      *Category
		MostUsedCategoryCount int
	}

	Balance struct {
		Total   Money
		Income  Money
		Expense Money
	}

	CategoryUsage struct {
		Category         Category
		TransactionCount int
		TotalAmount      Money
	}

	Dashboard struct {
		Balance            Balance
		RecentTransactions []Transaction
		TopCategories      []CategoryUsage
	}
)

// ParseTransactionType accepts the enum name in any case.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToUpper(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	}
	return "", invalid("type", "must be INCOME or EXPENSE")
}

func (t TransactionType) Validate() error {
	if t != Income && t != Expense {
		return invalid("type", "must be INCOME or EXPENSE")
	}
	return nil
}

func ValidateRegistration(name, email, password string) error {
	if err := validateUserName(name); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(email); err != nil || strings.TrimSpace(email) == "" {
		return invalid("email", "must be a valid e-mail address")
	}
	if n := len(password); n < 8 || n > 100 {
		return invalid("password", "must be between 8 and 100 characters")
	}
	return nil
}

func ValidateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return invalid("email", "is required")
	}
	if password == "" {
		return invalid("password", "is required")
	}
	return nil
}

func validateUserName(name string) error {
	if n := len([]rune(strings.TrimSpace(name))); n < 3 || n > 100 {
		return invalid("name", "must be between 3 and 100 characters")
	}
	return nil
}

// ValidateUserName checks a display name for updateUser.
func ValidateUserName(name string) error {
	return validateUserName(name)
}

func validateCategoryName(name string) error {
	if n := len([]rune(strings.TrimSpace(name))); n < 1 || n > 50 {
		return invalid("name", "must be between 1 and 50 characters")
	}
	return nil
}

func validateCategoryDescription(desc *string) error {
	if desc != nil && len([]rune(*desc)) > 200 {
		return invalid("description", "must be at most 200 characters")
	}
	return nil
}

func (c NewCategory) Validate() error {
	if err := validateCategoryName(c.Name); err != nil {
		return err
	}
	if err := validateCategoryDescription(c.Description); err != nil {
		return err
	}
	if strings.TrimSpace(c.Icon) == "" {
		return invalid("icon", "is required")
	}
	if strings.TrimSpace(c.Color) == "" {
		return invalid("color", "is required")
	}
	return nil
}

func (p CategoryPatch) Validate() error {
	if p.Name != nil {
		if err := validateCategoryName(*p.Name); err != nil {
			return err
		}
	}
	if err := validateCategoryDescription(p.Description); err != nil {
		return err
	}
	if p.Icon != nil && strings.TrimSpace(*p.Icon) == "" {
		return invalid("icon", "cannot be empty")
	}
	if p.Color != nil && strings.TrimSpace(*p.Color) == "" {
		return invalid("color", "cannot be empty")
	}
	return nil
}

func validateDescription(desc string) error {
	if len(strings.TrimSpace(desc)) == 0 {
		return invalid("description", "is required")
	}
	if len([]rune(desc)) > 200 {
		return invalid("description", "must be at most 200 characters")
	}
	return nil
}

func (t NewTransaction) Validate() error {
	if err := validateDescription(t.Description); err != nil {
		return err
	}
	return t.Type.Validate()
}

func (p TransactionPatch) Validate() error {
	if p.Description != nil {
		if err := validateDescription(*p.Description); err != nil {
			return err
		}
	}
	if p.Type != nil {
		return p.Type.Validate()
	}
	return nil
}

func (f TransactionFilter) Validate() error {
	if f.Type != nil {
		if err := f.Type.Validate(); err != nil {
			return err
		}
	}
	return ValidatePeriod(f.Month, f.Year)
}

// ValidatePeriod checks optional month/year arguments.
func ValidatePeriod(month, year *int) error {
	if month != nil && (*month < 1 || *month > 12) {
		return invalid("month", "must be between 1 and 12")
	}
	if year != nil && (*year < 1 || *year > 9999) {
		return invalid("year", "must be between 1 and 9999")
	}
	return nil
}
