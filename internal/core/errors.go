package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrDuplicateCategoryName = errors.New("category with this name already exists")
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrCategoryOwnership     = errors.New("category not found or does not belong to user")
	ErrUnauthenticated       = errors.New("not authenticated")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsDomainError reports whether err belongs to the domain taxonomy and can be
// shown to API clients verbatim.
func IsDomainError(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	for _, known := range []error{
		ErrInvalidCredentials,
		ErrUserAlreadyExists,
		ErrUserNotFound,
		ErrCategoryNotFound,
		ErrDuplicateCategoryName,
		ErrTransactionNotFound,
		ErrCategoryOwnership,
		ErrUnauthenticated,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
