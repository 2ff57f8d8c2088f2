package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvoiceNotFound is returned when an invoice does not exist for the caller
	ErrInvoiceNotFound = errors.New("invoice not found")
	// ErrAdminRequired is returned when a non-administrator provisions a business for someone else
	ErrAdminRequired = errors.New("administrator rights required")
)

// ValidationError rejects input before any change is submitted
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AsValidationError unwraps err into a ValidationError
func AsValidationError(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
