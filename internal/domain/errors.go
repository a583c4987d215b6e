package domain

import (
	"errors"
	"fmt"
)

// Failure modes of the invoicing core. Every component surfaces one of these;
// nothing is logged-and-ignored and money values are never silently defaulted.
var (
	// ErrValidationFailed is returned for bad input before any side effect.
	// In particular, no sequence number is allocated for rejected input.
	ErrValidationFailed = errors.New("invoice validation failed")

	// ErrConcurrencyConflict is returned when the sequence allocator's
	// transaction could not guarantee isolation. Safe to retry.
	ErrConcurrencyConflict = errors.New("sequence allocation conflict")

	// ErrStorageFailure is returned on an underlying transactional store
	// fault. The operation rolled back with no partial state change.
	ErrStorageFailure = errors.New("storage failure")

	// ErrRateUnavailable is returned when the reference-rate retry window
	// is exhausted. Foreign-currency invoices cannot complete without a rate.
	ErrRateUnavailable = errors.New("exchange rate unavailable")

	// ErrInvalidCorrectionTarget is returned when a correction is attempted
	// against anything other than an uncorrected original invoice.
	ErrInvalidCorrectionTarget = errors.New("correction target is not an original invoice")

	// ErrDuplicateInvoice is returned when an order already has an invoice.
	ErrDuplicateInvoice = errors.New("order already invoiced")

	// ErrNotFound is returned for an unknown invoice or order id.
	ErrNotFound = errors.New("not found")
)

// ValidationError carries the field-level detail behind ErrValidationFailed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrValidationFailed, e.Field, e.Message)
}

// Unwrap makes errors.Is(err, ErrValidationFailed) hold for field errors.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a field-level validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
