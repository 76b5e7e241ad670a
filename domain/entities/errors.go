package entities

import (
	"errors"
	"fmt"
)

// ValidationError signals bad input. It is never retried; the message is
// safe to show to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a user-facing validation error
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError signals a missing payment or record. The message carries an
// actionable checklist; only the user can retry.
type NotFoundError struct {
	Resource string
	Message  string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Resource + " not found"
}

// NewNotFoundError builds a not-found error for a resource
func NewNotFoundError(resource, format string, args ...any) error {
	return &NotFoundError{Resource: resource, Message: fmt.Sprintf(format, args...)}
}

// ConflictError signals an operation illegal in the current state, such as
// cancelling a deal after a payment claim. Never retried.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NewConflictError builds a conflict error
func NewConflictError(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ChainUnavailableError wraps a transport failure after retries are
// exhausted. The whole operation is safe to retry: no ledger mutation has
// happened when this surfaces.
type ChainUnavailableError struct {
	Op  string
	Err error
}

func (e *ChainUnavailableError) Error() string {
	return fmt.Sprintf("chain unavailable during %s: %v", e.Op, e.Err)
}

func (e *ChainUnavailableError) Unwrap() error { return e.Err }

// NewChainUnavailableError wraps err as a chain transport failure
func NewChainUnavailableError(op string, err error) error {
	return &ChainUnavailableError{Op: op, Err: err}
}

// ReconciliationPendingError records that a wager was verified and booked
// but the payout transfer failed. The engine cannot self-heal this state:
// re-sending risks a double payment, not sending stiffs a winner. It is
// surfaced on the operator queue, never retried automatically.
type ReconciliationPendingError struct {
	JournalID  int64
	TxHash     string
	PayoutNano int64
	Err        error
}

func (e *ReconciliationPendingError) Error() string {
	return fmt.Sprintf("payout of %d nanoton for journal %d failed, manual reconciliation required: %v",
		e.PayoutNano, e.JournalID, e.Err)
}

func (e *ReconciliationPendingError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var v *NotFoundError
	return errors.As(err, &v)
}

// IsConflict reports whether err is a ConflictError
func IsConflict(err error) bool {
	var v *ConflictError
	return errors.As(err, &v)
}

// IsChainUnavailable reports whether err is a ChainUnavailableError
func IsChainUnavailable(err error) bool {
	var v *ChainUnavailableError
	return errors.As(err, &v)
}
