package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors, checked with errors.Is.
var (
	// ErrNotFound is returned when a claim, gift type or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when an operation is illegal for the
	// current claim status.
	ErrInvalidState = errors.New("invalid claim state")

	// ErrAlreadyResolved is returned when a claim has already reached a
	// terminal status, including when a concurrent resolve won the race.
	ErrAlreadyResolved = errors.New("claim already resolved")

	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInsufficientCredit    = errors.New("insufficient credit")

	// ErrDuplicateTransactionID is returned when a claim with the same
	// transaction id already exists. Retried creates land here.
	ErrDuplicateTransactionID = errors.New("duplicate transaction id")

	ErrValidation = errors.New("validation failed")

	// ErrConcurrentModification is returned when a guarded ledger update
	// finds the row changed underneath it.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// InsufficientInventoryError describes a rejected inventory debit.
type InsufficientInventoryError struct {
	UserID     int64
	GiftTypeID int64
	Available  int
	Requested  int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory: have %d, need %d", e.Available, e.Requested)
}

func (e *InsufficientInventoryError) Unwrap() error {
	return ErrInsufficientInventory
}

// InsufficientCreditError describes a rejected credit spend.
type InsufficientCreditError struct {
	UserID    int64
	Category  string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientCreditError) Error() string {
	return fmt.Sprintf("insufficient credit in %s: have %s, need %s",
		e.Category, e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *InsufficientCreditError) Unwrap() error {
	return ErrInsufficientCredit
}

// ValidationError describes rejected input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// StateError describes an operation attempted on a claim in the wrong status.
type StateError struct {
	TransactionID string
	Status        ClaimStatus
	Op            string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s claim %s in status %s", e.Op, e.TransactionID, e.Status)
}

func (e *StateError) Unwrap() error {
	return ErrInvalidState
}

// IsClientError returns true if the error is due to invalid client input or
// a rejected business rule rather than an infrastructure failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrAlreadyResolved) ||
		errors.Is(err, ErrInsufficientInventory) ||
		errors.Is(err, ErrInsufficientCredit) ||
		errors.Is(err, ErrDuplicateTransactionID) ||
		errors.Is(err, ErrValidation)
}
