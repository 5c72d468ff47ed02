package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrOperationInProgress is returned when a mutating operation is already running on the same manager.
// Callers should retry later rather than immediately.
var ErrOperationInProgress = errors.New("another operation is in progress")

// ErrInvalidAmount indicates a budget amount that is not strictly positive.
var ErrInvalidAmount = fmt.Errorf("%w: enter an amount greater than zero", ErrValidation)

// ErrInvalidThreshold indicates an alert threshold outside (0, amount].
var ErrInvalidThreshold = fmt.Errorf("%w: alert threshold must be greater than zero and not exceed the budget amount", ErrValidation)

// ErrBudgetExistsForCurrentMonth is returned when creating a second budget for a month.
var ErrBudgetExistsForCurrentMonth = fmt.Errorf("%w: a budget already exists for this month", ErrDuplicate)

// ErrNoCurrencyAvailable indicates that no reporting currency is configured.
var ErrNoCurrencyAvailable = errors.New("no reporting currency configured")

// ErrInvalidDate indicates that an anchor month could not be computed.
var ErrInvalidDate = errors.New("invalid budget date")

// ErrRateUnavailable indicates that no exchange rate could be resolved for a currency.
// A conversion must never silently fall back to a 1:1 rate.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// ErrCredentialMissing indicates that the rate provider credential is not configured.
var ErrCredentialMissing = errors.New("rate provider credential not configured")

// ErrFetchFailed indicates that a rate refresh could not be completed.
var ErrFetchFailed = errors.New("exchange rate fetch failed")

// AppError carries a status-like code alongside a message and the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError wraps err with a code and a message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError returns an AppError that matches ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
