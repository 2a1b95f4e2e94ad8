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

// ErrConflict indicates that the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("operation conflicts with resource state")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrorCategory is the stable category attached to every engine error.
type ErrorCategory string

const (
	CategoryTransaction ErrorCategory = "TXN" // unbalanced entries, bad state transitions
	CategoryAccount     ErrorCategory = "ACC" // inactive account, cross-entity reference
	CategoryBalance     ErrorCategory = "BAL" // cache/ledger mismatch found by recompute
	CategoryPeriod      ErrorCategory = "PRD" // closed period, no period for date
	CategoryValidation  ErrorCategory = "VAL" // non-positive amount, missing field
	CategorySystem      ErrorCategory = "SYS" // rate not found, chain failure, storage failure
)

// Stable error codes. Handlers and callers match on these, never on
// message text.
const (
	CodeUnbalanced       = "TXN0001"
	CodeNotDraft         = "TXN0002"
	CodeNotPosted        = "TXN0003"
	CodeEmptyLineItems   = "TXN0004"
	CodeAlreadyReversed  = "TXN0005"
	CodeInactiveAccount  = "ACC0001"
	CodeCrossEntity      = "ACC0002"
	CodeAccountNotFound  = "ACC0003"
	CodeBalanceMismatch  = "BAL0001"
	CodePeriodClosed     = "PRD0001"
	CodePeriodNotFound   = "PRD0002"
	CodeInvalidAmount    = "VAL0001"
	CodeMissingField     = "VAL0002"
	CodeRateNotFound     = "SYS0001"
	CodeChainBroken      = "SYS0002"
	CodeStorageFailure   = "SYS0003"
	CodeDivisionByZero   = "SYS0004"
	CodeCurrencyInUse    = "VAL0003"
	CodeInvalidKind      = "VAL0004"
	CodeMainSideMismatch = "TXN0006"
)

// AppError wraps an underlying error with a stable category and code.
// Storage-layer errors are never surfaced to callers without being
// wrapped into one of these.
type AppError struct {
	Code     string
	Category ErrorCategory
	Message  string
	Err      error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Category, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Category, e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with the given code, category and message.
func New(code string, category ErrorCategory, message string) *AppError {
	return &AppError{Code: code, Category: category, Message: message}
}

// Wrap creates an AppError around an underlying error.
func Wrap(code string, category ErrorCategory, message string, err error) *AppError {
	return &AppError{Code: code, Category: category, Message: message, Err: err}
}

// NewValidationError returns a validation AppError that also matches
// ErrValidation via errors.Is.
func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeMissingField, Category: CategoryValidation, Message: message, Err: ErrValidation}
}

// NewAppError creates a system-category AppError wrapping err; used by
// the storage layer so repository failures surface with a stable code.
func NewAppError(code string, message string, err error) *AppError {
	return &AppError{Code: code, Category: CategorySystem, Message: message, Err: err}
}

// CodeOf extracts the stable code from err, or "" when err carries none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// CategoryOf extracts the category from err, or "" when err carries none.
func CategoryOf(err error) ErrorCategory {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Category
	}
	return ""
}
