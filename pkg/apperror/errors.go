package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Reason is a stable machine-readable error code returned to clients
type Reason string

const (
	ReasonNotFound                   Reason = "NOT_FOUND"
	ReasonValidationFailed           Reason = "VALIDATION_FAILED"
	ReasonInvalidInvoiceNumber       Reason = "INVALID_INVOICE_NUMBER"
	ReasonNonSequentialInvoiceNumber Reason = "NON_SEQUENTIAL_INVOICE_NUMBER"
	ReasonInvoiceNumberAlreadyUsed   Reason = "INVOICE_NUMBER_ALREADY_USED"
	ReasonInvalidAmount              Reason = "INVALID_AMOUNT"
	ReasonNoValidChallans            Reason = "NO_VALID_CHALLANS"
	ReasonDuplicateOpeningBalance    Reason = "DUPLICATE_OPENING_BALANCE"
	ReasonDuplicate                  Reason = "DUPLICATE"
	ReasonInvalidState               Reason = "INVALID_STATE"
	ReasonUnauthorized               Reason = "UNAUTHORIZED"
	ReasonForbidden                  Reason = "FORBIDDEN"
	ReasonBadRequest                 Reason = "BAD_REQUEST"
	ReasonConflict                   Reason = "CONFLICT"
	ReasonInternal                   Reason = "INTERNAL"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int            `json:"code"`
	Reason  Reason         `json:"reason,omitempty"`
	Message string         `json:"message"`
	Errors  []FieldError   `json:"errors,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches two AppErrors by reason, so errors.Is works against the sentinels below
// even when the message or details differ.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if e.Reason == "" || t.Reason == "" {
		return e == t
	}
	return e.Reason == t.Reason
}

// WithDetail returns a copy of the error carrying an extra detail entry
func (e *AppError) WithDetail(key string, value any) *AppError {
	cp := *e
	cp.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[key] = value
	return &cp
}

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Reason: ReasonNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Reason: ReasonUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Reason: ReasonForbidden, Message: "Forbidden"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Reason: ReasonBadRequest, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Reason: ReasonInternal, Message: "Internal server error"}
	ErrConflict           = &AppError{Code: http.StatusConflict, Reason: ReasonConflict, Message: "Resource already exists"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Reason: ReasonUnauthorized, Message: "Invalid email or password"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Reason: ReasonUnauthorized, Message: "Invalid token"}
	ErrInvalidOTP         = &AppError{Code: http.StatusUnauthorized, Reason: ReasonUnauthorized, Message: "Invalid or expired OTP"}

	// Billing errors
	ErrInvalidInvoiceNumber       = &AppError{Code: http.StatusBadRequest, Reason: ReasonInvalidInvoiceNumber, Message: "Invoice number must be a positive integer"}
	ErrNonSequentialInvoiceNumber = &AppError{Code: http.StatusBadRequest, Reason: ReasonNonSequentialInvoiceNumber, Message: "Invoice number is out of sequence"}
	ErrInvoiceNumberAlreadyUsed   = &AppError{Code: http.StatusConflict, Reason: ReasonInvoiceNumberAlreadyUsed, Message: "Invoice number already used"}
	ErrInvalidAmount              = &AppError{Code: http.StatusBadRequest, Reason: ReasonInvalidAmount, Message: "Amount must be greater than zero"}
	ErrNoValidChallans            = &AppError{Code: http.StatusBadRequest, Reason: ReasonNoValidChallans, Message: "No valid challans found for billing"}
	ErrDuplicateOpeningBalance    = &AppError{Code: http.StatusConflict, Reason: ReasonDuplicateOpeningBalance, Message: "Opening balance already exists for this method and financial year"}
	ErrDuplicate                  = &AppError{Code: http.StatusConflict, Reason: ReasonDuplicate, Message: "Duplicate record"}
	ErrInvalidState               = &AppError{Code: http.StatusUnprocessableEntity, Reason: ReasonInvalidState, Message: "Operation not allowed in current state"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Reason:  ReasonValidationFailed,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewFieldError is a shorthand for a validation error on a single field
func NewFieldError(field, message string) *AppError {
	return NewValidationError([]FieldError{{Field: field, Message: message}})
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Reason:  ReasonNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Reason:  ReasonConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Reason:  ReasonBadRequest,
		Message: message,
	}
}

// NewStateError creates an invalid state error with a custom message
func NewStateError(format string, args ...any) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Reason:  ReasonInvalidState,
		Message: fmt.Sprintf(format, args...),
	}
}

// NonSequentialInvoiceNumber reports the number the sequencer expected instead
func NonSequentialInvoiceNumber(expectedNext int64) *AppError {
	err := ErrNonSequentialInvoiceNumber.WithDetail("expectedNext", expectedNext)
	err.Message = fmt.Sprintf("Invoice number is out of sequence, expected %d", expectedNext)
	return err
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Reason:  ReasonInternal,
		Message: err.Error(),
	}
}
