package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches sentinel errors by code and message so that a wrapped copy
// (for example one carrying a cause) still satisfies errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// HasCode reports whether err wraps a DomainError with code.
func HasCode(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeQuotaExceeded    = "QUOTA_EXCEEDED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidToolCategory   = NewDomainError(ErrCodeValidation, "invalid tool category")
	ErrInvalidToolSlug       = NewDomainError(ErrCodeValidation, "invalid tool slug")
	ErrInvalidPreferenceKey  = NewDomainError(ErrCodeValidation, "invalid preference key")
	ErrInvalidPreferenceJSON = NewDomainError(ErrCodeValidation, "preference value must be valid JSON")
	ErrInvalidThreshold      = NewDomainError(ErrCodeValidation, "threshold must be between 0 and 1")
	ErrInvalidSearchLimit    = NewDomainError(ErrCodeValidation, "limit must not be negative")
	ErrInvalidCalculation    = NewDomainError(ErrCodeValidation, "invalid calculator input")
	ErrMissingRequiredField  = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrToolNotFound       = NewDomainError(ErrCodeNotFound, "tool not found")
	ErrAccountNotFound    = NewDomainError(ErrCodeNotFound, "account not found")
	ErrAPIKeyNotFound     = NewDomainError(ErrCodeNotFound, "api key not found")
	ErrPreferenceNotFound = NewDomainError(ErrCodeNotFound, "preference not found")
	ErrSearchLogNotFound  = NewDomainError(ErrCodeNotFound, "search log not found")
)

// Already exists errors
var (
	ErrToolAlreadyExists    = NewDomainError(ErrCodeAlreadyExists, "tool already exists")
	ErrAccountAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "account already exists")
	ErrAPIKeyAlreadyExists  = NewDomainError(ErrCodeAlreadyExists, "api key already exists")
)

// Authorization errors
var (
	ErrAPIKeyRevoked = NewDomainError(ErrCodeUnauthorized, "api key has been revoked")
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid api key")
)

// Quota errors
var (
	ErrQuotaExceeded = NewDomainError(ErrCodeQuotaExceeded, "preference storage quota exceeded")
)

// Operation errors
var (
	ErrToolDisabled         = NewDomainError(ErrCodeInvalidOperation, "tool is disabled")
	ErrStorageOperationFail = NewDomainError(ErrCodeInternalError, "storage operation failed")
)
