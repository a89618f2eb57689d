package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
	// ErrCodeUnavailable marks transient network or backend failures (timeouts, 5xx).
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE"
	// ErrCodePending marks an identity whose backend profile has not been provisioned yet.
	ErrCodePending ErrorCode = "PENDING_PROVISIONING"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	// Fields holds field-level validation messages keyed by field name.
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithFields returns a copy of the error carrying field-level messages.
func (e *Error) WithFields(fields map[string][]string) *Error {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Fields = fields
	return &cp
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrAccountNotFound    = NewError(ErrCodeNotFound, "account not found")
	ErrProfileNotFound    = NewError(ErrCodeNotFound, "profile not found")
	ErrPersonNotFound     = NewError(ErrCodeNotFound, "person not found")
	ErrHistoryNotFound    = NewError(ErrCodeNotFound, "search history entry not found")
	ErrSessionNotFound    = NewError(ErrCodeNotFound, "session not found")
	ErrStorageKeyNotFound = NewError(ErrCodeNotFound, "storage key not found")
	ErrUnauthorized       = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrNotAuthenticated   = NewError(ErrCodeUnauthorized, "not authenticated")
	ErrInvalidCredentials = NewError(ErrCodeUnauthorized, "invalid credentials")
	ErrEmailTaken         = NewError(ErrCodeConflict, "email has already been taken")
	ErrProfilePending     = NewError(ErrCodePending, "profile is still being provisioned")
	ErrInvalidPayload     = NewError(ErrCodeInvalid, "invalid payload")
	ErrBackendUnavailable = NewError(ErrCodeUnavailable, "backend unavailable")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost domain error in the chain, or ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return ErrCodeInternal
}

// MessageOf returns the message of the outermost domain error, falling back when
// the chain carries no domain error or its message is empty.
func MessageOf(err error, fallback string) string {
	var dErr *Error
	if errors.As(err, &dErr) && dErr.Message != "" {
		return dErr.Message
	}
	if err != nil && fallback == "" {
		return err.Error()
	}
	return fallback
}

// FieldsOf returns field-level messages carried by the error chain.
func FieldsOf(err error) map[string][]string {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Fields
	}
	return nil
}
