// Package errors provides standardized domain errors with codes for the hunt API.
//
// Usage:
//
//	// In services - return typed errors
//	if distance > radius {
//	    return errors.OutOfRange(distance, radius)
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrTokenExhausted) {
//	    ...
//	}
//
//	// Or use the Code directly for switch statements
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeOutOfRange:
//	        ...
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Is and As are re-exported so callers need only one errors import.
var (
	Is = errors.Is
	As = errors.As
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeInactive           Code = "INACTIVE"
	CodeOutOfRange         Code = "OUT_OF_RANGE"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeTokenExhausted     Code = "TOKEN_EXHAUSTED"
	CodeDuplicateEmail     Code = "DUPLICATE_EMAIL"
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeValidation         Code = "VALIDATION"
	CodeConflict           Code = "CONFLICT"
	CodeAlreadyConfigured  Code = "ALREADY_CONFIGURED"
	CodeSetupRequired      Code = "SETUP_REQUIRED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeInternal           Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound, CodeInactive:
		return http.StatusNotFound
	case CodeOutOfRange:
		return http.StatusUnprocessableEntity
	case CodeTokenExpired, CodeTokenExhausted:
		return http.StatusGone
	case CodeDuplicateEmail, CodeConflict, CodeAlreadyConfigured:
		return http.StatusConflict
	case CodeUnauthenticated, CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeForbidden, CodeSetupRequired:
		return http.StatusForbidden
	case CodeValidation:
		return http.StatusBadRequest
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrInactive           = &Error{Code: CodeInactive, Message: "inactive"}
	ErrOutOfRange         = &Error{Code: CodeOutOfRange, Message: "out of range"}
	ErrTokenExpired       = &Error{Code: CodeTokenExpired, Message: "token expired"}
	ErrTokenExhausted     = &Error{Code: CodeTokenExhausted, Message: "token exhausted"}
	ErrDuplicateEmail     = &Error{Code: CodeDuplicateEmail, Message: "email already registered"}
	ErrUnauthenticated    = &Error{Code: CodeUnauthenticated, Message: "authentication required"}
	ErrForbidden          = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict           = &Error{Code: CodeConflict, Message: "conflict"}
	ErrAlreadyConfigured  = &Error{Code: CodeAlreadyConfigured, Message: "already configured"}
	ErrSetupRequired      = &Error{Code: CodeSetupRequired, Message: "setup required"}
	ErrInvalidCredentials = &Error{Code: CodeInvalidCredentials, Message: "invalid credentials"}
	ErrRateLimited        = &Error{Code: CodeRateLimited, Message: "too many requests"}
	ErrInternal           = &Error{Code: CodeInternal, Message: "internal error"}
)

func newErr(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// NotFound reports a missing event, cache, invite or setting.
func NotFound(msg string) *Error { return newErr(CodeNotFound, msg) }

// Inactive reports an event or cache that exists but is switched off.
func Inactive(msg string) *Error { return newErr(CodeInactive, msg) }

// OutOfRangeDetails is attached to OUT_OF_RANGE errors so clients can show
// how far away the player was.
type OutOfRangeDetails struct {
	DistanceMeters float64 `json:"distance_meters"`
	RadiusMeters   float64 `json:"radius_meters"`
}

// OutOfRange rejects a claim made from too far away.
func OutOfRange(distanceMeters, radiusMeters float64) *Error {
	err := newErr(CodeOutOfRange, fmt.Sprintf("too far away to claim (%.1fm, allowed %.1fm)", distanceMeters, radiusMeters))
	err.Details = OutOfRangeDetails{DistanceMeters: distanceMeters, RadiusMeters: radiusMeters}
	return err
}

func TokenExpired(msg string) *Error       { return newErr(CodeTokenExpired, msg) }
func TokenExhausted(msg string) *Error     { return newErr(CodeTokenExhausted, msg) }
func DuplicateEmail(msg string) *Error     { return newErr(CodeDuplicateEmail, msg) }
func Unauthenticated(msg string) *Error    { return newErr(CodeUnauthenticated, msg) }
func Forbidden(msg string) *Error          { return newErr(CodeForbidden, msg) }
func Conflict(msg string) *Error           { return newErr(CodeConflict, msg) }
func AlreadyConfigured(msg string) *Error  { return newErr(CodeAlreadyConfigured, msg) }
func SetupRequired(msg string) *Error      { return newErr(CodeSetupRequired, msg) }
func InvalidCredentials(msg string) *Error { return newErr(CodeInvalidCredentials, msg) }
func RateLimited(msg string) *Error        { return newErr(CodeRateLimited, msg) }
func Internal(msg string) *Error           { return newErr(CodeInternal, msg) }

// Validation and Validationf report malformed input.
func Validation(msg string) *Error { return newErr(CodeValidation, msg) }

func Validationf(format string, args ...any) *Error {
	return newErr(CodeValidation, fmt.Sprintf(format, args...))
}

// ValidationWithDetails attaches per-field messages, keyed by field name.
func ValidationWithDetails(msg string, details any) *Error {
	err := newErr(CodeValidation, msg)
	err.Details = details
	return err
}

// Wrap tags an arbitrary error with a code.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}
