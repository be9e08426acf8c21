// Package apperr provides standardized domain error types for the application.
// Domain services return these typed errors, and the HTTP layer middleware
// automatically maps them to appropriate HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindNotFound indicates a resource was not found.
	KindNotFound
	// KindValidation indicates invalid input data.
	KindValidation
	// KindConflict indicates a conflict with existing state (e.g., duplicate).
	KindConflict
	// KindForbidden indicates the action is not allowed for the user.
	KindForbidden
	// KindUnauthorized indicates authentication is required or failed.
	KindUnauthorized
	// KindBadRequest indicates a malformed or invalid request.
	KindBadRequest
	// KindInternal indicates an unexpected internal error.
	KindInternal
	// KindInvalidValueObject indicates a value object invariant was violated at construction.
	KindInvalidValueObject
	// KindInvalidInput indicates an empty, too short/long or malformed credential field.
	KindInvalidInput
	// KindInvalidTokenFormat indicates a token that is not shaped like a JWT.
	KindInvalidTokenFormat
	// KindTokenNotProvided indicates a Bearer header without a usable token.
	KindTokenNotProvided
	// KindInvalidAuthScheme indicates an Authorization header with another scheme.
	KindInvalidAuthScheme
	// KindMissingAuthorization indicates the Authorization header is absent.
	KindMissingAuthorization
	// KindValidationFailed indicates one or more field validators returned false.
	KindValidationFailed
	// KindTooManyRequests indicates the caller is temporarily locked out.
	KindTooManyRequests
)

var kindCodes = map[Kind]string{
	KindUnknown:              "Unknown",
	KindNotFound:             "NotFound",
	KindValidation:           "Validation",
	KindConflict:             "Conflict",
	KindForbidden:            "Forbidden",
	KindUnauthorized:         "Unauthorized",
	KindBadRequest:           "BadRequest",
	KindInternal:             "Internal",
	KindInvalidValueObject:   "InvalidValueObject",
	KindInvalidInput:         "InvalidInput",
	KindInvalidTokenFormat:   "InvalidTokenFormat",
	KindTokenNotProvided:     "TokenNotProvided",
	KindInvalidAuthScheme:    "InvalidAuthScheme",
	KindMissingAuthorization: "MissingAuthorization",
	KindValidationFailed:     "ValidationFailed",
	KindTooManyRequests:      "TooManyRequests",
}

// String returns the stable code of the kind, e.g. "InvalidValueObject".
func (k Kind) String() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return kindCodes[KindUnknown]
}

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	Op      string      // Operation that failed (optional)
	Field   string      // Field that failed validation (optional)
	Err     error       // Underlying error (optional)
	Details interface{} // Additional details for response (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the stable string code of the error kind.
func (e *Error) Code() string {
	return e.Kind.String()
}

// HTTPStatus returns the appropriate HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindBadRequest, KindInvalidValueObject, KindInvalidInput, KindValidationFailed:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized, KindInvalidTokenFormat, KindTokenNotProvided, KindInvalidAuthScheme, KindMissingAuthorization:
		return http.StatusUnauthorized
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp returns the error with the operation set.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithField returns the error with the failing field set.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithDetails returns the error with additional details.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// Convenience constructors for common error types.

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Conflict creates a conflict error (e.g., duplicate resource).
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Forbidden creates a forbidden error.
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

// BadRequest creates a bad request error.
func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

// Internal creates an internal server error.
func Internal(message string) *Error {
	return New(KindInternal, message)
}

// InvalidValueObject creates a value object construction error.
func InvalidValueObject(message string) *Error {
	return New(KindInvalidValueObject, message)
}

// InvalidInput creates a credential input error.
func InvalidInput(message string) *Error {
	return New(KindInvalidInput, message)
}

// ValidationFailed creates a field-level validation error.
func ValidationFailed(field, message string) *Error {
	return New(KindValidationFailed, message).WithField(field)
}

// TooManyRequests creates a lockout error.
func TooManyRequests(message string) *Error {
	return New(KindTooManyRequests, message)
}

// GetKind extracts the error kind from an error, following wrapped errors.
// Returns KindUnknown if no *Error is found in the chain.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is checks if err is an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
