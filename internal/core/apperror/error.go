// Package apperror provides structured error handling for the admin API.
// All engine and business errors must use AppError for consistent responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced by the listing engine and its collaborators.
const (
	// Infrastructure errors (5xx)
	CodeInternal   = "INTERNAL_ERROR"
	CodeDataStore  = "DATA_STORE_ERROR"
	CodeCacheStore = "CACHE_STORE_ERROR"

	// Validation errors (400)
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnknownOperator = "UNKNOWN_OPERATOR"

	// Engine structural errors
	CodeUnknownEntity     = "UNKNOWN_ENTITY"      // 404
	CodeInvalidBulkAction = "INVALID_BULK_ACTION" // 422

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict = "CONFLICT"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field names, tokens, ids)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewUnknownEntity is returned when a request references an entity type
// that was never registered with the filter registry.
func NewUnknownEntity(entity string) *AppError {
	return &AppError{
		Code:       CodeUnknownEntity,
		Message:    fmt.Sprintf("unknown entity type %q", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity},
	}
}

// NewUnknownOperator is returned when an operator token in filter position
// cannot be mapped at all. Unrecognized filter *fields* are not an error;
// they are silently dropped.
func NewUnknownOperator(token string) *AppError {
	return &AppError{
		Code:       CodeUnknownOperator,
		Message:    fmt.Sprintf("unknown filter operator %q", token),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"operator": token},
	}
}

// NewInvalidBulkAction is returned when a bulk action is not supported
// for the entity type.
func NewInvalidBulkAction(entity, action string) *AppError {
	return &AppError{
		Code:       CodeInvalidBulkAction,
		Message:    fmt.Sprintf("bulk action %q is not supported for %q", action, entity),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"entity": entity, "action": action},
	}
}

// NewDataStore wraps a failure from the underlying query execution.
// Propagated unchanged to the caller, never retried inside the engine.
func NewDataStore(err error) *AppError {
	return &AppError{
		Code:       CodeDataStore,
		Message:    "data store failure",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewCacheStore wraps a cache read/write failure. Callers must degrade to
// direct computation rather than failing the request.
func NewCacheStore(err error) *AppError {
	return &AppError{
		Code:       CodeCacheStore,
		Message:    "cache store failure",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsCode checks if error carries the given machine code.
func IsCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

// IsUnknownEntity checks if error is CodeUnknownEntity
func IsUnknownEntity(err error) bool {
	return IsCode(err, CodeUnknownEntity)
}
