// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	// Ledger rule violations (422)
	CodeBusinessRule      = "BUSINESS_RULE_VIOLATION"
	CodeMissingWarehouse  = "MISSING_WAREHOUSE"
	CodeNoWarehouses      = "NO_WAREHOUSES"
	CodeNotManufacturable = "NOT_MANUFACTURABLE"
	CodeInvalidQuantity   = "INVALID_QUANTITY"
	CodeNoOpenShift       = "NO_OPEN_SHIFT"
	CodeNothingToHandOver = "NOTHING_TO_HAND_OVER"

	// One-way flag violations (409)
	CodeAlreadyProcessed = "ALREADY_PROCESSED"
	CodeAlreadyClosed    = "ALREADY_CLOSED"
	CodeShiftAlreadyOpen = "SHIFT_ALREADY_OPEN"
	CodeConflict         = "CONFLICT"
	CodeLockNotObtained  = "LOCK_NOT_OBTAINED"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"
)

// AppError is the standard error type for the ledger.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
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

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewBusinessRule creates a business rule violation error (422)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewAlreadyProcessed is returned when a movement document is applied twice.
func NewAlreadyProcessed(documentID any) *AppError {
	return &AppError{
		Code:       CodeAlreadyProcessed,
		Message:    "Document has already been processed",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"document_id": documentID},
	}
}

// NewAlreadyClosed is returned when a closed shift is modified or closed again.
func NewAlreadyClosed(shiftID any) *AppError {
	return &AppError{
		Code:       CodeAlreadyClosed,
		Message:    "Shift is already closed",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"shift_id": shiftID},
	}
}

// NewMissingWarehouse reports a source or target warehouse required by the document type.
func NewMissingWarehouse(docType, side string) *AppError {
	return &AppError{
		Code:       CodeMissingWarehouse,
		Message:    fmt.Sprintf("%s warehouse is required for %s documents", side, docType),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"doc_type": docType, "side": side},
	}
}

// NewNoWarehouses signals that the system has no warehouse at all.
func NewNoWarehouses() *AppError {
	return &AppError{
		Code:       CodeNoWarehouses,
		Message:    "No warehouse is configured",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewNotManufacturable is returned by production for ingredients without a sub-recipe.
func NewNotManufacturable(ingredientID any) *AppError {
	return &AppError{
		Code:       CodeNotManufacturable,
		Message:    "Ingredient is not a semi-finished good or has no recipe",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"ingredient_id": ingredientID},
	}
}

// NewInvalidQuantity creates an invalid quantity error.
func NewInvalidQuantity(quantity any) *AppError {
	return &AppError{
		Code:       CodeInvalidQuantity,
		Message:    "Quantity must be positive",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"quantity": quantity},
	}
}

// NewNoOpenShift is returned when an operation needs an open register shift.
func NewNoOpenShift() *AppError {
	return &AppError{
		Code:       CodeNoOpenShift,
		Message:    "No open shift",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewShiftAlreadyOpen is returned when opening a shift while one is open.
func NewShiftAlreadyOpen(openShiftID any) *AppError {
	return &AppError{
		Code:       CodeShiftAlreadyOpen,
		Message:    "A shift is already open",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"open_shift_id": openShiftID},
	}
}

// NewNothingToHandOver is returned when none of the named orders carry outstanding cash.
func NewNothingToHandOver(employeeID any) *AppError {
	return &AppError{
		Code:       CodeNothingToHandOver,
		Message:    "No eligible cash orders to hand over",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"employee_id": employeeID},
	}
}

// NewLockNotObtained is returned when the register lock is held elsewhere.
func NewLockNotObtained(key string) *AppError {
	return &AppError{
		Code:       CodeLockNotObtained,
		Message:    "Resource is locked by another operation, retry later",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"key": key},
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

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return Is(err, CodeNotFound)
}
