// Package apperr defines errors that carry an HTTP status and a stable code.
package apperr

import (
	"fmt"
	"net/http"
)

// Error codes
const (
	CodeNotFound      = "NOT_FOUND"
	CodeValidation    = "VALIDATION_ERROR"
	CodeInternal      = "INTERNAL_ERROR"
	CodeBadRequest    = "BAD_REQUEST"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeConflict      = "CONFLICT"
	CodeUnprocessable = "UNPROCESSABLE"
)

// AppError is an application error with HTTP status code and error code.
type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing resource.
func NotFound(resource string, id any) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// Validation reports an invalid field.
func Validation(field, reason string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
	}
}

// BadRequest reports a malformed request.
func BadRequest(message string) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// Unauthorized reports rejected credentials.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

// Conflict reports a duplicate resource.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Status:  http.StatusConflict,
	}
}

// Unprocessable reports a well-formed request whose content was rejected.
func Unprocessable(message string) *AppError {
	return &AppError{
		Code:    CodeUnprocessable,
		Message: message,
		Status:  http.StatusUnprocessableEntity,
	}
}

// Internal wraps an unexpected failure. The message never exposes err.
func Internal(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}
