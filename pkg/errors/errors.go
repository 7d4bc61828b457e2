package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Transport and server errors
	ErrorTypeNetwork         ErrorType = "NETWORK"
	ErrorTypeServerRejection ErrorType = "SERVER_REJECTION"
	ErrorTypeUnauthorized    ErrorType = "UNAUTHORIZED"
	ErrorTypeUnavailable     ErrorType = "UNAVAILABLE"

	// View errors
	ErrorTypeTemplateLoad ErrorType = "TEMPLATE_LOAD"
	ErrorTypeRender       ErrorType = "RENDER"

	// Client-side errors
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeInternal   ErrorType = "INTERNAL"
)

// AppError represents a client error with a kind the UI knows how to present.
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Status  int       `json:"status,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// Constructor functions for common error types

// NewNetworkError creates a network failure: the request layer could not complete.
func NewNetworkError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeNetwork,
		Message: message,
		Cause:   err,
	}
}

// NewServerRejection creates an error for a non-success response.
// detail is the server supplied message; when empty a status based message is used.
func NewServerRejection(status int, detail string) *AppError {
	if detail == "" {
		detail = fmt.Sprintf("HTTP error! status: %d", status)
	}
	errType := ErrorTypeServerRejection
	if status == http.StatusUnauthorized {
		errType = ErrorTypeUnauthorized
	}
	return &AppError{
		Type:    errType,
		Message: detail,
		Status:  status,
	}
}

// NewUnavailableError is returned when calls are short-circuited.
func NewUnavailableError(service string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnavailable,
		Message: fmt.Sprintf("service '%s' is temporarily unavailable", service),
		Status:  http.StatusServiceUnavailable,
	}
}

// NewTemplateLoadError creates an error for a view template that could not be fetched.
func NewTemplateLoadError(template string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeTemplateLoad,
		Message: fmt.Sprintf("failed to load template %s", template),
		Cause:   err,
	}
}

// NewRenderError creates a rich-content rendering error
func NewRenderError(err error) *AppError {
	return &AppError{
		Type:    ErrorTypeRender,
		Message: "failed to render content",
		Cause:   err,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
	}
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNetwork checks if an error is a network failure
func IsNetwork(err error) bool {
	return IsType(err, ErrorTypeNetwork)
}

// IsServerRejection checks if the server rejected the request, including 401s.
func IsServerRejection(err error) bool {
	return IsType(err, ErrorTypeServerRejection) || IsType(err, ErrorTypeUnauthorized)
}

// IsUnauthorized checks if an error is an unauthorized error
func IsUnauthorized(err error) bool {
	return IsType(err, ErrorTypeUnauthorized)
}

// IsTemplateLoad checks if an error is a template load failure
func IsTemplateLoad(err error) bool {
	return IsType(err, ErrorTypeTemplateLoad)
}

// IsRender checks if an error is a rendering failure
func IsRender(err error) bool {
	return IsType(err, ErrorTypeRender)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, add context to message
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}

	// Otherwise create a new internal error
	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
