package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	// ErrorTypeValidation is a boundary rejection with a user-facing message
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeInvalidInput is a violated precondition inside the classification core
	ErrorTypeInvalidInput ErrorType = "invalid_input"
	// ErrorTypeTransport is a failed remote classification call
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeUpstreamUnavailable means the remote backend is known to be down
	ErrorTypeUpstreamUnavailable ErrorType = "upstream_unavailable"
	// ErrorTypeInternalAnalysis is an unexpected failure inside a classifier
	ErrorTypeInternalAnalysis ErrorType = "internal_analysis"
	ErrorTypeTimeout          ErrorType = "timeout"
	ErrorTypeCanceled         ErrorType = "canceled"
	ErrorTypeNotFound         ErrorType = "not_found"
)

// StatusClientClosedRequest is the non-standard status used when the caller went away
const StatusClientClosedRequest = 499

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
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

func newAppError(t ErrorType, status int, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: status,
		Cause:      cause,
	}
}

// NewValidationError creates a boundary validation error
func NewValidationError(message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, cause)
}

// NewInvalidInputError creates a core precondition error
func NewInvalidInputError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInvalidInput, http.StatusBadRequest, message, cause)
}

// NewTransportError creates a remote call failure
func NewTransportError(message string, cause error) *AppError {
	return newAppError(ErrorTypeTransport, http.StatusBadGateway, message, cause)
}

// NewUpstreamUnavailableError creates an error for a backend that refuses traffic
func NewUpstreamUnavailableError(message string, cause error) *AppError {
	return newAppError(ErrorTypeUpstreamUnavailable, http.StatusServiceUnavailable, message, cause)
}

// NewInternalAnalysisError creates an unexpected classifier failure
func NewInternalAnalysisError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInternalAnalysis, http.StatusInternalServerError, message, cause)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return newAppError(ErrorTypeTimeout, http.StatusGatewayTimeout, message, cause)
}

// NewCanceledError creates an error for work abandoned by its caller
func NewCanceledError(message string, cause error) *AppError {
	return newAppError(ErrorTypeCanceled, StatusClientClosedRequest, message, cause)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, cause)
}

// FromContext converts a context error into a timeout or canceled AppError.
// Returns nil for any other error.
func FromContext(err error, message string) *AppError {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return NewTimeoutError(message, err)
	case stderrors.Is(err, context.Canceled):
		return NewCanceledError(message, err)
	default:
		return nil
	}
}

// AsAppError finds the first AppError in the chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
