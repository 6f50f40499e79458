package httpx

import (
	"fmt"
	"net/http"
)

// Business error codes
const (
	// Success
	CodeSuccess = 0

	// Parameter errors (2000-2099)
	CodeParamInvalid = 2002 // Parameter format error

	// Resource/Business errors (3000-3999)
	CodeNotFound         = 3001 // Resource not found
	CodeCompositionError = 3101 // Entities cannot be rendered
	CodeConfigRejected   = 3102 // nginx refused the candidate

	// System errors (5000-5999)
	CodeInternalError   = 5001 // Internal service error
	CodeDatabaseError   = 5002 // Database error
	CodeExternalError   = 5003 // External dependency failure
	CodeFilesystemError = 5004 // Writing derived files failed
	CodeUnavailable     = 5030 // Health checks failing
)

// AppError represents an application error with HTTP status and business code
type AppError struct {
	HTTPStatus int    // HTTP status code
	Code       int    // Business error code
	Message    string // User-facing error message
	Err        error  // Internal error (for logging only, not returned to client)
	Data       any    // Additional data (for detailed error information)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("code=%d, message=%s, err=%v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("code=%d, message=%s", e.Code, e.Message)
}

// Unwrap exposes the internal error to errors.Is / errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithData adds additional data to the error
func (e *AppError) WithData(data any) *AppError {
	e.Data = data
	return e
}

// NewAppError creates a new AppError
func NewAppError(httpStatus, code int, message string, err error) *AppError {
	return &AppError{
		HTTPStatus: httpStatus,
		Code:       code,
		Message:    message,
		Err:        err,
	}
}

func orMessage(message, def string) string {
	if message == "" {
		return def
	}
	return message
}

// ErrParamInvalid creates a 400 parameter invalid error
func ErrParamInvalid(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeParamInvalid, orMessage(message, "parameter format error"), nil)
}

// ErrNotFound creates a 404 not found error
func ErrNotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, orMessage(message, "resource not found"), nil)
}

// ErrCompositionError creates a 422 error for entities that cannot be rendered
func ErrCompositionError(message string, err error) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, CodeCompositionError, orMessage(message, "configuration cannot be composed"), err)
}

// ErrConfigRejected creates a 422 error; diagnostics travel in Data
func ErrConfigRejected(diagnostics string, err error) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, CodeConfigRejected, "configuration rejected by nginx", err).
		WithData(map[string]string{"diagnostics": diagnostics})
}

// ErrInternalError creates a 500 internal error
func ErrInternalError(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, orMessage(message, "internal error"), err)
}

// ErrDatabaseError creates a 500 database error
func ErrDatabaseError(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeDatabaseError, orMessage(message, "database error"), err)
}

// ErrExternalError creates a 502 external dependency error
func ErrExternalError(message string, err error) *AppError {
	return NewAppError(http.StatusBadGateway, CodeExternalError, orMessage(message, "external dependency failure"), err)
}

// ErrFilesystemError creates a 500 error for failed file writes
func ErrFilesystemError(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeFilesystemError, orMessage(message, "filesystem error"), err)
}

// ErrUnavailable creates a 503 error
func ErrUnavailable(message string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, CodeUnavailable, orMessage(message, "service unavailable"), nil)
}
