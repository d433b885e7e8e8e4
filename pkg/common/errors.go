package common

import (
	"errors"
	"net/http"
)

// Common error types
var (
	ErrNotFound       = errors.New("resource not found")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
	ErrConflict       = errors.New("resource conflict")
	ErrValidation     = errors.New("validation error")
)

// Stable machine-readable error codes returned in ErrorInfo.ErrorCode
const (
	CodeNotFound                       = "NOT_FOUND"
	CodeValidation                     = "VALIDATION_ERROR"
	CodeConflict                       = "CONFLICT"
	CodeInternal                       = "INTERNAL_ERROR"
	CodeTimeout                        = "TIMEOUT"
	CodeVehicleNotAvailable            = "VEHICLE_NOT_AVAILABLE"
	CodeVehicleAlreadyUnderMaintenance = "VEHICLE_ALREADY_UNDER_MAINTENANCE"
	CodeVehicleBusy                    = "VEHICLE_BUSY"
	CodeRentalNotFound                 = "RENTAL_NOT_FOUND"
	CodeRentalAlreadyReturned          = "RENTAL_ALREADY_RETURNED"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code      int    `json:"code"`
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message"`
	Err       error  `json:"-"`

	// Fields holds per-field messages for validation failures.
	Fields map[string]string `json:"fields,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors by their error code, so sentinel AppErrors can be
// compared with errors.Is after being wrapped.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.ErrorCode != "" && e.ErrorCode == t.ErrorCode
}

// NewAppError creates a new AppError
func NewAppError(code int, errorCode, message string, err error) *AppError {
	return &AppError{
		Code:      code,
		ErrorCode: errorCode,
		Message:   message,
		Err:       err,
	}
}

// AsAppError extracts an *AppError from err's chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Common error constructors
func NewNotFoundError(message string, err error) *AppError {
	return &AppError{
		Code:      http.StatusNotFound,
		ErrorCode: CodeNotFound,
		Message:   message,
		Err:       err,
	}
}

func NewBadRequestError(message string, err error) *AppError {
	return &AppError{
		Code:      http.StatusBadRequest,
		ErrorCode: CodeValidation,
		Message:   message,
		Err:       err,
	}
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:      http.StatusInternalServerError,
		ErrorCode: CodeInternal,
		Message:   message,
		Err:       err,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:      http.StatusConflict,
		ErrorCode: CodeConflict,
		Message:   message,
		Err:       ErrConflict,
	}
}

// NewConflictErrorWithCode creates a 409 carrying a domain-specific error code
func NewConflictErrorWithCode(errorCode, message string) *AppError {
	return &AppError{
		Code:      http.StatusConflict,
		ErrorCode: errorCode,
		Message:   message,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:      http.StatusBadRequest,
		ErrorCode: CodeValidation,
		Message:   message,
		Err:       ErrValidation,
	}
}
