// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies application errors. The provider types cover
// every failure mode of the narrative backend (unreachable, timeout,
// malformed output); validation covers user-facing rejections; busy is
// the re-entrancy guard refusing an overlapping operation.
type ErrorType string

const (
	ErrorTypeValidation          ErrorType = "validation_error"
	ErrorTypeNotFound            ErrorType = "not_found"
	ErrorTypeConflict            ErrorType = "conflict"
	ErrorTypeBusy                ErrorType = "busy"
	ErrorTypeProviderUnavailable ErrorType = "provider_unavailable"
	ErrorTypeProviderParse       ErrorType = "provider_parse_error"
	ErrorTypeError               ErrorType = "processing_error"
)

// AppError carries a type, a user-presentable message and the wrapped
// cause.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError of the given type.
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

func NewNotFoundError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, originalError)
}

func NewConflictError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeConflict, message, originalError)
}

func NewBusyError(message string) *AppError {
	return NewAppError(ErrorTypeBusy, message, nil)
}

func NewProviderError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeProviderUnavailable, message, originalError)
}

func NewProviderParseError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeProviderParse, message, originalError)
}

// IsValidationError reports whether err is a validation rejection.
func IsValidationError(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

func IsNotFoundError(err error) bool {
	return hasType(err, ErrorTypeNotFound)
}

func IsConflictError(err error) bool {
	return hasType(err, ErrorTypeConflict)
}

func IsBusyError(err error) bool {
	return hasType(err, ErrorTypeBusy)
}

// IsProviderError reports whether err came from the narrative provider,
// whatever the specific failure mode.
func IsProviderError(err error) bool {
	return hasType(err, ErrorTypeProviderUnavailable) || hasType(err, ErrorTypeProviderParse)
}

func hasType(err error, t ErrorType) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == t
	}
	return false
}

func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeConflict:
		return "CONFLICT"
	case ErrorTypeBusy:
		return "SESSION_BUSY"
	case ErrorTypeProviderUnavailable:
		return "PROVIDER_UNAVAILABLE"
	case ErrorTypeProviderParse:
		return "PROVIDER_PARSE_ERROR"
	case ErrorTypeError:
		return "PROCESSING_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}
