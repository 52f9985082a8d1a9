package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeNonUniqueKey         ErrorType = "NON_UNIQUE_KEY"
	ErrTypeIrregularTimeBase    ErrorType = "IRREGULAR_TIME_BASE"
	ErrTypeInvalidConfiguration ErrorType = "INVALID_CONFIGURATION"
	ErrTypeParsing              ErrorType = "PARSING"
	ErrTypeStorage              ErrorType = "STORAGE"
	ErrTypeValidation           ErrorType = "VALIDATION"
	ErrTypeNotFound             ErrorType = "NOT_FOUND"
	ErrTypeConfig               ErrorType = "CONFIG"
)

// Sentinels for errors.Is checks. They match any AppError of the same type.
var (
	ErrNonUniqueKey         = &AppError{Type: ErrTypeNonUniqueKey, Message: "key is not unique"}
	ErrIrregularTimeBase    = &AppError{Type: ErrTypeIrregularTimeBase, Message: "irregular time base"}
	ErrInvalidConfiguration = &AppError{Type: ErrTypeInvalidConfiguration, Message: "invalid configuration"}
	ErrParsing              = &AppError{Type: ErrTypeParsing, Message: "parsing failed"}
	ErrValidation           = &AppError{Type: ErrTypeValidation, Message: "validation failed"}
	ErrNotFound             = &AppError{Type: ErrTypeNotFound, Message: "not found"}
	ErrStorage              = &AppError{Type: ErrTypeStorage, Message: "storage failed"}
	ErrConfig               = &AppError{Type: ErrTypeConfig, Message: "configuration error"}
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError of the same type.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewNonUniqueKeyError reports a composite row or column key that must be unique but is not.
func NewNonUniqueKeyError(message string) *AppError {
	return NewAppError(ErrTypeNonUniqueKey, message, nil)
}

// NewIrregularTimeBaseError reports a time sequence that is not an even progression.
func NewIrregularTimeBaseError(message string) *AppError {
	return NewAppError(ErrTypeIrregularTimeBase, message, nil)
}

// NewInvalidConfigurationError reports an unrecognized mode or direction argument.
func NewInvalidConfigurationError(message string) *AppError {
	return NewAppError(ErrTypeInvalidConfiguration, message, nil)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or "".
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}
