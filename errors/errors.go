package errors

import (
	"fmt"
)

// AppError is the error type for failures that originate inside this module.
// Errors returned by user constructors and user containers are never wrapped
// in an AppError; they reach the caller as the same value.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Constructors ---

// InvalidType reports a type descriptor that cannot build instances.
func InvalidType(typ string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidType,
		Message: fmt.Sprintf("cannot construct %s: %s", typ, reason),
		Details: map[string]any{"type": typ},
	}
}

// InvalidKey reports a lookup key that is nil or cannot be compared for identity.
func InvalidKey(key any) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidKey,
		Message: fmt.Sprintf("key of type %T cannot be used as a container key", key),
		Details: map[string]any{"key_type": fmt.Sprintf("%T", key)},
	}
}

// TypeMismatch reports a resolved instance that is not of the requested type.
func TypeMismatch(key any, got any, want string) *AppError {
	return &AppError{
		Code:    ErrCodeTypeMismatch,
		Message: fmt.Sprintf("instance for %v is %T, expected %s", key, got, want),
		Details: map[string]any{"got": fmt.Sprintf("%T", got), "want": want},
	}
}

// ResolutionFailed wraps a resolution error for callers that must report it
// through a single error code.
func ResolutionFailed(key any, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeResolutionFailed,
		Message: fmt.Sprintf("failed to resolve %v", key),
		Cause:   cause,
	}
}

// Validation creates a new AppError for failed constraint checks.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidationFailed, Message: message}
}

// InvalidConfig creates a new AppError for configuration that failed validation.
func InvalidConfig(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code:    ErrCodeInvalidConfig,
		Message: fmt.Sprintf("invalid configuration: %s", reason),
		Details: details,
	}
}
