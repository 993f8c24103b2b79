package errors

import stderrors "errors"

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Resolution errors
const (
	// ErrCodeInvalidType indicates a type descriptor that cannot build instances.
	ErrCodeInvalidType ErrorCode = "INVALID_TYPE"
	// ErrCodeInvalidKey indicates a key that cannot be compared for identity.
	ErrCodeInvalidKey ErrorCode = "INVALID_KEY"
	// ErrCodeTypeMismatch indicates a resolved instance of an unexpected type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
	// ErrCodeResolutionFailed indicates a resolution that could not complete.
	ErrCodeResolutionFailed ErrorCode = "RESOLUTION_FAILED"
)

// Metadata and configuration errors
const (
	// ErrCodeValidationFailed indicates a value failed its registered constraints.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	// ErrCodeInvalidConfig indicates configuration that failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err is, or wraps, an AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
