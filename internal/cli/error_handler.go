package cli

import (
	"fmt"

	"deepwork/internal/errors"
	"deepwork/internal/validation"
)

// ErrorHandler provides centralized error handling for command handlers
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle provides user-friendly error messages for validation and other errors
func (eh *ErrorHandler) Handle(operation string, err error) error {
	return fmt.Errorf("failed to %s: %w", operation, eh.HandleSimple(err))
}

// HandleSimple provides user-friendly error messages without operation context.
// The original error stays reachable through errors.As.
func (eh *ErrorHandler) HandleSimple(err error) error {
	if err == nil {
		return nil
	}

	// Application errors carry their own user message
	if errors.IsAppError(err) {
		return &userError{message: errors.GetUserMessage(err), cause: err}
	}

	// Bare field validation errors
	if validationErr, ok := validation.AsValidationError(err); ok {
		return &userError{message: validationErr.GetUserFriendlyMessage(), cause: err}
	}

	// Fallback for unknown errors
	return err
}

// IsValidationError checks if an error is a validation error
func (eh *ErrorHandler) IsValidationError(err error) bool {
	return errors.IsValidation(err) || validation.IsValidationError(err)
}

// IsNotFoundError checks if an error is a not found error
func (eh *ErrorHandler) IsNotFoundError(err error) bool {
	return errors.IsNotFound(err)
}

// IsStorageError checks if an error is a storage error
func (eh *ErrorHandler) IsStorageError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeStorage)
}

// GetErrorCode returns the error code for structured errors
func (eh *ErrorHandler) GetErrorCode(err error) string {
	return errors.GetErrorCode(err)
}

// userError replaces an error's text with its user message.
type userError struct {
	message string
	cause   error
}

func (e *userError) Error() string { return e.message }

func (e *userError) Unwrap() error { return e.cause }
