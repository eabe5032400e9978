// Package errors defines the typed error taxonomy shared by every layer.
// All failures are local, recoverable-by-caller values; the HTTP layer maps
// each type to a distinct status code and user-facing message.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType categorizes an error for callers that need to branch on kind.
type ErrorType string

const (
	// Domain errors
	ErrorTypeValidation        ErrorType = "VALIDATION"
	ErrorTypeNotFound          ErrorType = "NOT_FOUND"
	ErrorTypeInvalidPayload    ErrorType = "INVALID_PAYLOAD"
	ErrorTypeSelfLoop          ErrorType = "SELF_LOOP"
	ErrorTypeDuplicateEdge     ErrorType = "DUPLICATE_EDGE"
	ErrorTypeInvalidTransition ErrorType = "INVALID_TRANSITION"
	ErrorTypeConflict          ErrorType = "CONFLICT"

	// Application and infrastructure errors
	ErrorTypeInternal ErrorType = "INTERNAL"
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// AppError is the application-wide error type.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to reach the cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails attaches structured detail fields to the error.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// Constructor functions for each error type.

// NewValidationError reports a malformed snapshot or request.
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFoundError reports a referenced node, edge, or record that is absent.
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewInvalidPayloadError reports a payload merge that breaks variant invariants.
func NewInvalidPayloadError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidPayload,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewSelfLoopError reports an edge whose source and target are the same node.
func NewSelfLoopError(nodeID string) *AppError {
	return &AppError{
		Type:       ErrorTypeSelfLoop,
		Message:    fmt.Sprintf("edge cannot connect node %s to itself", nodeID),
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewDuplicateEdgeError reports a second edge for an ordered (source, target) pair.
func NewDuplicateEdgeError(sourceID, targetID string) *AppError {
	return &AppError{
		Type:       ErrorTypeDuplicateEdge,
		Message:    fmt.Sprintf("edge from %s to %s already exists", sourceID, targetID),
		HTTPStatus: http.StatusConflict,
	}
}

// NewInvalidTransitionError reports a lifecycle transition not permitted from
// the node's current state.
func NewInvalidTransitionError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidTransition,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewConflictError reports a uniqueness or concurrent-modification conflict.
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewExternalError wraps a failure from an external collaborator (AI
// provider, scraping API, storage).
func NewExternalError(message string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Message:    message,
		Cause:      err,
		HTTPStatus: http.StatusBadGateway,
	}
}

// Wrap adds context to an error, preserving its type when it is an AppError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Type:       appErr.Type,
			Message:    fmt.Sprintf("%s: %s", message, appErr.Message),
			Details:    appErr.Details,
			Cause:      appErr.Cause,
			HTTPStatus: appErr.HTTPStatus,
		}
	}

	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// isType reports whether err is an AppError of the given type.
func isType(err error, t ErrorType) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Type == t
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool { return isType(err, ErrorTypeValidation) }

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool { return isType(err, ErrorTypeNotFound) }

// IsInvalidPayload checks if an error is an invalid payload error.
func IsInvalidPayload(err error) bool { return isType(err, ErrorTypeInvalidPayload) }

// IsSelfLoop checks if an error is a self-loop error.
func IsSelfLoop(err error) bool { return isType(err, ErrorTypeSelfLoop) }

// IsDuplicateEdge checks if an error is a duplicate edge error.
func IsDuplicateEdge(err error) bool { return isType(err, ErrorTypeDuplicateEdge) }

// IsInvalidTransition checks if an error is an invalid transition error.
func IsInvalidTransition(err error) bool { return isType(err, ErrorTypeInvalidTransition) }

// IsConflict checks if an error is a conflict error.
func IsConflict(err error) bool { return isType(err, ErrorTypeConflict) }

// IsInternal checks if an error is an internal error.
func IsInternal(err error) bool { return isType(err, ErrorTypeInternal) }

// IsExternal checks if an error is an external collaborator error.
func IsExternal(err error) bool { return isType(err, ErrorTypeExternal) }

// HTTPStatusOf returns the HTTP status for an error, defaulting to 500.
func HTTPStatusOf(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
