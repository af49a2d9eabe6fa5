// Package shared contains common domain types, errors, and events that are
// used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")

	// Authorization errors
	ErrForbidden = errors.New("forbidden")

	// Persistence errors
	ErrPersistence = errors.New("persistence error")

	// External service errors
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "profile", "matching", "chat"
	Op      string // Operation that failed, e.g., "SendMessage", "Create"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Profile domain errors
var (
	ErrProfileNotFound  = NewDomainError("profile", "Find", ErrNotFound, "profile not found")
	ErrInvalidProfileID = NewDomainError("profile", "Validate", ErrInvalidID, "invalid profile ID")
)

// Matching domain errors
var (
	ErrInvalidScore     = NewDomainError("matching", "Validate", ErrValueOutOfRange, "score must be between 0 and 100")
	ErrSelfMatch        = NewDomainError("matching", "Generate", ErrInvalidInput, "cannot match a user with themselves")
	ErrNoRecommendation = NewDomainError("matching", "Generate", ErrNotFound, "no recommendations above threshold")
)

// Chat domain errors
var (
	ErrSessionNotFound    = NewDomainError("chat", "FindSession", ErrNotFound, "chat session not found")
	ErrMessageNotFound    = NewDomainError("chat", "FindMessage", ErrNotFound, "message not found")
	ErrEmptyMessage       = NewDomainError("chat", "SendMessage", ErrValidation, "message content cannot be empty")
	ErrNotParticipant     = NewDomainError("chat", "SendMessage", ErrForbidden, "sender is not a session participant")
	ErrTooFewParticipants = NewDomainError("chat", "CreateSession", ErrValidation, "a session needs at least two participants")
	ErrUnknownParticipant = NewDomainError("chat", "CreateSession", ErrPersistence, "participant does not resolve to a profile")
)

// Realtime delivery errors
var (
	ErrChannelClosed    = NewDomainError("realtime", "Publish", ErrServiceUnavailable, "broadcast channel is closed")
	ErrSubscriptionDead = NewDomainError("realtime", "Subscribe", ErrServiceUnavailable, "subscription connection dropped")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsForbidden checks if the error is an authorization error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsPersistence checks if the error came from the underlying store.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
