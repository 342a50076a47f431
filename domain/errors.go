package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrPolicyViolation = errors.New("policy violation")
	ErrStoreFailure    = errors.New("store failure")
)

// ValidationError carries every field-level problem found in one request.
type ValidationError struct {
	Messages []string
}

func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ConflictError is returned when a non-terminal return already covers the
// same order line, or a state transition is not allowed.
type ConflictError struct {
	Message          string
	ExistingReturnID uint
	ExistingStatus   ReturnStatus
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// PolicyError rejects a customer whose trust status forbids the action. The
// message never includes the numeric score.
type PolicyError struct {
	Status ScoreStatus
}

func (e *PolicyError) Error() string {
	return "account suspended, contact support"
}

func (e *PolicyError) Unwrap() error {
	return ErrPolicyViolation
}

func NotFound(what string) error {
	return fmt.Errorf("%w: %s not found", ErrNotFound, what)
}

func Forbidden(msg string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, msg)
}

func Conflict(msg string) error {
	return &ConflictError{Message: msg}
}

// StoreFailure wraps a persistence error.
func StoreFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreFailure, op, err)
}

// IsRejection reports whether err is an expected refusal of the request
// rather than a failure of the system.
func IsRejection(err error) bool {
	for _, target := range []error{ErrValidation, ErrUnauthorized, ErrForbidden, ErrNotFound, ErrConflict, ErrPolicyViolation} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
