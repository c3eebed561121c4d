package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a business rule violation
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped sentinels compare equal
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// ConcurrencyError is raised when an aggregate was changed by someone else
// between load and save. It unwraps to the storage error that detected it.
type ConcurrencyError struct {
	AggregateType string
	AggregateID   string
	Expected      int
	Err           error
}

func (e *ConcurrencyError) Error() string {
	msg := fmt.Sprintf("%s %s was modified concurrently (expected version %d)", e.AggregateType, e.AggregateID, e.Expected)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConcurrencyError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrConcurrencyConflict) match
func (e *ConcurrencyError) Is(target error) bool {
	return target == ErrConcurrencyConflict
}

// NewConcurrencyError builds a ConcurrencyError for the given aggregate
func NewConcurrencyError(aggregateType, aggregateID string, expected int, cause error) *ConcurrencyError {
	return &ConcurrencyError{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Expected:      expected,
		Err:           cause,
	}
}

// IsConcurrencyError reports whether err is, or wraps, a concurrency conflict
func IsConcurrencyError(err error) bool {
	var ce *ConcurrencyError
	return errors.As(err, &ce) || errors.Is(err, ErrConcurrencyConflict)
}
