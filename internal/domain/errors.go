package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing record.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals a malformed rule, profile or request. Never retried.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized signals private-scope access without a bound tenant identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrStoreUnavailable signals a transient backing-store failure.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrScoringUnavailable signals a scoring failure for a single record.
	ErrScoringUnavailable = errors.New("scoring unavailable")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
)

// FieldError wraps ErrValidation with the offending field name.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

// NewFieldError creates a validation error for a single field.
func NewFieldError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
