package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrValidation        = errors.New("validation error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrLocked            = errors.New("locked")
	ErrLockExpired       = errors.New("lock expired")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrPartialFailure    = errors.New("partial failure")
	ErrAlreadyRolledBack = errors.New("already rolled back")
	ErrInvalidState      = errors.New("invalid state")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// LockedError reports that a resource is held by another actor.
// Remaining is the time left on the holder's lease.
type LockedError struct {
	ResourceID uuid.UUID
	Holder     uuid.UUID
	Remaining  time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("resource %s locked by %s for %s", e.ResourceID, e.Holder, e.Remaining.Round(time.Second))
}

func (e *LockedError) Unwrap() error { return ErrLocked }

// ConflictError reports a stale optimistic version on a write.
// CurrentHolder is set when another actor holds the edit lock on the resource.
type ConflictError struct {
	ResourceID     uuid.UUID
	CurrentVersion time.Time
	CurrentHolder  *uuid.UUID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("resource %s changed at %s", e.ResourceID, e.CurrentVersion.Format(time.RFC3339))
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// InvalidTransitionError reports a memo status change rejected by the
// transition table.
type InvalidTransitionError struct {
	MemoID uuid.UUID
	From   MemoStatus
	To     MemoStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("memo %s: cannot transition %s -> %s", e.MemoID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// PartialFailureError reports a multi-step operation that failed after some
// steps completed. EntryID references the rollback-log entry that captured
// the operation. RollbackErr is non-nil when the compensating rollback
// itself failed, which means manual intervention via the rollback log.
type PartialFailureError struct {
	EntryID     uuid.UUID
	Cause       error
	RollbackErr error
}

func (e *PartialFailureError) Error() string {
	if e.RollbackErr != nil {
		return fmt.Sprintf("operation failed and rollback failed, manual intervention required (rollback entry %s): %v (rollback: %v)",
			e.EntryID, e.Cause, e.RollbackErr)
	}
	return fmt.Sprintf("operation failed, changes rolled back (rollback entry %s): %v", e.EntryID, e.Cause)
}

func (e *PartialFailureError) Unwrap() error { return ErrPartialFailure }
