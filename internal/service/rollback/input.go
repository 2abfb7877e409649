package rollback

import (
	"github.com/google/uuid"

	"github.com/routeworks/memoflow-backend/internal/domain"
)

// RollbackInput identifies the ledger entry to invert. The reason is kept
// on the entry for the audit trail; it may be empty.
type RollbackInput struct {
	EntryID uuid.UUID
	Reason  string
}

// Validate checks all fields and collects all errors.
func (i RollbackInput) Validate() error {
	if i.EntryID == uuid.Nil {
		return domain.NewValidationError("entry_id", "required")
	}
	return nil
}

// QueryInput narrows the rollback-log listing.
type QueryInput struct {
	OperationType *domain.OperationType
	Status        *domain.RollbackStatus
	// SinceHours restricts results to entries created within the last N hours.
	SinceHours *int
	Limit      int
	Offset     int
}

// Validate checks all fields and collects all errors.
func (i QueryInput) Validate() error {
	var errs []domain.FieldError
	if i.OperationType != nil && !i.OperationType.IsValid() {
		errs = append(errs, domain.FieldError{Field: "operation_type", Message: "unknown operation type"})
	}
	if i.Status != nil && !i.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "unknown status"})
	}
	if i.SinceHours != nil && *i.SinceHours <= 0 {
		errs = append(errs, domain.FieldError{Field: "since_hours", Message: "must be positive"})
	}
	if i.Limit < 0 || i.Limit > MaxQueryLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 200"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must not be negative"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
