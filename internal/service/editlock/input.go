package editlock

import (
	"github.com/google/uuid"

	"github.com/routeworks/memoflow-backend/internal/domain"
)

// LockInput identifies the resource an acquire, refresh, or release targets.
type LockInput struct {
	ResourceID uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i LockInput) Validate() error {
	if i.ResourceID == uuid.Nil {
		return domain.NewValidationError("resource_id", "required")
	}
	return nil
}

// BatchStatusInput holds the resource ids for a batched lock-status check.
type BatchStatusInput struct {
	ResourceIDs []uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i BatchStatusInput) Validate() error {
	var errs []domain.FieldError
	if len(i.ResourceIDs) == 0 {
		errs = append(errs, domain.FieldError{Field: "resource_ids", Message: "required"})
	}
	if len(i.ResourceIDs) > MaxBatchStatusSize {
		errs = append(errs, domain.FieldError{Field: "resource_ids", Message: "max 100 ids"})
	}
	for _, id := range i.ResourceIDs {
		if id == uuid.Nil {
			errs = append(errs, domain.FieldError{Field: "resource_ids", Message: "must not contain nil ids"})
			break
		}
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
