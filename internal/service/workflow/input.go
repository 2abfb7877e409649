package workflow

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/routeworks/memoflow-backend/internal/domain"
)

// SubmitInput holds the parameters for submitting a memo for review.
// Recipients may be given explicitly, as a department to expand, or both.
type SubmitInput struct {
	Subject      string
	Body         string
	RecipientIDs []uuid.UUID
	Department   *string
	Attachments  []domain.Attachment
	Signatures   []domain.SignatureBlock
}

// Validate checks all fields and collects all errors.
func (i SubmitInput) Validate() error {
	var errs []domain.FieldError

	subject := strings.TrimSpace(i.Subject)
	if subject == "" {
		errs = append(errs, domain.FieldError{Field: "subject", Message: "required"})
	}
	if len(subject) > MaxSubjectLen {
		errs = append(errs, domain.FieldError{Field: "subject", Message: "max 200 characters"})
	}
	if len(i.Body) > MaxBodyLen {
		errs = append(errs, domain.FieldError{Field: "body", Message: "max 50000 characters"})
	}

	hasDept := i.Department != nil && strings.TrimSpace(*i.Department) != ""
	if len(i.RecipientIDs) == 0 && !hasDept {
		errs = append(errs, domain.FieldError{Field: "recipients", Message: "at least one recipient or a department is required"})
	}
	for _, id := range i.RecipientIDs {
		if id == uuid.Nil {
			errs = append(errs, domain.FieldError{Field: "recipients", Message: "must not contain nil ids"})
			break
		}
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// MemoIDInput identifies the memo a single-target operation acts on.
type MemoIDInput struct {
	MemoID uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i MemoIDInput) Validate() error {
	if i.MemoID == uuid.Nil {
		return domain.NewValidationError("memo_id", "required")
	}
	return nil
}

// RejectInput holds the parameters for rejecting a pending memo.
// Reason is optional; when given it lands in the history entry and the
// author notification.
type RejectInput struct {
	MemoID uuid.UUID
	Reason string
}

// Validate checks all fields and collects all errors.
func (i RejectInput) Validate() error {
	if i.MemoID == uuid.Nil {
		return domain.NewValidationError("memo_id", "required")
	}
	return nil
}

// EditMemoInput holds the parameters for a guarded content edit.
// Version is the UpdatedAt the caller last read.
type EditMemoInput struct {
	MemoID  uuid.UUID
	Version time.Time
	Subject string
	Body    string
}

// Validate checks all fields and collects all errors.
func (i EditMemoInput) Validate() error {
	var errs []domain.FieldError
	if i.MemoID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "memo_id", Message: "required"})
	}
	if i.Version.IsZero() {
		errs = append(errs, domain.FieldError{Field: "version", Message: "required"})
	}
	subject := strings.TrimSpace(i.Subject)
	if subject == "" {
		errs = append(errs, domain.FieldError{Field: "subject", Message: "required"})
	}
	if len(subject) > MaxSubjectLen {
		errs = append(errs, domain.FieldError{Field: "subject", Message: "max 200 characters"})
	}
	if len(i.Body) > MaxBodyLen {
		errs = append(errs, domain.FieldError{Field: "body", Message: "max 50000 characters"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
