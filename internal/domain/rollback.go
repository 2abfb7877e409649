package domain

import (
	"time"

	"github.com/google/uuid"
)

// RollbackEntry is one record in the rollback log: a multi-step operation
// captured with enough state to invert it. Entries are append-mostly: once
// COMPLETED or ROLLED_BACK the only allowed mutation is the transition to
// ROLLED_BACK plus an optional reason.
type RollbackEntry struct {
	ID            uuid.UUID
	OperationType OperationType
	Status        RollbackStatus
	PerformedBy   uuid.UUID
	RolledBackBy  *uuid.UUID
	Reason        *string
	Payload       RollbackPayload
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RollbackPayload captures the state needed to invert a memo approval:
// the authoritative memo, its pre-transition status, and the exact prefix
// of delivered copies created before the operation settled.
type RollbackPayload struct {
	MemoID         uuid.UUID   `json:"memoId"`
	PrevStatus     MemoStatus  `json:"prevStatus"`
	CreatedCopyIDs []uuid.UUID `json:"createdCopyIds,omitempty"`
}

// CanRollBack reports whether the entry is in a state the inverse operation
// may be applied to. PENDING entries are still in flight; ROLLED_BACK
// entries are settled.
func (e *RollbackEntry) CanRollBack() bool {
	return e.Status == RollbackStatusCompleted || e.Status == RollbackStatusFailed
}

// RollbackFilter narrows rollback-log queries.
type RollbackFilter struct {
	OperationType *OperationType
	Status        *RollbackStatus
	// Since restricts results to entries created at or after this instant.
	Since  *time.Time
	Limit  int
	Offset int
}
