package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutboxTask is a best-effort side effect queued after a workflow
// transition commits: notification, calendar entry, or offsite backup.
// Tasks are dispatched by a background worker; their failure never
// propagates into the transition that enqueued them.
type OutboxTask struct {
	ID          uuid.UUID
	Type        OutboxTaskType
	MemoID      uuid.UUID
	Payload     map[string]any
	Status      OutboxStatus
	Attempts    int
	LastError   *string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}
