package domain

import (
	"time"

	"github.com/google/uuid"
)

// EditLock is a time-boxed, resource-scoped mutual-exclusion marker used to
// serialize concurrent editors. One lock per resource; an expired lock is
// logically absent and may be replaced by the next acquirer. Locks are an
// advisory serialization layer; the datastore's conditional updates remain
// the final arbiter of write safety.
type EditLock struct {
	ResourceID uuid.UUID
	LockedBy   uuid.UUID
	LockTime   time.Time
	ExpiresAt  time.Time
}

// IsLive reports whether the lock is still in force at the given instant.
func (l *EditLock) IsLive(now time.Time) bool {
	return l.ExpiresAt.After(now)
}

// Remaining returns the time left on the lease, never negative.
func (l *EditLock) Remaining(now time.Time) time.Duration {
	if !l.IsLive(now) {
		return 0
	}
	return l.ExpiresAt.Sub(now)
}

// LockStatus is the read-only inspection view of a resource's lock state,
// used for UI affordances and batched status checks.
type LockStatus struct {
	ResourceID uuid.UUID
	Locked     bool
	Holder     *uuid.UUID
	Remaining  time.Duration
}

// LockEvent is broadcast to live observers of a resource when its lock
// state changes. Delivery is best-effort and never a correctness dependency.
type LockEvent struct {
	Type       LockEventType `json:"type"`
	ResourceID uuid.UUID     `json:"resourceId"`
	ActorID    uuid.UUID     `json:"actorId"`
	At         time.Time     `json:"at"`
}

// LockEventType labels a lock state change.
type LockEventType string

const (
	LockEventAcquired LockEventType = "lock_acquired"
	LockEventReleased LockEventType = "lock_released"
	LockEventRefresh  LockEventType = "lock_refreshed"
	LockEventEdited   LockEventType = "edit_success"
)
