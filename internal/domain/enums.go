package domain

// MemoStatus represents a memo's position in the approval workflow.
type MemoStatus string

const (
	MemoStatusDraft     MemoStatus = "DRAFT"
	MemoStatusPending   MemoStatus = "PENDING"
	MemoStatusApproved  MemoStatus = "APPROVED"
	MemoStatusRejected  MemoStatus = "REJECTED"
	MemoStatusSent      MemoStatus = "SENT"
	MemoStatusScheduled MemoStatus = "SCHEDULED"
	MemoStatusArchived  MemoStatus = "ARCHIVED"
	MemoStatusDeleted   MemoStatus = "DELETED"
)

func (s MemoStatus) String() string { return string(s) }

func (s MemoStatus) IsValid() bool {
	switch s {
	case MemoStatusDraft, MemoStatusPending, MemoStatusApproved, MemoStatusRejected,
		MemoStatusSent, MemoStatusScheduled, MemoStatusArchived, MemoStatusDeleted:
		return true
	}
	return false
}

// memoTransitions is the single source of truth for allowed status changes.
// Archival and deletion are user actions available from any settled status;
// the workflow engine itself only drives the upper rows.
var memoTransitions = map[MemoStatus][]MemoStatus{
	MemoStatusDraft:     {MemoStatusPending, MemoStatusArchived, MemoStatusDeleted},
	MemoStatusPending:   {MemoStatusApproved, MemoStatusRejected},
	MemoStatusApproved:  {MemoStatusSent, MemoStatusPending, MemoStatusArchived, MemoStatusDeleted},
	MemoStatusRejected:  {MemoStatusArchived, MemoStatusDeleted},
	MemoStatusSent:      {MemoStatusArchived, MemoStatusDeleted},
	MemoStatusScheduled: {MemoStatusPending, MemoStatusArchived, MemoStatusDeleted},
	MemoStatusArchived:  {MemoStatusDeleted},
	MemoStatusDeleted:   {},
}

// CanTransition reports whether a memo may move from one status to another.
// APPROVED -> PENDING exists only for compensating rollback of an approval.
func CanTransition(from, to MemoStatus) bool {
	for _, next := range memoTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// MemoKind discriminates real memos from system-generated records that ride
// the same storage shape.
type MemoKind string

const (
	MemoKindMemo         MemoKind = "MEMO"
	MemoKindNotification MemoKind = "NOTIFICATION"
	MemoKindActivity     MemoKind = "ACTIVITY"
)

func (k MemoKind) String() string { return string(k) }

func (k MemoKind) IsValid() bool {
	switch k {
	case MemoKindMemo, MemoKindNotification, MemoKindActivity:
		return true
	}
	return false
}

// WorkflowAction labels an entry in a memo's workflow history.
type WorkflowAction string

const (
	WorkflowActionSubmitted  WorkflowAction = "SUBMITTED"
	WorkflowActionApproved   WorkflowAction = "APPROVED"
	WorkflowActionRejected   WorkflowAction = "REJECTED"
	WorkflowActionRolledBack WorkflowAction = "ROLLED_BACK"
	WorkflowActionEdited     WorkflowAction = "EDITED"
)

func (a WorkflowAction) String() string { return string(a) }

func (a WorkflowAction) IsValid() bool {
	switch a {
	case WorkflowActionSubmitted, WorkflowActionApproved, WorkflowActionRejected,
		WorkflowActionRolledBack, WorkflowActionEdited:
		return true
	}
	return false
}

// RollbackStatus represents the lifecycle state of a rollback-log entry.
type RollbackStatus string

const (
	RollbackStatusPending    RollbackStatus = "PENDING"
	RollbackStatusCompleted  RollbackStatus = "COMPLETED"
	RollbackStatusRolledBack RollbackStatus = "ROLLED_BACK"
	RollbackStatusFailed     RollbackStatus = "FAILED"
)

func (s RollbackStatus) String() string { return string(s) }

func (s RollbackStatus) IsValid() bool {
	switch s {
	case RollbackStatusPending, RollbackStatusCompleted, RollbackStatusRolledBack, RollbackStatusFailed:
		return true
	}
	return false
}

// OperationType identifies the multi-step operation a rollback-log entry captured.
type OperationType string

const (
	OperationTypeMemoApproval OperationType = "MEMO_APPROVAL"
)

func (t OperationType) String() string { return string(t) }

func (t OperationType) IsValid() bool {
	return t == OperationTypeMemoApproval
}

// OutboxTaskType identifies a best-effort side effect queued after a
// workflow transition.
type OutboxTaskType string

const (
	OutboxTaskNotification OutboxTaskType = "NOTIFICATION"
	OutboxTaskCalendar     OutboxTaskType = "CALENDAR"
	OutboxTaskBackup       OutboxTaskType = "BACKUP"
)

func (t OutboxTaskType) String() string { return string(t) }

func (t OutboxTaskType) IsValid() bool {
	switch t {
	case OutboxTaskNotification, OutboxTaskCalendar, OutboxTaskBackup:
		return true
	}
	return false
}

// OutboxStatus represents the dispatch state of an outbox task.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

func (s OutboxStatus) String() string { return string(s) }

func (s OutboxStatus) IsValid() bool {
	switch s {
	case OutboxStatusPending, OutboxStatusProcessed, OutboxStatusFailed:
		return true
	}
	return false
}

// UserRole represents the authorization level of a user.
type UserRole string

const (
	UserRoleUser     UserRole = "user"
	UserRoleReviewer UserRole = "reviewer"
	UserRoleAdmin    UserRole = "admin"
)

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleUser, UserRoleReviewer, UserRoleAdmin:
		return true
	}
	return false
}

// CanReview reports whether the role may approve or reject memos.
func (r UserRole) CanReview() bool {
	return r == UserRoleReviewer || r == UserRoleAdmin
}

func (r UserRole) IsAdmin() bool {
	return r == UserRoleAdmin
}
