// Package workflow implements the memo approval workflow: submission,
// review, delivery fan-out, acknowledgments, and guarded content edits.
// Multi-step operations run under the rollback ledger so a failure midway
// is compensated rather than left half-applied.
package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/routeworks/memoflow-backend/internal/domain"
)

const (
	MaxSubjectLen = 200
	MaxBodyLen    = 50_000
)

type memoRepo interface {
	Create(ctx context.Context, m domain.Memo) (*domain.Memo, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Memo, error)
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to domain.MemoStatus) (*domain.Memo, error)
	UpdateContentGuarded(ctx context.Context, id uuid.UUID, clientVersion time.Time, subject, body string) (*domain.Memo, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	AppendEvent(ctx context.Context, e domain.WorkflowEvent) error
	Acknowledge(ctx context.Context, memoID, userID uuid.UUID, at time.Time) error
	AcknowledgmentsByOriginal(ctx context.Context, originalID uuid.UUID) ([]domain.Acknowledgment, error)
}

type rollbackLedger interface {
	Open(ctx context.Context, opType domain.OperationType, performedBy uuid.UUID, payload domain.RollbackPayload) (*domain.RollbackEntry, error)
	SavePayload(ctx context.Context, id uuid.UUID, payload domain.RollbackPayload) error
	Settle(ctx context.Context, id uuid.UUID, status domain.RollbackStatus, payload domain.RollbackPayload) (*domain.RollbackEntry, error)
	MarkRolledBack(ctx context.Context, id, rolledBackBy uuid.UUID, reason *string) (*domain.RollbackEntry, error)
}

type outboxQueue interface {
	Enqueue(ctx context.Context, taskType domain.OutboxTaskType, memoID uuid.UUID, payload map[string]any) (*domain.OutboxTask, error)
}

type userDirectory interface {
	ListByDepartment(ctx context.Context, department string) ([]domain.User, error)
}

type lockReader interface {
	Get(ctx context.Context, resourceID uuid.UUID) (*domain.EditLock, error)
}

type eventBus interface {
	Publish(event domain.LockEvent)
}

// Service orchestrates the memo workflow.
type Service struct {
	memos         memoRepo
	ledger        rollbackLedger
	outbox        outboxQueue
	users         userDirectory
	locks         lockReader
	bus           eventBus
	maxRecipients int
	log           *slog.Logger
}

// NewService creates a new workflow service.
func NewService(
	log *slog.Logger,
	memos memoRepo,
	ledger rollbackLedger,
	outbox outboxQueue,
	users userDirectory,
	locks lockReader,
	bus eventBus,
	maxRecipients int,
) *Service {
	return &Service{
		memos:         memos,
		ledger:        ledger,
		outbox:        outbox,
		users:         users,
		locks:         locks,
		bus:           bus,
		maxRecipients: maxRecipients,
		log:           log.With("service", "workflow"),
	}
}

// appendEvent records a history entry. History is an audit trail; failing
// to write it must not undo a transition that already committed, so
// callers on committed paths log the error instead of propagating it.
func (s *Service) appendEvent(ctx context.Context, memoID uuid.UUID, action domain.WorkflowAction, actorID uuid.UUID, reason *string) error {
	return s.memos.AppendEvent(ctx, domain.WorkflowEvent{
		ID:      uuid.New(),
		MemoID:  memoID,
		Action:  action,
		ActorID: actorID,
		Reason:  reason,
		At:      time.Now().UTC(),
	})
}
