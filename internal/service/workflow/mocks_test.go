package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/routeworks/memoflow-backend/internal/domain"
)

var _ memoRepo = &memoRepoMock{}

type memoRepoMock struct {
	CreateFunc                    func(ctx context.Context, m domain.Memo) (*domain.Memo, error)
	GetByIDFunc                   func(ctx context.Context, id uuid.UUID) (*domain.Memo, error)
	UpdateStatusFromFunc          func(ctx context.Context, id uuid.UUID, from, to domain.MemoStatus) (*domain.Memo, error)
	UpdateContentGuardedFunc      func(ctx context.Context, id uuid.UUID, clientVersion time.Time, subject, body string) (*domain.Memo, error)
	DeleteByIDsFunc               func(ctx context.Context, ids []uuid.UUID) (int64, error)
	AppendEventFunc               func(ctx context.Context, e domain.WorkflowEvent) error
	AcknowledgeFunc               func(ctx context.Context, memoID, userID uuid.UUID, at time.Time) error
	AcknowledgmentsByOriginalFunc func(ctx context.Context, originalID uuid.UUID) ([]domain.Acknowledgment, error)

	calls struct {
		Create      []domain.Memo
		DeleteByIDs [][]uuid.UUID
		AppendEvent []domain.WorkflowEvent
		UpdateStatusFrom []struct {
			ID       uuid.UUID
			From, To domain.MemoStatus
		}
	}
	mu sync.RWMutex
}

func (mock *memoRepoMock) Create(ctx context.Context, m domain.Memo) (*domain.Memo, error) {
	if mock.CreateFunc == nil {
		panic("memoRepoMock.CreateFunc: method is nil but memoRepo.Create was just called")
	}
	mock.mu.Lock()
	mock.calls.Create = append(mock.calls.Create, m)
	mock.mu.Unlock()
	return mock.CreateFunc(ctx, m)
}

func (mock *memoRepoMock) CreateCalls() []domain.Memo {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.Create
}

func (mock *memoRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Memo, error) {
	if mock.GetByIDFunc == nil {
		panic("memoRepoMock.GetByIDFunc: method is nil but memoRepo.GetByID was just called")
	}
	return mock.GetByIDFunc(ctx, id)
}

func (mock *memoRepoMock) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to domain.MemoStatus) (*domain.Memo, error) {
	if mock.UpdateStatusFromFunc == nil {
		panic("memoRepoMock.UpdateStatusFromFunc: method is nil but memoRepo.UpdateStatusFrom was just called")
	}
	mock.mu.Lock()
	mock.calls.UpdateStatusFrom = append(mock.calls.UpdateStatusFrom, struct {
		ID       uuid.UUID
		From, To domain.MemoStatus
	}{id, from, to})
	mock.mu.Unlock()
	return mock.UpdateStatusFromFunc(ctx, id, from, to)
}

func (mock *memoRepoMock) UpdateStatusFromCalls() []struct {
	ID       uuid.UUID
	From, To domain.MemoStatus
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.UpdateStatusFrom
}

func (mock *memoRepoMock) UpdateContentGuarded(ctx context.Context, id uuid.UUID, clientVersion time.Time, subject, body string) (*domain.Memo, error) {
	if mock.UpdateContentGuardedFunc == nil {
		panic("memoRepoMock.UpdateContentGuardedFunc: method is nil but memoRepo.UpdateContentGuarded was just called")
	}
	return mock.UpdateContentGuardedFunc(ctx, id, clientVersion, subject, body)
}

func (mock *memoRepoMock) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if mock.DeleteByIDsFunc == nil {
		panic("memoRepoMock.DeleteByIDsFunc: method is nil but memoRepo.DeleteByIDs was just called")
	}
	mock.mu.Lock()
	mock.calls.DeleteByIDs = append(mock.calls.DeleteByIDs, ids)
	mock.mu.Unlock()
	return mock.DeleteByIDsFunc(ctx, ids)
}

func (mock *memoRepoMock) DeleteByIDsCalls() [][]uuid.UUID {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.DeleteByIDs
}

func (mock *memoRepoMock) AppendEvent(ctx context.Context, e domain.WorkflowEvent) error {
	if mock.AppendEventFunc == nil {
		panic("memoRepoMock.AppendEventFunc: method is nil but memoRepo.AppendEvent was just called")
	}
	mock.mu.Lock()
	mock.calls.AppendEvent = append(mock.calls.AppendEvent, e)
	mock.mu.Unlock()
	return mock.AppendEventFunc(ctx, e)
}

func (mock *memoRepoMock) AppendEventCalls() []domain.WorkflowEvent {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.AppendEvent
}

func (mock *memoRepoMock) Acknowledge(ctx context.Context, memoID, userID uuid.UUID, at time.Time) error {
	if mock.AcknowledgeFunc == nil {
		panic("memoRepoMock.AcknowledgeFunc: method is nil but memoRepo.Acknowledge was just called")
	}
	return mock.AcknowledgeFunc(ctx, memoID, userID, at)
}

func (mock *memoRepoMock) AcknowledgmentsByOriginal(ctx context.Context, originalID uuid.UUID) ([]domain.Acknowledgment, error) {
	if mock.AcknowledgmentsByOriginalFunc == nil {
		panic("memoRepoMock.AcknowledgmentsByOriginalFunc: method is nil but memoRepo.AcknowledgmentsByOriginal was just called")
	}
	return mock.AcknowledgmentsByOriginalFunc(ctx, originalID)
}

var _ rollbackLedger = &rollbackLedgerMock{}

type rollbackLedgerMock struct {
	OpenFunc           func(ctx context.Context, opType domain.OperationType, performedBy uuid.UUID, payload domain.RollbackPayload) (*domain.RollbackEntry, error)
	SavePayloadFunc    func(ctx context.Context, id uuid.UUID, payload domain.RollbackPayload) error
	SettleFunc         func(ctx context.Context, id uuid.UUID, status domain.RollbackStatus, payload domain.RollbackPayload) (*domain.RollbackEntry, error)
	MarkRolledBackFunc func(ctx context.Context, id, rolledBackBy uuid.UUID, reason *string) (*domain.RollbackEntry, error)

	calls struct {
		Open        []domain.RollbackPayload
		SavePayload []domain.RollbackPayload
		Settle      []struct {
			Status  domain.RollbackStatus
			Payload domain.RollbackPayload
		}
		MarkRolledBack []uuid.UUID
	}
	mu sync.RWMutex
}

func (mock *rollbackLedgerMock) Open(ctx context.Context, opType domain.OperationType, performedBy uuid.UUID, payload domain.RollbackPayload) (*domain.RollbackEntry, error) {
	if mock.OpenFunc == nil {
		panic("rollbackLedgerMock.OpenFunc: method is nil but rollbackLedger.Open was just called")
	}
	mock.mu.Lock()
	mock.calls.Open = append(mock.calls.Open, payload)
	mock.mu.Unlock()
	return mock.OpenFunc(ctx, opType, performedBy, payload)
}

func (mock *rollbackLedgerMock) OpenCalls() []domain.RollbackPayload {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.Open
}

func (mock *rollbackLedgerMock) SavePayload(ctx context.Context, id uuid.UUID, payload domain.RollbackPayload) error {
	if mock.SavePayloadFunc == nil {
		panic("rollbackLedgerMock.SavePayloadFunc: method is nil but rollbackLedger.SavePayload was just called")
	}
	mock.mu.Lock()
	mock.calls.SavePayload = append(mock.calls.SavePayload, payload)
	mock.mu.Unlock()
	return mock.SavePayloadFunc(ctx, id, payload)
}

func (mock *rollbackLedgerMock) SavePayloadCalls() []domain.RollbackPayload {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.SavePayload
}

func (mock *rollbackLedgerMock) Settle(ctx context.Context, id uuid.UUID, status domain.RollbackStatus, payload domain.RollbackPayload) (*domain.RollbackEntry, error) {
	if mock.SettleFunc == nil {
		panic("rollbackLedgerMock.SettleFunc: method is nil but rollbackLedger.Settle was just called")
	}
	mock.mu.Lock()
	mock.calls.Settle = append(mock.calls.Settle, struct {
		Status  domain.RollbackStatus
		Payload domain.RollbackPayload
	}{status, payload})
	mock.mu.Unlock()
	return mock.SettleFunc(ctx, id, status, payload)
}

func (mock *rollbackLedgerMock) SettleCalls() []struct {
	Status  domain.RollbackStatus
	Payload domain.RollbackPayload
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.Settle
}

func (mock *rollbackLedgerMock) MarkRolledBack(ctx context.Context, id, rolledBackBy uuid.UUID, reason *string) (*domain.RollbackEntry, error) {
	if mock.MarkRolledBackFunc == nil {
		panic("rollbackLedgerMock.MarkRolledBackFunc: method is nil but rollbackLedger.MarkRolledBack was just called")
	}
	mock.mu.Lock()
	mock.calls.MarkRolledBack = append(mock.calls.MarkRolledBack, id)
	mock.mu.Unlock()
	return mock.MarkRolledBackFunc(ctx, id, rolledBackBy, reason)
}

func (mock *rollbackLedgerMock) MarkRolledBackCalls() []uuid.UUID {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.MarkRolledBack
}

var _ outboxQueue = &outboxQueueMock{}

type outboxQueueMock struct {
	EnqueueFunc func(ctx context.Context, taskType domain.OutboxTaskType, memoID uuid.UUID, payload map[string]any) (*domain.OutboxTask, error)

	calls struct {
		Enqueue []struct {
			TaskType domain.OutboxTaskType
			MemoID   uuid.UUID
			Payload  map[string]any
		}
	}
	mu sync.RWMutex
}

func (mock *outboxQueueMock) Enqueue(ctx context.Context, taskType domain.OutboxTaskType, memoID uuid.UUID, payload map[string]any) (*domain.OutboxTask, error) {
	if mock.EnqueueFunc == nil {
		panic("outboxQueueMock.EnqueueFunc: method is nil but outboxQueue.Enqueue was just called")
	}
	mock.mu.Lock()
	mock.calls.Enqueue = append(mock.calls.Enqueue, struct {
		TaskType domain.OutboxTaskType
		MemoID   uuid.UUID
		Payload  map[string]any
	}{taskType, memoID, payload})
	mock.mu.Unlock()
	return mock.EnqueueFunc(ctx, taskType, memoID, payload)
}

func (mock *outboxQueueMock) EnqueueCalls() []struct {
	TaskType domain.OutboxTaskType
	MemoID   uuid.UUID
	Payload  map[string]any
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.Enqueue
}

var _ userDirectory = &userDirectoryMock{}

type userDirectoryMock struct {
	ListByDepartmentFunc func(ctx context.Context, department string) ([]domain.User, error)
}

func (mock *userDirectoryMock) ListByDepartment(ctx context.Context, department string) ([]domain.User, error) {
	if mock.ListByDepartmentFunc == nil {
		panic("userDirectoryMock.ListByDepartmentFunc: method is nil but userDirectory.ListByDepartment was just called")
	}
	return mock.ListByDepartmentFunc(ctx, department)
}

var _ lockReader = &lockReaderMock{}

type lockReaderMock struct {
	GetFunc func(ctx context.Context, resourceID uuid.UUID) (*domain.EditLock, error)
}

func (mock *lockReaderMock) Get(ctx context.Context, resourceID uuid.UUID) (*domain.EditLock, error) {
	if mock.GetFunc == nil {
		panic("lockReaderMock.GetFunc: method is nil but lockReader.Get was just called")
	}
	return mock.GetFunc(ctx, resourceID)
}

var _ eventBus = &eventBusMock{}

type eventBusMock struct {
	mu     sync.Mutex
	events []domain.LockEvent
}

func (mock *eventBusMock) Publish(event domain.LockEvent) {
	mock.mu.Lock()
	mock.events = append(mock.events, event)
	mock.mu.Unlock()
}

func (mock *eventBusMock) Events() []domain.LockEvent {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.events
}
