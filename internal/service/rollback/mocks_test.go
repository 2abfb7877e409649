package rollback

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/routeworks/memoflow-backend/internal/domain"
)

var _ ledgerRepo = &ledgerRepoMock{}

type ledgerRepoMock struct {
	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (*domain.RollbackEntry, error)
	MarkRolledBackFunc     func(ctx context.Context, id, rolledBackBy uuid.UUID, reason *string) (*domain.RollbackEntry, error)
	QueryFunc              func(ctx context.Context, filter domain.RollbackFilter) ([]domain.RollbackEntry, error)
	PurgeSettledBeforeFunc func(ctx context.Context, cutoff time.Time) (int64, error)

	calls struct {
		MarkRolledBack []struct {
			ID           uuid.UUID
			RolledBackBy uuid.UUID
			Reason       *string
		}
		Query []domain.RollbackFilter
	}
	mu sync.RWMutex
}

func (mock *ledgerRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.RollbackEntry, error) {
	if mock.GetByIDFunc == nil {
		panic("ledgerRepoMock.GetByIDFunc: method is nil but ledgerRepo.GetByID was just called")
	}
	return mock.GetByIDFunc(ctx, id)
}

func (mock *ledgerRepoMock) MarkRolledBack(ctx context.Context, id, rolledBackBy uuid.UUID, reason *string) (*domain.RollbackEntry, error) {
	if mock.MarkRolledBackFunc == nil {
		panic("ledgerRepoMock.MarkRolledBackFunc: method is nil but ledgerRepo.MarkRolledBack was just called")
	}
	mock.mu.Lock()
	mock.calls.MarkRolledBack = append(mock.calls.MarkRolledBack, struct {
		ID           uuid.UUID
		RolledBackBy uuid.UUID
		Reason       *string
	}{id, rolledBackBy, reason})
	mock.mu.Unlock()
	return mock.MarkRolledBackFunc(ctx, id, rolledBackBy, reason)
}

func (mock *ledgerRepoMock) MarkRolledBackCalls() []struct {
	ID           uuid.UUID
	RolledBackBy uuid.UUID
	Reason       *string
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.MarkRolledBack
}

func (mock *ledgerRepoMock) Query(ctx context.Context, filter domain.RollbackFilter) ([]domain.RollbackEntry, error) {
	if mock.QueryFunc == nil {
		panic("ledgerRepoMock.QueryFunc: method is nil but ledgerRepo.Query was just called")
	}
	mock.mu.Lock()
	mock.calls.Query = append(mock.calls.Query, filter)
	mock.mu.Unlock()
	return mock.QueryFunc(ctx, filter)
}

func (mock *ledgerRepoMock) QueryCalls() []domain.RollbackFilter {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.Query
}

func (mock *ledgerRepoMock) PurgeSettledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if mock.PurgeSettledBeforeFunc == nil {
		panic("ledgerRepoMock.PurgeSettledBeforeFunc: method is nil but ledgerRepo.PurgeSettledBefore was just called")
	}
	return mock.PurgeSettledBeforeFunc(ctx, cutoff)
}

var _ memoStore = &memoStoreMock{}

type memoStoreMock struct {
	GetByIDFunc          func(ctx context.Context, id uuid.UUID) (*domain.Memo, error)
	UpdateStatusFromFunc func(ctx context.Context, id uuid.UUID, from, to domain.MemoStatus) (*domain.Memo, error)
	DeleteByIDsFunc      func(ctx context.Context, ids []uuid.UUID) (int64, error)

	calls struct {
		DeleteByIDs      [][]uuid.UUID
		UpdateStatusFrom []struct {
			ID       uuid.UUID
			From, To domain.MemoStatus
		}
	}
	mu sync.RWMutex
}

func (mock *memoStoreMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Memo, error) {
	if mock.GetByIDFunc == nil {
		panic("memoStoreMock.GetByIDFunc: method is nil but memoStore.GetByID was just called")
	}
	return mock.GetByIDFunc(ctx, id)
}

func (mock *memoStoreMock) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to domain.MemoStatus) (*domain.Memo, error) {
	if mock.UpdateStatusFromFunc == nil {
		panic("memoStoreMock.UpdateStatusFromFunc: method is nil but memoStore.UpdateStatusFrom was just called")
	}
	mock.mu.Lock()
	mock.calls.UpdateStatusFrom = append(mock.calls.UpdateStatusFrom, struct {
		ID       uuid.UUID
		From, To domain.MemoStatus
	}{id, from, to})
	mock.mu.Unlock()
	return mock.UpdateStatusFromFunc(ctx, id, from, to)
}

func (mock *memoStoreMock) UpdateStatusFromCalls() []struct {
	ID       uuid.UUID
	From, To domain.MemoStatus
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.UpdateStatusFrom
}

func (mock *memoStoreMock) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if mock.DeleteByIDsFunc == nil {
		panic("memoStoreMock.DeleteByIDsFunc: method is nil but memoStore.DeleteByIDs was just called")
	}
	mock.mu.Lock()
	mock.calls.DeleteByIDs = append(mock.calls.DeleteByIDs, ids)
	mock.mu.Unlock()
	return mock.DeleteByIDsFunc(ctx, ids)
}

func (mock *memoStoreMock) DeleteByIDsCalls() [][]uuid.UUID {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.DeleteByIDs
}
