package editlock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/routeworks/memoflow-backend/internal/domain"
)

var _ lockRepo = &lockRepoMock{}

type lockRepoMock struct {
	AcquireFunc      func(ctx context.Context, resourceID, actorID uuid.UUID, ttl time.Duration) (*domain.EditLock, error)
	RefreshFunc      func(ctx context.Context, resourceID, actorID uuid.UUID, ttl time.Duration) (*domain.EditLock, error)
	ReleaseFunc      func(ctx context.Context, resourceID, actorID uuid.UUID) error
	GetFunc          func(ctx context.Context, resourceID uuid.UUID) (*domain.EditLock, error)
	GetBatchFunc     func(ctx context.Context, resourceIDs []uuid.UUID) (map[uuid.UUID]domain.EditLock, error)
	PurgeExpiredFunc func(ctx context.Context) (int64, error)

	calls struct {
		Acquire []struct {
			ResourceID uuid.UUID
			ActorID    uuid.UUID
			TTL        time.Duration
		}
		Refresh []struct {
			ResourceID uuid.UUID
			ActorID    uuid.UUID
			TTL        time.Duration
		}
		Release []struct {
			ResourceID uuid.UUID
			ActorID    uuid.UUID
		}
		Get      []struct{ ResourceID uuid.UUID }
		GetBatch []struct{ ResourceIDs []uuid.UUID }
	}
	mu sync.RWMutex
}

func (mock *lockRepoMock) Acquire(ctx context.Context, resourceID, actorID uuid.UUID, ttl time.Duration) (*domain.EditLock, error) {
	if mock.AcquireFunc == nil {
		panic("lockRepoMock.AcquireFunc: method is nil but lockRepo.Acquire was just called")
	}
	mock.mu.Lock()
	mock.calls.Acquire = append(mock.calls.Acquire, struct {
		ResourceID uuid.UUID
		ActorID    uuid.UUID
		TTL        time.Duration
	}{resourceID, actorID, ttl})
	mock.mu.Unlock()
	return mock.AcquireFunc(ctx, resourceID, actorID, ttl)
}

func (mock *lockRepoMock) AcquireCalls() []struct {
	ResourceID uuid.UUID
	ActorID    uuid.UUID
	TTL        time.Duration
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.Acquire
}

func (mock *lockRepoMock) Refresh(ctx context.Context, resourceID, actorID uuid.UUID, ttl time.Duration) (*domain.EditLock, error) {
	if mock.RefreshFunc == nil {
		panic("lockRepoMock.RefreshFunc: method is nil but lockRepo.Refresh was just called")
	}
	mock.mu.Lock()
	mock.calls.Refresh = append(mock.calls.Refresh, struct {
		ResourceID uuid.UUID
		ActorID    uuid.UUID
		TTL        time.Duration
	}{resourceID, actorID, ttl})
	mock.mu.Unlock()
	return mock.RefreshFunc(ctx, resourceID, actorID, ttl)
}

func (mock *lockRepoMock) RefreshCalls() []struct {
	ResourceID uuid.UUID
	ActorID    uuid.UUID
	TTL        time.Duration
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.Refresh
}

func (mock *lockRepoMock) Release(ctx context.Context, resourceID, actorID uuid.UUID) error {
	if mock.ReleaseFunc == nil {
		panic("lockRepoMock.ReleaseFunc: method is nil but lockRepo.Release was just called")
	}
	mock.mu.Lock()
	mock.calls.Release = append(mock.calls.Release, struct {
		ResourceID uuid.UUID
		ActorID    uuid.UUID
	}{resourceID, actorID})
	mock.mu.Unlock()
	return mock.ReleaseFunc(ctx, resourceID, actorID)
}

func (mock *lockRepoMock) ReleaseCalls() []struct {
	ResourceID uuid.UUID
	ActorID    uuid.UUID
} {
	mock.mu.RLock()
	defer mock.mu.RUnlock()
	return mock.calls.Release
}

func (mock *lockRepoMock) Get(ctx context.Context, resourceID uuid.UUID) (*domain.EditLock, error) {
	if mock.GetFunc == nil {
		panic("lockRepoMock.GetFunc: method is nil but lockRepo.Get was just called")
	}
	mock.mu.Lock()
	mock.calls.Get = append(mock.calls.Get, struct{ ResourceID uuid.UUID }{resourceID})
	mock.mu.Unlock()
	return mock.GetFunc(ctx, resourceID)
}

func (mock *lockRepoMock) GetBatch(ctx context.Context, resourceIDs []uuid.UUID) (map[uuid.UUID]domain.EditLock, error) {
	if mock.GetBatchFunc == nil {
		panic("lockRepoMock.GetBatchFunc: method is nil but lockRepo.GetBatch was just called")
	}
	mock.mu.Lock()
	mock.calls.GetBatch = append(mock.calls.GetBatch, struct{ ResourceIDs []uuid.UUID }{resourceIDs})
	mock.mu.Unlock()
	return mock.GetBatchFunc(ctx, resourceIDs)
}

func (mock *lockRepoMock) PurgeExpired(ctx context.Context) (int64, error) {
	if mock.PurgeExpiredFunc == nil {
		panic("lockRepoMock.PurgeExpiredFunc: method is nil but lockRepo.PurgeExpired was just called")
	}
	return mock.PurgeExpiredFunc(ctx)
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
