// Package editlock implements the edit-lock service: time-boxed advisory
// locks that serialize concurrent editors of a single resource. The lock is
// a UX affordance; the datastore's conditional writes stay the final
// arbiter of write safety.
package editlock

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/routeworks/memoflow-backend/internal/domain"
)

const MaxBatchStatusSize = 100

type lockRepo interface {
	Acquire(ctx context.Context, resourceID, actorID uuid.UUID, ttl time.Duration) (*domain.EditLock, error)
	Refresh(ctx context.Context, resourceID, actorID uuid.UUID, ttl time.Duration) (*domain.EditLock, error)
	Release(ctx context.Context, resourceID, actorID uuid.UUID) error
	Get(ctx context.Context, resourceID uuid.UUID) (*domain.EditLock, error)
	GetBatch(ctx context.Context, resourceIDs []uuid.UUID) (map[uuid.UUID]domain.EditLock, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type eventBus interface {
	Publish(event domain.LockEvent)
}

// Service provides lock acquisition, refresh, release, and inspection.
type Service struct {
	locks lockRepo
	bus   eventBus
	ttl   time.Duration
	log   *slog.Logger
}

// NewService creates a new edit-lock service. ttl is the lease duration
// applied to every acquire and refresh.
func NewService(
	log *slog.Logger,
	locks lockRepo,
	bus eventBus,
	ttl time.Duration,
) *Service {
	return &Service{
		locks: locks,
		bus:   bus,
		ttl:   ttl,
		log:   log.With("service", "editlock"),
	}
}

func (s *Service) publish(eventType domain.LockEventType, resourceID, actorID uuid.UUID) {
	s.bus.Publish(domain.LockEvent{
		Type:       eventType,
		ResourceID: resourceID,
		ActorID:    actorID,
		At:         time.Now().UTC(),
	})
}
