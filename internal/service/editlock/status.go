package editlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/routeworks/memoflow-backend/internal/domain"
)

// Status reports the current lock state of one resource. An expired or
// absent lock both read as unlocked.
func (s *Service) Status(ctx context.Context, input LockInput) (*domain.LockStatus, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	lock, err := s.locks.Get(ctx, input.ResourceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.LockStatus{ResourceID: input.ResourceID}, nil
		}
		return nil, fmt.Errorf("get lock: %w", err)
	}

	return statusOf(input.ResourceID, lock, time.Now()), nil
}

// StatusBatch reports lock state for many resources in one round trip.
// Every requested id appears in the result, unlocked when no live lock holds it.
func (s *Service) StatusBatch(ctx context.Context, input BatchStatusInput) ([]domain.LockStatus, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	locks, err := s.locks.GetBatch(ctx, input.ResourceIDs)
	if err != nil {
		return nil, fmt.Errorf("get lock batch: %w", err)
	}

	now := time.Now()
	statuses := make([]domain.LockStatus, 0, len(input.ResourceIDs))
	seen := make(map[uuid.UUID]struct{}, len(input.ResourceIDs))
	for _, id := range input.ResourceIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if lock, ok := locks[id]; ok {
			statuses = append(statuses, *statusOf(id, &lock, now))
		} else {
			statuses = append(statuses, domain.LockStatus{ResourceID: id})
		}
	}
	return statuses, nil
}

// PurgeExpired deletes lapsed lock rows. Expired locks are already
// logically absent; this is housekeeping for the cleanup command.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.locks.PurgeExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge expired locks: %w", err)
	}
	return n, nil
}

func statusOf(resourceID uuid.UUID, lock *domain.EditLock, now time.Time) *domain.LockStatus {
	if lock == nil || !lock.IsLive(now) {
		return &domain.LockStatus{ResourceID: resourceID}
	}
	holder := lock.LockedBy
	return &domain.LockStatus{
		ResourceID: resourceID,
		Locked:     true,
		Holder:     &holder,
		Remaining:  lock.Remaining(now),
	}
}
