package editlock

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/routeworks/memoflow-backend/internal/domain"
	"github.com/routeworks/memoflow-backend/pkg/ctxutil"
)

// Acquire takes the edit lock on a resource for the calling user. A live
// lock held by someone else fails with domain.LockedError; re-acquiring
// one's own lock renews the lease.
func (s *Service) Acquire(ctx context.Context, input LockInput) (*domain.EditLock, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	lock, err := s.locks.Acquire(ctx, input.ResourceID, userID, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	s.publish(domain.LockEventAcquired, input.ResourceID, userID)

	s.log.InfoContext(ctx, "lock acquired",
		slog.String("resource_id", input.ResourceID.String()),
		slog.String("user_id", userID.String()),
		slog.Time("expires_at", lock.ExpiresAt),
	)

	return lock, nil
}

// Refresh extends the lease on a lock the calling user already holds.
// A lapsed lease fails with domain.ErrLockExpired even when nobody else
// has taken the lock yet; the caller must re-acquire.
func (s *Service) Refresh(ctx context.Context, input LockInput) (*domain.EditLock, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	lock, err := s.locks.Refresh(ctx, input.ResourceID, userID, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("refresh lock: %w", err)
	}

	s.publish(domain.LockEventRefresh, input.ResourceID, userID)

	return lock, nil
}

// Release gives the lock up. Releasing a lock one does not hold is a no-op,
// not an error, so stale clients can always "clean up" safely.
func (s *Service) Release(ctx context.Context, input LockInput) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return err
	}

	if err := s.locks.Release(ctx, input.ResourceID, userID); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}

	s.publish(domain.LockEventReleased, input.ResourceID, userID)

	s.log.InfoContext(ctx, "lock released",
		slog.String("resource_id", input.ResourceID.String()),
		slog.String("user_id", userID.String()),
	)

	return nil
}
