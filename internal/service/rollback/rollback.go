package rollback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/routeworks/memoflow-backend/internal/domain"
	"github.com/routeworks/memoflow-backend/pkg/ctxutil"
)

// Rollback manually inverts a settled approval: delete the delivered
// copies recorded in the entry payload and restore the authoritative
// memo's prior status. Only completed and failed entries qualify. The
// inverse is idempotent with respect to the copies (already-deleted ids
// are simply absent), but a failed inverse write is loud: the entry stays
// in its current status so the operation can be retried.
func (s *Service) Rollback(ctx context.Context, input RollbackInput) (*domain.RollbackEntry, error) {
	actorID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	role := domain.UserRole(ctxutil.UserRoleFromCtx(ctx))
	if !role.IsAdmin() {
		return nil, fmt.Errorf("role %s cannot roll back operations: %w", role, domain.ErrForbidden)
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.ledger.GetByID(ctx, input.EntryID)
	if err != nil {
		return nil, fmt.Errorf("get rollback entry: %w", err)
	}
	switch {
	case entry.Status == domain.RollbackStatusRolledBack:
		return nil, fmt.Errorf("entry %s: %w", entry.ID, domain.ErrAlreadyRolledBack)
	case !entry.CanRollBack():
		return nil, fmt.Errorf("entry %s is %s: %w", entry.ID, entry.Status, domain.ErrInvalidState)
	}

	if err := s.invert(ctx, entry); err != nil {
		s.log.ErrorContext(ctx, "rollback inverse failed",
			slog.String("entry_id", entry.ID.String()),
			slog.Any("error", err),
		)
		return nil, err
	}

	var reason *string
	if input.Reason != "" {
		reason = &input.Reason
	}
	rolled, err := s.ledger.MarkRolledBack(ctx, entry.ID, actorID, reason)
	if err != nil {
		return nil, fmt.Errorf("mark rolled back: %w", err)
	}

	s.log.InfoContext(ctx, "operation rolled back",
		slog.String("entry_id", entry.ID.String()),
		slog.String("actor_id", actorID.String()),
		slog.Int("copies_deleted", len(entry.Payload.CreatedCopyIDs)),
	)

	return rolled, nil
}

// invert applies the inverse writes recorded in the entry payload. For a
// failed entry the status flip may never have happened; in that case the
// conditional update finds no row and the current status is checked
// against the recorded prior status instead.
func (s *Service) invert(ctx context.Context, entry *domain.RollbackEntry) error {
	payload := entry.Payload

	if len(payload.CreatedCopyIDs) > 0 {
		deleted, err := s.memos.DeleteByIDs(ctx, payload.CreatedCopyIDs)
		if err != nil {
			return fmt.Errorf("delete %d delivered copies: %w", len(payload.CreatedCopyIDs), err)
		}
		if deleted < int64(len(payload.CreatedCopyIDs)) {
			s.log.WarnContext(ctx, "some delivered copies were already gone",
				slog.String("entry_id", entry.ID.String()),
				slog.Int64("deleted", deleted),
				slog.Int("recorded", len(payload.CreatedCopyIDs)),
			)
		}
	}

	_, err := s.memos.UpdateStatusFrom(ctx, payload.MemoID, domain.MemoStatusApproved, payload.PrevStatus)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrInvalidTransition) {
		return fmt.Errorf("restore memo status: %w", err)
	}

	current, getErr := s.memos.GetByID(ctx, payload.MemoID)
	if getErr != nil {
		return fmt.Errorf("restore memo status: %w", err)
	}
	if current.Status != payload.PrevStatus {
		return fmt.Errorf("memo %s is %s, expected %s or %s: %w",
			payload.MemoID, current.Status, domain.MemoStatusApproved, payload.PrevStatus, domain.ErrInvalidState)
	}
	return nil
}
