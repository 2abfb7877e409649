package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/routeworks/memoflow-backend/internal/domain"
	"github.com/routeworks/memoflow-backend/pkg/ctxutil"
)

// EditMemo applies a content edit to a draft or pending memo. Two layers
// guard the write: the caller must hold the live edit lock on the memo,
// and the conditional update rejects any version older than the stored
// one. A stale version returns *ConflictError carrying the current version
// and, when known, the current lock holder.
func (s *Service) EditMemo(ctx context.Context, input EditMemoInput) (*domain.Memo, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	memo, err := s.memos.GetByID(ctx, input.MemoID)
	if err != nil {
		return nil, fmt.Errorf("get memo: %w", err)
	}
	if memo.AuthorID != userID {
		return nil, fmt.Errorf("memo %s belongs to another author: %w", memo.ID, domain.ErrForbidden)
	}
	if memo.Status != domain.MemoStatusDraft && memo.Status != domain.MemoStatusPending {
		return nil, domain.NewValidationError("status", "only draft or pending memos can be edited")
	}

	if err := s.checkEditLock(ctx, memo.ID, userID); err != nil {
		return nil, err
	}

	updated, err := s.memos.UpdateContentGuarded(ctx, memo.ID, input.Version, strings.TrimSpace(input.Subject), input.Body)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, s.buildConflict(ctx, memo.ID)
		}
		return nil, fmt.Errorf("edit memo: %w", err)
	}

	if err := s.appendEvent(ctx, memo.ID, domain.WorkflowActionEdited, userID, nil); err != nil {
		s.log.ErrorContext(ctx, "failed to record edited event",
			slog.String("memo_id", memo.ID.String()),
			slog.Any("error", err),
		)
	}

	s.bus.Publish(domain.LockEvent{
		Type:       domain.LockEventEdited,
		ResourceID: memo.ID,
		ActorID:    userID,
		At:         time.Now().UTC(),
	})

	return updated, nil
}

// checkEditLock enforces the lock discipline on edits: the caller must
// hold a live lock on the memo. Someone else's live lock is a 423-style
// refusal; no live lock at all means the caller skipped acquisition.
func (s *Service) checkEditLock(ctx context.Context, memoID, userID uuid.UUID) error {
	lock, err := s.locks.Get(ctx, memoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidationError("lock", "acquire the edit lock before editing")
		}
		return fmt.Errorf("check edit lock: %w", err)
	}

	now := time.Now()
	if !lock.IsLive(now) {
		return domain.NewValidationError("lock", "acquire the edit lock before editing")
	}
	if lock.LockedBy != userID {
		return &domain.LockedError{ResourceID: memoID, Holder: lock.LockedBy, Remaining: lock.Remaining(now)}
	}
	return nil
}

// buildConflict re-reads the memo to report the version the caller lost
// to, annotated with whoever holds the edit lock right now.
func (s *Service) buildConflict(ctx context.Context, memoID uuid.UUID) error {
	conflict := &domain.ConflictError{ResourceID: memoID}

	if current, err := s.memos.GetByID(ctx, memoID); err == nil {
		conflict.CurrentVersion = current.UpdatedAt
	}
	if lock, err := s.locks.Get(ctx, memoID); err == nil && lock.IsLive(time.Now()) {
		holder := lock.LockedBy
		conflict.CurrentHolder = &holder
	}

	return conflict
}
