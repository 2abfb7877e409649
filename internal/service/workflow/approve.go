package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/routeworks/memoflow-backend/internal/domain"
	"github.com/routeworks/memoflow-backend/pkg/ctxutil"
)

// Approve transitions a pending memo to approved and fans out one SENT
// copy per recipient. The whole operation runs under a rollback-ledger
// entry: copies are created first, then one conditional status update
// decides the winner among concurrent approvers. Any failure after fan-out
// begins deletes the exact prefix of copies already created, so no memo is
// ever observed approved-with-partial-delivery or pending-with-copies.
func (s *Service) Approve(ctx context.Context, input MemoIDInput) (*domain.Memo, error) {
	reviewerID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	role := domain.UserRole(ctxutil.UserRoleFromCtx(ctx))
	if !role.CanReview() {
		return nil, fmt.Errorf("role %s cannot review: %w", role, domain.ErrForbidden)
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	memo, err := s.memos.GetByID(ctx, input.MemoID)
	if err != nil {
		return nil, fmt.Errorf("get memo: %w", err)
	}
	if !domain.CanTransition(memo.Status, domain.MemoStatusApproved) {
		return nil, &domain.InvalidTransitionError{MemoID: memo.ID, From: memo.Status, To: domain.MemoStatusApproved}
	}

	payload := domain.RollbackPayload{MemoID: memo.ID, PrevStatus: memo.Status}
	entry, err := s.ledger.Open(ctx, domain.OperationTypeMemoApproval, reviewerID, payload)
	if err != nil {
		return nil, fmt.Errorf("open rollback entry: %w", err)
	}

	approved, payload, opErr := s.deliverAndFlip(ctx, memo, entry.ID, payload)
	if opErr != nil {
		return nil, s.compensate(ctx, memo.ID, reviewerID, entry.ID, payload, opErr)
	}

	if err := s.appendEvent(ctx, memo.ID, domain.WorkflowActionApproved, reviewerID, nil); err != nil {
		s.log.ErrorContext(ctx, "failed to record approved event",
			slog.String("memo_id", memo.ID.String()),
			slog.Any("error", err),
		)
	}

	if _, err := s.ledger.Settle(ctx, entry.ID, domain.RollbackStatusCompleted, payload); err != nil {
		s.log.ErrorContext(ctx, "failed to settle rollback entry",
			slog.String("entry_id", entry.ID.String()),
			slog.Any("error", err),
		)
	}

	s.enqueueSideEffects(ctx, approved, payload.CreatedCopyIDs)

	s.log.InfoContext(ctx, "memo approved",
		slog.String("memo_id", memo.ID.String()),
		slog.String("reviewer_id", reviewerID.String()),
		slog.Int("copies", len(payload.CreatedCopyIDs)),
	)

	return approved, nil
}

// deliverAndFlip creates the per-recipient copies, persisting each created
// id into the ledger payload as it lands, then applies the conditional
// status update that decides the single winner.
func (s *Service) deliverAndFlip(
	ctx context.Context,
	memo *domain.Memo,
	entryID uuid.UUID,
	payload domain.RollbackPayload,
) (*domain.Memo, domain.RollbackPayload, error) {
	now := time.Now().UTC()

	for _, recipientID := range memo.Recipients() {
		cp, err := s.memos.Create(ctx, memo.DeliveredCopy(recipientID, now))
		if err != nil {
			return nil, payload, fmt.Errorf("deliver copy to %s: %w", recipientID, err)
		}

		payload.CreatedCopyIDs = append(payload.CreatedCopyIDs, cp.ID)
		if err := s.ledger.SavePayload(ctx, entryID, payload); err != nil {
			return nil, payload, fmt.Errorf("persist ledger payload: %w", err)
		}
	}

	approved, err := s.memos.UpdateStatusFrom(ctx, memo.ID, memo.Status, domain.MemoStatusApproved)
	if err != nil {
		return nil, payload, fmt.Errorf("flip status: %w", err)
	}
	return approved, payload, nil
}

// compensate runs the inverse of a failed approval: delete the copies
// recorded in the payload, settle the ledger entry as FAILED, and when the
// inverse itself succeeded, mark it ROLLED_BACK. The returned error tells
// the caller whether the system healed itself or needs manual intervention.
func (s *Service) compensate(
	ctx context.Context,
	memoID, reviewerID, entryID uuid.UUID,
	payload domain.RollbackPayload,
	cause error,
) error {
	var rollbackErr error
	if len(payload.CreatedCopyIDs) > 0 {
		if _, err := s.memos.DeleteByIDs(ctx, payload.CreatedCopyIDs); err != nil {
			rollbackErr = fmt.Errorf("delete %d delivered copies: %w", len(payload.CreatedCopyIDs), err)
		}
	}

	if _, err := s.ledger.Settle(ctx, entryID, domain.RollbackStatusFailed, payload); err != nil {
		s.log.ErrorContext(ctx, "failed to mark rollback entry failed",
			slog.String("entry_id", entryID.String()),
			slog.Any("error", err),
		)
	}

	if rollbackErr != nil {
		s.log.ErrorContext(ctx, "approval compensation failed, manual intervention required",
			slog.String("memo_id", memoID.String()),
			slog.String("entry_id", entryID.String()),
			slog.Any("cause", cause),
			slog.Any("rollback_error", rollbackErr),
		)
		return &domain.PartialFailureError{EntryID: entryID, Cause: cause, RollbackErr: rollbackErr}
	}

	reason := "automatic compensation after failed approval"
	if _, err := s.ledger.MarkRolledBack(ctx, entryID, reviewerID, &reason); err != nil {
		s.log.ErrorContext(ctx, "failed to mark rollback entry rolled back",
			slog.String("entry_id", entryID.String()),
			slog.Any("error", err),
		)
	}

	s.log.WarnContext(ctx, "approval failed, changes compensated",
		slog.String("memo_id", memoID.String()),
		slog.String("entry_id", entryID.String()),
		slog.Any("cause", cause),
	)

	// A concurrent approver winning the conditional update surfaces as an
	// invalid transition, not a partial failure: the compensation restored
	// a consistent state and the memo simply is not pending anymore.
	if errors.Is(cause, domain.ErrInvalidTransition) {
		if current, err := s.memos.GetByID(ctx, memoID); err == nil {
			return &domain.InvalidTransitionError{MemoID: memoID, From: current.Status, To: domain.MemoStatusApproved}
		}
		return cause
	}

	return &domain.PartialFailureError{EntryID: entryID, Cause: cause}
}

// enqueueSideEffects queues the best-effort follow-ups of an approval:
// a notification per delivered copy, a calendar entry, and an offsite
// backup. Enqueue failures are logged and never undo the approval.
func (s *Service) enqueueSideEffects(ctx context.Context, memo *domain.Memo, copyIDs []uuid.UUID) {
	recipients := memo.Recipients()
	for i, copyID := range copyIDs {
		payload := map[string]any{"copyId": copyID.String()}
		if i < len(recipients) {
			payload["recipientId"] = recipients[i].String()
		}
		if _, err := s.outbox.Enqueue(ctx, domain.OutboxTaskNotification, memo.ID, payload); err != nil {
			s.log.ErrorContext(ctx, "failed to enqueue notification task",
				slog.String("memo_id", memo.ID.String()),
				slog.Any("error", err),
			)
		}
	}

	for _, taskType := range []domain.OutboxTaskType{domain.OutboxTaskCalendar, domain.OutboxTaskBackup} {
		if _, err := s.outbox.Enqueue(ctx, taskType, memo.ID, map[string]any{"subject": memo.Subject}); err != nil {
			s.log.ErrorContext(ctx, "failed to enqueue side-effect task",
				slog.String("memo_id", memo.ID.String()),
				slog.String("task_type", taskType.String()),
				slog.Any("error", err),
			)
		}
	}
}
