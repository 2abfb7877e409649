package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/routeworks/memoflow-backend/internal/domain"
	"github.com/routeworks/memoflow-backend/pkg/ctxutil"
)

// Reject moves a pending memo to rejected, with an optional reason. No
// copies are created and none are touched. The author notification is
// queued best-effort; its failure never undoes the rejection.
func (s *Service) Reject(ctx context.Context, input RejectInput) (*domain.Memo, error) {
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
	if !domain.CanTransition(memo.Status, domain.MemoStatusRejected) {
		return nil, &domain.InvalidTransitionError{MemoID: memo.ID, From: memo.Status, To: domain.MemoStatusRejected}
	}

	rejected, err := s.memos.UpdateStatusFrom(ctx, memo.ID, memo.Status, domain.MemoStatusRejected)
	if err != nil {
		return nil, fmt.Errorf("reject memo: %w", err)
	}

	var reason *string
	if strings.TrimSpace(input.Reason) != "" {
		reason = &input.Reason
	}
	if err := s.appendEvent(ctx, memo.ID, domain.WorkflowActionRejected, reviewerID, reason); err != nil {
		s.log.ErrorContext(ctx, "failed to record rejected event",
			slog.String("memo_id", memo.ID.String()),
			slog.Any("error", err),
		)
	}

	if _, err := s.outbox.Enqueue(ctx, domain.OutboxTaskNotification, memo.ID, map[string]any{
		"event":       "rejected",
		"recipientId": memo.AuthorID.String(),
		"reason":      input.Reason,
	}); err != nil {
		s.log.ErrorContext(ctx, "failed to enqueue rejection notification",
			slog.String("memo_id", memo.ID.String()),
			slog.Any("error", err),
		)
	}

	s.log.InfoContext(ctx, "memo rejected",
		slog.String("memo_id", memo.ID.String()),
		slog.String("reviewer_id", reviewerID.String()),
	)

	return rejected, nil
}
