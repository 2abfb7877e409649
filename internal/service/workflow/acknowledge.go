package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/routeworks/memoflow-backend/internal/domain"
	"github.com/routeworks/memoflow-backend/pkg/ctxutil"
)

// Acknowledge records that the calling recipient has seen their delivered
// copy. At most one acknowledgment per user per copy; a duplicate fails
// with domain.ErrAlreadyExists.
func (s *Service) Acknowledge(ctx context.Context, input MemoIDInput) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return err
	}

	memo, err := s.memos.GetByID(ctx, input.MemoID)
	if err != nil {
		return fmt.Errorf("get memo: %w", err)
	}
	if memo.IsAuthoritative() {
		return domain.NewValidationError("memo_id", "acknowledgments are recorded on delivered copies")
	}
	if memo.RecipientID != userID {
		return fmt.Errorf("copy %s belongs to another recipient: %w", memo.ID, domain.ErrForbidden)
	}

	if err := s.memos.Acknowledge(ctx, memo.ID, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("acknowledge copy: %w", err)
	}

	s.log.InfoContext(ctx, "copy acknowledged",
		slog.String("copy_id", memo.ID.String()),
		slog.String("user_id", userID.String()),
	)

	return nil
}
