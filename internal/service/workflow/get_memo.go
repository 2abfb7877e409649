package workflow

import (
	"context"
	"fmt"

	"github.com/routeworks/memoflow-backend/internal/domain"
	"github.com/routeworks/memoflow-backend/pkg/ctxutil"
)

// GetMemo returns a memo with its history. When the author fetches their
// authoritative record, acknowledgments recorded on all delivered copies
// are merged into the view, deduplicated per user with the earliest
// timestamp kept. The copies themselves are never modified by the merge;
// other callers see the record without the aggregated view.
func (s *Service) GetMemo(ctx context.Context, input MemoIDInput) (*domain.Memo, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	memo, err := s.memos.GetByID(ctx, input.MemoID)
	if err != nil {
		return nil, fmt.Errorf("get memo: %w", err)
	}

	callerID, ok := ctxutil.UserIDFromCtx(ctx)
	if memo.IsAuthoritative() && ok && callerID == memo.AuthorID {
		copyAcks, err := s.memos.AcknowledgmentsByOriginal(ctx, memo.ID)
		if err != nil {
			return nil, fmt.Errorf("gather acknowledgments: %w", err)
		}
		memo.Acknowledgments = domain.MergeAcknowledgments(append(memo.Acknowledgments, copyAcks...))
	}

	return memo, nil
}
