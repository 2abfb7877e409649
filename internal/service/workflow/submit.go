package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/routeworks/memoflow-backend/internal/domain"
	"github.com/routeworks/memoflow-backend/pkg/ctxutil"
)

// Submit creates one authoritative memo in PENDING and records the
// submitted event. No delivered copies exist until approval. Department
// recipients are resolved through the user directory now and frozen on the
// memo; later department changes do not affect it.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*domain.Memo, error) {
	authorID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	recipients, err := s.resolveRecipients(ctx, authorID, input)
	if err != nil {
		return nil, err
	}

	memo := domain.Memo{
		Kind:         domain.MemoKindMemo,
		AuthorID:     authorID,
		RecipientID:  recipients[0],
		RecipientIDs: recipients,
		Subject:      strings.TrimSpace(input.Subject),
		Body:         input.Body,
		Attachments:  input.Attachments,
		Signatures:   input.Signatures,
		Status:       domain.MemoStatusPending,
	}

	created, err := s.memos.Create(ctx, memo)
	if err != nil {
		return nil, fmt.Errorf("create memo: %w", err)
	}

	if err := s.appendEvent(ctx, created.ID, domain.WorkflowActionSubmitted, authorID, nil); err != nil {
		s.log.ErrorContext(ctx, "failed to record submitted event",
			slog.String("memo_id", created.ID.String()),
			slog.Any("error", err),
		)
	}

	s.log.InfoContext(ctx, "memo submitted",
		slog.String("memo_id", created.ID.String()),
		slog.String("author_id", authorID.String()),
		slog.Int("recipients", len(recipients)),
	)

	return created, nil
}

// resolveRecipients merges explicit ids with department expansion,
// deduplicates, and drops the author from the set.
func (s *Service) resolveRecipients(ctx context.Context, authorID uuid.UUID, input SubmitInput) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{})
	var recipients []uuid.UUID

	add := func(id uuid.UUID) {
		if id == authorID {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}

	for _, id := range input.RecipientIDs {
		add(id)
	}

	if input.Department != nil {
		dept := strings.TrimSpace(*input.Department)
		if dept != "" {
			members, err := s.users.ListByDepartment(ctx, dept)
			if err != nil {
				return nil, fmt.Errorf("resolve department %q: %w", dept, err)
			}
			for _, m := range members {
				add(m.ID)
			}
		}
	}

	if len(recipients) == 0 {
		return nil, domain.NewValidationError("recipients", "resolved recipient set is empty")
	}
	if len(recipients) > s.maxRecipients {
		return nil, domain.NewValidationError("recipients", fmt.Sprintf("max %d recipients", s.maxRecipients))
	}

	return recipients, nil
}
