package rollback

import (
	"context"
	"fmt"
	"time"

	"github.com/routeworks/memoflow-backend/internal/domain"
)

// Query lists rollback-log entries matching the filter, newest first.
func (s *Service) Query(ctx context.Context, input QueryInput) ([]domain.RollbackEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	filter := domain.RollbackFilter{
		OperationType: input.OperationType,
		Status:        input.Status,
		Limit:         input.Limit,
		Offset:        input.Offset,
	}
	if filter.Limit == 0 {
		filter.Limit = DefaultQueryLimit
	}
	if input.SinceHours != nil {
		since := time.Now().UTC().Add(-time.Duration(*input.SinceHours) * time.Hour)
		filter.Since = &since
	}

	entries, err := s.ledger.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query rollback log: %w", err)
	}
	return entries, nil
}
