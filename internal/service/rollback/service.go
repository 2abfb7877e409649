package rollback

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/routeworks/memoflow-backend/internal/domain"
)

// Query defaults when the caller leaves the filter open.
const (
	DefaultQueryLimit = 50
	MaxQueryLimit     = 200
)

type ledgerRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RollbackEntry, error)
	MarkRolledBack(ctx context.Context, id, rolledBackBy uuid.UUID, reason *string) (*domain.RollbackEntry, error)
	Query(ctx context.Context, filter domain.RollbackFilter) ([]domain.RollbackEntry, error)
	PurgeSettledBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type memoStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Memo, error)
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to domain.MemoStatus) (*domain.Memo, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// Service applies manual inverses of settled operations and serves the
// audit views over the rollback log.
type Service struct {
	ledger ledgerRepo
	memos  memoStore
	log    *slog.Logger
}

func NewService(log *slog.Logger, ledger ledgerRepo, memos memoStore) *Service {
	return &Service{
		ledger: ledger,
		memos:  memos,
		log:    log.With("service", "rollback"),
	}
}

// PurgeSettledBefore removes settled ledger entries older than the cutoff.
// Used by the cleanup job; pending and failed entries are always kept.
func (s *Service) PurgeSettledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.ledger.PurgeSettledBefore(ctx, cutoff)
}
