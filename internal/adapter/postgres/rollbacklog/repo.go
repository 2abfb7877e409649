// Package rollbacklog implements the rollback ledger repository.
// Entries are opened before the risky part of a multi-step operation runs
// and settled afterwards, so a crash mid-operation leaves a PENDING entry
// with enough payload to finish the cleanup by hand.
package rollbacklog

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/routeworks/memoflow-backend/internal/adapter/postgres"
	"github.com/routeworks/memoflow-backend/internal/domain"
)

const defaultQueryLimit = 50

// Repo provides rollback-log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// New creates a new rollback-log repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const entryColumns = `id, operation_type, status, performed_by, rolled_back_by, reason, payload, created_at, updated_at`

const openSQL = `
INSERT INTO rollback_log (id, operation_type, status, performed_by, payload, created_at, updated_at)
VALUES ($1, $2, 'PENDING', $3, $4, now(), now())
RETURNING ` + entryColumns

// Open appends a PENDING ledger entry recording that a multi-step operation
// has begun.
func (r *Repo) Open(ctx context.Context, opType domain.OperationType, performedBy uuid.UUID, payload domain.RollbackPayload) (*domain.RollbackEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	entry, err := scanEntry(q.QueryRow(ctx, openSQL, uuid.New(), opType, performedBy, payload))
	if err != nil {
		return nil, postgres.MapError(err, "rollback entry", uuid.Nil)
	}
	return entry, nil
}

const savePayloadSQL = `
UPDATE rollback_log
SET payload = $2, updated_at = now()
WHERE id = $1 AND status = 'PENDING'`

// SavePayload replaces the payload of a still-PENDING entry. The approval
// flow calls it as copies land so the ledger would survive a crash with the
// exact prefix of created ids.
func (r *Repo) SavePayload(ctx context.Context, id uuid.UUID, payload domain.RollbackPayload) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, savePayloadSQL, id, payload)
	if err != nil {
		return postgres.MapError(err, "rollback entry", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rollback entry %s is not pending: %w", id, domain.ErrInvalidState)
	}
	return nil
}

const settleSQL = `
UPDATE rollback_log
SET status = $2, payload = $3, updated_at = now()
WHERE id = $1 AND status = 'PENDING'
RETURNING ` + entryColumns

// Settle moves a PENDING entry to COMPLETED or FAILED with its final payload.
func (r *Repo) Settle(ctx context.Context, id uuid.UUID, status domain.RollbackStatus, payload domain.RollbackPayload) (*domain.RollbackEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	entry, err := scanEntry(q.QueryRow(ctx, settleSQL, id, status, payload))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("rollback entry %s is not pending: %w", id, domain.ErrInvalidState)
		}
		return nil, postgres.MapError(err, "rollback entry", id)
	}
	return entry, nil
}

const markRolledBackSQL = `
UPDATE rollback_log
SET status = 'ROLLED_BACK', rolled_back_by = $2, reason = $3, updated_at = now()
WHERE id = $1 AND status IN ('COMPLETED', 'FAILED')
RETURNING ` + entryColumns

// MarkRolledBack settles an entry as inverted. The status guard makes a
// second rollback of the same entry fail with domain.ErrAlreadyRolledBack
// rather than run the compensation twice.
func (r *Repo) MarkRolledBack(ctx context.Context, id, rolledBackBy uuid.UUID, reason *string) (*domain.RollbackEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	entry, err := scanEntry(q.QueryRow(ctx, markRolledBackSQL, id, rolledBackBy, reason))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyRollbackRefusal(ctx, id)
		}
		return nil, postgres.MapError(err, "rollback entry", id)
	}
	return entry, nil
}

// classifyRollbackRefusal distinguishes a missing entry from one whose
// status forbids rollback.
func (r *Repo) classifyRollbackRefusal(ctx context.Context, id uuid.UUID) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == domain.RollbackStatusRolledBack {
		return fmt.Errorf("rollback entry %s: %w", id, domain.ErrAlreadyRolledBack)
	}
	return fmt.Errorf("rollback entry %s has status %s: %w", id, current.Status, domain.ErrInvalidState)
}

const getByIDSQL = `SELECT ` + entryColumns + ` FROM rollback_log WHERE id = $1`

// GetByID returns one ledger entry.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RollbackEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	entry, err := scanEntry(q.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "rollback entry", id)
	}
	return entry, nil
}

// Query lists ledger entries matching the filter, newest first.
func (r *Repo) Query(ctx context.Context, filter domain.RollbackFilter) ([]domain.RollbackEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	builder := r.sb.
		Select("id", "operation_type", "status", "performed_by", "rolled_back_by", "reason", "payload", "created_at", "updated_at").
		From("rollback_log").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(filter.Offset))

	if filter.OperationType != nil {
		builder = builder.Where(sq.Eq{"operation_type": *filter.OperationType})
	}
	if filter.Status != nil {
		builder = builder.Where(sq.Eq{"status": *filter.Status})
	}
	if filter.Since != nil {
		builder = builder.Where(sq.GtOrEq{"created_at": *filter.Since})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build rollback query: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rollback log: %w", err)
	}
	defer rows.Close()

	var entries []domain.RollbackEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rollback entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query rollback log: %w", err)
	}
	return entries, nil
}

const purgeSQL = `
DELETE FROM rollback_log
WHERE created_at < $1 AND status IN ('COMPLETED', 'ROLLED_BACK')`

// PurgeSettledBefore deletes settled entries older than the cutoff.
// PENDING and FAILED entries are kept; they may still need attention.
func (r *Repo) PurgeSettledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, purgeSQL, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge rollback log: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanEntry(row pgx.Row) (*domain.RollbackEntry, error) {
	var e domain.RollbackEntry
	err := row.Scan(
		&e.ID, &e.OperationType, &e.Status, &e.PerformedBy,
		&e.RolledBackBy, &e.Reason, &e.Payload, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
