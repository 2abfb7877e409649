// Package outbox implements the side-effect queue repository.
// Workers claim batches with FOR UPDATE SKIP LOCKED so multiple instances
// never dispatch the same task twice.
package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/routeworks/memoflow-backend/internal/adapter/postgres"
	"github.com/routeworks/memoflow-backend/internal/domain"
)

// Repo provides outbox persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new outbox repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const taskColumns = `id, task_type, memo_id, payload, status, attempts, last_error, created_at, processed_at`

const enqueueSQL = `
INSERT INTO outbox (id, task_type, memo_id, payload, status, created_at)
VALUES ($1, $2, $3, $4, 'PENDING', now())
RETURNING ` + taskColumns

// Enqueue appends a pending task. Typically called inside the same
// transaction as the workflow transition that spawns the side effect.
func (r *Repo) Enqueue(ctx context.Context, taskType domain.OutboxTaskType, memoID uuid.UUID, payload map[string]any) (*domain.OutboxTask, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if payload == nil {
		payload = map[string]any{}
	}
	task, err := scanTask(q.QueryRow(ctx, enqueueSQL, uuid.New(), taskType, memoID, payload))
	if err != nil {
		return nil, postgres.MapError(err, "outbox task", memoID)
	}
	return task, nil
}

const claimSQL = `
SELECT ` + taskColumns + `
FROM outbox
WHERE status = 'PENDING'
ORDER BY created_at
LIMIT $1
FOR UPDATE SKIP LOCKED`

// ClaimBatch selects up to limit pending tasks, locking the rows for the
// duration of the surrounding transaction. Must run inside RunInTx.
func (r *Repo) ClaimBatch(ctx context.Context, limit int) ([]domain.OutboxTask, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, claimSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("claim outbox batch: %w", err)
	}
	defer rows.Close()

	var tasks []domain.OutboxTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outbox task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("claim outbox batch: %w", err)
	}
	return tasks, nil
}

const markProcessedSQL = `
UPDATE outbox
SET status = 'PROCESSED', attempts = attempts + 1, last_error = NULL, processed_at = now()
WHERE id = $1`

// MarkProcessed settles a task after a successful dispatch.
func (r *Repo) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := q.Exec(ctx, markProcessedSQL, id); err != nil {
		return fmt.Errorf("mark outbox task %s processed: %w", id, err)
	}
	return nil
}

const markFailedSQL = `
UPDATE outbox
SET attempts = attempts + 1,
    last_error = $2,
    status = CASE WHEN attempts + 1 >= $3 THEN 'FAILED' ELSE 'PENDING' END
WHERE id = $1`

// MarkFailed records a dispatch failure. The task stays PENDING for another
// attempt until maxAttempts is reached, then settles as FAILED.
func (r *Repo) MarkFailed(ctx context.Context, id uuid.UUID, dispatchErr string, maxAttempts int) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := q.Exec(ctx, markFailedSQL, id, dispatchErr, maxAttempts); err != nil {
		return fmt.Errorf("mark outbox task %s failed: %w", id, err)
	}
	return nil
}

const purgeSQL = `
DELETE FROM outbox
WHERE status = 'PROCESSED' AND processed_at < $1`

// PurgeProcessedBefore deletes processed tasks older than the cutoff.
func (r *Repo) PurgeProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, purgeSQL, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge outbox: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanTask(row pgx.Row) (*domain.OutboxTask, error) {
	var t domain.OutboxTask
	err := row.Scan(
		&t.ID, &t.Type, &t.MemoID, &t.Payload, &t.Status,
		&t.Attempts, &t.LastError, &t.CreatedAt, &t.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
