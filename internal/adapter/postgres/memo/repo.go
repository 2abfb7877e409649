// Package memo implements the memo repository using PostgreSQL.
// It persists authoritative records, delivered copies, workflow history,
// and acknowledgments. Status transitions and guarded content writes are
// conditional single-statement updates; the datastore is the final arbiter
// of write safety, not the advisory edit lock.
package memo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/routeworks/memoflow-backend/internal/adapter/postgres"
	"github.com/routeworks/memoflow-backend/internal/domain"
)

// Repo provides memo persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new memo repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const memoColumns = `id, kind, author_id, recipient_id, recipient_ids, subject, body,
	attachments, signatures, status, original_memo_id, related_memo_id, created_at, updated_at`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

const createSQL = `
INSERT INTO memos (id, kind, author_id, recipient_id, recipient_ids, subject, body,
	attachments, signatures, status, original_memo_id, related_memo_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING ` + memoColumns

// Create inserts a memo row: an authoritative record, a delivered copy, or
// a system-generated notification riding the same shape.
func (r *Repo) Create(ctx context.Context, m domain.Memo) (*domain.Memo, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now
	}
	if m.Attachments == nil {
		m.Attachments = []domain.Attachment{}
	}
	if m.Signatures == nil {
		m.Signatures = []domain.SignatureBlock{}
	}
	if m.RecipientIDs == nil {
		m.RecipientIDs = []uuid.UUID{}
	}

	row := q.QueryRow(ctx, createSQL,
		m.ID, m.Kind, m.AuthorID, m.RecipientID, m.RecipientIDs, m.Subject, m.Body,
		m.Attachments, m.Signatures, m.Status, m.OriginalMemoID, m.RelatedMemoID,
		m.CreatedAt, m.UpdatedAt,
	)
	created, err := scanMemo(row)
	if err != nil {
		return nil, postgres.MapError(err, "memo", m.ID)
	}
	return created, nil
}

const updateStatusSQL = `
UPDATE memos
SET status = $3, updated_at = now()
WHERE id = $1 AND status = $2
RETURNING ` + memoColumns

// UpdateStatusFrom atomically moves a memo from one status to another.
// The WHERE clause on the current status is the single-winner guard for
// concurrent transitions: the loser gets domain.ErrInvalidTransition.
func (r *Repo) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to domain.MemoStatus) (*domain.Memo, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	updated, err := scanMemo(q.QueryRow(ctx, updateStatusSQL, id, from, to))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("memo %s: status %s -> %s: %w", id, from, to, domain.ErrInvalidTransition)
		}
		return nil, postgres.MapError(err, "memo", id)
	}
	return updated, nil
}

const updateContentSQL = `
UPDATE memos
SET subject = $3, body = $4, updated_at = now()
WHERE id = $1 AND updated_at <= $2
RETURNING ` + memoColumns

// UpdateContentGuarded applies a content edit only when the stored version
// is not newer than the version the caller read (the optimistic guard).
// A stale version yields domain.ErrConflict; the caller decorates it with
// the current version and lock holder.
func (r *Repo) UpdateContentGuarded(ctx context.Context, id uuid.UUID, clientVersion time.Time, subject, body string) (*domain.Memo, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	updated, err := scanMemo(q.QueryRow(ctx, updateContentSQL, id, clientVersion, subject, body))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("memo %s: %w", id, domain.ErrConflict)
		}
		return nil, postgres.MapError(err, "memo", id)
	}
	return updated, nil
}

const deleteByIDsSQL = `DELETE FROM memos WHERE id = ANY($1)`

// DeleteByIDs removes the given memo rows if they exist. Used by
// compensating rollback to delete delivered copies; deleting ids that are
// already gone is a no-op, which keeps rollback idempotent.
func (r *Repo) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deleteByIDsSQL, ids)
	if err != nil {
		return 0, fmt.Errorf("delete memos: %w", err)
	}
	return tag.RowsAffected(), nil
}

const appendEventSQL = `
INSERT INTO memo_workflow_events (id, memo_id, action, actor_id, reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

// AppendEvent adds one entry to a memo's workflow history.
func (r *Repo) AppendEvent(ctx context.Context, e domain.WorkflowEvent) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	if _, err := q.Exec(ctx, appendEventSQL, e.ID, e.MemoID, e.Action, e.ActorID, e.Reason, e.At); err != nil {
		return postgres.MapError(err, "workflow_event", e.MemoID)
	}
	return nil
}

const acknowledgeSQL = `
INSERT INTO memo_acknowledgments (memo_id, user_id, acknowledged_at)
VALUES ($1, $2, $3)`

// Acknowledge records that a user has seen a delivered copy. The composite
// primary key rejects a second acknowledgment by the same user with
// domain.ErrAlreadyExists.
func (r *Repo) Acknowledge(ctx context.Context, memoID, userID uuid.UUID, at time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := q.Exec(ctx, acknowledgeSQL, memoID, userID, at); err != nil {
		return postgres.MapError(err, "acknowledgment", memoID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

const getByIDSQL = `SELECT ` + memoColumns + ` FROM memos WHERE id = $1`

// GetByID returns a memo with its workflow history and direct
// acknowledgments loaded.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Memo, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	m, err := scanMemo(q.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "memo", id)
	}

	if m.History, err = r.eventsByMemo(ctx, id); err != nil {
		return nil, err
	}
	if m.Acknowledgments, err = r.acksByMemo(ctx, id); err != nil {
		return nil, err
	}

	return m, nil
}

const copiesByOriginalSQL = `SELECT ` + memoColumns + ` FROM memos WHERE original_memo_id = $1 ORDER BY created_at`

// CopiesByOriginal returns all delivered copies of an authoritative memo.
func (r *Repo) CopiesByOriginal(ctx context.Context, originalID uuid.UUID) ([]domain.Memo, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, copiesByOriginalSQL, originalID)
	if err != nil {
		return nil, fmt.Errorf("copies of memo %s: %w", originalID, err)
	}
	defer rows.Close()

	var copies []domain.Memo
	for rows.Next() {
		m, err := scanMemo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan copy of memo %s: %w", originalID, err)
		}
		copies = append(copies, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("copies of memo %s: %w", originalID, err)
	}
	return copies, nil
}

const acksByOriginalSQL = `
SELECT a.memo_id, a.user_id, a.acknowledged_at
FROM memo_acknowledgments a
JOIN memos m ON m.id = a.memo_id
WHERE m.original_memo_id = $1
ORDER BY a.acknowledged_at`

// AcknowledgmentsByOriginal gathers acknowledgments recorded on every
// delivered copy of an authoritative memo, un-deduplicated. The service
// layer merges them per user.
func (r *Repo) AcknowledgmentsByOriginal(ctx context.Context, originalID uuid.UUID) ([]domain.Acknowledgment, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, acksByOriginalSQL, originalID)
	if err != nil {
		return nil, fmt.Errorf("acknowledgments of memo %s: %w", originalID, err)
	}
	defer rows.Close()

	var acks []domain.Acknowledgment
	for rows.Next() {
		var a domain.Acknowledgment
		if err := rows.Scan(&a.MemoID, &a.UserID, &a.AcknowledgedAt); err != nil {
			return nil, fmt.Errorf("scan acknowledgment: %w", err)
		}
		acks = append(acks, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("acknowledgments of memo %s: %w", originalID, err)
	}
	return acks, nil
}

const eventsByMemoSQL = `
SELECT id, memo_id, action, actor_id, reason, created_at
FROM memo_workflow_events
WHERE memo_id = $1
ORDER BY created_at`

func (r *Repo) eventsByMemo(ctx context.Context, memoID uuid.UUID) ([]domain.WorkflowEvent, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, eventsByMemoSQL, memoID)
	if err != nil {
		return nil, fmt.Errorf("events of memo %s: %w", memoID, err)
	}
	defer rows.Close()

	var events []domain.WorkflowEvent
	for rows.Next() {
		var e domain.WorkflowEvent
		if err := rows.Scan(&e.ID, &e.MemoID, &e.Action, &e.ActorID, &e.Reason, &e.At); err != nil {
			return nil, fmt.Errorf("scan workflow event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("events of memo %s: %w", memoID, err)
	}
	return events, nil
}

const acksByMemoSQL = `
SELECT memo_id, user_id, acknowledged_at
FROM memo_acknowledgments
WHERE memo_id = $1
ORDER BY acknowledged_at`

func (r *Repo) acksByMemo(ctx context.Context, memoID uuid.UUID) ([]domain.Acknowledgment, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, acksByMemoSQL, memoID)
	if err != nil {
		return nil, fmt.Errorf("acknowledgments of memo %s: %w", memoID, err)
	}
	defer rows.Close()

	var acks []domain.Acknowledgment
	for rows.Next() {
		var a domain.Acknowledgment
		if err := rows.Scan(&a.MemoID, &a.UserID, &a.AcknowledgedAt); err != nil {
			return nil, fmt.Errorf("scan acknowledgment: %w", err)
		}
		acks = append(acks, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("acknowledgments of memo %s: %w", memoID, err)
	}
	return acks, nil
}

// ---------------------------------------------------------------------------
// Row mapping
// ---------------------------------------------------------------------------

func scanMemo(row pgx.Row) (*domain.Memo, error) {
	var m domain.Memo
	err := row.Scan(
		&m.ID, &m.Kind, &m.AuthorID, &m.RecipientID, &m.RecipientIDs,
		&m.Subject, &m.Body, &m.Attachments, &m.Signatures, &m.Status,
		&m.OriginalMemoID, &m.RelatedMemoID, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
