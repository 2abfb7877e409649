// Package editlock implements the lock store using PostgreSQL.
// Every operation is a single conditional statement, so two acquirers racing
// for the same expired lock cannot both succeed. The upsert's WHERE clause
// is the atomicity boundary, not an application-level check.
package editlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/routeworks/memoflow-backend/internal/domain"
)

// DB is the subset of pgxpool.Pool the repository needs. It is satisfied by
// both *pgxpool.Pool and pgxmock for unit tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo provides edit-lock persistence backed by PostgreSQL.
// Lock statements never join a surrounding transaction: a lock taken inside
// an uncommitted tx would be invisible to other editors.
type Repo struct {
	db DB
}

// New creates a new edit-lock repository.
func New(db DB) *Repo {
	return &Repo{db: db}
}

const acquireSQL = `
INSERT INTO edit_locks (resource_id, locked_by, lock_time, expires_at)
VALUES ($1, $2, now(), now() + make_interval(secs => $3))
ON CONFLICT (resource_id) DO UPDATE
SET locked_by  = EXCLUDED.locked_by,
    lock_time  = EXCLUDED.lock_time,
    expires_at = EXCLUDED.expires_at
WHERE edit_locks.expires_at <= now() OR edit_locks.locked_by = EXCLUDED.locked_by
RETURNING resource_id, locked_by, lock_time, expires_at`

// Acquire takes or renews the lock on a resource. A live lock held by the
// same actor is renewed; a live lock held by another actor yields a
// *domain.LockedError with the holder and remaining lease.
func (r *Repo) Acquire(ctx context.Context, resourceID, actorID uuid.UUID, ttl time.Duration) (*domain.EditLock, error) {
	// Two passes: if the conditional upsert loses to a live lock we read it
	// to report holder and remaining time; if that lock expired in between,
	// a second upsert attempt settles the race.
	for range 2 {
		lock, err := r.scanLock(r.db.QueryRow(ctx, acquireSQL, resourceID, actorID, ttl.Seconds()))
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("acquire lock %s: %w", resourceID, err)
		}

		current, getErr := r.Get(ctx, resourceID)
		if getErr != nil {
			if errors.Is(getErr, domain.ErrNotFound) {
				continue // lock vanished, retry the upsert
			}
			return nil, getErr
		}
		now := time.Now()
		if current.IsLive(now) {
			return nil, &domain.LockedError{
				ResourceID: resourceID,
				Holder:     current.LockedBy,
				Remaining:  current.Remaining(now),
			}
		}
		// Expired between the upsert and the read; retry.
	}
	return nil, fmt.Errorf("acquire lock %s: %w", resourceID, domain.ErrConflict)
}

const refreshSQL = `
UPDATE edit_locks
SET expires_at = now() + make_interval(secs => $3)
WHERE resource_id = $1 AND locked_by = $2 AND expires_at > now()
RETURNING resource_id, locked_by, lock_time, expires_at`

// Refresh extends a live lock held by actorID. Returns domain.ErrLockExpired
// when no live lock exists (the caller must re-acquire) and a
// *domain.LockedError when another actor holds the lock.
func (r *Repo) Refresh(ctx context.Context, resourceID, actorID uuid.UUID, ttl time.Duration) (*domain.EditLock, error) {
	lock, err := r.scanLock(r.db.QueryRow(ctx, refreshSQL, resourceID, actorID, ttl.Seconds()))
	if err == nil {
		return lock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("refresh lock %s: %w", resourceID, err)
	}

	current, getErr := r.Get(ctx, resourceID)
	if getErr != nil {
		if errors.Is(getErr, domain.ErrNotFound) {
			return nil, fmt.Errorf("refresh lock %s: %w", resourceID, domain.ErrLockExpired)
		}
		return nil, getErr
	}
	now := time.Now()
	if current.IsLive(now) && current.LockedBy != actorID {
		return nil, &domain.LockedError{
			ResourceID: resourceID,
			Holder:     current.LockedBy,
			Remaining:  current.Remaining(now),
		}
	}
	return nil, fmt.Errorf("refresh lock %s: %w", resourceID, domain.ErrLockExpired)
}

const releaseSQL = `
DELETE FROM edit_locks
WHERE resource_id = $1 AND (locked_by = $2 OR expires_at <= now())`

// Release drops the lock. Releasing an absent or expired lock is a no-op
// success; a non-owner releasing a live lock gets a *domain.LockedError.
func (r *Repo) Release(ctx context.Context, resourceID, actorID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, releaseSQL, resourceID, actorID); err != nil {
		return fmt.Errorf("release lock %s: %w", resourceID, err)
	}

	// The DELETE is a no-op both when the lock is absent (fine) and when a
	// live lock belongs to someone else (an error). Distinguish by reading.
	current, err := r.Get(ctx, resourceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	now := time.Now()
	if current.IsLive(now) && current.LockedBy != actorID {
		return &domain.LockedError{
			ResourceID: resourceID,
			Holder:     current.LockedBy,
			Remaining:  current.Remaining(now),
		}
	}
	return nil
}

const getSQL = `
SELECT resource_id, locked_by, lock_time, expires_at
FROM edit_locks
WHERE resource_id = $1`

// Get returns the stored lock row regardless of liveness.
// domain.ErrNotFound means no row exists at all.
func (r *Repo) Get(ctx context.Context, resourceID uuid.UUID) (*domain.EditLock, error) {
	lock, err := r.scanLock(r.db.QueryRow(ctx, getSQL, resourceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("lock %s: %w", resourceID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get lock %s: %w", resourceID, err)
	}
	return lock, nil
}

// GetBatch returns the stored lock rows for the given resources, keyed by
// resource id. Resources without a row are simply absent from the map.
func (r *Repo) GetBatch(ctx context.Context, resourceIDs []uuid.UUID) (map[uuid.UUID]domain.EditLock, error) {
	if len(resourceIDs) == 0 {
		return map[uuid.UUID]domain.EditLock{}, nil
	}

	query, args, err := squirrel.
		Select("resource_id", "locked_by", "lock_time", "expires_at").
		From("edit_locks").
		Where(squirrel.Eq{"resource_id": resourceIDs}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build batch lock query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("batch lock query: %w", err)
	}
	defer rows.Close()

	locks := make(map[uuid.UUID]domain.EditLock, len(resourceIDs))
	for rows.Next() {
		var l domain.EditLock
		if err := rows.Scan(&l.ResourceID, &l.LockedBy, &l.LockTime, &l.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan lock row: %w", err)
		}
		locks[l.ResourceID] = l
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("batch lock rows: %w", err)
	}

	return locks, nil
}

const purgeExpiredSQL = `DELETE FROM edit_locks WHERE expires_at <= now()`

// PurgeExpired garbage-collects expired rows. Correctness never depends on
// this, since expired locks are logically absent; it only keeps the table small.
func (r *Repo) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, purgeExpiredSQL)
	if err != nil {
		return 0, fmt.Errorf("purge expired locks: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) scanLock(row pgx.Row) (*domain.EditLock, error) {
	var l domain.EditLock
	if err := row.Scan(&l.ResourceID, &l.LockedBy, &l.LockTime, &l.ExpiresAt); err != nil {
		return nil, err
	}
	return &l, nil
}
