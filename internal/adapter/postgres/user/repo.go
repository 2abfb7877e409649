// Package user implements the user directory repository.
package user

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/routeworks/memoflow-backend/internal/adapter/postgres"
	"github.com/routeworks/memoflow-backend/internal/domain"
)

// Repo provides user persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new user repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type userRow struct {
	ID         uuid.UUID `db:"id"`
	Email      string    `db:"email"`
	Name       string    `db:"name"`
	Department string    `db:"department"`
	Role       string    `db:"role"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:         r.ID,
		Email:      r.Email,
		Name:       r.Name,
		Department: r.Department,
		Role:       domain.UserRole(r.Role),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

const createSQL = `
INSERT INTO users (id, email, name, department, role, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
RETURNING id, email, name, department, role, created_at, updated_at`

// Create inserts a directory entry. A duplicate email maps to
// domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	var row userRow
	err := pgxscan.Get(ctx, q, &row, createSQL, u.ID, u.Email, u.Name, u.Department, u.Role)
	if err != nil {
		return nil, postgres.MapError(err, "user", u.ID)
	}
	created := row.toDomain()
	return &created, nil
}

const getByIDSQL = `
SELECT id, email, name, department, role, created_at, updated_at
FROM users WHERE id = $1`

// GetByID returns one directory entry.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var row userRow
	if err := pgxscan.Get(ctx, q, &row, getByIDSQL, id); err != nil {
		return nil, postgres.MapError(err, "user", id)
	}
	u := row.toDomain()
	return &u, nil
}

const listByDepartmentSQL = `
SELECT id, email, name, department, role, created_at, updated_at
FROM users WHERE department = $1
ORDER BY name`

// ListByDepartment resolves a department name into its members. Used at
// submit time to freeze department recipients into an explicit id set.
func (r *Repo) ListByDepartment(ctx context.Context, department string) ([]domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var rows []userRow
	if err := pgxscan.Select(ctx, q, &rows, listByDepartmentSQL, department); err != nil {
		return nil, fmt.Errorf("list users of department %q: %w", department, err)
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users, nil
}

const updateProfileSQL = `
UPDATE users
SET name = $3, department = $4, updated_at = now()
WHERE id = $1 AND updated_at <= $2
RETURNING id, email, name, department, role, created_at, updated_at`

// UpdateProfileGuarded edits a profile under the optimistic version guard.
// A stale clientVersion yields domain.ErrConflict.
func (r *Repo) UpdateProfileGuarded(ctx context.Context, id uuid.UUID, clientVersion time.Time, name, department string) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var row userRow
	err := pgxscan.Get(ctx, q, &row, updateProfileSQL, id, clientVersion, name, department)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrConflict)
		}
		return nil, postgres.MapError(err, "user", id)
	}
	u := row.toDomain()
	return &u, nil
}
