package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a directory entry: memo author, recipient, or reviewer.
type User struct {
	ID         uuid.UUID
	Email      string
	Name       string
	Department string
	Role       UserRole
	CreatedAt  time.Time
	// UpdatedAt is the optimistic version marker for profile edits.
	UpdatedAt time.Time
}
