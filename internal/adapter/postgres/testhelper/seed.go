package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/routeworks/memoflow-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser creates a directory user with the given role. Returns a filled domain.User.
func SeedUser(t *testing.T, pool *pgxpool.Pool, role domain.UserRole) domain.User {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := domain.User{
		ID:         uuid.New(),
		Email:      "testuser-" + suffix + "@example.com",
		Name:       "Test User " + suffix,
		Department: "dept-" + suffix,
		Role:       role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, email, name, department, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.Name, user.Department, string(user.Role), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser insert user: %v", err)
	}

	return user
}

// SeedMemo creates an authoritative memo in the given status, authored by
// authorID and addressed to the given recipients. Returns a filled domain.Memo.
func SeedMemo(t *testing.T, pool *pgxpool.Pool, authorID uuid.UUID, status domain.MemoStatus, recipients ...uuid.UUID) domain.Memo {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)

	primary := uuid.Nil
	if len(recipients) > 0 {
		primary = recipients[0]
	} else {
		primary = uuid.New()
		recipients = []uuid.UUID{primary}
	}

	memo := domain.Memo{
		ID:           uuid.New(),
		Kind:         domain.MemoKindMemo,
		AuthorID:     authorID,
		RecipientID:  primary,
		RecipientIDs: recipients,
		Subject:      "Test memo " + suffix,
		Body:         "Body of test memo " + suffix,
		Attachments:  []domain.Attachment{},
		Signatures:   []domain.SignatureBlock{},
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO memos (id, kind, author_id, recipient_id, recipient_ids, subject, body,
		    attachments, signatures, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		memo.ID, string(memo.Kind), memo.AuthorID, memo.RecipientID, memo.RecipientIDs,
		memo.Subject, memo.Body, memo.Attachments, memo.Signatures, string(memo.Status),
		memo.CreatedAt, memo.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedMemo insert memo: %v", err)
	}

	return memo
}

// SeedDeliveredCopy creates a SENT copy of the given memo for one recipient.
func SeedDeliveredCopy(t *testing.T, pool *pgxpool.Pool, original domain.Memo, recipientID uuid.UUID) domain.Memo {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	cp := original.DeliveredCopy(recipientID, now)

	_, err := pool.Exec(ctx,
		`INSERT INTO memos (id, kind, author_id, recipient_id, recipient_ids, subject, body,
		    attachments, signatures, status, original_memo_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		cp.ID, string(cp.Kind), cp.AuthorID, cp.RecipientID, []uuid.UUID{}, cp.Subject, cp.Body,
		[]domain.Attachment{}, []domain.SignatureBlock{}, string(cp.Status), cp.OriginalMemoID,
		cp.CreatedAt, cp.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedDeliveredCopy insert copy: %v", err)
	}

	return cp
}
