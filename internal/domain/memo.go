package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Memo is the central aggregate: an authoritative record created on
// submission, or a per-recipient delivered copy created during fan-out.
// A delivered copy has OriginalMemoID set and lives its whole life in SENT.
type Memo struct {
	ID           uuid.UUID
	Kind         MemoKind
	AuthorID     uuid.UUID
	RecipientID  uuid.UUID
	RecipientIDs []uuid.UUID
	Subject      string
	Body         string
	Attachments  []Attachment
	Signatures   []SignatureBlock
	Status       MemoStatus

	// OriginalMemoID links a delivered copy to its authoritative record.
	OriginalMemoID *uuid.UUID
	// RelatedMemoID links a notification record to the memo it is about.
	RelatedMemoID *uuid.UUID

	History         []WorkflowEvent
	Acknowledgments []Acknowledgment

	CreatedAt time.Time
	// UpdatedAt doubles as the optimistic version marker: a write is
	// rejected when the caller's last-read UpdatedAt is older than this.
	UpdatedAt time.Time
}

// Attachment is binary-blob metadata carried by a memo. The blob itself is
// addressed by StorageKey; only metadata travels with the record.
type Attachment struct {
	Name        string    `json:"name"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	StorageKey  string    `json:"storageKey"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// SignatureBlock is a signature rendered into the memo footer.
type SignatureBlock struct {
	UserID uuid.UUID `json:"userId"`
	Title  string    `json:"title"`
	Image  string    `json:"image,omitempty"`
}

// WorkflowEvent is one entry in a memo's review history.
type WorkflowEvent struct {
	ID      uuid.UUID
	MemoID  uuid.UUID
	Action  WorkflowAction
	ActorID uuid.UUID
	Reason  *string
	At      time.Time
}

// Acknowledgment records that a recipient has seen a delivered copy.
type Acknowledgment struct {
	MemoID         uuid.UUID
	UserID         uuid.UUID
	AcknowledgedAt time.Time
}

// IsAuthoritative reports whether this record is the canonical memo rather
// than a delivered copy.
func (m *Memo) IsAuthoritative() bool {
	return m.OriginalMemoID == nil
}

// Recipients returns the resolved recipient set, falling back to the
// denormalized primary recipient when no explicit set was stored.
func (m *Memo) Recipients() []uuid.UUID {
	if len(m.RecipientIDs) > 0 {
		return m.RecipientIDs
	}
	if m.RecipientID != uuid.Nil {
		return []uuid.UUID{m.RecipientID}
	}
	return nil
}

// DeliveredCopy builds the per-recipient copy created during fan-out.
// The copy carries the authoritative memo's content, points back via
// OriginalMemoID, and is born SENT.
func (m *Memo) DeliveredCopy(recipientID uuid.UUID, now time.Time) Memo {
	originalID := m.ID
	return Memo{
		ID:             uuid.New(),
		Kind:           m.Kind,
		AuthorID:       m.AuthorID,
		RecipientID:    recipientID,
		Subject:        m.Subject,
		Body:           m.Body,
		Attachments:    m.Attachments,
		Signatures:     m.Signatures,
		Status:         MemoStatusSent,
		OriginalMemoID: &originalID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// MergeAcknowledgments deduplicates acknowledgments gathered from delivered
// copies by user id, keeping the earliest timestamp per user. The result is
// ordered by acknowledgment time.
func MergeAcknowledgments(acks []Acknowledgment) []Acknowledgment {
	earliest := make(map[uuid.UUID]Acknowledgment, len(acks))
	for _, a := range acks {
		prev, seen := earliest[a.UserID]
		if !seen || a.AcknowledgedAt.Before(prev.AcknowledgedAt) {
			earliest[a.UserID] = a
		}
	}

	merged := make([]Acknowledgment, 0, len(earliest))
	for _, a := range earliest {
		merged = append(merged, a)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].AcknowledgedAt.Before(merged[j].AcknowledgedAt)
	})
	return merged
}
