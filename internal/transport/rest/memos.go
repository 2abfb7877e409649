package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/routeworks/memoflow-backend/internal/domain"
	"github.com/routeworks/memoflow-backend/internal/service/workflow"
)

// workflowService defines the minimal interface needed by MemoHandler.
type workflowService interface {
	Submit(ctx context.Context, input workflow.SubmitInput) (*domain.Memo, error)
	GetMemo(ctx context.Context, input workflow.MemoIDInput) (*domain.Memo, error)
	EditMemo(ctx context.Context, input workflow.EditMemoInput) (*domain.Memo, error)
	Approve(ctx context.Context, input workflow.MemoIDInput) (*domain.Memo, error)
	Reject(ctx context.Context, input workflow.RejectInput) (*domain.Memo, error)
	Acknowledge(ctx context.Context, input workflow.MemoIDInput) error
}

// MemoHandler serves memo workflow REST endpoints.
type MemoHandler struct {
	svc workflowService
	log *slog.Logger
}

// NewMemoHandler creates a MemoHandler.
func NewMemoHandler(svc workflowService, logger *slog.Logger) *MemoHandler {
	return &MemoHandler{svc: svc, log: logger.With("handler", "memos")}
}

type submitRequest struct {
	Subject      string                  `json:"subject"`
	Body         string                  `json:"body"`
	RecipientIDs []uuid.UUID             `json:"recipientIds"`
	Department   *string                 `json:"department,omitempty"`
	Attachments  []domain.Attachment     `json:"attachments,omitempty"`
	Signatures   []domain.SignatureBlock `json:"signatures,omitempty"`
}

type editRequest struct {
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Version time.Time `json:"version"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type memoResponse struct {
	ID              uuid.UUID               `json:"id"`
	Kind            string                  `json:"kind"`
	AuthorID        uuid.UUID               `json:"authorId"`
	RecipientIDs    []uuid.UUID             `json:"recipientIds"`
	Subject         string                  `json:"subject"`
	Body            string                  `json:"body"`
	Attachments     []domain.Attachment     `json:"attachments,omitempty"`
	Signatures      []domain.SignatureBlock `json:"signatures,omitempty"`
	Status          string                  `json:"status"`
	OriginalMemoID  *uuid.UUID              `json:"originalMemoId,omitempty"`
	History         []eventResponse         `json:"history,omitempty"`
	Acknowledgments []ackResponse           `json:"acknowledgments,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

type eventResponse struct {
	Action  string    `json:"action"`
	ActorID uuid.UUID `json:"actorId"`
	Reason  *string   `json:"reason,omitempty"`
	At      time.Time `json:"at"`
}

type ackResponse struct {
	UserID         uuid.UUID `json:"userId"`
	AcknowledgedAt time.Time `json:"acknowledgedAt"`
}

// Submit handles POST /api/memos.
func (h *MemoHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	memo, err := h.svc.Submit(r.Context(), workflow.SubmitInput{
		Subject:      req.Subject,
		Body:         req.Body,
		RecipientIDs: req.RecipientIDs,
		Department:   req.Department,
		Attachments:  req.Attachments,
		Signatures:   req.Signatures,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMemoResponse(memo))
}

// Get handles GET /api/memos/{id}. For authoritative memos the response
// carries the acknowledgment view merged from every delivered copy.
func (h *MemoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	memo, err := h.svc.GetMemo(r.Context(), workflow.MemoIDInput{MemoID: id})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemoResponse(memo))
}

// Edit handles PATCH /api/memos/{id}.
func (h *MemoHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	memo, err := h.svc.EditMemo(r.Context(), workflow.EditMemoInput{
		MemoID:  id,
		Version: req.Version,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemoResponse(memo))
}

// Approve handles POST /api/memos/{id}/approve.
func (h *MemoHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	memo, err := h.svc.Approve(r.Context(), workflow.MemoIDInput{MemoID: id})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemoResponse(memo))
}

// Reject handles POST /api/memos/{id}/reject.
func (h *MemoHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	memo, err := h.svc.Reject(r.Context(), workflow.RejectInput{MemoID: id, Reason: req.Reason})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemoResponse(memo))
}

// Acknowledge handles POST /api/memos/{id}/acknowledge.
func (h *MemoHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Acknowledge(r.Context(), workflow.MemoIDInput{MemoID: id}); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}

func toMemoResponse(m *domain.Memo) memoResponse {
	resp := memoResponse{
		ID:             m.ID,
		Kind:           m.Kind.String(),
		AuthorID:       m.AuthorID,
		RecipientIDs:   m.Recipients(),
		Subject:        m.Subject,
		Body:           m.Body,
		Attachments:    m.Attachments,
		Signatures:     m.Signatures,
		Status:         m.Status.String(),
		OriginalMemoID: m.OriginalMemoID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	for _, e := range m.History {
		resp.History = append(resp.History, eventResponse{
			Action:  e.Action.String(),
			ActorID: e.ActorID,
			Reason:  e.Reason,
			At:      e.At,
		})
	}
	for _, a := range m.Acknowledgments {
		resp.Acknowledgments = append(resp.Acknowledgments, ackResponse{
			UserID:         a.UserID,
			AcknowledgedAt: a.AcknowledgedAt,
		})
	}
	return resp
}
