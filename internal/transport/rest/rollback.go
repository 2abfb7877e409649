package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/routeworks/memoflow-backend/internal/domain"
	"github.com/routeworks/memoflow-backend/internal/service/rollback"
	"github.com/routeworks/memoflow-backend/internal/transport/middleware"
)

// rollbackService defines the minimal interface needed by RollbackHandler.
type rollbackService interface {
	Rollback(ctx context.Context, input rollback.RollbackInput) (*domain.RollbackEntry, error)
	Query(ctx context.Context, input rollback.QueryInput) ([]domain.RollbackEntry, error)
}

// RollbackHandler serves rollback-ledger REST endpoints.
type RollbackHandler struct {
	svc rollbackService
	log *slog.Logger
}

// NewRollbackHandler creates a RollbackHandler.
func NewRollbackHandler(svc rollbackService, logger *slog.Logger) *RollbackHandler {
	return &RollbackHandler{svc: svc, log: logger.With("handler", "rollback")}
}

type rollbackRequest struct {
	Reason string `json:"reason"`
}

type rollbackEntryResponse struct {
	ID            uuid.UUID  `json:"id"`
	OperationType string     `json:"operationType"`
	Status        string     `json:"status"`
	PerformedBy   uuid.UUID  `json:"performedBy"`
	RolledBackBy  *uuid.UUID `json:"rolledBackBy,omitempty"`
	Reason        *string    `json:"reason,omitempty"`
	MemoID        uuid.UUID  `json:"memoId"`
	PrevStatus    string     `json:"prevStatus"`
	CopyCount     int        `json:"copyCount"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Rollback handles POST /api/rollback/{entryID}.
func (h *RollbackHandler) Rollback(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathUUID(w, r, "entryID")
	if !ok {
		return
	}

	var req rollbackRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	entry, err := h.svc.Rollback(r.Context(), rollback.RollbackInput{EntryID: entryID, Reason: req.Reason})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRollbackResponse(entry))
}

// Query handles GET /api/rollback-logs. Admin only.
func (h *RollbackHandler) Query(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	input, err := parseQueryInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.svc.Query(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]rollbackEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, toRollbackResponse(&entries[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}

func parseQueryInput(r *http.Request) (rollback.QueryInput, error) {
	q := r.URL.Query()
	var input rollback.QueryInput

	if v := q.Get("operationType"); v != "" {
		opType := domain.OperationType(v)
		input.OperationType = &opType
	}
	if v := q.Get("status"); v != "" {
		status := domain.RollbackStatus(v)
		input.Status = &status
	}
	if v := q.Get("sinceHours"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return input, domain.NewValidationError("sinceHours", "must be an integer")
		}
		input.SinceHours = &hours
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return input, domain.NewValidationError("limit", "must be an integer")
		}
		input.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return input, domain.NewValidationError("offset", "must be an integer")
		}
		input.Offset = offset
	}
	return input, nil
}

func toRollbackResponse(e *domain.RollbackEntry) rollbackEntryResponse {
	return rollbackEntryResponse{
		ID:            e.ID,
		OperationType: e.OperationType.String(),
		Status:        e.Status.String(),
		PerformedBy:   e.PerformedBy,
		RolledBackBy:  e.RolledBackBy,
		Reason:        e.Reason,
		MemoID:        e.Payload.MemoID,
		PrevStatus:    e.Payload.PrevStatus.String(),
		CopyCount:     len(e.Payload.CreatedCopyIDs),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
