package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/routeworks/memoflow-backend/internal/domain"
	"github.com/routeworks/memoflow-backend/internal/service/editlock"
)

// lockService defines the minimal interface needed by LockHandler.
type lockService interface {
	Acquire(ctx context.Context, input editlock.LockInput) (*domain.EditLock, error)
	Refresh(ctx context.Context, input editlock.LockInput) (*domain.EditLock, error)
	Release(ctx context.Context, input editlock.LockInput) error
	Status(ctx context.Context, input editlock.LockInput) (*domain.LockStatus, error)
	StatusBatch(ctx context.Context, input editlock.BatchStatusInput) ([]domain.LockStatus, error)
}

// LockHandler serves edit-lock REST endpoints.
type LockHandler struct {
	svc lockService
	log *slog.Logger
}

// NewLockHandler creates a LockHandler.
func NewLockHandler(svc lockService, logger *slog.Logger) *LockHandler {
	return &LockHandler{svc: svc, log: logger.With("handler", "locks")}
}

type lockResponse struct {
	ResourceID       uuid.UUID `json:"resourceId"`
	LockedBy         uuid.UUID `json:"lockedBy"`
	LockTime         time.Time `json:"lockTime"`
	ExpiresAt        time.Time `json:"expiresAt"`
	RemainingSeconds int       `json:"remainingSeconds"`
}

type lockStatusResponse struct {
	ResourceID       uuid.UUID  `json:"resourceId"`
	Locked           bool       `json:"locked"`
	Holder           *uuid.UUID `json:"holder,omitempty"`
	RemainingSeconds *int       `json:"remainingSeconds,omitempty"`
}

type batchStatusRequest struct {
	ResourceIDs []uuid.UUID `json:"resourceIds"`
}

// Acquire handles POST /api/locks/{resourceID}/acquire.
func (h *LockHandler) Acquire(w http.ResponseWriter, r *http.Request) {
	resourceID, ok := pathUUID(w, r, "resourceID")
	if !ok {
		return
	}

	lock, err := h.svc.Acquire(r.Context(), editlock.LockInput{ResourceID: resourceID})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLockResponse(lock))
}

// Refresh handles POST /api/locks/{resourceID}/refresh.
func (h *LockHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	resourceID, ok := pathUUID(w, r, "resourceID")
	if !ok {
		return
	}

	lock, err := h.svc.Refresh(r.Context(), editlock.LockInput{ResourceID: resourceID})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLockResponse(lock))
}

// Release handles POST /api/locks/{resourceID}/release.
func (h *LockHandler) Release(w http.ResponseWriter, r *http.Request) {
	resourceID, ok := pathUUID(w, r, "resourceID")
	if !ok {
		return
	}

	if err := h.svc.Release(r.Context(), editlock.LockInput{ResourceID: resourceID}); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "released"})
}

// Status handles GET /api/locks/{resourceID}.
func (h *LockHandler) Status(w http.ResponseWriter, r *http.Request) {
	resourceID, ok := pathUUID(w, r, "resourceID")
	if !ok {
		return
	}

	status, err := h.svc.Status(r.Context(), editlock.LockInput{ResourceID: resourceID})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatusResponse(*status))
}

// StatusBatch handles POST /api/locks/status. The response maps every
// requested id, locked or not.
func (h *LockHandler) StatusBatch(w http.ResponseWriter, r *http.Request) {
	var req batchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	statuses, err := h.svc.StatusBatch(r.Context(), editlock.BatchStatusInput{ResourceIDs: req.ResourceIDs})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make(map[uuid.UUID]lockStatusResponse, len(statuses))
	for _, s := range statuses {
		out[s.ResourceID] = toStatusResponse(s)
	}
	writeJSON(w, http.StatusOK, out)
}

func toLockResponse(lock *domain.EditLock) lockResponse {
	return lockResponse{
		ResourceID:       lock.ResourceID,
		LockedBy:         lock.LockedBy,
		LockTime:         lock.LockTime,
		ExpiresAt:        lock.ExpiresAt,
		RemainingSeconds: int(lock.Remaining(time.Now()).Seconds()),
	}
}

func toStatusResponse(s domain.LockStatus) lockStatusResponse {
	resp := lockStatusResponse{
		ResourceID: s.ResourceID,
		Locked:     s.Locked,
		Holder:     s.Holder,
	}
	if s.Locked {
		remaining := int(s.Remaining.Seconds())
		resp.RemainingSeconds = &remaining
	}
	return resp
}

// pathUUID parses a UUID path parameter, writing a 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
