package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/routeworks/memoflow-backend/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleError maps domain errors onto HTTP responses. Typed errors carry
// structured detail the clients act on: lock contention includes the holder
// and remaining lease, version conflicts include the current version, and
// partial failures name the ledger entry an operator can inspect.
func handleError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var (
		lockedErr     *domain.LockedError
		conflictErr   *domain.ConflictError
		transitionErr *domain.InvalidTransitionError
		partialErr    *domain.PartialFailureError
	)

	switch {
	case errors.As(err, &lockedErr):
		writeJSON(w, http.StatusLocked, map[string]any{
			"error":            "resource is locked",
			"resourceId":       lockedErr.ResourceID,
			"holder":           lockedErr.Holder,
			"remainingSeconds": int(lockedErr.Remaining.Seconds()),
		})
	case errors.As(err, &conflictErr):
		body := map[string]any{
			"error":          "version conflict",
			"resourceId":     conflictErr.ResourceID,
			"currentVersion": conflictErr.CurrentVersion,
		}
		if conflictErr.CurrentHolder != nil {
			body["currentHolder"] = *conflictErr.CurrentHolder
		}
		writeJSON(w, http.StatusConflict, body)
	case errors.As(err, &transitionErr):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  "invalid status transition",
			"memoId": transitionErr.MemoID,
			"from":   transitionErr.From,
			"to":     transitionErr.To,
		})
	case errors.As(err, &partialErr):
		log.ErrorContext(r.Context(), "partial failure surfaced to client",
			slog.String("entry_id", partialErr.EntryID.String()),
			slog.Any("error", err),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":           "operation failed and was rolled back",
			"rollbackEntryId": partialErr.EntryID,
		})
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAlreadyRolledBack):
		writeError(w, http.StatusBadRequest, "entry already rolled back")
	case errors.Is(err, domain.ErrInvalidState):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrLockExpired):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":   "lock expired",
			"expired": true,
		})
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrLocked):
		writeError(w, http.StatusLocked, "resource is locked")
	default:
		log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
