package rest

import (
	"log/slog"
	"net/http"

	"github.com/routeworks/memoflow-backend/internal/config"
	"github.com/routeworks/memoflow-backend/internal/transport/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Locks    *LockHandler
	Memos    *MemoHandler
	Rollback *RollbackHandler
	Health   *HealthHandler
	// LockEvents serves the websocket stream at /ws/locks/{resourceID}.
	LockEvents http.HandlerFunc
}

// NewRouter wires all routes with the standard middleware stack.
// limit may be nil to disable rate limiting.
func NewRouter(log *slog.Logger, h Handlers, auth, limit middleware.Middleware, corsCfg config.CORSConfig) http.Handler {
	mux := http.NewServeMux()

	// Edit locks
	mux.HandleFunc("POST /api/locks/{resourceID}/acquire", h.Locks.Acquire)
	mux.HandleFunc("POST /api/locks/{resourceID}/refresh", h.Locks.Refresh)
	mux.HandleFunc("POST /api/locks/{resourceID}/release", h.Locks.Release)
	mux.HandleFunc("GET /api/locks/{resourceID}", h.Locks.Status)
	mux.HandleFunc("POST /api/locks/status", h.Locks.StatusBatch)

	// Memo workflow
	mux.HandleFunc("POST /api/memos", h.Memos.Submit)
	mux.HandleFunc("GET /api/memos/{id}", h.Memos.Get)
	mux.HandleFunc("PATCH /api/memos/{id}", h.Memos.Edit)
	mux.HandleFunc("POST /api/memos/{id}/approve", h.Memos.Approve)
	mux.HandleFunc("POST /api/memos/{id}/reject", h.Memos.Reject)
	mux.HandleFunc("POST /api/memos/{id}/acknowledge", h.Memos.Acknowledge)

	// Rollback ledger
	mux.HandleFunc("POST /api/rollback/{entryID}", h.Rollback.Rollback)
	mux.HandleFunc("GET /api/rollback-logs", h.Rollback.Query)

	// Live lock observers
	if h.LockEvents != nil {
		mux.HandleFunc("GET /ws/locks/{resourceID}", h.LockEvents)
	}

	// Probes
	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /live", h.Health.Live)

	mws := []middleware.Middleware{
		middleware.RequestID,
		middleware.Recovery(log),
		middleware.Logger(log),
		middleware.CORS(corsCfg),
	}
	if limit != nil {
		mws = append(mws, limit)
	}
	mws = append(mws, auth)

	return middleware.Chain(mws...)(mux)
}
