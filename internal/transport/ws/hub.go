package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/routeworks/memoflow-backend/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 25 * time.Second
)

type eventSource interface {
	Subscribe() (<-chan domain.LockEvent, func())
}

// Hub streams lock events to websocket observers. Each connection watches
// a single resource: events for other resources are filtered out before
// they reach the socket.
type Hub struct {
	source   eventSource
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewHub(log *slog.Logger, source eventSource) *Hub {
	return &Hub{
		source: source,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients authenticate with a bearer token, not cookies,
			// so cross-origin upgrades are safe to accept.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log.With("component", "ws_hub"),
	}
}

// ServeLocks handles GET /ws/locks/{resourceID}: upgrades the connection
// and forwards lock events for that resource until the client goes away.
func (h *Hub) ServeLocks(w http.ResponseWriter, r *http.Request) {
	resourceID, err := uuid.Parse(r.PathValue("resourceID"))
	if err != nil {
		http.Error(w, "invalid resourceID", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WarnContext(r.Context(), "websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	events, cancel := h.source.Subscribe()
	defer cancel()

	// Reader goroutine: the client sends nothing we care about, but reading
	// is what surfaces close frames and connection drops.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	h.log.DebugContext(r.Context(), "observer connected",
		slog.String("resource_id", resourceID.String()),
	)

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.ResourceID != resourceID {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
