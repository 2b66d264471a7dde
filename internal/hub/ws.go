package hub

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/agent-office/internal/domain"
	"github.com/ashureev/agent-office/internal/office"
	"github.com/coder/websocket"
)

const defaultReplayStagger = 30 * time.Millisecond

// Handler upgrades viewer connections, performs the connect-time
// replay, and keeps the connection registered for live broadcasts.
type Handler struct {
	hub *Hub
	svc *office.Service

	// ReplayStagger is the delay between consecutive chat history
	// entries replayed to a newly connected viewer.
	ReplayStagger time.Duration
}

// NewHandler creates a WebSocket handler for viewer connections.
func NewHandler(h *Hub, svc *office.Service) *Handler {
	return &Handler{hub: h, svc: svc, ReplayStagger: defaultReplayStagger}
}

// ServeHTTP accepts a viewer connection, sends the state snapshot,
// then replays the chat transcript to this viewer only with a fixed
// stagger, and finally holds the connection open for broadcasts.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept viewer WebSocket", "error", err, "ip", r.RemoteAddr)
		return
	}
	defer func() {
		_ = conn.Close(websocket.StatusNormalClosure, "server closing")
	}()

	// Viewers never send application data; CloseRead keeps control
	// frames flowing and yields a context tied to connection life.
	ctx := conn.CloseRead(r.Context())
	v := &viewer{conn: conn, ctx: ctx}

	// Snapshot first, so the viewer has a coherent base before any
	// replayed or live events arrive.
	v.sendJSON("state", h.svc.State())

	h.hub.register(v)
	defer h.hub.unregister(v)

	go h.replayChat(v)

	<-ctx.Done()
}

// replayChat sends the transcript to one viewer in append order, one
// entry per stagger interval. A viewer that disconnects mid-replay
// stops the remaining sends without error.
func (h *Handler) replayChat(v *viewer) {
	history := h.svc.ChatHistory()
	for i, msg := range history {
		if i > 0 {
			select {
			case <-v.ctx.Done():
				return
			case <-time.After(h.ReplayStagger):
			}
		}
		if v.ctx.Err() != nil {
			return
		}
		m := msg
		v.sendJSON("event", domain.Event{
			Type:      domain.EventChatMessage,
			Message:   &m,
			Timestamp: msg.Timestamp,
		})
	}
}
