// Package hub fans state and event broadcasts out to connected
// viewers over WebSocket and replays current state plus chat history
// to late joiners.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// writeTimeout bounds a single viewer write so one stalled connection
// cannot hold up the fan-out loop.
const writeTimeout = 5 * time.Second

// Envelope is the wire frame for every push message.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type viewer struct {
	conn *websocket.Conn
	// ctx is cancelled when the connection closes; writes observe it.
	ctx context.Context
}

// Hub is the set of currently connected viewers. The transport layer
// registers and unregisters connections; broadcasts enumerate the set
// and silently skip connections that are no longer open.
type Hub struct {
	mu      sync.RWMutex
	viewers map[*viewer]struct{}
}

// New creates an empty hub.
func New() *Hub {
	return &Hub{viewers: make(map[*viewer]struct{})}
}

// Broadcast sends one message to every connected viewer. Delivery is
// at-most-once and best-effort: write failures are logged at debug
// level and otherwise ignored.
func (h *Hub) Broadcast(msgType string, data any) {
	payload, err := json.Marshal(Envelope{Type: msgType, Data: data})
	if err != nil {
		slog.Error("Failed to marshal broadcast message", "type", msgType, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*viewer, 0, len(h.viewers))
	for v := range h.viewers {
		targets = append(targets, v)
	}
	h.mu.RUnlock()

	for _, v := range targets {
		v.write(payload)
	}
}

// ViewerCount returns the number of registered viewers.
func (h *Hub) ViewerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers)
}

func (h *Hub) register(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.viewers[v] = struct{}{}
	slog.Info("Viewer connected", "viewers", len(h.viewers))
}

func (h *Hub) unregister(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.viewers, v)
	slog.Info("Viewer disconnected", "viewers", len(h.viewers))
}

// write sends a single frame to this viewer, skipping silently when
// the connection is already closed.
func (v *viewer) write(payload []byte) {
	if v.ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(v.ctx, writeTimeout)
	defer cancel()
	if err := v.conn.Write(ctx, websocket.MessageText, payload); err != nil {
		slog.Debug("Viewer write failed", "error", err)
	}
}

// sendJSON marshals and writes one envelope to this viewer only.
func (v *viewer) sendJSON(msgType string, data any) {
	payload, err := json.Marshal(Envelope{Type: msgType, Data: data})
	if err != nil {
		slog.Error("Failed to marshal viewer message", "type", msgType, "error", err)
		return
	}
	v.write(payload)
}
