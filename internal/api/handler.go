// Package api provides HTTP handlers for the agent office API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ashureev/agent-office/internal/domain"
	"github.com/ashureev/agent-office/internal/office"
	"github.com/go-chi/chi/v5"
)

// Handler serves the boundary operations producers and viewers call.
type Handler struct {
	svc     *office.Service
	started time.Time
}

// NewHandler creates a new Handler around the office service.
func NewHandler(svc *office.Service) *Handler {
	return &Handler{svc: svc, started: time.Now()}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes registers the ingest and query routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/prompt", h.StartPrompt)
		r.Post("/agent", h.UpsertAgent)
		r.Post("/chat", h.PostChat)
		r.Post("/chat/batch", h.PostChatBatch)
		r.Get("/chat/history", h.ChatHistory)
		r.Get("/state", h.GetState)
		r.Get("/events", h.GetEvents)
		r.Get("/health", h.Health)
	})
}

// StartPrompt begins a new prompt session.
func (h *Handler) StartPrompt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	prompt := h.svc.StartPrompt(req.Text)
	JSON(w, http.StatusOK, map[string]interface{}{"ok": true, "prompt": prompt})
}

// UpsertAgent creates, updates, or removes one agent record.
func (h *Handler) UpsertAgent(w http.ResponseWriter, r *http.Request) {
	var req domain.AgentUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ID == "" {
		Error(w, http.StatusBadRequest, "agent id is required")
		return
	}

	if req.Remove {
		h.svc.RemoveAgent(req.ID)
		JSON(w, http.StatusOK, map[string]interface{}{"ok": true, "removed": req.ID})
		return
	}

	agent, err := h.svc.UpsertAgent(req)
	if err != nil {
		if errors.Is(err, office.ErrMissingID) {
			Error(w, http.StatusBadRequest, err.Error())
			return
		}
		Error(w, http.StatusInternalServerError, "failed to upsert agent")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"ok": true, "agent": agent})
}

// PostChat appends one chat message to the transcript.
func (h *Handler) PostChat(w http.ResponseWriter, r *http.Request) {
	var req office.ChatInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.svc.PostChat(req)
	JSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// PostChatBatch appends a list of chat messages; their broadcasts are
// paced out by the service.
func (h *Handler) PostChatBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Messages json.RawMessage `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	var messages []office.ChatInput
	if err := json.Unmarshal(req.Messages, &messages); err != nil {
		Error(w, http.StatusBadRequest, "messages must be a list")
		return
	}
	count := h.svc.PostChatBatch(messages)
	JSON(w, http.StatusOK, map[string]interface{}{"ok": true, "count": count})
}

// ChatHistory returns the full transcript.
func (h *Handler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	messages := h.svc.ChatHistory()
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// GetState returns the current state snapshot.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.svc.State())
}

// GetEvents returns the event log for the current session.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	events := h.svc.Events()
	if events == nil {
		events = []domain.Event{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// Health reports server liveness and uptime in seconds.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.started).Seconds(),
	})
}
