// Package office holds the live state of the visualized office: the
// agent directory, the event log, and the chat transcript. All
// mutations run under one lock and trigger broadcasts to viewers
// before the next mutation begins.
package office

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/agent-office/internal/domain"
)

// ErrMissingID is returned when an upsert has no agent id.
var ErrMissingID = errors.New("agent id is required")

// DefaultPrompt is used when a session starts with empty text.
const DefaultPrompt = "New prompt"

// speechBubbleLimit caps the speaker's bubble text; the transcript
// keeps the untruncated message.
const speechBubbleLimit = 100

// Broadcaster fans a message out to all connected viewers.
// Delivery is best-effort; implementations never return errors.
type Broadcaster interface {
	Broadcast(msgType string, data any)
}

// Options tune the service timing. Zero values select the defaults.
type Options struct {
	// TTL is the inactivity window after which an agent expires.
	TTL time.Duration
	// BatchStagger is the delay between broadcasts of consecutive
	// entries of a chat batch.
	BatchStagger time.Duration
}

const (
	defaultTTL          = 15 * time.Second
	defaultBatchStagger = 80 * time.Millisecond
)

// ChatInput is an incoming chat message from a producer.
type ChatInput struct {
	Role  string `json:"role"`
	Agent string `json:"agent"`
	Text  string `json:"text"`
}

// Service owns all session state. A fresh instance has no prompt, no
// agents, and an empty transcript.
type Service struct {
	mu           sync.Mutex
	opts         Options
	broadcaster  Broadcaster
	prompt       string
	sessionStart time.Time
	agents       map[string]domain.Agent
	events       []domain.Event
	chat         []domain.ChatMessage
	timers       map[string]*time.Timer
	closed       bool
}

// New creates a service broadcasting through b. A nil broadcaster is
// allowed; mutations then only update local state.
func New(b Broadcaster, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.BatchStagger <= 0 {
		opts.BatchStagger = defaultBatchStagger
	}
	return &Service{
		opts:        opts,
		broadcaster: b,
		agents:      make(map[string]domain.Agent),
		timers:      make(map[string]*time.Timer),
	}
}

// Close cancels all pending expiry timers. Scheduled work that has
// not fired yet becomes a no-op.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// StartPrompt resets the session for a new prompt: the agent
// directory and event log are cleared, the chat transcript is kept.
func (s *Service) StartPrompt(text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if text == "" {
		text = DefaultPrompt
	}
	s.prompt = text
	s.sessionStart = time.Now()
	s.clearAgentsLocked()
	s.events = nil

	ev := domain.Event{
		Type:      domain.EventPromptStart,
		Prompt:    text,
		Timestamp: domain.NowMillis(),
	}
	s.events = append(s.events, ev)
	s.send("event", ev)
	s.send("state", s.stateLocked())

	slog.Info("Prompt session started", "prompt", text)
	return text
}

// UpsertAgent creates or updates the record for u.ID, merging with
// the existing record or the defaults, and resets the agent's expiry
// timer. The returned record is the post-merge snapshot.
func (s *Service) UpsertAgent(u domain.AgentUpdate) (domain.Agent, error) {
	if u.ID == "" {
		return domain.Agent{}, ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertLocked(u), nil
}

// RemoveAgent deletes the record and cancels its expiry timer.
// Removing an absent id is not an error; it reports false.
func (s *Service) RemoveAgent(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id)
}

// PostChat appends one message to the transcript, broadcasts it, and
// upserts a synthetic speaker agent so the message shows up as a
// speech bubble in the office.
func (s *Service) PostChat(in ChatInput) domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.appendChatLocked(in)
	s.send("event", chatEvent(msg))

	bubble := truncateRunes(msg.Text, speechBubbleLimit)
	speakerID := "chat-agent"
	speakerRole := "Assistant"
	if msg.Role == domain.ChatRoleUser {
		speakerID = "chat-user"
		speakerRole = "User"
	}
	s.upsertLocked(domain.AgentUpdate{
		ID:      speakerID,
		Name:    msg.Agent,
		Role:    speakerRole,
		Action:  "talking",
		Message: &bubble,
	})
	return msg
}

// PostChatBatch appends every message to the transcript in input
// order and returns immediately; each entry's broadcast is scheduled
// at index*BatchStagger so an imported transcript animates in instead
// of appearing at once.
func (s *Service) PostChatBatch(in []ChatInput) int {
	s.mu.Lock()
	msgs := make([]domain.ChatMessage, 0, len(in))
	for _, c := range in {
		msgs = append(msgs, s.appendChatLocked(c))
	}
	s.mu.Unlock()

	for i, msg := range msgs {
		ev := chatEvent(msg)
		time.AfterFunc(time.Duration(i)*s.opts.BatchStagger, func() {
			s.send("event", ev)
		})
	}
	return len(msgs)
}

// State returns the full snapshot sent to viewers. Agent order is
// unspecified.
func (s *Service) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Events returns a copy of the event log for the current session.
func (s *Service) Events() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Event, len(s.events))
	copy(out, s.events)
	return out
}

// ChatHistory returns a copy of the full transcript in append order.
func (s *Service) ChatHistory() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.chat))
	copy(out, s.chat)
	return out
}

func (s *Service) upsertLocked(u domain.AgentUpdate) domain.Agent {
	now := domain.NowMillis()
	existing, ok := s.agents[u.ID]

	agent := domain.Agent{
		ID:        u.ID,
		Name:      firstNonEmpty(u.Name, existing.Name, domain.DefaultName),
		Role:      firstNonEmpty(u.Role, existing.Role, domain.DefaultRole),
		Action:    firstNonEmpty(u.Action, existing.Action, domain.DefaultAction),
		Message:   existing.Message,
		Target:    existing.Target,
		SpawnedAt: existing.SpawnedAt,
		UpdatedAt: now,
	}
	// An explicitly provided empty message or target still overwrites.
	if u.Message != nil {
		agent.Message = *u.Message
	}
	if u.Target != nil {
		agent.Target = *u.Target
	}
	if !ok {
		agent.SpawnedAt = now
	}
	s.agents[u.ID] = agent
	s.scheduleExpiryLocked(u.ID)

	evType := domain.EventAgentUpdate
	if !ok {
		evType = domain.EventAgentSpawn
	}
	snapshot := agent
	ev := domain.Event{Type: evType, Agent: &snapshot, Timestamp: now}
	s.events = append(s.events, ev)
	s.send("event", ev)
	s.send("state", s.stateLocked())
	return agent
}

// removeLocked deletes the record and emits agent_remove. The event
// goes out even when the id was absent, mirroring the idempotent
// remove on the wire; the return value reports whether a record
// actually existed.
func (s *Service) removeLocked(id string) bool {
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	_, existed := s.agents[id]
	delete(s.agents, id)

	ev := domain.Event{
		Type:      domain.EventAgentRemove,
		AgentID:   id,
		Timestamp: domain.NowMillis(),
	}
	s.events = append(s.events, ev)
	s.send("event", ev)
	s.send("state", s.stateLocked())
	return existed
}

// scheduleExpiryLocked resets the agent's expiry timer to TTL from
// now. The fired callback checks that its timer is still the current
// one for the id, so a timer superseded by a later upsert or an
// explicit remove is a no-op.
func (s *Service) scheduleExpiryLocked(id string) {
	if s.closed {
		return
	}
	if t, ok := s.timers[id]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(s.opts.TTL, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.timers[id] != t {
			return
		}
		delete(s.timers, id)
		slog.Info("Agent expired", "agent_id", id, "ttl", s.opts.TTL)
		s.removeLocked(id)
	})
	s.timers[id] = t
}

// clearAgentsLocked drops every record and cancels every timer
// without emitting per-agent remove events; this is a bulk reset.
func (s *Service) clearAgentsLocked() {
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.agents = make(map[string]domain.Agent)
}

func (s *Service) appendChatLocked(in ChatInput) domain.ChatMessage {
	msg := domain.ChatMessage{
		Role:      firstNonEmpty(in.Role, domain.ChatRoleAgent),
		Agent:     firstNonEmpty(in.Agent, domain.DefaultName),
		Text:      in.Text,
		Timestamp: domain.NowMillis(),
	}
	s.chat = append(s.chat, msg)
	return msg
}

func (s *Service) stateLocked() domain.State {
	agents := make([]domain.Agent, 0, len(s.agents))
	for _, a := range s.agents {
		agents = append(agents, a)
	}
	st := domain.State{
		Agents:     agents,
		EventCount: len(s.events),
	}
	if !s.sessionStart.IsZero() {
		prompt := s.prompt
		start := s.sessionStart.UnixMilli()
		st.Prompt = &prompt
		st.SessionStartTime = &start
	}
	return st
}

func (s *Service) send(msgType string, data any) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(msgType, data)
}

func chatEvent(msg domain.ChatMessage) domain.Event {
	m := msg
	return domain.Event{
		Type:      domain.EventChatMessage,
		Message:   &m,
		Timestamp: msg.Timestamp,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
