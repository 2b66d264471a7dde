package domain

// Event types pushed to viewers and recorded in the event log.
const (
	EventPromptStart = "prompt_start"
	EventAgentSpawn  = "agent_spawn"
	EventAgentUpdate = "agent_update"
	EventAgentRemove = "agent_remove"
	EventChatMessage = "chat_message"
)

// Event is one state transition. Exactly one of the payload fields is
// set depending on Type: Prompt for prompt_start, Agent for
// agent_spawn/agent_update, AgentID for agent_remove, Message for
// chat_message. Events are immutable once appended.
type Event struct {
	Type      string       `json:"type"`
	Prompt    string       `json:"prompt,omitempty"`
	Agent     *Agent       `json:"agent,omitempty"`
	AgentID   string       `json:"agentId,omitempty"`
	Message   *ChatMessage `json:"message,omitempty"`
	Timestamp int64        `json:"timestamp"`
}

// State is the full snapshot sent to viewers. Prompt and
// SessionStartTime are null until the first prompt starts.
type State struct {
	Prompt           *string `json:"prompt"`
	Agents           []Agent `json:"agents"`
	SessionStartTime *int64  `json:"sessionStartTime"`
	EventCount       int     `json:"eventCount"`
}
