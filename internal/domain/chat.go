package domain

// Chat message roles.
const (
	ChatRoleUser  = "user"
	ChatRoleAgent = "agent"
	ChatRoleTool  = "tool"
)

// ChatMessage is one entry in the conversation transcript. The
// transcript survives prompt resets, unlike the event log.
type ChatMessage struct {
	Role      string `json:"role"`
	Agent     string `json:"agent"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}
