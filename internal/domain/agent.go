// Package domain contains core domain types for the agent office.
package domain

import "time"

// Default field values applied on first upsert when the producer
// leaves them unset.
const (
	DefaultName   = "Agent"
	DefaultRole   = "Developer"
	DefaultAction = "coding"
)

// Agent is the current record for one visualized persona. The id is
// the only identity; name and role may change without creating a new
// agent. Timestamps are Unix milliseconds to match the wire format.
type Agent struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Action    string `json:"action"`
	Message   string `json:"message"`
	Target    string `json:"target,omitempty"`
	SpawnedAt int64  `json:"spawnedAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// AgentUpdate is a partial update for an agent record. Name, Role and
// Action fall back to the existing value (then the default) when
// empty. Message and Target are pointers because an explicitly empty
// value still counts as an update, unlike an absent one.
type AgentUpdate struct {
	ID      string  `json:"id"`
	Name    string  `json:"name,omitempty"`
	Role    string  `json:"role,omitempty"`
	Action  string  `json:"action,omitempty"`
	Message *string `json:"message,omitempty"`
	Target  *string `json:"target,omitempty"`
	Remove  bool    `json:"remove,omitempty"`
}

// NowMillis returns the current time in Unix milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
