// Package chat streams chat completions into an in-memory conversation.
package chat

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Status marks messages that need attention.
type Status string

const (
	StatusNone   Status = ""
	StatusFailed Status = "failed" // the reply to this user message failed and can be retried
)

// Message is one entry of a Conversation.
type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Status  Status `json:"status,omitempty"`
}

// Sendable reports whether m belongs in the history sent to the completions API.
func (m Message) Sendable() bool {
	switch m.Role {
	case RoleUser, RoleAssistant, RoleSystem:
	default:
		return false
	}
	return m.Status != StatusFailed && m.Content != ""
}
