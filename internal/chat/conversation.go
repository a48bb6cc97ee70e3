package chat

import (
	"sync"

	"github.com/google/uuid"
)

// Conversation is an ordered, concurrency-safe message sequence. Subscribers are notified
// after every append or content change, in the order the changes were made.
type Conversation struct {
	mu       sync.Mutex
	messages []Message
	subs     []func(Message)
	newID    func() string
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{newID: func() string { return uuid.New().String() }}
}

// Subscribe registers fn to receive each appended or updated message.
func (c *Conversation) Subscribe(fn func(Message)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Append adds a message and returns it with its new ID.
func (c *Conversation) Append(role Role, content string) Message {
	c.mu.Lock()
	m := Message{ID: c.newID(), Role: role, Content: content}
	c.messages = append(c.messages, m)
	subs := c.subs
	c.mu.Unlock()

	notify(subs, m)
	return m
}

// SetContent replaces the content of message id. It reports whether the message exists.
func (c *Conversation) SetContent(id, content string) bool {
	c.mu.Lock()
	i := c.index(id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.messages[i].Content = content
	m := c.messages[i]
	subs := c.subs
	c.mu.Unlock()

	notify(subs, m)
	return true
}

// Get returns message id.
func (c *Conversation) Get(id string) (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(id); i >= 0 {
		return c.messages[i], true
	}
	return Message{}, false
}

// Remove deletes message id.
func (c *Conversation) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.messages = append(c.messages[:i], c.messages[i+1:]...)
	return true
}

// MarkFailed flags message id as failed.
func (c *Conversation) MarkFailed(id string) bool {
	return c.setStatus(id, StatusFailed)
}

// ClearStatus removes any status from message id.
func (c *Conversation) ClearStatus(id string) bool {
	return c.setStatus(id, StatusNone)
}

func (c *Conversation) setStatus(id string, status Status) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.messages[i].Status = status
	return true
}

// TruncateAfter drops every message after id.
func (c *Conversation) TruncateAfter(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.messages = c.messages[:i+1]
	return true
}

// LastUser returns the most recent user message.
func (c *Conversation) LastUser() (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == RoleUser {
			return c.messages[i], true
		}
	}
	return Message{}, false
}

// Clear removes all messages.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}

// Messages returns a snapshot of the sequence.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func (c *Conversation) index(id string) int {
	for i := range c.messages {
		if c.messages[i].ID == id {
			return i
		}
	}
	return -1
}

func notify(subs []func(Message), m Message) {
	for _, fn := range subs {
		fn(m)
	}
}
