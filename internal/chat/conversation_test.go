package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation_AppendAndUpdate(t *testing.T) {
	conv := NewConversation()
	var seen []Message
	conv.Subscribe(func(m Message) { seen = append(seen, m) })

	u := conv.Append(RoleUser, "hi")
	a := conv.Append(RoleAssistant, "")
	require.NotEqual(t, u.ID, a.ID)
	assert.True(t, conv.SetContent(a.ID, "hello"))
	assert.False(t, conv.SetContent("missing", "x"))

	require.Len(t, seen, 3)
	assert.Equal(t, "hello", seen[2].Content)
	assert.Equal(t, a.ID, seen[2].ID)

	msgs := conv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "hello", msgs[1].Content)

	msgs[0].Content = "mutated"
	got, ok := conv.Get(u.ID)
	require.True(t, ok)
	assert.Equal(t, "hi", got.Content, "Messages must return a copy")
}

func TestConversation_StatusAndTruncate(t *testing.T) {
	conv := NewConversation()
	first := conv.Append(RoleUser, "one")
	conv.Append(RoleAssistant, "reply")
	second := conv.Append(RoleUser, "two")
	conv.Append(RoleAssistant, "reply two")

	assert.True(t, conv.MarkFailed(first.ID))
	got, _ := conv.Get(first.ID)
	assert.Equal(t, StatusFailed, got.Status)
	assert.True(t, conv.ClearStatus(first.ID))
	got, _ = conv.Get(first.ID)
	assert.Equal(t, StatusNone, got.Status)

	last, ok := conv.LastUser()
	require.True(t, ok)
	assert.Equal(t, second.ID, last.ID)

	assert.True(t, conv.TruncateAfter(first.ID))
	assert.Equal(t, 1, conv.Len())
	assert.False(t, conv.TruncateAfter("missing"))

	assert.True(t, conv.Remove(first.ID))
	assert.False(t, conv.Remove(first.ID))
	_, ok = conv.LastUser()
	assert.False(t, ok)
}

func TestConversation_Clear(t *testing.T) {
	conv := NewConversation()
	conv.Append(RoleUser, "a")
	conv.Clear()
	assert.Equal(t, 0, conv.Len())
	assert.Empty(t, conv.Messages())
}

func TestMessage_Sendable(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{"user", Message{Role: RoleUser, Content: "x"}, true},
		{"assistant", Message{Role: RoleAssistant, Content: "x"}, true},
		{"system", Message{Role: RoleSystem, Content: "x"}, true},
		{"empty", Message{Role: RoleAssistant}, false},
		{"failed", Message{Role: RoleUser, Content: "x", Status: StatusFailed}, false},
		{"unknown role", Message{Role: "tool", Content: "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.msg.Sendable())
		})
	}
}
