package model

import (
	"strings"
	"time"

	"aitui/api"
)

// Message represents a chat message in the conversation
type Message struct {
	ID        int64
	Role      string
	Content   string // Raw content from the backend
	Rendered  string // Cached rendered markdown (assistant messages only)
	Status    string
	CreatedAt time.Time
}

// Terminal reports whether the message will never be mutated again.
func (m Message) Terminal() bool {
	return m.Status == api.StatusCompleted || m.Status == api.StatusFailed
}

// FromAPIMessage converts a backend message into the UI representation.
func FromAPIMessage(m api.Message) Message {
	return Message{
		ID:        m.ID,
		Role:      m.Role,
		Content:   m.Content,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}
}

// FromAPIMessages converts a backend message log.
func FromAPIMessages(msgs []api.Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = FromAPIMessage(m)
	}
	return out
}

// ToAPIMessages converts back for caching.
func ToAPIMessages(msgs []Message) []api.Message {
	out := make([]api.Message, len(msgs))
	for i, m := range msgs {
		out[i] = api.Message{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			Status:    m.Status,
			CreatedAt: m.CreatedAt,
		}
	}
	return out
}

// GenerateSessionTitle derives a conversation title from its first user
// message: the first 20 characters, ellipsized.
func GenerateSessionTitle(firstMessage string) string {
	title := strings.TrimSpace(firstMessage)
	title = strings.ReplaceAll(title, "\n", " ")
	title = strings.ReplaceAll(title, "\r", " ")

	runes := []rune(title)
	if len(runes) > 20 {
		title = string(runes[:20]) + "..."
	}

	return title
}
