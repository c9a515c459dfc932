package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Message statuses reported by the backend. A terminal status means the
// message will never be mutated again.
const (
	StatusPending   = "pending"
	StatusStreaming = "streaming"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Message is a chat message as the backend reports it.
type Message struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Fragment is one incremental unit of assistant reply content returned
// by an updates request: the message id it belongs to, a content delta,
// and that message's current status.
type Fragment struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

// Messages returns a conversation's full message log.
func (c *Client) Messages(ctx context.Context, sessionID int64) ([]Message, error) {
	var resp struct {
		Messages []Message `json:"messages"`
	}
	path := fmt.Sprintf("/message/%d", sessionID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// SendMessage submits a user message and returns the id the server
// assigned to it. That id becomes the baseline cursor for polling the
// assistant's reply.
func (c *Client) SendMessage(ctx context.Context, sessionID int64, content, model string) (int64, error) {
	payload := struct {
		SessionID int64  `json:"session_id"`
		Content   string `json:"content"`
		Model     string `json:"model"`
	}{sessionID, content, model}

	var resp struct {
		MessageID int64 `json:"message_id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/message/send", payload, &resp); err != nil {
		return 0, err
	}
	return resp.MessageID, nil
}

// MessageUpdates returns the fragments with id greater than lastMessageID,
// in server-supplied order.
func (c *Client) MessageUpdates(ctx context.Context, sessionID, lastMessageID int64) ([]Fragment, error) {
	var resp struct {
		Messages []Fragment `json:"messages"`
	}
	path := fmt.Sprintf("/message/%d/updates?last_message_id=%d", sessionID, lastMessageID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}
