package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Session is a conversation as the backend reports it.
type Session struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Sessions lists the conversations belonging to a user, newest first
// (server order is authoritative).
func (c *Client) Sessions(ctx context.Context, userID int64) ([]Session, error) {
	var resp struct {
		Sessions []Session `json:"sessions"`
	}
	path := fmt.Sprintf("/session/%d", userID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

// CreateSession creates a conversation and returns its id.
func (c *Client) CreateSession(ctx context.Context, title string) (int64, error) {
	payload := map[string]string{"title": title}
	var resp struct {
		SessionID int64 `json:"session_id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/session/create", payload, &resp); err != nil {
		return 0, err
	}
	return resp.SessionID, nil
}

// RenameSession updates a conversation title.
func (c *Client) RenameSession(ctx context.Context, sessionID int64, title string) error {
	payload := map[string]string{"title": title}
	path := fmt.Sprintf("/session/%d", sessionID)
	return c.doJSON(ctx, http.MethodPatch, path, payload, nil)
}

// DeleteSession removes a conversation and its messages.
func (c *Client) DeleteSession(ctx context.Context, sessionID int64) error {
	path := fmt.Sprintf("/session/%d", sessionID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}
