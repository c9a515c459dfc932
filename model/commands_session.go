package model

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"aitui/config"
	"aitui/storage"
)

const defaultSessionTitle = "New Conversation"

// FetchSessions retrieves the conversation list from the backend and
// refreshes the local cache on success.
func (m *Model) FetchSessions() tea.Cmd {
	client := m.Client
	cache := m.Cache
	userID := m.Credentials.UserID

	return func() tea.Msg {
		sessions, err := client.Sessions(context.Background(), userID)
		m.reportOutcome(err)
		if err != nil {
			return SessionsListMsg{Err: err}
		}

		if cache != nil {
			if err := cache.SaveSessions(sessions); err != nil && config.DebugLog != nil {
				config.DebugLog.Printf("[Model] Failed to cache sessions: %v", err)
			}
		}

		return SessionsListMsg{Sessions: sessions}
	}
}

// LoadCachedSessions serves the cached conversation list, for instant
// display at startup and for reading while offline.
func (m *Model) LoadCachedSessions() tea.Cmd {
	cache := m.Cache
	if cache == nil {
		return nil
	}

	return func() tea.Msg {
		sessions, err := cache.Sessions()
		if err != nil {
			return SessionsListMsg{FromCache: true, Err: err}
		}
		return SessionsListMsg{Sessions: sessions, FromCache: true}
	}
}

// LoadMessages retrieves a conversation's message log and caches it.
func (m *Model) LoadMessages(sessionID int64) tea.Cmd {
	client := m.Client
	cache := m.Cache

	return func() tea.Msg {
		messages, err := client.Messages(context.Background(), sessionID)
		m.reportOutcome(err)
		if err != nil {
			return MessagesLoadedMsg{SessionID: sessionID, Err: err}
		}

		if cache != nil {
			if err := cache.SaveMessages(sessionID, messages); err != nil && config.DebugLog != nil {
				config.DebugLog.Printf("[Model] Failed to cache messages: %v", err)
			}
		}

		return MessagesLoadedMsg{SessionID: sessionID, Messages: FromAPIMessages(messages)}
	}
}

// LoadCachedMessages serves a conversation's log from the cache.
func (m *Model) LoadCachedMessages(sessionID int64) tea.Cmd {
	cache := m.Cache
	if cache == nil {
		return nil
	}

	return func() tea.Msg {
		messages, err := cache.Messages(sessionID)
		if err != nil {
			return MessagesLoadedMsg{SessionID: sessionID, FromCache: true, Err: err}
		}
		return MessagesLoadedMsg{
			SessionID: sessionID,
			Messages:  FromAPIMessages(messages),
			FromCache: true,
		}
	}
}

// CreateSession creates a conversation on the backend.
func (m *Model) CreateSession() tea.Cmd {
	client := m.Client

	return func() tea.Msg {
		id, err := client.CreateSession(context.Background(), defaultSessionTitle)
		m.reportOutcome(err)
		return SessionCreatedMsg{ID: id, Err: err}
	}
}

// RenameSession updates a conversation title.
func (m *Model) RenameSession(sessionID int64, title string) tea.Cmd {
	client := m.Client

	return func() tea.Msg {
		err := client.RenameSession(context.Background(), sessionID, title)
		m.reportOutcome(err)
		return SessionRenamedMsg{ID: sessionID, Title: title, Err: err}
	}
}

// AutoTitleSession renames a conversation after its first message, the
// way the backend's web client does: first 20 characters of the message.
// Too-short content is left alone.
func (m *Model) AutoTitleSession(sessionID int64, firstMessage string) tea.Cmd {
	title := GenerateSessionTitle(firstMessage)
	if len([]rune(title)) < 3 {
		return nil
	}
	return m.RenameSession(sessionID, title)
}

// DeleteSession removes a conversation from the backend and the cache.
// The caller is responsible for stopping any poller aimed at it.
func (m *Model) DeleteSession(sessionID int64) tea.Cmd {
	client := m.Client
	cache := m.Cache

	return func() tea.Msg {
		err := client.DeleteSession(context.Background(), sessionID)
		m.reportOutcome(err)
		if err != nil {
			return SessionDeletedMsg{ID: sessionID, Err: err}
		}

		if cache != nil {
			if err := cache.DeleteSession(sessionID); err != nil && config.DebugLog != nil {
				config.DebugLog.Printf("[Model] Failed to evict cached session: %v", err)
			}
		}

		return SessionDeletedMsg{ID: sessionID}
	}
}

// CacheCurrentMessages rewrites the active conversation's cache entry
// from the in-memory log, called once a reply reaches a terminal state.
func (m *Model) CacheCurrentMessages() {
	if m.Cache == nil || m.CurrentSessionID == 0 {
		return
	}
	if err := m.Cache.SaveMessages(m.CurrentSessionID, ToAPIMessages(m.Messages)); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] Failed to cache messages: %v", err)
		}
	}
}

// RememberCurrentSession records the active conversation for next start.
func (m *Model) RememberCurrentSession() {
	if m.CurrentSessionID == 0 {
		return
	}
	if err := storage.SaveCurrentSessionID(m.Config.DataDir(), m.CurrentSessionID); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] Failed to save current session id: %v", err)
		}
	}
}
