package model

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"aitui/config"
)

// Authenticate exchanges credentials for a bearer token and persists it.
func (m *Model) Authenticate(username, password string) tea.Cmd {
	client := m.Client
	dataDir := m.Config.DataDir()

	return func() tea.Msg {
		result, err := client.Login(context.Background(), username, password)
		m.reportOutcome(err)
		if err != nil {
			return LoginMsg{Err: err}
		}

		creds := config.Credentials{
			AccessToken: result.AccessToken,
			UserID:      result.UserID,
			Username:    username,
		}
		if err := config.SaveCredentials(dataDir, creds); err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Model] Failed to persist credentials: %v", err)
			}
		}

		return LoginMsg{Result: result}
	}
}

// RegisterAccount creates a new account. The user logs in afterwards.
func (m *Model) RegisterAccount(username, password string) tea.Cmd {
	client := m.Client

	return func() tea.Msg {
		err := client.Register(context.Background(), username, password)
		m.reportOutcome(err)
		return RegisterMsg{Err: err}
	}
}

// Logout drops the local credentials and bearer token. The backend keeps
// no session state for us beyond token validity.
func (m *Model) Logout() {
	m.StopPolling()
	m.Credentials = config.Credentials{}
	m.Client.SetToken("")
	m.Sessions = nil
	m.Messages = nil
	m.CurrentSessionID = 0
	m.Loading = false

	if err := config.ClearCredentials(m.Config.DataDir()); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] Failed to clear credentials: %v", err)
		}
	}
}
