package ui

import (
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"aitui/api"
	"aitui/config"
	appmodel "aitui/model"
	"aitui/storage"
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		headerHeight := 2 // title + separator
		footerHeight := 4 // textarea + status bar
		a.viewport.Width = msg.Width
		a.viewport.Height = msg.Height - headerHeight - footerHeight
		a.textarea.SetWidth(msg.Width)

		a.ready = true
		a.updateViewportContent(true)
		return a, nil

	case spinner.TickMsg:
		if !a.dataModel.Loading && !a.offlineProbing {
			return a, nil
		}
		var cmd tea.Cmd
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		if a.dataModel.Loading {
			a.updateViewportContent(true)
		}
		return a, cmd

	case tea.KeyMsg:
		switch a.screen {
		case screenAuth:
			return a.updateAuthKeys(msg)
		case screenOffline:
			return a.updateOfflineKeys(msg)
		}
		if a.confirmDeleteSession != nil {
			return a.updateDeleteConfirmKeys(msg)
		}
		if a.showSessionManager {
			return a.updateSessionManagerKeys(msg)
		}
		return a.updateChatKeys(msg)

	case loginMsg:
		return a.handleLogin(msg)

	case registerMsg:
		a.authBusy = false
		if msg.Err != nil {
			a.authErr = errorText(msg.Err)
			return a, nil
		}
		a.authRegisterMode = false
		a.authNotice = "Account created. Log in to continue."
		a.authErr = ""
		a.passwordInput.Reset()
		return a, nil

	case sessionsListMsg:
		return a.handleSessionsList(msg)

	case sessionCreatedMsg:
		return a.handleSessionCreated(msg)

	case sessionRenamedMsg:
		if msg.Err != nil {
			return a, a.setStatusError(errorText(msg.Err))
		}
		for i := range a.dataModel.Sessions {
			if a.dataModel.Sessions[i].ID == msg.ID {
				a.dataModel.Sessions[i].Title = msg.Title
				break
			}
		}
		return a, nil

	case sessionDeletedMsg:
		return a.handleSessionDeleted(msg)

	case messagesLoadedMsg:
		return a.handleMessagesLoaded(msg)

	case messageSentMsg:
		return a.handleMessageSent(msg)

	case assistantAppendMsg:
		if msg.SessionID != a.dataModel.CurrentSessionID {
			return a, nil
		}
		m := msg.Message
		m.Rendered = m.Content
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now()
		}
		a.dataModel.Messages = append(a.dataModel.Messages, m)
		a.updateViewportContent(true)
		return a, nil

	case assistantDeltaMsg:
		if msg.SessionID != a.dataModel.CurrentSessionID {
			return a, nil
		}
		for i := len(a.dataModel.Messages) - 1; i >= 0; i-- {
			if a.dataModel.Messages[i].ID == msg.MessageID {
				a.dataModel.Messages[i].Content += msg.Content
				a.dataModel.Messages[i].Rendered = a.dataModel.Messages[i].Content
				a.dataModel.Messages[i].Status = msg.Status
				break
			}
		}
		a.updateViewportContent(true)
		return a, nil

	case pollDoneMsg:
		a.dataModel.Loading = false
		a.dataModel.CacheCurrentMessages()
		a.updateViewportContent(true)
		if n := len(a.dataModel.Messages); n > 0 && a.dataModel.Messages[n-1].Role == "assistant" {
			return a, a.renderMarkdownAsync(n-1, a.dataModel.Messages[n-1].Content)
		}
		return a, nil

	case pollAbortedMsg:
		a.dataModel.Loading = false
		a.updateViewportContent(true)
		if appmodel.IsTransportError(msg.Err) {
			// The availability monitor takes over from here
			return a, nil
		}
		return a, a.setStatusError(errorText(msg.Err))

	case networkStatusMsg:
		return a.handleNetworkStatus(msg)

	case probeResultMsg:
		a.offlineProbing = false
		if !msg.Online {
			return a, a.setStatusError("Still offline")
		}
		return a, nil

	case sessionExpiredMsg:
		a.dataModel.Logout()
		a.screen = screenAuth
		a.authNotice = "Session expired. Log in again."
		a.authErr = ""
		a.authFocusIdx = 0
		a.usernameInput.Focus()
		a.passwordInput.Blur()
		a.passwordInput.Reset()
		return a, textinput.Blink

	case markdownRenderedMsg:
		if msg.MessageIndex < len(a.dataModel.Messages) {
			a.dataModel.Messages[msg.MessageIndex].Rendered = msg.Rendered
			a.updateViewportContent(a.viewport.AtBottom())
		}
		return a, nil

	case statusClearMsg:
		a.statusErr = ""
		return a, nil
	}

	return a, nil
}

func (a AppView) updateAuthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "tab", "shift+tab", "up", "down":
		a.authFocusIdx = 1 - a.authFocusIdx
		if a.authFocusIdx == 0 {
			a.usernameInput.Focus()
			a.passwordInput.Blur()
		} else {
			a.usernameInput.Blur()
			a.passwordInput.Focus()
		}
		return a, textinput.Blink

	case "ctrl+r":
		a.authRegisterMode = !a.authRegisterMode
		a.authErr = ""
		a.authNotice = ""
		return a, nil

	case "enter":
		if a.authBusy {
			return a, nil
		}
		username := strings.TrimSpace(a.usernameInput.Value())
		password := a.passwordInput.Value()
		if username == "" || password == "" {
			a.authErr = "Username and password are required"
			return a, nil
		}
		a.authBusy = true
		a.authErr = ""
		a.authNotice = ""
		if a.authRegisterMode {
			return a, a.dataModel.RegisterAccount(username, password)
		}
		return a, a.dataModel.Authenticate(username, password)
	}

	var cmd tea.Cmd
	if a.authFocusIdx == 0 {
		a.usernameInput, cmd = a.usernameInput.Update(msg)
	} else {
		a.passwordInput, cmd = a.passwordInput.Update(msg)
	}
	return a, cmd
}

func (a AppView) updateOfflineKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "alt+q", "q":
		return a, tea.Quit

	case "r", "enter":
		if a.offlineProbing {
			return a, nil
		}
		a.offlineProbing = true
		a.statusErr = ""
		return a, tea.Batch(a.dataModel.ProbeConnection(), a.loadingSpinner.Tick)
	}

	return a, nil
}

func (a AppView) updateDeleteConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		target := a.confirmDeleteSession
		a.confirmDeleteSession = nil
		return a, a.dataModel.DeleteSession(target.ID)

	case "n", "esc":
		a.confirmDeleteSession = nil
		return a, nil
	}

	return a, nil
}

func (a AppView) updateChatKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "alt+q":
		a.dataModel.RememberCurrentSession()
		a.dataModel.StopPolling()
		return a, tea.Quit

	case "alt+s":
		a.showSessionManager = true
		a.selectedSessionIdx = 0
		for i, s := range a.dataModel.Sessions {
			if s.ID == a.dataModel.CurrentSessionID {
				a.selectedSessionIdx = i
				break
			}
		}
		a.textarea.Blur()
		return a, a.dataModel.FetchSessions()

	case "alt+n":
		return a, a.dataModel.CreateSession()

	case "alt+y":
		for i := len(a.dataModel.Messages) - 1; i >= 0; i-- {
			if a.dataModel.Messages[i].Role == "assistant" {
				clipboard.WriteAll(a.dataModel.Messages[i].Content)
				break
			}
		}
		return a, nil

	case "alt+l":
		a.dataModel.Logout()
		a.screen = screenAuth
		a.authFocusIdx = 0
		a.authErr = ""
		a.authNotice = ""
		a.usernameInput.Reset()
		a.passwordInput.Reset()
		a.usernameInput.Focus()
		a.textarea.Blur()
		return a, textinput.Blink

	case "enter":
		return a.sendCurrentInput()
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a AppView) sendCurrentInput() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(a.textarea.Value())
	if content == "" {
		return a, nil
	}
	if a.dataModel.Loading {
		return a, a.setStatusError("Wait for the current reply to finish")
	}

	a.textarea.Reset()

	if a.dataModel.CurrentSessionID == 0 {
		a.pendingMessage = content
		return a, a.dataModel.CreateSession()
	}
	return a, a.dataModel.SendChatMessage(a.dataModel.CurrentSessionID, content)
}

func (a AppView) handleLogin(msg loginMsg) (tea.Model, tea.Cmd) {
	a.authBusy = false
	if msg.Err != nil {
		a.authErr = errorText(msg.Err)
		return a, nil
	}

	a.dataModel.Credentials = config.Credentials{
		AccessToken: msg.Result.AccessToken,
		UserID:      msg.Result.UserID,
		Username:    strings.TrimSpace(a.usernameInput.Value()),
	}

	a.screen = screenChat
	a.authErr = ""
	a.authNotice = ""
	a.sessionsSynced = false
	a.passwordInput.Reset()
	a.usernameInput.Blur()
	a.passwordInput.Blur()
	a.textarea.Focus()

	return a, tea.Batch(
		textarea.Blink,
		a.dataModel.LoadCachedSessions(),
		a.dataModel.FetchSessions(),
	)
}

func (a AppView) handleSessionsList(msg sessionsListMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if msg.FromCache {
			return a, nil
		}
		return a, a.setStatusError(errorText(msg.Err))
	}

	// Cached results only fill the gap before the first server response
	if msg.FromCache && (a.sessionsSynced || len(a.dataModel.Sessions) > 0) {
		return a, nil
	}

	firstServerList := !msg.FromCache && !a.sessionsSynced
	if !msg.FromCache {
		a.sessionsSynced = true
	}

	a.dataModel.Sessions = msg.Sessions

	var cmds []tea.Cmd
	switch {
	case a.dataModel.CurrentSessionID == 0 && len(msg.Sessions) > 0:
		remembered := storage.LoadCurrentSessionID(a.dataModel.Config.DataDir())
		chosen := msg.Sessions[0].ID
		for _, s := range msg.Sessions {
			if s.ID == remembered {
				chosen = remembered
				break
			}
		}
		a.dataModel.CurrentSessionID = chosen
		if msg.FromCache {
			cmds = append(cmds, a.dataModel.LoadCachedMessages(chosen))
		} else {
			cmds = append(cmds, a.dataModel.LoadMessages(chosen))
		}

	case firstServerList && a.dataModel.CurrentSessionID != 0:
		// The cached list already picked the session, so its log is a
		// snapshot from the previous run (possibly a reply cut off
		// mid-stream). Replace it with the backend's.
		cmds = append(cmds, a.dataModel.LoadMessages(a.dataModel.CurrentSessionID))
	}

	return a, tea.Batch(cmds...)
}

func (a AppView) handleSessionCreated(msg sessionCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.pendingMessage = ""
		return a, a.setStatusError(errorText(msg.Err))
	}

	a.dataModel.StopPolling()
	a.dataModel.CurrentSessionID = msg.ID
	a.dataModel.Messages = nil
	a.dataModel.RememberCurrentSession()
	a.closeSessionManager()
	a.updateViewportContent(true)

	cmds := []tea.Cmd{a.dataModel.FetchSessions()}
	if a.pendingMessage != "" {
		pending := a.pendingMessage
		a.pendingMessage = ""
		cmds = append(cmds, a.dataModel.SendChatMessage(msg.ID, pending))
	}
	return a, tea.Batch(cmds...)
}

func (a AppView) handleSessionDeleted(msg sessionDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return a, a.setStatusError(errorText(msg.Err))
	}

	sessions := a.dataModel.Sessions
	for i := range sessions {
		if sessions[i].ID == msg.ID {
			a.dataModel.Sessions = append(sessions[:i], sessions[i+1:]...)
			break
		}
	}
	if a.selectedSessionIdx >= len(a.dataModel.Sessions) && a.selectedSessionIdx > 0 {
		a.selectedSessionIdx--
	}

	var cmd tea.Cmd
	if msg.ID == a.dataModel.CurrentSessionID {
		a.dataModel.StopPolling()
		a.dataModel.Messages = nil
		a.dataModel.CurrentSessionID = 0
		if len(a.dataModel.Sessions) > 0 {
			a.dataModel.CurrentSessionID = a.dataModel.Sessions[0].ID
			a.dataModel.RememberCurrentSession()
			cmd = a.dataModel.LoadMessages(a.dataModel.CurrentSessionID)
		}
		a.updateViewportContent(true)
	}
	return a, cmd
}

func (a AppView) handleMessagesLoaded(msg messagesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.SessionID != a.dataModel.CurrentSessionID {
		return a, nil
	}
	if msg.Err != nil {
		if msg.FromCache {
			return a, nil
		}
		return a, a.setStatusError(errorText(msg.Err))
	}
	if msg.FromCache && len(a.dataModel.Messages) > 0 {
		return a, nil
	}

	messages := msg.Messages
	var cmds []tea.Cmd
	for i := range messages {
		messages[i].Rendered = messages[i].Content
		if messages[i].Role == "assistant" && messages[i].Terminal() {
			cmds = append(cmds, a.renderMarkdownAsync(i, messages[i].Content))
		}
	}

	a.dataModel.Messages = messages
	a.updateViewportContent(true)
	return a, tea.Batch(cmds...)
}

func (a AppView) handleMessageSent(msg messageSentMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return a, a.setStatusError(errorText(msg.Err))
	}
	if msg.SessionID != a.dataModel.CurrentSessionID {
		return a, nil
	}

	a.dataModel.Messages = append(a.dataModel.Messages, Message{
		ID:        msg.MessageID,
		Role:      "user",
		Content:   msg.Content,
		Rendered:  msg.Content,
		Status:    api.StatusCompleted,
		CreatedAt: time.Now(),
	})
	a.updateViewportContent(true)

	a.dataModel.StartPolling(msg.SessionID, msg.MessageID)

	cmds := []tea.Cmd{a.loadingSpinner.Tick}
	if len(a.dataModel.Messages) == 1 {
		if cmd := a.dataModel.AutoTitleSession(msg.SessionID, msg.Content); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return a, tea.Batch(cmds...)
}

func (a AppView) handleNetworkStatus(msg networkStatusMsg) (tea.Model, tea.Cmd) {
	if msg.Offline {
		a.screen = screenOffline
		return a, nil
	}

	if a.screen == screenOffline {
		if a.dataModel.LoggedIn() {
			a.screen = screenChat
			a.textarea.Focus()
		} else {
			a.screen = screenAuth
			a.usernameInput.Focus()
		}
	}

	var cmds []tea.Cmd
	if a.dataModel.LoggedIn() {
		cmds = append(cmds, a.dataModel.FetchSessions())
		if id := a.dataModel.CurrentSessionID; id != 0 {
			cmds = append(cmds, a.dataModel.LoadMessages(id))
		}
	}
	return a, tea.Batch(cmds...)
}

func (a *AppView) setStatusError(text string) tea.Cmd {
	a.statusErr = text
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return statusClearMsg{}
	})
}

// errorText turns a command error into a status line the user can act on.
func errorText(err error) string {
	if apiErr, ok := api.IsAPIError(err); ok {
		return apiErr.Message
	}
	return "Cannot reach server"
}
