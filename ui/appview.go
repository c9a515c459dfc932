package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"aitui/api"
	appmodel "aitui/model"
)

// screen selects which top-level view is showing. Auth and offline
// replace the chat entirely; everything else layers over the chat.
type screen int

const (
	screenAuth screen = iota
	screenChat
	screenOffline
)

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model

	// UI Components
	viewport viewport.Model
	textarea textarea.Model

	// Window state
	width  int
	height int
	ready  bool

	screen screen

	// Loading spinner (bubbles/spinner)
	loadingSpinner spinner.Model

	// Auth screen state
	usernameInput    textinput.Model
	passwordInput    textinput.Model
	authRegisterMode bool
	authFocusIdx     int
	authBusy         bool
	authNotice       string
	authErr          string

	// Set once the first server session list has been applied. Until
	// then a list restored from the cache is a stand-in, and the
	// session it picked still needs its log refreshed from the backend.
	sessionsSynced bool

	// Session management UI
	showSessionManager  bool
	selectedSessionIdx  int
	sessionRenameMode   bool
	sessionRenameInput  textinput.Model
	sessionFilterMode   bool
	sessionFilterInput  textinput.Model
	filteredSessionList []api.Session

	// Delete confirmation state
	confirmDeleteSession *api.Session

	// Message typed before its session existed; sent once the session
	// create round-trip finishes.
	pendingMessage string

	// Offline screen state
	offlineProbing bool

	// Transient status bar error (auto-dismissed)
	statusErr string
}

func NewAppView(dataModel *appmodel.Model) AppView {
	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Alt+Enter for newline, Enter alone sends (handled separately)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	vp := viewport.New(0, 0)

	usernameInput := textinput.New()
	usernameInput.Prompt = ""
	usernameInput.Placeholder = "username"
	usernameInput.CharLimit = 64
	usernameInput.Width = 30

	passwordInput := textinput.New()
	passwordInput.Prompt = ""
	passwordInput.Placeholder = "password"
	passwordInput.CharLimit = 128
	passwordInput.Width = 30
	passwordInput.EchoMode = textinput.EchoPassword

	sessionRenameInput := textinput.New()
	sessionRenameInput.Prompt = ""
	sessionRenameInput.CharLimit = 64

	sessionFilterInput := textinput.New()
	sessionFilterInput.Prompt = "Filter: "
	sessionFilterInput.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	initialScreen := screenAuth
	if dataModel.LoggedIn() {
		initialScreen = screenChat
		ta.Focus()
	} else {
		usernameInput.Focus()
	}

	return AppView{
		dataModel:           dataModel,
		textarea:            ta,
		viewport:            vp,
		loadingSpinner:      sp,
		screen:              initialScreen,
		usernameInput:       usernameInput,
		passwordInput:       passwordInput,
		sessionRenameInput:  sessionRenameInput,
		sessionFilterInput:  sessionFilterInput,
		filteredSessionList: []api.Session{},
	}
}

func (a AppView) Init() tea.Cmd {
	cmds := []tea.Cmd{a.loadingSpinner.Tick}

	if a.dataModel.LoggedIn() {
		cmds = append(cmds,
			textarea.Blink,
			a.dataModel.LoadCachedSessions(),
			a.dataModel.FetchSessions(),
		)
	} else {
		cmds = append(cmds, textinput.Blink)
	}

	return tea.Batch(cmds...)
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading AITUI..."
	}

	if a.screen == screenOffline {
		return a.renderOffline()
	}

	if a.screen == screenAuth {
		return a.renderAuth()
	}

	// Delete confirmation layers over the session manager
	if a.confirmDeleteSession != nil {
		warningText := ErrorStyle.Render("This action cannot be undone.")
		return RenderConfirmationModal(ConfirmationState{
			Active:  true,
			Title:   "⚠ Delete Conversation",
			Message: fmt.Sprintf("Are you sure you want to delete:\n\n\"%s\"\n\n%s", a.confirmDeleteSession.Title, warningText),
		}, a.width, a.height)
	}

	if a.showSessionManager {
		return renderSessionManager(
			a.getSessionList(),
			len(a.dataModel.Sessions),
			a.selectedSessionIdx,
			a.dataModel.CurrentSessionID,
			a.sessionRenameMode,
			a.sessionRenameInput,
			a.sessionFilterMode,
			a.sessionFilterInput,
			a.width,
			a.height,
		)
	}

	return a.renderChat()
}

func (a AppView) renderChat() string {
	// Title bar - "AITUI v0.1.0 - model - session title"
	appText := AssistantStyle.Render(fmt.Sprintf("AITUI %s", a.dataModel.Version))
	modelText := TitleStyle.Render(fmt.Sprintf(" - %s", a.dataModel.Config.DefaultModel))
	sessionTitle := "New Conversation"
	if s := a.dataModel.CurrentSession(); s != nil && s.Title != "" {
		sessionTitle = s.Title
	}
	sessionText := UserStyle.Render(fmt.Sprintf(" - %s", sessionTitle))
	title := appText + modelText + sessionText

	separator := ""

	viewportView := a.viewport.View()
	inputView := a.textarea.View()

	var statusBar string
	if a.statusErr != "" {
		statusBar = ErrorStyle.Render(a.statusErr)
	} else {
		descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
		statusBar = fmt.Sprintf("Alt+Q %s  Alt+S %s  Alt+N %s  Alt+Y %s  Alt+L %s  Alt+Enter %s  Enter %s",
			descStyle.Render("Quit"),
			descStyle.Render("Sessions"),
			descStyle.Render("New"),
			descStyle.Render("Copy"),
			descStyle.Render("Logout"),
			descStyle.Render("New Line"),
			descStyle.Render("Send"),
		)
		statusBar = StatusStyle.Render(statusBar)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		separator,
		viewportView,
		inputView,
		statusBar,
	)
}

func (a AppView) getSessionList() []api.Session {
	if a.sessionFilterMode && len(a.filteredSessionList) > 0 {
		return a.filteredSessionList
	}
	return a.dataModel.Sessions
}

func (a *AppView) closeSessionManager() {
	a.showSessionManager = false
	a.sessionRenameMode = false
	a.sessionFilterMode = false
	a.confirmDeleteSession = nil

	if a.sessionRenameInput.Focused() {
		a.sessionRenameInput.Blur()
	}
	if a.sessionFilterInput.Focused() {
		a.sessionFilterInput.Blur()
	}
	a.textarea.Focus()
}
