package model

import (
	tea "github.com/charmbracelet/bubbletea"

	"aitui/api"
	"aitui/config"
	"aitui/netmon"
	"aitui/poller"
	"aitui/storage"
)

// Model holds the core application data and business logic state
type Model struct {
	// Core dependencies
	Config  *config.Config
	Client  *api.Client
	Monitor *netmon.Monitor
	Poller  *poller.Poller
	Cache   *storage.Cache

	// Identity
	Credentials config.Credentials

	// Application data. The message log is owned here: only poller
	// events and load results applied on the UI loop mutate it.
	Sessions         []api.Session
	Messages         []Message
	CurrentSessionID int64

	// Runtime state (not UI)
	Loading  bool // a reply is being polled for
	Quitting bool

	// notify re-delivers events from background goroutines (poller,
	// monitor) onto the bubbletea loop. Set via SetNotifier once the
	// program exists.
	notify func(tea.Msg)

	// Application metadata
	Version string
}

// NewModel creates a new Model with the given configuration
func NewModel(cfg *config.Config, creds config.Credentials, cache *storage.Cache, version string) *Model {
	client := api.NewClient(cfg.ServerURL)
	if creds.IsLoggedIn() {
		client.SetToken(creds.AccessToken)
	}

	monitor := netmon.New(client.Ping)

	m := &Model{
		Config:      cfg,
		Client:      client,
		Monitor:     monitor,
		Cache:       cache,
		Credentials: creds,
		Version:     version,
	}

	m.Poller = poller.New(m.fetchUpdates, poller.WithReporter(monitor))

	client.OnUnauthorized(func() {
		m.send(SessionExpiredMsg{})
	})

	return m
}

// SetNotifier wires the bubbletea program's Send function. Until it is
// set, background events are dropped (nothing polls before the program
// is running).
func (m *Model) SetNotifier(fn func(tea.Msg)) {
	m.notify = fn

	m.Monitor.Subscribe(func(offline bool) {
		m.send(NetworkStatusMsg{Offline: offline})
	})
}

func (m *Model) send(msg tea.Msg) {
	if m.notify != nil {
		m.notify(msg)
	}
}

// LoggedIn reports whether a bearer token is present.
func (m *Model) LoggedIn() bool {
	return m.Credentials.IsLoggedIn()
}

// CurrentSession returns the active conversation, or nil.
func (m *Model) CurrentSession() *api.Session {
	for i := range m.Sessions {
		if m.Sessions[i].ID == m.CurrentSessionID {
			return &m.Sessions[i]
		}
	}
	return nil
}

// reportOutcome folds a request result into the availability state.
// An application-level error still proves the backend is reachable;
// only transport failures count as offline evidence.
func (m *Model) reportOutcome(err error) {
	if err == nil {
		m.Monitor.ReportOutcome(true)
		return
	}
	if _, ok := api.IsAPIError(err); ok {
		m.Monitor.ReportOutcome(true)
		return
	}
	m.Monitor.ReportOutcome(false)
}

// IsTransportError reports whether err means the backend was unreachable.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	_, ok := api.IsAPIError(err)
	return !ok
}
