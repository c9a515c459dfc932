package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"aitui/api"
	"aitui/config"
	appmodel "aitui/model"
)

func newTestView(t *testing.T, serverURL string) AppView {
	t.Helper()

	cfg := &config.Config{
		DataDirectory: t.TempDir(),
		ServerURL:     serverURL,
		DefaultModel:  "gpt-3.5-turbo",
	}
	creds := config.Credentials{AccessToken: "token", UserID: 1, Username: "tester"}

	dataModel := appmodel.NewModel(cfg, creds, nil, "v0.0.0-test")
	a := NewAppView(dataModel)
	a.ready = true
	a.width = 80
	a.height = 24
	return a
}

// runCmd executes a command tree and collects the messages it produces.
func runCmd(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, runCmd(t, c)...)
		}
		return msgs
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func TestServerSessionListRefreshesCachePickedConversation(t *testing.T) {
	var loads int32
	mux := http.NewServeMux()
	mux.HandleFunc("/message/3", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&loads, 1)
		json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]any{
				{"id": 41, "role": "user", "content": "Hi", "status": api.StatusCompleted},
				{"id": 42, "role": "assistant", "content": "Hello there", "status": api.StatusCompleted},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	a := newTestView(t, srv.URL)
	sessions := []api.Session{{ID: 3, Title: "greetings"}}

	// Warm start: the cached list arrives first and picks the session
	m, _ := a.Update(sessionsListMsg{Sessions: sessions, FromCache: true})
	a = m.(AppView)
	if a.dataModel.CurrentSessionID != 3 {
		t.Fatalf("current session = %d after cached list, want 3", a.dataModel.CurrentSessionID)
	}

	// The cached log is a snapshot from a run that quit mid-reply
	m, _ = a.Update(messagesLoadedMsg{
		SessionID: 3,
		Messages: []Message{
			{ID: 41, Role: "user", Content: "Hi", Status: api.StatusCompleted},
			{ID: 42, Role: "assistant", Content: "Hel", Status: api.StatusStreaming},
		},
		FromCache: true,
	})
	a = m.(AppView)

	// The authoritative list must trigger a backend reload even though
	// the session is already chosen
	m, cmd := a.Update(sessionsListMsg{Sessions: sessions})
	a = m.(AppView)

	var loaded *messagesLoadedMsg
	for _, msg := range runCmd(t, cmd) {
		if ml, ok := msg.(messagesLoadedMsg); ok {
			loaded = &ml
			break
		}
	}
	if loaded == nil {
		t.Fatal("server session list produced no message reload for the chosen session")
	}
	if loaded.SessionID != 3 || loaded.FromCache {
		t.Fatalf("reload = session %d fromCache %v, want session 3 from server", loaded.SessionID, loaded.FromCache)
	}
	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Fatalf("backend message loads = %d, want 1", n)
	}

	m, _ = a.Update(*loaded)
	a = m.(AppView)
	last := a.dataModel.Messages[len(a.dataModel.Messages)-1]
	if last.Content != "Hello there" || last.Status != api.StatusCompleted {
		t.Errorf("log not refreshed from backend: content %q status %q", last.Content, last.Status)
	}

	// Later server lists (session manager refreshes, reconnects) must
	// not reload the conversation again
	_, cmd = a.Update(sessionsListMsg{Sessions: sessions})
	for _, msg := range runCmd(t, cmd) {
		if _, ok := msg.(messagesLoadedMsg); ok {
			t.Error("second server session list reloaded the conversation")
		}
	}
	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Errorf("backend message loads = %d after second list, want 1", n)
	}
}

func TestLateCachedSessionListIsIgnoredAfterServerSync(t *testing.T) {
	a := newTestView(t, "http://127.0.0.1:0")

	m, _ := a.Update(sessionsListMsg{Sessions: []api.Session{{ID: 5, Title: "fresh"}}})
	a = m.(AppView)

	m, _ = a.Update(sessionsListMsg{Sessions: []api.Session{{ID: 9, Title: "stale"}}, FromCache: true})
	a = m.(AppView)

	if len(a.dataModel.Sessions) != 1 || a.dataModel.Sessions[0].ID != 5 {
		t.Errorf("sessions = %+v, want the server list kept", a.dataModel.Sessions)
	}
}

func TestAssistantFragmentsMergeIntoOneMessage(t *testing.T) {
	a := newTestView(t, "http://127.0.0.1:0")
	a.dataModel.CurrentSessionID = 7
	a.dataModel.Messages = []Message{
		{ID: 41, Role: "user", Content: "Hi", Rendered: "Hi", Status: api.StatusCompleted},
	}

	m, _ := a.Update(assistantAppendMsg{
		SessionID: 7,
		Message:   Message{ID: 42, Role: "assistant", Content: "Hel", Status: api.StatusStreaming},
	})
	a = m.(AppView)

	if len(a.dataModel.Messages) != 2 {
		t.Fatalf("log length = %d after first fragment, want 2", len(a.dataModel.Messages))
	}

	m, _ = a.Update(assistantDeltaMsg{SessionID: 7, MessageID: 42, Content: "lo", Status: api.StatusStreaming})
	a = m.(AppView)
	m, _ = a.Update(assistantDeltaMsg{SessionID: 7, MessageID: 42, Content: "!", Status: api.StatusCompleted})
	a = m.(AppView)

	// Deltas grow the entry the first fragment introduced, never add one
	if len(a.dataModel.Messages) != 2 {
		t.Fatalf("log length = %d after deltas, want 2", len(a.dataModel.Messages))
	}

	reply := a.dataModel.Messages[1]
	if reply.Content != "Hello!" {
		t.Errorf("reply content = %q, want concatenation %q", reply.Content, "Hello!")
	}
	if reply.Status != api.StatusCompleted {
		t.Errorf("reply status = %q, want %q", reply.Status, api.StatusCompleted)
	}
	if reply.ID != 42 {
		t.Errorf("reply id = %d, want 42", reply.ID)
	}
}

func TestChatTitleShowsVersion(t *testing.T) {
	a := newTestView(t, "http://127.0.0.1:0")
	if !strings.Contains(a.View(), "v0.0.0-test") {
		t.Error("chat title bar does not show the application version")
	}
}

func TestFragmentsForOtherConversationsAreIgnored(t *testing.T) {
	a := newTestView(t, "http://127.0.0.1:0")
	a.dataModel.CurrentSessionID = 7
	a.dataModel.Messages = []Message{
		{ID: 50, Role: "assistant", Content: "old", Rendered: "old", Status: api.StatusStreaming},
	}

	m, _ := a.Update(assistantAppendMsg{
		SessionID: 8,
		Message:   Message{ID: 60, Role: "assistant", Content: "other", Status: api.StatusStreaming},
	})
	a = m.(AppView)
	m, _ = a.Update(assistantDeltaMsg{SessionID: 8, MessageID: 50, Content: "er", Status: api.StatusStreaming})
	a = m.(AppView)

	if len(a.dataModel.Messages) != 1 || a.dataModel.Messages[0].Content != "old" {
		t.Errorf("log mutated by another conversation's fragments: %+v", a.dataModel.Messages)
	}
}
