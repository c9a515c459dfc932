package model

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"aitui/api"
	"aitui/config"
	"aitui/poller"
)

// SendChatMessage submits a user message to a conversation. The reply
// arrives later through the poller; callers start it from the
// MessageSentMsg handler so polling begins with the accepted message id
// as baseline.
func (m *Model) SendChatMessage(sessionID int64, content string) tea.Cmd {
	client := m.Client
	model := m.Config.DefaultModel

	return func() tea.Msg {
		id, err := client.SendMessage(context.Background(), sessionID, content, model)
		m.reportOutcome(err)
		return MessageSentMsg{
			SessionID: sessionID,
			MessageID: id,
			Content:   content,
			Err:       err,
		}
	}
}

// fetchUpdates is the poller's fetch function. context.Background is
// deliberate: cancellation is the poller's generation counter, and the
// request itself is bounded by the client timeout.
func (m *Model) fetchUpdates(sessionID, lastMessageID int64) ([]api.Fragment, error) {
	return m.Client.MessageUpdates(context.Background(), sessionID, lastMessageID)
}

// StartPolling begins watching a conversation for the assistant reply
// that follows baselineID. Poller events are re-delivered onto the UI
// loop as typed messages.
func (m *Model) StartPolling(sessionID, baselineID int64) {
	m.Loading = true

	m.Poller.Start(sessionID, baselineID, func(ev poller.Event) {
		switch ev.Kind {
		case poller.EventAppend:
			m.send(AssistantAppendMsg{
				SessionID: ev.SessionID,
				Message: Message{
					ID:      ev.Fragment.ID,
					Role:    "assistant",
					Content: ev.Fragment.Content,
					Status:  ev.Fragment.Status,
				},
			})
		case poller.EventDelta:
			m.send(AssistantDeltaMsg{
				SessionID: ev.SessionID,
				MessageID: ev.Fragment.ID,
				Content:   ev.Fragment.Content,
				Status:    ev.Fragment.Status,
			})
		case poller.EventDone:
			m.send(PollDoneMsg{SessionID: ev.SessionID})
		case poller.EventAborted:
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Model] Polling aborted for session %d: %v", ev.SessionID, ev.Err)
			}
			m.send(PollAbortedMsg{SessionID: ev.SessionID, Err: ev.Err})
		}
	})
}

// StopPolling abandons the in-flight poll, if any. Safe to call when
// nothing is being polled.
func (m *Model) StopPolling() {
	m.Loading = false
	m.Poller.Stop()
}

// ProbeConnection issues a one-off reachability check, used by the
// offline view's retry action.
func (m *Model) ProbeConnection() tea.Cmd {
	monitor := m.Monitor

	return func() tea.Msg {
		online := monitor.Probe(context.Background())
		return ProbeResultMsg{Online: online}
	}
}
