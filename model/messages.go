package model

import "aitui/api"

type LoginMsg struct {
	Result api.LoginResult
	Err    error
}

type RegisterMsg struct {
	Err error
}

type SessionsListMsg struct {
	Sessions  []api.Session
	FromCache bool
	Err       error
}

type SessionCreatedMsg struct {
	ID  int64
	Err error
}

type SessionRenamedMsg struct {
	ID    int64
	Title string
	Err   error
}

type SessionDeletedMsg struct {
	ID  int64
	Err error
}

type MessagesLoadedMsg struct {
	SessionID int64
	Messages  []Message
	FromCache bool
	Err       error
}

type MessageSentMsg struct {
	SessionID int64
	MessageID int64
	Content   string
	Err       error
}

// Poller events, re-delivered on the UI loop.

type AssistantAppendMsg struct {
	SessionID int64
	Message   Message
}

type AssistantDeltaMsg struct {
	SessionID int64
	MessageID int64
	Content   string
	Status    string
}

type PollDoneMsg struct {
	SessionID int64
}

type PollAbortedMsg struct {
	SessionID int64
	Err       error
}

// NetworkStatusMsg is emitted on every availability transition.
type NetworkStatusMsg struct {
	Offline bool
}

type ProbeResultMsg struct {
	Online bool
}

// SessionExpiredMsg is emitted when the backend answers 401: the token
// is no longer valid and the user must log in again.
type SessionExpiredMsg struct{}

type MarkdownRenderedMsg struct {
	MessageIndex int
	Rendered     string
}
