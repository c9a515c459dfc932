package ui

import (
	"aitui/model"
)

// Message type alias so rendering code reads naturally
type Message = model.Message

// Messages produced by background commands live in the model package;
// aliased here for the Update switch.
type loginMsg = model.LoginMsg
type registerMsg = model.RegisterMsg
type sessionsListMsg = model.SessionsListMsg
type sessionCreatedMsg = model.SessionCreatedMsg
type sessionRenamedMsg = model.SessionRenamedMsg
type sessionDeletedMsg = model.SessionDeletedMsg
type messagesLoadedMsg = model.MessagesLoadedMsg
type messageSentMsg = model.MessageSentMsg
type assistantAppendMsg = model.AssistantAppendMsg
type assistantDeltaMsg = model.AssistantDeltaMsg
type pollDoneMsg = model.PollDoneMsg
type pollAbortedMsg = model.PollAbortedMsg
type networkStatusMsg = model.NetworkStatusMsg
type probeResultMsg = model.ProbeResultMsg
type sessionExpiredMsg = model.SessionExpiredMsg
type markdownRenderedMsg = model.MarkdownRenderedMsg

// statusClearMsg dismisses the transient status bar error.
type statusClearMsg struct{}
