package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"aitui/api"
)

func (a AppView) updateSessionManagerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.sessionRenameMode {
		return a.updateSessionRenameKeys(msg)
	}
	if a.sessionFilterMode {
		return a.updateSessionFilterKeys(msg)
	}

	switch msg.String() {
	case "esc":
		a.closeSessionManager()
		return a, nil

	case "/":
		a.sessionFilterMode = true
		a.sessionFilterInput.SetValue("")
		a.sessionFilterInput.Focus()
		a.filteredSessionList = a.dataModel.Sessions
		return a, textinput.Blink

	case "j", "down":
		if a.selectedSessionIdx < len(a.getSessionList())-1 {
			a.selectedSessionIdx++
		}
		return a, nil

	case "k", "up":
		if a.selectedSessionIdx > 0 {
			a.selectedSessionIdx--
		}
		return a, nil

	case "enter":
		return a.loadSelectedSession()

	case "n":
		return a, a.dataModel.CreateSession()

	case "r":
		list := a.getSessionList()
		if a.selectedSessionIdx < len(list) {
			a.sessionRenameMode = true
			a.sessionRenameInput.SetValue(list[a.selectedSessionIdx].Title)
			a.sessionRenameInput.CursorEnd()
			a.sessionRenameInput.Focus()
			return a, textinput.Blink
		}
		return a, nil

	case "d":
		list := a.getSessionList()
		if a.selectedSessionIdx < len(list) {
			target := list[a.selectedSessionIdx]
			a.confirmDeleteSession = &target
		}
		return a, nil
	}

	return a, nil
}

func (a AppView) updateSessionRenameKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.sessionRenameMode = false
		a.sessionRenameInput.Blur()
		return a, nil

	case "enter":
		title := strings.TrimSpace(a.sessionRenameInput.Value())
		if title == "" {
			return a, nil
		}
		list := a.getSessionList()
		if a.selectedSessionIdx >= len(list) {
			return a, nil
		}
		id := list[a.selectedSessionIdx].ID
		a.sessionRenameMode = false
		a.sessionRenameInput.Blur()
		return a, a.dataModel.RenameSession(id, title)

	case "alt+u":
		a.sessionRenameInput.SetValue("")
		return a, nil
	}

	var cmd tea.Cmd
	a.sessionRenameInput, cmd = a.sessionRenameInput.Update(msg)
	return a, cmd
}

func (a AppView) updateSessionFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.sessionFilterMode = false
		a.sessionFilterInput.Blur()
		a.filteredSessionList = nil
		a.selectedSessionIdx = 0
		return a, nil

	case "enter":
		return a.loadSelectedSession()

	case "alt+j":
		if a.selectedSessionIdx < len(a.getSessionList())-1 {
			a.selectedSessionIdx++
		}
		return a, nil

	case "alt+k":
		if a.selectedSessionIdx > 0 {
			a.selectedSessionIdx--
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.sessionFilterInput, cmd = a.sessionFilterInput.Update(msg)

	filterValue := a.sessionFilterInput.Value()
	if filterValue == "" {
		a.filteredSessionList = a.dataModel.Sessions
	} else {
		targets := make([]string, len(a.dataModel.Sessions))
		for i, s := range a.dataModel.Sessions {
			targets[i] = s.Title
		}

		matches := fuzzy.Find(filterValue, targets)
		a.filteredSessionList = make([]api.Session, len(matches))
		for i, match := range matches {
			a.filteredSessionList[i] = a.dataModel.Sessions[match.Index]
		}
	}

	list := a.getSessionList()
	if a.selectedSessionIdx >= len(list) && len(list) > 0 {
		a.selectedSessionIdx = len(list) - 1
	}

	return a, cmd
}

func (a AppView) loadSelectedSession() (tea.Model, tea.Cmd) {
	list := a.getSessionList()
	if a.selectedSessionIdx >= len(list) {
		return a, nil
	}
	target := list[a.selectedSessionIdx]
	a.closeSessionManager()

	if target.ID == a.dataModel.CurrentSessionID {
		return a, nil
	}

	a.dataModel.StopPolling()
	a.dataModel.CurrentSessionID = target.ID
	a.dataModel.Messages = nil
	a.dataModel.RememberCurrentSession()
	a.updateViewportContent(true)

	return a, tea.Batch(
		a.dataModel.LoadCachedMessages(target.ID),
		a.dataModel.LoadMessages(target.ID),
	)
}
