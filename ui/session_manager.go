package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"aitui/api"
)

func renderSessionManager(sessions []api.Session, totalCount, selectedIdx int, currentSessionID int64, renameMode bool, renameInput textinput.Model, filterMode bool, filterInput textinput.Model, width, height int) string {
	modalWidth := width - 10
	if modalWidth > 100 {
		modalWidth = 100
	}
	modalHeight := height - 6

	// Title section (no borders)
	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Conversations")

	// Header: show filter input or count
	var header string
	if filterMode {
		header = filterInput.View()
	} else if len(sessions) == totalCount {
		header = fmt.Sprintf("%d conversations", totalCount)
	} else {
		header = fmt.Sprintf("%d of %d conversations", len(sessions), totalCount)
	}

	headerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(header)

	var sessionLines []string
	maxLines := modalHeight - 8

	if len(sessions) == 0 {
		emptyMsg := "No conversations yet. Start chatting to create one!"
		if filterMode {
			emptyMsg = "No matches found"
		}
		sessionLines = append(sessionLines, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(emptyMsg))
	} else {
		startIdx := 0
		endIdx := len(sessions)

		// Scroll if needed
		if len(sessions) > maxLines {
			if selectedIdx < maxLines/2 {
				endIdx = maxLines
			} else if selectedIdx >= len(sessions)-maxLines/2 {
				startIdx = len(sessions) - maxLines
			} else {
				startIdx = selectedIdx - maxLines/2
				endIdx = startIdx + maxLines
			}
		}

		for i := startIdx; i < endIdx && i < len(sessions); i++ {
			session := sessions[i]

			indicator := "  "
			if i == selectedIdx {
				indicator = "▶ "
			}

			maxTitleWidth := modalWidth - 30

			var titleDisplay string
			if renameMode && i == selectedIdx {
				titleDisplay = lipgloss.NewStyle().
					Foreground(accentColor).
					Bold(true).
					Render(renameInput.View())
			} else {
				titleDisplay = session.Title
				if runewidth.StringWidth(titleDisplay) > maxTitleWidth {
					titleDisplay = runewidth.Truncate(titleDisplay, maxTitleWidth, "...")
				}
			}

			hasCurrentMarker := session.ID == currentSessionID && !renameMode

			rightSide := fmt.Sprintf("%10s", formatTimeAgo(session.CreatedAt))

			titleStyled := titleDisplay
			if i == selectedIdx {
				titleStyled = lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(titleDisplay)
			} else if session.ID == currentSessionID {
				titleStyled = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Render(titleDisplay)
			}

			leftSide := indicator + titleStyled

			// Spacing is computed from visual widths, not styled strings
			leftVisualWidth := len(indicator) + runewidth.StringWidth(titleDisplay)
			spacing := modalWidth - 4 - leftVisualWidth - len(rightSide)
			if hasCurrentMarker {
				spacing -= 10 // " (current)"
			}
			if spacing < 2 {
				spacing = 2
			}

			if hasCurrentMarker {
				markerColor := accentColor
				if i == selectedIdx {
					markerColor = successColor
				}
				leftSide += " " + lipgloss.NewStyle().Foreground(markerColor).Render("(current)")
			}

			rightStyled := rightSide
			if i == selectedIdx {
				rightStyled = lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(rightSide)
			} else if session.ID == currentSessionID {
				rightStyled = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Render(rightSide)
			}

			styledLine := fmt.Sprintf("  %s%s%s  ", leftSide, strings.Repeat(" ", spacing), rightStyled)

			sessionLines = append(sessionLines, lipgloss.NewStyle().
				Width(modalWidth).
				Render(styledLine))
		}
	}

	emptyLine := strings.Repeat(" ", modalWidth)
	sessionLines = append([]string{emptyLine}, sessionLines...)
	sessionLines = append(sessionLines, emptyLine)

	var footerText string
	if renameMode {
		footerText = FormatFooter("Alt+U", "Clear", "Enter", "Save", "Esc", "Cancel")
	} else if filterMode {
		footerText = FormatFooter("Type", "to filter", "Alt+J/K", "Navigate", "Enter", "Load", "Esc", "Cancel")
	} else {
		footerText = FormatFooter("/", "Filter", "j/k", "Navigate", "Enter", "Load", "n", "New", "r", "Rename", "d", "Delete", "Esc", "Exit")
	}

	footerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footerText)

	var sections []string
	sections = append(sections, titleSection)
	sections = append(sections, headerSection)
	sections = append(sections, sessionLines...)
	sections = append(sections, footerSection)

	content := strings.Join(sections, "\n")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// formatTimeAgo formats a time as a relative string (e.g., "2h ago", "3d ago")
func formatTimeAgo(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	} else if duration < time.Hour {
		return fmt.Sprintf("%dm ago", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(duration.Hours()))
	} else if duration < 30*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(duration.Hours()/24))
	}
	return t.Format("2006-01-02")
}
