package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (a AppView) renderOffline() string {
	var sb strings.Builder

	sb.WriteString(ErrorStyle.Render("⚠  Server Unreachable"))
	sb.WriteString("\n\n")
	sb.WriteString(DimStyle.Render("Lost connection to " + a.dataModel.Config.ServerURL))
	sb.WriteString("\n")
	sb.WriteString(DimStyle.Render("Your conversations are safe and will reload once the server is back."))
	sb.WriteString("\n\n\n")

	if a.offlineProbing {
		sb.WriteString(a.loadingSpinner.View() + " Checking connection...")
	} else {
		sb.WriteString(FormatFooter("r", "Retry", "q", "Quit"))
	}

	if a.statusErr != "" {
		sb.WriteString("\n\n")
		sb.WriteString(ErrorStyle.Render(a.statusErr))
	}

	content := sb.String()

	// Center each line, then the block
	var centered []string
	for _, line := range strings.Split(content, "\n") {
		centered = append(centered, lipgloss.NewStyle().Width(60).Align(lipgloss.Center).Render(line))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, strings.Join(centered, "\n"))
}
