package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	authTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	authLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	authInputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 1).
			Width(36)

	authFocusedInputStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("10")).
				Padding(0, 1).
				Width(36)

	authErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	authNoticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))
)

func (a AppView) renderAuth() string {
	var sb strings.Builder

	title := "Log In"
	action := "Log in"
	if a.authRegisterMode {
		title = "Create Account"
		action = "Register"
	}

	sb.WriteString(authTitleStyle.Render("AITUI"))
	sb.WriteString("\n\n")
	sb.WriteString(authLabelStyle.Render(title))
	sb.WriteString("\n\n\n")

	usernameBox := authInputStyle
	passwordBox := authInputStyle
	if a.authFocusIdx == 0 {
		usernameBox = authFocusedInputStyle
	} else {
		passwordBox = authFocusedInputStyle
	}

	sb.WriteString(authLabelStyle.Render("Username"))
	sb.WriteString("\n")
	sb.WriteString(usernameBox.Render(a.usernameInput.View()))
	sb.WriteString("\n\n")
	sb.WriteString(authLabelStyle.Render("Password"))
	sb.WriteString("\n")
	sb.WriteString(passwordBox.Render(a.passwordInput.View()))
	sb.WriteString("\n\n\n")

	if a.authBusy {
		sb.WriteString(authLabelStyle.Render("⏳ " + action + "..."))
	} else {
		toggle := "Register instead"
		if a.authRegisterMode {
			toggle = "Log in instead"
		}
		sb.WriteString(authLabelStyle.Render("Tab Switch field • Enter " + action + " • Ctrl+R " + toggle + " • Ctrl+C Exit"))
	}

	if a.authNotice != "" {
		sb.WriteString("\n\n")
		sb.WriteString(authNoticeStyle.Render(a.authNotice))
	}
	if a.authErr != "" {
		sb.WriteString("\n\n")
		sb.WriteString(authErrorStyle.Render(a.authErr))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, sb.String())
}
