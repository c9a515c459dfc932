package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"aitui/api"
	"aitui/config"
	appmodel "aitui/model"
)

var mdLinkRegex = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)

func (a *AppView) updateViewportContent(gotoBottom bool) {
	if len(a.dataModel.Messages) == 0 {
		a.viewport.SetContent("No messages yet. Start chatting!")
		return
	}

	var content strings.Builder

	for _, msg := range a.dataModel.Messages {
		timestamp := DimStyle.Render(msg.CreatedAt.Format("[15:04]"))

		var roleStyle = DimStyle
		var roleName string
		switch msg.Role {
		case "user":
			roleStyle = UserStyle
			roleName = "You"
		case "assistant":
			roleStyle = AssistantStyle
			roleName = "Assistant"
		default:
			roleStyle = DimStyle
			roleName = "System"
		}

		role := roleStyle.Render(roleName)

		renderedContent := msg.Rendered

		// In-flight replies get a cursor; failed ones a marker
		if msg.Role == "assistant" && !msg.Terminal() {
			if renderedContent == "" {
				renderedContent = a.loadingSpinner.View() + " Waiting for reply..."
			} else {
				renderedContent += "▋"
			}
		}
		if msg.Status == api.StatusFailed {
			renderedContent += "\n" + ErrorStyle.Render("✗ Reply failed")
		}

		// User messages with vertical bar formatting
		if msg.Role == "user" {
			content.WriteString(formatUserMessage(timestamp, role, renderedContent))
			continue
		}

		content.WriteString(fmt.Sprintf("%s %s\n%s\n\n", timestamp, role, renderedContent))
	}

	// Spinner line between send acceptance and the first fragment
	if a.dataModel.Loading {
		last := a.dataModel.Messages[len(a.dataModel.Messages)-1]
		if last.Role != "assistant" {
			timestamp := DimStyle.Render(time.Now().Format("[15:04]"))
			role := AssistantStyle.Render("Assistant")
			content.WriteString(fmt.Sprintf("%s %s\n%s Waiting for reply...\n\n", timestamp, role, a.loadingSpinner.View()))
		}
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

func formatUserMessage(timestamp, role, content string) string {
	greenBold := "\x1b[32;1m"
	reset := "\x1b[0m"
	bar := greenBold + "┃" + reset

	lines := strings.Split(content, "\n")

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s %s %s\n", bar, timestamp, role))

	for _, line := range lines {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}

	result.WriteString("\n")

	return result.String()
}

// preprocessLinks strips markdown link syntax [text](url) so links show
// as plain URLs the terminal emulator can make clickable.
func preprocessLinks(content string) string {
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

func (a AppView) renderMarkdownAsync(messageIndex int, content string) tea.Cmd {
	width := a.width
	return func() tea.Msg {
		startTime := time.Now()

		content = preprocessLinks(content)

		// Autolink disabled so plain URLs stay plain text
		defaultExt := markdown.Extensions()
		customExt := defaultExt &^ parser.Autolink
		p := parser.NewWithExtensions(customExt)
		r := markdown.NewRenderer(width-4, 0)
		doc := p.Parse([]byte(content))
		rendered := gomarkdown.Render(doc, r)

		if config.DebugLog != nil {
			config.DebugLog.Printf("Markdown rendered for message %d in %v", messageIndex, time.Since(startTime))
		}

		return appmodel.MarkdownRenderedMsg{
			MessageIndex: messageIndex,
			Rendered:     strings.TrimRight(string(rendered), "\n"),
		}
	}
}
