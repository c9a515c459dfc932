package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"aitui/config"
	appmodel "aitui/model"
	"aitui/storage"
	"aitui/ui"
)

const Version = "v0.1.0"

func main() {
	// Validate environment variables first
	if config.HasAnyEnvVar() && !config.HasAllEnvVars() {
		missingVar := config.GetMissingEnvVar()
		errorMsg := fmt.Sprintf("Missing environment variable: %s\n\n"+
			"When using environment variables, both must be set:\n"+
			"  • AITUI_SERVER_URL\n"+
			"  • AITUI_DATA_DIR\n\n"+
			"Set the missing variable(s) before launching aitui.",
			missingVar)

		errorModal := ui.NewErrorModal("Configuration Error", errorMsg)
		p := tea.NewProgram(
			errorModal,
			tea.WithAltScreen(),
		)

		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(cfg.DataDir())

	creds, err := config.LoadCredentials(cfg.DataDir())
	if err != nil {
		// Unreadable credentials just mean logging in again
		if config.DebugLog != nil {
			config.DebugLog.Printf("Warning: failed to load credentials: %v", err)
		}
	}

	// The app works without the cache, it just loses offline reading
	cache, err := storage.NewCache(cfg.DataDir())
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("Warning: failed to open cache: %v", err)
		}
		cache = nil
	}
	if cache != nil {
		defer cache.Close()
	}

	dataModel := appmodel.NewModel(cfg, creds, cache, Version)

	p := tea.NewProgram(
		ui.NewAppView(dataModel),
		tea.WithAltScreen(),
	)

	// Poller and monitor events reach the UI loop through Send
	dataModel.SetNotifier(p.Send)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running aitui: %v\n", err)
		os.Exit(1)
	}
}
