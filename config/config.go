package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type ServerConfig struct {
	URL          string `toml:"url"`
	DefaultModel string `toml:"default_model"`
}

type UserConfig struct {
	Server ServerConfig `toml:"server"`
}

type Config struct {
	DataDirectory string
	ServerURL     string
	DefaultModel  string
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("AITUI_SERVER_URL"); url != "" {
		c.ServerURL = url
	}
	if model := os.Getenv("AITUI_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if dataDir := os.Getenv("AITUI_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
}

func CheckDebug() bool {
	debug := os.Getenv("AITUI_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// Create debug log with secure permissions (0600 - may contain sensitive debug info)
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (AITUI_DEBUG=%s) ===", os.Getenv("AITUI_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

func HasAllEnvVars() bool {
	return os.Getenv("AITUI_SERVER_URL") != "" &&
		os.Getenv("AITUI_DATA_DIR") != ""
}

func HasAnyEnvVar() bool {
	return os.Getenv("AITUI_SERVER_URL") != "" ||
		os.Getenv("AITUI_DATA_DIR") != ""
}

func GetMissingEnvVar() string {
	if os.Getenv("AITUI_SERVER_URL") == "" {
		return "AITUI_SERVER_URL"
	}
	if os.Getenv("AITUI_DATA_DIR") == "" {
		return "AITUI_DATA_DIR"
	}
	return ""
}

func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory: "~/.local/share/aitui",
		ServerURL:     "http://localhost:5000",
		DefaultModel:  "gpt-3.5-turbo",
	}

	if HasAllEnvVars() && !FileExists(GetSettingsFilePath()) {
		cfg.applyEnvOverrides()
	} else {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		cfg.DataDirectory = systemCfg.DataDirectory

		dataDir := cfg.DataDir()
		userCfg, err := LoadUserConfig(dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
		cfg.ServerURL = userCfg.Server.URL
		if userCfg.Server.DefaultModel != "" {
			cfg.DefaultModel = userCfg.Server.DefaultModel
		}
		cfg.applyEnvOverrides()
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}
