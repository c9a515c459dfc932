package config

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/aitui",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Server: ServerConfig{
			URL:          "http://localhost:5000",
			DefaultModel: "gpt-3.5-turbo",
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# AITUI System Configuration
# Location: ~/.config/aitui/settings.toml
# This file uses TOML format: https://toml.io

# Directory where the conversation cache and user config are stored
data_directory = "~/.local/share/aitui"
`
}

func GenerateUserConfigTemplate() string {
	return `# AITUI User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[server]
# Chat backend base URL
url = "http://localhost:5000"

# Model requested when sending messages
default_model = "gpt-3.5-turbo"
`
}
