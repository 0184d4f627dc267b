package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

const defaultSystemPrompt = `You are a support assistant for a ticketing system. You help staff manage tickets, users, and teams by calling the available tools. Always confirm what you did, and report tool failures honestly instead of pretending they succeeded.`

// DefaultConfig returns the configuration used when no file or override sets
// a value.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:      ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Model: ModelConfig{
			BaseURL:    "https://openrouter.ai/api/v1",
			Model:      "google/gemini-2.5-flash",
			Timeout:    60 * time.Second,
			MaxRetries: 3,
		},
		Agent: AgentConfig{
			SystemPrompt:  defaultSystemPrompt,
			MaxIterations: 8,
		},
		Store: StoreConfig{
			Path: filepath.Join(xdg.DataHome, "deskagent", "deskagent.db"),
		},
	}
}

// DefaultConfigPath is where Load looks when no path is given.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "deskagent", "config.json")
}
