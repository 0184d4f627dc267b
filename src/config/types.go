// Package config loads the service configuration from a JSON file with
// environment variable overrides.
package config

import "time"

// Config is the full service configuration.
type Config struct {
	Server ServerConfig `json:"server"`
	Model  ModelConfig  `json:"model"`
	Agent  AgentConfig  `json:"agent"`
	Store  StoreConfig  `json:"store"`
	Notify NotifyConfig `json:"notify"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	ListenAddr      string        `json:"listen_addr" validate:"required"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// ModelConfig configures the chat-completion backend.
type ModelConfig struct {
	BaseURL    string        `json:"base_url" validate:"required,url"`
	APIKey     string        `json:"api_key"`
	Model      string        `json:"model" validate:"required"`
	Timeout    time.Duration `json:"timeout"`
	MaxRetries int           `json:"max_retries" validate:"min=0"`
}

// AgentConfig configures the agent loop.
type AgentConfig struct {
	SystemPrompt  string `json:"system_prompt"`
	MaxIterations int    `json:"max_iterations" validate:"min=1"`
}

// StoreConfig configures the sqlite database.
type StoreConfig struct {
	Path string `json:"path" validate:"required"`
}

// NotifyConfig configures the outbound notification webhook. An empty URL
// disables notifications.
type NotifyConfig struct {
	WebhookURL string `json:"webhook_url" validate:"omitempty,url"`
}
