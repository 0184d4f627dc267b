package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

const envPrefix = "DESKAGENT"

// Load reads configuration from the given path, falling back to the default
// location, applies environment overrides, and validates the result. A
// missing file is not an error; defaults plus overrides apply.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnvironmentOverrides(config)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func applyEnvironmentOverrides(config *Config) {
	if addr := os.Getenv(envPrefix + "_LISTEN_ADDR"); addr != "" {
		config.Server.ListenAddr = addr
	}
	if apiKey := os.Getenv(envPrefix + "_API_KEY"); apiKey != "" {
		config.Model.APIKey = apiKey
	}
	if config.Model.APIKey == "" {
		config.Model.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if baseURL := os.Getenv(envPrefix + "_BASE_URL"); baseURL != "" {
		config.Model.BaseURL = baseURL
	}
	if model := os.Getenv(envPrefix + "_MODEL"); model != "" {
		config.Model.Model = model
	}
	if timeout := os.Getenv(envPrefix + "_MODEL_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Model.Timeout = d
		}
	}
	if dbPath := os.Getenv(envPrefix + "_DB_PATH"); dbPath != "" {
		config.Store.Path = dbPath
	}
	if webhook := os.Getenv(envPrefix + "_WEBHOOK_URL"); webhook != "" {
		config.Notify.WebhookURL = webhook
	}
	if iterations := os.Getenv(envPrefix + "_MAX_ITERATIONS"); iterations != "" {
		if n, err := strconv.Atoi(iterations); err == nil && n > 0 {
			config.Agent.MaxIterations = n
		}
	}
}
