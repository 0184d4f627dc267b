package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, 8, cfg.Agent.MaxIterations)
	assert.NotEmpty(t, cfg.Agent.SystemPrompt)
	assert.Equal(t, 60*time.Second, cfg.Model.Timeout)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"listen_addr": ":9999"},
		"model": {"base_url": "https://example.com/v1", "model": "test-model"},
		"agent": {"max_iterations": 3},
		"store": {"path": "/tmp/agent.db"}
	}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.ListenAddr)
	assert.Equal(t, "test-model", cfg.Model.Model)
	assert.Equal(t, 3, cfg.Agent.MaxIterations)
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("DESKAGENT_LISTEN_ADDR", ":7777")
	t.Setenv("DESKAGENT_MODEL", "env-model")
	t.Setenv("DESKAGENT_API_KEY", "env-key")
	t.Setenv("DESKAGENT_MAX_ITERATIONS", "5")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Server.ListenAddr)
	assert.Equal(t, "env-model", cfg.Model.Model)
	assert.Equal(t, "env-key", cfg.Model.APIKey)
	assert.Equal(t, 5, cfg.Agent.MaxIterations)
}

func TestLoadValidatesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"model": {"base_url": "not a url", "model": "m"}
	}`), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}
