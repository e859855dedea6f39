package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/cadence/internal/constants"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Empty(t, c.API.BaseURL)
	assert.Equal(t, DefaultAIBaseURL, c.AI.BaseURL)
	assert.Equal(t, DefaultAIModel, c.AI.Model)
	assert.Equal(t, DefaultAINumCtx, c.AI.NumCtx)
	assert.Equal(t, DefaultPrompt, c.AI.Prompt)
	assert.Equal(t, float64(DefaultRequestsPerSecond), c.API.RequestsPerSecond)
	assert.Equal(t, DefaultTimeout, c.API.Timeout)
}

func TestLoad_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "services.yaml")
	content := `
api:
  base_url: https://tasks.example.com/api/
  requests_per_second: 2
  timeout: 10s
ai:
  base_url: http://ollama:11434
  model: qwen2.5:7b
  num_ctx: 8000
  prompt: Plan my week.
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://tasks.example.com/api", c.API.BaseURL)
	assert.Equal(t, 2.0, c.API.RequestsPerSecond)
	assert.Equal(t, 10*time.Second, c.API.Timeout)
	assert.Equal(t, "http://ollama:11434", c.AI.BaseURL)
	assert.Equal(t, "qwen2.5:7b", c.AI.Model)
	assert.Equal(t, 8000, c.AI.NumCtx)
	assert.Equal(t, "Plan my week.", c.AI.Prompt)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "services.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unterminated"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(constants.EnvAPIBaseURL, "http://localhost:8080/api/")
	t.Setenv(constants.EnvAIBaseURL, "http://gpu-box:11434")

	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", c.API.BaseURL)
	assert.Equal(t, "http://gpu-box:11434", c.AI.BaseURL)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "services.yaml")
	c := Default()
	c.API.BaseURL = "https://tasks.example.com"

	require.NoError(t, Save(path, c))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config", "cadence"), ExpandPath("~/.config/cadence"))
	assert.Equal(t, "/tmp/cadence.db", ExpandPath("/tmp/cadence.db"))
	assert.Equal(t, "postgres://db/cadence", ExpandPath("postgres://db/cadence"))
}
