// Package config loads the service configuration: where the remote task
// service and the AI planning service live and how hard to call them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/cadence/internal/constants"
)

const (
	DefaultAIBaseURL         = "http://localhost:11434"
	DefaultAIModel           = "llama3.2:3b"
	DefaultAINumCtx          = 4000
	DefaultRequestsPerSecond = 5
	DefaultTimeout           = 30 * time.Second
	DefaultAITimeout         = 2 * time.Minute

	DefaultPrompt = `You plan a week of personal tasks. Return only a JSON array.
Each element must have "task_id", "scheduled_date" (YYYY-MM-DD) and optionally
"scheduled_time" (HH:MM, 24h). Spread work across the week, keep high priority
tasks early and avoid more than four hours of work per day.`
)

type Config struct {
	API APIConfig `yaml:"api"`
	AI  AIConfig  `yaml:"ai"`
}

// APIConfig points at the remote task service. An empty BaseURL means the
// local store is used.
type APIConfig struct {
	BaseURL           string        `yaml:"base_url"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout"`
}

type AIConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Model             string        `yaml:"model"`
	NumCtx            int           `yaml:"num_ctx"`
	Prompt            string        `yaml:"prompt"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

func (c *Config) ApplyDefaults() {
	if c.API.RequestsPerSecond <= 0 {
		c.API.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = DefaultTimeout
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = DefaultAIBaseURL
	}
	if c.AI.Model == "" {
		c.AI.Model = DefaultAIModel
	}
	if c.AI.NumCtx <= 0 {
		c.AI.NumCtx = DefaultAINumCtx
	}
	if strings.TrimSpace(c.AI.Prompt) == "" {
		c.AI.Prompt = DefaultPrompt
	}
	if c.AI.RequestsPerSecond <= 0 {
		c.AI.RequestsPerSecond = 1
	}
	if c.AI.Timeout <= 0 {
		c.AI.Timeout = DefaultAITimeout
	}
	c.API.BaseURL = strings.TrimSuffix(c.API.BaseURL, "/")
	c.AI.BaseURL = strings.TrimSuffix(c.AI.BaseURL, "/")
}

// ApplyEnv overrides the service endpoints from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(constants.EnvAPIBaseURL); v != "" {
		c.API.BaseURL = strings.TrimSuffix(v, "/")
	}
	if v := os.Getenv(constants.EnvAIBaseURL); v != "" {
		c.AI.BaseURL = strings.TrimSuffix(v, "/")
	}
}

// Load reads the YAML file at path. A missing file yields the defaults.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	var c Config

	b, err := os.ReadFile(ExpandPath(path))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	c.ApplyDefaults()
	c.ApplyEnv()
	return &c, nil
}

// Save writes c to path, creating the parent directory.
func Save(path string, c *Config) error {
	path = ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0600)
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
