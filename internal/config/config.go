// Package config holds the ACE runtime configuration. Every path and
// model choice is an explicit value threaded into constructors; nothing
// reads a module-level location, so tests can point the engine at an
// isolated directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration, persisted as YAML in the
// data directory.
type Config struct {
	// DataDir holds the playbook database, the log file, and this config.
	DataDir string `yaml:"data_dir,omitempty"`

	// ProjectsDir is where Claude Code keeps session transcripts.
	ProjectsDir string `yaml:"projects_dir,omitempty"`

	// Provider selects the reasoning backend: openai, anthropic, gemini,
	// ollama, or cli.
	Provider string `yaml:"provider"`

	// FilterModel runs the cheap triviality filter; Model runs the main
	// analysis stages.
	FilterModel string `yaml:"filter_model"`
	Model       string `yaml:"model"`

	OpenAI    OpenAIConfig    `yaml:"openai,omitempty"`
	Anthropic AnthropicConfig `yaml:"anthropic,omitempty"`
	Gemini    GeminiConfig    `yaml:"gemini,omitempty"`
	CLI       CLIConfig       `yaml:"cli,omitempty"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key,omitempty"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key,omitempty"`
}

type CLIConfig struct {
	Path string `yaml:"path,omitempty"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:     filepath.Join(home, ".ace"),
		ProjectsDir: filepath.Join(home, ".claude", "projects"),
		Provider:    "openai",
		FilterModel: "gpt-5-mini",
		Model:       "gpt-5.2",
	}
}

// Load reads the config file under dataDir, falling back to defaults when
// it does not exist. An empty dataDir means the default location.
func Load(dataDir string) (Config, error) {
	cfg := Default()
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	data, err := os.ReadFile(cfg.Path()) // #nosec G304
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

// Save writes the config file under its data directory.
func (c Config) Save() error {
	if err := os.MkdirAll(c.DataDir, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.Path(), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Path returns the config file location.
func (c Config) Path() string {
	return filepath.Join(c.DataDir, "config.yaml")
}

// DBPath returns the playbook database location.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "ace.db")
}

// LogPath returns the background pipeline log location.
func (c Config) LogPath() string {
	return filepath.Join(c.DataDir, "ace.log")
}

// Get returns a configuration value by dotted key.
func (c Config) Get(key string) (string, error) {
	switch key {
	case "data_dir":
		return c.DataDir, nil
	case "projects_dir":
		return c.ProjectsDir, nil
	case "provider":
		return c.Provider, nil
	case "filter_model":
		return c.FilterModel, nil
	case "model":
		return c.Model, nil
	case "openai.api_key":
		return c.OpenAI.APIKey, nil
	case "openai.base_url":
		return c.OpenAI.BaseURL, nil
	case "anthropic.api_key":
		return c.Anthropic.APIKey, nil
	case "gemini.api_key":
		return c.Gemini.APIKey, nil
	case "cli.path":
		return c.CLI.Path, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// Set updates a configuration value by dotted key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "projects_dir":
		c.ProjectsDir = value
	case "provider":
		c.Provider = value
	case "filter_model":
		c.FilterModel = value
	case "model":
		c.Model = value
	case "openai.api_key":
		c.OpenAI.APIKey = value
	case "openai.base_url":
		c.OpenAI.BaseURL = value
	case "anthropic.api_key":
		c.Anthropic.APIKey = value
	case "gemini.api_key":
		c.Gemini.APIKey = value
	case "cli.path":
		c.CLI.Path = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
