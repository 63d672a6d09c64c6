// Package config loads taskgraph configuration from layered sources:
// defaults, then an optional TOML file, then environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full server configuration.
type Config struct {
	// DataDir holds the SQLite database.
	DataDir string `toml:"data_dir"`
	// Environment gates restricted operations; "test" enables the
	// bulk wipe.
	Environment string `toml:"environment"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
	// TimeoutSeconds bounds every service operation.
	TimeoutSeconds int `toml:"timeout_seconds"`

	GenAI GenAI `toml:"genai"`
}

// GenAI configures the text-generation backend. An empty APIKey selects
// the deterministic fallback generator.
type GenAI struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the service operation bound as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GenAITimeout returns the generation call bound as a duration.
func (c *Config) GenAITimeout() time.Duration {
	return time.Duration(c.GenAI.TimeoutSeconds) * time.Second
}

// Load builds the configuration. Sources in priority order:
//
//  1. Defaults
//  2. TOML file (explicit path, else taskgraph.toml in the working
//     directory, else ~/.taskgraph/taskgraph.toml)
//  3. Environment variables (TASKGRAPH_*, OPENAI_API_KEY)
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	loadFromEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DataDir:        filepath.Join(home, ".taskgraph"),
		Environment:    "development",
		LogLevel:       "info",
		TimeoutSeconds: 30,
		GenAI: GenAI{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4",
			TimeoutSeconds: 60,
		},
	}
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	candidates := []string{"taskgraph.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".taskgraph", "taskgraph.toml"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TASKGRAPH_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("TASKGRAPH_ENV"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("TASKGRAPH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TASKGRAPH_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.GenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.GenAI.BaseURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.GenAI.Model = v
	}
}
