// Package config provides YAML-based configuration loading for teamdesk.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zulandar/teamdesk/internal/llm"
	"gopkg.in/yaml.v3"
)

// Config is the top-level teamdesk configuration, loaded from teamdesk.yaml.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	LLM      LLMConfig      `yaml:"llm"`
	Sessions SessionsConfig `yaml:"sessions"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds web server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LLMConfig holds the defaults for chat turns and the model endpoint. The
// API key itself is never stored in the file; APIKeyEnv names the variable
// it is read from.
type LLMConfig struct {
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature *float64      `yaml:"temperature"`
	BaseURL     string        `yaml:"base_url"`
	APIKeyEnv   string        `yaml:"api_key_env"`
	Timeout     time.Duration `yaml:"timeout"`
}

// SessionsConfig controls how long idle browser sessions are kept.
type SessionsConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepSchedule string        `yaml:"sweep_schedule"`
}

// LoggingConfig selects log level and encoding.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Environment overrides.
const (
	EnvPort     = "TEAMDESK_PORT"
	EnvLogLevel = "TEAMDESK_LOG_LEVEL"
)

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// ApplyEnv overrides fields from TEAMDESK_* environment variables and
// re-validates.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s=%q is not a number", EnvPort, v)
		}
		c.Server.Port = port
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	return c.validate()
}

// APIKey returns the model API key from the environment, or "".
func (c *Config) APIKey(getenv func(string) string) string {
	return strings.TrimSpace(getenv(c.LLM.APIKeyEnv))
}

// Params returns the default generation settings.
func (c *Config) Params() llm.Params {
	return llm.Params{
		Model:       c.LLM.Model,
		MaxTokens:   c.LLM.MaxTokens,
		Temperature: *c.LLM.Temperature,
	}
}

// applyDefaults fills in default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.LLM.Model == "" {
		c.LLM.Model = llm.DefaultModel
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = llm.DefaultMaxTokens
	}
	if c.LLM.Temperature == nil {
		t := llm.DefaultTemperature
		c.LLM.Temperature = &t
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = llm.DefaultBaseURL
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = llm.DefaultTimeout
	}
	if c.Sessions.IdleTimeout == 0 {
		c.Sessions.IdleTimeout = 12 * time.Hour
	}
	if c.Sessions.SweepSchedule == "" {
		c.Sessions.SweepSchedule = "*/15 * * * *"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// validate checks that all fields are present and in range.
func (c *Config) validate() error {
	var errs []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if err := c.Params().Validate(); err != nil {
		errs = append(errs, strings.TrimPrefix(err.Error(), "llm: validation failed: "))
	}
	if c.LLM.Timeout < 0 {
		errs = append(errs, "llm.timeout must not be negative")
	}
	if c.Sessions.IdleTimeout < 0 {
		errs = append(errs, "sessions.idle_timeout must not be negative")
	}
	if _, err := cron.ParseStandard(c.Sessions.SweepSchedule); err != nil {
		errs = append(errs, fmt.Sprintf("sessions.sweep_schedule %q: %v", c.Sessions.SweepSchedule, err))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level %q must be debug, info, warn or error", c.Logging.Level))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
