// ABOUTME: Configuration loading and parsing for agent-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete agent-gateway configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Auth          AuthConfig          `yaml:"auth"`
	Collaborators CollaboratorsConfig `yaml:"collaborators"`
	Agents        AgentsConfig        `yaml:"agents"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// CollaboratorsConfig holds base URLs for the backing services
type CollaboratorsConfig struct {
	TasksURL   string `yaml:"tasks_url"`
	SearchURL  string `yaml:"search_url"`
	ProfileURL string `yaml:"profile_url"`
}

// AgentsConfig holds per-turn execution limits
type AgentsConfig struct {
	LoopLimit           int     `yaml:"loop_limit"`
	HistoryWindow       int     `yaml:"history_window"`
	ToolRetries         int     `yaml:"tool_retries"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	ToolTimeout time.Duration `yaml:"-"`
	DedupeTTL   time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	ToolTimeoutRaw string `yaml:"tool_timeout"`
	DedupeTTLRaw   string `yaml:"dedupe_ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Agents.LoopLimit < 0 {
		return fmt.Errorf("agents.loop_limit must not be negative")
	}
	if c.Agents.ConfidenceThreshold < 0 || c.Agents.ConfidenceThreshold > 1 {
		return fmt.Errorf("agents.confidence_threshold must be between 0 and 1")
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Agents.ToolTimeoutRaw != "" {
		cfg.Agents.ToolTimeout, err = time.ParseDuration(cfg.Agents.ToolTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing tool_timeout %q: %w", cfg.Agents.ToolTimeoutRaw, err)
		}
	}

	if cfg.Agents.DedupeTTLRaw != "" {
		cfg.Agents.DedupeTTL, err = time.ParseDuration(cfg.Agents.DedupeTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing dedupe_ttl %q: %w", cfg.Agents.DedupeTTLRaw, err)
		}
	}

	return nil
}
