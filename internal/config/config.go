// Package config provides unified configuration loading for procsim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/procsim/internal/constants"
	"github.com/nvandessel/procsim/internal/logging"
)

// ProcsimConfig contains all procsim configuration settings.
type ProcsimConfig struct {
	// Server describes the identity announced to clients.
	Server ServerConfig `json:"server" yaml:"server"`

	// HTTP configures the monitoring and streamable MCP endpoint.
	HTTP HTTPConfig `json:"http" yaml:"http"`

	// Simulation configures the signal model.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Logging contains settings for operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Audit configures the MCP tool audit log.
	Audit AuditConfig `json:"audit" yaml:"audit"`
}

// ServerConfig describes the server identity and build info.
type ServerConfig struct {
	// Name is the implementation name announced over MCP.
	Name string `json:"name" yaml:"name"`

	// ProductName is reported by the status tool.
	ProductName string `json:"product_name" yaml:"product_name"`

	// BuildNumber is reported by the status tool.
	BuildNumber string `json:"build_number" yaml:"build_number"`

	// ResourcePath prefixes resource URIs, e.g. "UA/DemoServer" yields
	// procsim://UA/DemoServer/Objects/Simulation/Temperature.
	ResourcePath string `json:"resource_path" yaml:"resource_path"`

	// Transport selects how MCP is served: "stdio" (default), "http" or "none".
	Transport string `json:"transport" yaml:"transport"`
}

// HTTPConfig configures the HTTP listener.
type HTTPConfig struct {
	// Enabled turns the HTTP monitor on. The "http" transport forces it on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Host is the listen address.
	Host string `json:"host" yaml:"host"`

	// Port is the listen port. 0 picks a free port.
	Port int `json:"port" yaml:"port"`

	// RateLimit is the per-client request rate in requests per second.
	// 0 disables limiting.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`

	// RateBurst is the per-client burst size.
	RateBurst int `json:"rate_burst" yaml:"rate_burst"`
}

// Addr returns host:port.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SimulationConfig configures the signal model.
type SimulationConfig struct {
	// TickInterval is the counter period.
	TickInterval time.Duration `json:"tick_interval" yaml:"tick_interval"`
}

// LoggingConfig configures procsim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "error", "warn", "info" (default),
	// "debug" or "trace". "trace" logs every tick.
	Level string `json:"level" yaml:"level"`

	// Format is "text" (default) or "json".
	Format string `json:"format" yaml:"format"`
}

// AuditConfig configures the JSONL audit log of MCP tool calls.
type AuditConfig struct {
	// Path of the audit file. Empty disables auditing. Supports ${VAR}.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Default returns a ProcsimConfig with sensible defaults.
func Default() *ProcsimConfig {
	return &ProcsimConfig{
		Server: ServerConfig{
			Name:         constants.DefaultServerName,
			ProductName:  constants.DefaultProductName,
			BuildNumber:  constants.DefaultBuildNumber,
			ResourcePath: constants.DefaultResourcePath,
			Transport:    constants.TransportStdio,
		},
		HTTP: HTTPConfig{
			Enabled:   false,
			Host:      constants.DefaultHost,
			Port:      constants.DefaultPort,
			RateBurst: constants.DefaultRateBurst,
		},
		Simulation: SimulationConfig{
			TickInterval: constants.DefaultTickInterval,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns ~/.procsim/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".procsim", "config.yaml"), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.procsim/config.yaml -> environment variables
func Load() (*ProcsimConfig, error) {
	config := Default()

	if configPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadPath loads path if non-empty, otherwise behaves like Load. Environment
// overrides apply in both cases.
func LoadPath(path string) (*ProcsimConfig, error) {
	if path == "" {
		return Load()
	}

	config, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*ProcsimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Audit.Path = expandEnvVars(config.Audit.Path)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *ProcsimConfig) Validate() error {
	if c.Server.Name == "" {
		return fmt.Errorf("server name must not be empty")
	}

	validTransports := map[string]bool{
		constants.TransportStdio: true,
		constants.TransportHTTP:  true,
		constants.TransportNone:  true,
	}
	if !validTransports[c.Server.Transport] {
		return fmt.Errorf("invalid transport: %s (valid: stdio, http, none)", c.Server.Transport)
	}

	if strings.Contains(c.Server.ResourcePath, "://") {
		return fmt.Errorf("resource_path must be a path, got %q", c.Server.ResourcePath)
	}

	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http port must be between 0 and 65535, got %d", c.HTTP.Port)
	}

	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("http rate_limit must not be negative, got %v", c.HTTP.RateLimit)
	}

	if c.HTTP.RateLimit > 0 && c.HTTP.RateBurst < 1 {
		return fmt.Errorf("http rate_burst must be at least 1 when rate_limit is set, got %d", c.HTTP.RateBurst)
	}

	if c.Simulation.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %v", c.Simulation.TickInterval)
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: error, warn, info, debug, trace, or empty for default)", c.Logging.Level)
	}

	validFormats := map[string]bool{"": true, "text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", c.Logging.Format)
	}

	return nil
}

// NormalizedResourcePath returns the resource path without surrounding slashes.
func (c ServerConfig) NormalizedResourcePath() string {
	return strings.Trim(c.ResourcePath, "/")
}

// HTTPEnabled reports whether the HTTP listener should run.
func (c *ProcsimConfig) HTTPEnabled() bool {
	return c.HTTP.Enabled || c.Server.Transport == constants.TransportHTTP
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *ProcsimConfig) {
	if v := os.Getenv("PROCSIM_SERVER_NAME"); v != "" {
		config.Server.Name = v
	}

	if v := os.Getenv("PROCSIM_TRANSPORT"); v != "" {
		config.Server.Transport = v
	}

	if v := os.Getenv("PROCSIM_RESOURCE_PATH"); v != "" {
		config.Server.ResourcePath = v
	}

	if v := os.Getenv("PROCSIM_HTTP_ENABLED"); v != "" {
		config.HTTP.Enabled = v == "true" || v == "1"
	}

	if v := os.Getenv("PROCSIM_HTTP_HOST"); v != "" {
		config.HTTP.Host = v
	}

	if v := os.Getenv("PROCSIM_HTTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.HTTP.Port = n
		}
	}

	if v := os.Getenv("PROCSIM_HTTP_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.HTTP.RateLimit = f
		}
	}

	if v := os.Getenv("PROCSIM_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Simulation.TickInterval = d
		}
	}

	if v := os.Getenv("PROCSIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("PROCSIM_LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}

	if v := os.Getenv("PROCSIM_AUDIT_PATH"); v != "" {
		config.Audit.Path = expandEnvVars(v)
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
