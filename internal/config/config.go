// Package config loads the server's YAML configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Leon4s4/dynamics-mcp/pkg/httpclient"
)

// Config represents the complete dynamics-mcp configuration.
type Config struct {
	Log       LogConfig        `yaml:"log"`
	HTTP      HTTPConfig       `yaml:"http"`
	Endpoints []EndpointConfig `yaml:"endpoints,omitempty"`
}

// LogConfig configures logging output.
type LogConfig struct {
	// Level sets the minimum log level (trace, debug, info, warn, error).
	// Default: info
	Level string `yaml:"level"`

	// Format sets the output format (json, text). Default: json
	Format string `yaml:"format"`
}

// HTTPConfig configures the HTTP client used against Dataverse instances.
type HTTPConfig struct {
	// Timeout is the per-request timeout. Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// RetryAttempts enables retries on safe methods when > 0. Default: 0
	RetryAttempts int `yaml:"retry_attempts"`

	// RetryBackoff is the initial retry delay. Default: 100ms
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// MaxBackoff caps the retry delay. Default: 30s
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// EndpointConfig pre-registers one Dataverse instance at startup.
type EndpointConfig struct {
	// Name labels the endpoint in startup logs.
	Name string `yaml:"name"`

	// ConnectionString is the Dynamics connection string
	// (Url=...;ClientId=...;ClientSecret=...).
	ConnectionString string `yaml:"connection_string"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			RetryBackoff: 100 * time.Millisecond,
			MaxBackoff:   30 * time.Second,
		},
	}
}

// Load reads and validates a YAML configuration file. Missing keys keep
// their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for internally consistent values.
func (c *Config) Validate() error {
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout cannot be negative")
	}
	if c.HTTP.RetryAttempts < 0 {
		return fmt.Errorf("http.retry_attempts cannot be negative")
	}
	for i, ep := range c.Endpoints {
		if ep.ConnectionString == "" {
			return fmt.Errorf("endpoints[%d]: connection_string is required", i)
		}
	}
	return nil
}

// HTTPClientConfig converts the HTTP section into an httpclient.Config.
func (c *Config) HTTPClientConfig() httpclient.Config {
	client := httpclient.DefaultConfig()
	if c.HTTP.Timeout > 0 {
		client.Timeout = c.HTTP.Timeout
	}
	client.RetryAttempts = c.HTTP.RetryAttempts
	if c.HTTP.RetryBackoff > 0 {
		client.RetryBackoff = c.HTTP.RetryBackoff
	}
	if c.HTTP.MaxBackoff > 0 {
		client.MaxBackoff = c.HTTP.MaxBackoff
	}
	return client
}
