package config

import (
	"os"
	"strconv"
	"time"
)

// Default values for configuration.
const (
	DefaultSearchTimeout  = 20
	DefaultOutputFormat   = OutputText
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultLogMaxSizeMB   = 20
	DefaultLogMaxBackups  = 3
	DefaultLogMaxAgeDays  = 30
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvSearchTimeout = "LRCPARSE_SEARCH_TIMEOUT"
	EnvLogLevel      = "LRCPARSE_LOG_LEVEL"
	EnvCatalog       = "LRCPARSE_CATALOG"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Inputs:                 []string{},
		FirstLineSearchTimeout: DefaultSearchTimeout,
		Output: OutputConfig{
			Format: DefaultOutputFormat,
		},
		Logging: LoggingConfig{
			Level:      DefaultLogLevel,
			Format:     DefaultLogFormat,
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
			MaxAgeDays: DefaultLogMaxAgeDays,
		},
	}
}

// ApplyEnvironmentOverrides applies environment variable overrides to the config.
// Malformed numeric values are ignored.
func (c *Config) ApplyEnvironmentOverrides() {
	if v := os.Getenv(EnvSearchTimeout); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FirstLineSearchTimeout = n
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvCatalog); v != "" {
		c.Catalog.Path = v
	}
}
