// Package config provides configuration loading and validation for lrcparse.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure loaded from YAML or TOML.
type Config struct {
	// Inputs are lyric file paths, glob patterns or directories.
	Inputs []string `yaml:"inputs" toml:"inputs"`

	// FirstLineSearchTimeout is how many lines without a timestamp a file may
	// contain before it is rejected as not LRC.
	FirstLineSearchTimeout int `yaml:"first_line_search_timeout" toml:"first_line_search_timeout"`

	// Concurrency bounds how many files are parsed at once (0 = NumCPU).
	Concurrency int `yaml:"concurrency,omitempty" toml:"concurrency,omitempty"`

	Output   OutputConfig    `yaml:"output" toml:"output"`
	Logging  LoggingConfig   `yaml:"logging" toml:"logging"`
	Catalog  CatalogConfig   `yaml:"catalog,omitempty" toml:"catalog,omitempty"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty" toml:"webhooks,omitempty"`
}

// OutputFormat selects how parse reports are rendered.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format  OutputFormat `yaml:"format" toml:"format"`
	Verbose bool         `yaml:"verbose,omitempty" toml:"verbose,omitempty"`
	Quiet   bool         `yaml:"quiet,omitempty" toml:"quiet,omitempty"`
}

// LoggingConfig controls diagnostic logging.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // text, json

	// File enables rotated file logging when set. Logs go to stderr otherwise.
	File       string `yaml:"file,omitempty" toml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty" toml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty" toml:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty" toml:"max_age_days,omitempty"`
}

// CatalogConfig locates the SQLite lyric catalog.
type CatalogConfig struct {
	Path string `yaml:"path,omitempty" toml:"path,omitempty"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnFailure fires only when an input failed to parse (default).
	WebhookTriggerOnFailure WebhookTrigger = "on_failure"
	// WebhookTriggerAlways fires after every run.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending parse reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty" toml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url" toml:"url"`

	// Token is an optional bearer token. ${VAR} and $VAR are expanded.
	Token string `yaml:"token,omitempty" toml:"token,omitempty"`

	// Trigger defaults to "on_failure".
	Trigger WebhookTrigger `yaml:"trigger,omitempty" toml:"trigger,omitempty"`

	// Timeout defaults to 10s.
	Timeout Duration `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
}

// Duration is a time.Duration written as a string ("10s") in YAML and TOML.
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText renders the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	return d.UnmarshalText([]byte(n.Value))
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
