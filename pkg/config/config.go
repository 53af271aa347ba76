// Package config loads and saves the activity monitor settings.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Focus modes.
const (
	FocusAlways   = "always"
	FocusWindow   = "window"
	FocusTerminal = "terminal"
)

// ErrInvalidInterval is returned for interval text that is not a positive
// number of seconds or a positive duration.
var ErrInvalidInterval = errors.New("invalid polling interval")

// Config holds all configuration for activity-monitor
type Config struct {
	Polling   PollingConfig   `yaml:"polling"`
	History   HistoryConfig   `yaml:"history"`
	Focus     FocusConfig     `yaml:"focus"`
	Documents DocumentsConfig `yaml:"documents"`

	LogLevel   string `yaml:"log_level" env:"ACTIVITY_MONITOR_LOG_LEVEL"`
	StatusLine bool   `yaml:"status_line"`
}

// PollingConfig holds the persisted poller settings
type PollingConfig struct {
	Enabled  bool          `yaml:"enabled" env:"ACTIVITY_MONITOR_ENABLED"`
	Interval time.Duration `yaml:"interval" env:"ACTIVITY_MONITOR_INTERVAL"`
}

// UnmarshalYAML accepts the interval as seconds ("2", "2.5") or as a
// duration ("1500ms").
func (p *PollingConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Enabled  *bool     `yaml:"enabled"`
		Interval yaml.Node `yaml:"interval"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.Enabled != nil {
		p.Enabled = *raw.Enabled
	}
	if raw.Interval.Kind != 0 {
		if raw.Interval.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: %w: not a scalar", raw.Interval.Line, ErrInvalidInterval)
		}
		d, err := ParseInterval(raw.Interval.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", raw.Interval.Line, err)
		}
		p.Interval = d
	}
	return nil
}

// HistoryConfig holds the poll history settings
type HistoryConfig struct {
	Length int `yaml:"length"`
}

// FocusConfig selects how application focus is determined
type FocusConfig struct {
	Mode    string `yaml:"mode" env:"ACTIVITY_MONITOR_FOCUS_MODE"`
	AppName string `yaml:"app_name"`
}

// DocumentsConfig lists the directories whose files are tracked as documents
type DocumentsConfig struct {
	Paths    []string `yaml:"paths"`
	Patterns []string `yaml:"patterns"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Polling: PollingConfig{
			Enabled:  true,
			Interval: 2 * time.Second,
		},
		History: HistoryConfig{
			Length: 100,
		},
		Focus: FocusConfig{
			Mode: FocusAlways,
		},
		Documents: DocumentsConfig{
			Patterns: []string{"*"},
		},
		LogLevel:   "INFO",
		StatusLine: true,
	}
}

// Load loads configuration from the default path and environment
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom loads configuration from path and environment. A missing file
// yields the defaults.
func LoadFrom(path string) (*Config, error) {
	return load(path, true)
}

// LoadFile loads configuration from path alone, ignoring the environment.
// Edits that are saved back to path start from it.
func LoadFile(path string) (*Config, error) {
	return load(path, false)
}

func load(path string, withEnv bool) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Override with environment variables
	if withEnv {
		if err := loadFromEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to load from environment: %w", err)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Path returns the config file path
func Path() string {
	// Check for explicit config path
	if path := os.Getenv("ACTIVITY_MONITOR_CONFIG"); path != "" {
		return path
	}

	// Check XDG config directory
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "activity-monitor", "config.yaml")
	}

	// Fall back to home directory
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "activity-monitor", "config.yaml")
	}

	return ""
}

// Save writes cfg to path as YAML. The file is replaced atomically.
func Save(cfg *Config, path string) error {
	if path == "" {
		return fmt.Errorf("no config path")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}

// ParseInterval parses a polling interval given either as seconds ("2.5")
// or as a duration ("1500ms").
func ParseInterval(text string) (time.Duration, error) {
	text = strings.TrimSpace(text)

	if seconds, err := strconv.ParseFloat(text, 64); err == nil {
		if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, text)
		}
		d := time.Duration(seconds * float64(time.Second))
		if d <= 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, text)
		}
		return d, nil
	}

	d, err := time.ParseDuration(text)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, text)
	}
	return d, nil
}

// ParseBool accepts the boolean spellings used in environment variables.
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q (use true/false)", value)
	}
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - The config file path comes from trusted sources (flag, env var or standard locations)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	if enabled := os.Getenv("ACTIVITY_MONITOR_ENABLED"); enabled != "" {
		b, err := ParseBool(enabled)
		if err != nil {
			return fmt.Errorf("invalid ACTIVITY_MONITOR_ENABLED: %w", err)
		}
		cfg.Polling.Enabled = b
	}

	if interval := os.Getenv("ACTIVITY_MONITOR_INTERVAL"); interval != "" {
		d, err := ParseInterval(interval)
		if err != nil {
			return fmt.Errorf("invalid ACTIVITY_MONITOR_INTERVAL: %w", err)
		}
		cfg.Polling.Interval = d
	}

	if level := os.Getenv("ACTIVITY_MONITOR_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if mode := os.Getenv("ACTIVITY_MONITOR_FOCUS_MODE"); mode != "" {
		cfg.Focus.Mode = mode
	}

	return nil
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.Polling.Interval <= 0 {
		return fmt.Errorf("polling.interval must be positive")
	}

	if cfg.History.Length <= 0 {
		return fmt.Errorf("history.length must be positive")
	}

	switch cfg.Focus.Mode {
	case FocusAlways, FocusTerminal:
	case FocusWindow:
		if cfg.Focus.AppName == "" {
			return fmt.Errorf("focus.app_name is required when focus.mode is %q", FocusWindow)
		}
	default:
		return fmt.Errorf("focus.mode must be %q, %q or %q, got %q", FocusAlways, FocusWindow, FocusTerminal, cfg.Focus.Mode)
	}

	for _, pattern := range cfg.Documents.Patterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid documents pattern %q: %w", pattern, err)
		}
	}

	return nil
}
