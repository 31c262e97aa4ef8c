// Package config handles the checklist builder configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/profile"
)

const fileMode = 0o600
const dirMode = 0o750

// ErrInvalid marks configuration validation failures.
var ErrInvalid = errors.New("invalid config")

// Config holds the tool configuration. A missing config file is not an
// error; Load returns defaults so the tool works out of the box.
type Config struct {
	Version   int             `yaml:"version"`
	Agent     AgentConfig     `yaml:"agent"`
	Generator GeneratorConfig `yaml:"generator"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
	TUI       TUIConfig       `yaml:"tui,omitempty"`

	// dir is the absolute path to the data directory (not serialized).
	dir string `yaml:"-"`
}

// AgentConfig points at the local automation agent.
type AgentConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout,omitempty"`
}

// GeneratorConfig configures the checklist generator backend.
type GeneratorConfig struct {
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url,omitempty"`
}

// DefaultsConfig holds default profile values for generation commands.
type DefaultsConfig struct {
	CompanySize     string `yaml:"company_size"`
	ERPSystem       string `yaml:"erp_system"`
	MonthlyInvoices string `yaml:"monthly_invoices"`
}

// TUIConfig holds TUI-specific display settings.
type TUIConfig struct {
	TitleLines int `yaml:"title_lines,omitempty"`
}

// Dir returns the absolute path to the data directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the data directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// StatePath returns the absolute path to the persisted snapshot file.
func (c *Config) StatePath() string {
	return filepath.Join(c.dir, StateFileName)
}

// LockPath returns the absolute path to the advisory lock file guarding
// snapshot writes.
func (c *Config) LockPath() string {
	return filepath.Join(c.dir, LockFileName)
}

// LogPath returns the absolute path to the activity log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.dir, LogFileName)
}

// AgentTimeout parses the agent timeout. Returns DefaultAgentTimeout if
// the field is empty or unparseable.
func (c *Config) AgentTimeout() time.Duration {
	if c.Agent.Timeout == "" {
		return DefaultAgentTimeout
	}
	d, err := time.ParseDuration(c.Agent.Timeout)
	if err != nil {
		return DefaultAgentTimeout
	}
	return d
}

// DefaultProfile returns a profile pre-filled from the configured defaults.
func (c *Config) DefaultProfile() profile.Profile {
	return profile.Profile{
		CompanySize:     c.Defaults.CompanySize,
		ERPSystem:       c.Defaults.ERPSystem,
		MonthlyInvoices: c.Defaults.MonthlyInvoices,
	}
}

// NewDefault creates a Config with default values.
func NewDefault() *Config {
	return &Config{
		Version: CurrentVersion,
		Agent: AgentConfig{
			BaseURL: DefaultAgentBaseURL,
		},
		Generator: GeneratorConfig{
			Model:     DefaultModel,
			APIKeyEnv: DefaultAPIKeyEnv,
		},
		Defaults: DefaultsConfig{
			CompanySize:     profile.SizeSmall,
			ERPSystem:       profile.ERPPopular,
			MonthlyInvoices: profile.InvoicesLow,
		},
		TUI: TUIConfig{TitleLines: DefaultTitleLines},
	}
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.Agent.BaseURL == "" {
		return fmt.Errorf("%w: agent.base_url is required", ErrInvalid)
	}
	if c.Agent.Timeout != "" {
		if _, err := time.ParseDuration(c.Agent.Timeout); err != nil {
			return fmt.Errorf("%w: invalid agent.timeout %q: %w", ErrInvalid, c.Agent.Timeout, err)
		}
	}
	if c.Generator.Model == "" {
		return fmt.Errorf("%w: generator.model is required", ErrInvalid)
	}
	if p := c.DefaultProfile(); p.Validate() != nil {
		return fmt.Errorf("%w: defaults do not form a valid profile", ErrInvalid)
	}
	const minTitleLines, maxTitleLines = 1, 3
	if c.TUI.TitleLines != 0 && (c.TUI.TitleLines < minTitleLines || c.TUI.TitleLines > maxTitleLines) {
		return fmt.Errorf("%w: tui.title_lines must be between %d and %d",
			ErrInvalid, minTitleLines, maxTitleLines)
	}
	return nil
}

// TitleLines returns the configured number of title lines for TUI cards.
// Returns DefaultTitleLines if the value is unset (zero).
func (c *Config) TitleLines() int {
	if c.TUI.TitleLines == 0 {
		return DefaultTitleLines
	}
	return c.TUI.TitleLines
}

// Save writes the config to its config file, creating the data directory
// if needed.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.dir, dirMode); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads and validates the config from the given data directory.
// A missing config file yields defaults bound to that directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			cfg := NewDefault()
			cfg.dir = absDir
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Unmarshal over defaults so a partial config file (say, only the
	// agent section) keeps working.
	cfg := NewDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.dir = absDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultDir returns the path to ~/.config/ksef-checklist.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config/ksef-checklist"), nil
}
