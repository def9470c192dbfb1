// Package config loads the tool configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tosih/denso-rom-tool/pkg/scanner"
)

// Config holds all settings. Zero scan fields mean "derive from image size".
type Config struct {
	Scan    ScanConfig    `yaml:"scan"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
	Web     WebConfig     `yaml:"web"`
}

// ScanConfig restricts the table search.
type ScanConfig struct {
	PosMin    int `yaml:"pos_min"`
	PosMax    int `yaml:"pos_max"`
	Alignment int `yaml:"alignment"`
	Start     int `yaml:"start"`
	Last      int `yaml:"last"`
}

// StoreConfig selects the metadata backend.
type StoreConfig struct {
	Backend    string `yaml:"backend"` // yaml, sqlite
	SQLitePath string `yaml:"sqlite_path"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

// WebConfig configures the table viewer.
type WebConfig struct {
	Port        int  `yaml:"port"`
	OpenBrowser bool `yaml:"open_browser"`
}

const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			PosMin:    scanner.DefaultPosMin,
			Alignment: scanner.DefaultAlignment,
		},
		Store: StoreConfig{
			Backend:    BackendYAML,
			SQLitePath: "denso-tables.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Web: WebConfig{
			Port:        8080,
			OpenBrowser: true,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks values that cannot be fixed up later.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendYAML, BackendSQLite:
	default:
		return fmt.Errorf("invalid store backend %q", c.Store.Backend)
	}
	if c.Scan.Alignment < 0 {
		return fmt.Errorf("invalid scan alignment %d", c.Scan.Alignment)
	}
	if c.Web.Port < 0 || c.Web.Port > 65535 {
		return fmt.Errorf("invalid web port %d", c.Web.Port)
	}
	return nil
}

// ScanOptions returns scanner options for an image of the given size.
func (c *Config) ScanOptions(size int) scanner.Options {
	opts := scanner.DefaultOptions(size)
	if c.Scan.PosMin > 0 {
		opts.Bounds.PosMin = c.Scan.PosMin
	}
	if c.Scan.PosMax > 0 {
		opts.Bounds.PosMax = min(c.Scan.PosMax, size-1)
	}
	if c.Scan.Alignment > 0 {
		opts.Alignment = c.Scan.Alignment
	}
	if c.Scan.Start > 0 {
		opts.Start = c.Scan.Start
	}
	if c.Scan.Last > 0 {
		opts.Last = c.Scan.Last
	}
	return opts
}
