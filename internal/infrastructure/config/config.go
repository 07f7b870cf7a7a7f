// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for sheetkeeper configuration.
	DefaultConfigDir = ".sheetkeeper"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultSystemsFile is the default systems file name.
	DefaultSystemsFile = "systems.yaml"
	// DefaultDatabaseFile is the default SQLite file name inside the config directory.
	DefaultDatabaseFile = "sheets.db"
	// DefaultOwnerID is used when no owner is configured.
	DefaultOwnerID = "local"
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	OwnerID string       `yaml:"owner_id,omitempty" env:"SHEETKEEPER_OWNER_ID"`
	LLM     LLMConfig    `yaml:"llm,omitempty"`
	SQLite  SQLiteConfig `yaml:"sqlite,omitempty"`
	Log     LogConfig    `yaml:"log,omitempty"`
}

// LLMConfig holds configuration for the LLM provider.
type LLMConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty" env:"SHEETKEEPER_LLM_MODEL"`
	APIKey   string `yaml:"api_key,omitempty" env:"OPENAI_API_KEY"`
	BaseURL  string `yaml:"base_url,omitempty" env:"OPENAI_BASE_URL"` // Empty uses the public API
}

// SQLiteConfig holds configuration for the SQLite relational database.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database. Relative paths are
	// resolved against the base path by Load.
	Path string `yaml:"path,omitempty" env:"SHEETKEEPER_DB_PATH"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level,omitempty" env:"SHEETKEEPER_LOG_LEVEL"`
	// Format is text or json.
	Format string `yaml:"format,omitempty" env:"SHEETKEEPER_LOG_FORMAT"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		OwnerID: DefaultOwnerID,
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		SQLite: SQLiteConfig{
			Path: filepath.Join(DefaultConfigDir, DefaultDatabaseFile),
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load loads configuration from the .sheetkeeper directory in the given path.
// A missing config file is not an error: defaults and environment apply.
func Load(basePath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ConfigFilePath(basePath))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.SQLite.Path != ":memory:" && !filepath.IsAbs(cfg.SQLite.Path) {
		cfg.SQLite.Path = filepath.Join(basePath, cfg.SQLite.Path)
	}
	if cfg.OwnerID == "" {
		cfg.OwnerID = DefaultOwnerID
	}

	return cfg, nil
}

// ParseEnv applies environment variable overrides to target.
// Unset variables leave the existing field values alone.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ConfigDir returns the path to the .sheetkeeper config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// SystemsFilePath returns the path to the systems file.
func SystemsFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultSystemsFile)
}
