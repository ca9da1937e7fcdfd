package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultDBDir is the default directory holding the catalogue database
	DefaultDBDir = "~/.kssmcp"
	// DefaultConfigFile is looked up in the working directory when no path is given
	DefaultConfigFile = ".kssmcp.yaml"
)

// Config represents the kss-mcp configuration.
type Config struct {
	// Paths are the style guide roots indexed when a tool call names none.
	Paths []string `yaml:"paths"`
	// Database is the directory holding kssmcp.db.
	Database string `yaml:"database"`
	// WorkingDir is stripped from section paths (default: process working directory).
	WorkingDir string `yaml:"working_dir"`
	// Workers is the number of files extracted concurrently.
	Workers int `yaml:"workers"`
	// SkipErrors skips unreadable files instead of failing the build.
	SkipErrors bool `yaml:"skip_errors"`
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// CacheTTL is how long search responses stay cached.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Database: DefaultDBDir,
		Workers:  runtime.NumCPU(),
		LogLevel: "info",
		CacheTTL: time.Hour,
	}
}

// Load builds the configuration: defaults, then the YAML file, then
// environment overrides.
//
// The file is path if given, else $KSSMCP_CONFIG, else .kssmcp.yaml in the
// working directory. Only an explicitly named file has to exist.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	explicit := true
	if path == "" {
		path = os.Getenv("KSSMCP_CONFIG")
	}
	if path == "" {
		path = DefaultConfigFile
		explicit = false
	}

	if err := cfg.loadYAML(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadYAML merges the file at path over the current values.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies KSSMCP_* environment variables, which take
// priority over the file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("KSSMCP_DB_PATH"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("KSSMCP_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("KSSMCP_WORKING_DIR"); v != "" {
		c.WorkingDir = v
	}
	if v := os.Getenv("KSSMCP_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv("KSSMCP_SKIP_ERRORS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.SkipErrors = b
		}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must be >= 0, got %s", c.CacheTTL)
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	return nil
}

// DatabaseFile returns the catalogue database file, with a leading ~
// expanded to the home directory.
func (c *Config) DatabaseFile() (string, error) {
	dir, err := ExpandHome(c.Database)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "kssmcp.db"), nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// WriteYAML writes the configuration to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
