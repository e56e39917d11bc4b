package config

import (
	"embed"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

type Storage struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type Capture struct {
	Ignore      []string `yaml:"ignore"`
	IgnoreRegex bool     `yaml:"ignore_regex"`
}

type Watch struct {
	Interval string `yaml:"interval"`
}

type Serve struct {
	Listen string `yaml:"listen"`
}

type Config struct {
	LogLevel string  `yaml:"log_level"`
	Storage  Storage `yaml:"storage"`
	Capture  Capture `yaml:"capture"`
	Watch    Watch   `yaml:"watch"`
	Serve    Serve   `yaml:"serve"`
}

// WatchInterval falls back to 350ms when unset or unparsable.
func (c *Config) WatchInterval() time.Duration {
	d, err := time.ParseDuration(c.Watch.Interval)
	if err != nil || d <= 0 {
		return 350 * time.Millisecond
	}
	return d
}

// StoragePath resolves the backend location, defaulting under XDG data home.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	switch c.Storage.Backend {
	case BackendFile:
		return filepath.Join(xdg.DataHome, "ottervault", "store")
	default:
		return filepath.Join(xdg.DataHome, "ottervault", "vault.db")
	}
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "ottervault", "config.yaml")
}

func Defaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads path (or the default location), writing the embedded defaults
// there on first run.
func Load(path string) (*Config, error) {
	defaults, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: just use embedded defaults
			_ = writeDefaults(path)
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := *defaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func Validate(cfg *Config) error {
	switch cfg.Storage.Backend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		return fmt.Errorf("storage.backend: unknown backend %q (valid: sqlite, file, memory)", cfg.Storage.Backend)
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level: unknown level %q", cfg.LogLevel)
	}
	if cfg.Watch.Interval != "" {
		if _, err := time.ParseDuration(cfg.Watch.Interval); err != nil {
			return fmt.Errorf("watch.interval: %w", err)
		}
	}
	if cfg.Serve.Listen != "" {
		if _, _, err := net.SplitHostPort(cfg.Serve.Listen); err != nil {
			return fmt.Errorf("serve.listen: %w", err)
		}
	}
	return nil
}
