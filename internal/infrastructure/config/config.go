package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/foldergraph/internal/infrastructure/logging"
	"github.com/GriffinCanCode/foldergraph/internal/providers/filesystem"
	"github.com/GriffinCanCode/foldergraph/internal/shared/paths"
)

// FileEnv names the variable holding an optional config file path
const FileEnv = "FOLDERGRAPH_CONFIG"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Storage   StorageConfig   `yaml:"storage" toml:"storage"`
	Scan      ScanConfig      `yaml:"scan" toml:"scan"`
	Refresh   RefreshConfig   `yaml:"refresh" toml:"refresh"`
	Logging   LogConfig       `yaml:"logging" toml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string   `envconfig:"HOST" yaml:"host" toml:"host"`
	Port         string   `envconfig:"PORT" yaml:"port" toml:"port"`
	AllowOrigins []string `envconfig:"CORS_ORIGINS" yaml:"allow_origins" toml:"allow_origins"`
	Compress     bool     `envconfig:"COMPRESS" yaml:"compress" toml:"compress"`
}

// StorageConfig locates persisted state. Empty values resolve to platform
// defaults.
type StorageConfig struct {
	DataDir  string `envconfig:"DATA_DIR" yaml:"data_dir" toml:"data_dir"`
	TrashDir string `envconfig:"TRASH_DIR" yaml:"trash_dir" toml:"trash_dir"`
}

// ScanConfig holds directory listing options.
type ScanConfig struct {
	Ignore []string `envconfig:"SCAN_IGNORE" yaml:"ignore" toml:"ignore"`
}

// RefreshConfig holds graph refresh options.
type RefreshConfig struct {
	Concurrency int `envconfig:"REFRESH_CONCURRENCY" yaml:"concurrency" toml:"concurrency"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string   `envconfig:"LOG_LEVEL" yaml:"level" toml:"level"`
	Development bool     `envconfig:"LOG_DEV" yaml:"development" toml:"development"`
	Outputs     []string `envconfig:"LOG_OUTPUTS" yaml:"outputs" toml:"outputs"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" yaml:"rps" toml:"rps"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" yaml:"burst" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" yaml:"enabled" toml:"enabled"`
}

// Load builds the configuration from defaults, then the config file (path,
// or $FOLDERGRAPH_CONFIG when path is empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(FileEnv)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         "8765",
			AllowOrigins: []string{"*"},
			Compress:     true,
		},
		Refresh: RefreshConfig{
			Concurrency: 8,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
			Outputs:     []string{"stdout"},
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
	}
}

// Addr is the listen address
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// WorldsDir is where saved worlds live
func (c *Config) WorldsDir() string {
	return paths.Worlds(c.Storage.DataDir)
}

// Validate checks value ranges
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %q", c.Server.Port)
	}
	if c.Refresh.Concurrency < 1 {
		return fmt.Errorf("refresh concurrency must be positive, got %d", c.Refresh.Concurrency)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond < 1 || c.RateLimit.Burst < 1) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if err := filesystem.ValidatePatterns(c.Scan.Ignore); err != nil {
		return err
	}
	return nil
}

// resolve fills platform defaults for unset directories
func (c *Config) resolve() error {
	if c.Storage.DataDir == "" {
		dir, err := paths.DataDir()
		if err != nil {
			return err
		}
		c.Storage.DataDir = dir
	}
	if c.Storage.TrashDir == "" {
		dir, err := paths.DefaultTrashDir(c.Storage.DataDir)
		if err != nil {
			return err
		}
		c.Storage.TrashDir = dir
	}
	return nil
}

// loadFile overlays a YAML or TOML file onto c
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		return fmt.Errorf("unsupported config file %q: use .yaml, .yml or .toml", path)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}
