package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "mixtape"

// Environment variables that override file values.
const (
	EnvAPIURL   = "MIXTAPE_API_URL"
	EnvLogLevel = "MIXTAPE_LOG_LEVEL"
	EnvLogFile  = "MIXTAPE_LOG_FILE"
)

type Config struct {
	DBPath        string `koanf:"db_path"`
	Notifications *bool  `koanf:"notifications"` // desktop notifications (default: true)
	MPRIS         *bool  `koanf:"mpris"`         // media key integration (default: true)

	API      APIConfig      `koanf:"api"`
	Generate GenerateConfig `koanf:"generate"`
	Theme    ThemeConfig    `koanf:"theme"`
	Player   PlayerConfig   `koanf:"player"`
	Log      LogConfig      `koanf:"log"`
}

// APIConfig holds the backend connection settings.
type APIConfig struct {
	BaseURL string `koanf:"base_url"` // e.g., "http://localhost:5050"
	Timeout string `koanf:"timeout"`  // Go duration (default: 30s)
}

// GenerateConfig holds generation workflow settings.
type GenerateConfig struct {
	MinQueueSize int `koanf:"min_queue_size"` // minimum queue length for batch generation (default: 4)
}

// ThemeConfig holds theming engine settings.
type ThemeConfig struct {
	Debounce      string `koanf:"debounce"`       // delay before sampling artwork (default: 120ms)
	SampleSize    int    `koanf:"sample_size"`    // thumbnail edge in pixels (default: 32)
	SampleTimeout string `koanf:"sample_timeout"` // artwork fetch timeout (default: 10s)
}

// PlayerConfig holds preview player settings.
type PlayerConfig struct {
	UpdateInterval string `koanf:"update_interval"` // time update period (default: 250ms)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `koanf:"level"` // debug, info, warn, error
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	applyEnv(cfg)

	cfg.API.BaseURL = strings.TrimSuffix(cfg.API.BaseURL, "/")
	if cfg.DBPath != "" {
		cfg.DBPath = expandPath(cfg.DBPath)
	}
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.Log.File = v
	}
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/mixtape/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// BaseURL returns the backend URL with the default applied.
func (c *Config) BaseURL() string {
	if c.API.BaseURL == "" {
		return "http://localhost:5050"
	}
	return c.API.BaseURL
}

// APITimeout returns the HTTP timeout for backend calls.
func (c *Config) APITimeout() time.Duration {
	return parseDuration(c.API.Timeout, 30*time.Second)
}

// MinQueueSize returns the batch generation threshold.
func (c *Config) MinQueueSize() int {
	if c.Generate.MinQueueSize <= 0 {
		return 4
	}
	return c.Generate.MinQueueSize
}

// GetThemeConfig returns the theme configuration with defaults applied.
func (c *Config) GetThemeConfig() ThemeConfig {
	cfg := c.Theme
	if parseDuration(cfg.Debounce, -1) < 0 {
		cfg.Debounce = "120ms"
	}
	if cfg.SampleSize <= 0 || cfg.SampleSize > 512 {
		cfg.SampleSize = 32
	}
	if parseDuration(cfg.SampleTimeout, 0) <= 0 {
		cfg.SampleTimeout = "10s"
	}
	return cfg
}

// DebounceDuration returns the parsed artwork sampling debounce.
func (t ThemeConfig) DebounceDuration() time.Duration {
	return parseDuration(t.Debounce, 120*time.Millisecond)
}

// SampleTimeoutDuration returns the parsed artwork fetch timeout.
func (t ThemeConfig) SampleTimeoutDuration() time.Duration {
	return parseDuration(t.SampleTimeout, 10*time.Second)
}

// UpdateInterval returns how often the preview player reports its position.
func (c *Config) UpdateInterval() time.Duration {
	d := parseDuration(c.Player.UpdateInterval, 250*time.Millisecond)
	if d <= 0 {
		return 250 * time.Millisecond
	}
	return d
}

// GetLogConfig returns the log configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.File == "" {
		cfg.File = filepath.Join(xdg.StateHome, appName, appName+".log")
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 3
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 28
	}
	return cfg
}

// DatabasePath returns the sqlite path for local state.
func (c *Config) DatabasePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(xdg.DataHome, appName, appName+".db")
}

// IconDir returns where notification artwork is cached.
func (c *Config) IconDir() string {
	return filepath.Join(xdg.CacheHome, appName, "art")
}

// NotificationsEnabled reports whether desktop notifications are on.
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications == nil || *c.Notifications
}

// MPRISEnabled reports whether the MPRIS adapter should be started.
func (c *Config) MPRISEnabled() bool {
	return c.MPRIS == nil || *c.MPRIS
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
