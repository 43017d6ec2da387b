package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds every tunable hudsync reads at startup. Environment
// variables with the HUDSYNC_ prefix override values from the file.
type Config struct {
	StorageDir       string        `env:"STORAGE_DIR"`
	MaxDocumentBytes int64         `env:"MAX_DOCUMENT_BYTES"`
	UrgentInterval   time.Duration `env:"URGENT_INTERVAL"`
	IdleInterval     time.Duration `env:"IDLE_INTERVAL"`
	HeartbeatEvery   time.Duration `env:"HEARTBEAT_INTERVAL"`
	TickEvery        time.Duration `env:"TICK_INTERVAL"`
	LevelUpRecheck   time.Duration `env:"LEVEL_UP_RECHECK"`
	PauseRecheck     time.Duration `env:"PAUSE_RECHECK"`
	LogPath          string        `env:"LOG_PATH"`
	LogLevel         string        `env:"LOG_LEVEL"`
	LogFormat        string        `env:"LOG_FORMAT"`
	MetricsAddr      string        `env:"METRICS_ADDR"`
	Theme            string        `env:"THEME"`
}

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "HUDSYNC_"

const (
	defaultConfigPath = "~/.config/hudsync/config.toml"
	defaultStorageDir = "~/.local/share/hudsync"
	defaultLogFile    = "hudsync.log"
	defaultLogLevel   = "info"
	defaultLogFormat  = "console"
	defaultTheme      = "Dracula"
	defaultMaxBytes   = 256 * 1024
)

// DefaultPath returns the config file used when none is given.
func DefaultPath() string {
	return defaultConfigPath
}

// Default returns the built-in configuration with paths unexpanded.
func Default() Config {
	return Config{
		StorageDir:       defaultStorageDir,
		MaxDocumentBytes: defaultMaxBytes,
		UrgentInterval:   100 * time.Millisecond,
		IdleInterval:     500 * time.Millisecond,
		HeartbeatEvery:   3 * time.Second,
		TickEvery:        50 * time.Millisecond,
		LevelUpRecheck:   300 * time.Millisecond,
		PauseRecheck:     time.Second,
		LogLevel:         defaultLogLevel,
		LogFormat:        defaultLogFormat,
		Theme:            defaultTheme,
	}
}

type fileConfig struct {
	StorageDir        string `toml:"storage_dir"`
	MaxDocumentBytes  int64  `toml:"max_document_bytes"`
	UrgentInterval    string `toml:"urgent_interval"`
	IdleInterval      string `toml:"idle_interval"`
	HeartbeatInterval string `toml:"heartbeat_interval"`
	TickInterval      string `toml:"tick_interval"`
	LevelUpRecheck    string `toml:"level_up_recheck"`
	PauseRecheck      string `toml:"pause_recheck"`
	LogPath           string `toml:"log_path"`
	LogLevel          string `toml:"log_level"`
	LogFormat         string `toml:"log_format"`
	MetricsAddr       string `toml:"metrics_addr"`
	Theme             string `toml:"theme"`
}

// Load reads the TOML file at path (or the default path), applies
// environment overrides, expands paths and validates the result. A missing
// file is not an error.
func Load(path string) (Config, error) {
	resolved, err := ResolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.merge(bytes); err != nil {
			return Config{}, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) merge(data []byte) error {
	var raw fileConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	setString(&c.StorageDir, raw.StorageDir)
	setString(&c.LogPath, raw.LogPath)
	setString(&c.LogLevel, raw.LogLevel)
	setString(&c.LogFormat, raw.LogFormat)
	setString(&c.MetricsAddr, raw.MetricsAddr)
	setString(&c.Theme, raw.Theme)
	if raw.MaxDocumentBytes != 0 {
		c.MaxDocumentBytes = raw.MaxDocumentBytes
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"urgent_interval", raw.UrgentInterval, &c.UrgentInterval},
		{"idle_interval", raw.IdleInterval, &c.IdleInterval},
		{"heartbeat_interval", raw.HeartbeatInterval, &c.HeartbeatEvery},
		{"tick_interval", raw.TickInterval, &c.TickEvery},
		{"level_up_recheck", raw.LevelUpRecheck, &c.LevelUpRecheck},
		{"pause_recheck", raw.PauseRecheck, &c.PauseRecheck},
	}
	for _, d := range durations {
		value := strings.TrimSpace(d.raw)
		if value == "" {
			continue
		}
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("parse config: %s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

func (c *Config) normalize() error {
	dir, err := expandPath(c.StorageDir)
	if err != nil {
		return fmt.Errorf("storage_dir: %w", err)
	}
	c.StorageDir = dir

	if strings.TrimSpace(c.LogPath) == "" {
		c.LogPath = filepath.Join(c.StorageDir, defaultLogFile)
	} else {
		logPath, err := expandPath(c.LogPath)
		if err != nil {
			return fmt.Errorf("log_path: %w", err)
		}
		c.LogPath = logPath
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.MetricsAddr = strings.TrimSpace(c.MetricsAddr)
	c.Theme = strings.TrimSpace(c.Theme)
	if c.Theme == "" {
		c.Theme = defaultTheme
	}
	return nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if c.MaxDocumentBytes <= 0 {
		return fmt.Errorf("max_document_bytes must be positive, got %d", c.MaxDocumentBytes)
	}
	durations := []struct {
		key   string
		value time.Duration
	}{
		{"urgent_interval", c.UrgentInterval},
		{"idle_interval", c.IdleInterval},
		{"heartbeat_interval", c.HeartbeatEvery},
		{"tick_interval", c.TickEvery},
		{"level_up_recheck", c.LevelUpRecheck},
		{"pause_recheck", c.PauseRecheck},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.key, d.value)
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format %q is not one of console, json", c.LogFormat)
	}
	return nil
}

// WithStorageDir returns a copy of c stored under dir. A log path that was
// derived from the old storage dir follows it.
func (c Config) WithStorageDir(dir string) (Config, error) {
	expanded, err := expandPath(dir)
	if err != nil {
		return c, fmt.Errorf("storage dir: %w", err)
	}
	if c.LogPath == filepath.Join(c.StorageDir, defaultLogFile) {
		c.LogPath = filepath.Join(expanded, defaultLogFile)
	}
	c.StorageDir = expanded
	return c, nil
}

// ResolvePath expands path, or the default location when path is blank.
func ResolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func setString(dst *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*dst = trimmed
	}
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
