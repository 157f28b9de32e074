package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Components map[string]string `mapstructure:"components"`
}

// LibraryConfig configures the photo library scan.
type LibraryConfig struct {
	Path       string   `mapstructure:"path"`
	Extensions []string `mapstructure:"extensions"`
	Recursive  bool     `mapstructure:"recursive"`
	MaxDepth   int      `mapstructure:"max_depth"`
}

// CacheConfig configures the metadata cache that avoids re-reading EXIF
// data on every scan.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// TimelineConfig configures the windowing behaviour of the timeline.
type TimelineConfig struct {
	BufferSize int    `mapstructure:"buffer_size"`
	Zoom       string `mapstructure:"zoom"`
}

// Config represents the application configuration.
type Config struct {
	Library  LibraryConfig  `mapstructure:"library"`
	Timeline TimelineConfig `mapstructure:"timeline"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Watch    bool           `mapstructure:"watch"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/timescape/config.yaml
//   - $HOME/.config/timescape/config.yaml
//
// Environment variables are prefixed with TIMESCAPE_
// (e.g., TIMESCAPE_LIBRARY_PATH).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "timescape"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "timescape"))

	v.SetEnvPrefix("TIMESCAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("library.path", DefaultLibraryPath)
	v.SetDefault("library.extensions", DefaultExtensions)
	v.SetDefault("library.recursive", true)
	v.SetDefault("library.max_depth", DefaultMaxDepth)

	v.SetDefault("timeline.buffer_size", DefaultBufferSize)
	v.SetDefault("timeline.zoom", DefaultZoom)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "") // Empty means use DefaultCachePath

	v.SetDefault("watch", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use DefaultLogPath
	v.SetDefault("logging.components", map[string]string{
		"scan":   "info",
		"window": "info",
		"watch":  "warn",
	})

	// Config file not found is acceptable; we use defaults.
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.HasPrefix(cfg.Library.Path, "~") {
		cfg.Library.Path = filepath.Join(homeDir, cfg.Library.Path[1:])
	}

	return &cfg, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "timescape"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "timescape"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configDir, err := ConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# Timescape Timeline Browser Configuration

# Photo library settings
library:
  # Root directory to index
  path: %s
  # Image extensions to include
  extensions:
    - .jpg
    - .jpeg
  # Descend into subdirectories
  recursive: true
  max_depth: %d

# Timeline windowing
timeline:
  # Buckets kept on each side of the pivot
  buffer_size: %d
  # Initial zoom level: years, months, days, hours, minutes, seconds
  zoom: %s

# Metadata cache (skips EXIF extraction for unmodified files)
cache:
  enabled: true
  # Cache database path (empty means use default: $XDG_CACHE_HOME/timescape/meta)
  path: ""

# Keep watching the library for new photos after the scan completes
watch: false

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/timescape/timescape.log)
  path: ""
  # Per-component log levels
  components:
    scan: info
    window: info
    watch: warn
`, DefaultLibraryPath, DefaultMaxDepth, DefaultBufferSize, DefaultZoom)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// StateDir returns $XDG_STATE_HOME/timescape/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "timescape")
}

// CacheDir returns $XDG_CACHE_HOME/timescape/ for the metadata cache.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, "timescape")
}

// DefaultCachePath returns the default metadata cache database path.
func DefaultCachePath() string {
	return filepath.Join(CacheDir(), "meta")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "timescape.log")
}

// EnsureStateDir creates the state directory if it doesn't exist.
func EnsureStateDir() error {
	if err := os.MkdirAll(StateDir(), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return nil
}

// EnsureCacheDir creates the cache directory if it doesn't exist.
func EnsureCacheDir() error {
	if err := os.MkdirAll(CacheDir(), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	return nil
}
