package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Config represents the complete configuration for shade.
type Config struct {
	// DefaultTheme is the selection used when nothing is persisted and the
	// fallback when a selected theme disappears. Must be a built-in.
	DefaultTheme string `mapstructure:"default_theme" yaml:"default_theme"`

	// DebounceMs is the collapse window for rapid theme changes.
	DebounceMs int `mapstructure:"debounce_ms" yaml:"debounce_ms"`

	Storage     StorageConfig     `mapstructure:"storage" yaml:"storage"`
	Schedule    ScheduleConfig    `mapstructure:"schedule" yaml:"schedule"`
	Transition  TransitionConfig  `mapstructure:"transition" yaml:"transition"`
	ColorScheme ColorSchemeConfig `mapstructure:"color_scheme" yaml:"color_scheme"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

// StorageConfig selects the state store backend.
type StorageConfig struct {
	// Backend is "file" or "sqlite".
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Path overrides the default XDG location of the state file/database.
	Path string `mapstructure:"path" yaml:"path"`
}

// ScheduleConfig seeds the day/night schedule.
type ScheduleConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	LightStart string `mapstructure:"light_start" yaml:"light_start"`
	DarkStart  string `mapstructure:"dark_start" yaml:"dark_start"`
	Timezone   string `mapstructure:"timezone" yaml:"timezone"`
}

// TransitionConfig seeds the default transition styling.
type TransitionConfig struct {
	Type       string `mapstructure:"type" yaml:"type"`
	DurationMs int    `mapstructure:"duration_ms" yaml:"duration_ms"`
}

// ColorSchemeConfig controls the OS preference source.
type ColorSchemeConfig struct {
	// Preference overrides detection: "default" (detect), "light", "dark".
	Preference string `mapstructure:"preference" yaml:"preference"`
	// PollIntervalMs is how often the monitor re-checks the OS preference.
	PollIntervalMs int `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
}

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// GetColorScheme implements colorscheme.ConfigProvider.
func (c *Config) GetColorScheme() string {
	return c.ColorScheme.Preference
}

var (
	globalMu     sync.RWMutex
	globalConfig *Config
)

// Load reads the configuration from the XDG config dir (and SHADE_*
// environment variables), applies defaults, validates, and installs the
// result as the global config. A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config directory: %w", err)
	}
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("SHADE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	globalMu.Lock()
	globalConfig = cfg
	globalMu.Unlock()

	return cfg, nil
}

// Get returns the global configuration, loading it on first use. Load
// failures degrade to defaults so callers always get a usable config.
func Get() *Config {
	globalMu.RLock()
	cfg := globalConfig
	globalMu.RUnlock()
	if cfg != nil {
		return cfg
	}

	cfg, err := Load()
	if err != nil {
		return Defaults()
	}
	return cfg
}
