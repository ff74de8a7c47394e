package config

import "github.com/spf13/viper"

// Default configuration values.
const (
	DefaultTheme          = "light"
	DefaultDebounceMs     = 150
	DefaultStorageBackend = "file"
	DefaultLightStart     = "07:00"
	DefaultDarkStart      = "19:00"
	DefaultTimezone       = "local"
	DefaultTransitionType = "fade"
	DefaultTransitionMs   = 300
	DefaultPollIntervalMs = 10000
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("default_theme", DefaultTheme)
	v.SetDefault("debounce_ms", DefaultDebounceMs)
	v.SetDefault("storage.backend", DefaultStorageBackend)
	v.SetDefault("storage.path", "")
	v.SetDefault("schedule.enabled", false)
	v.SetDefault("schedule.light_start", DefaultLightStart)
	v.SetDefault("schedule.dark_start", DefaultDarkStart)
	v.SetDefault("schedule.timezone", DefaultTimezone)
	v.SetDefault("transition.type", DefaultTransitionType)
	v.SetDefault("transition.duration_ms", DefaultTransitionMs)
	v.SetDefault("color_scheme.preference", "default")
	v.SetDefault("color_scheme.poll_interval_ms", DefaultPollIntervalMs)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}

// Defaults returns a config populated with the default values, without
// touching the filesystem.
func Defaults() *Config {
	return &Config{
		DefaultTheme: DefaultTheme,
		DebounceMs:   DefaultDebounceMs,
		Storage: StorageConfig{
			Backend: DefaultStorageBackend,
		},
		Schedule: ScheduleConfig{
			Enabled:    false,
			LightStart: DefaultLightStart,
			DarkStart:  DefaultDarkStart,
			Timezone:   DefaultTimezone,
		},
		Transition: TransitionConfig{
			Type:       DefaultTransitionType,
			DurationMs: DefaultTransitionMs,
		},
		ColorScheme: ColorSchemeConfig{
			Preference:     "default",
			PollIntervalMs: DefaultPollIntervalMs,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
