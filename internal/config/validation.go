package config

import (
	"fmt"

	"github.com/bnema/shade/internal/domain/entity"
)

// validateConfig normalizes and checks config values, repairing what it can
// and rejecting what it cannot.
func validateConfig(cfg *Config) error {
	if cfg.DefaultTheme == "" {
		cfg.DefaultTheme = DefaultTheme
	}
	if !entity.IsBuiltin(cfg.DefaultTheme) {
		return fmt.Errorf("default_theme %q must be a built-in theme", cfg.DefaultTheme)
	}

	if cfg.DebounceMs < 0 {
		cfg.DebounceMs = 0
	}

	switch cfg.Storage.Backend {
	case "", "file":
		cfg.Storage.Backend = "file"
	case "sqlite":
	default:
		return fmt.Errorf("storage.backend %q must be \"file\" or \"sqlite\"", cfg.Storage.Backend)
	}

	schedule := entity.Schedule{
		LightStart: cfg.Schedule.LightStart,
		DarkStart:  cfg.Schedule.DarkStart,
		Timezone:   cfg.Schedule.Timezone,
	}
	if err := schedule.Validate(); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}

	if cfg.Transition.DurationMs < 0 {
		cfg.Transition.DurationMs = 0
	}

	switch cfg.ColorScheme.Preference {
	case "", "default", "light", "dark", "prefer-light", "prefer-dark":
	default:
		return fmt.Errorf("color_scheme.preference %q must be \"default\", \"light\", or \"dark\"", cfg.ColorScheme.Preference)
	}
	if cfg.ColorScheme.PollIntervalMs <= 0 {
		cfg.ColorScheme.PollIntervalMs = DefaultPollIntervalMs
	}

	switch cfg.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be \"console\" or \"json\"", cfg.Logging.Format)
	}

	return nil
}
