package colorscheme

import (
	"os"
	"strings"

	"github.com/bnema/shade/internal/domain/entity"
)

const (
	detectorNameEnv = "SHADE_COLOR_SCHEME"
	priorityEnv     = 100

	detectorNameGtkEnv = "GTK_THEME"
	priorityGtkEnv     = 20
)

// EnvDetector honors an explicit SHADE_COLOR_SCHEME=light|dark override.
// This outranks every other detector.
type EnvDetector struct{}

// NewEnvDetector creates a new environment variable-based detector.
func NewEnvDetector() *EnvDetector {
	return &EnvDetector{}
}

// Name implements port.ColorSchemeDetector.
func (*EnvDetector) Name() string {
	return detectorNameEnv
}

// Priority implements port.ColorSchemeDetector.
func (*EnvDetector) Priority() int {
	return priorityEnv
}

// Available implements port.ColorSchemeDetector.
func (*EnvDetector) Available() bool {
	return os.Getenv(detectorNameEnv) != ""
}

// Detect implements port.ColorSchemeDetector.
func (*EnvDetector) Detect() (scheme string, ok bool) {
	switch strings.ToLower(os.Getenv(detectorNameEnv)) {
	case "dark", "prefer-dark":
		return entity.ThemeDark, true
	case "light", "prefer-light":
		return entity.ThemeLight, true
	default:
		return "", false
	}
}

// GtkEnvDetector infers the preference from GTK_THEME, which desktop users
// often set explicitly ("Adwaita:dark").
type GtkEnvDetector struct{}

// NewGtkEnvDetector creates a new GTK_THEME-based detector.
func NewGtkEnvDetector() *GtkEnvDetector {
	return &GtkEnvDetector{}
}

// Name implements port.ColorSchemeDetector.
func (*GtkEnvDetector) Name() string {
	return detectorNameGtkEnv
}

// Priority implements port.ColorSchemeDetector.
func (*GtkEnvDetector) Priority() int {
	return priorityGtkEnv
}

// Available implements port.ColorSchemeDetector.
func (*GtkEnvDetector) Available() bool {
	return os.Getenv(detectorNameGtkEnv) != ""
}

// Detect implements port.ColorSchemeDetector.
// A theme name containing "dark" means dark; anything else is light.
func (*GtkEnvDetector) Detect() (scheme string, ok bool) {
	gtkTheme := os.Getenv(detectorNameGtkEnv)
	if gtkTheme == "" {
		return "", false
	}
	if strings.Contains(strings.ToLower(gtkTheme), "dark") {
		return entity.ThemeDark, true
	}
	return entity.ThemeLight, true
}
