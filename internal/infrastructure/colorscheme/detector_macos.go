package colorscheme

import (
	"os/exec"
	"runtime"
	"strings"

	"github.com/bnema/shade/internal/domain/entity"
)

const (
	detectorNameDarwin = "macos-appearance"
	priorityDarwin     = 10
)

// DarwinDetector reads the macOS appearance setting. AppleInterfaceStyle is
// only present when dark mode is on; reading it fails in light mode.
type DarwinDetector struct{}

// NewDarwinDetector creates a new macOS appearance detector.
func NewDarwinDetector() *DarwinDetector {
	return &DarwinDetector{}
}

// Name implements port.ColorSchemeDetector.
func (*DarwinDetector) Name() string {
	return detectorNameDarwin
}

// Priority implements port.ColorSchemeDetector.
func (*DarwinDetector) Priority() int {
	return priorityDarwin
}

// Available implements port.ColorSchemeDetector.
func (*DarwinDetector) Available() bool {
	return runtime.GOOS == "darwin"
}

// Detect implements port.ColorSchemeDetector.
func (*DarwinDetector) Detect() (scheme string, ok bool) {
	output, err := exec.Command("defaults", "read", "-g", "AppleInterfaceStyle").Output()
	if err != nil {
		// The key is absent in light mode, so a failed read means light.
		return entity.ThemeLight, true
	}
	if strings.EqualFold(strings.TrimSpace(string(output)), "dark") {
		return entity.ThemeDark, true
	}
	return entity.ThemeLight, true
}
