package port

// ColorSchemePreference is the resolved OS-level color scheme.
type ColorSchemePreference struct {
	// Scheme is entity.ThemeLight or entity.ThemeDark.
	Scheme string

	// Source identifies which detector provided the preference. Empty means
	// the fallback was used.
	Source string
}

// ColorSchemeDetector detects the system's color scheme preference. Multiple
// detectors can be registered with different priorities.
type ColorSchemeDetector interface {
	// Name returns a short identifier for this detector.
	Name() string

	// Priority orders detectors; higher values are consulted first.
	Priority() int

	// Available reports whether this detector can run in the current
	// environment (binary present, right platform, env var set).
	Available() bool

	// Detect returns the detected scheme and whether detection succeeded.
	Detect() (scheme string, ok bool)
}

// ColorSchemeResolver resolves the effective OS color scheme from a detector
// chain, with room for an explicit config override.
type ColorSchemeResolver interface {
	// Resolve returns the current preference without firing callbacks.
	Resolve() ColorSchemePreference

	// RegisterDetector adds a detector; it takes effect on the next Resolve.
	RegisterDetector(detector ColorSchemeDetector)

	// Refresh re-evaluates the preference and notifies OnChange subscribers
	// if it changed. Returns the new preference.
	Refresh() ColorSchemePreference

	// OnChange registers a callback fired when Refresh observes a different
	// preference. Returns an unregister function.
	OnChange(callback func(ColorSchemePreference)) func()
}
