package theme

import "errors"

// Validation errors returned by resolver operations. Operations that fail
// with one of these leave the state untouched.
var (
	// ErrInvalidTheme is returned for unknown or malformed theme names.
	ErrInvalidTheme = errors.New("invalid theme")

	// ErrDuplicateTheme is returned when adding a theme name that already exists.
	ErrDuplicateTheme = errors.New("theme already exists")

	// ErrUnknownTheme is returned when removing a theme that does not exist.
	ErrUnknownTheme = errors.New("unknown theme")

	// ErrProtectedTheme is returned when removing a built-in theme.
	ErrProtectedTheme = errors.New("built-in theme cannot be removed")

	// ErrInvalidSchedule is returned for unparseable schedule times or zones.
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrClosed is returned by operations on a closed resolver.
	ErrClosed = errors.New("resolver is closed")
)
