package entity

import "time"

// Built-in theme identifiers. Light and dark ship with shade and cannot be
// removed; ThemeAuto is a sentinel selection meaning "follow the system
// preference (or the schedule when one is active)".
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeAuto  = "auto"
)

// BuiltinThemes returns the themes that are always available, in
// configuration order.
func BuiltinThemes() []string {
	return []string{ThemeLight, ThemeDark}
}

// IsBuiltin reports whether name is a protected built-in theme.
func IsBuiltin(name string) bool {
	return name == ThemeLight || name == ThemeDark
}

// CustomTheme is a user-defined theme: a name plus the CSS variable map the
// host applies when the theme is active. The variables are opaque to
// resolution logic.
type CustomTheme struct {
	Name      string            `json:"name" mapstructure:"name"`
	Variables map[string]string `json:"variables" mapstructure:"variables"`
}

// Clone returns a deep copy of the custom theme.
func (c CustomTheme) Clone() CustomTheme {
	vars := make(map[string]string, len(c.Variables))
	for k, v := range c.Variables {
		vars[k] = v
	}
	return CustomTheme{Name: c.Name, Variables: vars}
}

// Transition describes how a theme switch is presented. The type is opaque to
// the resolver; it is carried through to subscribers and persisted.
type Transition struct {
	Type       string `json:"type" mapstructure:"type"`
	DurationMs int    `json:"duration_ms" mapstructure:"duration_ms"`
}

// Duration returns the transition length as a time.Duration.
func (t Transition) Duration() time.Duration {
	return time.Duration(t.DurationMs) * time.Millisecond
}

// State is the canonical theme state owned by the resolver. Readers only ever
// see value copies produced by Clone; the resolver is the single writer.
type State struct {
	// SelectedTheme is the user's choice: a concrete theme name or ThemeAuto.
	SelectedTheme string
	// ResolvedTheme is the theme actually applied. Never ThemeAuto.
	ResolvedTheme string
	// SystemTheme is the last observed OS preference, ThemeLight or ThemeDark.
	SystemTheme string
	// AvailableThemes lists built-ins followed by custom themes, in
	// configuration order. ThemeAuto is a selection sentinel, not a member.
	AvailableThemes []string
	// CustomThemes holds user-defined themes keyed by name.
	CustomThemes map[string]CustomTheme
	// ForcedTheme overrides everything else when non-empty.
	ForcedTheme string
	// IsTransitioning is true while a visual transition is in flight.
	IsTransitioning bool

	SchedulingEnabled bool
	Schedule          Schedule

	Transition Transition

	// LastChanged is the time of the last resolved-theme change.
	LastChanged time.Time
}

// Clone returns a deep copy of the state, safe to hand to subscribers.
func (s State) Clone() State {
	out := s
	out.AvailableThemes = append([]string(nil), s.AvailableThemes...)
	out.CustomThemes = make(map[string]CustomTheme, len(s.CustomThemes))
	for name, ct := range s.CustomThemes {
		out.CustomThemes[name] = ct.Clone()
	}
	return out
}

// HasTheme reports whether name is currently available for selection.
// ThemeAuto is always a valid selection.
func (s State) HasTheme(name string) bool {
	if name == ThemeAuto {
		return true
	}
	for _, t := range s.AvailableThemes {
		if t == name {
			return true
		}
	}
	return false
}

// PersistedState is the durable subset of State: everything needed to rebuild
// it except the transient fields (SystemTheme, IsTransitioning, LastChanged),
// which are recomputed fresh on load.
type PersistedState struct {
	SelectedTheme     string        `json:"selected_theme"`
	ForcedTheme       string        `json:"forced_theme,omitempty"`
	SchedulingEnabled bool          `json:"scheduling_enabled"`
	Schedule          Schedule      `json:"schedule"`
	Transition        Transition    `json:"transition"`
	CustomThemes      []CustomTheme `json:"custom_themes,omitempty"`
}

// Persisted extracts the durable subset of the state. Custom themes keep
// their configuration order from AvailableThemes.
func (s State) Persisted() *PersistedState {
	p := &PersistedState{
		SelectedTheme:     s.SelectedTheme,
		ForcedTheme:       s.ForcedTheme,
		SchedulingEnabled: s.SchedulingEnabled,
		Schedule:          s.Schedule,
		Transition:        s.Transition,
	}
	for _, name := range s.AvailableThemes {
		if ct, ok := s.CustomThemes[name]; ok {
			p.CustomThemes = append(p.CustomThemes, ct.Clone())
		}
	}
	return p
}
