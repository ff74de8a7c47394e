// Package colorscheme resolves the OS-level color scheme preference from a
// priority-ordered detector chain, with an optional config override.
package colorscheme

import (
	"sort"
	"strings"
	"sync"

	"github.com/bnema/shade/internal/application/port"
	"github.com/bnema/shade/internal/domain/entity"
)

const (
	// sourceFallback indicates no detector provided the preference.
	sourceFallback = "fallback"
	// sourceConfig indicates the preference came from user config.
	sourceConfig = "config"
)

// ConfigProvider provides access to the color scheme configuration.
type ConfigProvider interface {
	// GetColorScheme returns the configured preference.
	// Expected values: "default", "light", "dark" (empty falls through to
	// the detector chain).
	GetColorScheme() string
}

// callbackWrapper wraps a callback function to enable pointer comparison for removal.
type callbackWrapper struct {
	fn func(port.ColorSchemePreference)
}

// Resolver implements port.ColorSchemeResolver.
type Resolver struct {
	mu        sync.RWMutex
	config    ConfigProvider
	detectors []port.ColorSchemeDetector
	current   port.ColorSchemePreference
	callbacks []*callbackWrapper
}

// NewResolver creates a new color scheme resolver. The config provider is
// used to check for an explicit user preference before the detectors run.
func NewResolver(config ConfigProvider) *Resolver {
	return &Resolver{
		config:    config,
		detectors: make([]port.ColorSchemeDetector, 0),
		current: port.ColorSchemePreference{
			Scheme: entity.ThemeLight, // until first Resolve()
			Source: sourceFallback,
		},
	}
}

// NewDefaultResolver returns a resolver with the standard detector chain
// registered: explicit env override, desktop settings, platform appearance.
func NewDefaultResolver(config ConfigProvider) *Resolver {
	r := NewResolver(config)
	r.RegisterDetector(NewEnvDetector())
	r.RegisterDetector(NewGtkEnvDetector())
	r.RegisterDetector(NewGsettingsDetector())
	r.RegisterDetector(NewDarwinDetector())
	return r
}

// Resolve implements port.ColorSchemeResolver.
func (r *Resolver) Resolve() port.ColorSchemePreference {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolveInternal()
}

// resolveInternal performs the actual resolution without locking.
// Caller must hold at least a read lock.
func (r *Resolver) resolveInternal() port.ColorSchemePreference {
	// Check config for explicit override first
	if r.config != nil {
		switch strings.ToLower(r.config.GetColorScheme()) {
		case "dark", "prefer-dark":
			return port.ColorSchemePreference{Scheme: entity.ThemeDark, Source: sourceConfig}
		case "light", "prefer-light":
			return port.ColorSchemePreference{Scheme: entity.ThemeLight, Source: sourceConfig}
			// "default" or empty falls through to detector chain
		}
	}

	// Sort detectors by priority (highest first)
	sorted := make([]port.ColorSchemeDetector, len(r.detectors))
	copy(sorted, r.detectors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})

	for _, detector := range sorted {
		if !detector.Available() {
			continue
		}
		if scheme, ok := detector.Detect(); ok {
			return port.ColorSchemePreference{Scheme: scheme, Source: detector.Name()}
		}
	}

	// All detectors failed: light, matching the resolver's seed default.
	return port.ColorSchemePreference{Scheme: entity.ThemeLight, Source: sourceFallback}
}

// RegisterDetector implements port.ColorSchemeResolver.
func (r *Resolver) RegisterDetector(detector port.ColorSchemeDetector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detectors = append(r.detectors, detector)
}

// Refresh implements port.ColorSchemeResolver.
func (r *Resolver) Refresh() port.ColorSchemePreference {
	r.mu.Lock()
	defer r.mu.Unlock()

	newPref := r.resolveInternal()

	// Only notify if preference changed
	if newPref.Scheme != r.current.Scheme {
		r.current = newPref
		// Copy callbacks to avoid holding lock during callback invocation
		callbacks := make([]*callbackWrapper, len(r.callbacks))
		copy(callbacks, r.callbacks)

		r.mu.Unlock()
		for _, cb := range callbacks {
			cb.fn(newPref)
		}
		r.mu.Lock()
	} else {
		r.current = newPref
	}

	return newPref
}

// OnChange implements port.ColorSchemeResolver.
func (r *Resolver) OnChange(callback func(port.ColorSchemePreference)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	wrapper := &callbackWrapper{fn: callback}
	r.callbacks = append(r.callbacks, wrapper)

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		for i, cb := range r.callbacks {
			if cb == wrapper {
				r.callbacks = append(r.callbacks[:i], r.callbacks[i+1:]...)
				return
			}
		}
	}
}
