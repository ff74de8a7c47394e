package colorscheme

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/shade/internal/application/port"
	"github.com/bnema/shade/internal/domain/entity"
)

// mockConfigProvider implements ConfigProvider for testing.
type mockConfigProvider struct {
	scheme string
}

func (m *mockConfigProvider) GetColorScheme() string {
	return m.scheme
}

// mockDetector implements port.ColorSchemeDetector for testing.
type mockDetector struct {
	name      string
	priority  int
	available bool
	scheme    string
	detectOk  bool
}

func (m *mockDetector) Name() string           { return m.name }
func (m *mockDetector) Priority() int          { return m.priority }
func (m *mockDetector) Available() bool        { return m.available }
func (m *mockDetector) Detect() (string, bool) { return m.scheme, m.detectOk }

func TestResolver_ConfigOverride(t *testing.T) {
	tests := []struct {
		name        string
		configValue string
		wantScheme  string
		wantSource  string
	}{
		{
			name:        "dark from config",
			configValue: "dark",
			wantScheme:  entity.ThemeDark,
			wantSource:  "config",
		},
		{
			name:        "prefer-dark from config",
			configValue: "prefer-dark",
			wantScheme:  entity.ThemeDark,
			wantSource:  "config",
		},
		{
			name:        "light from config",
			configValue: "light",
			wantScheme:  entity.ThemeLight,
			wantSource:  "config",
		},
		{
			name:        "prefer-light from config",
			configValue: "prefer-light",
			wantScheme:  entity.ThemeLight,
			wantSource:  "config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &mockConfigProvider{scheme: tt.configValue}
			resolver := NewResolver(config)

			pref := resolver.Resolve()

			assert.Equal(t, tt.wantScheme, pref.Scheme)
			assert.Equal(t, tt.wantSource, pref.Source)
		})
	}
}

func TestResolver_DefaultFallsThrough(t *testing.T) {
	config := &mockConfigProvider{scheme: "default"}
	resolver := NewResolver(config)

	detector := &mockDetector{
		name:      "test",
		priority:  50,
		available: true,
		scheme:    entity.ThemeDark,
		detectOk:  true,
	}
	resolver.RegisterDetector(detector)

	pref := resolver.Resolve()

	assert.Equal(t, entity.ThemeDark, pref.Scheme)
	assert.Equal(t, "test", pref.Source)
}

func TestResolver_DetectorPriority(t *testing.T) {
	config := &mockConfigProvider{scheme: "default"}
	resolver := NewResolver(config)

	lowPriority := &mockDetector{
		name:      "low",
		priority:  10,
		available: true,
		scheme:    entity.ThemeDark,
		detectOk:  true,
	}
	highPriority := &mockDetector{
		name:      "high",
		priority:  100,
		available: true,
		scheme:    entity.ThemeLight,
		detectOk:  true,
	}

	// Register low first, high second (order shouldn't matter)
	resolver.RegisterDetector(lowPriority)
	resolver.RegisterDetector(highPriority)

	pref := resolver.Resolve()

	assert.Equal(t, entity.ThemeLight, pref.Scheme)
	assert.Equal(t, "high", pref.Source)
}

func TestResolver_SkipsUnavailableDetector(t *testing.T) {
	config := &mockConfigProvider{scheme: "default"}
	resolver := NewResolver(config)

	unavailable := &mockDetector{
		name:      "unavailable",
		priority:  100,
		available: false,
		scheme:    entity.ThemeLight,
		detectOk:  true,
	}
	available := &mockDetector{
		name:      "available",
		priority:  10,
		available: true,
		scheme:    entity.ThemeDark,
		detectOk:  true,
	}

	resolver.RegisterDetector(unavailable)
	resolver.RegisterDetector(available)

	pref := resolver.Resolve()

	assert.Equal(t, entity.ThemeDark, pref.Scheme)
	assert.Equal(t, "available", pref.Source)
}

func TestResolver_SkipsFailedDetection(t *testing.T) {
	config := &mockConfigProvider{scheme: "default"}
	resolver := NewResolver(config)

	failing := &mockDetector{
		name:      "failing",
		priority:  100,
		available: true,
		detectOk:  false,
	}
	succeeding := &mockDetector{
		name:      "succeeding",
		priority:  10,
		available: true,
		scheme:    entity.ThemeDark,
		detectOk:  true,
	}

	resolver.RegisterDetector(failing)
	resolver.RegisterDetector(succeeding)

	pref := resolver.Resolve()

	assert.Equal(t, entity.ThemeDark, pref.Scheme)
	assert.Equal(t, "succeeding", pref.Source)
}

func TestResolver_FallbackWhenNoDetectors(t *testing.T) {
	config := &mockConfigProvider{scheme: "default"}
	resolver := NewResolver(config)

	pref := resolver.Resolve()

	assert.Equal(t, entity.ThemeLight, pref.Scheme)
	assert.Equal(t, "fallback", pref.Source)
}

func TestResolver_FallbackWhenAllFail(t *testing.T) {
	config := &mockConfigProvider{scheme: "default"}
	resolver := NewResolver(config)

	resolver.RegisterDetector(&mockDetector{
		name:      "fail1",
		priority:  100,
		available: true,
		detectOk:  false,
	})
	resolver.RegisterDetector(&mockDetector{
		name:      "fail2",
		priority:  50,
		available: false,
	})

	pref := resolver.Resolve()

	assert.Equal(t, entity.ThemeLight, pref.Scheme)
	assert.Equal(t, "fallback", pref.Source)
}

func TestResolver_NilConfig(t *testing.T) {
	resolver := NewResolver(nil)

	detector := &mockDetector{
		name:      "test",
		priority:  50,
		available: true,
		scheme:    entity.ThemeDark,
		detectOk:  true,
	}
	resolver.RegisterDetector(detector)

	pref := resolver.Resolve()

	assert.Equal(t, entity.ThemeDark, pref.Scheme)
	assert.Equal(t, "test", pref.Source)
}

func TestResolver_Refresh(t *testing.T) {
	config := &mockConfigProvider{scheme: "default"}
	resolver := NewResolver(config)

	detector := &mockDetector{
		name:      "test",
		priority:  50,
		available: true,
		scheme:    entity.ThemeLight,
		detectOk:  true,
	}
	resolver.RegisterDetector(detector)

	pref1 := resolver.Refresh()
	assert.Equal(t, entity.ThemeLight, pref1.Scheme)

	detector.scheme = entity.ThemeDark

	pref2 := resolver.Refresh()
	assert.Equal(t, entity.ThemeDark, pref2.Scheme)
}

func TestResolver_OnChange(t *testing.T) {
	config := &mockConfigProvider{scheme: "default"}
	resolver := NewResolver(config)

	detector := &mockDetector{
		name:      "test",
		priority:  50,
		available: true,
		scheme:    entity.ThemeDark,
		detectOk:  true,
	}
	resolver.RegisterDetector(detector)

	var callbackPref port.ColorSchemePreference
	var callbackCount int
	resolver.OnChange(func(pref port.ColorSchemePreference) {
		callbackPref = pref
		callbackCount++
	})

	// Initial refresh flips light -> dark, so the callback fires.
	resolver.Refresh()
	assert.Equal(t, 1, callbackCount)
	assert.Equal(t, entity.ThemeDark, callbackPref.Scheme)

	// Same preference: callback should NOT fire.
	resolver.Refresh()
	assert.Equal(t, 1, callbackCount)

	// Changed preference: callback fires again.
	detector.scheme = entity.ThemeLight
	resolver.Refresh()
	assert.Equal(t, 2, callbackCount)
	assert.Equal(t, entity.ThemeLight, callbackPref.Scheme)
}

func TestResolver_OnChangeUnregister(t *testing.T) {
	config := &mockConfigProvider{scheme: "default"}
	resolver := NewResolver(config)

	detector := &mockDetector{
		name:      "test",
		priority:  50,
		available: true,
		scheme:    entity.ThemeDark,
		detectOk:  true,
	}
	resolver.RegisterDetector(detector)

	var callbackCount int
	unregister := resolver.OnChange(func(_ port.ColorSchemePreference) {
		callbackCount++
	})

	resolver.Refresh()
	assert.Equal(t, 1, callbackCount)

	unregister()

	detector.scheme = entity.ThemeLight
	resolver.Refresh()
	assert.Equal(t, 1, callbackCount) // Still 1, not 2
}

func TestResolver_ConcurrentAccess(_ *testing.T) {
	config := &mockConfigProvider{scheme: "default"}
	resolver := NewResolver(config)

	detector := &mockDetector{
		name:      "test",
		priority:  50,
		available: true,
		scheme:    entity.ThemeLight,
		detectOk:  true,
	}
	resolver.RegisterDetector(detector)

	var wg sync.WaitGroup
	const goroutines = 10

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				resolver.Resolve()
			}
		}()
	}

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				resolver.Refresh()
			}
		}()
	}

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			scheme := entity.ThemeLight
			if id%2 == 0 {
				scheme = entity.ThemeDark
			}
			resolver.RegisterDetector(&mockDetector{
				name:      "concurrent",
				priority:  id,
				available: true,
				scheme:    scheme,
				detectOk:  true,
			})
		}(i)
	}

	wg.Wait()
	// Test passes if no race conditions detected
}

func TestResolver_ImplementsInterface(t *testing.T) {
	config := &mockConfigProvider{scheme: "default"}
	resolver := NewResolver(config)

	var _ port.ColorSchemeResolver = resolver
	require.NotNil(t, resolver)
}
