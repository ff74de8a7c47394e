// Package theme implements the shade theme resolver: it owns the canonical
// theme state, computes the effective theme under forced > scheduled >
// explicit > system precedence, debounces rapid changes, persists the durable
// subset through a StateStore, and notifies subscribers on every committed
// resolution.
package theme

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bnema/shade/internal/application/port"
	"github.com/bnema/shade/internal/domain/entity"
	"github.com/bnema/shade/internal/logging"
)

// DefaultDebounce is the window within which rapid set/toggle/cycle calls
// collapse to a single committed write.
const DefaultDebounce = 150 * time.Millisecond

// Options configures a Resolver.
type Options struct {
	// DefaultTheme is the fallback selection. Must be a built-in theme;
	// defaults to light.
	DefaultTheme string

	// Debounce is the collapse window for rapid theme changes. Zero means
	// DefaultDebounce; a negative value commits synchronously.
	Debounce time.Duration

	// Schedule seeds the schedule config. Persisted state takes precedence.
	Schedule *entity.Schedule

	// SchedulingEnabled seeds the scheduling flag. Persisted state takes
	// precedence.
	SchedulingEnabled bool

	// Transition seeds the default transition. Persisted state takes
	// precedence.
	Transition *entity.Transition

	// Now overrides the clock, for tests.
	Now func() time.Time

	// Logger overrides the context logger.
	Logger *zerolog.Logger
}

// Resolver owns the theme state. All mutations go through its operations;
// readers only ever see snapshots.
type Resolver struct {
	log          zerolog.Logger
	ctx          context.Context
	store        port.StateStore
	scheme       port.ColorSchemeResolver
	builtins     []string
	defaultTheme string
	debounce     time.Duration
	now          func() time.Time

	mu     sync.Mutex
	state  entity.State
	closed bool

	// saveMu serializes store writes so a newer commit's save cannot land
	// before a slower one that preceded it.
	saveMu sync.Mutex

	// pending is the debounced commit timer; pendingGen invalidates commits
	// superseded by a newer call, so a stale commit never fires after the
	// one that replaced it.
	pending    *time.Timer
	pendingGen uint64

	// commitSeq orders commits. A commit that was overtaken while its save
	// was in flight skips its notification; the newer commit already
	// delivered the current state.
	commitSeq uint64

	transitionTimer *time.Timer

	changeSubs     []*changeSub
	transitionSubs []*transitionSub
	notifying      bool
	notifyQueue    []entity.State

	unsubScheme func()
	stopWatch   func()
}

// New creates a resolver seeded from persisted state, falling back to the
// configured defaults when storage is empty or unreadable. Collaborator
// failures during initialization are logged and leave the resolver usable
// with the default theme.
func New(ctx context.Context, store port.StateStore, scheme port.ColorSchemeResolver, opts Options) (*Resolver, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if scheme == nil {
		return nil, errors.New("color scheme resolver is required")
	}

	log := *logging.FromContext(ctx)
	if opts.Logger != nil {
		log = *opts.Logger
	}
	log = log.With().Str("component", "theme").Logger()

	defaultTheme := opts.DefaultTheme
	if defaultTheme == "" {
		defaultTheme = entity.ThemeLight
	}
	if !entity.IsBuiltin(defaultTheme) {
		return nil, fmt.Errorf("%w: default theme %q must be built in", ErrInvalidTheme, defaultTheme)
	}

	debounce := opts.Debounce
	switch {
	case debounce == 0:
		debounce = DefaultDebounce
	case debounce < 0:
		debounce = 0
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	r := &Resolver{
		log:          log,
		ctx:          ctx,
		store:        store,
		scheme:       scheme,
		builtins:     entity.BuiltinThemes(),
		defaultTheme: defaultTheme,
		debounce:     debounce,
		now:          now,
	}

	r.state = entity.State{
		SelectedTheme:   defaultTheme,
		SystemTheme:     entity.ThemeLight,
		AvailableThemes: append([]string(nil), r.builtins...),
		CustomThemes:    make(map[string]entity.CustomTheme),
	}
	if opts.Schedule != nil {
		r.state.Schedule = *opts.Schedule
	}
	r.state.SchedulingEnabled = opts.SchedulingEnabled
	if opts.Transition != nil {
		r.state.Transition = *opts.Transition
	}

	if pref := scheme.Resolve(); pref.Scheme == entity.ThemeDark || pref.Scheme == entity.ThemeLight {
		r.state.SystemTheme = pref.Scheme
	}

	// No concurrency yet; the lock convention starts once subscriptions are
	// wired below.
	if persisted, err := store.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to load persisted theme state, using defaults")
	} else if persisted != nil {
		r.applyPersistedLocked(persisted)
	}

	n := now()
	r.state.ResolvedTheme = r.resolveLocked(n)
	r.state.LastChanged = n

	r.unsubScheme = scheme.OnChange(r.handleSystemChange)

	stop, err := store.Watch(ctx, r.handleExternalState)
	if err != nil {
		log.Warn().Err(err).Msg("external state watch unavailable")
	} else {
		r.stopWatch = stop
	}

	log.Debug().
		Str("selected", r.state.SelectedTheme).
		Str("resolved", r.state.ResolvedTheme).
		Str("system", r.state.SystemTheme).
		Dur("debounce", debounce).
		Msg("theme resolver initialized")

	return r, nil
}

// Snapshot returns a copy of the current state.
func (r *Resolver) Snapshot() entity.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

// SetTheme selects a theme by name (a configured theme or entity.ThemeAuto),
// re-resolves, and schedules a debounced commit. A newer call within the
// debounce window supersedes this one; the last request wins. When transition
// is non-nil it replaces the current transition settings.
func (r *Resolver) SetTheme(ctx context.Context, name string, transition *entity.Transition) (entity.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return entity.State{}, ErrClosed
	}
	if name == "" || !r.state.HasTheme(name) {
		return entity.State{}, fmt.Errorf("%w: %q", ErrInvalidTheme, name)
	}

	if transition != nil {
		r.state.Transition = *transition
	}
	r.state.SelectedTheme = name
	r.reresolveLocked(r.now(), true)
	r.schedulePendingLocked()

	logging.FromContext(ctx).Debug().
		Str("selected", name).
		Str("resolved", r.state.ResolvedTheme).
		Msg("theme selected")

	return r.state.Clone(), nil
}

// ToggleTheme switches between light and dark based on the currently
// resolved theme. While a theme is forced the resolved output does not move,
// but the selection still updates and takes effect once the force is cleared.
func (r *Resolver) ToggleTheme(ctx context.Context) (entity.State, error) {
	r.mu.Lock()
	next := entity.ThemeLight
	if r.state.ResolvedTheme == entity.ThemeLight {
		next = entity.ThemeDark
	}
	r.mu.Unlock()

	return r.SetTheme(ctx, next, nil)
}

// CycleTheme advances to the next available theme in configuration order,
// wrapping at the end. With fewer than two themes it is a no-op.
func (r *Resolver) CycleTheme(ctx context.Context) (entity.State, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return entity.State{}, ErrClosed
	}
	themes := r.state.AvailableThemes
	if len(themes) < 2 {
		snap := r.state.Clone()
		r.mu.Unlock()
		return snap, nil
	}
	idx := 0
	for i, t := range themes {
		if t == r.state.ResolvedTheme {
			idx = i
			break
		}
	}
	next := themes[(idx+1)%len(themes)]
	r.mu.Unlock()

	return r.SetTheme(ctx, next, nil)
}

// AddCustomTheme registers a user-defined theme. The current resolution is
// unaffected; the new theme only becomes active once selected.
func (r *Resolver) AddCustomTheme(ctx context.Context, name string, variables map[string]string) (entity.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return entity.State{}, ErrClosed
	}
	name = strings.TrimSpace(name)
	if name == "" || name == entity.ThemeAuto {
		return entity.State{}, fmt.Errorf("%w: %q", ErrInvalidTheme, name)
	}
	if r.state.HasTheme(name) {
		return entity.State{}, fmt.Errorf("%w: %q", ErrDuplicateTheme, name)
	}

	vars := make(map[string]string, len(variables))
	for k, v := range variables {
		vars[k] = v
	}
	r.state.CustomThemes[name] = entity.CustomTheme{Name: name, Variables: vars}
	r.state.AvailableThemes = append(r.state.AvailableThemes, name)

	logging.FromContext(ctx).Info().Str("theme", name).Msg("custom theme added")

	return r.commitLocked(true), nil
}

// RemoveCustomTheme deletes a user-defined theme. Built-ins are protected.
// If the removed theme was selected, forced, or resolved, the selection falls
// back to the default theme and the state re-resolves.
func (r *Resolver) RemoveCustomTheme(ctx context.Context, name string) (entity.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return entity.State{}, ErrClosed
	}
	if entity.IsBuiltin(name) {
		return entity.State{}, fmt.Errorf("%w: %q", ErrProtectedTheme, name)
	}
	if _, ok := r.state.CustomThemes[name]; !ok {
		return entity.State{}, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}

	delete(r.state.CustomThemes, name)
	for i, t := range r.state.AvailableThemes {
		if t == name {
			r.state.AvailableThemes = append(r.state.AvailableThemes[:i], r.state.AvailableThemes[i+1:]...)
			break
		}
	}
	if r.state.ForcedTheme == name {
		r.state.ForcedTheme = ""
	}
	if r.state.SelectedTheme == name {
		r.state.SelectedTheme = r.defaultTheme
	}
	r.reresolveLocked(r.now(), false)

	logging.FromContext(ctx).Info().Str("theme", name).Msg("custom theme removed")

	return r.commitLocked(true), nil
}

// ForceTheme overrides every other policy with the named theme. Forcing is
// immediate: it bypasses the debounce window.
func (r *Resolver) ForceTheme(ctx context.Context, name string) (entity.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return entity.State{}, ErrClosed
	}
	if name == "" || name == entity.ThemeAuto || !r.state.HasTheme(name) {
		return entity.State{}, fmt.Errorf("%w: %q", ErrInvalidTheme, name)
	}

	r.state.ForcedTheme = name
	r.reresolveLocked(r.now(), false)

	logging.FromContext(ctx).Info().Str("theme", name).Msg("theme forced")

	return r.commitLocked(true), nil
}

// ClearForcedTheme removes the forced override and restores the resolution
// the other policies produce. Immediate, like ForceTheme.
func (r *Resolver) ClearForcedTheme(ctx context.Context) (entity.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return entity.State{}, ErrClosed
	}

	r.state.ForcedTheme = ""
	r.reresolveLocked(r.now(), false)

	logging.FromContext(ctx).Info().Msg("forced theme cleared")

	return r.commitLocked(true), nil
}

// EnableScheduling turns scheduled switching on or off and re-resolves
// immediately.
func (r *Resolver) EnableScheduling(ctx context.Context, enabled bool) (entity.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return entity.State{}, ErrClosed
	}

	r.state.SchedulingEnabled = enabled
	r.reresolveLocked(r.now(), false)

	logging.FromContext(ctx).Info().Bool("enabled", enabled).Msg("scheduling toggled")

	return r.commitLocked(true), nil
}

// SetSchedule replaces the schedule config after validating it, then
// re-resolves immediately.
func (r *Resolver) SetSchedule(ctx context.Context, schedule entity.Schedule) (entity.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return entity.State{}, ErrClosed
	}
	if err := schedule.Validate(); err != nil {
		return entity.State{}, fmt.Errorf("%w: %s", ErrInvalidSchedule, err)
	}

	r.state.Schedule = schedule
	r.reresolveLocked(r.now(), false)

	logging.FromContext(ctx).Info().
		Str("light_start", schedule.LightStart).
		Str("dark_start", schedule.DarkStart).
		Msg("schedule updated")

	return r.commitLocked(true), nil
}

// RefreshSystemTheme re-queries the OS preference and re-resolves when the
// resolution is currently governed by it (auto selection, no force, no
// schedule).
func (r *Resolver) RefreshSystemTheme(ctx context.Context) (entity.State, error) {
	pref := r.scheme.Refresh()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return entity.State{}, ErrClosed
	}
	r.applySystemLocked(pref)
	return r.state.Clone(), nil
}

// RefreshSchedule re-resolves against the current clock. Callers invoke it
// when a schedule boundary passes; nothing durable changes, so a moved
// resolution commits with notification only.
func (r *Resolver) RefreshSchedule(ctx context.Context) entity.State {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return entity.State{}
	}
	if r.reresolveLocked(r.now(), true) {
		logging.FromContext(ctx).Debug().
			Str("resolved", r.state.ResolvedTheme).
			Msg("schedule boundary crossed")
		return r.commitLocked(false)
	}
	return r.state.Clone()
}

// NextScheduledChange returns the duration from now until the next schedule
// boundary, or zero when scheduling is disabled.
func (r *Resolver) NextScheduledChange(now time.Time) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.state.SchedulingEnabled {
		return 0
	}
	return r.state.Schedule.NextChange(now)
}

// Flush commits any pending debounced write immediately.
func (r *Resolver) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if r.pending == nil {
		return nil
	}
	r.commitLocked(true)
	return nil
}

// Close cancels the debounce and transition timers, unsubscribes from the
// system preference source and the store watch, and persists any pending
// state. No new notification dispatch starts after Close; callbacks already
// in flight may still finish.
func (r *Resolver) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true

	hadPending := r.pending != nil
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
	if r.transitionTimer != nil {
		r.transitionTimer.Stop()
		r.transitionTimer = nil
	}

	var persisted *entity.PersistedState
	if hadPending {
		persisted = r.state.Persisted()
	}
	unsubScheme := r.unsubScheme
	stopWatch := r.stopWatch
	r.unsubScheme = nil
	r.stopWatch = nil
	r.mu.Unlock()

	if unsubScheme != nil {
		unsubScheme()
	}
	if stopWatch != nil {
		stopWatch()
	}
	if persisted != nil {
		r.saveMu.Lock()
		err := r.store.Save(r.ctx, persisted)
		r.saveMu.Unlock()
		if err != nil {
			r.log.Warn().Err(err).Msg("failed to persist theme state on close")
		}
	}
	return nil
}

// resolveLocked computes the effective theme. Precedence, highest first:
// forced override, schedule (only when the selection is light/dark/auto),
// explicit custom selection, system preference for auto, explicit selection.
func (r *Resolver) resolveLocked(now time.Time) string {
	s := &r.state
	if s.ForcedTheme != "" {
		return s.ForcedTheme
	}
	if s.SchedulingEnabled && schedulable(s.SelectedTheme) {
		return s.Schedule.ThemeAt(now)
	}
	if s.SelectedTheme == entity.ThemeAuto {
		if s.SystemTheme == entity.ThemeDark {
			return entity.ThemeDark
		}
		return entity.ThemeLight
	}
	return s.SelectedTheme
}

// schedulable reports whether the schedule may arbitrate for this selection.
// A selected custom theme wins over the schedule; the schedule only decides
// between light and dark.
func schedulable(selected string) bool {
	return selected == entity.ThemeLight || selected == entity.ThemeDark || selected == entity.ThemeAuto
}

// reresolveLocked recomputes ResolvedTheme and reports whether it changed.
// When transition is true and a transition is configured, a changed
// resolution starts the transition bookkeeping.
func (r *Resolver) reresolveLocked(now time.Time, transition bool) bool {
	resolved := r.resolveLocked(now)
	if resolved == r.state.ResolvedTheme {
		return false
	}
	r.state.ResolvedTheme = resolved
	r.state.LastChanged = now
	if transition {
		r.beginTransitionLocked()
	}
	return true
}

// schedulePendingLocked (re)arms the debounced commit. The previous pending
// commit, if any, is cancelled: last write wins.
func (r *Resolver) schedulePendingLocked() {
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
	r.pendingGen++

	if r.debounce <= 0 {
		r.commitLocked(true)
		return
	}

	gen := r.pendingGen
	r.pending = time.AfterFunc(r.debounce, func() {
		r.commitPending(gen)
	})
}

// commitPending runs when the debounce window settles.
func (r *Resolver) commitPending(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || gen != r.pendingGen || r.pending == nil {
		return
	}
	r.pending = nil

	// A structural mutation may have landed while this write was pending:
	// re-validate the selection before committing.
	if !r.state.HasTheme(r.state.SelectedTheme) {
		r.log.Warn().
			Err(ErrInvalidTheme).
			Str("selected", r.state.SelectedTheme).
			Msg("pending selection invalidated, falling back to default")
		r.state.SelectedTheme = r.defaultTheme
		r.reresolveLocked(r.now(), false)
	}
	r.commitLocked(true)
}

// commitLocked cancels any pending debounce, optionally persists the durable
// state, and notifies subscribers with a snapshot. Persistence failures are
// logged and do not block the in-memory commit. Caller must hold mu; the
// lock is held again on return.
//
// The mutex is released during the save, so a newer commit can land while it
// is in flight. Saves are serialized through saveMu in commit order, and a
// superseded commit drops its notification: subscribers never see a stale
// snapshot after a newer one.
func (r *Resolver) commitLocked(persist bool) entity.State {
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
		r.pendingGen++
	}

	r.commitSeq++
	seq := r.commitSeq
	snap := r.state.Clone()

	if persist {
		persisted := r.state.Persisted()
		r.mu.Unlock()
		r.saveMu.Lock()
		err := r.store.Save(r.ctx, persisted)
		r.saveMu.Unlock()
		if err != nil {
			r.log.Warn().Err(err).Msg("failed to persist theme state")
		}
		r.mu.Lock()

		if r.commitSeq != seq || r.closed {
			return snap
		}
	}

	r.notifyChangeLocked(snap)
	return snap
}

// beginTransitionLocked flips the transitioning flag, notifies, and arms the
// timer that flips it back after the configured duration.
func (r *Resolver) beginTransitionLocked() {
	duration := r.state.Transition.Duration()
	if duration <= 0 {
		return
	}
	if r.transitionTimer != nil {
		r.transitionTimer.Stop()
	}
	if !r.state.IsTransitioning {
		r.state.IsTransitioning = true
		r.notifyTransitionLocked(true)
	}
	r.transitionTimer = time.AfterFunc(duration, r.endTransition)
}

func (r *Resolver) endTransition() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || !r.state.IsTransitioning {
		return
	}
	r.state.IsTransitioning = false
	r.transitionTimer = nil
	r.notifyTransitionLocked(false)
}

// handleSystemChange is subscribed to the color scheme resolver.
func (r *Resolver) handleSystemChange(pref port.ColorSchemePreference) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.applySystemLocked(pref)
}

// applySystemLocked updates the observed system theme and re-resolves when
// the auto policy currently governs the resolution.
func (r *Resolver) applySystemLocked(pref port.ColorSchemePreference) {
	scheme := pref.Scheme
	if scheme != entity.ThemeLight && scheme != entity.ThemeDark {
		// Query failure upstream: keep the last known preference.
		return
	}
	if r.state.SystemTheme == scheme {
		return
	}
	r.state.SystemTheme = scheme
	r.log.Debug().Str("system", scheme).Str("source", pref.Source).Msg("system preference changed")

	if r.state.ForcedTheme == "" && !r.state.SchedulingEnabled && r.state.SelectedTheme == entity.ThemeAuto {
		if r.reresolveLocked(r.now(), true) {
			r.commitLocked(false)
		}
	}
}

// handleExternalState applies a snapshot written by another process. The
// resolver re-resolves and notifies local subscribers without re-persisting,
// to avoid write loops.
func (r *Resolver) handleExternalState(persisted *entity.PersistedState) {
	if persisted == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.applyPersistedLocked(persisted)
	r.reresolveLocked(r.now(), false)
	r.log.Debug().Str("resolved", r.state.ResolvedTheme).Msg("applied external state change")
	r.commitLocked(false)
}

// applyPersistedLocked rebuilds the durable fields from a stored snapshot.
// Unknown selections fall back to the default theme; a forced theme that no
// longer exists is dropped.
func (r *Resolver) applyPersistedLocked(persisted *entity.PersistedState) {
	available := append([]string(nil), r.builtins...)
	custom := make(map[string]entity.CustomTheme, len(persisted.CustomThemes))
	for _, ct := range persisted.CustomThemes {
		if ct.Name == "" || ct.Name == entity.ThemeAuto {
			continue
		}
		if _, dup := custom[ct.Name]; dup || entity.IsBuiltin(ct.Name) {
			continue
		}
		custom[ct.Name] = ct.Clone()
		available = append(available, ct.Name)
	}
	r.state.AvailableThemes = available
	r.state.CustomThemes = custom

	selected := persisted.SelectedTheme
	if selected == "" || !r.state.HasTheme(selected) {
		selected = r.defaultTheme
	}
	r.state.SelectedTheme = selected

	forced := persisted.ForcedTheme
	if forced != "" && (forced == entity.ThemeAuto || !r.state.HasTheme(forced)) {
		r.log.Warn().Str("forced", forced).Msg("dropping forced theme no longer available")
		forced = ""
	}
	r.state.ForcedTheme = forced

	r.state.SchedulingEnabled = persisted.SchedulingEnabled
	if persisted.Schedule != (entity.Schedule{}) {
		r.state.Schedule = persisted.Schedule
	}
	if persisted.Transition.Type != "" || persisted.Transition.DurationMs > 0 {
		r.state.Transition = persisted.Transition
	}
}
