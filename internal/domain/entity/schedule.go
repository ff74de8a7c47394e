package entity

import (
	"fmt"
	"strings"
	"time"
)

// Schedule defines the daily light/dark window for scheduled switching.
// Start times are stored as strings so malformed values survive a round trip
// through storage; resolution treats anything unparseable as midnight.
type Schedule struct {
	// LightStart is the time of day the light window begins, "HH:mm" or a
	// duration-of-day like "6h30m".
	LightStart string `json:"light_start" mapstructure:"light_start"`
	// DarkStart is the time of day the dark window begins.
	DarkStart string `json:"dark_start" mapstructure:"dark_start"`
	// Timezone is "local" (or empty) for the system zone, otherwise an IANA
	// zone id like "Europe/Paris".
	Timezone string `json:"timezone,omitempty" mapstructure:"timezone"`
}

const day = 24 * time.Hour

// ParseTimeOfDay parses a time-of-day string into an offset from midnight.
// Accepted forms: "HH:mm", "HH:mm:ss", and Go duration syntax ("6h30m").
// Durations are folded into [0, 24h).
func ParseTimeOfDay(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty time of day")
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	d %= day
	if d < 0 {
		d += day
	}
	return d, nil
}

// timeOfDayOrZero is the lenient form used during resolution: malformed
// strings resolve to midnight instead of failing. Setters validate upstream.
func timeOfDayOrZero(s string) time.Duration {
	d, err := ParseTimeOfDay(s)
	if err != nil {
		return 0
	}
	return d
}

// Validate checks that both start times parse and the timezone, if given,
// names a loadable zone.
func (s Schedule) Validate() error {
	if _, err := ParseTimeOfDay(s.LightStart); err != nil {
		return fmt.Errorf("light start: %w", err)
	}
	if _, err := ParseTimeOfDay(s.DarkStart); err != nil {
		return fmt.Errorf("dark start: %w", err)
	}
	if tz := s.Timezone; tz != "" && !strings.EqualFold(tz, "local") {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("timezone %q: %w", tz, err)
		}
	}
	return nil
}

// Location returns the zone the schedule is evaluated in. Unknown zones fall
// back to the system zone.
func (s Schedule) Location() *time.Location {
	tz := s.Timezone
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Local
	}
	return loc
}

// ThemeAt returns the scheduled theme at time t. Intervals are half-open: at
// exactly LightStart the theme is light, at exactly DarkStart it is dark.
func (s Schedule) ThemeAt(t time.Time) string {
	light := timeOfDayOrZero(s.LightStart)
	dark := timeOfDayOrZero(s.DarkStart)
	now := sinceMidnight(t.In(s.Location()))

	if light < dark {
		// Light window inside a single day.
		if now >= dark || now < light {
			return ThemeDark
		}
		return ThemeLight
	}
	// Dark window inside a single day (or degenerate light==dark, which
	// collapses to an always-light schedule).
	if now >= dark && now < light {
		return ThemeDark
	}
	return ThemeLight
}

// NextChange returns the duration from now until the next schedule boundary:
// the nearest of today's and tomorrow's light/dark start times that is still
// in the future.
func (s Schedule) NextChange(now time.Time) time.Duration {
	loc := s.Location()
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	var next time.Duration
	for _, offset := range []time.Duration{
		timeOfDayOrZero(s.LightStart),
		timeOfDayOrZero(s.DarkStart),
	} {
		for dayStart := midnight; dayStart.Before(midnight.Add(2 * day)); dayStart = dayStart.Add(day) {
			until := dayStart.Add(offset).Sub(local)
			if until <= 0 {
				continue
			}
			if next == 0 || until < next {
				next = until
			}
		}
	}
	return next
}

func sinceMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
