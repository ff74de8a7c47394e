package styles

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bnema/shade/internal/domain/entity"
)

// RenderStatus renders a full state snapshot for the status command.
func RenderStatus(state entity.State, nextChange time.Duration) string {
	var b strings.Builder

	b.WriteString(Title.Render("shade") + "\n\n")
	b.WriteString(Row("Resolved", Accent.Render(state.ResolvedTheme)) + "\n")
	b.WriteString(Row("Selected", state.SelectedTheme) + "\n")
	b.WriteString(Row("System", state.SystemTheme) + "\n")

	if state.ForcedTheme != "" {
		b.WriteString(Row("Forced", Badge.Render(state.ForcedTheme)) + "\n")
	}

	b.WriteString(Row("Themes", strings.Join(state.AvailableThemes, ", ")) + "\n")

	if len(state.CustomThemes) > 0 {
		names := make([]string, 0, len(state.CustomThemes))
		for name := range state.CustomThemes {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString(Row("Custom", strings.Join(names, ", ")) + "\n")
	}

	if state.SchedulingEnabled {
		schedule := fmt.Sprintf("light %s / dark %s",
			state.Schedule.LightStart, state.Schedule.DarkStart)
		if tz := state.Schedule.Timezone; tz != "" && !strings.EqualFold(tz, "local") {
			schedule += " (" + tz + ")"
		}
		b.WriteString(Row("Schedule", schedule) + "\n")
		if nextChange > 0 {
			b.WriteString(Row("Next change", "in "+nextChange.Round(time.Minute).String()) + "\n")
		}
	} else {
		b.WriteString(Row("Schedule", Muted.Render("disabled")) + "\n")
	}

	if state.Transition.Type != "" {
		b.WriteString(Row("Transition", fmt.Sprintf("%s (%dms)",
			state.Transition.Type, state.Transition.DurationMs)) + "\n")
	}

	if !state.LastChanged.IsZero() {
		b.WriteString(Row("Last changed", state.LastChanged.Format(time.RFC3339)) + "\n")
	}

	return b.String()
}

// RenderThemeChange renders a one-line confirmation after a mutation.
func RenderThemeChange(state entity.State) string {
	line := Success.Render("✓") + " resolved theme: " + Accent.Render(state.ResolvedTheme)
	if state.SelectedTheme != state.ResolvedTheme {
		line += Muted.Render(" (selected: " + state.SelectedTheme + ")")
	}
	return line
}
