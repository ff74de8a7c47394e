// Package styles provides reusable lipgloss styles for CLI output.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("13"))

	Key = lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Width(18)

	Value = lipgloss.NewStyle().
		Foreground(lipgloss.Color("15"))

	Accent = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))

	Muted = lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	Success = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	Badge = lipgloss.NewStyle().
		Padding(0, 1).
		Background(lipgloss.Color("5")).
		Foreground(lipgloss.Color("15"))
)

// Row renders a key/value line for status-style output.
func Row(key, value string) string {
	return Key.Render(key) + Value.Render(value)
}
