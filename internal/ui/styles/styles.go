// Package styles provides the lipgloss styles used for itg's status lines
// and prompts.
package styles

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette
var (
	// Primary is the main accent color (cyan/teal)
	Primary color.Color = lipgloss.Color("62")

	// Accent is the highlight color for selected items (pink)
	Accent color.Color = lipgloss.Color("212")

	// Success is used for checkmarks and created resources (green)
	Success color.Color = lipgloss.Color("82")

	// Warning is used for recoverable problems (orange)
	Warning color.Color = lipgloss.Color("214")

	// Error is used for error messages (red)
	Error color.Color = lipgloss.Color("196")

	// Muted is used for secondary text such as cache metadata (gray)
	Muted color.Color = lipgloss.Color("240")
)

var (
	Bold = lipgloss.NewStyle().Bold(true)

	PrimaryStyle = lipgloss.NewStyle().Foreground(Primary)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().Foreground(Success)

	WarningStyle = lipgloss.NewStyle().Foreground(Warning)

	ErrorStyle = lipgloss.NewStyle().Foreground(Error)

	MutedStyle = lipgloss.NewStyle().Foreground(Muted)
)

// Status line symbols.
const (
	CheckMark = "✓"
	CrossMark = "✗"
	Arrow     = "→"
)

// Done renders a completed step, e.g. "✓ Created issue #42".
func Done(msg string) string {
	return SuccessStyle.Render(CheckMark) + " " + msg
}

// Warn renders a warning line.
func Warn(msg string) string {
	return WarningStyle.Render("!") + " " + msg
}

// Failed renders an error line.
func Failed(msg string) string {
	return ErrorStyle.Render(CrossMark) + " " + msg
}
