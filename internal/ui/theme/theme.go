package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Color palette: calm study-desk tones with warm highlights
var (
	Primary   = lipgloss.Color("#4A7FFF") // Study Blue
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate

	// Highlight colors for the dashboard cabinet.
	ArcadeYellow = lipgloss.Color("#FACC15")
	ArcadeCyan   = lipgloss.Color("#22D3EE")
)

// Heatmap cell colors, from empty to goal reached.
var (
	HeatNone    = lipgloss.Color("#1E293B")
	HeatStudied = lipgloss.Color("#0E7490")
	HeatGoal    = lipgloss.Color("#22C55E")
)

// Hex parses a "#RRGGBB" color, falling back to Primary when s is empty.
func Hex(s string) color.Color {
	if s == "" {
		return Primary
	}
	return lipgloss.Color(s)
}

// Text styles.
var (
	Body = lipgloss.NewStyle().Foreground(Text)
	Hint = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
)

// Selection and unlock states.
var (
	Selected   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Unselected = lipgloss.NewStyle().Foreground(Text)
	Unlocked   = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Locked     = lipgloss.NewStyle().Foreground(TextDim)
	Warning    = lipgloss.NewStyle().Foreground(Error).Bold(true)
)

// ProgressEmpty is the unfilled part of a progress bar.
var ProgressEmpty = lipgloss.NewStyle().Background(Border)

// Buttons.
var (
	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(Text).
			Bold(true).
			Padding(0, 2)

	ButtonInactive = lipgloss.NewStyle().
			Background(BgCard).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)
)
