package components

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/ui/theme"
)

// ContentWidth returns the uniform inner width for boxes inside a cabinet
// frame, between 20 and 64 columns.
func ContentWidth(frameWidth int) int {
	// cabinet border (2) + inner padding (4)
	return max(20, min(64, frameWidth-6))
}

// CabinetFrame wraps content in a double-border frame centered in the
// given area.
func CabinetFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Card wraps content in a rounded box of width cw. A non-empty title is
// rendered as the first line.
func Card(title, content string, cw int) string {
	if title != "" {
		content = lipgloss.NewStyle().Foreground(theme.TextDim).Bold(true).Render(title) + "\n" + content
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw).
		Padding(0, 1).
		Render(content)
}

// Tile is one value shown in a StatTiles row.
type Tile struct {
	Label string
	Value string
	Color color.Color
}

// StatTiles renders tiles side by side, sharing cw evenly.
func StatTiles(tiles []Tile, cw int) string {
	if len(tiles) == 0 {
		return ""
	}
	w := cw / len(tiles)
	parts := make([]string, len(tiles))
	for i, t := range tiles {
		fg := t.Color
		if fg == nil {
			fg = theme.Text
		}
		value := lipgloss.NewStyle().Foreground(fg).Bold(true).Render(t.Value)
		label := lipgloss.NewStyle().Foreground(theme.TextDim).Render(strings.ToUpper(t.Label))
		parts[i] = lipgloss.NewStyle().
			Width(w).
			Align(lipgloss.Center).
			Render(value + "\n" + label)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
}

// CabinetButton renders a fixed-width menu button.
func CabinetButton(label string, selected, disabled bool, width int) string {
	style := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	switch {
	case disabled:
		return style.Foreground(theme.TextDim).BorderForeground(theme.Border).Render(label)
	case selected:
		return style.
			Bold(true).
			Foreground(theme.BgDark).
			Background(theme.ArcadeYellow).
			BorderForeground(theme.ArcadeYellow).
			Render("▸ " + label)
	default:
		return style.Foreground(theme.Text).BorderForeground(theme.Border).Render(label)
	}
}
