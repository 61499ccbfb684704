package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar for a 0-100 percentage.
type ProgressBar struct {
	Label   string
	Percent int
	Suffix  string // rendered after the bar instead of the percentage
	Color   color.Color
	Width   int
}

// NewProgressBar creates a new progress bar in the secondary color.
func NewProgressBar(label string, percent int, width int) ProgressBar {
	return ProgressBar{
		Label:   label,
		Percent: percent,
		Color:   theme.Secondary,
		Width:   width,
	}
}

// WithColor returns a copy of the bar using c for the filled part.
func (p ProgressBar) WithColor(c color.Color) ProgressBar {
	p.Color = c
	return p
}

// WithSuffix returns a copy of the bar showing s after the bar.
func (p ProgressBar) WithSuffix(s string) ProgressBar {
	p.Suffix = s
	return p
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	suffix := p.Suffix
	if suffix == "" {
		suffix = fmt.Sprintf("%d%%", p.clamped())
	}
	suffix = "  " + suffix

	barWidth := p.Width - lipgloss.Width(result) - lipgloss.Width(suffix)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := barWidth * p.clamped() / 100
	empty := barWidth - filled

	fill := p.Color
	if fill == nil {
		fill = theme.Secondary
	}
	result += lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled))
	result += theme.ProgressEmpty.Render(strings.Repeat(" ", empty))
	result += lipgloss.NewStyle().Foreground(theme.TextDim).Render(suffix)
	return result
}

func (p ProgressBar) clamped() int {
	return max(0, min(100, p.Percent))
}
