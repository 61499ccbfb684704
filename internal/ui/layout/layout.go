// Package layout draws the frame around every screen: the header with
// today's progress, the key hint footer and the size checks.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	HeaderHeight = 3
	FooterHeight = 3

	CompactWidthThreshold  = 100
	CompactHeightThreshold = 30
)

// KeyHint is one key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsCompactWidth(width int) bool   { return width < CompactWidthThreshold }
func IsCompactHeight(height int) bool { return height < CompactHeightThreshold }

// IsTooSmall reports whether the terminal is below MinWidth x MinHeight.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// ContentHeight is what remains of totalHeight between header and footer.
func ContentHeight(totalHeight int) int {
	return max(0, totalHeight-HeaderHeight-FooterHeight)
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	text := fmt.Sprintf("Terminal too small!\n\nStudyhall needs at least %d x %d.\nNow: %d x %d",
		MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(text))
}

// HeaderStats is the live study status shown on the right of the header.
type HeaderStats struct {
	Streak      int
	TodayCount  int
	TodayTarget int
}

// GoalMet reports whether today's target is reached.
func (s HeaderStats) GoalMet() bool {
	return s.TodayTarget > 0 && s.TodayCount >= s.TodayTarget
}

// bar is the rounded strip used for the header and the footer.
func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

// RenderHeader renders the app name, the screen title centered, and
// today's count and streak on the right.
func RenderHeader(title string, stats HeaderStats, width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  Studyhall")
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(title)

	todayColor := theme.Accent
	if stats.GoalMet() {
		todayColor = theme.Success
	}
	status := lipgloss.NewStyle().Foreground(todayColor).Render(fmt.Sprintf("✎ %d/%d", stats.TodayCount, stats.TodayTarget)) +
		"   " +
		lipgloss.NewStyle().Foreground(theme.Accent).Render("🔥 "+dayLabel(stats.Streak))

	return bar(width).Render(spread(brand, center, status, max(0, width-4)))
}

// spread lays out three segments on one line with center in the middle.
// Every gap is at least one column.
func spread(left, center, right string, width int) string {
	lw, cw, rw := lipgloss.Width(left), lipgloss.Width(center), lipgloss.Width(right)
	leftGap := max(1, (width-cw)/2-lw)
	rightGap := max(1, width-lw-leftGap-cw-rw)
	return left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right
}

func dayLabel(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// RenderFooter renders the key hints.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = key.Render(h.Key) + " " + desc.Render(h.Description)
	}
	return bar(width).Render("  " + strings.Join(parts, "   "))
}

// RenderFrame stacks header, content and footer, sizing the content to
// fill the remaining height.
func RenderFrame(header, content, footer string, width, height int) string {
	h := max(0, height-lipgloss.Height(header)-lipgloss.Height(footer))
	body := lipgloss.NewStyle().Width(width).Height(h).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// Centered places s in the middle of a line of the given width.
func Centered(s string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}

// Divider renders a horizontal rule, at most 60 columns wide.
func Divider(width int) string {
	n := max(0, min(width-8, 60))
	return Centered(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", n)), width)
}

// Section renders a dim centered heading followed by a divider.
func Section(title string, width int) string {
	return Centered(lipgloss.NewStyle().Foreground(theme.TextDim).Render(title), width) + "\n" + Divider(width)
}
