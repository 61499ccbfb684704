// Package home is the dashboard and main menu of the TUI.
package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/screens/achievements"
	"github.com/abhisek/studyhall/internal/screens/history"
	"github.com/abhisek/studyhall/internal/screens/personas"
	"github.com/abhisek/studyhall/internal/screens/record"
	"github.com/abhisek/studyhall/internal/screens/stats"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

type dashboardLoadedMsg struct {
	Dashboard Dashboard
	Err       error
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	svc    screen.Services
	menu   components.Menu
	dash   Dashboard
	loaded bool
	errMsg string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Refresher = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(svc screen.Services) *HomeScreen {
	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			s := build()
			return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
		}
	}

	items := []components.MenuItem{
		{Label: "RECORD", Shortcut: "r", Action: push(func() screen.Screen { return record.New(svc) })},
		{Label: "ACHIEVEMENTS", Shortcut: "a", Action: push(func() screen.Screen { return achievements.New(svc) })},
		{Label: "STATISTICS", Shortcut: "s", Action: push(func() screen.Screen { return stats.New(svc) })},
		{Label: "ENCOURAGEMENT", Shortcut: "e", Action: push(func() screen.Screen { return history.New(svc) }), Disabled: svc.Encourage == nil},
		{Label: "PERSONAS", Shortcut: "p", Action: push(func() screen.Screen { return personas.New(svc) }), Disabled: svc.Encourage == nil},
		{Label: "QUIT", Shortcut: "q", Action: func() tea.Cmd { return tea.Quit }},
	}

	return &HomeScreen{
		svc:  svc,
		menu: components.NewMenu(items),
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.Refresh()
}

// Refresh reloads the dashboard.
func (h *HomeScreen) Refresh() tea.Cmd {
	svc := h.svc
	return func() tea.Msg {
		d, err := LoadDashboard(context.Background(), svc)
		return dashboardLoadedMsg{Dashboard: d, Err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(dashboardLoadedMsg); ok {
		h.loaded = true
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.dash = msg.Dashboard
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back header and footer.
	compact := layout.IsCompactHeight(height+layout.HeaderHeight+layout.FooterHeight) || layout.IsCompactWidth(width)

	var content string
	switch {
	case h.errMsg != "":
		content = lipgloss.NewStyle().Foreground(theme.Error).Render("Error: " + h.errMsg)
	case !h.loaded:
		content = lipgloss.NewStyle().Foreground(theme.TextDim).Render("Loading...")
	case compact:
		content = h.compactView(components.ContentWidth(width))
	default:
		content = h.fullView(width, height)
	}

	return components.CabinetFrame(content, width, height)
}

func (h *HomeScreen) compactView(cw int) string {
	sections := []string{
		renderTitle(cw, true),
		renderStats(h.dash, cw),
		renderMenu(h.menu.Labels(), h.menu.Selected, h.menu.DisabledSet(), cw, true),
	}
	return strings.Join(sections, "\n\n")
}

func (h *HomeScreen) fullView(width, height int) string {
	// Two columns: mascot and menu on the left, numbers on the right.
	rightWidth := components.ContentWidth(width - buttonWidth - 12)
	variant := PickMascot(h.dash)
	// Bordered buttons take three rows each.
	plainMenu := height < 3*len(h.menu.Items)+12

	left := strings.Join([]string{
		lipgloss.NewStyle().Width(buttonWidth + 4).Align(lipgloss.Center).Render(RenderMascot(variant)),
		lipgloss.NewStyle().Width(buttonWidth + 4).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render(mascotLine(variant, h.dash)),
		"",
		renderMenu(h.menu.Labels(), h.menu.Selected, h.menu.DisabledSet(), buttonWidth+4, plainMenu),
	}, "\n")

	right := strings.Join([]string{
		renderTitle(rightWidth, false),
		renderStats(h.dash, rightWidth),
		renderLevel(h.dash.Level, rightWidth),
		renderSubjects(h.dash.Subjects, rightWidth),
		lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(achievementLine(h.dash)),
	}, "\n\n")

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right)
}

func achievementLine(d Dashboard) string {
	if d.Achievements == 0 {
		return ""
	}
	return fmt.Sprintf("🏆 %d of %d achievements unlocked", d.Unlocked, d.Achievements)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "r/a/s/e/p", Description: "Jump"},
		{Key: "q", Description: "Quit"},
	}
}
