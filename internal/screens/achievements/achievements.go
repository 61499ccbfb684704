// Package achievements is the achievement wall: every catalog entry by
// type, with unlock status and progress for locked ones.
package achievements

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	ach "github.com/abhisek/studyhall/internal/achievements"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

type loadedMsg struct {
	Items    []ach.Achievement
	Progress map[int]ach.Progress
	Stats    ach.Stats
	Err      error
}

// tabs lists "all" first, then each type.
var tabs = append([]ach.Type{""}, ach.AllTypes()...)

// AchievementsScreen lists achievements filtered by type.
type AchievementsScreen struct {
	svc          screen.Services
	items        []ach.Achievement
	progress     map[int]ach.Progress
	stats        ach.Stats
	tab          int
	scrollOffset int
	loaded       bool
	errMsg       string
}

var _ screen.Screen = (*AchievementsScreen)(nil)
var _ screen.KeyHintProvider = (*AchievementsScreen)(nil)
var _ screen.Refresher = (*AchievementsScreen)(nil)

// New creates a new AchievementsScreen.
func New(svc screen.Services) *AchievementsScreen {
	return &AchievementsScreen{svc: svc}
}

func (s *AchievementsScreen) Init() tea.Cmd {
	return s.Refresh()
}

// Refresh reloads the catalog and progress.
func (s *AchievementsScreen) Refresh() tea.Cmd {
	engine := s.svc.Engine
	return func() tea.Msg {
		if engine == nil {
			return loadedMsg{}
		}
		ctx := context.Background()
		items, err := engine.List(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		prog := make(map[int]ach.Progress, len(items))
		for _, a := range items {
			if a.Unlocked {
				continue
			}
			p, err := engine.AchievementProgress(ctx, a.ID)
			if err != nil {
				return loadedMsg{Err: err}
			}
			prog[a.ID] = p
		}
		stats, err := engine.Stats(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		return loadedMsg{Items: items, Progress: prog, Stats: stats}
	}
}

func (s *AchievementsScreen) Title() string {
	return "Achievements"
}

func (s *AchievementsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Switch type"},
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *AchievementsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.items, s.progress, s.stats = msg.Items, msg.Progress, msg.Stats
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "tab", "right", "l":
			s.tab = (s.tab + 1) % len(tabs)
			s.scrollOffset = 0
		case "shift+tab", "left", "h":
			s.tab = (s.tab - 1 + len(tabs)) % len(tabs)
			s.scrollOffset = 0
		case "up", "k":
			if s.scrollOffset > 0 {
				s.scrollOffset--
			}
		case "down", "j":
			if s.scrollOffset < len(s.filtered())-1 {
				s.scrollOffset++
			}
		}
	}
	return s, nil
}

// filtered returns the achievements of the current tab, unlocked first.
func (s *AchievementsScreen) filtered() []ach.Achievement {
	typ := tabs[s.tab]
	var unlocked, locked []ach.Achievement
	for _, a := range s.items {
		if typ != "" && a.Type != typ {
			continue
		}
		if a.Unlocked {
			unlocked = append(unlocked, a)
		} else {
			locked = append(locked, a)
		}
	}
	return append(unlocked, locked...)
}

func (s *AchievementsScreen) countByType(typ ach.Type) (unlocked, total int) {
	for _, a := range s.items {
		if typ != "" && a.Type != typ {
			continue
		}
		total++
		if a.Unlocked {
			unlocked++
		}
	}
	return unlocked, total
}

func tabLabel(typ ach.Type) string {
	if typ == "" {
		return "All"
	}
	return typ.DisplayName()
}

func (s *AchievementsScreen) View(width, height int) string {
	center := func(str string) string { return layout.Centered(str, width) }
	if s.errMsg != "" {
		return "\n\n" + center(theme.Warning.Render("Error: "+s.errMsg))
	}
	if !s.loaded {
		return "\n\n" + center(theme.Hint.Render("Loading achievements..."))
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center(theme.Body.Render(fmt.Sprintf("%d of %d unlocked (%d%%)",
		s.stats.Unlocked, s.stats.Total, s.stats.CompletionRate))))
	b.WriteString("\n")

	var rarities []string
	for _, rs := range s.stats.ByRarity {
		rarities = append(rarities, lipgloss.NewStyle().Foreground(theme.Hex(rs.Rarity.Color())).
			Render(fmt.Sprintf("%s %d/%d", rs.Rarity.Icon(), rs.Unlocked, rs.Total)))
	}
	b.WriteString(center(strings.Join(rarities, "   ")))
	b.WriteString("\n\n")

	var labels []string
	for i, typ := range tabs {
		u, t := s.countByType(typ)
		label := fmt.Sprintf("%s (%d/%d)", tabLabel(typ), u, t)
		if i == s.tab {
			labels = append(labels, theme.Selected.Render(label))
		} else {
			labels = append(labels, theme.Locked.Render(label))
		}
	}
	b.WriteString(center(strings.Join(labels, "    ")))
	b.WriteString("\n")
	b.WriteString(layout.Divider(width))
	b.WriteString("\n\n")

	filtered := s.filtered()
	if len(filtered) == 0 {
		b.WriteString(center(theme.Hint.Render("No achievements of this type")))
		return b.String()
	}

	// Each entry takes two lines.
	maxVisible := max(2, (height-10)/2)
	start := s.scrollOffset
	end := min(len(filtered), start+maxVisible)
	rowWidth := min(width-8, 70)

	for _, a := range filtered[start:end] {
		b.WriteString(center(s.renderEntry(a, rowWidth)))
		b.WriteString("\n")
	}
	if end < len(filtered) {
		b.WriteString("\n")
		b.WriteString(center(theme.Hint.Render(fmt.Sprintf("... %d more", len(filtered)-end))))
	}
	return b.String()
}

func (s *AchievementsScreen) renderEntry(a ach.Achievement, w int) string {
	name := fmt.Sprintf("%s %s %s", a.Rarity.Icon(), a.Icon, a.Name)
	if !a.Unlocked {
		bar := components.NewProgressBar("", s.progress[a.ID].Progress, w/2).
			WithColor(theme.Hex(a.Rarity.Color())).
			WithSuffix(fmt.Sprintf("%d/%d", s.progress[a.ID].Current, s.progress[a.ID].Target))
		head := lipgloss.NewStyle().Width(w - w/2).Render(theme.Locked.Render(name))
		return lipgloss.JoinHorizontal(lipgloss.Top, head, bar.View()) + "\n" +
			lipgloss.NewStyle().Width(w).Render(theme.Hint.Render("   "+a.Description))
	}

	status := "unlocked"
	if a.UnlockedAt != nil {
		status = a.UnlockedAt.Format("Jan 02, 2006")
	}
	if a.Repeatable && a.Count > 1 {
		status = fmt.Sprintf("×%d  last %s", a.Count, lastAchieved(a))
	}
	head := lipgloss.NewStyle().Width(w - w/2).Render(
		lipgloss.NewStyle().Foreground(theme.Hex(a.Rarity.Color())).Bold(true).Render(name))
	tail := lipgloss.NewStyle().Width(w / 2).Align(lipgloss.Right).Render(theme.Unlocked.Render("✓ " + status))
	return lipgloss.JoinHorizontal(lipgloss.Top, head, tail) + "\n" +
		lipgloss.NewStyle().Width(w).Render(theme.Body.Render("   "+a.Description))
}

func lastAchieved(a ach.Achievement) string {
	if a.LastAchievedAt == nil {
		return "-"
	}
	return a.LastAchievedAt.Format("Jan 02")
}
