// Package stats shows trends, subject distribution and the activity
// heatmap.
package stats

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/progress"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

// heatmapWeeks is how many week columns the heatmap shows.
const heatmapWeeks = 26

type view int

const (
	viewWeek view = iota
	viewMonth
	viewSubjects
	viewHeatmap
)

var viewNames = []string{"Week", "Month", "Subjects", "Heatmap"}

// Data is everything the screen displays.
type Data struct {
	Overview progress.Overview
	Week     progress.Trend
	Month    progress.Trend
	Subjects []progress.SubjectShare
	Heatmap  []progress.HeatCell
}

type loadedMsg struct {
	Data Data
	Err  error
}

// StatsScreen shows study statistics in tabs.
type StatsScreen struct {
	svc    screen.Services
	data   Data
	tab    view
	loaded bool
	errMsg string
}

var _ screen.Screen = (*StatsScreen)(nil)
var _ screen.KeyHintProvider = (*StatsScreen)(nil)
var _ screen.Refresher = (*StatsScreen)(nil)

// New creates a new StatsScreen.
func New(svc screen.Services) *StatsScreen {
	return &StatsScreen{svc: svc}
}

// Load reads every statistic the screen shows.
func Load(ctx context.Context, agg *progress.Aggregator) (Data, error) {
	var d Data
	var err error
	if d.Overview, err = agg.Overview(ctx); err != nil {
		return d, err
	}
	if d.Week, err = agg.WeeklyTrend(ctx); err != nil {
		return d, err
	}
	if d.Month, err = agg.MonthlyTrend(ctx); err != nil {
		return d, err
	}
	if d.Subjects, err = agg.SubjectDistribution(ctx); err != nil {
		return d, err
	}
	if d.Heatmap, err = agg.Heatmap(ctx, heatmapWeeks*7); err != nil {
		return d, err
	}
	return d, nil
}

func (s *StatsScreen) Init() tea.Cmd {
	return s.Refresh()
}

// Refresh reloads the statistics.
func (s *StatsScreen) Refresh() tea.Cmd {
	agg := s.svc.Study.Aggregator()
	return func() tea.Msg {
		d, err := Load(context.Background(), agg)
		return loadedMsg{Data: d, Err: err}
	}
}

func (s *StatsScreen) Title() string {
	return "Statistics"
}

func (s *StatsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab/←→", Description: "Switch view"},
		{Key: "1-4", Description: "Jump"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *StatsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.data = msg.Data
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "tab", "right", "l":
			s.tab = (s.tab + 1) % view(len(viewNames))
		case "shift+tab", "left", "h":
			s.tab = (s.tab + view(len(viewNames)) - 1) % view(len(viewNames))
		case "1", "2", "3", "4":
			s.tab = view(key[0] - '1')
		}
	}
	return s, nil
}

func (s *StatsScreen) View(width, height int) string {
	center := func(str string) string { return layout.Centered(str, width) }
	if s.errMsg != "" {
		return "\n\n" + center(theme.Warning.Render("Error: "+s.errMsg))
	}
	if !s.loaded {
		return "\n\n" + center(theme.Hint.Render("Loading statistics..."))
	}

	cw := min(width-8, 72)
	ov := s.data.Overview

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center(components.StatTiles([]components.Tile{
		{Label: "total", Value: fmt.Sprint(ov.Total), Color: theme.ArcadeCyan},
		{Label: "study time", Value: ov.StudyTime, Color: theme.Secondary},
		{Label: "days studied", Value: fmt.Sprint(ov.DaysStudied), Color: theme.Text},
		{Label: "best streak", Value: fmt.Sprint(ov.BestStreak), Color: theme.Accent},
	}, cw-2)))
	b.WriteString("\n\n")

	var tabs []string
	for i, name := range viewNames {
		if view(i) == s.tab {
			tabs = append(tabs, theme.Selected.Render(name))
		} else {
			tabs = append(tabs, theme.Locked.Render(name))
		}
	}
	b.WriteString(center(strings.Join(tabs, "     ")))
	b.WriteString("\n")
	b.WriteString(layout.Divider(width))
	b.WriteString("\n\n")

	var body string
	switch s.tab {
	case viewWeek:
		body = RenderTrend(s.data.Week, weekLabel, cw)
	case viewMonth:
		body = RenderTrend(s.data.Month, monthLabel, cw)
	case viewSubjects:
		body = RenderDistribution(s.data.Subjects, cw)
	case viewHeatmap:
		body = RenderHeatmap(s.data.Heatmap)
	}
	b.WriteString(center(body))
	return b.String()
}

func weekLabel(d progress.DayCount, i int) string {
	return []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}[i%7]
}

func monthLabel(d progress.DayCount, _ int) string {
	return d.Date[len(d.Date)-2:]
}

// RenderTrend draws one horizontal bar per day, scaled to the busiest day.
func RenderTrend(tr progress.Trend, label func(progress.DayCount, int) string, cw int) string {
	peak := 0
	for _, d := range tr.Days {
		peak = max(peak, d.Count)
	}
	barWidth := max(4, cw-16)

	var rows []string
	for i, d := range tr.Days {
		n := 0
		if peak > 0 {
			n = d.Count * barWidth / peak
		}
		style := lipgloss.NewStyle().Foreground(theme.Secondary)
		lbl := lipgloss.NewStyle().Foreground(theme.TextDim)
		if d.IsToday {
			style = style.Foreground(theme.Accent)
			lbl = lbl.Foreground(theme.Accent).Bold(true)
		}
		rows = append(rows, fmt.Sprintf("%s %s %s",
			lbl.Render(fmt.Sprintf("%3s", label(d, i))),
			style.Render(strings.Repeat("█", n)+strings.Repeat(" ", barWidth-n)),
			theme.Body.Render(fmt.Sprintf("%5d", d.Count))))
	}
	rows = append(rows, "", theme.Hint.Render(fmt.Sprintf("total %d   avg %.1f / day", tr.Total, tr.AvgDaily)))
	return strings.Join(rows, "\n")
}

// RenderDistribution draws each subject's share of the grand total.
func RenderDistribution(shares []progress.SubjectShare, cw int) string {
	if len(shares) == 0 {
		return theme.Hint.Render("No subjects yet")
	}
	var rows []string
	for _, sh := range shares {
		label := fmt.Sprintf("%s %-12s", sh.Icon, sh.Name)
		rows = append(rows, components.NewProgressBar(label, sh.Percentage, cw).
			WithColor(theme.Hex(sh.Color)).
			WithSuffix(fmt.Sprintf("%5d  %3d%%", sh.Count, sh.Percentage)).
			View())
	}
	return strings.Join(rows, "\n")
}

// RenderHeatmap draws cells as weekday rows and week columns, oldest week
// on the left.
func RenderHeatmap(cells []progress.HeatCell) string {
	if len(cells) == 0 {
		return theme.Hint.Render("No activity yet")
	}
	// Monday-first row index of the first cell.
	offset := (int(cells[0].Weekday) + 6) % 7
	weeks := (offset + len(cells) + 6) / 7

	grid := make([][]string, 7)
	for r := range grid {
		grid[r] = make([]string, weeks)
		for c := range grid[r] {
			grid[r][c] = "  "
		}
	}
	for i, cell := range cells {
		pos := offset + i
		grid[pos%7][pos/7] = heatGlyph(cell)
	}

	names := []string{"Mon", "", "Wed", "", "Fri", "", "Sun"}
	var rows []string
	for r, row := range grid {
		rows = append(rows, theme.Locked.Render(fmt.Sprintf("%-4s", names[r]))+strings.Join(row, ""))
	}
	legend := heatGlyph(progress.HeatCell{Level: progress.HeatNone}) + " none  " +
		heatGlyph(progress.HeatCell{Level: progress.HeatStudied}) + " studied  " +
		heatGlyph(progress.HeatCell{Level: progress.HeatGoalDone}) + " goal met"
	return strings.Join(rows, "\n") + "\n\n" + theme.Hint.Render(legend)
}

func heatGlyph(c progress.HeatCell) string {
	switch c.Level {
	case progress.HeatGoalDone:
		return lipgloss.NewStyle().Foreground(theme.HeatGoal).Render("■ ")
	case progress.HeatStudied:
		return lipgloss.NewStyle().Foreground(theme.HeatStudied).Render("■ ")
	default:
		return lipgloss.NewStyle().Foreground(theme.HeatNone).Render("· ")
	}
}
