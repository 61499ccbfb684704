package home

import (
	"context"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/progress"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/store"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

const titleFull = ` ╔═╗╔╦╗╦ ╦╔╦╗╦ ╦╦ ╦╔═╗╦  ╦
 ╚═╗ ║ ║ ║ ║║╚╦╝╠═╣╠═╣║  ║
 ╚═╝ ╩ ╚═╝═╩╝ ╩ ╩ ╩╩ ╩╩═╝╩═╝`

const titleCompact = "S · T · U · D · Y · H · A · L · L"

// SubjectLine is one subject's progress towards its own daily target.
type SubjectLine struct {
	Subject store.Subject
	Today   progress.TodayProgress
}

// Dashboard is everything the home screen displays.
type Dashboard struct {
	Today         progress.TodayProgress
	Streak        int
	Total         int
	Level         progress.LevelInfo
	DaysSinceLast int
	Subjects      []SubjectLine
	Unlocked      int
	Achievements  int
}

// LoadDashboard reads the dashboard from the services.
func LoadDashboard(ctx context.Context, svc screen.Services) (Dashboard, error) {
	agg := svc.Study.Aggregator()
	ov, err := agg.Overview(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	d := Dashboard{
		Today:  ov.Today,
		Streak: ov.Streak,
		Total:  ov.Total,
		Level:  ov.Level,
	}
	if d.DaysSinceLast, err = agg.DaysSinceLastStudy(ctx); err != nil {
		return Dashboard{}, err
	}

	subs, err := svc.Study.Subjects(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	for _, s := range subs {
		tp, err := agg.SubjectTodayProgress(ctx, s.ID)
		if err != nil {
			return Dashboard{}, err
		}
		d.Subjects = append(d.Subjects, SubjectLine{Subject: s, Today: tp})
	}

	if svc.Engine != nil {
		st, err := svc.Engine.Stats(ctx)
		if err != nil {
			return Dashboard{}, err
		}
		d.Unlocked, d.Achievements = st.Unlocked, st.Total
	}
	return d, nil
}

func renderTitle(cw int, compact bool) string {
	art := titleFull
	if compact {
		art = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).Render(art))
}

func renderStats(d Dashboard, cw int) string {
	todayColor := theme.Accent
	if d.Today.Target > 0 && d.Today.Current >= d.Today.Target {
		todayColor = theme.Success
	}
	return components.StatTiles([]components.Tile{
		{Label: "today", Value: fmt.Sprintf("%d/%d", d.Today.Current, d.Today.Target), Color: todayColor},
		{Label: "streak", Value: fmt.Sprintf("🔥 %d", d.Streak), Color: theme.Accent},
		{Label: "total", Value: fmt.Sprint(d.Total), Color: theme.ArcadeCyan},
		{Label: "level", Value: fmt.Sprintf("Lv%d %s", d.Level.Level, d.Level.Title), Color: theme.ArcadeYellow},
	}, cw-2)
}

func renderLevel(l progress.LevelInfo, cw int) string {
	suffix := fmt.Sprintf("%d to go", l.Remaining)
	if l.MaxLevel {
		suffix = "max level"
	}
	return components.NewProgressBar("Next level", l.ProgressToNext, cw).
		WithColor(theme.ArcadeYellow).
		WithSuffix(suffix).
		View()
}

func renderSubjects(lines []SubjectLine, cw int) string {
	if len(lines) == 0 {
		return lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
			Render("No subjects yet. Add one with: studyhall subject add <name>")
	}
	rows := make([]string, 0, len(lines))
	for _, l := range lines {
		label := fmt.Sprintf("%s %-10s", l.Subject.Icon, truncate(l.Subject.Name, 10))
		rows = append(rows, components.NewProgressBar(label, l.Today.Percentage, cw-4).
			WithColor(theme.Hex(l.Subject.Color)).
			WithSuffix(fmt.Sprintf("%d/%d", l.Today.Current, l.Today.Target)).
			View())
	}
	return components.Card("TODAY BY SUBJECT", strings.Join(rows, "\n"), cw)
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 24

func renderMenu(labels []string, selected int, disabled map[int]bool, cw int, compact bool) string {
	var lines []string
	for i, label := range labels {
		if compact {
			style := lipgloss.NewStyle().Foreground(theme.Text)
			prefix := "   "
			switch {
			case disabled[i]:
				style = style.Foreground(theme.TextDim)
			case i == selected:
				style = style.Foreground(theme.BgDark).Background(theme.ArcadeYellow).Bold(true)
				prefix = " ▸ "
			}
			lines = append(lines, style.Render(prefix+label+" "))
			continue
		}
		lines = append(lines, components.CabinetButton(label, i == selected, disabled[i], buttonWidth))
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
