// Package summary shows what a submission changed: progress, unlocked
// achievements and, when one fires, an encouragement.
package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/achievements"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/store"
	"github.com/abhisek/studyhall/internal/study"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

type encouragementState int

const (
	encNone encouragementState = iota
	encWaiting
	encDone
	encFailed
)

// SummaryScreen displays the result of one submission.
type SummaryScreen struct {
	svc     screen.Services
	result  *study.SubmitResult
	buttons components.ButtonRow

	encState encouragementState
	enc      store.Encouragement
	encNote  string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen. again builds the screen for recording more.
func New(svc screen.Services, result *study.SubmitResult, again func() screen.Screen) *SummaryScreen {
	replace := func() tea.Cmd {
		next := again()
		return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	}
	home := func() tea.Cmd {
		return func() tea.Msg { return router.PopToRootMsg{} }
	}
	return &SummaryScreen{
		svc:    svc,
		result: result,
		buttons: components.NewButtonRow(
			components.NewButton("Record more", false, replace),
			components.NewButton("Home", false, home),
		),
	}
}

func (s *SummaryScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{screen.Changed()}
	if s.result == nil {
		return tea.Batch(cmds...)
	}
	if req, ok := s.result.EncouragementRequest(); ok {
		if cmd := s.svc.RequestEncouragement(req); cmd != nil {
			s.encState = encWaiting
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (s *SummaryScreen) Title() string {
	return "Saved"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "Choose"},
		{Key: "Enter", Description: "Confirm"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.EncouragementMsg:
		if msg.Result.Err != nil {
			s.encNote = screen.EncouragementNote(msg.Result.Err)
			s.encState = encFailed
			if s.encNote == "" {
				s.encState = encNone
			}
			return s, nil
		}
		s.enc = msg.Result.Encouragement
		s.encState = encDone
		return s, nil

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}

	var cmd tea.Cmd
	s.buttons, cmd = s.buttons.Update(msg)
	return s, cmd
}

func (s *SummaryScreen) View(width, height int) string {
	res := s.result
	if res == nil {
		return ""
	}
	center := func(str string) string { return layout.Centered(str, width) }
	barWidth := min(width-8, 56)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).
		Render(fmt.Sprintf("+%d questions of %s %s", res.Count, res.Subject.Icon, res.Subject.Name))))
	b.WriteString("\n\n")

	b.WriteString(center(components.NewProgressBar("Today  ", res.Today.Percentage, barWidth).
		WithSuffix(fmt.Sprintf("%d/%d", res.Today.Current, res.Today.Target)).View()))
	b.WriteString("\n")
	b.WriteString(center(components.NewProgressBar("Subject", res.SubjectToday.Percentage, barWidth).
		WithColor(theme.Hex(res.Subject.Color)).
		WithSuffix(fmt.Sprintf("%d/%d", res.SubjectToday.Current, res.SubjectToday.Target)).View()))
	b.WriteString("\n\n")

	b.WriteString(center(theme.Body.Render(fmt.Sprintf("🔥 %d day streak     Lv%d %s     %d total",
		res.Streak, res.Level.Level, res.Level.Title, res.Level.Total))))
	b.WriteString("\n")

	if len(res.Unlocked) > 0 {
		b.WriteString("\n")
		b.WriteString(layout.Section("Achievements unlocked", width))
		b.WriteString("\n")
		for _, u := range res.Unlocked {
			b.WriteString(center(renderUnlock(u)))
			b.WriteString("\n")
		}
	}

	if enc := s.renderEncouragement(min(width-8, 64)); enc != "" {
		b.WriteString("\n")
		b.WriteString(center(enc))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(center(s.buttons.View()))
	return b.String()
}

func renderUnlock(u achievements.Unlock) string {
	a := u.Achievement
	line := fmt.Sprintf("%s %s %s  %s", a.Rarity.Icon(), a.Icon, a.Name, a.Description)
	if a.Repeatable && u.Count > 1 {
		line += fmt.Sprintf("  ×%d", u.Count)
	}
	return lipgloss.NewStyle().Foreground(theme.Hex(a.Rarity.Color())).Bold(u.IsFirst).Render(line)
}

func (s *SummaryScreen) renderEncouragement(w int) string {
	switch s.encState {
	case encWaiting:
		return theme.Hint.Render("Asking your persona for a few words...")
	case encFailed:
		return lipgloss.NewStyle().Foreground(theme.TextDim).Width(w).Render(s.encNote)
	case encDone:
		body := lipgloss.NewStyle().Foreground(theme.Text).Width(w - 4).Render(s.enc.Content)
		return components.Card("💬 "+s.enc.PersonaName, body, w)
	}
	return ""
}
