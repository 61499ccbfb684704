// Package history lists recent encouragements and asks for a new one on
// demand.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/encourage"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/store"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

type historyLoadedMsg struct {
	Items   []store.Encouragement
	Persona store.Persona
	Err     error
}

// HistoryScreen displays the stored encouragements, newest first.
type HistoryScreen struct {
	svc      screen.Services
	items    []store.Encouragement
	persona  store.Persona
	selected int
	expanded map[int]bool
	waiting  bool
	note     string
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)
var _ screen.Refresher = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(svc screen.Services) *HistoryScreen {
	return &HistoryScreen{
		svc:      svc,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.Refresh()
}

// Refresh reloads the history and the active persona.
func (s *HistoryScreen) Refresh() tea.Cmd {
	enc := s.svc.Encourage
	return func() tea.Msg {
		if enc == nil {
			return historyLoadedMsg{}
		}
		ctx := context.Background()
		items, err := enc.History(ctx)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		p, err := enc.ActivePersona(ctx)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		return historyLoadedMsg{Items: items, Persona: p}
	}
}

func (s *HistoryScreen) Title() string {
	return "Encouragement"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "n", Description: "Encourage me"},
		{Key: "Enter", Description: "Expand"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.items, s.persona = msg.Items, msg.Persona
		s.selected = min(s.selected, max(0, len(s.items)-1))
		return s, nil

	case screen.EncouragementMsg:
		s.waiting = false
		if msg.Result.Err != nil {
			s.note = screen.EncouragementNote(msg.Result.Err)
			if s.note == "" {
				s.note = "Your persona spoke recently. Try again in a few minutes."
			}
			return s, nil
		}
		s.note = ""
		s.selected = 0
		s.expanded = map[int]bool{0: true}
		return s, s.Refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.items)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		case "n":
			if s.waiting {
				return s, nil
			}
			cmd := s.svc.RequestEncouragement(encourage.Request{Scene: encourage.SceneManual})
			if cmd != nil {
				s.waiting = true
				s.note = ""
			}
			return s, cmd
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	center := func(str string) string { return layout.Centered(str, width) }
	if s.errMsg != "" {
		return "\n\n" + center(theme.Warning.Render("Error: "+s.errMsg))
	}
	if !s.loaded {
		return "\n\n" + center(theme.Hint.Render("Loading history..."))
	}

	cw := min(width-8, 66)
	var b strings.Builder
	b.WriteString("\n")
	if s.persona.Name != "" {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Hex(s.persona.Color)).Bold(true).
			Render("💬 "+s.persona.Name)))
		b.WriteString("\n")
		b.WriteString(center(theme.Hint.Render(s.persona.ToneStyle)))
		b.WriteString("\n\n")
	}

	switch {
	case s.waiting:
		b.WriteString(center(theme.Hint.Render("Asking for a few words...")) + "\n\n")
	case s.note != "":
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Accent).Width(cw).Render(s.note)) + "\n\n")
	}

	if len(s.items) == 0 {
		b.WriteString(center(theme.Hint.Render("No encouragements yet. Press n to ask for one.")))
		return b.String()
	}

	b.WriteString(layout.Section("Recent", width))
	b.WriteString("\n\n")
	for i, e := range s.items {
		when := e.CreatedAt.Format("Jan 02 15:04")
		scene := encourage.Scene(e.TriggerScene).DisplayName()
		head := fmt.Sprintf("%s  %s · %s", when, e.PersonaName, scene)

		style := theme.Unselected
		prefix := "  "
		if i == s.selected {
			style = theme.Selected
			prefix = "▸ "
		}
		b.WriteString(center(lipgloss.NewStyle().Width(cw).Render(style.Render(prefix + head))))
		b.WriteString("\n")

		content := e.Content
		if !s.expanded[i] {
			content = firstLine(content, cw-4)
		}
		b.WriteString(center(components.Card("", lipgloss.NewStyle().Width(cw-4).Render(content), cw)))
		b.WriteString("\n")
	}
	return b.String()
}

// firstLine returns the first line of s cut to n runes.
func firstLine(s string, n int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
