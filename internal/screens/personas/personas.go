// Package personas lets the user pick which persona writes encouragements.
package personas

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/store"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

type loadedMsg struct {
	Personas []store.Persona
	ActiveID int
	Err      error
}

type switchedMsg struct {
	Name string
	Err  error
}

// PersonasScreen lists personas and switches the active one.
type PersonasScreen struct {
	svc      screen.Services
	personas []store.Persona
	picker   components.Picker
	status   string
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*PersonasScreen)(nil)
var _ screen.KeyHintProvider = (*PersonasScreen)(nil)

// New creates a new PersonasScreen.
func New(svc screen.Services) *PersonasScreen {
	return &PersonasScreen{svc: svc}
}

func (s *PersonasScreen) Init() tea.Cmd {
	enc := s.svc.Encourage
	return func() tea.Msg {
		if enc == nil {
			return loadedMsg{}
		}
		ctx := context.Background()
		list, err := enc.Personas(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		active, err := enc.ActivePersona(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		return loadedMsg{Personas: list, ActiveID: active.ID}
	}
}

func (s *PersonasScreen) Title() string {
	return "Personas"
}

func (s *PersonasScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "Enter", Description: "Use"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *PersonasScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.personas = msg.Personas
		current := -1
		opts := make([]components.PickerOption, len(msg.Personas))
		for i, p := range msg.Personas {
			opts[i] = components.PickerOption{Label: p.Name, Detail: p.ToneStyle}
			if p.ID == msg.ActiveID {
				current = i
			}
		}
		s.picker = components.NewPicker("Who should cheer you on?", opts, current)
		return s, nil

	case switchedMsg:
		if msg.Err != nil {
			s.status = "Could not switch: " + msg.Err.Error()
			return s, nil
		}
		s.status = msg.Name + " will write your next encouragement."
		return s, nil

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}

	if !s.loaded || len(s.personas) == 0 {
		return s, nil
	}
	var cmd tea.Cmd
	s.picker, cmd = s.picker.Update(msg)
	if !s.picker.Done() {
		return s, cmd
	}

	chosen := s.personas[s.picker.Chosen]
	s.picker.Current = s.picker.Chosen
	s.picker.Clear()
	enc := s.svc.Encourage
	return s, func() tea.Msg {
		err := enc.SetActivePersona(context.Background(), chosen.ID)
		return switchedMsg{Name: chosen.Name, Err: err}
	}
}

func (s *PersonasScreen) View(width, height int) string {
	center := func(str string) string { return layout.Centered(str, width) }
	if s.errMsg != "" {
		return "\n\n" + center(theme.Warning.Render("Error: "+s.errMsg))
	}
	if !s.loaded {
		return "\n\n" + center(theme.Hint.Render("Loading personas..."))
	}
	if len(s.personas) == 0 {
		return "\n\n" + center(theme.Hint.Render("No personas. Add one with: studyhall persona add <name>"))
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center(s.picker.View()))
	b.WriteString("\n")

	if p := s.personas[s.picker.Selected]; p.Description != "" {
		b.WriteString(center(components.Card(p.Name,
			lipgloss.NewStyle().Foreground(theme.Hex(p.Color)).Width(min(width-12, 56)).Render(p.Description),
			min(width-8, 60))))
		b.WriteString("\n")
	}
	if s.status != "" {
		b.WriteString("\n")
		b.WriteString(center(theme.Unlocked.Render(s.status)))
	}
	return b.String()
}
