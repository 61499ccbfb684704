// Package record is the screen for adding finished questions to a subject.
package record

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/progress"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/screens/summary"
	"github.com/abhisek/studyhall/internal/store"
	"github.com/abhisek/studyhall/internal/study"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

// MaxCount caps a single submission typed into the screen.
const MaxCount = 9999

type phase int

const (
	phaseSubject phase = iota
	phaseCount
	phaseSaving
)

type subjectsLoadedMsg struct {
	Subjects []store.Subject
	Today    map[int]progress.TodayProgress
	Err      error
}

type savedMsg struct {
	Result *study.SubmitResult
	Err    error
}

// RecordScreen asks for a subject and a question count, then submits.
type RecordScreen struct {
	svc       screen.Services
	phase     phase
	subjects  []store.Subject
	today     map[int]progress.TodayProgress
	preselect int
	picker    components.Picker
	input     components.TextInput
	chosen    store.Subject
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*RecordScreen)(nil)
var _ screen.KeyHintProvider = (*RecordScreen)(nil)

// New creates a RecordScreen that starts with subject selection.
func New(svc screen.Services) *RecordScreen {
	return &RecordScreen{
		svc:   svc,
		input: components.NewTextInput("How many questions?", true, 4),
	}
}

// NewForSubject creates a RecordScreen that skips straight to the count
// for subjectID when it still exists.
func NewForSubject(svc screen.Services, subjectID int) *RecordScreen {
	s := New(svc)
	s.preselect = subjectID
	return s
}

func (s *RecordScreen) Init() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		ctx := context.Background()
		subs, err := svc.Study.Subjects(ctx)
		if err != nil {
			return subjectsLoadedMsg{Err: err}
		}
		agg := svc.Study.Aggregator()
		today := make(map[int]progress.TodayProgress, len(subs))
		for _, sub := range subs {
			tp, err := agg.SubjectTodayProgress(ctx, sub.ID)
			if err != nil {
				return subjectsLoadedMsg{Err: err}
			}
			today[sub.ID] = tp
		}
		return subjectsLoadedMsg{Subjects: subs, Today: today}
	}
}

func (s *RecordScreen) Title() string {
	return "Record"
}

func (s *RecordScreen) KeyHints() []layout.KeyHint {
	if s.phase == phaseCount {
		return []layout.KeyHint{
			{Key: "0-9", Description: "Count"},
			{Key: "Enter", Description: "Save"},
			{Key: "Tab", Description: "Change subject"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "1-9", Description: "Quick pick"},
		{Key: "Enter", Description: "Next"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *RecordScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case subjectsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.subjects, s.today = msg.Subjects, msg.Today
		s.picker = components.NewPicker("Which subject did you study?", s.options(), -1)
		for _, sub := range s.subjects {
			if sub.ID == s.preselect {
				return s, s.choose(sub)
			}
		}
		return s, nil

	case savedMsg:
		if msg.Err != nil {
			s.phase = phaseCount
			s.input.SetError(describe(msg.Err))
			return s, nil
		}
		svc, subjectID := s.svc, s.chosen.ID
		next := summary.New(svc, msg.Result, func() screen.Screen { return NewForSubject(svc, subjectID) })
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}

	switch s.phase {
	case phaseSubject:
		if !s.loaded || len(s.subjects) == 0 {
			return s, nil
		}
		var cmd tea.Cmd
		s.picker, cmd = s.picker.Update(msg)
		if s.picker.Done() {
			sub := s.subjects[s.picker.Chosen]
			s.picker.Clear()
			return s, tea.Batch(cmd, s.choose(sub))
		}
		return s, cmd

	case phaseCount:
		if kmsg, ok := msg.(tea.KeyMsg); ok {
			switch kmsg.String() {
			case "tab", "shift+tab":
				s.phase = phaseSubject
				return s, nil
			case "enter":
				return s, s.submit()
			}
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *RecordScreen) choose(sub store.Subject) tea.Cmd {
	s.chosen = sub
	s.phase = phaseCount
	s.input.Reset()
	return s.input.Init()
}

func (s *RecordScreen) submit() tea.Cmd {
	n, err := s.input.NumericValue()
	switch {
	case err != nil || n <= 0:
		s.input.SetError("Enter a number greater than zero.")
		return nil
	case n > MaxCount:
		s.input.SetError(fmt.Sprintf("That is a lot! The limit is %d per entry.", MaxCount))
		return nil
	}

	s.phase = phaseSaving
	svc, subjectID := s.svc, s.chosen.ID
	return func() tea.Msg {
		res, err := svc.Study.AddRecord(context.Background(), subjectID, n)
		return savedMsg{Result: res, Err: err}
	}
}

func describe(err error) string {
	switch {
	case errors.Is(err, study.ErrInvalidCount):
		return "Enter a number greater than zero."
	case errors.Is(err, store.ErrNotFound):
		return "That subject no longer exists."
	default:
		return "Could not save: " + err.Error()
	}
}

func (s *RecordScreen) options() []components.PickerOption {
	opts := make([]components.PickerOption, len(s.subjects))
	for i, sub := range s.subjects {
		tp := s.today[sub.ID]
		opts[i] = components.PickerOption{
			Label:  fmt.Sprintf("%s %s", sub.Icon, sub.Name),
			Detail: fmt.Sprintf("today %d/%d", tp.Current, tp.Target),
		}
	}
	return opts
}

func (s *RecordScreen) View(width, height int) string {
	center := func(str string) string { return layout.Centered(str, width) }
	var b strings.Builder
	b.WriteString("\n")

	switch {
	case s.errMsg != "":
		b.WriteString(center(theme.Warning.Render("Error: " + s.errMsg)))
		return b.String()
	case !s.loaded:
		b.WriteString(center(theme.Hint.Render("Loading subjects...")))
		return b.String()
	case len(s.subjects) == 0:
		b.WriteString(center(theme.Hint.Render("No subjects yet. Add one with: studyhall subject add <name>")))
		return b.String()
	}

	switch s.phase {
	case phaseSubject:
		b.WriteString(center(s.picker.View()))
	case phaseCount, phaseSaving:
		tp := s.today[s.chosen.ID]
		heading := lipgloss.NewStyle().Foreground(theme.Hex(s.chosen.Color)).Bold(true).
			Render(fmt.Sprintf("%s %s", s.chosen.Icon, s.chosen.Name))
		b.WriteString(center(heading) + "\n\n")
		b.WriteString(center(components.NewProgressBar("Today", tp.Percentage, min(width-8, 50)).
			WithColor(theme.Hex(s.chosen.Color)).
			WithSuffix(fmt.Sprintf("%d/%d", tp.Current, tp.Target)).
			View()) + "\n\n")
		if s.phase == phaseSaving {
			b.WriteString(center(theme.Hint.Render("Saving...")))
			break
		}
		b.WriteString(center(theme.Body.Render("Questions finished:")) + "\n\n")
		b.WriteString(center(s.input.View()))
	}
	return b.String()
}
