package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/ui/theme"
)

// PickerOption is one selectable row of a Picker.
type PickerOption struct {
	Label  string
	Detail string
}

// Picker is a vertical single-choice selector. Current marks the option
// that is in effect, which may differ from the cursor.
type Picker struct {
	Prompt   string
	Options  []PickerOption
	Current  int
	Selected int
	Chosen   int
}

// NewPicker creates a picker with both the cursor and the current marker
// on current. A current outside the options leaves nothing marked.
func NewPicker(prompt string, options []PickerOption, current int) Picker {
	cursor := current
	if cursor < 0 || cursor >= len(options) {
		cursor = 0
	}
	return Picker{
		Prompt:   prompt,
		Options:  options,
		Current:  current,
		Selected: cursor,
		Chosen:   -1,
	}
}

// Init returns nil.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and records the choice on enter. Digits 1-9
// choose directly.
func (p Picker) Update(msg tea.Msg) (Picker, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if p.Selected > 0 {
			p.Selected--
		}
	case "down", "j":
		if p.Selected < len(p.Options)-1 {
			p.Selected++
		}
	case "enter":
		if len(p.Options) > 0 {
			p.Chosen = p.Selected
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(p.Options) {
				p.Selected = i
				p.Chosen = i
			}
		}
	}

	return p, nil
}

// Done reports whether an option was chosen.
func (p Picker) Done() bool {
	return p.Chosen >= 0
}

// Clear forgets the last choice so the picker can be used again.
func (p *Picker) Clear() {
	p.Chosen = -1
}

// View renders the picker.
func (p Picker) View() string {
	var s string
	if p.Prompt != "" {
		s = lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(p.Prompt) + "\n\n"
	}

	for i, opt := range p.Options {
		prefix := "  "
		if i == p.Selected {
			prefix = "▸ "
		}
		marker := " "
		if i == p.Current {
			marker = "*"
		}

		line := fmt.Sprintf("%s%d) %s %s", prefix, i+1, marker, opt.Label)
		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case i == p.Selected:
			style = style.Foreground(theme.Primary).Bold(true)
		case i == p.Current:
			style = style.Foreground(theme.Success)
		}
		s += style.Render(line)
		if opt.Detail != "" {
			s += "  " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(opt.Detail)
		}
		s += "\n"
	}

	return s
}
