package components

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with Studyhall styling.
type TextInput struct {
	Model       textinput.Model
	NumericOnly bool
	errMsg      string
}

// NewTextInput creates a new focused text input. A positive maxLen caps the
// number of characters.
func NewTextInput(placeholder string, numericOnly bool, maxLen int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	if maxLen > 0 {
		ti.CharLimit = maxLen
	}

	return TextInput{
		Model:       ti,
		NumericOnly: numericOnly,
	}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages. Non-digit characters are dropped in numeric
// mode. Any edit clears a previous error.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		key := kmsg.String()
		if t.NumericOnly && len(key) == 1 && (key[0] < '0' || key[0] > '9') {
			return t, nil
		}
		t.errMsg = ""
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input with its error, if any.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.errMsg != "" {
		view += "\n" + lipgloss.NewStyle().Foreground(theme.Error).Render("✗ "+t.errMsg)
	}
	return view
}

// Value returns the trimmed input value.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// NumericValue returns the input value as an integer.
func (t TextInput) NumericValue() (int, error) {
	return strconv.Atoi(t.Value())
}

// SetError shows msg under the input until the next edit.
func (t *TextInput) SetError(msg string) {
	t.errMsg = msg
}

// Reset clears the value and any error.
func (t *TextInput) Reset() {
	t.Model.SetValue("")
	t.errMsg = ""
}
