package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/ui/theme"
)

// MenuItem represents a single item in a navigation menu.
type MenuItem struct {
	Label    string
	Shortcut string // optional single key that activates the item directly
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical navigation menu.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a new menu with the first enabled item selected.
func NewMenu(items []MenuItem) Menu {
	selected := 0
	for i, item := range items {
		if !item.Disabled {
			selected = i
			break
		}
	}
	return Menu{
		Items:    items,
		Selected: selected,
	}
}

// Init returns nil (no initial command).
func (m Menu) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation and shortcuts.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		m.Selected = m.step(-1)
		return m, nil
	case "down", "j", "tab":
		m.Selected = m.step(1)
		return m, nil
	case "enter":
		return m, m.activate(m.Selected)
	}

	for i, item := range m.Items {
		if item.Shortcut != "" && strings.EqualFold(item.Shortcut, key) && !item.Disabled {
			m.Selected = i
			return m, m.activate(i)
		}
	}
	return m, nil
}

func (m Menu) step(dir int) int {
	for i := m.Selected + dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			return i
		}
	}
	return m.Selected
}

func (m Menu) activate(i int) tea.Cmd {
	if i < 0 || i >= len(m.Items) {
		return nil
	}
	item := m.Items[i]
	if item.Action == nil || item.Disabled {
		return nil
	}
	return item.Action()
}

// Labels returns the item labels in order.
func (m Menu) Labels() []string {
	out := make([]string, len(m.Items))
	for i, item := range m.Items {
		out[i] = item.Label
	}
	return out
}

// DisabledSet returns the indexes of disabled items.
func (m Menu) DisabledSet() map[int]bool {
	out := make(map[int]bool)
	for i, item := range m.Items {
		if item.Disabled {
			out[i] = true
		}
	}
	return out
}

// View renders the menu as plain lines.
func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		label := item.Label
		if item.Shortcut != "" {
			label += lipgloss.NewStyle().Foreground(theme.TextDim).Render(" [" + item.Shortcut + "]")
		}
		switch {
		case item.Disabled:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("    "+item.Label) + "\n")
		case i == m.Selected:
			b.WriteString(lipgloss.NewStyle().
				Foreground(theme.Primary).
				Bold(true).
				Render("  ▸ "+label) + "\n")
		default:
			b.WriteString(lipgloss.NewStyle().
				Foreground(theme.Text).
				Render("    "+label) + "\n")
		}
	}
	return b.String()
}
