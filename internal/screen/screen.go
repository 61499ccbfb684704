// Package screen defines the contract every TUI screen implements.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyhall/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Refresher is implemented by screens that show stored data and reload it
// when something changed underneath them.
type Refresher interface {
	Refresh() tea.Cmd
}

// DataChangedMsg is broadcast after a write so visible screens can reload.
type DataChangedMsg struct{}
