// Package welcome is the splash screen shown when the TUI starts.
package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	bannerAt     = 600 * time.Millisecond
	autoContinue = 3 * time.Second
)

const bookArt = `   ______ ______
 _/      Y      \_
// ~~ ~~ | ~~ ~  \\
// ~ ~ ~~ | ~~~ ~ \\
//________.|.________\\
` + "`----------`-'----------'"

type tickMsg time.Time

// WelcomeScreen shows a short splash, then replaces itself with the
// screen built by next. Any key skips ahead.
type WelcomeScreen struct {
	next         func() screen.Screen
	tagline      string
	elapsed      time.Duration
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen. The tagline is shown under the banner.
func New(tagline string, next func() screen.Screen) *WelcomeScreen {
	if tagline == "" {
		tagline = "One question at a time."
	}
	return &WelcomeScreen{next: next, tagline: tagline}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.transitioned {
			return w, nil
		}
		w.elapsed += tickInterval
		if w.elapsed >= autoContinue {
			return w, w.transition()
		}
		return w, tick()

	case tea.KeyPressMsg:
		return w, w.transition()
	}
	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	next := w.next()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	sections := []string{lipgloss.NewStyle().Foreground(theme.Accent).Render(bookArt)}

	if w.elapsed >= bannerAt {
		sections = append(sections,
			"",
			RenderBanner(width),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(w.tagline),
			"",
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("press any key to continue"),
		)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}
