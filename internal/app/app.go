// Package app wires the screens into the root Bubble Tea program.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/screens/home"
	"github.com/abhisek/studyhall/internal/screens/welcome"
	"github.com/abhisek/studyhall/internal/ui/layout"
)

// DefaultRefreshInterval is how often the header and the visible screen
// are reloaded while the program runs.
const DefaultRefreshInterval = time.Minute

// Options configures the TUI.
type Options struct {
	Services        screen.Services
	SkipSplash      bool
	RefreshInterval time.Duration
}

type headerLoadedMsg struct {
	Stats layout.HeaderStats
	Day   string
	Err   error
}

// clockTickMsg is sent by the background scheduler.
type clockTickMsg struct{}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	svc    screen.Services
	header layout.HeaderStats
	day    string
	width  int
	height int
}

// newAppModel creates a new AppModel starting at the splash or home screen.
func newAppModel(opts Options) AppModel {
	svc := opts.Services
	var first screen.Screen = home.New(svc)
	if !opts.SkipSplash {
		first = welcome.New(tagline(svc), func() screen.Screen { return home.New(svc) })
	}
	return AppModel{
		router: router.New(first),
		svc:    svc,
	}
}

// tagline greets returning users with their streak.
func tagline(svc screen.Services) string {
	if svc.Study == nil {
		return ""
	}
	streak, err := svc.Study.Aggregator().StreakDays(context.Background())
	if err != nil || streak == 0 {
		return ""
	}
	return fmt.Sprintf("%d-day streak. Keep it going!", streak)
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Active().Init(), m.loadHeader())
}

func (m AppModel) loadHeader() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if svc.Study == nil {
			return headerLoadedMsg{}
		}
		ctx := context.Background()
		agg := svc.Study.Aggregator()
		today, err := agg.TodayProgress(ctx)
		if err != nil {
			return headerLoadedMsg{Err: err}
		}
		streak, err := agg.StreakDays(ctx)
		if err != nil {
			return headerLoadedMsg{Err: err}
		}
		return headerLoadedMsg{
			Stats: layout.HeaderStats{Streak: streak, TodayCount: today.Current, TodayTarget: today.Target},
			Day:   agg.Today(),
		}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case headerLoadedMsg:
		if msg.Err != nil {
			if m.svc.Log != nil {
				m.svc.Log.Warn("header refresh failed", "error", msg.Err)
			}
			return m, nil
		}
		rollover := m.day != "" && msg.Day != m.day
		m.header, m.day = msg.Stats, msg.Day
		if rollover {
			// A new day resets today's progress everywhere.
			return m, screen.Changed()
		}
		return m, nil

	case clockTickMsg:
		return m, m.loadHeader()

	case screen.DataChangedMsg:
		return m, tea.Batch(m.loadHeader(), m.router.Update(msg))
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.header, m.width)

	footerHints := []layout.KeyHint{
		{Key: "Esc", Description: "Back"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = append(hp.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	}
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(0, m.height-lipgloss.Height(header)-lipgloss.Height(footer))
	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program and a background ticker that keeps
// the header current.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))

	every := opts.RefreshInterval
	if every <= 0 {
		every = DefaultRefreshInterval
	}
	ticker, err := startTicker(p, every)
	if err != nil {
		return err
	}
	defer func() {
		if err := ticker.Shutdown(); err != nil && opts.Services.Log != nil {
			opts.Services.Log.Warn("scheduler shutdown", "error", err)
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
