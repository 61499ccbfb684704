// Package screentest builds real, store-backed services for screen tests.
package screentest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyhall/internal/achievements"
	"github.com/abhisek/studyhall/internal/encourage"
	"github.com/abhisek/studyhall/internal/llm"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/store"
	"github.com/abhisek/studyhall/internal/study"
)

// Clock is a settable time source.
type Clock struct{ T time.Time }

// Now returns the current fake time.
func (c *Clock) Now() time.Time { return c.T }

// Env is a test environment around a temporary database.
type Env struct {
	Services screen.Services
	Store    *store.Store
	Clock    *Clock
}

// New opens a temporary store with the preset catalog and personas and no
// subjects. Encouragements use the mock platform.
func New(t *testing.T) *Env {
	t.Helper()
	c := &Clock{T: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	st, err := store.Open(filepath.Join(t.TempDir(), "screen.db"), store.WithClock(c.Now), store.WithoutDefaultSubjects())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	engine := achievements.NewEngine(st, c.Now, nil)
	_, err = engine.EnsureCatalog(ctx, achievements.Presets())
	require.NoError(t, err)
	_, err = encourage.SeedPersonas(ctx, st)
	require.NoError(t, err)

	enc := encourage.NewService(st, encourage.Options{
		Base: llm.Config{Platform: "mock"},
		Now:  c.Now,
	})
	return &Env{
		Services: screen.Services{
			Study:     study.New(st, engine, enc.Policy(), c.Now, nil),
			Engine:    engine,
			Encourage: enc,
		},
		Store: st,
		Clock: c,
	}
}

// AddSubject creates a subject with the given daily target.
func (e *Env) AddSubject(t *testing.T, name string, daily int) store.Subject {
	t.Helper()
	sub, err := e.Services.Study.AddSubject(context.Background(), store.NewSubject{Name: name, DailyTarget: daily})
	require.NoError(t, err)
	return sub
}

// Run feeds msg to s and keeps executing the returned commands, feeding
// their messages back, up to depth rounds. It returns the final screen
// and every message produced.
func Run(s screen.Screen, msg tea.Msg, depth int) (screen.Screen, []tea.Msg) {
	var all []tea.Msg
	queue := []tea.Msg{msg}
	for round := 0; round < depth && len(queue) > 0; round++ {
		var next []tea.Msg
		for _, m := range queue {
			var cmd tea.Cmd
			s, cmd = s.Update(m)
			for _, out := range Exec(cmd) {
				all = append(all, out)
				next = append(next, out)
			}
		}
		queue = next
	}
	return s, all
}

// Exec runs cmd and flattens batches into their messages.
func Exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if msg == nil {
		return nil
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, Exec(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// Key builds a key press for a named key or a single character.
func Key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}
