package welcome

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
)

// stubScreen is a minimal screen implementation for testing.
type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return "home" }
func (s *stubScreen) Title() string                          { return "Home" }

func newTestWelcome() (*WelcomeScreen, *int) {
	calls := 0
	return New("Keep going", func() screen.Screen {
		calls++
		return &stubScreen{}
	}), &calls
}

func sendTicks(w *WelcomeScreen, n int) tea.Cmd {
	var cmd tea.Cmd
	for i := 0; i < n; i++ {
		_, cmd = w.Update(tickMsg(time.Now()))
	}
	return cmd
}

func TestBannerAppearsAfterDelay(t *testing.T) {
	w, _ := newTestWelcome()
	if strings.Contains(w.View(80, 24), "Keep going") {
		t.Error("tagline should not be visible at start")
	}
	sendTicks(w, 6)
	if !strings.Contains(w.View(80, 24), "Keep going") {
		t.Error("tagline should be visible after the banner delay")
	}
}

func TestKeypressReplacesScreen(t *testing.T) {
	w, calls := newTestWelcome()
	sendTicks(w, 2)

	_, cmd := w.Update(tea.KeyPressMsg{Code: ' '})
	if cmd == nil {
		t.Fatal("keypress should trigger transition")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if msg.Screen == nil {
		t.Error("replacement screen should not be nil")
	}
	if *calls != 1 {
		t.Errorf("factory should be called once, got %d", *calls)
	}
}

func TestAutoContinue(t *testing.T) {
	w, calls := newTestWelcome()
	cmd := sendTicks(w, int(autoContinue/tickInterval))
	if cmd == nil {
		t.Fatal("expected transition command after auto-continue delay")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Error("expected ReplaceScreenMsg")
	}
	if *calls != 1 {
		t.Errorf("factory calls = %d, want 1", *calls)
	}
}

func TestTransitionOnlyOnce(t *testing.T) {
	w, calls := newTestWelcome()
	w.Update(tea.KeyPressMsg{Code: 'a'})

	_, cmd := w.Update(tea.KeyPressMsg{Code: 'b'})
	if cmd != nil {
		t.Error("second keypress should not produce a command")
	}
	if cmd := sendTicks(w, 40); cmd != nil {
		t.Error("ticks after transition should stop")
	}
	if *calls != 1 {
		t.Errorf("factory should be called exactly once, got %d", *calls)
	}
}

func TestCompactBanner(t *testing.T) {
	if got := RenderBanner(40); !strings.Contains(got, bannerCompact) {
		t.Errorf("narrow banner = %q", got)
	}
}
