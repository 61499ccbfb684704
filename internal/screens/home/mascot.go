package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // Default blue
	MascotCelebrating                      // Gold, star eyes: daily goal reached
	MascotAlert                            // Amber, exclamation: streak at risk
	MascotSleepy                           // Dim, closed eyes: nothing studied in a while
)

const mascotIdle = `┌─────┐
│ ◉ ◉ │
│  ▽  │
│ ✎ ✎ │
└─────┘`

const mascotCelebrating = `┌─────┐
│ ★ ★ │
│  ▿  │
│ ✎ ✎ │
└─╥═╥─┘
  ╚═╝`

const mascotAlert = `┌─────┐
│ ◉ ◉ │ !
│  ▽  │
│ ✎ ✎ │
└─────┘`

const mascotSleepy = `┌─────┐ z
│ ─ ─ │z
│  ▁  │
│ ✎ ✎ │
└─────┘`

// PickMascot chooses the mascot for the dashboard state.
func PickMascot(d Dashboard) MascotVariant {
	switch {
	case d.Today.Target > 0 && d.Today.Current >= d.Today.Target:
		return MascotCelebrating
	case d.Streak > 0 && d.Today.Current == 0:
		return MascotAlert
	case d.DaysSinceLast >= 3:
		return MascotSleepy
	default:
		return MascotIdle
	}
}

// RenderMascot returns the mascot art for the given variant.
func RenderMascot(v MascotVariant) string {
	art, fg := mascotIdle, theme.Primary

	switch v {
	case MascotCelebrating:
		art, fg = mascotCelebrating, theme.ArcadeYellow
	case MascotAlert:
		art, fg = mascotAlert, theme.Accent
	case MascotSleepy:
		art, fg = mascotSleepy, theme.TextDim
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}

// mascotLine is the caption shown under the mascot.
func mascotLine(v MascotVariant, d Dashboard) string {
	switch v {
	case MascotCelebrating:
		return "Daily goal done. Nice work!"
	case MascotAlert:
		return "Keep the streak alive today."
	case MascotSleepy:
		return "Welcome back. Let's restart gently."
	default:
		if d.Today.Target > d.Today.Current {
			return "Ready when you are."
		}
		return "Let's study."
	}
}
