package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/ui/theme"
)

const bannerArt = `
 ███████╗████████╗██╗   ██╗██████╗ ██╗   ██╗
 ██╔════╝╚══██╔══╝██║   ██║██╔══██╗╚██╗ ██╔╝
 ███████╗   ██║   ██║   ██║██║  ██║ ╚████╔╝
 ╚════██║   ██║   ██║   ██║██║  ██║  ╚██╔╝
 ███████║   ██║   ╚██████╔╝██████╔╝   ██║
 ╚══════╝   ╚═╝    ╚═════╝ ╚═════╝    ╚═╝  hall`

const bannerCompact = "S T U D Y H A L L"

// RenderBanner returns the banner in the primary color, or a one-line
// fallback for terminals narrower than 52 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 52 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
