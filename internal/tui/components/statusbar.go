package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar: key hints on the left and
// the loaded source with its load time on the right.
func RenderStatusBar(width int, source, loadTime string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.SurfaceHover).
		Width(width)

	left := " [?]help  [f]ile  [q]uit"
	right := ""
	if source != "" {
		right = source
		if loadTime != "" {
			right = fmt.Sprintf("%s  %s", source, loadTime)
		}
		right += " "
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		// Drop the source before the key hints.
		return style.Render(left)
	}

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
