package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fincompass/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar. notice, when set, replaces
// the key hints (e.g. "Saved entry 2024-01-16").
func RenderStatusBar(width int, notice, dataAge string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " [?]help  [a]dd day  [n]ew payout  [r]efresh  [q]uit"
	if notice != "" {
		left = " " + notice
	}
	right := ""
	if dataAge != "" {
		right = fmt.Sprintf("Data: %s ", dataAge)
	}

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
