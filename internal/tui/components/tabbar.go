package components

import (
	"strings"

	"github.com/theirongolddev/fincompass/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "Ledger", Key: 'l', KeyPos: 0},
	{Name: "Charts", Key: 'c', KeyPos: 0},
	{Name: "Payouts", Key: 'p', KeyPos: 0},
	{Name: "Entries", Key: 'e', KeyPos: 0},
	{Name: "Settings", Key: 'x', KeyPos: -1}, // x is not in "Settings"
}

const tabGap = 2

// TabVisualWidth is the rendered width of a tab label. Active tabs render
// without the bracketed shortcut.
func TabVisualWidth(tab Tab, active bool) int {
	w := len(tab.Name)
	if !active {
		w += 2
		if tab.KeyPos < 0 || tab.KeyPos >= len(tab.Name) {
			w++
		}
	}
	return w
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Background).
		Bold(true)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Background)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Background).
		Bold(true)

	dimKeyStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Background)

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		var rendered string
		switch {
		case i == activeIdx:
			rendered = activeStyle.Render(tab.Name)
		case tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name):
			before := tab.Name[:tab.KeyPos]
			key := string(tab.Name[tab.KeyPos])
			after := tab.Name[tab.KeyPos+1:]
			rendered = inactiveStyle.Render(before) +
				dimKeyStyle.Render("[") + keyStyle.Render(key) + dimKeyStyle.Render("]") +
				inactiveStyle.Render(after)
		default:
			rendered = inactiveStyle.Render(tab.Name) +
				dimKeyStyle.Render("[") + keyStyle.Render(string(tab.Key)) + dimKeyStyle.Render("]")
		}
		parts = append(parts, rendered)
	}

	sep := inactiveStyle.Render(strings.Repeat(" ", tabGap))
	bar := inactiveStyle.Render(" ") + strings.Join(parts, sep)
	if pad := width - lipgloss.Width(bar); pad > 0 {
		bar += inactiveStyle.Render(strings.Repeat(" ", pad))
	}
	return bar
}

// TabAtX returns the tab under column x of the tab bar, or -1.
func TabAtX(x, activeIdx int) int {
	pos := 1
	for i, tab := range Tabs {
		w := TabVisualWidth(tab, i == activeIdx)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + tabGap
	}
	return -1
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
