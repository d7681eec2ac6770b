package components

import (
	"fmt"

	"github.com/theirongolddev/fincompass/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForPct returns red/orange/yellow/green as a fill level rises.
func ColorForPct(pct float64) string {
	t := theme.Active
	switch {
	case pct >= 1:
		return string(t.Gain)
	case pct >= 0.7:
		return string(t.Warn)
	case pct >= 0.4:
		return string(t.Caution)
	default:
		return string(t.Loss)
	}
}

func clampPct(pct float64) float64 {
	return max(0, min(pct, 1))
}

// GaugeBar renders a labeled progress bar followed by the percentage and a
// free-form detail string (e.g. "12 of 15 days").
func GaugeBar(label string, pct float64, detail string, labelW, barWidth int) string {
	t := theme.Active
	pct = clampPct(pct)

	bar := progress.New(
		progress.WithSolidFill(ColorForPct(pct)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorForPct(pct))).Background(t.Surface).Bold(true)
	detailStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(pct) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100)) +
		spaceStyle.Render("  ") +
		detailStyle.Render(detail)
}
