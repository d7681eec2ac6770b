package components

import (
	"strings"
	"testing"

	"github.com/theirongolddev/fincompass/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToWidth(t *testing.T) {
	widths := LayoutRow(80, 3)
	assert.Equal(t, []int{27, 27, 26}, widths)
	assert.Nil(t, LayoutRow(80, 0))
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := lipgloss.Height(shortCard)
	tallLines := lipgloss.Height(tallCard)
	require.Less(t, shortLines, tallLines)

	lines := strings.Split(CardRow([]string{tallCard, shortCard}), "\n")
	require.Len(t, lines, tallLines)

	for i := shortLines; i < len(lines); i++ {
		assert.Contains(t, lines[i], "\x1b[", "padding line %d is unstyled", i)
	}
}

func TestCardRowWidthConsistency(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "A", 30)
	tallCard := ContentCard("Tall", "A\nB\nC\nD\nE\nF", 20)

	lines := strings.Split(CardRow([]string{tallCard, shortCard}), "\n")
	want := lipgloss.Width(tallCard) + lipgloss.Width(shortCard)
	for i, line := range lines {
		assert.Equal(t, want, lipgloss.Width(line), "line %d", i)
	}
}

func TestMetricCardRowShowsValues(t *testing.T) {
	theme.SetActive("terminal")
	out := MetricCardRow([]Metric{
		{Label: "Bank balance", Value: "$2,900.00", Tone: theme.ToneGain},
		{Label: "Net flow", Value: "-$100.00", Delta: "avg 15d", Tone: theme.ToneLoss},
	}, 60)

	assert.Contains(t, out, "Bank balance")
	assert.Contains(t, out, "-$100.00")
	assert.Contains(t, out, "avg 15d")
	assert.Equal(t, 60, lipgloss.Width(strings.Split(out, "\n")[0]))
}
