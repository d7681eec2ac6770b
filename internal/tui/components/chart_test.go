package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestSparklineScalesBetweenMinAndMax(t *testing.T) {
	out := stripANSI(Sparkline([]float64{-50, 0, 50}, lipgloss.Color("2")))
	assert.Equal(t, "▁▄█", out)

	flat := stripANSI(Sparkline([]float64{7, 7, 7}, lipgloss.Color("2")))
	assert.Equal(t, "▁▁▁", flat)
	assert.Empty(t, Sparkline(nil, lipgloss.Color("2")))
}

func TestBarChartFallsBackToSparklineWhenTiny(t *testing.T) {
	out := stripANSI(BarChart([]float64{1, 2, 3}, nil, lipgloss.Color("2"), 10, 2))
	assert.Equal(t, "▁▄█", out)
}

func TestSignedBarChartDrawsBelowZero(t *testing.T) {
	values := []float64{100, -100, 50}
	labels := []string{"01-01", "01-02", "01-03"}
	out := stripANSI(SignedBarChart(values, labels, lipgloss.Color("2"), lipgloss.Color("1"), 40, 8))
	lines := strings.Split(out, "\n")

	zeroRow := -1
	for i, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "0│") {
			zeroRow = i
		}
	}
	if assert.GreaterOrEqual(t, zeroRow, 0, "chart has a zero tick:\n%s", out) {
		above := strings.Join(lines[:zeroRow+1], "\n")
		below := strings.Join(lines[zeroRow+1:], "\n")
		assert.Contains(t, above, "█")
		assert.Contains(t, below, "█")
	}
	assert.Contains(t, lines[len(lines)-1], "01-01")
	assert.Contains(t, lines[len(lines)-2], "-100")
}

func TestBarCell(t *testing.T) {
	blocks := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	assert.Equal(t, '█', barCell(10, 0, 5, blocks))
	assert.Equal(t, '▄', barCell(2.5, 0, 5, blocks))
	assert.Equal(t, ' ', barCell(10, -5, 0, blocks))
	assert.Equal(t, '█', barCell(-10, -5, 0, blocks))
	assert.Equal(t, '▀', barCell(-2.5, -5, 0, blocks))
	assert.Equal(t, ' ', barCell(-10, 0, 5, blocks))
}

func TestFormatChartLabel(t *testing.T) {
	assert.Equal(t, "0", formatChartLabel(0))
	assert.Equal(t, "2k", formatChartLabel(2000))
	assert.Equal(t, "-1.5k", formatChartLabel(-1500))
	assert.Equal(t, "0.50", formatChartLabel(0.5))
}

func TestChartTickStep(t *testing.T) {
	assert.InDelta(t, 1000.0, chartTickStep(5000), 1e-9)
	assert.InDelta(t, 20.0, chartTickStep(100), 1e-9)
	assert.InDelta(t, 1.0, chartTickStep(0), 1e-9)
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEsc = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
