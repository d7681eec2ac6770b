package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/fincompass/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values, scaled between the
// series minimum and maximum so negative balances still show their shape.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 4) // UTF-8 block chars are up to 3 bytes
	for _, v := range values {
		idx := 0
		if span > 0 {
			idx = int((v - lo) / span * float64(len(sparkBlocks)-1))
		}
		idx = max(0, min(idx, len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[idx])
	}

	return style.Render(buf.String())
}

// BarChart renders a bar chart with a height-based gradient. Negative values
// hang below the zero line.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	t := theme.Active
	return barChart(values, labels, width, height, color, func(_ float64, rowPct float64) lipgloss.Color {
		switch {
		case rowPct > 0.8:
			return t.AccentBright
		case rowPct > 0.5:
			return color
		default:
			return t.Accent
		}
	})
}

// SignedBarChart renders a bar chart coloring each bar by its sign.
func SignedBarChart(values []float64, labels []string, pos, neg lipgloss.Color, width, height int) string {
	return barChart(values, labels, width, height, pos, func(v float64, _ float64) lipgloss.Color {
		if v < 0 {
			return neg
		}
		return pos
	})
}

type barColorFunc func(value, rowPct float64) lipgloss.Color

func barChart(values []float64, labels []string, width, height int, fallback lipgloss.Color, colorFor barColorFunc) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, fallback)
	}

	t := theme.Active

	// The axis always includes zero.
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	tickStep := chartTickStep(hi - lo)
	maxIntervals := max(height/2, 2)
	var top, bottom float64
	var numIntervals int
	for {
		top = math.Ceil(hi/tickStep) * tickStep
		bottom = math.Floor(lo/tickStep) * tickStep
		numIntervals = int(math.Round((top - bottom) / tickStep))
		if numIntervals <= maxIntervals {
			break
		}
		tickStep *= 2
	}
	numIntervals = max(numIntervals, 1)

	rowsPerTick := max(height/numIntervals, 2)
	chartH := rowsPerTick * numIntervals
	unit := (top - bottom) / float64(chartH)

	yLabelW := max(len(formatChartLabel(top)), len(formatChartLabel(bottom))) + 1
	yLabelW = max(yLabelW, 4)
	tickLabels := make(map[int]string)
	for i := 1; i <= numIntervals; i++ {
		tickLabels[i*rowsPerTick] = formatChartLabel(bottom + tickStep*float64(i))
	}

	chartW := max(width-yLabelW-1, 5)

	n := len(values)

	// Bar sizing
	gap := 1
	if n <= 1 {
		gap = 0
	}
	barW := chartW
	if n > 1 {
		barW = (chartW - (n - 1)) / n
	}
	if barW < 2 && n > 1 {
		maxN := max((chartW+1)/3, 2)
		sampled := make([]float64, maxN)
		var sampledLabels []string
		if len(labels) == n {
			sampledLabels = make([]string, maxN)
		}
		for i := range sampled {
			srcIdx := i * (n - 1) / (maxN - 1)
			sampled[i] = values[srcIdx]
			if sampledLabels != nil {
				sampledLabels[i] = labels[srcIdx]
			}
		}
		values = sampled
		labels = sampledLabels
		n = maxN
		barW = 2
	}
	barW = min(barW, 6)
	axisLen := n*barW + max(0, n-1)*gap

	blocks := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder

	for row := chartH; row >= 1; row-- {
		rowTop := bottom + unit*float64(row)
		rowBottom := bottom + unit*float64(row-1)
		rowPct := float64(row) / float64(chartH)

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, tickLabels[row])))
		b.WriteString(axisStyle.Render("│"))

		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			cell := barCell(v, rowBottom, rowTop, blocks)
			if cell == ' ' {
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
				continue
			}
			style := lipgloss.NewStyle().Foreground(colorFor(v, rowPct)).Background(t.Surface)
			b.WriteString(style.Render(strings.Repeat(string(cell), barW)))
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, formatChartLabel(bottom))))
	b.WriteString(axisStyle.Render("└"))
	b.WriteString(axisStyle.Render(strings.Repeat("─", axisLen)))

	if len(labels) == n && n > 0 {
		b.WriteString("\n")
		labelStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(labelStyle.Render(xAxisLabels(labels, barW, gap, axisLen)))
	}

	return b.String()
}

// barCell picks the glyph for one chart cell covering [rowBottom, rowTop].
// Positive bars grow up from zero and negative bars hang down from it.
func barCell(v, rowBottom, rowTop float64, blocks []rune) rune {
	span := rowTop - rowBottom
	if v >= 0 {
		if rowTop <= 0 || v <= rowBottom {
			return ' '
		}
		base := math.Max(rowBottom, 0)
		if v >= rowTop && base == rowBottom {
			return '█'
		}
		frac := (math.Min(v, rowTop) - base) / span
		idx := max(1, min(int(frac*8), 8))
		return blocks[idx]
	}
	if rowBottom >= 0 || v >= rowTop {
		return ' '
	}
	covered := (math.Min(rowTop, 0) - math.Max(v, rowBottom)) / span
	switch {
	case covered > 0.75:
		return '█'
	case covered > 0.25:
		return '▀'
	default:
		return '▔'
	}
}

func xAxisLabels(labels []string, barW, gap, axisLen int) string {
	n := len(labels)
	buf := make([]byte, axisLen)
	for i := range buf {
		buf[i] = ' '
	}

	minSpacing := 8
	labelStep := max(1, (n*minSpacing)/(axisLen+1))

	lastEnd := -1
	for i := 0; i < n; i += labelStep {
		pos := i * (barW + gap)
		lbl := labels[i]
		end := pos + len(lbl)
		if pos <= lastEnd {
			continue
		}
		if end > axisLen {
			end = axisLen
			if end-pos < 3 {
				continue
			}
			lbl = lbl[:end-pos]
		}
		copy(buf[pos:end], lbl)
		lastEnd = end + 1
	}
	if n > 1 {
		lbl := labels[n-1]
		pos := (n - 1) * (barW + gap)
		end := pos + len(lbl)
		if end > axisLen {
			pos = axisLen - len(lbl)
			end = axisLen
		}
		if pos >= 0 && pos > lastEnd {
			copy(buf[pos:end], lbl)
		}
	}
	return strings.TrimRight(string(buf), " ")
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(span float64) float64 {
	if span <= 0 {
		return 1
	}
	rough := span / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	if v < 0 {
		return "-" + formatChartLabel(-v)
	}
	switch {
	case v >= 1e6:
		if v == math.Trunc(v/1e6)*1e6 {
			return fmt.Sprintf("%.0fM", v/1e6)
		}
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		if v == math.Trunc(v/1e3)*1e3 {
			return fmt.Sprintf("%.0fk", v/1e3)
		}
		return fmt.Sprintf("%.1fk", v/1e3)
	case v >= 1 || v == 0:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
