package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Theme colors (Flexoki Dark)
var (
	ColorBg        = lipgloss.Color("#100F0F")
	ColorSurface   = lipgloss.Color("#1C1B1A")
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
	ColorPurple    = lipgloss.Color("#8B7EC8")
	ColorYellow    = lipgloss.Color("#D0A215")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	gainStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	lossStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	balanceStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table is a boxed table. Column 0 and the columns in Left are
// left-aligned; the rest hold numbers and align right. A row of just "---"
// draws a separator.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
	Left    []int
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders t with rounded box-drawing borders.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	widths := t.columnWidths()
	left := map[int]bool{0: true}
	for _, i := range t.Left {
		left[i] = true
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}

	b.WriteString(rule(widths, "╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(cells(widths, t.Headers, func(_ int) bool { return true }, headerStyle))
		b.WriteString(rule(widths, "├", "┼", "┤"))
	}
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			b.WriteString(rule(widths, "├", "┼", "┤"))
			continue
		}
		b.WriteString(cells(widths, row, func(i int) bool { return left[i] }, valueStyle))
	}
	b.WriteString(rule(widths, "╰", "┴", "╯"))

	return b.String()
}

func (t Table) columnWidths() []int {
	n := len(t.Headers)
	if n == 0 && len(t.Rows) > 0 {
		n = len(t.Rows[0])
	}
	widths := make([]int, n)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	grow := func(row []string) {
		for i, cell := range row {
			if i < n {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	grow(t.Headers)
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			continue
		}
		grow(row)
	}
	return widths
}

// rule draws a horizontal border line.
func rule(widths []int, l, mid, r string) string {
	segs := make([]string, len(widths))
	for i, w := range widths {
		segs[i] = strings.Repeat("─", w+2)
	}
	return dimStyle.Render(l+strings.Join(segs, mid)+r) + "\n"
}

func cells(widths []int, row []string, leftAligned func(int) bool, style lipgloss.Style) string {
	bar := dimStyle.Render("│")
	var b strings.Builder
	b.WriteString(bar)
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		pad := max(w-lipgloss.Width(cell), 0)
		if leftAligned(i) {
			cell = " " + cell + strings.Repeat(" ", pad) + " "
		} else {
			cell = " " + strings.Repeat(" ", pad) + cell + " "
		}
		b.WriteString(style.Render(cell))
		b.WriteString(bar)
	}
	b.WriteString("\n")
	return b.String()
}

// RenderProgressBar renders a simple text progress bar.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 {
		return ""
	}

	pct := float64(current) / float64(total)
	if pct > 1 {
		pct = 1
	}

	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s/%s",
		mutedStyle.Render(bar),
		FormatNumber(int64(current)),
		FormatNumber(int64(total)),
	)
}

// RenderSparkline generates a unicode block sparkline from a series of values.
// The lowest value maps to the lowest block, so negative series render too.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v > hi {
			hi = v
		}
		if v < lo {
			lo = v
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(blocks[idx])
	}

	return b.String()
}

// RenderSignedBar renders one row of a diverging bar chart: negative values
// grow left of the axis in red, positive values right of it in green.
func RenderSignedBar(label string, value, maxAbs float64, halfWidth int) string {
	left := strings.Repeat(" ", halfWidth)
	right := ""
	if maxAbs > 0 {
		n := int(math.Round(math.Abs(value) / maxAbs * float64(halfWidth)))
		if n > halfWidth {
			n = halfWidth
		}
		if value < 0 {
			left = strings.Repeat(" ", halfWidth-n) + lossStyle.Render(strings.Repeat("█", n))
		} else {
			right = gainStyle.Render(strings.Repeat("█", n))
		}
	}
	return fmt.Sprintf("  %s %s%s%s", mutedStyle.Render(label), left, dimStyle.Render("│"), right)
}

// Signed colors a pre-formatted amount green when d >= 0 and red otherwise.
func Signed(d decimal.Decimal, text string) string {
	if d.IsNegative() {
		return lossStyle.Render(text)
	}
	return gainStyle.Render(text)
}

// Balance renders text in the bank balance color.
func Balance(text string) string {
	return balanceStyle.Render(text)
}

// Header renders a section heading.
func Header(text string) string {
	return headerStyle.Render(text)
}

// Muted renders secondary text.
func Muted(text string) string {
	return mutedStyle.Render(text)
}

// Warn renders a warning line.
func Warn(text string) string {
	return warnStyle.Render("! " + text)
}
