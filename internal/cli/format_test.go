package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"12.5", "12.50"},
		{"1234567.891", "1,234,567.89"},
		{"-2900", "-2,900.00"},
		{"-0.001", "0.00"},
		{"999.995", "1,000.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney(decimal.RequireFromString(tt.in)), tt.in)
	}
}

func TestFormatSignedMoney(t *testing.T) {
	assert.Equal(t, "+150.00", FormatSignedMoney(decimal.NewFromInt(150)))
	assert.Equal(t, "-100.00", FormatSignedMoney(decimal.NewFromInt(-100)))
	assert.Equal(t, "+0.00", FormatSignedMoney(decimal.Zero))
	assert.Equal(t, "+50.00", FormatDelta(decimal.NewFromInt(3050), decimal.NewFromInt(3000)))
}

func TestFormatCompactAndNumber(t *testing.T) {
	assert.Equal(t, "1.2K", FormatCompact(1234))
	assert.Equal(t, "-3.5M", FormatCompact(-3_500_000))
	assert.Equal(t, "42", FormatCompact(41.6))
	assert.Equal(t, "1,234,567", FormatNumber(1234567))
	assert.Equal(t, "-1,000", FormatNumber(-1000))
}

func TestFormatDatesAndDays(t *testing.T) {
	d := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-20", FormatDate(d))
	assert.Equal(t, "-", FormatDate(time.Time{}))
	assert.Equal(t, "2024-01-21", FormatPredictedDate(d.Add(18*time.Hour)))
	assert.Equal(t, "2024-01-20", FormatPredictedDate(d.Add(6*time.Hour)))
	assert.Equal(t, "9.0 days", FormatDays(9))
	assert.Equal(t, "1.0 day", FormatDays(1))
}

func TestRenderSparkline_HandlesNegatives(t *testing.T) {
	s := RenderSparkline([]float64{-100, 0, 100})
	r := []rune(s)
	assert.Len(t, r, 3)
	assert.Equal(t, '▁', r[0])
	assert.Equal(t, '█', r[2])
	assert.Empty(t, RenderSparkline(nil))
}

func TestRenderTable_SeparatorAndWidths(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Metric", "Value"},
		Rows:    [][]string{{"Balance", "3,050.00"}, {"---"}, {"Net", "+150.00"}},
	})
	assert.Contains(t, out, "Balance")
	assert.Contains(t, out, "3,050.00")
	assert.Equal(t, 2, strings.Count(out, "├"))
}

func TestRenderTable_Alignment(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Date", "Note", "Amount"},
		Rows:    [][]string{{"2024-01-01", "x", "5.00"}, {"2024-01-02", "longer", "120.00"}},
		Left:    []int{1},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)
	// Left column pads after the text, numeric column before it.
	assert.Contains(t, lines[3], " x      ")
	assert.Contains(t, lines[3], "   5.00 ")
	assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(lines[4]))
}

func TestSignedKeepsText(t *testing.T) {
	assert.Contains(t, Signed(decimal.NewFromInt(-5), "-5.00"), "-5.00")
	assert.Contains(t, Signed(decimal.NewFromInt(5), "+5.00"), "+5.00")
}
