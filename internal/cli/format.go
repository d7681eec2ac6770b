// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fincompass/internal/model"
)

// FormatMoney formats an amount with two decimals and comma separators.
// e.g., 1234567.891 -> "1,234,567.89", -12.5 -> "-12.50"
func FormatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		// beyond int64; leave ungrouped
		return d.StringFixed(2)
	}
	out := FormatNumber(n) + "." + frac
	if d.Round(2).IsNegative() {
		return "-" + out
	}
	return out
}

// FormatSignedMoney is FormatMoney with an explicit "+" on non-negative amounts.
func FormatSignedMoney(d decimal.Decimal) string {
	if d.Round(2).IsNegative() {
		return FormatMoney(d)
	}
	return "+" + FormatMoney(d)
}

// FormatCompact formats an amount with human-readable suffixes for chart axes.
// e.g., 1234 -> "1.2K", 1234567 -> "1.2M"
func FormatCompact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", v/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	default:
		return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDays formats a fractional day count, e.g. 9 -> "9.0 days", 1 -> "1.0 day".
func FormatDays(days float64) string {
	if math.Abs(days-1) < 0.05 {
		return "1.0 day"
	}
	return fmt.Sprintf("%.1f days", days)
}

// FormatDate formats a date as YYYY-MM-DD, or "-" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return model.DayKey(t)
}

// FormatPredictedDate rounds a fractional predicted time to the nearest day.
func FormatPredictedDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return model.DayKey(model.NearestDay(t))
}

// FormatDelta formats the change from previous to current with a sign.
func FormatDelta(current, previous decimal.Decimal) string {
	return FormatSignedMoney(current.Sub(previous))
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}
