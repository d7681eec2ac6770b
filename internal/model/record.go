// Package model defines domain types for fincompass records and the derived ledger.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the on-disk and on-screen calendar date format.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD", s)
	}
	return t, nil
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NearestDay rounds t to the closest midnight. Forecast dates carry a
// fractional day and are shown rounded.
func NearestDay(t time.Time) time.Time {
	return Day(t.Add(12 * time.Hour))
}

// DayKey returns the YYYY-MM-DD key for t.
func DayKey(t time.Time) string {
	return t.Format(DateLayout)
}

// DailyEntry holds the figures recorded for one calendar date.
// At most one entry exists per date; a later write replaces it entirely.
type DailyEntry struct {
	Date                time.Time       `json:"date"`
	OrderCount          int             `json:"order_count"`
	TotalCost           decimal.Decimal `json:"total_cost"`
	TotalProfit         decimal.Decimal `json:"total_profit"`
	RefundsReceived     decimal.Decimal `json:"refunds_received"`
	EstRefundProfitLoss decimal.Decimal `json:"estimated_profit_loss_from_refunds"`
	OtherIncome         decimal.Decimal `json:"other_income"`
	Note                string          `json:"note,omitempty"`
}

// PayoutAdjustment records money received from the marketplace outside
// the regular settlement schedule. OriginalOrderDate is nil when the
// order the money belongs to is unknown.
type PayoutAdjustment struct {
	ID                int64           `json:"id"`
	PayoutDate        time.Time       `json:"payout_date"`
	OriginalOrderDate *time.Time      `json:"original_order_date,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
}

// HasOrigin reports whether the payout is attributed to a known order date.
func (p PayoutAdjustment) HasOrigin() bool {
	return p.OriginalOrderDate != nil && !p.OriginalOrderDate.IsZero()
}

// OriginLabel returns the origin date or "unknown".
func (p PayoutAdjustment) OriginLabel() string {
	if !p.HasOrigin() {
		return "unknown"
	}
	return DayKey(*p.OriginalOrderDate)
}
