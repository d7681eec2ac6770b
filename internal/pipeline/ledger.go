// Package pipeline rebuilds the cash-flow ledger and growth forecast from raw records.
package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fincompass/internal/model"
)

// LedgerParams configures ledger reconstruction.
type LedgerParams struct {
	// PayoutDelayDays is how long the marketplace holds an order's
	// cost+profit before its scheduled settlement.
	PayoutDelayDays int
	// InitialCash is the bank balance before the first ledger day.
	InitialCash decimal.Decimal
}

// BuildLedger reconstructs a dense, date-continuous ledger from sparse daily
// entries and payout adjustments. The span runs from the earliest to the
// latest entry date or payout date; original order dates do not widen it.
// It returns nil when there are no dates at all.
func BuildLedger(entries []model.DailyEntry, payouts []model.PayoutAdjustment, p LedgerParams) []model.LedgerRow {
	first, last, ok := ledgerSpan(entries, payouts)
	if !ok {
		return nil
	}

	delay := p.PayoutDelayDays
	if delay < 0 {
		delay = 0
	}

	byDay := make(map[string]model.DailyEntry, len(entries))
	for _, e := range entries {
		byDay[model.DayKey(model.Day(e.Date))] = e
	}
	received := receivedByDay(payouts)
	deducted := deductedByDay(payouts)

	n := daysBetween(first, last) + 1
	rows := make([]model.LedgerRow, n)
	for i := range rows {
		day := first.AddDate(0, 0, i)
		if e, ok := byDay[model.DayKey(day)]; ok {
			rows[i].DailyEntry = e
			rows[i].HasEntry = true
		}
		rows[i].Date = day
	}

	balance := p.InitialCash
	cumProfit := decimal.Zero
	for i := range rows {
		r := &rows[i]
		key := model.DayKey(r.Date)

		r.DailyOutflow = r.TotalCost

		// rows are dense, so the settlement source is exactly delay rows back
		r.NetScheduledInflow = decimal.Zero
		if j := i - delay; j >= 0 {
			src := rows[j]
			gross := src.TotalCost.Add(src.TotalProfit)
			r.NetScheduledInflow = gross.Sub(deducted[model.DayKey(src.Date)])
		}

		r.ReceivedToday = received[key]
		r.DailyActualInflow = r.NetScheduledInflow.
			Add(r.ReceivedToday).
			Add(r.RefundsReceived).
			Add(r.OtherIncome)
		r.DailyNetCashFlow = r.DailyActualInflow.Sub(r.DailyOutflow)

		balance = balance.Add(r.DailyNetCashFlow)
		r.BankBalance = balance

		r.DailyProfit = r.TotalProfit
		cumProfit = cumProfit.Add(r.DailyProfit).Sub(r.EstRefundProfitLoss)
		r.CumulativeProfit = cumProfit
	}

	return rows
}

// receivedByDay sums payout amounts by the date the money arrived.
func receivedByDay(payouts []model.PayoutAdjustment) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, po := range payouts {
		key := model.DayKey(model.Day(po.PayoutDate))
		out[key] = out[key].Add(po.Amount)
	}
	return out
}

// deductedByDay sums payout amounts by original order date. Payouts with an
// unknown origin never deduct anything.
func deductedByDay(payouts []model.PayoutAdjustment) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, po := range payouts {
		if !po.HasOrigin() {
			continue
		}
		key := model.DayKey(model.Day(*po.OriginalOrderDate))
		out[key] = out[key].Add(po.Amount)
	}
	return out
}

func ledgerSpan(entries []model.DailyEntry, payouts []model.PayoutAdjustment) (time.Time, time.Time, bool) {
	var first, last time.Time
	seen := false
	observe := func(t time.Time) {
		d := model.Day(t)
		if !seen || d.Before(first) {
			first = d
		}
		if !seen || d.After(last) {
			last = d
		}
		seen = true
	}
	for _, e := range entries {
		observe(e.Date)
	}
	for _, po := range payouts {
		observe(po.PayoutDate)
	}
	return first, last, seen
}

func daysBetween(from, to time.Time) int {
	const secondsPerDay = 24 * 60 * 60
	from, to = model.Day(from), model.Day(to)
	return int((to.Unix() - from.Unix()) / secondsPerDay)
}

// Tail returns the last n rows of a ledger, or all of them when n <= 0.
func Tail(rows []model.LedgerRow, n int) []model.LedgerRow {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	return rows[len(rows)-n:]
}

// Latest returns the final ledger row.
func Latest(rows []model.LedgerRow) (model.LedgerRow, bool) {
	if len(rows) == 0 {
		return model.LedgerRow{}, false
	}
	return rows[len(rows)-1], true
}
