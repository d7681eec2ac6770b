package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fincompass/internal/model"
)

// Summarize totals the given ledger rows.
func Summarize(rows []model.LedgerRow) model.Summary {
	var s model.Summary
	if len(rows) == 0 {
		return s
	}

	s.Days = len(rows)
	s.FirstDate = rows[0].Date
	s.LastDate = rows[len(rows)-1].Date
	s.MinBankBalance = rows[0].BankBalance
	s.MaxBankBalance = rows[0].BankBalance

	for _, r := range rows {
		if r.HasEntry {
			s.DaysWithEntry++
		}
		s.Orders += r.OrderCount
		s.TotalCost = s.TotalCost.Add(r.TotalCost)
		s.TotalProfit = s.TotalProfit.Add(r.TotalProfit)
		s.RefundsReceived = s.RefundsReceived.Add(r.RefundsReceived)
		s.EstRefundLoss = s.EstRefundLoss.Add(r.EstRefundProfitLoss)
		s.OtherIncome = s.OtherIncome.Add(r.OtherIncome)
		s.PayoutsReceived = s.PayoutsReceived.Add(r.ReceivedToday)
		s.ScheduledInflow = s.ScheduledInflow.Add(r.NetScheduledInflow)
		s.NetCashFlow = s.NetCashFlow.Add(r.DailyNetCashFlow)

		if r.BankBalance.LessThan(s.MinBankBalance) {
			s.MinBankBalance = r.BankBalance
		}
		if r.BankBalance.GreaterThan(s.MaxBankBalance) {
			s.MaxBankBalance = r.BankBalance
		}
	}

	days := decimal.NewFromInt(int64(s.Days))
	s.AvgNetCashFlow = s.NetCashFlow.Div(days)
	s.OrdersPerDay = float64(s.Orders) / float64(s.Days)
	if s.Orders > 0 {
		s.ProfitPerOrder = s.TotalProfit.Div(decimal.NewFromInt(int64(s.Orders)))
	}

	return s
}

// AggregateWeeks rolls ledger rows into Monday-started weeks, oldest first.
// EndBalance is the bank balance on the last ledger day of each week.
func AggregateWeeks(rows []model.LedgerRow) []model.WeeklyStats {
	var weeks []model.WeeklyStats
	for _, r := range rows {
		start := weekStart(r.Date)
		if len(weeks) == 0 || !weeks[len(weeks)-1].WeekStart.Equal(start) {
			weeks = append(weeks, model.WeeklyStats{WeekStart: start})
		}
		w := &weeks[len(weeks)-1]
		w.Orders += r.OrderCount
		w.Cost = w.Cost.Add(r.TotalCost)
		w.Profit = w.Profit.Add(r.TotalProfit)
		w.NetCashFlow = w.NetCashFlow.Add(r.DailyNetCashFlow)
		w.EndBalance = r.BankBalance
	}
	return weeks
}

func weekStart(t time.Time) time.Time {
	d := model.Day(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return d.AddDate(0, 0, -offset)
}

// FilterByTime returns rows whose date falls within [since, until].
// A zero bound is open.
func FilterByTime(rows []model.LedgerRow, since, until time.Time) []model.LedgerRow {
	if since.IsZero() && until.IsZero() {
		return rows
	}

	var result []model.LedgerRow
	for _, r := range rows {
		if !since.IsZero() && r.Date.Before(model.Day(since)) {
			continue
		}
		if !until.IsZero() && r.Date.After(model.Day(until)) {
			continue
		}
		result = append(result, r)
	}
	return result
}

// Series extracts one decimal column of the ledger as float64 values for charting.
func Series(rows []model.LedgerRow, field func(model.LedgerRow) decimal.Decimal) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = field(r).InexactFloat64()
	}
	return out
}
