package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/fincompass/internal/model"
	"github.com/theirongolddev/fincompass/internal/pipeline"
)

// RenderReport renders the latest position, the growth forecast and the
// cut-off day detail.
func RenderReport(res *pipeline.LoadResult, delay int) string {
	last, ok := res.Latest()
	if !ok {
		return Muted("  No records yet. Add a daily entry or payout first.") + "\n"
	}

	var b strings.Builder
	b.WriteString(RenderTitle(fmt.Sprintf("Finance Report  |  through %s", FormatDate(last.Date))))
	b.WriteString("\n\n")

	b.WriteString(RenderTable(Table{
		Title:   "Position",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Cut-off date", FormatDate(last.Date)},
			{"Bank balance", FormatMoney(last.BankBalance)},
			{"Cumulative profit", FormatMoney(last.CumulativeProfit)},
			{"Ledger days", strconv.Itoa(len(res.Ledger))},
		},
	}))
	b.WriteString("\n")

	b.WriteString(RenderPrediction(res.Prediction, len(res.Ledger), delay))
	b.WriteString("\n")

	b.WriteString(RenderTable(Table{
		Title:   "Cut-off day detail",
		Headers: []string{"Item", "Amount"},
		Rows: [][]string{
			{"Orders", strconv.Itoa(last.OrderCount)},
			{"Cost (outflow)", FormatMoney(last.TotalCost)},
			{"Profit", FormatMoney(last.TotalProfit)},
			{"Refunds received", FormatMoney(last.RefundsReceived)},
			{"Est. profit lost to refunds", FormatMoney(last.EstRefundProfitLoss)},
			{"Other income", FormatMoney(last.OtherIncome)},
			{"---"},
			{"Scheduled settlement", FormatMoney(last.NetScheduledInflow)},
			{"Early payouts received", FormatMoney(last.ReceivedToday)},
			{"Net cash flow", Signed(last.DailyNetCashFlow, FormatSignedMoney(last.DailyNetCashFlow))},
		},
	}))

	if n := res.UnattributedPayouts(); n > 0 {
		b.WriteString("\n")
		b.WriteString(Warn(fmt.Sprintf("%d payout(s) have no original order date; future balances may read high.", n)))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderPrediction renders the growth forecast block.
func RenderPrediction(pred model.Prediction, ledgerDays, delay int) string {
	var rows [][]string
	switch pred.Status {
	case model.PredictionOK:
		rows = [][]string{
			{"Avg daily net cash flow", FormatSignedMoney(pred.AvgDailyNetCashFlow)},
			{"Stable-period days", strconv.Itoa(pred.StableDays)},
			{"Days to next increment", FormatDays(pred.DaysToNextIncrement)},
			{"Predicted date", FormatPredictedDate(pred.PredictedDate)},
			{"Target daily orders", strconv.Itoa(pred.TargetOrderCount)},
		}
	case model.PredictionNegativeTrend:
		rows = [][]string{
			{"Avg daily net cash flow", FormatSignedMoney(pred.AvgDailyNetCashFlow)},
			{"Stable-period days", strconv.Itoa(pred.StableDays)},
		}
	default:
		rows = [][]string{
			{"Data collected", RenderProgressBar(ledgerDays, delay+1, 20)},
		}
	}

	var b strings.Builder
	b.WriteString(RenderTable(Table{
		Title:   "Growth forecast",
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))
	if pred.Message != "" {
		if pred.Status == model.PredictionNegativeTrend {
			b.WriteString(Warn(pred.Message))
		} else {
			b.WriteString(Muted("  " + pred.Message))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderHistory renders the full ledger, one row per day.
func RenderHistory(rows []model.LedgerRow) string {
	if len(rows) == 0 {
		return Muted("  Ledger is empty.") + "\n"
	}

	t := Table{
		Title: fmt.Sprintf("Ledger  %s to %s", FormatDate(rows[0].Date), FormatDate(rows[len(rows)-1].Date)),
		Headers: []string{
			"Date", "Orders", "Cost", "Profit", "Refunds", "Est Loss", "Other",
			"Scheduled", "Early", "Net Flow", "Balance", "Cum Profit", "Note",
		},
	}
	for _, r := range rows {
		orders := "-"
		if r.HasEntry {
			orders = strconv.Itoa(r.OrderCount)
		}
		t.Rows = append(t.Rows, []string{
			FormatDate(r.Date) + " " + FormatDayOfWeek(int(r.Date.Weekday())),
			orders,
			FormatMoney(r.TotalCost),
			FormatMoney(r.TotalProfit),
			FormatMoney(r.RefundsReceived),
			FormatMoney(r.EstRefundProfitLoss),
			FormatMoney(r.OtherIncome),
			FormatMoney(r.NetScheduledInflow),
			FormatMoney(r.ReceivedToday),
			Signed(r.DailyNetCashFlow, FormatSignedMoney(r.DailyNetCashFlow)),
			FormatMoney(r.BankBalance),
			FormatMoney(r.CumulativeProfit),
			truncate(r.Note, 24),
		})
	}
	return RenderTable(t)
}

// RenderSummary renders totals for a run of ledger rows.
func RenderSummary(s model.Summary) string {
	return RenderTable(Table{
		Title:   "Totals",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Days (with entry)", fmt.Sprintf("%d (%d)", s.Days, s.DaysWithEntry)},
			{"Orders", FormatNumber(int64(s.Orders))},
			{"Orders / day", fmt.Sprintf("%.1f", s.OrdersPerDay)},
			{"Cost", FormatMoney(s.TotalCost)},
			{"Profit", FormatMoney(s.TotalProfit)},
			{"Profit / order", FormatMoney(s.ProfitPerOrder)},
			{"Refunds (est. loss)", fmt.Sprintf("%s (%s)", FormatMoney(s.RefundsReceived), FormatMoney(s.EstRefundLoss))},
			{"Other income", FormatMoney(s.OtherIncome)},
			{"Early payouts", FormatMoney(s.PayoutsReceived)},
			{"---"},
			{"Net cash flow", FormatSignedMoney(s.NetCashFlow)},
			{"Avg net / day", FormatSignedMoney(s.AvgNetCashFlow)},
			{"Balance low / high", FormatMoney(s.MinBankBalance) + " / " + FormatMoney(s.MaxBankBalance)},
		},
	})
}

// RenderWeekly renders the ledger rolled up by week.
func RenderWeekly(weeks []model.WeeklyStats) string {
	if len(weeks) == 0 {
		return ""
	}
	t := Table{
		Title:   "By week",
		Headers: []string{"Week of", "Orders", "Cost", "Profit", "Net Flow", "End Balance"},
	}
	for _, w := range weeks {
		t.Rows = append(t.Rows, []string{
			FormatDate(w.WeekStart),
			FormatNumber(int64(w.Orders)),
			FormatMoney(w.Cost),
			FormatMoney(w.Profit),
			Signed(w.NetCashFlow, FormatSignedMoney(w.NetCashFlow)),
			FormatMoney(w.EndBalance),
		})
	}
	return RenderTable(t)
}

// RenderEntries renders raw daily entries as stored.
func RenderEntries(entries []model.DailyEntry) string {
	if len(entries) == 0 {
		return Muted("  No daily entries.") + "\n"
	}
	t := Table{
		Title:   fmt.Sprintf("Daily entries (%d)", len(entries)),
		Headers: []string{"Date", "Orders", "Cost", "Profit", "Refunds", "Est Loss", "Other", "Note"},
		Left:    []int{7},
	}
	for _, e := range entries {
		t.Rows = append(t.Rows, []string{
			FormatDate(e.Date),
			strconv.Itoa(e.OrderCount),
			FormatMoney(e.TotalCost),
			FormatMoney(e.TotalProfit),
			FormatMoney(e.RefundsReceived),
			FormatMoney(e.EstRefundProfitLoss),
			FormatMoney(e.OtherIncome),
			truncate(e.Note, 30),
		})
	}
	return RenderTable(t)
}

// RenderPayouts renders payout adjustments, id ascending.
func RenderPayouts(payouts []model.PayoutAdjustment) string {
	if len(payouts) == 0 {
		return Muted("  No payout adjustments.") + "\n"
	}
	t := Table{
		Title:   fmt.Sprintf("Payout adjustments (%d)", len(payouts)),
		Headers: []string{"ID", "Received", "For orders of", "Amount"},
		Left:    []int{1, 2},
	}
	for _, po := range payouts {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(po.ID, 10),
			FormatDate(po.PayoutDate),
			po.OriginLabel(),
			FormatMoney(po.Amount),
		})
	}
	return RenderTable(t)
}

// UnknownOriginWarning is shown when a payout is recorded without an origin date.
const UnknownOriginWarning = "No original order date: this payout counts as inflow but cannot offset a future settlement, so later balances and forecasts may read high."

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
