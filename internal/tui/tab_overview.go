package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fincompass/internal/cli"
	"github.com/theirongolddev/fincompass/internal/model"
	"github.com/theirongolddev/fincompass/internal/pipeline"
	"github.com/theirongolddev/fincompass/internal/tui/components"
	"github.com/theirongolddev/fincompass/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const sparkDays = 30

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	last, ok := a.latest()
	if !ok {
		return components.ContentCard("Overview",
			muted.Render("No records yet. Press [a] to add a day or [n] to record a payout."), cw)
	}

	ledger := a.result.Ledger
	pred := a.result.Prediction
	delay := a.cfg.Finance.PayoutDelayDays
	var b strings.Builder

	// Row 1: snapshot cards
	netDelta := ""
	if pred.Status != model.PredictionInsufficientData {
		netDelta = "avg " + cli.FormatSignedMoney(pred.AvgDailyNetCashFlow) + "/day"
	}
	cards := []components.Metric{
		{
			Label: "Bank balance",
			Value: cli.FormatMoney(last.BankBalance),
			Delta: balanceTrend(ledger),
			Tone:  theme.ToneOf(last.BankBalance.InexactFloat64()),
		},
		{
			Label: "Cumulative profit",
			Value: cli.FormatMoney(last.CumulativeProfit),
			Delta: "net of est. refund loss",
			Tone:  theme.ToneOf(last.CumulativeProfit.InexactFloat64()),
		},
		{
			Label: "Net cash flow (cut-off)",
			Value: cli.FormatSignedMoney(last.DailyNetCashFlow),
			Delta: netDelta,
			Tone:  theme.ToneOf(last.DailyNetCashFlow.InexactFloat64()),
		},
		{
			Label: "Ledger days",
			Value: cli.FormatNumber(int64(len(ledger))),
			Delta: fmt.Sprintf("%d entries, %d payouts", len(a.result.Entries), len(a.result.Payouts)),
		},
	}
	if a.isCompactLayout() {
		b.WriteString(components.MetricCardRow(cards[:2], cw))
		b.WriteString("\n")
		b.WriteString(components.MetricCardRow(cards[2:], cw))
	} else {
		b.WriteString(components.MetricCardRow(cards, cw))
	}
	b.WriteString("\n")

	// Row 2: forecast + cut-off day detail
	halves := components.LayoutRow(cw, 2)
	forecast := components.ContentCard("Growth forecast", a.renderForecastBody(pred, len(ledger), delay, halves[0]), halves[0])
	cutoff := components.ContentCard("Cut-off day "+model.DayKey(last.Date), renderDayDetail(last), halves[1])
	b.WriteString(components.CardRow([]string{forecast, cutoff}))
	b.WriteString("\n")

	// Row 3: recent trend sparklines
	recent := pipeline.Tail(ledger, sparkDays)
	trendBody := sparkRow("Balance   ", pipeline.Series(recent, func(r model.LedgerRow) decimal.Decimal { return r.BankBalance }), t.Balance) + "\n" +
		sparkRow("Net flow  ", pipeline.Series(recent, func(r model.LedgerRow) decimal.Decimal { return r.DailyNetCashFlow }), t.Gain) + "\n" +
		sparkRow("Cum profit", pipeline.Series(recent, func(r model.LedgerRow) decimal.Decimal { return r.CumulativeProfit }), t.Profit)
	b.WriteString(components.ContentCard(fmt.Sprintf("Last %d days", len(recent)), trendBody, cw))

	if n := a.result.UnattributedPayouts(); n > 0 {
		warn := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface)
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Heads up",
			warn.Render(fmt.Sprintf("%d payout(s) have no original order date; future balances may read high.", n)), cw))
	}

	return b.String()
}

func (a App) renderForecastBody(pred model.Prediction, ledgerDays, delay, outerW int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	innerW := components.CardInnerWidth(outerW)
	barW := max(innerW-32, 8)

	line := func(k, v string) string {
		return label.Render(fmt.Sprintf("%-24s", k)) + value.Render(v) + "\n"
	}

	var b strings.Builder
	switch pred.Status {
	case model.PredictionOK:
		b.WriteString(line("Avg daily net cash flow", cli.FormatSignedMoney(pred.AvgDailyNetCashFlow)))
		b.WriteString(line("Days to next increment", cli.FormatDays(pred.DaysToNextIncrement)))
		b.WriteString(line("Predicted date", cli.FormatPredictedDate(pred.PredictedDate)))
		b.WriteString(line("Target daily orders", fmt.Sprintf("%d", pred.TargetOrderCount)))
		if pred.Message != "" {
			b.WriteString(label.Render(truncStr(pred.Message, innerW)))
			b.WriteString("\n")
		}
	case model.PredictionNegativeTrend:
		warn := lipgloss.NewStyle().Foreground(t.Loss).Background(t.Surface)
		b.WriteString(line("Avg daily net cash flow", cli.FormatSignedMoney(pred.AvgDailyNetCashFlow)))
		b.WriteString(warn.Render(truncStr(pred.Message, innerW)))
		b.WriteString("\n")
	default:
		b.WriteString(label.Render(truncStr(pred.Message, innerW)))
		b.WriteString("\n")
	}

	need := delay + 1
	b.WriteString(components.GaugeBar("Data", float64(ledgerDays)/float64(need),
		fmt.Sprintf("%d of %d days", min(ledgerDays, need), need), 6, barW))
	if last, ok := a.latest(); ok && a.cfg.Finance.IncrementBuffer.IsPositive() {
		buffer := a.cfg.Finance.IncrementBuffer
		b.WriteString("\n")
		b.WriteString(components.GaugeBar("Buffer", last.BankBalance.Div(buffer).InexactFloat64(),
			"of "+cli.FormatMoney(buffer), 6, barW))
	}
	return b.String()
}

func renderDayDetail(r model.LedgerRow) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	signed := func(d decimal.Decimal) string {
		return lipgloss.NewStyle().Foreground(t.Color(theme.ToneOf(d.InexactFloat64()))).
			Background(t.Surface).Render(cli.FormatSignedMoney(d))
	}

	rows := []struct {
		k string
		v string
	}{
		{"Orders", value.Render(fmt.Sprintf("%d", r.OrderCount))},
		{"Cost", value.Render(cli.FormatMoney(r.TotalCost))},
		{"Profit", value.Render(cli.FormatMoney(r.TotalProfit))},
		{"Refunds", value.Render(cli.FormatMoney(r.RefundsReceived) + "  (est. loss " + cli.FormatMoney(r.EstRefundProfitLoss) + ")")},
		{"Other income", value.Render(cli.FormatMoney(r.OtherIncome))},
		{"Scheduled inflow", value.Render(cli.FormatMoney(r.NetScheduledInflow))},
		{"Early payouts", value.Render(cli.FormatMoney(r.ReceivedToday))},
		{"Net cash flow", signed(r.DailyNetCashFlow)},
	}

	var b strings.Builder
	for i, row := range rows {
		b.WriteString(label.Render(fmt.Sprintf("%-18s", row.k)))
		b.WriteString(row.v)
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	if r.Note != "" {
		b.WriteString("\n")
		b.WriteString(label.Render("Note: " + r.Note))
	}
	return b.String()
}

func sparkRow(name string, values []float64, color lipgloss.Color) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	if len(values) == 0 {
		return label.Render(name)
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return label.Render(name+"  ") + components.Sparkline(values, color) +
		dim.Render(fmt.Sprintf("  %s .. %s", cli.FormatCompact(lo), cli.FormatCompact(hi)))
}

// balanceTrend compares the cut-off balance with the one a week earlier.
func balanceTrend(ledger []model.LedgerRow) string {
	const week = 7
	last := ledger[len(ledger)-1]
	if len(ledger) <= week {
		return "cut-off " + model.DayKey(last.Date)
	}
	prev := ledger[len(ledger)-1-week]
	return cli.FormatDelta(last.BankBalance, prev.BankBalance) + " vs 7 days ago"
}
