package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fincompass/internal/model"
	"github.com/theirongolddev/fincompass/internal/pipeline"
	"github.com/theirongolddev/fincompass/internal/tui/components"
	"github.com/theirongolddev/fincompass/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// minChartRows is the smallest ledger worth charting.
const minChartRows = 2

func (a App) renderChartsTab(cw, h int) string {
	t := theme.Active

	if a.result == nil || len(a.result.Ledger) < minChartRows {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		return components.ContentCard("Charts", muted.Render("Charts need at least two days of data."), cw)
	}

	rows := a.result.Ledger
	labels := ChartDateLabels(rows)
	innerW := components.CardInnerWidth(cw)

	balance := pipeline.Series(rows, func(r model.LedgerRow) decimal.Decimal { return r.BankBalance })
	net := pipeline.Series(rows, func(r model.LedgerRow) decimal.Decimal { return r.DailyNetCashFlow })
	profit := pipeline.Series(rows, func(r model.LedgerRow) decimal.Decimal { return r.CumulativeProfit })

	// Three stacked cards, each with border (2) + title (1) + x labels (2).
	chartH := max((h-3*5)/3, 4)
	if a.isCompactLayout() {
		chartH = max(chartH-1, 3)
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Bank balance",
		components.BarChart(balance, labels, t.Balance, innerW, chartH), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Daily net cash flow",
		components.SignedBarChart(net, labels, t.Gain, t.Loss, innerW, chartH), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard(fmt.Sprintf("Cumulative profit (%d days)", len(rows)),
		components.BarChart(profit, labels, t.Profit, innerW, chartH), cw))
	return b.String()
}
