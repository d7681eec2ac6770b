package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fincompass/internal/cli"
	"github.com/theirongolddev/fincompass/internal/tui/components"
	"github.com/theirongolddev/fincompass/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// ledgerColumn is one money column of the ledger table. Compact layouts
// drop the columns marked wide.
type ledgerColumn struct {
	title string
	width int
	wide  bool
}

var ledgerColumns = []ledgerColumn{
	{"Cost", 11, false},
	{"Profit", 10, false},
	{"Refunds", 9, true},
	{"Other", 9, true},
	{"Sched In", 11, true},
	{"Early", 9, true},
	{"Net Flow", 11, false},
	{"Balance", 12, false},
	{"Cum Profit", 12, false},
}

func (a App) renderLedgerTab(cw, h int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if a.result == nil || len(a.result.Ledger) == 0 {
		return components.ContentCard("Ledger", muted.Render("Ledger is empty."), cw)
	}
	rows := a.result.Ledger

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	balanceStyle := lipgloss.NewStyle().Foreground(t.BalanceBright).Background(t.Surface)

	compact := a.isCompactLayout()
	cols := make([]ledgerColumn, 0, len(ledgerColumns))
	for _, c := range ledgerColumns {
		if compact && c.wide {
			continue
		}
		cols = append(cols, c)
	}

	var hdr strings.Builder
	fmt.Fprintf(&hdr, "%-14s %6s", "Date", "Orders")
	for _, c := range cols {
		fmt.Fprintf(&hdr, " %*s", c.width, c.title)
	}

	innerW := components.CardInnerWidth(cw)
	visible := max(h-6, 3) // card border (2) + title (1) + header (2) + footer (1)

	// The scroll position is the top row; keep the window filled at the end.
	offset := min(a.ledgerScroll, max(len(rows)-visible, 0))
	end := min(offset+visible, len(rows))

	var body strings.Builder
	body.WriteString(headerStyle.Render(truncStr(hdr.String(), innerW)))
	body.WriteString("\n")
	body.WriteString(dimStyle.Render(strings.Repeat("─", min(lipgloss.Width(hdr.String()), innerW))))
	body.WriteString("\n")

	for i := offset; i < end; i++ {
		r := rows[i]
		orders := "-"
		if r.HasEntry {
			orders = fmt.Sprintf("%d", r.OrderCount)
		}
		values := map[string]string{
			"Cost":       cli.FormatMoney(r.TotalCost),
			"Profit":     cli.FormatMoney(r.TotalProfit),
			"Refunds":    cli.FormatMoney(r.RefundsReceived),
			"Other":      cli.FormatMoney(r.OtherIncome),
			"Sched In":   cli.FormatMoney(r.NetScheduledInflow),
			"Early":      cli.FormatMoney(r.ReceivedToday),
			"Net Flow":   cli.FormatSignedMoney(r.DailyNetCashFlow),
			"Balance":    cli.FormatMoney(r.BankBalance),
			"Cum Profit": cli.FormatMoney(r.CumulativeProfit),
		}

		style := rowStyle
		if !r.HasEntry {
			style = dimStyle
		}
		line := style.Render(fmt.Sprintf("%-14s %6s", cli.FormatDate(r.Date)+" "+cli.FormatDayOfWeek(int(r.Date.Weekday())), orders))
		for _, c := range cols {
			cell := fmt.Sprintf(" %*s", c.width, values[c.title])
			switch c.title {
			case "Net Flow":
				tone := theme.ToneOf(r.DailyNetCashFlow.InexactFloat64())
				line += lipgloss.NewStyle().Foreground(t.Color(tone)).Background(t.Surface).Render(cell)
			case "Balance":
				if r.BankBalance.IsNegative() {
					line += lipgloss.NewStyle().Foreground(t.Loss).Background(t.Surface).Bold(true).Render(cell)
				} else {
					line += balanceStyle.Render(cell)
				}
			default:
				line += style.Render(cell)
			}
		}
		body.WriteString(line)
		body.WriteString("\n")
	}

	body.WriteString(dimStyle.Render(fmt.Sprintf("rows %d-%d of %d  [j/k] scroll  [g/G] top/bottom", offset+1, end, len(rows))))

	title := fmt.Sprintf("Ledger  %s to %s", cli.FormatDate(rows[0].Date), cli.FormatDate(rows[len(rows)-1].Date))
	return components.ContentCard(title, body.String(), cw)
}
