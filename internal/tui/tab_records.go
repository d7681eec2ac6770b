package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fincompass/internal/cli"
	"github.com/theirongolddev/fincompass/internal/model"
	"github.com/theirongolddev/fincompass/internal/tui/components"
	"github.com/theirongolddev/fincompass/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// listWindow returns the [offset, end) slice of n rows that keeps cursor
// visible in a window of the given height.
func listWindow(cursor, n, visible int) (int, int) {
	offset := 0
	if cursor >= visible {
		offset = cursor - visible + 1
	}
	return offset, min(offset+visible, n)
}

func (a App) renderEntriesTab(cw, h int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if a.result == nil || len(a.result.Entries) == 0 {
		return components.ContentCard("Daily entries", muted.Render("No entries. Press [a] to add a day."), cw)
	}
	entries := a.result.Entries

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	innerW := components.CardInnerWidth(cw)
	header := fmt.Sprintf("  %-10s %6s %11s %11s %10s %10s %10s  %s",
		"Date", "Orders", "Cost", "Profit", "Refunds", "Est Loss", "Other", "Note")
	noteW := max(innerW-lipgloss.Width(header)+4, 4)

	var body strings.Builder
	body.WriteString(headerStyle.Render(truncStr(header, innerW)))
	body.WriteString("\n")
	body.WriteString(dimStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")

	visible := max(h-7, 3)
	offset, end := listWindow(a.entryCursor, len(entries), visible)
	for i := offset; i < end; i++ {
		e := entries[len(entries)-1-i] // newest first
		line := fmt.Sprintf("%-10s %6d %11s %11s %10s %10s %10s  %s",
			model.DayKey(e.Date), e.OrderCount,
			cli.FormatMoney(e.TotalCost), cli.FormatMoney(e.TotalProfit),
			cli.FormatMoney(e.RefundsReceived), cli.FormatMoney(e.EstRefundProfitLoss),
			cli.FormatMoney(e.OtherIncome), truncStr(e.Note, noteW))
		if i == a.entryCursor {
			body.WriteString(selectedStyle.Render(truncStr("▸ "+line, innerW)))
		} else {
			body.WriteString(rowStyle.Render(truncStr("  "+line, innerW)))
		}
		body.WriteString("\n")
	}
	body.WriteString(dimStyle.Render("[j/k] select  [a] add / overwrite  [d] delete selected"))

	return components.ContentCard(fmt.Sprintf("Daily entries (%d)", len(entries)), body.String(), cw)
}

func (a App) renderPayoutsTab(cw, h int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if a.result == nil || len(a.result.Payouts) == 0 {
		return components.ContentCard("Early payouts", muted.Render("No payouts recorded. Press [n] to add one."), cw)
	}
	payouts := a.result.Payouts

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	innerW := components.CardInnerWidth(cw)

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("  %6s  %-10s  %-10s  %12s", "ID", "Paid", "Origin", "Amount")))
	body.WriteString("\n")
	body.WriteString(dimStyle.Render(strings.Repeat("─", min(48, innerW))))
	body.WriteString("\n")

	visible := max(h-8, 3)
	offset, end := listWindow(a.payoutCursor, len(payouts), visible)
	for i := offset; i < end; i++ {
		po := payouts[len(payouts)-1-i] // newest first
		line := fmt.Sprintf("%6d  %-10s  %-10s  %12s",
			po.ID, model.DayKey(po.PayoutDate), po.OriginLabel(), cli.FormatMoney(po.Amount))
		switch {
		case i == a.payoutCursor:
			body.WriteString(selectedStyle.Render("▸ " + line))
		case !po.HasOrigin():
			body.WriteString(warnStyle.Render("  " + line))
		default:
			body.WriteString(rowStyle.Render("  " + line))
		}
		body.WriteString("\n")
	}

	if n := a.result.UnattributedPayouts(); n > 0 {
		body.WriteString(warnStyle.Render(truncStr(fmt.Sprintf("%d without origin date: they add inflow but never offset a settlement.", n), innerW)))
		body.WriteString("\n")
	}
	body.WriteString(dimStyle.Render("[j/k] select  [n] new payout  [d] delete selected"))

	return components.ContentCard(fmt.Sprintf("Early payouts (%d)", len(payouts)), body.String(), cw)
}
