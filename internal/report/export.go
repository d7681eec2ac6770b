// Package report exports the ledger and forecast as spreadsheets.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/fincompass/internal/model"
)

const (
	ledgerSheet     = "Ledger"
	predictionSheet = "Prediction"
)

// LedgerHeaders are the column names shared by every export format.
var LedgerHeaders = []string{
	"date", "has_entry", "order_count",
	"total_cost", "total_profit", "refunds_received", "estimated_profit_loss_from_refunds", "other_income",
	"daily_outflow", "net_scheduled_inflow", "received_today", "daily_actual_inflow",
	"daily_net_cash_flow", "bank_balance", "daily_profit", "cumulative_profit", "note",
}

// first money column (total_cost) and last (cumulative_profit), 1-based
const (
	firstMoneyCol = 4
	lastMoneyCol  = 16
)

func moneyColumns(r model.LedgerRow) []decimal.Decimal {
	return []decimal.Decimal{
		r.TotalCost, r.TotalProfit, r.RefundsReceived, r.EstRefundProfitLoss, r.OtherIncome,
		r.DailyOutflow, r.NetScheduledInflow, r.ReceivedToday, r.DailyActualInflow,
		r.DailyNetCashFlow, r.BankBalance, r.DailyProfit, r.CumulativeProfit,
	}
}

// WriteXLSX writes a workbook with a "Ledger" sheet (one row per ledger day)
// and a "Prediction" sheet holding the forecast.
func WriteXLSX(w io.Writer, rows []model.LedgerRow, pred model.Prediction) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return fmt.Errorf("naming ledger sheet: %w", err)
	}
	if _, err := f.NewSheet(predictionSheet); err != nil {
		return fmt.Errorf("adding prediction sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("money style: %w", err)
	}

	if err := writeLedgerSheet(f, rows, headerStyle, moneyStyle); err != nil {
		return err
	}
	if err := writePredictionSheet(f, pred, headerStyle); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeLedgerSheet(f *excelize.File, rows []model.LedgerRow, headerStyle, moneyStyle int) error {
	header := make([]interface{}, len(LedgerHeaders))
	for i, h := range LedgerHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(ledgerSheet, "A1", &header); err != nil {
		return fmt.Errorf("ledger header: %w", err)
	}

	for i, r := range rows {
		values := []interface{}{model.DayKey(r.Date), r.HasEntry, r.OrderCount}
		for _, m := range moneyColumns(r) {
			values = append(values, m.InexactFloat64())
		}
		values = append(values, r.Note)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ledgerSheet, cell, &values); err != nil {
			return fmt.Errorf("ledger row %s: %w", model.DayKey(r.Date), err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(LedgerHeaders))
	if err := f.SetCellStyle(ledgerSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	if len(rows) > 0 {
		from, _ := excelize.CoordinatesToCellName(firstMoneyCol, 2)
		to, _ := excelize.CoordinatesToCellName(lastMoneyCol, len(rows)+1)
		if err := f.SetCellStyle(ledgerSheet, from, to, moneyStyle); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(ledgerSheet, "A", lastCol, 14); err != nil {
		return err
	}
	return f.SetPanes(ledgerSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writePredictionSheet(f *excelize.File, pred model.Prediction, headerStyle int) error {
	kv := [][]interface{}{
		{"field", "value"},
		{"status", string(pred.Status)},
		{"message", pred.Message},
		{"stable_days", pred.StableDays},
		{"avg_daily_net_cash_flow", pred.AvgDailyNetCashFlow.InexactFloat64()},
	}
	if pred.OK() {
		kv = append(kv,
			[]interface{}{"days_to_next_increment", pred.DaysToNextIncrement},
			[]interface{}{"predicted_date", model.DayKey(model.NearestDay(pred.PredictedDate))},
			[]interface{}{"target_order_count", pred.TargetOrderCount},
		)
	}

	for i := range kv {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(predictionSheet, cell, &kv[i]); err != nil {
			return fmt.Errorf("prediction row: %w", err)
		}
	}
	if err := f.SetCellStyle(predictionSheet, "A1", "B1", headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(predictionSheet, "A", "B", 26)
}

// WriteCSV writes the ledger with the same columns as the xlsx "Ledger" sheet.
// Amounts keep their exact decimal text.
func WriteCSV(w io.Writer, rows []model.LedgerRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(LedgerHeaders); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range rows {
		rec := []string{model.DayKey(r.Date), strconv.FormatBool(r.HasEntry), strconv.Itoa(r.OrderCount)}
		for _, m := range moneyColumns(r) {
			rec = append(rec, m.StringFixed(2))
		}
		rec = append(rec, r.Note)
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
