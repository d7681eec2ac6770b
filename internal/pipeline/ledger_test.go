package pipeline

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fincompass/internal/model"
)

func day(s string) time.Time {
	t, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func dp(s string) *time.Time {
	t := day(s)
	return &t
}

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func entry(date, cost, profit string) model.DailyEntry {
	return model.DailyEntry{
		Date:        day(date),
		OrderCount:  1,
		TotalCost:   d(cost),
		TotalProfit: d(profit),
	}
}

var defaultLedger = LedgerParams{PayoutDelayDays: 15, InitialCash: d("3000")}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

func TestBuildLedger_Empty(t *testing.T) {
	rows := BuildLedger(nil, nil, defaultLedger)
	assert.Empty(t, rows)

	pred := PredictGrowth(rows, GrowthParams{PayoutDelayDays: 15, IncrementBuffer: d("900")})
	assert.Equal(t, model.PredictionInsufficientData, pred.Status)
	assert.NotEmpty(t, pred.Message)
}

func TestBuildLedger_SingleEntry(t *testing.T) {
	rows := BuildLedger([]model.DailyEntry{entry("2024-01-01", "100", "50")}, nil, defaultLedger)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.True(t, r.HasEntry)
	assertDec(t, "100", r.DailyOutflow)
	assertDec(t, "0", r.NetScheduledInflow)
	assertDec(t, "0", r.DailyActualInflow)
	assertDec(t, "-100", r.DailyNetCashFlow)
	assertDec(t, "2900", r.BankBalance)
	assertDec(t, "50", r.CumulativeProfit)
}

func TestBuildLedger_ScheduledSettlement(t *testing.T) {
	entries := []model.DailyEntry{
		entry("2024-01-01", "100", "50"),
		{Date: day("2024-01-16")},
	}
	rows := BuildLedger(entries, nil, defaultLedger)
	require.Len(t, rows, 16)

	last := rows[15]
	assert.Equal(t, "2024-01-16", model.DayKey(last.Date))
	assertDec(t, "150", last.NetScheduledInflow)
	assertDec(t, "150", last.DailyNetCashFlow)
	assertDec(t, "3050", last.BankBalance)

	// gap days carry no entry and no flow
	gap := rows[7]
	assert.False(t, gap.HasEntry)
	assertDec(t, "0", gap.DailyNetCashFlow)
	assertDec(t, "2900", gap.BankBalance)
}

func TestBuildLedger_EarlyPayoutDeduction(t *testing.T) {
	entries := []model.DailyEntry{
		entry("2024-01-01", "100", "50"),
		{Date: day("2024-01-16")},
	}
	payouts := []model.PayoutAdjustment{
		{ID: 1, PayoutDate: day("2024-01-05"), OriginalOrderDate: dp("2024-01-01"), Amount: d("30")},
	}
	rows := BuildLedger(entries, payouts, defaultLedger)
	require.Len(t, rows, 16)

	jan5 := rows[4]
	assertDec(t, "30", jan5.ReceivedToday)
	assertDec(t, "30", jan5.DailyActualInflow)

	jan16 := rows[15]
	assertDec(t, "120", jan16.NetScheduledInflow)

	// the payout is received once and deducted once, so totals match the no-payout case
	assertDec(t, "3050", jan16.BankBalance)
}

func TestBuildLedger_UnknownOriginInflatesInflow(t *testing.T) {
	entries := []model.DailyEntry{
		entry("2024-01-01", "100", "50"),
		{Date: day("2024-01-16")},
	}
	payouts := []model.PayoutAdjustment{
		{ID: 1, PayoutDate: day("2024-01-05"), Amount: d("30")},
	}
	rows := BuildLedger(entries, payouts, defaultLedger)
	require.Len(t, rows, 16)

	assertDec(t, "150", rows[15].NetScheduledInflow)
	assertDec(t, "3080", rows[15].BankBalance)
}

func TestBuildLedger_SpanIncludesPayoutDatesOnly(t *testing.T) {
	entries := []model.DailyEntry{entry("2024-02-10", "10", "5")}
	payouts := []model.PayoutAdjustment{
		// origin before the first entry must not widen the span
		{ID: 1, PayoutDate: day("2024-02-12"), OriginalOrderDate: dp("2024-01-01"), Amount: d("1")},
	}
	rows := BuildLedger(entries, payouts, defaultLedger)
	require.Len(t, rows, 3)
	assert.Equal(t, "2024-02-10", model.DayKey(rows[0].Date))
	assert.Equal(t, "2024-02-12", model.DayKey(rows[2].Date))
}

func TestBuildLedger_PayoutOnly(t *testing.T) {
	payouts := []model.PayoutAdjustment{
		{ID: 1, PayoutDate: day("2024-03-01"), Amount: d("40")},
	}
	rows := BuildLedger(nil, payouts, defaultLedger)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].HasEntry)
	assertDec(t, "3040", rows[0].BankBalance)
}

func TestBuildLedger_RefundsAndOtherIncome(t *testing.T) {
	e := entry("2024-01-01", "100", "40")
	e.RefundsReceived = d("20")
	e.EstRefundProfitLoss = d("5")
	e.OtherIncome = d("7.5")
	rows := BuildLedger([]model.DailyEntry{e}, nil, defaultLedger)
	require.Len(t, rows, 1)

	assertDec(t, "27.5", rows[0].DailyActualInflow)
	assertDec(t, "-72.5", rows[0].DailyNetCashFlow)
	assertDec(t, "35", rows[0].CumulativeProfit)
}

func TestBuildLedger_ZeroDelaySettlesSameDay(t *testing.T) {
	rows := BuildLedger([]model.DailyEntry{entry("2024-01-01", "100", "50")}, nil,
		LedgerParams{PayoutDelayDays: 0, InitialCash: d("0")})
	require.Len(t, rows, 1)
	assertDec(t, "150", rows[0].NetScheduledInflow)
	assertDec(t, "50", rows[0].BankBalance)
}

func TestBuildLedger_NegativeDelayClamped(t *testing.T) {
	entries := []model.DailyEntry{entry("2024-01-01", "100", "50")}
	neg := BuildLedger(entries, nil, LedgerParams{PayoutDelayDays: -3, InitialCash: d("0")})
	zero := BuildLedger(entries, nil, LedgerParams{PayoutDelayDays: 0, InitialCash: d("0")})
	assert.Equal(t, zero, neg)
}

func TestBuildLedger_CenturiesWideSpan(t *testing.T) {
	entries := []model.DailyEntry{
		entry("1700-01-01", "1", "1"),
		entry("2024-01-01", "100", "50"),
	}
	rows := BuildLedger(entries, nil, defaultLedger)
	require.Len(t, rows, 118339)
	assert.Equal(t, day("1700-01-01"), rows[0].Date)
	assert.Equal(t, day("2024-01-01"), rows[len(rows)-1].Date)
	assert.True(t, rows[len(rows)-1].HasEntry)
}

// randomish fixture: unordered entries, payouts with and without origins.
func fixture() ([]model.DailyEntry, []model.PayoutAdjustment) {
	entries := []model.DailyEntry{
		entry("2024-03-20", "80", "30"),
		entry("2024-03-01", "100", "50"),
		entry("2024-03-05", "60", "25"),
		entry("2024-03-11", "120", "45"),
		entry("2024-03-02", "90", "40"),
	}
	entries[2].RefundsReceived = d("12")
	entries[2].EstRefundProfitLoss = d("3")
	entries[3].OtherIncome = d("4.25")
	payouts := []model.PayoutAdjustment{
		{ID: 1, PayoutDate: day("2024-03-08"), OriginalOrderDate: dp("2024-03-01"), Amount: d("70")},
		{ID: 2, PayoutDate: day("2024-03-09"), OriginalOrderDate: dp("2024-03-01"), Amount: d("10")},
		{ID: 3, PayoutDate: day("2024-03-25"), Amount: d("15")},
	}
	return entries, payouts
}

func TestBuildLedger_Properties(t *testing.T) {
	entries, payouts := fixture()
	p := LedgerParams{PayoutDelayDays: 7, InitialCash: d("500")}
	rows := BuildLedger(entries, payouts, p)
	require.NotEmpty(t, rows)

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, rows, BuildLedger(entries, payouts, p))
	})

	t.Run("continuous", func(t *testing.T) {
		assert.Equal(t, "2024-03-01", model.DayKey(rows[0].Date))
		assert.Equal(t, "2024-03-25", model.DayKey(rows[len(rows)-1].Date))
		for i := 1; i < len(rows); i++ {
			assert.Equal(t, rows[i-1].Date.AddDate(0, 0, 1), rows[i].Date)
		}
	})

	t.Run("balance recurrence", func(t *testing.T) {
		prev := p.InitialCash
		for _, r := range rows {
			assertDec(t, prev.Add(r.DailyNetCashFlow).String(), r.BankBalance, model.DayKey(r.Date))
			prev = r.BankBalance
		}
	})

	t.Run("profit recurrence", func(t *testing.T) {
		prev := decimal.Zero
		for _, r := range rows {
			want := prev.Add(r.DailyProfit).Sub(r.EstRefundProfitLoss)
			assertDec(t, want.String(), r.CumulativeProfit, model.DayKey(r.Date))
			prev = r.CumulativeProfit
		}
	})

	t.Run("delay offset", func(t *testing.T) {
		for i, r := range rows {
			if i < p.PayoutDelayDays {
				assertDec(t, "0", r.NetScheduledInflow, model.DayKey(r.Date))
			}
		}
		// 2024-03-01 settles on 2024-03-08, minus the 80 already paid early
		assertDec(t, "70", rows[7].NetScheduledInflow)
	})

	t.Run("deduction exclusivity", func(t *testing.T) {
		// only the known-origin payouts reduce scheduled inflow
		noPayouts := BuildLedger(entries, nil, p)
		totalWith, totalWithout := decimal.Zero, decimal.Zero
		for i := range rows {
			totalWith = totalWith.Add(rows[i].NetScheduledInflow)
		}
		for i := range noPayouts {
			totalWithout = totalWithout.Add(noPayouts[i].NetScheduledInflow)
		}
		assertDec(t, "80", totalWithout.Sub(totalWith))
	})
}
