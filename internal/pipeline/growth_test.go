package pipeline

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fincompass/internal/model"
)

func constantLedger(n int, net string) []model.LedgerRow {
	rows := make([]model.LedgerRow, n)
	start := day("2024-01-01")
	for i := range rows {
		rows[i].Date = start.AddDate(0, 0, i)
		rows[i].OrderCount = 4
		rows[i].DailyNetCashFlow = d(net)
	}
	return rows
}

var defaultGrowth = GrowthParams{PayoutDelayDays: 15, IncrementBuffer: d("900")}

func TestPredictGrowth_ConstantFlow(t *testing.T) {
	rows := constantLedger(20, "100")
	pred := PredictGrowth(rows, defaultGrowth)

	require.True(t, pred.OK())
	assertDec(t, "100", pred.AvgDailyNetCashFlow)
	assert.InDelta(t, 9.0, pred.DaysToNextIncrement, 1e-9)
	assert.Equal(t, rows[19].Date.AddDate(0, 0, 9), pred.PredictedDate)
	assert.Equal(t, 5, pred.TargetOrderCount)
	assert.Equal(t, 5, pred.StableDays)
}

func TestPredictGrowth_InsufficientData(t *testing.T) {
	for _, n := range []int{0, 1, 15} {
		pred := PredictGrowth(constantLedger(n, "100"), defaultGrowth)
		assert.Equal(t, model.PredictionInsufficientData, pred.Status, "n=%d", n)
		assert.NotEmpty(t, pred.Message)
	}

	pred := PredictGrowth(constantLedger(16, "100"), defaultGrowth)
	assert.True(t, pred.OK())
	assert.Equal(t, 1, pred.StableDays)
}

func TestPredictGrowth_NegativeTrend(t *testing.T) {
	for _, net := range []string{"0", "-12.5"} {
		pred := PredictGrowth(constantLedger(20, net), defaultGrowth)
		assert.Equal(t, model.PredictionNegativeTrend, pred.Status, net)
		assertDec(t, net, pred.AvgDailyNetCashFlow)
		assert.True(t, pred.PredictedDate.IsZero())
	}
}

func TestPredictGrowth_StablePeriodOnly(t *testing.T) {
	rows := constantLedger(18, "50")
	// heavy losses inside the first cycle are excluded from the average
	for i := 0; i < 15; i++ {
		rows[i].DailyNetCashFlow = d("-1000")
	}
	pred := PredictGrowth(rows, defaultGrowth)
	require.True(t, pred.OK())
	assertDec(t, "50", pred.AvgDailyNetCashFlow)
	assert.InDelta(t, 18.0, pred.DaysToNextIncrement, 1e-9)
}

func TestPredictGrowth_FractionalDays(t *testing.T) {
	rows := constantLedger(16, "400")
	pred := PredictGrowth(rows, GrowthParams{PayoutDelayDays: 15, IncrementBuffer: decimal.NewFromInt(900)})
	require.True(t, pred.OK())
	assert.InDelta(t, 2.25, pred.DaysToNextIncrement, 1e-9)
	assert.Equal(t, rows[15].Date.AddDate(0, 0, 2).Add(6*time.Hour), pred.PredictedDate)
}

func TestPredictGrowth_TinyPositiveFlow(t *testing.T) {
	rows := constantLedger(20, "0.005")
	pred := PredictGrowth(rows, defaultGrowth)

	require.True(t, pred.OK())
	assert.InDelta(t, 180000.0, pred.DaysToNextIncrement, 1e-6)
	last := rows[19].Date
	assert.True(t, pred.PredictedDate.After(last))
	assert.Equal(t, last.AddDate(0, 0, 180000), pred.PredictedDate)
	assert.Empty(t, pred.Message)
}

func TestPredictGrowth_HorizonIsBounded(t *testing.T) {
	rows := constantLedger(20, "0.0000001")
	pred := PredictGrowth(rows, defaultGrowth)

	require.True(t, pred.OK())
	assert.Greater(t, pred.DaysToNextIncrement, float64(maxForecastDays))
	assert.Equal(t, rows[19].Date.AddDate(0, 0, maxForecastDays), pred.PredictedDate)
	assert.Contains(t, pred.Message, "1000 years")
}

func TestAddDaysKeepsFraction(t *testing.T) {
	start := day("2024-01-01")
	assert.Equal(t, start.AddDate(0, 0, 2).Add(12*time.Hour), addDays(start, 2.5))
	assert.Equal(t, start, addDays(start, 0))
}
