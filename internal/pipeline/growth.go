package pipeline

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fincompass/internal/model"
)

// GrowthParams configures the growth forecast.
type GrowthParams struct {
	PayoutDelayDays int
	// IncrementBuffer is the capital needed to float one more order per day
	// through a full payout window.
	IncrementBuffer decimal.Decimal
}

// PredictGrowth projects when the accumulated cash buffer will support one
// more order per day. It averages daily net cash flow over the stable
// period, which skips the first PayoutDelayDays rows where no scheduled
// settlement has arrived yet, and extrapolates linearly.
func PredictGrowth(ledger []model.LedgerRow, p GrowthParams) model.Prediction {
	delay := p.PayoutDelayDays
	if delay < 0 {
		delay = 0
	}

	if len(ledger) <= delay {
		return model.Prediction{
			Status: model.PredictionInsufficientData,
			Message: fmt.Sprintf("Not enough data: need more than one payout cycle (%d days), have %d.",
				delay, len(ledger)),
		}
	}

	stable := ledger[delay:]
	if len(stable) == 0 {
		return model.Prediction{
			Status:  model.PredictionInsufficientData,
			Message: "First payout cycle complete, collecting stable-period data.",
		}
	}

	sum := decimal.Zero
	for _, r := range stable {
		sum = sum.Add(r.DailyNetCashFlow)
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(stable))))

	if avg.Sign() <= 0 {
		return model.Prediction{
			Status:              model.PredictionNegativeTrend,
			AvgDailyNetCashFlow: avg,
			StableDays:          len(stable),
			Message: fmt.Sprintf("Average daily net cash flow in the stable period is %s/day; the current pace cannot fund another order.",
				avg.StringFixed(2)),
		}
	}

	last := ledger[len(ledger)-1]
	days := p.IncrementBuffer.Div(avg).InexactFloat64()

	pred := model.Prediction{
		Status:              model.PredictionOK,
		AvgDailyNetCashFlow: avg,
		DaysToNextIncrement: days,
		PredictedDate:       addDays(last.Date, days),
		TargetOrderCount:    last.OrderCount + 1,
		StableDays:          len(stable),
	}
	if days > maxForecastDays {
		pred.Message = fmt.Sprintf("At %s/day the next order is more than %d years away.",
			avg.StringFixed(2), maxForecastDays/365)
	}
	return pred
}

// maxForecastDays bounds the predicted date; anything further is shown as
// the bound.
const maxForecastDays = 365 * 1000

// addDays offsets t by a fractional number of days. Whole days go through
// the calendar so long horizons cannot overflow a time.Duration.
func addDays(t time.Time, days float64) time.Time {
	if math.IsNaN(days) || days <= 0 {
		return t
	}
	days = min(days, maxForecastDays)
	whole, frac := math.Modf(days)
	return t.AddDate(0, 0, int(whole)).Add(time.Duration(frac * float64(24*time.Hour)))
}
