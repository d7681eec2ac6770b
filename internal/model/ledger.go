package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRow is one calendar day of the reconstructed cash-flow ledger.
// Entry fields are zero when no DailyEntry exists for the date.
type LedgerRow struct {
	DailyEntry
	HasEntry bool `json:"has_entry"`

	DailyOutflow       decimal.Decimal `json:"daily_outflow"`
	NetScheduledInflow decimal.Decimal `json:"net_scheduled_inflow"`
	ReceivedToday      decimal.Decimal `json:"received_today"`
	DailyActualInflow  decimal.Decimal `json:"daily_actual_inflow"`
	DailyNetCashFlow   decimal.Decimal `json:"daily_net_cash_flow"`
	BankBalance        decimal.Decimal `json:"bank_balance"`
	DailyProfit        decimal.Decimal `json:"daily_profit"`
	CumulativeProfit   decimal.Decimal `json:"cumulative_profit"`
}

// PredictionStatus tags the variant held by a Prediction.
type PredictionStatus string

// Prediction variants.
const (
	PredictionInsufficientData PredictionStatus = "insufficient_data"
	PredictionNegativeTrend    PredictionStatus = "negative_trend"
	PredictionOK               PredictionStatus = "ok"
)

// Prediction is the growth forecast derived from a ledger.
// Message is set for InsufficientData and NegativeTrend; AvgDailyNetCashFlow
// for NegativeTrend and OK; the remaining fields only for OK.
type Prediction struct {
	Status              PredictionStatus `json:"status"`
	Message             string           `json:"message,omitempty"`
	AvgDailyNetCashFlow decimal.Decimal  `json:"avg_daily_net_cash_flow"`
	DaysToNextIncrement float64          `json:"days_to_next_increment,omitempty"`
	PredictedDate       time.Time        `json:"predicted_date,omitempty"`
	TargetOrderCount    int              `json:"target_order_count,omitempty"`
	StableDays          int              `json:"stable_days"`
}

// OK reports whether the prediction carries a projected date.
func (p Prediction) OK() bool {
	return p.Status == PredictionOK
}

// Summary totals a run of ledger rows.
type Summary struct {
	Days          int `json:"days"`
	DaysWithEntry int `json:"days_with_entry"`
	Orders        int `json:"orders"`

	TotalCost       decimal.Decimal `json:"total_cost"`
	TotalProfit     decimal.Decimal `json:"total_profit"`
	RefundsReceived decimal.Decimal `json:"refunds_received"`
	EstRefundLoss   decimal.Decimal `json:"estimated_refund_loss"`
	OtherIncome     decimal.Decimal `json:"other_income"`
	PayoutsReceived decimal.Decimal `json:"payouts_received"`
	ScheduledInflow decimal.Decimal `json:"scheduled_inflow"`
	NetCashFlow     decimal.Decimal `json:"net_cash_flow"`
	MinBankBalance  decimal.Decimal `json:"min_bank_balance"`
	MaxBankBalance  decimal.Decimal `json:"max_bank_balance"`
	AvgNetCashFlow  decimal.Decimal `json:"avg_net_cash_flow"`
	ProfitPerOrder  decimal.Decimal `json:"profit_per_order"`
	OrdersPerDay    float64         `json:"orders_per_day"`
	FirstDate       time.Time       `json:"first_date"`
	LastDate        time.Time       `json:"last_date"`
}

// WeeklyStats rolls ledger rows up into ISO weeks.
type WeeklyStats struct {
	WeekStart   time.Time       `json:"week_start"`
	Orders      int             `json:"orders"`
	Cost        decimal.Decimal `json:"cost"`
	Profit      decimal.Decimal `json:"profit"`
	NetCashFlow decimal.Decimal `json:"net_cash_flow"`
	EndBalance  decimal.Decimal `json:"end_balance"`
}
