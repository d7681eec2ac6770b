package daemon

import (
	"github.com/theirongolddev/fincompass/internal/pipeline"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors published at /metrics.
type Metrics struct {
	balance    prometheus.Gauge
	profit     prometheus.Gauge
	avgNetFlow prometheus.Gauge
	ledgerDays prometheus.Gauge
	daysToNext prometheus.Gauge
	polls      prometheus.Counter
	pollErrors prometheus.Counter
}

// NewMetrics registers the ledger metrics on the provided registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		balance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fincompass_bank_balance",
			Help: "Bank balance at the ledger cut-off date.",
		}),
		profit: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fincompass_cumulative_profit",
			Help: "Cumulative profit at the ledger cut-off date.",
		}),
		avgNetFlow: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fincompass_avg_daily_net_cash_flow",
			Help: "Average daily net cash flow over the stable window.",
		}),
		ledgerDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fincompass_ledger_days",
			Help: "Number of calendar days in the ledger.",
		}),
		daysToNext: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fincompass_days_to_next_increment",
			Help: "Projected days until one more daily order is affordable, -1 when unknown.",
		}),
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fincompass_polls_total",
			Help: "Ledger rebuilds attempted by the daemon.",
		}),
		pollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fincompass_poll_errors_total",
			Help: "Ledger rebuilds that failed.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.balance, m.profit, m.avgNetFlow, m.ledgerDays, m.daysToNext, m.polls, m.pollErrors)
	}
	return m
}

// ObservePoll counts one poll and its failure, if any.
func (m *Metrics) ObservePoll(err error) {
	if m == nil {
		return
	}
	m.polls.Inc()
	if err != nil {
		m.pollErrors.Inc()
	}
}

// Update sets the gauges from a fresh snapshot.
func (m *Metrics) Update(snap Snapshot, res *pipeline.LoadResult) {
	if m == nil {
		return
	}
	m.balance.Set(snap.BankBalance.InexactFloat64())
	m.profit.Set(snap.CumulativeProfit.InexactFloat64())
	m.avgNetFlow.Set(res.Prediction.AvgDailyNetCashFlow.InexactFloat64())
	m.ledgerDays.Set(float64(len(res.Ledger)))
	if res.Prediction.OK() {
		m.daysToNext.Set(res.Prediction.DaysToNextIncrement)
	} else {
		m.daysToNext.Set(-1)
	}
}
