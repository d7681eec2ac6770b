package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/fincompass/internal/model"
)

// Source is the read side of the record store.
type Source interface {
	LoadAllEntries(ctx context.Context) ([]model.DailyEntry, error)
	LoadAllPayouts(ctx context.Context) ([]model.PayoutAdjustment, error)
}

// Params bundles the ledger and forecast settings.
type Params struct {
	Ledger LedgerParams
	Growth GrowthParams
}

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Entries    []model.DailyEntry
	Payouts    []model.PayoutAdjustment
	Ledger     []model.LedgerRow
	Prediction model.Prediction
	LoadedAt   time.Time
	Elapsed    time.Duration
}

// Latest returns the last ledger row, if any.
func (r *LoadResult) Latest() (model.LedgerRow, bool) {
	return Latest(r.Ledger)
}

// UnattributedPayouts counts payouts with an unknown original order date.
func (r *LoadResult) UnattributedPayouts() int {
	n := 0
	for _, po := range r.Payouts {
		if !po.HasOrigin() {
			n++
		}
	}
	return n
}

// Load reads every record from src and derives the ledger and prediction.
// Entries are read before payouts, on the caller's goroutine.
func Load(ctx context.Context, src Source, p Params) (*LoadResult, error) {
	start := time.Now()

	entries, err := src.LoadAllEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading entries: %w", err)
	}
	payouts, err := src.LoadAllPayouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading payouts: %w", err)
	}

	ledger := BuildLedger(entries, payouts, p.Ledger)
	return &LoadResult{
		Entries:    entries,
		Payouts:    payouts,
		Ledger:     ledger,
		Prediction: PredictGrowth(ledger, p.Growth),
		LoadedAt:   start,
		Elapsed:    time.Since(start),
	}, nil
}
