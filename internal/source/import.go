package source

import (
	"context"
	"fmt"

	"github.com/theirongolddev/fincompass/internal/entry"
	"github.com/theirongolddev/fincompass/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Sink is the part of the store an import writes to.
type Sink interface {
	EntryExists(ctx context.Context, date string) (bool, error)
	UpsertEntry(ctx context.Context, e model.DailyEntry) error
	LoadAllPayouts(ctx context.Context) ([]model.PayoutAdjustment, error)
	AppendPayout(ctx context.Context, po model.PayoutAdjustment) (int64, error)
}

// Options controls how records are applied.
type Options struct {
	Margin    decimal.Decimal
	Overwrite bool // replace entries whose date already exists
	DryRun    bool // validate and count, write nothing
}

// Rejection is a record that failed validation.
type Rejection struct {
	File string
	Line int
	Err  error
}

func (r Rejection) Error() string {
	return fmt.Sprintf("%s:%d: %v", r.File, r.Line, r.Err)
}

// Report summarizes an import run.
type Report struct {
	Files           int
	EntriesAdded    int
	EntriesReplaced int
	EntriesKept     int
	PayoutsAdded    int
	PayoutsKnown    int
	Skipped         int
	ParseErrors     int
	Rejected        []Rejection
}

// Import parses every file and writes valid records to dst. Existing dates
// are kept unless opts.Overwrite is set. A payout with the same date, origin
// and amount as a stored one counts as already imported, one stored payout
// per incoming line.
func Import(ctx context.Context, dst Sink, files []DiscoveredFile, opts Options) (Report, error) {
	var rep Report

	stored, err := dst.LoadAllPayouts(ctx)
	if err != nil {
		return rep, err
	}
	// Each stored payout matches at most one incoming line; repeats within
	// the files are distinct payouts.
	unmatched := make(map[string]int, len(stored))
	for _, po := range stored {
		unmatched[payoutKey(po)]++
	}

	for _, df := range files {
		res := ParseFile(df)
		if res.Err != nil {
			return rep, fmt.Errorf("reading %s: %w", df.Path, res.Err)
		}
		rep.Files++
		rep.Skipped += res.Skipped
		rep.ParseErrors += res.ParseErrors

		for _, ln := range res.Entries {
			if err := importEntry(ctx, dst, ln, opts, &rep); err != nil {
				return rep, err
			}
		}
		for _, ln := range res.Payouts {
			po, err := entry.NewPayout(ln.Input)
			if err != nil {
				rep.Rejected = append(rep.Rejected, Rejection{File: ln.File, Line: ln.Line, Err: err})
				continue
			}
			if key := payoutKey(po); unmatched[key] > 0 {
				unmatched[key]--
				rep.PayoutsKnown++
				continue
			}
			if !opts.DryRun {
				if _, err := dst.AppendPayout(ctx, po); err != nil {
					return rep, err
				}
			}
			rep.PayoutsAdded++
		}

		log.Debug().
			Str("file", df.Name).
			Int("lines", res.Lines).
			Int("entries", len(res.Entries)).
			Int("payouts", len(res.Payouts)).
			Int("parse_errors", res.ParseErrors).
			Msg("parsed record file")
	}

	return rep, nil
}

func importEntry(ctx context.Context, dst Sink, ln Line[entry.EntryInput], opts Options, rep *Report) error {
	e, err := entry.NewDailyEntry(ln.Input, opts.Margin)
	if err != nil {
		rep.Rejected = append(rep.Rejected, Rejection{File: ln.File, Line: ln.Line, Err: err})
		return nil
	}

	key := model.DayKey(e.Date)
	exists, err := dst.EntryExists(ctx, key)
	if err != nil {
		return err
	}
	if exists && !opts.Overwrite {
		rep.EntriesKept++
		return nil
	}

	if !opts.DryRun {
		if err := dst.UpsertEntry(ctx, e); err != nil {
			return err
		}
	}
	if exists {
		rep.EntriesReplaced++
	} else {
		rep.EntriesAdded++
	}
	return nil
}

func payoutKey(po model.PayoutAdjustment) string {
	origin := ""
	if po.HasOrigin() {
		origin = model.DayKey(*po.OriginalOrderDate)
	}
	return model.DayKey(po.PayoutDate) + "|" + origin + "|" + po.Amount.String()
}
