package store

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/theirongolddev/fincompass/internal/model"
)

var entryColumns = []string{
	"date", "order_count", "total_cost", "total_profit",
	"refunds_received", "est_refund_profit_loss", "other_income", "note",
}

// LoadAllEntries returns every daily entry, date ascending.
func (s *Store) LoadAllEntries(ctx context.Context) ([]model.DailyEntry, error) {
	return s.ListEntries(ctx, Range{})
}

// ListEntries returns daily entries whose date falls within r, date ascending.
func (s *Store) ListEntries(ctx context.Context, r Range) ([]model.DailyEntry, error) {
	q := sq.Select(entryColumns...).From(entriesTable).OrderBy("date")
	q = applyRange(q, "date", r)

	query, args, err := q.ToSql()
	if err != nil {
		return nil, wrap("list entries", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("list entries", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.DailyEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, wrap("list entries", err)
		}
		out = append(out, e)
	}
	return out, wrap("list entries", rows.Err())
}

func scanEntry(rows *sql.Rows) (model.DailyEntry, error) {
	var (
		e    model.DailyEntry
		date string
	)
	if err := rows.Scan(&date, &e.OrderCount, &e.TotalCost, &e.TotalProfit,
		&e.RefundsReceived, &e.EstRefundProfitLoss, &e.OtherIncome, &e.Note); err != nil {
		return e, err
	}
	t, err := model.ParseDate(date)
	if err != nil {
		return e, errors.Wrap(err, "corrupt entry date")
	}
	e.Date = t
	return e, nil
}

// GetEntry returns the entry for date, or ok=false if none is stored.
func (s *Store) GetEntry(ctx context.Context, date string) (model.DailyEntry, bool, error) {
	t, err := model.ParseDate(date)
	if err != nil {
		return model.DailyEntry{}, false, err
	}
	entries, err := s.ListEntries(ctx, Range{From: t, To: t})
	if err != nil || len(entries) == 0 {
		return model.DailyEntry{}, false, err
	}
	return entries[0], true, nil
}

// EntryExists reports whether an entry is stored for the given date.
func (s *Store) EntryExists(ctx context.Context, date string) (bool, error) {
	query, args, err := sq.Select("1").From(entriesTable).Where(sq.Eq{"date": date}).Limit(1).ToSql()
	if err != nil {
		return false, wrap("entry exists", err)
	}

	var one int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, wrap("entry exists", err)
	}
	return true, nil
}

// UpsertEntry stores e, replacing any prior entry for the same date entirely.
func (s *Store) UpsertEntry(ctx context.Context, e model.DailyEntry) error {
	key := model.DayKey(model.Day(e.Date))
	query, args, err := sq.Insert(entriesTable).
		Options("OR REPLACE").
		Columns(entryColumns...).
		Values(key, e.OrderCount, e.TotalCost.String(), e.TotalProfit.String(),
			e.RefundsReceived.String(), e.EstRefundProfitLoss.String(), e.OtherIncome.String(), e.Note).
		ToSql()
	if err != nil {
		return wrap("upsert entry", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error().Err(err).Str("date", key).Msg("upsert entry failed")
		return wrap("upsert entry", err)
	}
	log.Debug().Str("date", key).Int("orders", e.OrderCount).Msg("entry saved")
	return nil
}

// DeleteEntry removes the entry for date. It reports false if none existed.
func (s *Store) DeleteEntry(ctx context.Context, date string) (bool, error) {
	query, args, err := sq.Delete(entriesTable).Where(sq.Eq{"date": date}).ToSql()
	if err != nil {
		return false, wrap("delete entry", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, wrap("delete entry", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrap("delete entry", err)
	}
	log.Debug().Str("date", date).Int64("rows", n).Msg("entry delete")
	return n > 0, nil
}

func applyRange(q sq.SelectBuilder, column string, r Range) sq.SelectBuilder {
	if !r.From.IsZero() {
		q = q.Where(sq.GtOrEq{column: model.DayKey(model.Day(r.From))})
	}
	if !r.To.IsZero() {
		q = q.Where(sq.LtOrEq{column: model.DayKey(model.Day(r.To))})
	}
	return q
}
