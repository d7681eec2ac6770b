package store

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/theirongolddev/fincompass/internal/model"
)

// LoadAllPayouts returns every payout adjustment, id ascending.
func (s *Store) LoadAllPayouts(ctx context.Context) ([]model.PayoutAdjustment, error) {
	return s.ListPayouts(ctx, Range{})
}

// ListPayouts returns payouts whose payout date falls within r, id ascending.
func (s *Store) ListPayouts(ctx context.Context, r Range) ([]model.PayoutAdjustment, error) {
	q := sq.Select("id", "payout_date", "original_order_date", "amount").
		From(payoutsTable).
		OrderBy("id")
	q = applyRange(q, "payout_date", r)

	query, args, err := q.ToSql()
	if err != nil {
		return nil, wrap("list payouts", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("list payouts", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.PayoutAdjustment
	for rows.Next() {
		var (
			po     model.PayoutAdjustment
			paid   string
			origin sql.NullString
		)
		if err := rows.Scan(&po.ID, &paid, &origin, &po.Amount); err != nil {
			return nil, wrap("list payouts", err)
		}
		if po.PayoutDate, err = model.ParseDate(paid); err != nil {
			return nil, wrap("list payouts", errors.Wrapf(err, "corrupt payout %d", po.ID))
		}
		if origin.Valid && origin.String != "" {
			t, err := model.ParseDate(origin.String)
			if err != nil {
				return nil, wrap("list payouts", errors.Wrapf(err, "corrupt payout %d", po.ID))
			}
			po.OriginalOrderDate = &t
		}
		out = append(out, po)
	}
	return out, wrap("list payouts", rows.Err())
}

// AppendPayout stores po and returns its newly assigned id. Ids are never reused.
func (s *Store) AppendPayout(ctx context.Context, po model.PayoutAdjustment) (int64, error) {
	var origin sql.NullString
	if po.HasOrigin() {
		origin = sql.NullString{String: po.OriginLabel(), Valid: true}
	}

	query, args, err := sq.Insert(payoutsTable).
		Columns("payout_date", "original_order_date", "amount").
		Values(model.DayKey(model.Day(po.PayoutDate)), origin, po.Amount.String()).
		ToSql()
	if err != nil {
		return 0, wrap("append payout", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error().Err(err).Msg("append payout failed")
		return 0, wrap("append payout", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrap("append payout", err)
	}
	log.Debug().Int64("id", id).Str("amount", po.Amount.String()).Str("origin", po.OriginLabel()).Msg("payout saved")
	return id, nil
}

// DeletePayout removes the payout with the given id. It reports false if none existed.
func (s *Store) DeletePayout(ctx context.Context, id int64) (bool, error) {
	query, args, err := sq.Delete(payoutsTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, wrap("delete payout", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, wrap("delete payout", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrap("delete payout", err)
	}
	log.Debug().Int64("id", id).Int64("rows", n).Msg("payout delete")
	return n > 0, nil
}
