package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fincompass/internal/model"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "finance.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestOpen_AppliesMigrations(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	v, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	c, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{}, c)

	// reopening an existing database is a no-op migration
	require.NoError(t, s.Close())
	s2, err := Open(ctx, s.Path())
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()
	v, err = s2.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestEntries_UpsertReplacesAndRoundTrips(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	e := model.DailyEntry{
		Date:                mustDate(t, "2024-01-02"),
		OrderCount:          3,
		TotalCost:           decimal.RequireFromString("120.50"),
		TotalProfit:         decimal.RequireFromString("44.10"),
		RefundsReceived:     decimal.RequireFromString("10"),
		EstRefundProfitLoss: decimal.RequireFromString("2.5"),
		OtherIncome:         decimal.RequireFromString("1.25"),
		Note:                "first",
	}
	require.NoError(t, s.UpsertEntry(ctx, e))

	ok, err := s.EntryExists(ctx, "2024-01-02")
	require.NoError(t, err)
	assert.True(t, ok)

	got, found, err := s.GetEntry(ctx, "2024-01-02")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 3, got.OrderCount)
	assert.True(t, got.TotalCost.Equal(e.TotalCost))
	assert.True(t, got.EstRefundProfitLoss.Equal(e.EstRefundProfitLoss))
	assert.True(t, got.OtherIncome.Equal(e.OtherIncome))
	assert.Equal(t, "first", got.Note)
	assert.Equal(t, e.Date, got.Date)

	// a second write for the same date replaces every field
	require.NoError(t, s.UpsertEntry(ctx, model.DailyEntry{Date: e.Date, OrderCount: 1, TotalCost: decimal.NewFromInt(5)}))
	all, err := s.LoadAllEntries(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 1, all[0].OrderCount)
	assert.True(t, all[0].TotalProfit.IsZero())
	assert.Empty(t, all[0].Note)
}

func TestEntries_OrderingRangeAndDelete(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	for _, d := range []string{"2024-03-05", "2024-03-01", "2024-03-03"} {
		require.NoError(t, s.UpsertEntry(ctx, model.DailyEntry{Date: mustDate(t, d), OrderCount: 1}))
	}

	all, err := s.LoadAllEntries(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-03-01", model.DayKey(all[0].Date))
	assert.Equal(t, "2024-03-05", model.DayKey(all[2].Date))

	some, err := s.ListEntries(ctx, Range{From: mustDate(t, "2024-03-02")})
	require.NoError(t, err)
	assert.Len(t, some, 2)

	some, err = s.ListEntries(ctx, Range{From: mustDate(t, "2024-03-02"), To: mustDate(t, "2024-03-04")})
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "2024-03-03", model.DayKey(some[0].Date))

	deleted, err := s.DeleteEntry(ctx, "2024-03-03")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteEntry(ctx, "2024-03-03")
	require.NoError(t, err)
	assert.False(t, deleted)

	ok, err := s.EntryExists(ctx, "2024-03-03")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPayouts_AppendListDelete(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	origin := mustDate(t, "2024-01-01")
	id1, err := s.AppendPayout(ctx, model.PayoutAdjustment{
		PayoutDate:        mustDate(t, "2024-01-05"),
		OriginalOrderDate: &origin,
		Amount:            decimal.RequireFromString("30.75"),
	})
	require.NoError(t, err)
	id2, err := s.AppendPayout(ctx, model.PayoutAdjustment{
		PayoutDate: mustDate(t, "2024-01-02"),
		Amount:     decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	all, err := s.LoadAllPayouts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, id1, all[0].ID)
	require.True(t, all[0].HasOrigin())
	assert.Equal(t, "2024-01-01", all[0].OriginLabel())
	assert.True(t, all[0].Amount.Equal(decimal.RequireFromString("30.75")))
	assert.False(t, all[1].HasOrigin())

	ranged, err := s.ListPayouts(ctx, Range{To: mustDate(t, "2024-01-03")})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, id2, ranged[0].ID)

	deleted, err := s.DeletePayout(ctx, id2)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = s.DeletePayout(ctx, id2)
	require.NoError(t, err)
	assert.False(t, deleted)

	// ids are never reused after a delete
	id3, err := s.AppendPayout(ctx, model.PayoutAdjustment{PayoutDate: mustDate(t, "2024-01-06"), Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.Greater(t, id3, id2)

	c, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Entries: 0, Payouts: 2}, c)
}

func TestError_Wrapping(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Close())

	_, err := s.LoadAllEntries(context.Background())
	require.Error(t, err)

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "list entries", se.Op)
	assert.Contains(t, err.Error(), "store list entries")
}
