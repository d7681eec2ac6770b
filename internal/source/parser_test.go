package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/fincompass/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeRecords creates a temp JSONL file and returns a DiscoveredFile for it.
func writeRecords(t *testing.T, dir, name string, lines ...string) DiscoveredFile {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return DiscoveredFile{Path: path, Name: name}
}

func TestParseFile_RoutesByType(t *testing.T) {
	df := writeRecords(t, t.TempDir(), "records.jsonl",
		`{"type":"entry","date":"2024-01-01","order_count":2,"total_cost":"100","total_profit":50.5}`,
		`{"type":"payout","payout_date":"2024-01-05","original_order_date":"2024-01-01","amount":120}`,
		`{"type":"note","text":"ignored"}`,
		``,
	)

	res := ParseFile(df)
	require.NoError(t, res.Err)
	assert.Equal(t, 4, res.Lines)
	assert.Equal(t, 2, res.Skipped)
	assert.Zero(t, res.ParseErrors)

	require.Len(t, res.Entries, 1)
	in := res.Entries[0].Input
	assert.Equal(t, "2024-01-01", in.Date)
	assert.Equal(t, "2", in.OrderCount)
	assert.Equal(t, "100", in.TotalCost)
	assert.Equal(t, "50.5", in.TotalProfit)
	assert.Equal(t, 1, res.Entries[0].Line)

	require.Len(t, res.Payouts, 1)
	assert.Equal(t, "120", res.Payouts[0].Input.Amount)
	assert.Equal(t, "2024-01-01", res.Payouts[0].Input.OriginalOrderDate)
	assert.Equal(t, 2, res.Payouts[0].Line)
}

func TestParseFile_LastEntryPerDateWins(t *testing.T) {
	df := writeRecords(t, t.TempDir(), "records.jsonl",
		`{"type":"entry","date":"2024-01-02","total_cost":"10"}`,
		`{"type":"entry","date":"2024-01-01","total_cost":"20"}`,
		`{"type":"entry","date":"2024-01-02","total_cost":"30"}`,
	)

	res := ParseFile(df)
	require.NoError(t, res.Err)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "2024-01-01", res.Entries[0].Input.Date)
	assert.Equal(t, "30", res.Entries[1].Input.TotalCost)
	assert.Equal(t, 3, res.Entries[1].Line)
}

func TestParseFile_MalformedLines(t *testing.T) {
	df := writeRecords(t, t.TempDir(), "records.jsonl",
		`{"type":"entry","date":"2024-01-01","total_cost":}`,
		`not json at all`,
		`{"type":"payout","amount":[1]}`,
	)

	res := ParseFile(df)
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.ParseErrors)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, res.Entries)
	assert.Empty(t, res.Payouts)
}

func TestParseFile_MissingFile(t *testing.T) {
	res := ParseFile(DiscoveredFile{Path: filepath.Join(t.TempDir(), "nope.jsonl")})
	assert.Error(t, res.Err)
}

func TestExtractTopLevelType(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"simple", `{"type":"entry"}`, TypeEntry},
		{"spaced", `{ "type" : "payout" }`, TypePayout},
		{"nested ignored", `{"meta":{"type":"entry"},"date":"x"}`, ""},
		{"nested then top", `{"meta":{"type":"payout"},"type":"entry"}`, TypeEntry},
		{"type as value", `{"note":"type","type":"payout"}`, TypePayout},
		{"escaped quote", `{"note":"say \"type\"","type":"entry"}`, TypeEntry},
		{"unknown", `{"type":"summary"}`, ""},
		{"non-string", `{"type":3}`, ""},
		{"empty", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractTopLevelType([]byte(tt.line)))
		})
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeRecords(t, dir, "b.jsonl", `{}`)
	writeRecords(t, dir, "a.jsonl", `{}`)
	writeRecords(t, dir, "notes.txt", `{}`)
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o750))
	writeRecords(t, sub, "c.jsonl", `{}`)
	single := writeRecords(t, t.TempDir(), "single.json", `{}`)

	files, err := Scan(dir, single.Path, filepath.Join(dir, "a.jsonl"))
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"a.jsonl", "b.jsonl", "c.jsonl", "single.json"}, names)

	_, err = Scan(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	dir := t.TempDir()
	df := writeRecords(t, dir, "records.jsonl",
		`{"type":"entry","date":"2024-01-01","order_count":2,"total_cost":"100","total_profit":"50","refunds_received":"8"}`,
		`{"type":"entry","date":"2024-01-02","orders":["10:5","20:5"]}`,
		`{"type":"entry","date":"not-a-date"}`,
		`{"type":"payout","payout_date":"2024-01-05","original_order_date":"2024-01-01","amount":"120"}`,
		`{"type":"payout","payout_date":"2024-01-06","amount":"-5"}`,
	)
	opts := Options{Margin: decimal.RequireFromString("0.25")}

	rep, err := Import(ctx, st, []DiscoveredFile{df}, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Files)
	assert.Equal(t, 2, rep.EntriesAdded)
	assert.Equal(t, 1, rep.PayoutsAdded)
	require.Len(t, rep.Rejected, 2)
	assert.Equal(t, 3, rep.Rejected[0].Line)
	assert.Contains(t, rep.Rejected[0].Error(), "records.jsonl:3:")

	entries, err := st.LoadAllEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2", entries[0].EstRefundProfitLoss.String())
	assert.Equal(t, "30", entries[1].TotalCost.String())
	assert.Equal(t, 2, entries[1].OrderCount)

	// Re-running keeps stored dates and recognizes the payout.
	rep, err = Import(ctx, st, []DiscoveredFile{df}, opts)
	require.NoError(t, err)
	assert.Zero(t, rep.EntriesAdded)
	assert.Equal(t, 2, rep.EntriesKept)
	assert.Zero(t, rep.PayoutsAdded)
	assert.Equal(t, 1, rep.PayoutsKnown)

	payouts, err := st.LoadAllPayouts(ctx)
	require.NoError(t, err)
	assert.Len(t, payouts, 1)
}

func TestImport_OverwriteAndDryRun(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	dir := t.TempDir()
	first := writeRecords(t, dir, "first.jsonl", `{"type":"entry","date":"2024-01-01","total_cost":"100"}`)
	second := writeRecords(t, dir, "second.jsonl", `{"type":"entry","date":"2024-01-01","total_cost":"40"}`)
	opts := Options{Margin: decimal.RequireFromString("0.25")}

	_, err := Import(ctx, st, []DiscoveredFile{first}, opts)
	require.NoError(t, err)

	dry := opts
	dry.Overwrite, dry.DryRun = true, true
	rep, err := Import(ctx, st, []DiscoveredFile{second}, dry)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.EntriesReplaced)

	entries, err := st.LoadAllEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, "100", entries[0].TotalCost.String())

	opts.Overwrite = true
	rep, err = Import(ctx, st, []DiscoveredFile{second}, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.EntriesReplaced)

	entries, err = st.LoadAllEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, "40", entries[0].TotalCost.String())
}

func TestImport_IdenticalPayoutsAreDistinct(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	dir := t.TempDir()
	line := `{"type":"payout","payout_date":"2024-01-05","original_order_date":"2024-01-01","amount":"40"}`
	two := writeRecords(t, dir, "two.jsonl", line, line)
	opts := Options{Margin: decimal.RequireFromString("0.25")}

	rep, err := Import(ctx, st, []DiscoveredFile{two}, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.PayoutsAdded)
	assert.Zero(t, rep.PayoutsKnown)

	// Re-importing matches each stored payout once; a third line is new.
	three := writeRecords(t, dir, "three.jsonl", line, line, line)
	rep, err = Import(ctx, st, []DiscoveredFile{three}, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.PayoutsKnown)
	assert.Equal(t, 1, rep.PayoutsAdded)

	payouts, err := st.LoadAllPayouts(ctx)
	require.NoError(t, err)
	assert.Len(t, payouts, 3)
}
