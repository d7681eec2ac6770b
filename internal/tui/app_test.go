package tui

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/theirongolddev/fincompass/internal/config"
	"github.com/theirongolddev/fincompass/internal/model"
	"github.com/theirongolddev/fincompass/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	entries map[string]model.DailyEntry
	payouts []model.PayoutAdjustment
	nextID  int64
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]model.DailyEntry{}, nextID: 1}
}

func (m *memStore) LoadAllEntries(context.Context) ([]model.DailyEntry, error) {
	out := make([]model.DailyEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *memStore) LoadAllPayouts(context.Context) ([]model.PayoutAdjustment, error) {
	return append([]model.PayoutAdjustment(nil), m.payouts...), nil
}

func (m *memStore) EntryExists(_ context.Context, date string) (bool, error) {
	_, ok := m.entries[date]
	return ok, nil
}

func (m *memStore) UpsertEntry(_ context.Context, e model.DailyEntry) error {
	m.entries[model.DayKey(e.Date)] = e
	return nil
}

func (m *memStore) DeleteEntry(_ context.Context, date string) (bool, error) {
	_, ok := m.entries[date]
	delete(m.entries, date)
	return ok, nil
}

func (m *memStore) AppendPayout(_ context.Context, po model.PayoutAdjustment) (int64, error) {
	po.ID = m.nextID
	m.nextID++
	m.payouts = append(m.payouts, po)
	return po.ID, nil
}

func (m *memStore) DeletePayout(_ context.Context, id int64) (bool, error) {
	for i, po := range m.payouts {
		if po.ID == id {
			m.payouts = append(m.payouts[:i], m.payouts[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func mustDay(t *testing.T, s string) model.DailyEntry {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return model.DailyEntry{Date: d, OrderCount: 2, TotalCost: decimal.RequireFromString("100"), TotalProfit: decimal.RequireFromString("50")}
}

// loadedApp returns an app that has completed its first load.
func loadedApp(t *testing.T, st *memStore) App {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))

	a := NewApp(st, config.DefaultConfig())
	require.True(t, a.needSetup, "no config file yet")
	a.needSetup = false

	m, _ := a.Update(tea.WindowSizeMsg{Width: 140, Height: 45})
	m, _ = m.Update(loadDataCmd(st, a.cfg.Params())())
	a = m.(App)
	require.True(t, a.loaded)
	require.NoError(t, a.loadErr)
	return a
}

// run executes cmd and feeds the resulting store messages back into the
// model until the chain settles.
func run(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	require.NotNil(t, cmd)
	for cmd != nil {
		msg := cmd()
		switch msg.(type) {
		case DataLoadedMsg, savedMsg, entryCheckedMsg:
		default:
			return a
		}
		var m tea.Model
		m, cmd = a.Update(msg)
		a = m.(App)
	}
	return a
}

func keyPress(a App, k string) (App, tea.Cmd) {
	var msg tea.KeyMsg
	switch k {
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	m, cmd := a.Update(msg)
	return m.(App), cmd
}

func TestApp_LoadBuildsLedger(t *testing.T) {
	st := newMemStore()
	e := mustDay(t, "2024-01-01")
	st.entries["2024-01-01"] = e

	a := loadedApp(t, st)
	require.Len(t, a.result.Ledger, 1)
	assert.Equal(t, "2900", a.result.Ledger[0].BankBalance.String())
	assert.Equal(t, model.PredictionInsufficientData, a.result.Prediction.Status)
}

func TestApp_TabNavigation(t *testing.T) {
	a := loadedApp(t, newMemStore())

	a, _ = keyPress(a, "l")
	assert.Equal(t, tabLedger, a.activeTab)
	a, _ = keyPress(a, "x")
	assert.Equal(t, tabSettings, a.activeTab)
	a, _ = keyPress(a, "right")
	assert.Equal(t, tabOverview, a.activeTab)
	a, _ = keyPress(a, "left")
	assert.Equal(t, tabSettings, a.activeTab)

	// Click the third tab in the bar.
	x := 1
	for i := 0; i < tabCharts; i++ {
		x += components.TabVisualWidth(components.Tabs[i], i == a.activeTab) + 2
	}
	m, _ := a.Update(tea.MouseMsg{X: x + 1, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, tabCharts, m.(App).activeTab)
}

func TestApp_CursorClampsToRows(t *testing.T) {
	st := newMemStore()
	for _, d := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		st.entries[d] = mustDay(t, d)
	}
	a := loadedApp(t, st)
	a, _ = keyPress(a, "e")

	for range 5 {
		a, _ = keyPress(a, "j")
	}
	assert.Equal(t, 2, a.entryCursor)

	sel, ok := a.selectedEntry()
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", model.DayKey(sel.Date), "cursor at the bottom selects the oldest entry")

	a, _ = keyPress(a, "g")
	assert.Equal(t, 0, a.entryCursor)
}

func TestApp_NewEntrySavesAndReloads(t *testing.T) {
	st := newMemStore()
	a := loadedApp(t, st)

	vals := &EntryFormValues{Date: "2024-01-16", Mode: ModeQuick, TotalCost: "10", TotalProfit: "5", Refunds: "8"}
	a = run(t, a, checkEntryCmd(st, vals.Input(), a.cfg.Margin()))

	// Not an overwrite: the save command ran and the ledger was rebuilt.
	assert.Nil(t, a.form)
	require.Contains(t, st.entries, "2024-01-16")
	assert.Equal(t, "2", st.entries["2024-01-16"].EstRefundProfitLoss.String())
	assert.Equal(t, "Saved entry for 2024-01-16", a.notice)
	require.Len(t, a.result.Ledger, 1)
}

func TestApp_ExistingEntryAsksBeforeOverwrite(t *testing.T) {
	st := newMemStore()
	st.entries["2024-01-01"] = mustDay(t, "2024-01-01")
	a := loadedApp(t, st)

	vals := &EntryFormValues{Date: "2024-01-01", Mode: ModePerOrder, Orders: "1:2\n3:4"}
	m, _ := a.Update(checkEntryCmd(st, vals.Input(), a.cfg.Margin())())
	a = m.(App)

	require.NotNil(t, a.form)
	assert.Equal(t, formOverwrite, a.formKind)
	assert.Equal(t, "100", st.entries["2024-01-01"].TotalCost.String(), "nothing written before confirmation")

	// Declining keeps the old entry.
	m, cmd := a.submitForm(formOverwrite)
	assert.Nil(t, cmd)
	assert.Contains(t, m.(App).notice, "Kept the existing entry")

	// Confirming replaces it.
	a.confirmVals.Yes = true
	m, cmd = a.submitForm(formOverwrite)
	a = run(t, m.(App), cmd)
	assert.Equal(t, "4", st.entries["2024-01-01"].TotalCost.String())
	assert.Equal(t, 2, st.entries["2024-01-01"].OrderCount)
	assert.Equal(t, "Replaced entry for 2024-01-01", a.notice)
}

func TestApp_InvalidEntryReportsValidationError(t *testing.T) {
	st := newMemStore()
	a := loadedApp(t, st)

	vals := &EntryFormValues{Date: "2024-13-01", Mode: ModeQuick}
	m, _ := a.Update(checkEntryCmd(st, vals.Input(), a.cfg.Margin())())
	a = m.(App)
	assert.True(t, a.noticeBad)
	assert.Contains(t, a.notice, "invalid date")
	assert.Empty(t, st.entries)
}

func TestApp_PayoutWithoutOriginWarns(t *testing.T) {
	st := newMemStore()
	a := loadedApp(t, st)

	vals := &PayoutFormValues{PayoutDate: "2024-01-05", Amount: "30"}
	a = run(t, a, addPayoutCmd(st, vals.Input()))
	require.Len(t, st.payouts, 1)
	assert.Contains(t, a.notice, "Added payout #1")
	assert.Contains(t, a.notice, "no origin date")
	assert.Equal(t, 1, a.result.UnattributedPayouts())
}

func TestApp_DeleteRecords(t *testing.T) {
	st := newMemStore()
	st.entries["2024-01-01"] = mustDay(t, "2024-01-01")
	_, _ = st.AppendPayout(context.Background(), model.PayoutAdjustment{PayoutDate: st.entries["2024-01-01"].Date, Amount: decimal.NewFromInt(5)})
	a := loadedApp(t, st)

	a = run(t, a, deleteEntryCmd(st, "2024-01-01"))
	assert.Equal(t, "Deleted entry for 2024-01-01", a.notice)
	assert.Empty(t, st.entries)

	m, cmd := a.Update(deleteEntryCmd(st, "2024-01-01")())
	assert.Equal(t, "No entry for 2024-01-01", m.(App).notice)
	assert.Nil(t, cmd, "nothing to rebuild")

	a = run(t, a, deletePayoutCmd(st, 1))
	assert.Equal(t, "Deleted payout #1", a.notice)
	assert.Empty(t, a.result.Ledger)
}

func TestApp_DeleteKeyOpensConfirm(t *testing.T) {
	st := newMemStore()
	st.entries["2024-01-01"] = mustDay(t, "2024-01-01")
	a := loadedApp(t, st)

	a, _ = keyPress(a, "e")
	a, _ = keyPress(a, "d")
	require.NotNil(t, a.form)
	assert.Equal(t, formDeleteEntry, a.formKind)
	assert.Equal(t, "2024-01-01", a.confirmVals.date)
}

func TestApp_ViewRendersEveryTab(t *testing.T) {
	st := newMemStore()
	for _, d := range []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-16"} {
		st.entries[d] = mustDay(t, d)
	}
	a := loadedApp(t, st)

	want := []string{"Bank balance", "Ledger", "Daily net cash flow", "Early payouts", "Daily entries", "Payout delay"}
	for i := range components.Tabs {
		a.activeTab = i
		out := a.View()
		assert.Contains(t, out, want[i], "tab %s", components.Tabs[i].Name)
		assert.Equal(t, a.height, len(strings.Split(out, "\n")), "tab %s fills the screen", components.Tabs[i].Name)
	}
}

func TestApp_SettingsEditRebuildsLedger(t *testing.T) {
	st := newMemStore()
	st.entries["2024-01-01"] = mustDay(t, "2024-01-01")
	a := loadedApp(t, st)

	a.activeTab = tabSettings
	a.settings.cursor = settingsFieldInitialCash
	m, _ := a.settingsStartEdit()
	a = m.(App)
	a.settings.input.SetValue("1000")

	m, cmd := a.updateSettingsInput(tea.KeyMsg{Type: tea.KeyEnter})
	a = m.(App)
	require.NoError(t, a.settings.saveErr)
	assert.Equal(t, "1000", a.cfg.Finance.InitialCash.String())
	assert.True(t, config.Exists())

	m, _ = a.Update(cmd())
	assert.Equal(t, "900", m.(App).result.Ledger[0].BankBalance.String())
}

func TestApp_SettingsRejectsInvalidValue(t *testing.T) {
	a := loadedApp(t, newMemStore())
	a.settings.cursor = settingsFieldBuffer
	m, _ := a.settingsStartEdit()
	a = m.(App)
	a.settings.input.SetValue("0")

	m, cmd := a.updateSettingsInput(tea.KeyMsg{Type: tea.KeyEnter})
	a = m.(App)
	assert.Nil(t, cmd)
	assert.Error(t, a.settings.saveErr)
	assert.Equal(t, "900", a.cfg.Finance.IncrementBuffer.String())
}

func TestChartDateLabels(t *testing.T) {
	var rows []model.LedgerRow
	for _, d := range []string{"2024-01-30", "2024-01-31", "2024-02-01", "2024-02-02"} {
		rows = append(rows, model.LedgerRow{DailyEntry: mustDay(t, d)})
	}
	assert.Equal(t, []string{"Jan", "31", "Feb", "2"}, ChartDateLabels(rows))
}

func TestBalanceTrend(t *testing.T) {
	start := mustDay(t, "2024-01-01").Date
	ledger := make([]model.LedgerRow, 8)
	for i := range ledger {
		ledger[i].Date = start.AddDate(0, 0, i)
		ledger[i].BankBalance = decimal.NewFromInt(int64(3000 + 25*i))
	}

	assert.Equal(t, "cut-off 2024-01-07", balanceTrend(ledger[:7]))
	assert.Equal(t, "+175.00 vs 7 days ago", balanceTrend(ledger))
}
