package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/fincompass/internal/cli"
	"github.com/theirongolddev/fincompass/internal/entry"
	"github.com/theirongolddev/fincompass/internal/model"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"
)

type formKind int

const (
	formNone formKind = iota
	formSetup
	formEntry
	formOverwrite
	formPayout
	formDeleteEntry
	formDeletePayout
)

// Entry modes offered by the entry form.
const (
	ModeQuick    = "quick"
	ModePerOrder = "per-order"
)

// EntryFormValues backs the daily entry form.
type EntryFormValues struct {
	Date        string
	Mode        string
	OrderCount  string
	TotalCost   string
	TotalProfit string
	Orders      string // one cost:profit pair per line
	Refunds     string
	OtherIncome string
	Note        string
}

// Input converts the form into the raw entry input. Per-order mode ignores
// the total fields and vice versa.
func (v *EntryFormValues) Input() entry.EntryInput {
	in := entry.EntryInput{
		Date:        strings.TrimSpace(v.Date),
		Refunds:     strings.TrimSpace(v.Refunds),
		OtherIncome: strings.TrimSpace(v.OtherIncome),
		Note:        strings.TrimSpace(v.Note),
	}
	if v.Mode == ModePerOrder {
		in.Orders = SplitOrders(v.Orders)
		return in
	}
	in.OrderCount = strings.TrimSpace(v.OrderCount)
	in.TotalCost = strings.TrimSpace(v.TotalCost)
	in.TotalProfit = strings.TrimSpace(v.TotalProfit)
	return in
}

// SplitOrders splits free text into cost:profit tokens separated by
// newlines, commas or spaces.
func SplitOrders(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == ',' || r == ' ' || r == '\t' || r == ';'
	})
}

// PayoutFormValues backs the early payout form.
type PayoutFormValues struct {
	PayoutDate        string
	OriginalOrderDate string
	Amount            string
}

// Input converts the form into the raw payout input.
func (v *PayoutFormValues) Input() entry.PayoutInput {
	return entry.PayoutInput{
		PayoutDate:        strings.TrimSpace(v.PayoutDate),
		OriginalOrderDate: strings.TrimSpace(v.OriginalOrderDate),
		Amount:            strings.TrimSpace(v.Amount),
	}
}

type confirmValues struct {
	Yes      bool
	date     string
	payoutID int64
}

func formKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "cancel"))
	return km
}

func validateOrders(s string) error {
	orders := SplitOrders(s)
	if len(orders) == 0 {
		return errors.New("enter at least one cost:profit pair")
	}
	for _, o := range orders {
		if err := entry.ValidateOrder(o); err != nil {
			return err
		}
	}
	return nil
}

// NewEntryForm builds the add/overwrite day form. Quick mode asks for the
// day's totals; per-order mode asks for each order's cost and profit.
func NewEntryForm(v *EntryFormValues) *huh.Form {
	if v.Date == "" {
		v.Date = model.DayKey(time.Now())
	}
	if v.Mode == "" {
		v.Mode = ModeQuick
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD. An existing day is replaced entirely.").
				Value(&v.Date).
				Validate(entry.ValidateDate),
			huh.NewSelect[string]().
				Title("Entry mode").
				Options(
					huh.NewOption("Quick: day totals", ModeQuick),
					huh.NewOption("Precise: order by order", ModePerOrder),
				).
				Value(&v.Mode),
		),
		huh.NewGroup(
			huh.NewInput().Title("Orders").Placeholder("0").Value(&v.OrderCount).Validate(entry.ValidateCount),
			huh.NewInput().Title("Total cost").Placeholder("0.00").Value(&v.TotalCost).Validate(entry.ValidateAmount),
			huh.NewInput().Title("Total profit").Placeholder("0.00").Value(&v.TotalProfit).Validate(entry.ValidateAmount),
		).WithHideFunc(func() bool { return v.Mode != ModeQuick }),
		huh.NewGroup(
			huh.NewText().
				Title("Orders").
				Description("One cost:profit pair per line, e.g. 12.50:4.20").
				Lines(6).
				Value(&v.Orders).
				Validate(validateOrders),
		).WithHideFunc(func() bool { return v.Mode != ModePerOrder }),
		huh.NewGroup(
			huh.NewInput().Title("Refunds received").Placeholder("0.00").Value(&v.Refunds).Validate(entry.ValidateAmount),
			huh.NewInput().Title("Other income").Placeholder("0.00").Value(&v.OtherIncome).Validate(entry.ValidateAmount),
			huh.NewInput().Title("Note").Value(&v.Note),
		),
	).WithKeyMap(formKeyMap()).WithShowHelp(true)
}

// NewPayoutForm builds the early payout form.
func NewPayoutForm(v *PayoutFormValues) *huh.Form {
	if v.PayoutDate == "" {
		v.PayoutDate = model.DayKey(time.Now())
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Payout date").
				Value(&v.PayoutDate).
				Validate(entry.ValidateDate),
			huh.NewInput().
				Title("Original order date").
				Description("Leave empty if unknown. Unknown payouts never offset a later settlement.").
				Value(&v.OriginalOrderDate).
				Validate(entry.ValidateOptionalDate),
			huh.NewInput().
				Title("Amount").
				Value(&v.Amount).
				Validate(entry.ValidatePositiveAmount),
		),
	).WithKeyMap(formKeyMap()).WithShowHelp(true)
}

// NewConfirmForm builds a single yes/no question.
func NewConfirmForm(title, description string, yes *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(yes),
		),
	).WithKeyMap(formKeyMap())
}

func (a App) showForm(kind formKind, f *huh.Form) (tea.Model, tea.Cmd) {
	a.form = f.WithWidth(a.formWidth())
	a.formKind = kind
	a.setNotice("", false)
	return a, a.form.Init()
}

func (a App) openEntryForm() (tea.Model, tea.Cmd) {
	a.entryVals = &EntryFormValues{}
	return a.showForm(formEntry, NewEntryForm(a.entryVals))
}

func (a App) openPayoutForm() (tea.Model, tea.Cmd) {
	a.payoutVals = &PayoutFormValues{}
	return a.showForm(formPayout, NewPayoutForm(a.payoutVals))
}

func (a App) openOverwriteForm(e model.DailyEntry) (tea.Model, tea.Cmd) {
	a.confirmVals = &confirmValues{date: model.DayKey(e.Date)}
	return a.showForm(formOverwrite, NewConfirmForm(
		fmt.Sprintf("An entry for %s already exists. Overwrite it?", a.confirmVals.date),
		"The existing day's figures will be replaced entirely.",
		&a.confirmVals.Yes,
	))
}

func (a App) openDeleteEntryForm(e model.DailyEntry) (tea.Model, tea.Cmd) {
	a.confirmVals = &confirmValues{date: model.DayKey(e.Date)}
	return a.showForm(formDeleteEntry, NewConfirmForm(
		fmt.Sprintf("Delete the entry for %s?", a.confirmVals.date),
		fmt.Sprintf("%d orders, cost %s, profit %s", e.OrderCount, cli.FormatMoney(e.TotalCost), cli.FormatMoney(e.TotalProfit)),
		&a.confirmVals.Yes,
	))
}

func (a App) openDeletePayoutForm(po model.PayoutAdjustment) (tea.Model, tea.Cmd) {
	a.confirmVals = &confirmValues{payoutID: po.ID}
	return a.showForm(formDeletePayout, NewConfirmForm(
		fmt.Sprintf("Delete payout #%d?", po.ID),
		fmt.Sprintf("%s paid %s for orders of %s", cli.FormatMoney(po.Amount), model.DayKey(po.PayoutDate), po.OriginLabel()),
		&a.confirmVals.Yes,
	))
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		kind := a.formKind
		a.form = nil
		a.formKind = formNone
		return a.submitForm(kind)
	case huh.StateAborted:
		if a.formKind == formSetup {
			a.needSetup = false
		}
		a.form = nil
		a.formKind = formNone
		a.setNotice("Cancelled", false)
		return a, nil
	}

	return a, cmd
}

func (a App) submitForm(kind formKind) (tea.Model, tea.Cmd) {
	switch kind {
	case formSetup:
		return a.applySetup()
	case formEntry:
		return a, checkEntryCmd(a.store, a.entryVals.Input(), a.cfg.Margin())
	case formOverwrite:
		if !a.confirmVals.Yes {
			a.setNotice("Kept the existing entry for "+a.confirmVals.date, false)
			return a, nil
		}
		return a, saveEntryCmd(a.store, a.pendingEntry, true)
	case formPayout:
		return a, addPayoutCmd(a.store, a.payoutVals.Input())
	case formDeleteEntry:
		if a.confirmVals.Yes {
			return a, deleteEntryCmd(a.store, a.confirmVals.date)
		}
	case formDeletePayout:
		if a.confirmVals.Yes {
			return a, deletePayoutCmd(a.store, a.confirmVals.payoutID)
		}
	}
	return a, nil
}

func (a App) selectedEntry() (model.DailyEntry, bool) {
	if a.result == nil || len(a.result.Entries) == 0 {
		return model.DailyEntry{}, false
	}
	// Entries are listed newest first.
	idx := len(a.result.Entries) - 1 - a.entryCursor
	if idx < 0 || idx >= len(a.result.Entries) {
		return model.DailyEntry{}, false
	}
	return a.result.Entries[idx], true
}

func (a App) selectedPayout() (model.PayoutAdjustment, bool) {
	if a.result == nil || len(a.result.Payouts) == 0 {
		return model.PayoutAdjustment{}, false
	}
	idx := len(a.result.Payouts) - 1 - a.payoutCursor
	if idx < 0 || idx >= len(a.result.Payouts) {
		return model.PayoutAdjustment{}, false
	}
	return a.result.Payouts[idx], true
}

// ─── Store commands ─────────────────────────────────────────────

type entryCheckedMsg struct {
	entry  model.DailyEntry
	exists bool
	err    error
}

type savedMsg struct {
	notice string
	reload bool
	err    error
}

func checkEntryCmd(st Store, in entry.EntryInput, margin decimal.Decimal) tea.Cmd {
	return func() tea.Msg {
		e, err := entry.NewDailyEntry(in, margin)
		if err != nil {
			return entryCheckedMsg{err: err}
		}
		ctx, cancel := storeContext()
		defer cancel()
		exists, err := st.EntryExists(ctx, model.DayKey(e.Date))
		return entryCheckedMsg{entry: e, exists: exists, err: err}
	}
}

func saveEntryCmd(st Store, e model.DailyEntry, replaced bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := storeContext()
		defer cancel()
		if err := st.UpsertEntry(ctx, e); err != nil {
			return savedMsg{err: err}
		}
		verb := "Saved"
		if replaced {
			verb = "Replaced"
		}
		return savedMsg{notice: fmt.Sprintf("%s entry for %s", verb, model.DayKey(e.Date)), reload: true}
	}
}

func addPayoutCmd(st Store, in entry.PayoutInput) tea.Cmd {
	return func() tea.Msg {
		po, err := entry.NewPayout(in)
		if err != nil {
			return savedMsg{err: err}
		}
		ctx, cancel := storeContext()
		defer cancel()
		id, err := st.AppendPayout(ctx, po)
		if err != nil {
			return savedMsg{err: err}
		}
		notice := fmt.Sprintf("Added payout #%d of %s", id, cli.FormatMoney(po.Amount))
		if !po.HasOrigin() {
			notice += " (no origin date: later balances may read high)"
		}
		return savedMsg{notice: notice, reload: true}
	}
}

func deleteEntryCmd(st Store, date string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := storeContext()
		defer cancel()
		ok, err := st.DeleteEntry(ctx, date)
		switch {
		case err != nil:
			return savedMsg{err: err}
		case !ok:
			return savedMsg{notice: "No entry for " + date}
		}
		return savedMsg{notice: "Deleted entry for " + date, reload: true}
	}
}

func deletePayoutCmd(st Store, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := storeContext()
		defer cancel()
		ok, err := st.DeletePayout(ctx, id)
		switch {
		case err != nil:
			return savedMsg{err: err}
		case !ok:
			return savedMsg{notice: fmt.Sprintf("No payout #%d", id)}
		}
		return savedMsg{notice: fmt.Sprintf("Deleted payout #%d", id), reload: true}
	}
}
