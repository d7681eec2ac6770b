package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/theirongolddev/fincompass/internal/cli"
	"github.com/theirongolddev/fincompass/internal/entry"
	"github.com/theirongolddev/fincompass/internal/model"
	"github.com/theirongolddev/fincompass/internal/pipeline"
	"github.com/theirongolddev/fincompass/internal/store"
	"github.com/theirongolddev/fincompass/internal/tui"
	"github.com/theirongolddev/fincompass/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Interactive text menu for entering and reviewing data",
	Args:  cobra.NoArgs,
	RunE:  runMenu,
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

const (
	menuPerOrder = "per-order"
	menuQuick    = "quick"
	menuPayouts  = "payouts"
	menuReport   = "report"
	menuCharts   = "charts"
	menuDelete   = "delete"
	menuHistory  = "history"
	menuQuit     = "quit"
)

var menuOptions = []huh.Option[string]{
	huh.NewOption("1. Add a day, order by order", menuPerOrder),
	huh.NewOption("2. Add a day from totals", menuQuick),
	huh.NewOption("3. Manage early payouts", menuPayouts),
	huh.NewOption("4. Latest report with growth forecast", menuReport),
	huh.NewOption("5. Charts", menuCharts),
	huh.NewOption("6. Delete a day", menuDelete),
	huh.NewOption("7. Full history", menuHistory),
	huh.NewOption("8. Quit", menuQuit),
}

// menuSession holds the open store for one menu run.
type menuSession struct {
	ctx context.Context
	st  *store.Store
}

func runMenu(c *cobra.Command, _ []string) error {
	theme.SetActive(cfg.Appearance.Theme)

	st, err := openStore(c.Context())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	m := menuSession{ctx: c.Context(), st: st}

	for {
		var choice string
		err := huh.NewSelect[string]().
			Title("fincompass").
			Description(cfg.DBPath()).
			Options(menuOptions...).
			Value(&choice).
			Run()
		if errors.Is(err, huh.ErrUserAborted) || choice == menuQuit {
			fmt.Println("  Bye.")
			return nil
		}
		if err != nil {
			return err
		}

		if err := m.dispatch(choice); err != nil {
			if !errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("  " + cli.Warn(err.Error()))
				log.Error().Err(err).Str("action", choice).Msg("menu action failed")
			} else {
				fmt.Println("  Cancelled.")
			}
		}
		fmt.Println()
	}
}

func (m menuSession) dispatch(choice string) error {
	switch choice {
	case menuPerOrder:
		return m.addEntry(tui.ModePerOrder)
	case menuQuick:
		return m.addEntry(tui.ModeQuick)
	case menuPayouts:
		return m.managePayouts()
	case menuReport:
		res, err := m.load()
		if err != nil {
			return err
		}
		fmt.Print(cli.RenderReport(res, cfg.Finance.PayoutDelayDays))
	case menuCharts:
		res, err := m.load()
		if err != nil {
			return err
		}
		printCharts(res.Ledger)
	case menuDelete:
		return m.deleteEntry()
	case menuHistory:
		res, err := m.load()
		if err != nil {
			return err
		}
		fmt.Print(cli.RenderHistory(res.Ledger))
	}
	return nil
}

func (m menuSession) load() (*pipeline.LoadResult, error) {
	return pipeline.Load(m.ctx, m.st, cfg.Params())
}

func confirm(title, description string) (bool, error) {
	var yes bool
	err := tui.NewConfirmForm(title, description, &yes).Run()
	return yes, err
}

func (m menuSession) addEntry(mode string) error {
	vals := &tui.EntryFormValues{Mode: mode}
	if err := tui.NewEntryForm(vals).Run(); err != nil {
		return err
	}
	e, err := entry.NewDailyEntry(vals.Input(), cfg.Margin())
	if err != nil {
		return err
	}

	key := model.DayKey(e.Date)
	ok, err := confirm("Save this day?", fmt.Sprintf("%s: %d orders, cost %s, profit %s, refunds %s (est. loss %s), other %s",
		key, e.OrderCount, cli.FormatMoney(e.TotalCost), cli.FormatMoney(e.TotalProfit),
		cli.FormatMoney(e.RefundsReceived), cli.FormatMoney(e.EstRefundProfitLoss), cli.FormatMoney(e.OtherIncome)))
	if err != nil || !ok {
		return err
	}

	exists, err := m.st.EntryExists(m.ctx, key)
	if err != nil {
		return err
	}
	if exists {
		ok, err := confirm("Overwrite "+key+"?", "An entry for this date already exists.")
		if err != nil || !ok {
			return err
		}
	}
	if err := m.st.UpsertEntry(m.ctx, e); err != nil {
		return err
	}
	fmt.Printf("  Saved entry for %s\n", key)
	return nil
}

func (m menuSession) deleteEntry() error {
	var date string
	err := huh.NewInput().
		Title("Date to delete").
		Placeholder("YYYY-MM-DD").
		Value(&date).
		Validate(entry.ValidateDate).
		Run()
	if err != nil {
		return err
	}
	d, _ := model.ParseDate(date)
	key := model.DayKey(d)

	exists, err := m.st.EntryExists(m.ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Printf("  No entry for %s\n", key)
		return nil
	}
	ok, err := confirm("Delete "+key+"?", "This cannot be undone.")
	if err != nil || !ok {
		return err
	}
	if _, err := m.st.DeleteEntry(m.ctx, key); err != nil {
		return err
	}
	fmt.Printf("  Deleted entry for %s\n", key)
	return nil
}

func (m menuSession) managePayouts() error {
	for {
		var choice string
		err := huh.NewSelect[string]().
			Title("Early payouts").
			Options(
				huh.NewOption("a. Add a payout", "add"),
				huh.NewOption("b. Delete a payout", "delete"),
				huh.NewOption("c. List payouts", "list"),
				huh.NewOption("d. Back", "back"),
			).
			Value(&choice).
			Run()
		if err != nil || choice == "back" {
			return nil
		}

		switch choice {
		case "add":
			err = m.addPayout()
		case "delete":
			err = m.deletePayout()
		case "list":
			var payouts []model.PayoutAdjustment
			if payouts, err = m.st.LoadAllPayouts(m.ctx); err == nil {
				fmt.Print(cli.RenderPayouts(payouts))
			}
		}
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return err
		}
	}
}

func (m menuSession) addPayout() error {
	vals := &tui.PayoutFormValues{}
	if err := tui.NewPayoutForm(vals).Run(); err != nil {
		return err
	}
	po, err := entry.NewPayout(vals.Input())
	if err != nil {
		return err
	}

	desc := fmt.Sprintf("%s received %s for orders of %s", cli.FormatMoney(po.Amount), model.DayKey(po.PayoutDate), po.OriginLabel())
	if !po.HasOrigin() {
		desc += "\n\n" + cli.UnknownOriginWarning
	}
	ok, err := confirm("Save this payout?", desc)
	if err != nil || !ok {
		return err
	}

	id, err := m.st.AppendPayout(m.ctx, po)
	if err != nil {
		return err
	}
	fmt.Printf("  Added payout #%d\n", id)
	return nil
}

func (m menuSession) deletePayout() error {
	payouts, err := m.st.LoadAllPayouts(m.ctx)
	if err != nil {
		return err
	}
	if len(payouts) == 0 {
		fmt.Println("  No payouts recorded.")
		return nil
	}

	opts := make([]huh.Option[string], 0, len(payouts))
	for _, po := range payouts {
		label := fmt.Sprintf("#%d  %s  %s  for %s", po.ID, model.DayKey(po.PayoutDate), cli.FormatMoney(po.Amount), po.OriginLabel())
		opts = append(opts, huh.NewOption(label, strconv.FormatInt(po.ID, 10)))
	}
	var picked string
	if err := huh.NewSelect[string]().Title("Payout to delete").Options(opts...).Value(&picked).Run(); err != nil {
		return err
	}
	id, _ := strconv.ParseInt(picked, 10, 64)

	ok, err := confirm(fmt.Sprintf("Delete payout #%d?", id), "This cannot be undone.")
	if err != nil || !ok {
		return err
	}
	if _, err := m.st.DeletePayout(m.ctx, id); err != nil {
		return err
	}
	fmt.Printf("  Deleted payout #%d\n", id)
	return nil
}
