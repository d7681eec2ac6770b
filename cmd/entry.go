package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/fincompass/internal/cli"
	"github.com/theirongolddev/fincompass/internal/entry"
	"github.com/theirongolddev/fincompass/internal/model"
	"github.com/theirongolddev/fincompass/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagEntryDate    string
	flagEntryCount   string
	flagEntryCost    string
	flagEntryProfit  string
	flagEntryOrders  []string
	flagEntryRefunds string
	flagEntryOther   string
	flagEntryNote    string
	flagEntryForce   bool
	flagListFrom     string
	flagListTo       string
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Add, delete or list daily entries",
}

var entryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a day's orders (totals or per-order) and refunds",
	Example: `  fincompass entry add --date 2024-01-01 --count 4 --cost 120 --profit 45
  fincompass entry add --date 2024-01-02 --order 30:12 --order 25.5:9 --refunds 10`,
	Args: cobra.NoArgs,
	RunE: runEntryAdd,
}

var entryDeleteCmd = &cobra.Command{
	Use:   "delete DATE",
	Short: "Delete the entry for a date (YYYY-MM-DD)",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntryDelete,
}

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored daily entries",
	Args:  cobra.NoArgs,
	RunE:  runEntryList,
}

func init() {
	f := entryAddCmd.Flags()
	f.StringVar(&flagEntryDate, "date", "", "Entry date, YYYY-MM-DD (default today)")
	f.StringVar(&flagEntryCount, "count", "", "Number of orders (quick entry)")
	f.StringVar(&flagEntryCost, "cost", "", "Total cost of the day's orders (quick entry)")
	f.StringVar(&flagEntryProfit, "profit", "", "Total profit of the day's orders (quick entry)")
	f.StringArrayVar(&flagEntryOrders, "order", nil, "One order as cost:profit (repeatable)")
	f.StringVar(&flagEntryRefunds, "refunds", "", "Refunds received")
	f.StringVar(&flagEntryOther, "other", "", "Other income")
	f.StringVar(&flagEntryNote, "note", "", "Free-text note")
	f.BoolVarP(&flagEntryForce, "force", "f", false, "Overwrite an existing entry for the date")
	entryAddCmd.MarkFlagsMutuallyExclusive("order", "cost")
	entryAddCmd.MarkFlagsMutuallyExclusive("order", "profit")

	addRangeFlags(entryListCmd)

	entryCmd.AddCommand(entryAddCmd, entryDeleteCmd, entryListCmd)
	rootCmd.AddCommand(entryCmd)
}

func addRangeFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagListFrom, "from", "", "First date to include, YYYY-MM-DD")
	c.Flags().StringVar(&flagListTo, "to", "", "Last date to include, YYYY-MM-DD")
}

func rangeFromFlags() (store.Range, error) {
	var r store.Range
	var err error
	if flagListFrom != "" {
		if r.From, err = model.ParseDate(flagListFrom); err != nil {
			return r, fmt.Errorf("--from: %w", err)
		}
	}
	if flagListTo != "" {
		if r.To, err = model.ParseDate(flagListTo); err != nil {
			return r, fmt.Errorf("--to: %w", err)
		}
	}
	return r, nil
}

func runEntryAdd(c *cobra.Command, _ []string) error {
	date := flagEntryDate
	if date == "" {
		date = model.DayKey(time.Now())
	}

	e, err := entry.NewDailyEntry(entry.EntryInput{
		Date:        date,
		OrderCount:  flagEntryCount,
		TotalCost:   flagEntryCost,
		TotalProfit: flagEntryProfit,
		Orders:      flagEntryOrders,
		Refunds:     flagEntryRefunds,
		OtherIncome: flagEntryOther,
		Note:        flagEntryNote,
	}, cfg.Margin())
	if err != nil {
		return err
	}

	ctx := c.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	key := model.DayKey(e.Date)
	prev, exists, err := st.GetEntry(ctx, key)
	if err != nil {
		return err
	}
	if exists && !flagEntryForce {
		return fmt.Errorf("an entry for %s already exists (%d orders, cost %s, profit %s); rerun with --force to overwrite it",
			key, prev.OrderCount, cli.FormatMoney(prev.TotalCost), cli.FormatMoney(prev.TotalProfit))
	}
	if err := st.UpsertEntry(ctx, e); err != nil {
		return err
	}

	verb := "Saved"
	if exists {
		verb = "Replaced"
	}
	fmt.Printf("  %s entry for %s: %d orders, cost %s, profit %s\n",
		verb, key, e.OrderCount, cli.FormatMoney(e.TotalCost), cli.FormatMoney(e.TotalProfit))
	if e.RefundsReceived.IsPositive() {
		fmt.Printf("  Refunds %s, estimated profit lost %s\n",
			cli.FormatMoney(e.RefundsReceived), cli.FormatMoney(e.EstRefundProfitLoss))
	}
	return nil
}

func runEntryDelete(c *cobra.Command, args []string) error {
	if err := entry.ValidateDate(args[0]); err != nil {
		return err
	}
	d, _ := model.ParseDate(args[0])
	key := model.DayKey(d)

	ctx := c.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	deleted, err := st.DeleteEntry(ctx, key)
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Printf("  No entry for %s\n", key)
		return nil
	}
	log.Info().Str("date", key).Msg("entry deleted")
	fmt.Printf("  Deleted entry for %s\n", key)
	return nil
}

func runEntryList(c *cobra.Command, _ []string) error {
	r, err := rangeFromFlags()
	if err != nil {
		return err
	}

	ctx := c.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	entries, err := st.ListEntries(ctx, r)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("\n  No entries found.")
		return nil
	}
	fmt.Println()
	fmt.Print(cli.RenderEntries(entries))
	return nil
}
