package cmd

import (
	"fmt"

	"github.com/theirongolddev/fincompass/internal/cli"
	"github.com/theirongolddev/fincompass/internal/model"
	"github.com/theirongolddev/fincompass/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagDays   int
	flagWeekly bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Full day-by-day ledger with derived cash-flow columns",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Totals and averages over the ledger",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	for _, c := range []*cobra.Command{historyCmd, summaryCmd} {
		c.Flags().IntVarP(&flagDays, "days", "n", 0, "Only the last N ledger days (0 = all)")
		addRangeFlags(c)
	}
	historyCmd.Flags().BoolVarP(&flagWeekly, "weekly", "w", false, "Roll the ledger up by week")

	rootCmd.AddCommand(historyCmd, summaryCmd)
}

// ledgerWindow loads the ledger and applies the --from/--to and --days filters.
func ledgerWindow(c *cobra.Command) ([]model.LedgerRow, error) {
	r, err := rangeFromFlags()
	if err != nil {
		return nil, err
	}
	result, err := loadData(c.Context())
	if err != nil {
		return nil, err
	}
	rows := pipeline.FilterByTime(result.Ledger, r.From, r.To)
	return pipeline.Tail(rows, flagDays), nil
}

func runHistory(c *cobra.Command, _ []string) error {
	rows, err := ledgerWindow(c)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("\n  No ledger rows for the selected period.")
		return nil
	}

	fmt.Println()
	if flagWeekly {
		fmt.Print(cli.RenderWeekly(pipeline.AggregateWeeks(rows)))
		return nil
	}
	fmt.Print(cli.RenderHistory(rows))
	return nil
}

func runSummary(c *cobra.Command, _ []string) error {
	rows, err := ledgerWindow(c)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("\n  No ledger rows for the selected period.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("LEDGER SUMMARY  %s to %s",
		cli.FormatDate(rows[0].Date), cli.FormatDate(rows[len(rows)-1].Date))))
	fmt.Println()
	fmt.Print(cli.RenderSummary(pipeline.Summarize(rows)))
	return nil
}
