package cmd

import (
	"fmt"
	"math"

	"github.com/theirongolddev/fincompass/internal/cli"
	"github.com/theirongolddev/fincompass/internal/model"
	"github.com/theirongolddev/fincompass/internal/pipeline"
	"github.com/theirongolddev/fincompass/internal/tui"
	"github.com/theirongolddev/fincompass/internal/tui/components"
	"github.com/theirongolddev/fincompass/internal/tui/theme"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagChartWidth  int
	flagChartHeight int
	flagChartRows   bool
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Bank balance, daily net cash flow and cumulative profit charts",
	Args:  cobra.NoArgs,
	RunE:  runChart,
}

func init() {
	chartCmd.Flags().IntVarP(&flagDays, "days", "n", 0, "Only the last N ledger days (0 = all)")
	addRangeFlags(chartCmd)
	chartCmd.Flags().IntVar(&flagChartWidth, "width", 100, "Chart width in columns")
	chartCmd.Flags().IntVar(&flagChartHeight, "height", 10, "Chart height in rows")
	chartCmd.Flags().BoolVar(&flagChartRows, "rows", false, "Net cash flow as one diverging bar per day")
	rootCmd.AddCommand(chartCmd)
}

// minChartRows is the smallest ledger worth charting.
const minChartRows = 2

func runChart(c *cobra.Command, _ []string) error {
	rows, err := ledgerWindow(c)
	if err != nil {
		return err
	}
	printCharts(rows)
	return nil
}

func printCharts(rows []model.LedgerRow) {
	if len(rows) < minChartRows {
		fmt.Println("\n  Charts need at least two days of data.")
		return
	}

	theme.SetActive(cfg.Appearance.Theme)
	t := theme.Active

	balance := pipeline.Series(rows, func(r model.LedgerRow) decimal.Decimal { return r.BankBalance })
	net := pipeline.Series(rows, func(r model.LedgerRow) decimal.Decimal { return r.DailyNetCashFlow })
	profit := pipeline.Series(rows, func(r model.LedgerRow) decimal.Decimal { return r.CumulativeProfit })
	labels := tui.ChartDateLabels(rows)

	w := max(flagChartWidth, 30)
	h := max(flagChartHeight, 3)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("Bank balance  %s", cli.RenderSparkline(balance))))
	fmt.Println(components.BarChart(balance, labels, t.Balance, w, h))
	fmt.Println()

	fmt.Println(cli.RenderTitle("Daily net cash flow"))
	if flagChartRows {
		maxAbs := 0.0
		for _, v := range net {
			maxAbs = math.Max(maxAbs, math.Abs(v))
		}
		for i, r := range rows {
			fmt.Println(cli.RenderSignedBar(cli.FormatDate(r.Date), net[i], maxAbs, (w-30)/2))
		}
	} else {
		fmt.Println(components.SignedBarChart(net, labels, t.Gain, t.Loss, w, h))
	}
	fmt.Println()

	fmt.Println(cli.RenderTitle("Cumulative profit"))
	fmt.Println(components.BarChart(profit, labels, t.Profit, w, h))
}
