package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/theirongolddev/fincompass/internal/cli"
	"github.com/theirongolddev/fincompass/internal/entry"
	"github.com/theirongolddev/fincompass/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagPayoutDate   string
	flagPayoutOrigin string
	flagPayoutAmount string
)

var payoutCmd = &cobra.Command{
	Use:   "payout",
	Short: "Add, delete or list early payouts",
}

var payoutAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Record money received before its scheduled settlement",
	Example: "  fincompass payout add --date 2024-01-05 --amount 30 --origin 2024-01-01",
	Args:    cobra.NoArgs,
	RunE:    runPayoutAdd,
}

var payoutDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a payout by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runPayoutDelete,
}

var payoutListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored payouts",
	Args:  cobra.NoArgs,
	RunE:  runPayoutList,
}

func init() {
	f := payoutAddCmd.Flags()
	f.StringVar(&flagPayoutDate, "date", "", "Date the money arrived, YYYY-MM-DD (default today)")
	f.StringVar(&flagPayoutOrigin, "origin", "", "Order date the payout settles, YYYY-MM-DD (optional)")
	f.StringVar(&flagPayoutAmount, "amount", "", "Amount received")
	_ = payoutAddCmd.MarkFlagRequired("amount")

	addRangeFlags(payoutListCmd)

	payoutCmd.AddCommand(payoutAddCmd, payoutDeleteCmd, payoutListCmd)
	rootCmd.AddCommand(payoutCmd)
}

func runPayoutAdd(c *cobra.Command, _ []string) error {
	date := flagPayoutDate
	if date == "" {
		date = model.DayKey(time.Now())
	}

	po, err := entry.NewPayout(entry.PayoutInput{
		PayoutDate:        date,
		OriginalOrderDate: flagPayoutOrigin,
		Amount:            flagPayoutAmount,
	})
	if err != nil {
		return err
	}

	ctx := c.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	id, err := st.AppendPayout(ctx, po)
	if err != nil {
		return err
	}

	fmt.Printf("  Added payout #%d: %s received %s for orders of %s\n",
		id, cli.FormatMoney(po.Amount), model.DayKey(po.PayoutDate), po.OriginLabel())
	if !po.HasOrigin() {
		fmt.Println("  " + cli.Warn(cli.UnknownOriginWarning))
	}
	return nil
}

func runPayoutDelete(c *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return fmt.Errorf("invalid payout id %q", args[0])
	}

	ctx := c.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	deleted, err := st.DeletePayout(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Printf("  No payout #%d\n", id)
		return nil
	}
	log.Info().Int64("id", id).Msg("payout deleted")
	fmt.Printf("  Deleted payout #%d\n", id)
	return nil
}

func runPayoutList(c *cobra.Command, _ []string) error {
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

	payouts, err := st.ListPayouts(ctx, r)
	if err != nil {
		return err
	}
	if len(payouts) == 0 {
		fmt.Println("\n  No payouts found.")
		return nil
	}
	fmt.Println()
	fmt.Print(cli.RenderPayouts(payouts))

	unknown := 0
	for _, po := range payouts {
		if !po.HasOrigin() {
			unknown++
		}
	}
	if unknown > 0 {
		fmt.Println("  " + cli.Warn(fmt.Sprintf("%d without an original order date.", unknown)))
	}
	return nil
}
