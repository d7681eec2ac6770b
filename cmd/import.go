package cmd

import (
	"fmt"

	"github.com/theirongolddev/fincompass/internal/cli"
	"github.com/theirongolddev/fincompass/internal/source"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagImportForce  bool
	flagImportDryRun bool
)

var importCmd = &cobra.Command{
	Use:   "import PATH...",
	Short: "Import daily entries and payouts from JSONL files",
	Long: `Import records from JSONL files or directories of *.jsonl files.

Each line is one JSON object routed by its "type" field:
  {"type":"entry","date":"2024-01-01","order_count":4,"total_cost":"120","total_profit":"45"}
  {"type":"entry","date":"2024-01-02","orders":["30:12","25.5:9"],"refunds_received":"10"}
  {"type":"payout","payout_date":"2024-01-05","original_order_date":"2024-01-01","amount":"120"}

Lines of any other type are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVarP(&flagImportForce, "force", "f", false, "Replace entries whose date is already stored")
	importCmd.Flags().BoolVar(&flagImportDryRun, "dry-run", false, "Validate and count without writing")
	rootCmd.AddCommand(importCmd)
}

func runImport(c *cobra.Command, args []string) error {
	files, err := source.Scan(args...)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("  No .jsonl files found.")
		return nil
	}

	st, err := openStore(c.Context())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	rep, err := source.Import(c.Context(), st, files, source.Options{
		Margin:    cfg.Margin(),
		Overwrite: flagImportForce,
		DryRun:    flagImportDryRun,
	})
	if err != nil {
		return err
	}

	log.Info().
		Int("files", rep.Files).
		Int("entries_added", rep.EntriesAdded).
		Int("entries_replaced", rep.EntriesReplaced).
		Int("payouts_added", rep.PayoutsAdded).
		Int("rejected", len(rep.Rejected)).
		Bool("dry_run", flagImportDryRun).
		Msg("import finished")

	if flagImportDryRun {
		fmt.Println(cli.RenderTitle("Import preview (nothing written)"))
	} else {
		fmt.Println(cli.RenderTitle("Import"))
	}
	fmt.Printf("  Files:            %s\n", cli.FormatNumber(int64(rep.Files)))
	fmt.Printf("  Entries added:    %s\n", cli.FormatNumber(int64(rep.EntriesAdded)))
	fmt.Printf("  Entries replaced: %s\n", cli.FormatNumber(int64(rep.EntriesReplaced)))
	fmt.Printf("  Entries kept:     %s\n", cli.FormatNumber(int64(rep.EntriesKept)))
	fmt.Printf("  Payouts added:    %s\n", cli.FormatNumber(int64(rep.PayoutsAdded)))
	fmt.Printf("  Payouts known:    %s\n", cli.FormatNumber(int64(rep.PayoutsKnown)))
	if rep.Skipped > 0 || rep.ParseErrors > 0 {
		fmt.Printf("  Skipped lines:    %s (%s malformed)\n",
			cli.FormatNumber(int64(rep.Skipped+rep.ParseErrors)), cli.FormatNumber(int64(rep.ParseErrors)))
	}
	if rep.EntriesKept > 0 && !flagImportForce {
		fmt.Println("  Use --force to replace entries for dates already stored.")
	}

	if len(rep.Rejected) > 0 {
		fmt.Println()
		fmt.Println("  " + cli.Warn(fmt.Sprintf("%d record(s) rejected:", len(rep.Rejected))))
		for _, r := range rep.Rejected {
			fmt.Printf("    %s\n", r.Error())
		}
	}
	fmt.Println()
	return nil
}
