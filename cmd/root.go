package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/fincompass/internal/cli"
	"github.com/theirongolddev/fincompass/internal/config"
	"github.com/theirongolddev/fincompass/internal/pipeline"
	"github.com/theirongolddev/fincompass/internal/store"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagDBPath  string
	flagQuiet   bool
	flagVerbose bool
)

// cfg is the configuration resolved for the running command.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "fincompass",
	Short: "Cash-flow ledger and growth forecast for a marketplace store",
	Long: "Record daily orders, refunds and early payouts, rebuild the day-by-day cash ledger " +
		"under a fixed payout delay, and forecast when the business can afford one more order per day.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runReport,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "SQLite database path (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging on stderr")
}

func setup(_ *cobra.Command, _ []string) error {
	configureLogging()

	loaded, err := config.Load()
	if err != nil {
		return err
	}
	if flagDBPath != "" {
		loaded.General.DBPath = flagDBPath
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", config.ConfigPath(), err)
	}
	cfg = loaded
	return nil
}

func configureLogging() {
	level := zerolog.WarnLevel
	switch {
	case flagVerbose:
		level = zerolog.DebugLevel
	case flagQuiet:
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).With().Timestamp().Logger()
}

// openStore opens the configured database. Callers close it.
func openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(ctx, cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	log.Debug().Str("path", st.Path()).Msg("store opened")
	return st, nil
}

// loadData is the shared ledger rebuild used by the read-only commands.
func loadData(ctx context.Context) (*pipeline.LoadResult, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = st.Close() }()

	result, err := pipeline.Load(ctx, st, cfg.Params())
	if err != nil {
		return nil, err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Rebuilt %s ledger days from %s entries and %s payouts in %s\n",
			cli.FormatNumber(int64(len(result.Ledger))),
			cli.FormatNumber(int64(len(result.Entries))),
			cli.FormatNumber(int64(len(result.Payouts))),
			result.Elapsed.Round(time.Millisecond),
		)
	}
	return result, nil
}

func runReport(c *cobra.Command, _ []string) error {
	result, err := loadData(c.Context())
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Print(cli.RenderReport(result, cfg.Finance.PayoutDelayDays))
	return nil
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Latest balance, profit, forecast and cut-off day detail",
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
