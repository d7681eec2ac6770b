// Package cmd implements the fincompass CLI commands.
package cmd

import (
	"fmt"

	"github.com/theirongolddev/fincompass/internal/config"
	"github.com/theirongolddev/fincompass/internal/store"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(c *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Printf("  Environment prefix: %s_\n", config.EnvPrefix)
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Database:        %s\n", cfg.DBPath())
	if st, err := store.Open(c.Context(), cfg.DBPath()); err == nil {
		counts, cerr := st.Counts(c.Context())
		version, verr := st.SchemaVersion(c.Context())
		if cerr == nil && verr == nil {
			fmt.Printf("    Records:         %d entries, %d payouts (schema v%d)\n", counts.Entries, counts.Payouts, version)
		}
		_ = st.Close()
	}
	fmt.Println()

	f := cfg.Finance
	fmt.Println("  [Finance]")
	fmt.Printf("    Payout delay:    %d days\n", f.PayoutDelayDays)
	fmt.Printf("    Initial cash:    %s\n", f.InitialCash.StringFixed(2))
	fmt.Printf("    Profit margin:   %.2f\n", f.AverageProfitMargin)
	fmt.Printf("    Buffer:          %s\n", f.IncrementBuffer.StringFixed(2))
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %ds\n", cfg.Daemon.IntervalSec)
	fmt.Printf("    Events:   %d\n", cfg.Daemon.EventsLimit)
	fmt.Println()

	fmt.Println("  Run `fincompass setup` to reconfigure.")
	return nil
}
