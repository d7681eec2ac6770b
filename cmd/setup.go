package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/fincompass/internal/config"
	"github.com/theirongolddev/fincompass/internal/tui"
	"github.com/theirongolddev/fincompass/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	theme.SetActive(cfg.Appearance.Theme)

	vals := tui.SetupValuesFrom(cfg)
	if err := tui.NewSetupForm(vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return err
	}

	next := cfg
	if err := vals.Apply(&next); err != nil {
		return err
	}
	if err := config.Save(next); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	cfg = next

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `fincompass setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
