package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/fincompass/internal/config"
	"github.com/theirongolddev/fincompass/internal/tui"
	"github.com/theirongolddev/fincompass/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(c *cobra.Command, _ []string) error {
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	// The alt screen owns stderr; keep logs in a file instead.
	logFile, err := openTUILog()
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()
	log.Logger = zerolog.New(logFile).With().Timestamp().Logger()

	st, err := openStore(c.Context())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	app := tui.NewApp(st, cfg)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(c.Context()))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

func openTUILog() (*os.File, error) {
	dir := config.DataDir()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	//nolint:gosec // log path is under the user's data directory
	f, err := os.OpenFile(filepath.Join(dir, "tui.log"), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open tui log: %w", err)
	}
	return f, nil
}
