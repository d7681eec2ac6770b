package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/fincompass/internal/config"
	"github.com/theirongolddev/fincompass/internal/entry"
	"github.com/theirongolddev/fincompass/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"
)

// SetupValues backs the first-run setup form.
type SetupValues struct {
	PayoutDelayDays string
	InitialCash     string
	Margin          string
	IncrementBuffer string
	Theme           string
}

// SetupValuesFrom seeds the form with the current settings.
func SetupValuesFrom(cfg config.Config) *SetupValues {
	return &SetupValues{
		PayoutDelayDays: strconv.Itoa(cfg.Finance.PayoutDelayDays),
		InitialCash:     cfg.Finance.InitialCash.String(),
		Margin:          strconv.FormatFloat(cfg.Finance.AverageProfitMargin, 'f', -1, 64),
		IncrementBuffer: cfg.Finance.IncrementBuffer.String(),
		Theme:           cfg.Appearance.Theme,
	}
}

// Apply copies the answers into cfg and validates the result.
func (v *SetupValues) Apply(cfg *config.Config) error {
	delay, err := strconv.Atoi(strings.TrimSpace(v.PayoutDelayDays))
	if err != nil {
		return fmt.Errorf("payout delay %q: %w", v.PayoutDelayDays, err)
	}
	margin, err := strconv.ParseFloat(strings.TrimSpace(v.Margin), 64)
	if err != nil {
		return fmt.Errorf("profit margin %q: %w", v.Margin, err)
	}
	amounts := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"initial cash", v.InitialCash, &cfg.Finance.InitialCash},
		{"increment buffer", v.IncrementBuffer, &cfg.Finance.IncrementBuffer},
	}
	for _, f := range amounts {
		n, err := decimal.NewFromString(strings.TrimSpace(f.raw))
		if err != nil {
			return fmt.Errorf("%s %q: %w", f.name, f.raw, err)
		}
		*f.dst = n
	}
	cfg.Finance.PayoutDelayDays = delay
	cfg.Finance.AverageProfitMargin = margin
	if v.Theme != "" {
		cfg.Appearance.Theme = v.Theme
	}
	return cfg.Validate()
}

func validateMargin(s string) error {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || n < 0 || n > 1 {
		return fmt.Errorf("margin must be between 0 and 1")
	}
	return nil
}

// NewSetupForm builds the first-run setup wizard.
func NewSetupForm(v *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to fincompass").
				Description("A few numbers drive the ledger and the growth forecast.\nThey can be changed later in the Settings tab or with `fincompass setup`."),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Payout delay (days)").
				Description("Days between an order and the marketplace settling it.").
				Value(&v.PayoutDelayDays).
				Validate(entry.ValidateCount),
			huh.NewInput().
				Title("Initial cash").
				Description("Bank balance before the first recorded day.").
				Value(&v.InitialCash).
				Validate(entry.ValidateAmount),
			huh.NewInput().
				Title("Average profit margin").
				Description("Share of a refund assumed lost as profit, 0 to 1.").
				Value(&v.Margin).
				Validate(validateMargin),
			huh.NewInput().
				Title("Increment buffer").
				Description("Capital needed to fund one more order per day.").
				Value(&v.IncrementBuffer).
				Validate(entry.ValidatePositiveAmount),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.Theme),
		),
	).WithKeyMap(formKeyMap()).WithShowHelp(true)
}

func (a App) openSetupForm() (tea.Model, tea.Cmd) {
	a.setupVals = SetupValuesFrom(a.cfg)
	return a.showForm(formSetup, NewSetupForm(a.setupVals))
}

// applySetup saves the wizard answers and rebuilds the ledger with them.
func (a App) applySetup() (tea.Model, tea.Cmd) {
	a.needSetup = false
	cfg := a.cfg
	if err := a.setupVals.Apply(&cfg); err != nil {
		a.setNotice(err.Error(), true)
		return a, nil
	}
	theme.SetActive(cfg.Appearance.Theme)
	a.cfg = cfg
	if err := config.Save(cfg); err != nil {
		a.setNotice("Settings apply to this session only: "+err.Error(), true)
	} else {
		a.setNotice("Saved to "+config.ConfigPath(), false)
	}
	a.refreshing = true
	return a, loadDataCmd(a.store, a.cfg.Params())
}
