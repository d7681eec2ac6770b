package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/fincompass/internal/cli"
	"github.com/theirongolddev/fincompass/internal/config"
	"github.com/theirongolddev/fincompass/internal/tui/components"
	"github.com/theirongolddev/fincompass/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const (
	settingsFieldDelay = iota
	settingsFieldInitialCash
	settingsFieldMargin
	settingsFieldBuffer
	settingsFieldTheme
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40
	return ti
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false

	ti := newSettingsInput()
	fin := a.cfg.Finance

	switch a.settings.cursor {
	case settingsFieldDelay:
		ti.Placeholder = "15"
		ti.SetValue(strconv.Itoa(fin.PayoutDelayDays))
	case settingsFieldInitialCash:
		ti.Placeholder = "3000"
		ti.SetValue(fin.InitialCash.String())
	case settingsFieldMargin:
		ti.Placeholder = "0.25"
		ti.SetValue(formatFloat(fin.AverageProfitMargin))
	case settingsFieldBuffer:
		ti.Placeholder = "900"
		ti.SetValue(fin.IncrementBuffer.String())
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(a.cfg.Appearance.Theme)
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		changed := a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		if changed {
			a.refreshing = true
			return a, loadDataCmd(a.store, a.cfg.Params())
		}
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave applies the edited field and persists the config. It
// reports whether the ledger needs rebuilding.
func (a *App) settingsSave() bool {
	cfg := a.cfg
	val := strings.TrimSpace(a.settings.input.Value())
	rebuild := true

	var err error
	switch a.settings.cursor {
	case settingsFieldDelay:
		cfg.Finance.PayoutDelayDays, err = strconv.Atoi(val)
	case settingsFieldInitialCash:
		cfg.Finance.InitialCash, err = decimal.NewFromString(val)
	case settingsFieldMargin:
		cfg.Finance.AverageProfitMargin, err = strconv.ParseFloat(val, 64)
	case settingsFieldBuffer:
		cfg.Finance.IncrementBuffer, err = decimal.NewFromString(val)
	case settingsFieldTheme:
		rebuild = false
		if theme.ByName(val).Name != val {
			err = fmt.Errorf("unknown theme %q", val)
		}
		cfg.Appearance.Theme = val
	}
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		a.settings.saveErr = err
		return false
	}

	a.cfg = cfg
	theme.SetActive(cfg.Appearance.Theme)
	a.settings.saveErr = config.Save(cfg)
	return rebuild
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := a.cfg

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GainBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	type field struct {
		label string
		value string
	}

	fields := []field{
		{"Payout delay", fmt.Sprintf("%d days", cfg.Finance.PayoutDelayDays)},
		{"Initial cash", cli.FormatMoney(cfg.Finance.InitialCash)},
		{"Profit margin", cli.FormatPercent(cfg.Finance.AverageProfitMargin)},
		{"Increment buffer", cli.FormatMoney(cfg.Finance.IncrementBuffer)},
		{"Theme", cfg.Appearance.Theme},
	}

	innerW := components.CardInnerWidth(cw)

	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			if pad := innerW - lipgloss.Width(marker) - lipgloss.Width(label) - lipgloss.Width(value); pad > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Caution).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Not saved: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Database:        ") + valueStyle.Render(cfg.DBPath()) + "\n")
	if a.result != nil {
		infoBody.WriteString(labelStyle.Render("Records:         ") + valueStyle.Render(
			fmt.Sprintf("%d entries, %d payouts", len(a.result.Entries), len(a.result.Payouts))) + "\n")
		infoBody.WriteString(labelStyle.Render("Rebuild time:    ") + valueStyle.Render(a.result.Elapsed.String()) + "\n")
	}
	infoBody.WriteString(labelStyle.Render("Config file:     ") + valueStyle.Render(config.ConfigPath()))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))

	return b.String()
}
