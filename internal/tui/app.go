// Package tui provides the interactive Bubble Tea dashboard for fincompass.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/fincompass/internal/config"
	"github.com/theirongolddev/fincompass/internal/model"
	"github.com/theirongolddev/fincompass/internal/pipeline"
	"github.com/theirongolddev/fincompass/internal/tui/components"
	"github.com/theirongolddev/fincompass/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
)

// Store is the record store as seen by the dashboard.
type Store interface {
	pipeline.Source
	EntryExists(ctx context.Context, date string) (bool, error)
	UpsertEntry(ctx context.Context, e model.DailyEntry) error
	DeleteEntry(ctx context.Context, date string) (bool, error)
	AppendPayout(ctx context.Context, po model.PayoutAdjustment) (int64, error)
	DeletePayout(ctx context.Context, id int64) (bool, error)
}

// DataLoadedMsg is sent when the ledger has been rebuilt from the store.
type DataLoadedMsg struct {
	Result *pipeline.LoadResult
	Err    error
}

// Tab indices, in the order of components.Tabs.
const (
	tabOverview = iota
	tabLedger
	tabCharts
	tabPayouts
	tabEntries
	tabSettings
)

// App is the root Bubble Tea model.
type App struct {
	store Store
	cfg   config.Config

	// Data
	result  *pipeline.LoadResult
	loaded  bool
	loadErr error

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	notice    string
	noticeBad bool

	// Per-tab state
	ledgerScroll int
	entryCursor  int
	payoutCursor int
	settings     settingsState

	// Active huh form, if any. Bound values live behind pointers because
	// the model is copied on every update.
	form         *huh.Form
	formKind     formKind
	entryVals    *EntryFormValues
	payoutVals   *PayoutFormValues
	confirmVals  *confirmValues
	setupVals    *SetupValues
	pendingEntry model.DailyEntry
	needSetup    bool

	spinner spinner.Model
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	// Scroll navigation
	scrollOverhead    = 10 // approximate header + status bar height for half-page calc
	minHalfPageScroll = 1  // minimum lines for half-page scroll
	minContentHeight  = 5  // minimum content area height

	defaultRefreshInterval = 30 * time.Second
	storeTimeout           = 10 * time.Second
)

// NewApp creates a new TUI app model over an open store.
func NewApp(st Store, cfg config.Config) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	refresh := time.Duration(cfg.Daemon.IntervalSec) * time.Second
	if refresh < 10*time.Second {
		refresh = defaultRefreshInterval
	}

	return App{
		store:           st,
		cfg:             cfg,
		needSetup:       !config.Exists(),
		refreshInterval: refresh,
		spinner:         sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.store, a.cfg.Params()),
		a.spinner.Tick,
		tickCmd(),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(a.formWidth())
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.form != nil {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.form != nil {
			return a.updateForm(msg)
		}
		if !a.loaded {
			return a, nil
		}
		return a.updateKeys(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.refreshing = false
		a.lastRefresh = time.Now()
		if msg.Err != nil {
			a.loadErr = msg.Err
			a.setNotice("Load failed: "+msg.Err.Error(), true)
			log.Error().Err(msg.Err).Msg("ledger load failed")
			return a, nil
		}
		a.loadErr = nil
		a.result = msg.Result
		a.clampCursors()

		if a.needSetup && a.form == nil {
			return a.openSetupForm()
		}
		return a, nil

	case entryCheckedMsg:
		if msg.err != nil {
			a.setNotice(msg.err.Error(), true)
			return a, nil
		}
		if msg.exists {
			a.pendingEntry = msg.entry
			return a.openOverwriteForm(msg.entry)
		}
		return a, saveEntryCmd(a.store, msg.entry, false)

	case savedMsg:
		if msg.err != nil {
			a.setNotice(msg.err.Error(), true)
			log.Error().Err(msg.err).Msg("dashboard write failed")
			return a, nil
		}
		a.setNotice(msg.notice, false)
		if !msg.reload {
			return a, nil
		}
		a.refreshing = true
		return a, loadDataCmd(a.store, a.cfg.Params())

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && a.form == nil &&
			time.Since(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			cmds = append(cmds, loadDataCmd(a.store, a.cfg.Params()))
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages to the form (cursor blinks, etc.)
	if a.form != nil {
		return a.updateForm(msg)
	}

	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.moveCursor(-1)
	case tea.MouseButtonWheelDown:
		a.moveCursor(1)
	case tea.MouseButtonLeft:
		if msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Settings tab has its own keybindings (text input)
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	halfPage := max((a.height-scrollOverhead)/2, minHalfPageScroll)

	switch key {
	case "j", "down":
		a.moveCursor(1)
		return a, nil
	case "k", "up":
		a.moveCursor(-1)
		return a, nil
	case "ctrl+d":
		a.moveCursor(halfPage)
		return a, nil
	case "ctrl+u":
		a.moveCursor(-halfPage)
		return a, nil
	case "g":
		a.moveCursor(-a.rowCount())
		return a, nil
	case "G":
		a.moveCursor(a.rowCount())
		return a, nil
	}

	switch a.activeTab {
	case tabSettings:
		if key == "enter" {
			return a.settingsStartEdit()
		}
	case tabEntries:
		if key == "d" {
			if e, ok := a.selectedEntry(); ok {
				return a.openDeleteEntryForm(e)
			}
			return a, nil
		}
	case tabPayouts:
		if key == "d" {
			if po, ok := a.selectedPayout(); ok {
				return a.openDeletePayoutForm(po)
			}
			return a, nil
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, loadDataCmd(a.store, a.cfg.Params())
		}
		return a, nil
	case "R":
		a.autoRefresh = !a.autoRefresh
		state := "off"
		if a.autoRefresh {
			state = "on"
		}
		a.setNotice("Auto-refresh "+state, false)
		return a, nil
	case "a":
		return a.openEntryForm()
	case "n":
		return a.openPayoutForm()
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if len(key) == 1 {
		if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

// rowCount is the number of navigable rows on the active tab.
func (a App) rowCount() int {
	if a.result == nil {
		if a.activeTab == tabSettings {
			return settingsFieldCount
		}
		return 0
	}
	switch a.activeTab {
	case tabLedger:
		return len(a.result.Ledger)
	case tabEntries:
		return len(a.result.Entries)
	case tabPayouts:
		return len(a.result.Payouts)
	case tabSettings:
		return settingsFieldCount
	}
	return 0
}

func (a *App) moveCursor(delta int) {
	last := a.rowCount() - 1
	clamp := func(v int) int { return max(0, min(v, last)) }
	switch a.activeTab {
	case tabLedger:
		a.ledgerScroll = clamp(a.ledgerScroll + delta)
	case tabEntries:
		a.entryCursor = clamp(a.entryCursor + delta)
	case tabPayouts:
		a.payoutCursor = clamp(a.payoutCursor + delta)
	case tabSettings:
		a.settings.cursor = clamp(a.settings.cursor + delta)
	}
}

func (a *App) clampCursors() {
	if a.result == nil {
		return
	}
	clamp := func(v, n int) int { return max(0, min(v, n-1)) }
	a.ledgerScroll = clamp(a.ledgerScroll, len(a.result.Ledger))
	a.entryCursor = clamp(a.entryCursor, len(a.result.Entries))
	a.payoutCursor = clamp(a.payoutCursor, len(a.result.Payouts))
}

func (a *App) setNotice(text string, bad bool) {
	a.notice = text
	a.noticeBad = bad
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.form != nil {
		return a.viewForm()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  fincompass needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ fincompass"))
	b.WriteString(subtitleStyle.Render(" · cash flow ledger"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Rebuilding ledger..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewForm() string {
	t := theme.Active
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2)

	body := a.form.View()
	if a.notice != "" && a.noticeBad {
		body = lipgloss.NewStyle().Foreground(t.Loss).Render(a.notice) + "\n\n" + body
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) formWidth() int {
	return max(min(a.width-8, 72), 40)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Key).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o l c p e x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move through rows"},
			{"g G", "First / Last row"},
			{"^d ^u", "Half-page scroll"},
		}},
		{"Records", []struct{ key, desc string }{
			{"a", "Add or overwrite a day"},
			{"n", "New early payout"},
			{"d", "Delete selected entry / payout"},
			{"Enter", "Edit setting"},
			{"Esc", "Cancel form"},
		}},
		{"General", []struct{ key, desc string }{
			{"r", "Rebuild ledger"},
			{"R", "Toggle auto-refresh"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-11s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar + cut-off pill
	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pillAccent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	pill := pillStyle.Render(" delay ") + pillAccent.Render(fmt.Sprintf("%dd", a.cfg.Finance.PayoutDelayDays))
	if last, ok := a.latest(); ok {
		pill += pillStyle.Render(" │ cut-off ") + pillAccent.Render(model.DayKey(last.Date))
	}
	if a.autoRefresh {
		pill += pillStyle.Render(" │ ") + pillAccent.Render("auto")
	}
	pill += pillStyle.Render(" ")

	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(pill)

	// 2. Status bar
	dataAge := ""
	if a.result != nil {
		dataAge = fmt.Sprintf("%s ago", time.Since(a.lastRefresh).Truncate(time.Second))
	}
	notice := a.notice
	if a.noticeBad && notice != "" {
		notice = lipgloss.NewStyle().Foreground(t.Loss).Background(t.Surface).Render("! " + notice)
	}
	statusBar := components.RenderStatusBar(w, notice, dataAge)

	// 3. Content zone height
	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	// 4. Tab content
	var content string
	switch {
	case a.loadErr != nil && a.result == nil:
		content = components.ContentCard("Error", a.loadErr.Error(), cw)
	case a.activeTab == tabOverview:
		content = a.renderOverviewTab(cw)
	case a.activeTab == tabLedger:
		content = a.renderLedgerTab(cw, contentH)
	case a.activeTab == tabCharts:
		content = a.renderChartsTab(cw, contentH)
	case a.activeTab == tabPayouts:
		content = a.renderPayoutsTab(cw, contentH)
	case a.activeTab == tabEntries:
		content = a.renderEntriesTab(cw, contentH)
	case a.activeTab == tabSettings:
		content = a.renderSettingsTab(cw)
	}

	// 5. Truncate + pad to exactly contentH lines
	content = padHeight(truncateHeight(content, contentH), contentH)

	// 6. Fill each line to full width with background (fixes gaps between cards)
	content = fillLinesWithBackground(content, cw, t.Background)

	// 7. Place content with background fill (handles centering when w > cw)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

func (a App) latest() (model.LedgerRow, bool) {
	if a.result == nil {
		return model.LedgerRow{}, false
	}
	return a.result.Latest()
}

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}

// loadDataCmd reads every record and rebuilds the ledger in the background.
func loadDataCmd(st Store, p pipeline.Params) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := storeContext()
		defer cancel()
		res, err := pipeline.Load(ctx, st, p)
		return DataLoadedMsg{Result: res, Err: err}
	}
}

// ChartDateLabels builds compact X-axis labels for a chronological ledger.
// First label and month boundaries show the month; everything else the day.
func ChartDateLabels(rows []model.LedgerRow) []string {
	labels := make([]string, len(rows))
	prevMonth := time.Month(0)
	for i, r := range rows {
		m := r.Date.Month()
		switch {
		case i == 0 || m != prevMonth:
			labels[i] = r.Date.Format("Jan")
		default:
			labels[i] = fmt.Sprintf("%d", r.Date.Day())
		}
		prevMonth = m
	}
	return labels
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
func (a App) tabAtX(x int) int {
	return components.TabAtX(x, a.activeTab)
}
