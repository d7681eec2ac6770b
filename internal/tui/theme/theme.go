// Package theme defines color themes for the fincompass dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme maps the dashboard's color roles to concrete colors.
type Theme struct {
	Name string

	Background    lipgloss.Color
	Surface       lipgloss.Color // cards and panels
	SurfaceBright lipgloss.Color // active tab, selected row
	Border        lipgloss.Color
	BorderAccent  lipgloss.Color // focused card
	TextDim       lipgloss.Color // hints
	TextMuted     lipgloss.Color // labels
	TextPrimary   lipgloss.Color
	Accent        lipgloss.Color
	AccentBright  lipgloss.Color

	// Money roles.
	Gain          lipgloss.Color // positive cash flow, inflow
	GainBright    lipgloss.Color
	Loss          lipgloss.Color // negative cash flow, errors
	Warn          lipgloss.Color // unattributed payouts, stale data
	Caution       lipgloss.Color
	Balance       lipgloss.Color // bank balance series
	BalanceBright lipgloss.Color
	Profit        lipgloss.Color // cumulative profit series
	Key           lipgloss.Color // keybinding hints
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Background:    "#100F0F",
	Surface:       "#1C1B1A",
	SurfaceBright: "#343331",
	Border:        "#403E3C",
	BorderAccent:  "#3AA99F",
	TextDim:       "#575653",
	TextMuted:     "#878580",
	TextPrimary:   "#FFFCF0",
	Accent:        "#3AA99F",
	AccentBright:  "#5BC8BE",
	Gain:          "#879A39",
	GainBright:    "#A3B859",
	Loss:          "#D14D41",
	Warn:          "#D0A215",
	Caution:       "#DA702C",
	Balance:       "#4385BE",
	BalanceBright: "#6BA3D6",
	Profit:        "#CE5D97",
	Key:           "#24837B",
}

// FlexokiLight is the paper variant for light terminals.
var FlexokiLight = Theme{
	Name:          "flexoki-light",
	Background:    "#FFFCF0",
	Surface:       "#F2F0E5",
	SurfaceBright: "#E6E4D9",
	Border:        "#CECDC3",
	BorderAccent:  "#24837B",
	TextDim:       "#B7B5AC",
	TextMuted:     "#6F6E69",
	TextPrimary:   "#100F0F",
	Accent:        "#24837B",
	AccentBright:  "#3AA99F",
	Gain:          "#66800B",
	GainBright:    "#879A39",
	Loss:          "#AF3029",
	Warn:          "#AD8301",
	Caution:       "#BC5215",
	Balance:       "#205EA6",
	BalanceBright: "#4385BE",
	Profit:        "#A02F6F",
	Key:           "#24837B",
}

// CatppuccinMocha is a pastel dark theme.
var CatppuccinMocha = Theme{
	Name:          "catppuccin-mocha",
	Background:    "#1E1E2E",
	Surface:       "#313244",
	SurfaceBright: "#585B70",
	Border:        "#585B70",
	BorderAccent:  "#89B4FA",
	TextDim:       "#6C7086",
	TextMuted:     "#A6ADC8",
	TextPrimary:   "#CDD6F4",
	Accent:        "#89B4FA",
	AccentBright:  "#B4D0FB",
	Gain:          "#A6E3A1",
	GainBright:    "#C6F6C1",
	Loss:          "#F38BA8",
	Warn:          "#F9E2AF",
	Caution:       "#FAB387",
	Balance:       "#74C7EC",
	BalanceBright: "#B4D0FB",
	Profit:        "#F5C2E7",
	Key:           "#94E2D5",
}

// TokyoNight is a cool blue and purple theme.
var TokyoNight = Theme{
	Name:          "tokyo-night",
	Background:    "#1A1B26",
	Surface:       "#24283B",
	SurfaceBright: "#414868",
	Border:        "#565F89",
	BorderAccent:  "#7AA2F7",
	TextDim:       "#565F89",
	TextMuted:     "#A9B1D6",
	TextPrimary:   "#C0CAF5",
	Accent:        "#7AA2F7",
	AccentBright:  "#A9C1FF",
	Gain:          "#9ECE6A",
	GainBright:    "#B9E87A",
	Loss:          "#F7768E",
	Warn:          "#E0AF68",
	Caution:       "#FF9E64",
	Balance:       "#7DCFFF",
	BalanceBright: "#A9C1FF",
	Profit:        "#BB9AF7",
	Key:           "#7DCFFF",
}

// Terminal uses the 16 ANSI colors only.
var Terminal = Theme{
	Name:          "terminal",
	Background:    "0",
	Surface:       "0",
	SurfaceBright: "8",
	Border:        "8",
	BorderAccent:  "6",
	TextDim:       "8",
	TextMuted:     "7",
	TextPrimary:   "15",
	Accent:        "6",
	AccentBright:  "14",
	Gain:          "2",
	GainBright:    "10",
	Loss:          "1",
	Warn:          "3",
	Caution:       "11",
	Balance:       "4",
	BalanceBright: "12",
	Profit:        "5",
	Key:           "6",
}

// All available themes, in display order.
var All = []Theme{FlexokiDark, FlexokiLight, CatppuccinMocha, TokyoNight, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
