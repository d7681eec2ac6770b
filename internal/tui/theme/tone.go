package theme

import "github.com/charmbracelet/lipgloss"

// Tone is the semantic coloring of a money figure.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneGain
	ToneLoss
	ToneWarn
)

// ToneOf classifies a signed amount.
func ToneOf(v float64) Tone {
	switch {
	case v > 0:
		return ToneGain
	case v < 0:
		return ToneLoss
	default:
		return ToneNeutral
	}
}

// Color resolves a tone against the theme.
func (t Theme) Color(tone Tone) lipgloss.Color {
	switch tone {
	case ToneGain:
		return t.Gain
	case ToneLoss:
		return t.Loss
	case ToneWarn:
		return t.Warn
	default:
		return t.TextPrimary
	}
}

// Names lists the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}
