package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/fixboard/pkg/insight"
)

// Theme bundles the dashboard's colors and pre-computed styles. Styles are
// created once at startup instead of per-frame.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor

	Base      lipgloss.Style
	Header    lipgloss.Style
	Muted     lipgloss.Style
	KPIBox    lipgloss.Style
	KPIValue  lipgloss.Style
	KPILabel  lipgloss.Style
	WarnText  lipgloss.Style
	ErrText   lipgloss.Style
	ChartBox  lipgloss.Style
	Section   lipgloss.Style
	StatusBar lipgloss.Style

	// BarStyles is the fixed 8-color chart palette as foreground styles,
	// cycled across bars.
	BarStyles [8]lipgloss.Style
}

// DefaultTheme returns the dashboard theme for the given renderer.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},
		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Warning:   lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},
		Error:     lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Header = r.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.Muted = r.NewStyle().Foreground(t.Secondary)

	t.KPIBox = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 2).
		Align(lipgloss.Center)

	t.KPIValue = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.KPILabel = r.NewStyle().Foreground(t.Subtext)

	t.WarnText = r.NewStyle().Foreground(t.Warning)
	t.ErrText = r.NewStyle().Foreground(t.Error).Bold(true)

	t.ChartBox = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)

	t.Section = r.NewStyle().
		Foreground(t.Primary).
		Bold(true).
		Underline(true)

	t.StatusBar = r.NewStyle().Foreground(t.Subtext)

	for i, hex := range insight.Palette {
		t.BarStyles[i] = r.NewStyle().Foreground(lipgloss.Color(hex))
	}

	return t
}

// BarStyle returns the palette style for the i-th bar, cycling.
func (t Theme) BarStyle(i int) lipgloss.Style {
	return t.BarStyles[i%len(t.BarStyles)]
}
