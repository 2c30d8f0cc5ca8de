package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the colors and styles used by the grid.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor

	Selected lipgloss.Style
	Header   lipgloss.Style
	Footer   lipgloss.Style
}

// DefaultTheme builds the standard theme on r.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#5A3FC0", Dark: "#A78BFA"},
		Secondary: lipgloss.AdaptiveColor{Light: "#B7791F", Dark: "#F6C453"},
		Muted:     lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6B6B6B"},
		Highlight: lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#67E8F9"},
		Error:     lipgloss.AdaptiveColor{Light: "#C53030", Dark: "#FC8181"},
	}
	t.Selected = r.NewStyle().
		Background(lipgloss.AdaptiveColor{Light: "#E9E3FF", Dark: "#3B2F63"}).
		Bold(true)
	t.Header = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.Footer = r.NewStyle().Foreground(t.Muted)
	return t
}
