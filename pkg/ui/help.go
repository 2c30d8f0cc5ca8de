package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var helpSections = []string{"Navigation", "Tree", "Other"}

// RenderHelp renders the key reference modal centered in width x height.
func RenderHelp(keys Keys, theme Theme, width, height int) string {
	r := theme.Renderer

	modalWidth := 44
	if width > 0 && modalWidth > width-4 {
		modalWidth = width - 4
	}
	if modalWidth < 20 {
		modalWidth = 20
	}

	titleStyle := r.NewStyle().Bold(true).Foreground(theme.Primary)
	sectionStyle := r.NewStyle().Bold(true).Foreground(theme.Secondary)
	keyStyle := r.NewStyle().Foreground(theme.Highlight).Width(10)
	descStyle := r.NewStyle().Foreground(theme.Muted)
	footerStyle := r.NewStyle().Foreground(theme.Muted).Italic(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Quick Reference"))
	b.WriteString("\n")
	b.WriteString(descStyle.Render(strings.Repeat("─", modalWidth-6)))
	b.WriteString("\n")

	for i, group := range keys.FullHelp() {
		b.WriteString("\n")
		if i < len(helpSections) {
			b.WriteString(sectionStyle.Render(helpSections[i]))
			b.WriteString("\n")
		}
		for _, binding := range group {
			b.WriteString(renderBinding(binding, keyStyle, descStyle))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("? or esc to close"))

	modal := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Secondary).
		Padding(1, 2).
		Width(modalWidth).
		Render(b.String())

	if width <= 0 || height <= 0 {
		return modal
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal)
}

func renderBinding(b key.Binding, keyStyle, descStyle lipgloss.Style) string {
	h := b.Help()
	return keyStyle.Render(h.Key) + descStyle.Render(h.Desc)
}
