package styles

import "github.com/charmbracelet/lipgloss"

// PanelStyle returns the panel border style for the focus state. Focused
// panels take the theme's primary color.
func (p Palette) PanelStyle(focused bool) lipgloss.Style {
	style := lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder())
	if focused {
		return style.BorderForeground(Color(p.Primary))
	}
	return style.BorderForeground(Border)
}
