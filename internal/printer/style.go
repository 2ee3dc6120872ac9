package printer

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/slok/taskmon/internal/monitor"
)

// colorStatus renders text with the terminal color of a view color class.
func colorStatus(text string, color monitor.Color, noColor bool) string {
	if noColor {
		return text
	}
	return colorStyle(color).Render(text)
}

func colorStyle(color monitor.Color) lipgloss.Style {
	c := lipgloss.Color("244")
	switch color {
	case monitor.ColorPrimary:
		c = lipgloss.Color("33")
	case monitor.ColorSuccess:
		c = lipgloss.Color("42")
	case monitor.ColorDanger:
		c = lipgloss.Color("196")
	}
	return lipgloss.NewStyle().Foreground(c)
}
