package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/school1992-cyber/website/internal/config"
)

// renderTabBar draws the numbered tab strip, stopping before it would
// exceed width.
func renderTabBar(tabs []config.Tab, active int, width int) string {
	sep := tabSeparatorStyle.Render(" · ")

	var row string
	for i, t := range tabs {
		style := tabInactiveStyle
		if i == active {
			style = tabActiveStyle
		}
		part := style.Render(fmt.Sprintf("%d %s", i+1, t.Label))

		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}

func placeholderFor(t config.Tab) string {
	if t.Placeholder != "" {
		return t.Placeholder
	}
	return "Search " + t.Label + "..."
}

func loadingFor(t config.Tab) string {
	if t.Loading != "" {
		return t.Loading
	}
	return "Loading " + t.Label
}

func actionFor(t config.Tab) string {
	if t.Action != "" {
		return t.Action
	}
	return "OPEN"
}
