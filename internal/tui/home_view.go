package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/school1992-cyber/website/internal/config"
	"github.com/school1992-cyber/website/internal/history"
)

var asciiLogo = []string{
	`██████╗  ██████╗ ██████╗ ████████╗ █████╗ ██╗`,
	`██╔══██╗██╔═══██╗██╔══██╗╚══██╔══╝██╔══██╗██║`,
	`██████╔╝██║   ██║██████╔╝   ██║   ███████║██║`,
	`██╔═══╝ ██║   ██║██╔══██╗   ██║   ██╔══██║██║`,
	`██║     ╚██████╔╝██║  ██║   ██║   ██║  ██║███████╗`,
	`╚═╝      ╚═════╝ ╚═╝  ╚═╝   ╚═╝   ╚═╝  ╚═╝╚══════╝`,
}

func renderHomeScreen(width, height int, tabs []config.Tab, last map[string]history.Summary, updateVersion string) string {
	logoStyle := lipgloss.NewStyle().Foreground(colorAccent)
	keyStyle := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(colorText)
	metaStyle := lipgloss.NewStyle().Foreground(colorDim)

	var lines []string

	// ASCII logo
	for _, l := range asciiLogo {
		lines = append(lines, logoStyle.Render(l))
	}
	lines = append(lines, "")
	lines = append(lines, "")

	labelW := 0
	for _, t := range tabs {
		labelW = max(labelW, lipgloss.Width(t.Label))
	}

	// One menu item per tab
	for i, t := range tabs {
		if i >= 9 {
			break
		}
		item := "          " + keyStyle.Render(fmt.Sprintf("[%d]", i+1)) + "  " + labelStyle.Render(padRight(t.Label, labelW))
		if s, ok := last[t.ID]; ok {
			item += "  " + metaStyle.Render(lastFetchLine(s))
		}
		lines = append(lines, item)
	}
	lines = append(lines, "")
	lines = append(lines, "          "+keyStyle.Render("[?]")+"  "+labelStyle.Render("Help"))
	lines = append(lines, "          "+keyStyle.Render("[q]")+"  "+labelStyle.Render("Quit"))

	// Update notification
	if updateVersion != "" {
		lines = append(lines, "")
		lines = append(lines, "          "+logoStyle.Render("Update available: v"+updateVersion+" → github.com/school1992-cyber/website/releases"))
	}

	content := strings.Join(lines, "\n")
	contentHeight := strings.Count(content, "\n") + 1

	topPad := (height - contentHeight) / 3
	if topPad < 0 {
		topPad = 0
	}

	// Center horizontally
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		strings.Repeat("\n", topPad)+content)
}

// lastFetchLine describes a tab's fetch history in a few words.
func lastFetchLine(s history.Summary) string {
	if s.Fetches == 0 {
		return "never fetched"
	}
	line := "fetched " + relativeTime(s.LastFetch)
	if s.Failures > 0 {
		line += fmt.Sprintf(" · %d failed", s.Failures)
	}
	return line
}
