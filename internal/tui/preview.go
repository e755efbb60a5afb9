package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderPreview shows the selected link's context and full URL.
func renderPreview(item *linkItem, action string, width, height int) string {
	if item == nil {
		return lipglossCenter("No document selected", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := previewTitleStyle.Width(contentWidth).Render(item.Group)
	label := item.Label
	if label == "" {
		label = "(untitled)"
	}
	source := previewSourceStyle.Width(contentWidth).Render(label)
	body := previewBodyStyle.Width(contentWidth).Render(wrapURL(item.URL(), contentWidth))
	hint := previewLinkStyle.Width(contentWidth).Render("o " + strings.ToLower(action))

	content := lipgloss.JoinVertical(lipgloss.Left, title, source, body, hint)

	lines := strings.Split(content, "\n")
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// wrapURL breaks s into width-sized chunks. URLs have no spaces to wrap on.
func wrapURL(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	var lines []string
	for len(runes) > width {
		lines = append(lines, string(runes[:width]))
		runes = runes[width:]
	}
	lines = append(lines, string(runes))
	return strings.Join(lines, "\n")
}
