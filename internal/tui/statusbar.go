package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/school1992-cyber/website/internal/state"
)

// renderStatusBar summarises the holder's phase on the left and key hints
// on the right.
func renderStatusBar(snap state.Snapshot, shown, total int, width int, hintText string) string {
	var left string
	switch snap.Phase {
	case state.PhaseIdle:
		left = " idle"
	case state.PhaseLoading:
		left = " loading"
		if snap.HasView {
			left += fmt.Sprintf(" · %d records (stale)", total)
		}
	case state.PhaseReady:
		left = " " + statusLiveStyle.Render("live") + fmt.Sprintf(" · %d records", total)
		if snap.Query != "" {
			left += fmt.Sprintf(" · %d match %q", shown, snap.Query)
		}
		if !snap.UpdatedAt.IsZero() {
			left += " · " + relativeTime(snap.UpdatedAt)
		}
	case state.PhaseFailed:
		left = " " + statusErrStyle.Render("failed")
		if snap.Err != nil {
			left += ": " + snap.Err.Error()
		}
		if snap.HasView {
			left += " · showing last data"
		}
	}

	right := " " + hintText + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		// Hints give way to the status text on narrow terminals.
		right = ""
		gap = max(width-lipgloss.Width(left), 0)
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}

func renderBottomBar(hintText string, width int) string {
	right := " " + hintText + " "

	gap := width - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
