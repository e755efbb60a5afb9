package tui

import (
	"time"

	"github.com/school1992-cyber/website/internal/history"
	"github.com/school1992-cyber/website/internal/reshape"
	"github.com/school1992-cyber/website/internal/state"
	"github.com/school1992-cyber/website/internal/update"
)

// tableLoadedMsg carries the outcome of one fetch back to the update loop.
type tableLoadedMsg struct {
	ticket   state.Ticket
	sheet    string
	view     reshape.View
	rows     int
	err      error
	duration time.Duration
}

type openErrMsg struct {
	err error
}

type updateMsg struct {
	result *update.Result
}

// summariesMsg refreshes the per-tab fetch history shown on the home screen.
type summariesMsg struct {
	byTab map[string]history.Summary
}
