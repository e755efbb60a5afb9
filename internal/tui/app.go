package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/school1992-cyber/website/internal/browser"
	"github.com/school1992-cyber/website/internal/config"
	"github.com/school1992-cyber/website/internal/history"
	"github.com/school1992-cyber/website/internal/reshape"
	"github.com/school1992-cyber/website/internal/sheet"
	"github.com/school1992-cyber/website/internal/source"
	"github.com/school1992-cyber/website/internal/state"
	"github.com/school1992-cyber/website/internal/update"
	"go.uber.org/zap"
)

type mode int

const (
	modeHome mode = iota
	modeTab
	modeSearch
	modeHelp
)

type App struct {
	cfg     *config.Config
	fetcher source.Fetcher
	holder  *state.Holder
	history *history.Log
	logger  *zap.Logger

	tabs   []config.Tab
	active int
	mode   mode
	// helpReturn is the mode to restore when help closes.
	helpReturn mode
	cursor     int

	width  int
	height int

	// Sub-components
	searchInput textinput.Model
	spinner     spinner.Model
	spinning    bool

	version       string
	checkUpdates  bool
	updateVersion string
	summaries     map[string]history.Summary
	currentDate   string
	err           error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Cfg     *config.Config
	Fetcher source.Fetcher
	// History may be nil, in which case fetches are not recorded.
	History *history.Log
	Logger  *zap.Logger
	// StartTab opens a tab directly instead of the home screen.
	StartTab    string
	Version     string
	CheckUpdate bool
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{
		cfg:          opts.Cfg,
		fetcher:      opts.Fetcher,
		holder:       state.New(logger),
		history:      opts.History,
		logger:       logger,
		tabs:         opts.Cfg.Tabs,
		mode:         modeHome,
		searchInput:  ti,
		spinner:      sp,
		version:      opts.Version,
		checkUpdates: opts.CheckUpdate,
		summaries:    map[string]history.Summary{},
		currentDate:  time.Now().Format("Jan 2"),
	}

	if opts.StartTab != "" {
		for i, t := range a.tabs {
			if t.ID == opts.StartTab {
				a.active = i
				a.mode = modeTab
			}
		}
	}
	if len(a.tabs) > 0 {
		a.searchInput.Placeholder = placeholderFor(a.tabs[a.active])
	}
	return a
}

func (a *App) Init() tea.Cmd {
	var cmds []tea.Cmd

	if a.mode == modeTab {
		cmds = append(cmds, a.beginFetch())
	}
	if a.history != nil {
		cmds = append(cmds, loadSummariesCmd(a.history, a.logger))
	}
	if a.checkUpdates {
		cmds = append(cmds, checkUpdateCmd(a.version))
	}

	return tea.Batch(cmds...)
}

// beginFetch issues a new request for the active tab. Whatever was in
// flight before becomes stale.
func (a *App) beginFetch() tea.Cmd {
	tab := a.tabs[a.active]
	ticket := a.holder.Begin(tab.ID)
	a.logger.Debug("fetch issued",
		zap.String("tab", tab.ID),
		zap.String("sheet", tab.Sheet),
		zap.Uint64("generation", ticket.Generation))

	cmds := []tea.Cmd{a.fetchCmd(tab, ticket)}
	if !a.spinning {
		a.spinning = true
		cmds = append(cmds, a.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// fetchCmd captures everything it needs so the closure never touches App.
func (a *App) fetchCmd(tab config.Tab, ticket state.Ticket) tea.Cmd {
	f := a.fetcher
	timeout := a.cfg.TimeoutDuration()
	kind := reshape.Kind(tab.View)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		t, err := f.Fetch(ctx, tab.Sheet)
		msg := tableLoadedMsg{ticket: ticket, sheet: tab.Sheet, duration: time.Since(start)}
		if err != nil {
			msg.err = err
			return msg
		}
		msg.rows = t.Len()
		msg.view, msg.err = reshape.Reshape(kind, t)
		return msg
	}
}

func (a *App) recordCmd(msg tableLoadedMsg, applied bool) tea.Cmd {
	if a.history == nil {
		return nil
	}
	e := history.Entry{
		Tab:        msg.ticket.Tab,
		Sheet:      msg.sheet,
		Generation: msg.ticket.Generation,
		Rows:       msg.rows,
		Duration:   msg.duration,
		Applied:    applied,
	}
	if msg.err != nil {
		e.Err = msg.err.Error()
	}
	log := a.history
	logger := a.logger
	return func() tea.Msg {
		if _, err := log.Record(e); err != nil {
			logger.Warn("recording fetch", zap.String("tab", e.Tab), zap.Error(err))
			return nil
		}
		return loadSummariesCmd(log, logger)()
	}
}

func loadSummariesCmd(log *history.Log, logger *zap.Logger) tea.Cmd {
	return func() tea.Msg {
		sums, err := log.Summaries()
		if err != nil {
			logger.Warn("loading fetch summaries", zap.Error(err))
			return nil
		}
		byTab := make(map[string]history.Summary, len(sums))
		for _, s := range sums {
			byTab[s.Tab] = s
		}
		return summariesMsg{byTab: byTab}
	}
}

func checkUpdateCmd(version string) tea.Cmd {
	return func() tea.Msg {
		return updateMsg{result: update.Check(context.Background(), version)}
	}
}

func openBrowserCmd(c sheet.Cell) tea.Cmd {
	return func() tea.Msg {
		if err := browser.OpenCell(c); err != nil {
			return openErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case tableLoadedMsg:
		applied := a.holder.Resolve(msg.ticket, msg.view, msg.err)
		fields := []zap.Field{
			zap.String("tab", msg.ticket.Tab),
			zap.Uint64("generation", msg.ticket.Generation),
			zap.Int("rows", msg.rows),
			zap.Duration("duration", msg.duration),
			zap.Bool("applied", applied),
		}
		if msg.err != nil {
			a.logger.Warn("fetch failed", append(fields, zap.Error(msg.err))...)
		} else {
			a.logger.Info("fetch finished", fields...)
		}
		if applied {
			a.clampCursor()
		}
		return a, a.recordCmd(msg, applied)

	case summariesMsg:
		a.summaries = msg.byTab
		return a, nil

	case updateMsg:
		if msg.result != nil {
			a.updateVersion = msg.result.LatestVersion
		}
		return a, nil

	case openErrMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.holder.Snapshot().Phase == state.PhaseLoading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		a.spinning = false
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeHome:
		return a.handleHomeKey(msg)
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeHelp:
		if key.Matches(msg, keys.Help, keys.Cancel) || msg.String() == "q" {
			a.mode = a.helpReturn
		}
		return a, nil
	}

	if i, ok := tabIndex(msg.String()); ok {
		return a, a.selectTab(i)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Home):
		a.goHome()
		return a, nil
	case key.Matches(msg, keys.NextTab):
		return a, a.selectTab((a.active + 1) % len(a.tabs))
	case key.Matches(msg, keys.PrevTab):
		return a, a.selectTab((a.active - 1 + len(a.tabs)) % len(a.tabs))
	case key.Matches(msg, keys.Down):
		if a.cursor < len(a.links())-1 {
			a.cursor++
		}
		return a, nil
	case key.Matches(msg, keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case key.Matches(msg, keys.Open):
		if item := a.selectedLink(); item != nil {
			return a, openBrowserCmd(item.Cell)
		}
		return a, nil
	case key.Matches(msg, keys.Search):
		a.mode = modeSearch
		a.searchInput.Focus()
		return a, textinput.Blink
	case key.Matches(msg, keys.Refresh):
		return a, a.beginFetch()
	case key.Matches(msg, keys.Help):
		a.helpReturn = modeTab
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if i, ok := tabIndex(msg.String()); ok {
		return a, a.selectTab(i)
	}
	switch {
	case key.Matches(msg, keys.Help):
		a.helpReturn = modeHome
		a.mode = modeHelp
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel):
		a.mode = modeTab
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		a.holder.SetQuery("")
		a.cursor = 0
		return a, nil
	case key.Matches(msg, keys.Accept):
		a.mode = modeTab
		a.searchInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	before := a.searchInput.Value()
	a.searchInput, cmd = a.searchInput.Update(msg)
	// Only re-filter on actual value changes, not cursor moves etc.
	if v := a.searchInput.Value(); v != before {
		a.holder.SetQuery(v)
		a.cursor = 0
	}
	return a, cmd
}

// selectTab makes tab i active and fetches it. Moving to another tab
// clears the search query.
func (a *App) selectTab(i int) tea.Cmd {
	if i < 0 || i >= len(a.tabs) {
		return nil
	}
	a.active = i
	a.mode = modeTab
	a.cursor = 0
	a.searchInput.Placeholder = placeholderFor(a.tabs[i])

	cmd := a.beginFetch()
	a.searchInput.SetValue(a.holder.Snapshot().Query)
	return cmd
}

func (a *App) goHome() {
	a.holder.Reset()
	a.mode = modeHome
	a.cursor = 0
	a.searchInput.SetValue("")
	a.searchInput.Blur()
}

func (a *App) links() []linkItem {
	return collectLinks(a.holder.Snapshot().Visible())
}

func (a *App) selectedLink() *linkItem {
	links := a.links()
	if a.cursor < 0 || a.cursor >= len(links) {
		return nil
	}
	return &links[a.cursor]
}

func (a *App) clampCursor() {
	n := len(a.links())
	if a.cursor >= n {
		a.cursor = max(0, n-1)
	}
}

func (a *App) withBottomBar(content string, hintText string) string {
	bar := renderBottomBar(hintText, a.width)
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  portal")
	}

	if a.mode == modeHome {
		return a.withBottomBar(
			renderHomeScreen(a.width, a.height, a.tabs, a.summaries, a.updateVersion),
			fmt.Sprintf("1-%d open  ? help  q quit", min(len(a.tabs), 9)),
		)
	}

	if a.mode == modeHelp {
		return a.withBottomBar(a.renderHelp(), "? close  q quit")
	}

	tab := a.tabs[a.active]
	snap := a.holder.Snapshot()

	// Layout calculations
	headerHeight := 1
	tabsHeight := 1
	searchHeight := 1
	statusHeight := 1
	contentHeight := a.height - headerHeight - tabsHeight - searchHeight - statusHeight - 2 // borders
	if contentHeight < 3 {
		contentHeight = 3
	}

	listWidth := a.width
	previewWidth := 0
	if a.width >= 80 {
		listWidth = int(float64(a.width) * 0.62)
		previewWidth = a.width - listWidth
	}

	// Header
	headerLeft := headerStyle.Render("portal")
	headerRight := headerDateStyle.Render(tab.Label + " · " + a.currentDate)
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	tabs := renderTabBar(a.tabs, a.active, a.width)

	var search string
	switch {
	case a.mode == modeSearch:
		search = a.searchInput.View()
	case snap.Query != "":
		search = searchPromptStyle.Render("/ ") + snap.Query
	default:
		search = helpDimStyle.Render("/ " + placeholderFor(tab))
	}

	// List pane
	innerListW := listWidth - 4 // border + padding
	visible := snap.Visible()
	listContent := a.renderContent(tab, snap, visible, innerListW, contentHeight)
	panes := listPaneStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)

	// Preview pane
	if previewWidth > 0 {
		var selected *linkItem
		if snap.HasView {
			links := collectLinks(visible)
			if a.cursor < len(links) {
				selected = &links[a.cursor]
			}
		}
		previewContent := renderPreview(selected, actionFor(tab), previewWidth-4, contentHeight)
		previewPane := previewPaneStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
		panes = lipgloss.JoinHorizontal(lipgloss.Top, panes, previewPane)
	}

	var hintText string
	if a.mode == modeSearch {
		hintText = hints(keys.Cancel, keys.Accept)
	} else {
		hintText = hints(keys.Search, keys.Refresh, keys.Open, keys.Home, keys.Quit)
	}
	status := renderStatusBar(snap, visible.Len(), snap.View.Len(), a.width, hintText)
	if snap.Phase == state.PhaseLoading {
		status = a.spinner.View() + " " + status
	}

	// Error display
	if a.err != nil {
		status = statusErrStyle.Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, tabs, search, panes, status)
}

// renderContent draws the active tab's body for the holder's current phase.
// A failed or in-flight refresh keeps showing the last view.
func (a *App) renderContent(tab config.Tab, snap state.Snapshot, visible reshape.View, width, height int) string {
	if !snap.HasView {
		switch snap.Phase {
		case state.PhaseLoading:
			return lipglossCenter(a.spinner.View()+" "+loadingFor(tab), width, height)
		case state.PhaseFailed:
			return lipglossCenter("Could not load "+tab.Label+" · r retry", width, height)
		default:
			return lipglossCenter("r load "+tab.Label, width, height)
		}
	}
	if visible.Len() == 0 {
		if snap.Query != "" {
			return lipglossCenter(fmt.Sprintf("No matches for %q", snap.Query), width, height)
		}
		return lipglossCenter("No records", width, height)
	}

	lines, sel := renderView(visible, actionFor(tab), a.cursor, width)
	return strings.Join(window(lines, sel, height), "\n")
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("portal")
	dim := helpDimStyle

	help := title + dim.Render(" · Keyboard Shortcuts") + "\n\n" +
		dim.Render("Tabs") + "\n" +
		"  1-9           Open tab by number\n" +
		"  tab, →        Next tab\n" +
		"  shift+tab, ←  Previous tab\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓      Move between documents\n\n" +
		dim.Render("Actions") + "\n" +
		"  o, enter      Open document in browser\n" +
		"  r             Refresh active tab\n" +
		"  /             Search active tab\n\n" +
		dim.Render("General") + "\n" +
		"  h, esc        Go to home screen\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c     Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height-1, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	if len(opts.Cfg.Tabs) == 0 {
		return fmt.Errorf("no tabs configured")
	}
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
