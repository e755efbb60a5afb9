package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit    key.Binding
	Home    key.Binding
	Help    key.Binding
	Search  key.Binding
	Refresh key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Cancel  key.Binding
	Accept  key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Home:    key.NewBinding(key.WithKeys("h", "esc"), key.WithHelp("h", "home")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	NextTab: key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next tab")),
	PrevTab: key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "prev tab")),
	Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
	Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
	Open:    key.NewBinding(key.WithKeys("o", "enter"), key.WithHelp("o", "open")),
	Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Accept:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "done")),
}

// hints renders bindings as the short "k desc" pairs used in the bottom bar.
func hints(bindings ...key.Binding) string {
	var out string
	for i, b := range bindings {
		if i > 0 {
			out += "  "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return out
}

// tabIndex maps the digit keys 1-9 to a tab position.
func tabIndex(s string) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '1'), true
}
