package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/school1992-cyber/website/internal/reshape"
	"github.com/school1992-cyber/website/internal/sheet"
)

// emptyMark stands in for an empty cell on society cards.
const emptyMark = "—"

// linkItem is one openable document in the visible view.
type linkItem struct {
	Group string // entity name, session year or row label
	Label string // entry label, document name or column
	Cell  sheet.Cell
}

func (l linkItem) URL() string { return l.Cell.URL() }

// collectLinks lists the links of v in display order: the cursor indexes
// into this slice, and the renderers below walk v in the same order.
func collectLinks(v reshape.View) []linkItem {
	var out []linkItem
	switch v.Kind {
	case reshape.KindSociety:
		for _, e := range v.Society.Entities {
			for _, en := range e.Entries {
				if en.Cell.IsLink() {
					out = append(out, linkItem{Group: e.Name, Label: en.Label, Cell: en.Cell})
				}
			}
		}
	case reshape.KindSessions:
		for _, g := range v.Sessions {
			for _, d := range g.Documents {
				out = append(out, linkItem{Group: "Session " + g.Year, Label: d.Name, Cell: sheet.NewCell(d.Link)})
			}
		}
	case reshape.KindTable:
		label := v.Table.LabelColumn()
		cols := v.Table.VisibleColumns()
		for _, row := range v.Table.Rows {
			for _, c := range cols {
				if cell := row.Cell(c); cell.IsLink() {
					out = append(out, linkItem{Group: row.Cell(label).String(), Label: c, Cell: cell})
				}
			}
		}
	}
	return out
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func padRight(s string, n int) string {
	if w := lipgloss.Width(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}

// cardWriter accumulates rendered lines and remembers where the selected
// link landed so the caller can scroll to it.
type cardWriter struct {
	action   string
	selected int
	width    int

	next    int
	selLine int
	lines   []string
}

func newCardWriter(action string, selected, width int) *cardWriter {
	if width < 10 {
		width = 30
	}
	if action == "" {
		action = "OPEN"
	}
	return &cardWriter{action: action, selected: selected, width: width, selLine: -1}
}

func (w *cardWriter) line(s string) {
	w.lines = append(w.lines, s)
}

// link renders the action label for the next link in display order.
func (w *cardWriter) link() string {
	idx := w.next
	w.next++
	if idx == w.selected {
		w.selLine = len(w.lines)
		return linkSelectedStyle.Render("> " + w.action)
	}
	return linkStyle.Render(w.action)
}

func (w *cardWriter) cell(c sheet.Cell, width int) string {
	switch c.Kind {
	case sheet.KindEmpty:
		return entryEmptyStyle.Render(emptyMark)
	case sheet.KindLink:
		return w.link()
	default:
		return entryTextStyle.Render(truncateStr(c.String(), width))
	}
}

// renderSociety draws one card per entity with its labelled entries.
func renderSociety(m reshape.SocietyMatrix, action string, selected, width int) ([]string, int) {
	w := newCardWriter(action, selected, width)

	labelW := 0
	for _, e := range m.Entities {
		for _, en := range e.Entries {
			labelW = max(labelW, len([]rune(en.Label)))
		}
	}
	labelW = min(labelW, w.width/2)
	valueW := max(w.width-labelW-4, 4)

	for i, e := range m.Entities {
		if i > 0 {
			w.line("")
		}
		w.line(cardTitleStyle.Render(truncateStr(e.Name, w.width)))
		for _, en := range e.Entries {
			label := entryLabelStyle.Render(padRight(truncateStr(en.Label, labelW), labelW))
			w.line("  " + label + "  " + w.cell(en.Cell, valueW))
		}
	}
	return w.lines, w.selLine
}

// renderSessions draws one card per year with its linked documents.
func renderSessions(groups []reshape.SessionGroup, action string, selected, width int) ([]string, int) {
	w := newCardWriter(action, selected, width)
	nameW := max(w.width-lipgloss.Width(w.action)-6, 4)

	for i, g := range groups {
		if i > 0 {
			w.line("")
		}
		w.line(cardKickerStyle.Render("SESSION"))
		w.line(cardTitleStyle.Render(truncateStr(g.Year, w.width)))
		if len(g.Documents) == 0 {
			w.line("  " + entryEmptyStyle.Render("No documents"))
			continue
		}
		for _, d := range g.Documents {
			name := entryTextStyle.Render(padRight(truncateStr(d.Name, nameW), nameW))
			w.line("  " + name + "  " + w.link())
		}
	}
	return w.lines, w.selLine
}

// renderTable draws the header row followed by one line per record.
func renderTable(t sheet.Table, action string, selected, width int) ([]string, int) {
	w := newCardWriter(action, selected, width)
	cols := t.VisibleColumns()
	if len(cols) == 0 {
		return nil, -1
	}

	widths := columnWidths(t, cols, w.action, w.width)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = padRight(tableHeaderStyle.Render(truncateStr(c, widths[i])), widths[i])
	}
	w.line(strings.Join(header, "  "))

	for _, row := range t.Rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			var s string
			if cell := row.Cell(c); !cell.IsEmpty() {
				s = w.cell(cell, widths[i])
			}
			cells[i] = padRight(s, widths[i])
		}
		w.line(strings.Join(cells, "  "))
	}
	return w.lines, w.selLine
}

// columnWidths sizes each column to its widest value, link cells counting
// as the action label, then shrinks evenly to fit width.
func columnWidths(t sheet.Table, cols []string, action string, width int) []int {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len([]rune(c))
		for _, row := range t.Rows {
			cell := row.Cell(c)
			n := len([]rune(cell.String()))
			if cell.IsLink() {
				n = len([]rune(action)) + 2
			}
			widths[i] = max(widths[i], n)
		}
	}

	avail := width - 2*(len(cols)-1)
	total := 0
	for _, n := range widths {
		total += n
	}
	if total <= avail || avail <= 0 {
		return widths
	}
	limit := max(avail/len(cols), 6)
	for i := range widths {
		widths[i] = min(widths[i], limit)
	}
	return widths
}

// renderView dispatches on the view kind.
func renderView(v reshape.View, action string, selected, width int) ([]string, int) {
	switch v.Kind {
	case reshape.KindSociety:
		return renderSociety(v.Society, action, selected, width)
	case reshape.KindSessions:
		return renderSessions(v.Sessions, action, selected, width)
	case reshape.KindTable:
		return renderTable(v.Table, action, selected, width)
	}
	return nil, -1
}

// window returns at most height lines, scrolled so that line sel is shown.
func window(lines []string, sel, height int) []string {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	start := 0
	if sel >= height {
		start = sel - height + 1
	}
	if start+height > len(lines) {
		start = len(lines) - height
	}
	return lines[start : start+height]
}

func lipglossCenter(s string, width, height int) string {
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", max((width-lipgloss.Width(s))/2, 0)) + s
}
