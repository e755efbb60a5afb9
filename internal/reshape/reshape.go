// Package reshape converts a raw sheet.Table into the view models shown by
// each dashboard tab. Every function here is pure: the same table value
// always yields an equal result.
package reshape

import (
	"github.com/school1992-cyber/website/internal/sheet"
)

// Entry is one label/value pair inside an entity profile.
type Entry struct {
	Label string     `json:"label" yaml:"label"`
	Cell  sheet.Cell `json:"value" yaml:"value"`
}

// EntityProfile holds every label of the table for one entity column.
type EntityProfile struct {
	Name    string  `json:"name" yaml:"name"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Lookup returns the cell recorded under label.
func (p EntityProfile) Lookup(label string) (sheet.Cell, bool) {
	for _, e := range p.Entries {
		if e.Label == label {
			return e.Cell, true
		}
	}
	return sheet.Cell{}, false
}

// SocietyMatrix is the entity-by-label transpose of a table. Entities keep
// column order and entries keep row order.
type SocietyMatrix struct {
	Entities []EntityProfile `json:"entities" yaml:"entities"`
}

func (m SocietyMatrix) Len() int { return len(m.Entities) }

func (m SocietyMatrix) Names() []string {
	names := make([]string, len(m.Entities))
	for i, e := range m.Entities {
		names[i] = e.Name
	}
	return names
}

// Lookup returns the cell for (entity, label).
func (m SocietyMatrix) Lookup(entity, label string) (sheet.Cell, bool) {
	for _, e := range m.Entities {
		if e.Name == entity {
			return e.Lookup(label)
		}
	}
	return sheet.Cell{}, false
}

// Document is a named link inside a session.
type Document struct {
	Name string `json:"name" yaml:"name"`
	Link string `json:"link" yaml:"link"`
}

// SessionGroup lists the linked documents of one year column.
type SessionGroup struct {
	Year      string     `json:"year" yaml:"year"`
	Documents []Document `json:"documents" yaml:"documents"`
}

// BuildSocietyMatrix transposes t: every data column becomes an entity and
// every row contributes one entry keyed by its label. Empty cells are kept.
// When two rows share a label, the later row's value replaces the earlier
// one in place.
func BuildSocietyMatrix(t sheet.Table) SocietyMatrix {
	cols := t.DataColumns()
	if t.Len() == 0 || len(cols) == 0 {
		return SocietyMatrix{Entities: []EntityProfile{}}
	}

	label := t.LabelColumn()
	m := SocietyMatrix{Entities: make([]EntityProfile, 0, len(cols))}
	for _, col := range cols {
		p := EntityProfile{Name: col, Entries: make([]Entry, 0, t.Len())}
		seen := make(map[string]int, t.Len())
		for _, row := range t.Rows {
			key := row.Cell(label).String()
			cell := row.Cell(col)
			if i, ok := seen[key]; ok {
				p.Entries[i].Cell = cell
				continue
			}
			seen[key] = len(p.Entries)
			p.Entries = append(p.Entries, Entry{Label: key, Cell: cell})
		}
		m.Entities = append(m.Entities, p)
	}
	return m
}

// BuildSessionGroups produces one group per data column. A row contributes
// a document only when its cell under that column is a link; other rows are
// left out of the group rather than kept as empty entries.
func BuildSessionGroups(t sheet.Table) []SessionGroup {
	cols := t.DataColumns()
	groups := make([]SessionGroup, 0, len(cols))
	if t.Len() == 0 {
		return groups
	}

	label := t.LabelColumn()
	for _, year := range cols {
		g := SessionGroup{Year: year, Documents: []Document{}}
		for _, row := range t.Rows {
			cell := row.Cell(year)
			if !cell.IsLink() {
				continue
			}
			g.Documents = append(g.Documents, Document{
				Name: row.Cell(label).String(),
				Link: cell.URL(),
			})
		}
		groups = append(groups, g)
	}
	return groups
}

// Passthrough returns t unchanged. It exists so the generic table tab goes
// through the same registry as the other views.
func Passthrough(t sheet.Table) sheet.Table {
	return t
}
