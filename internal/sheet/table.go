// Package sheet models the row/column records returned by the spreadsheet
// endpoint.
package sheet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultReserved is the metadata column the spreadsheet script appends to
// every row.
const DefaultReserved = "rowNumber"

// Row is an ordered mapping from column name to cell. Columns and Values
// are parallel slices.
type Row struct {
	Columns []string
	Values  []Cell
}

// NewRow builds a row from parallel column and text slices. Missing texts
// become empty cells.
func NewRow(columns []string, texts ...string) Row {
	r := Row{
		Columns: slices.Clone(columns),
		Values:  make([]Cell, len(columns)),
	}
	for i := range columns {
		if i < len(texts) {
			r.Values[i] = NewCell(texts[i])
		}
	}
	return r
}

// Get returns the cell under col and whether the row has that column.
func (r Row) Get(col string) (Cell, bool) {
	for i, c := range r.Columns {
		if c == col && i < len(r.Values) {
			return r.Values[i], true
		}
	}
	return Cell{}, false
}

// Cell returns the cell under col. A missing column reads as empty.
func (r Row) Cell(col string) Cell {
	c, _ := r.Get(col)
	return c
}

func (r Row) Len() int { return len(r.Columns) }

// MarshalJSON keeps column order, which a Go map would lose.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.Cell(col).Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r Row) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, col := range r.Columns {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: col},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.Cell(col).Value},
		)
	}
	return node, nil
}

// Table is an ordered sequence of rows sharing one column set. Columns is
// taken from the first row. Reserved lists metadata columns declared by the
// record source; they never appear in derived views.
type Table struct {
	Columns  []string `json:"columns" yaml:"columns"`
	Reserved []string `json:"reserved,omitempty" yaml:"reserved,omitempty"`
	Rows     []Row    `json:"rows" yaml:"rows"`
}

// NewTable builds a table from positional records, one text per column.
func NewTable(columns []string, reserved []string, records ...[]string) Table {
	t := Table{
		Columns:  slices.Clone(columns),
		Reserved: slices.Clone(reserved),
		Rows:     make([]Row, 0, len(records)),
	}
	for _, rec := range records {
		t.Rows = append(t.Rows, NewRow(columns, rec...))
	}
	return t
}

func (t Table) Len() int { return len(t.Rows) }

// LabelColumn is the first non-reserved column, which holds each row's
// identifying name. It is empty when every column is reserved.
func (t Table) LabelColumn() string {
	for _, c := range t.Columns {
		if !t.IsReserved(c) {
			return c
		}
	}
	return ""
}

func (t Table) IsReserved(col string) bool {
	return slices.Contains(t.Reserved, col)
}

// DataColumns returns every column except the label and reserved ones, in
// column order.
func (t Table) DataColumns() []string {
	label := t.LabelColumn()
	if label == "" {
		return nil
	}
	var out []string
	for _, c := range t.Columns {
		if c != label && !t.IsReserved(c) {
			out = append(out, c)
		}
	}
	return out
}

// VisibleColumns is the label column followed by DataColumns.
func (t Table) VisibleColumns() []string {
	label := t.LabelColumn()
	if label == "" {
		return nil
	}
	return append([]string{label}, t.DataColumns()...)
}

// ShapeError reports a row whose columns differ from the table's.
type ShapeError struct {
	Row     int
	Missing []string
	Extra   []string
	// Reordered is set when the column sets match but their order does not.
	Reordered bool
}

func (e *ShapeError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, "unexpected "+strings.Join(e.Extra, ", "))
	}
	if e.Reordered {
		parts = append(parts, "columns out of order")
	}
	return fmt.Sprintf("row %d: %s", e.Row, strings.Join(parts, "; "))
}

// Validate checks that every row carries exactly the table's columns in the
// same order. It returns the first mismatch. Reshaping does not require a
// valid table: a missing column reads as an empty cell.
func (t Table) Validate() error {
	for i, r := range t.Rows {
		if slices.Equal(r.Columns, t.Columns) {
			continue
		}
		e := &ShapeError{Row: i}
		for _, c := range t.Columns {
			if !slices.Contains(r.Columns, c) {
				e.Missing = append(e.Missing, c)
			}
		}
		for _, c := range r.Columns {
			if !slices.Contains(t.Columns, c) {
				e.Extra = append(e.Extra, c)
			}
		}
		if len(e.Missing) == 0 && len(e.Extra) == 0 {
			e.Reordered = true
		}
		return e
	}
	return nil
}
