// Package workbook exports fetched sheets to a local .xlsx file.
package workbook

import (
	"errors"
	"fmt"
	"strings"

	"github.com/school1992-cyber/website/internal/sheet"
	"github.com/xuri/excelize/v2"
)

// maxSheetName is Excel's limit on worksheet names.
const maxSheetName = 31

const defaultSheet = "Sheet1"

var ErrNoSheets = errors.New("nothing to export")

// Sheet is one worksheet to write.
type Sheet struct {
	Name  string
	Table sheet.Table
}

// Build lays out one worksheet per table. Reserved columns are left out;
// link cells become hyperlinks.
func Build(sheets []Sheet) (*excelize.File, error) {
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	used := make(map[string]bool)
	var first string
	for _, s := range sheets {
		name := uniqueName(SheetName(s.Name), used)
		if first == "" {
			first = name
		}
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("creating sheet %q: %w", name, err)
		}
		if err := writeTable(f, name, s.Table, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing sheet %q: %w", name, err)
		}
	}

	if !used[strings.ToLower(defaultSheet)] {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("removing default sheet: %w", err)
		}
	}
	// Indexes shift once the default sheet is gone.
	idx, err := f.GetSheetIndex(first)
	if err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(idx)
	return f, nil
}

// Save builds the workbook and writes it to path.
func Save(path string, sheets []Sheet) error {
	f, err := Build(sheets)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func writeTable(f *excelize.File, name string, t sheet.Table, headerStyle int) error {
	cols := t.VisibleColumns()
	if len(cols) == 0 {
		return nil
	}

	head := make([]interface{}, len(cols))
	for i, c := range cols {
		head[i] = c
	}
	if err := f.SetSheetRow(name, "A1", &head); err != nil {
		return err
	}
	if err := f.SetRowStyle(name, 1, 1, headerStyle); err != nil {
		return err
	}

	for r, row := range t.Rows {
		for i, c := range cols {
			cell := row.Cell(c)
			if cell.IsEmpty() {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(name, ref, cell.String()); err != nil {
				return err
			}
			if !cell.IsLink() {
				continue
			}
			if err := f.SetCellHyperLink(name, ref, cell.URL(), "External"); err != nil {
				return err
			}
		}
	}
	return nil
}

// SheetName makes s usable as a worksheet name: forbidden characters become
// '-' and the result is cut to Excel's length limit.
func SheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(s))
	s = strings.Trim(s, "'")
	if s == "" {
		s = "Sheet"
	}
	if r := []rune(s); len(r) > maxSheetName {
		s = string(r[:maxSheetName])
	}
	return s
}

func uniqueName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		base := []rune(name)
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		candidate = string(base) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
