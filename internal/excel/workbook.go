// Package excel is the xlsx codec boundary: it turns uploaded workbook
// bytes into plain string grids and grids back into downloadable
// workbooks. Nothing in here knows about licenses or visits.
package excel

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet as a grid of cell strings; Grid[0] is the header
// when the sheet carries tabular data.
type Sheet struct {
	Name string
	Grid [][]string
}

// Workbook is an ordered set of sheets.
type Workbook struct {
	Sheets []Sheet
}

// Sheet returns the grid for name, if present.
func (w *Workbook) Sheet(name string) ([][]string, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s.Grid, true
		}
	}
	return nil, false
}

// SheetNames lists the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}
	return names
}

// ParseWorkbook decodes xlsx bytes into string grids, sheet by sheet.
func ParseWorkbook(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		grid, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Grid: grid})
	}
	return wb, nil
}

// BuildWorkbook encodes sheets into a downloadable xlsx blob. Sheet names
// must already be safe (see SafeSheetName).
func BuildWorkbook(sheets []Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", sheet.Name, err)
		}
		for rowIdx, rec := range sheet.Grid {
			cell, err := excelize.CoordinatesToCellName(1, rowIdx+1)
			if err != nil {
				return nil, err
			}
			values := make([]interface{}, len(rec))
			for j, v := range rec {
				values[j] = v
			}
			if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
				return nil, fmt.Errorf("write sheet %q row %d: %w", sheet.Name, rowIdx+1, err)
			}
		}
		if i == 0 {
			idx, err := f.GetSheetIndex(sheet.Name)
			if err != nil {
				return nil, err
			}
			f.SetActiveSheet(idx)
		}
	}
	// excelize seeds every file with a default sheet
	if len(sheets) > 0 && sheets[0].Name != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
