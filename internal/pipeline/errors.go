package pipeline

import "fmt"

// FormatError signals that an uploaded blob is not a readable workbook or
// that a required sheet is absent. The whole run is rejected; nothing is
// persisted.
type FormatError struct {
	Input string // "visits" or "registry"
	Sheet string // set when a required sheet is missing
	Err   error
}

func (e *FormatError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("%s workbook: required sheet %q not found", e.Input, e.Sheet)
	}
	return fmt.Sprintf("%s workbook is not a readable spreadsheet: %v", e.Input, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// DataError signals that a present sheet is missing a required column.
// It names the sheet and column so the caller's message is actionable.
type DataError struct {
	Sheet  string
	Column string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("sheet %q: required column %q not found", e.Sheet, e.Column)
}

func requireColumns(t Table, sheet string, columns ...string) error {
	for _, c := range columns {
		if !t.HasColumn(c) {
			return &DataError{Sheet: sheet, Column: c}
		}
	}
	return nil
}
