package pipeline

// Row is a single record keyed by column name. Cells are always strings;
// the empty string after trimming is the null marker.
type Row map[string]string

// Table is an in-memory sheet: an ordered header plus records. Row maps may
// omit columns; readers treat a missing key the same as an empty cell.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// HasColumn reports whether the header contains name.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends name to the header unless already present.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Append adds the rows and columns of other to t, keeping t's column order
// and appending any columns only other has.
func (t *Table) Append(other Table) {
	for _, c := range other.Columns {
		t.AddColumn(c)
	}
	t.Rows = append(t.Rows, other.Rows...)
}

// Filter returns the rows for which keep is true, with the same header.
func (t Table) Filter(keep func(Row) bool) Table {
	out := Table{Columns: append([]string(nil), t.Columns...)}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Grid renders the table as a header row plus one slice per record, in
// column order. Missing cells come out empty.
func (t Table) Grid() [][]string {
	grid := make([][]string, 0, len(t.Rows)+1)
	grid = append(grid, append([]string(nil), t.Columns...))
	for _, r := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			rec[i] = r[c]
		}
		grid = append(grid, rec)
	}
	return grid
}

// FromGrid builds a Table from a header row plus records. Ragged records
// are tolerated: short rows leave trailing cells empty, long rows drop the
// overflow (spreadsheet readers produce both).
func FromGrid(grid [][]string) Table {
	if len(grid) == 0 {
		return Table{}
	}
	t := Table{Columns: append([]string(nil), grid[0]...)}
	for _, rec := range grid[1:] {
		row := make(Row, len(t.Columns))
		for i, c := range t.Columns {
			if i < len(rec) {
				row[c] = rec[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
