package pipeline

import (
	"strconv"

	"visit_coverage/internal/excel"
)

// summary sheet header, aligned with SummaryRow's JSON names
var summaryHeader = []string{"municipality", "category", "total_licenses", "visited_count", "not_visited_count"}

// ExportMunicipality slices one municipality out of a run: its merged raw
// rows on one sheet plus one summary sheet per category present. The
// second return is false when the municipality appears in neither table —
// a valid empty result, not an error.
func ExportMunicipality(merged Table, summary []SummaryRow, municipality string, p Params) ([]excel.Sheet, bool) {
	raw := merged.Filter(func(r Row) bool {
		return r[p.MunicipalityColumn] == municipality
	})

	byCategory := make(map[string][]SummaryRow)
	var categories []string
	for _, row := range summary {
		if row.Municipality != municipality {
			continue
		}
		if _, seen := byCategory[row.Category]; !seen {
			categories = append(categories, row.Category)
		}
		byCategory[row.Category] = append(byCategory[row.Category], row)
	}

	if len(raw.Rows) == 0 && len(categories) == 0 {
		return nil, false
	}

	sheets := make([]excel.Sheet, 0, len(categories)+1)
	if len(raw.Rows) > 0 {
		sheets = append(sheets, excel.Sheet{
			Name: excel.SafeSheetName("raw_data"),
			Grid: raw.Grid(),
		})
	}
	for _, category := range categories {
		grid := [][]string{append([]string(nil), summaryHeader...)}
		for _, row := range byCategory[category] {
			grid = append(grid, []string{
				row.Municipality,
				row.Category,
				strconv.Itoa(row.Total),
				strconv.Itoa(row.Visited),
				strconv.Itoa(row.NotVisited),
			})
		}
		sheets = append(sheets, excel.Sheet{
			Name: excel.SafeSheetName(category + "_summary"),
			Grid: grid,
		})
	}
	return sheets, true
}
