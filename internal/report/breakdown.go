package report

import "visit_coverage/internal/pipeline"

// MunicipalityTotals is one municipality's summed coverage.
type MunicipalityTotals struct {
	Municipality string `json:"municipality"`
	Totals
}

// CategoryTotals is one category's summed coverage.
type CategoryTotals struct {
	Category string `json:"category"`
	Totals
}

// ByMunicipality folds the filtered summary per municipality, sorted by
// first appearance in the summary (which Summarize keeps sorted).
func ByMunicipality(summary []pipeline.SummaryRow, f Filter) []MunicipalityTotals {
	index := make(map[string]int)
	var out []MunicipalityTotals
	for _, row := range summary {
		if !f.keep(row.Municipality) {
			continue
		}
		i, ok := index[row.Municipality]
		if !ok {
			i = len(out)
			index[row.Municipality] = i
			out = append(out, MunicipalityTotals{Municipality: row.Municipality})
		}
		out[i].Visited += row.Visited
		out[i].NotVisited += row.NotVisited
		out[i].Total += row.Visited + row.NotVisited
	}
	return out
}

// ByCategory folds the filtered summary per category, in first-seen order.
func ByCategory(summary []pipeline.SummaryRow, f Filter) []CategoryTotals {
	index := make(map[string]int)
	var out []CategoryTotals
	for _, row := range summary {
		if !f.keep(row.Municipality) {
			continue
		}
		i, ok := index[row.Category]
		if !ok {
			i = len(out)
			index[row.Category] = i
			out = append(out, CategoryTotals{Category: row.Category})
		}
		out[i].Visited += row.Visited
		out[i].NotVisited += row.NotVisited
		out[i].Total += row.Visited + row.NotVisited
	}
	return out
}
