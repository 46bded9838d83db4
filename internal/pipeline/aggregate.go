package pipeline

import "sort"

// SummaryRow is the per-(municipality, category) coverage count for one
// run. Counts are over distinct normalized identifiers, not rows: a
// registry sheet may repeat a license.
type SummaryRow struct {
	Municipality string `json:"municipality"`
	Category     string `json:"category"`
	Total        int    `json:"total_licenses"`
	Visited      int    `json:"visited_count"`
	NotVisited   int    `json:"not_visited_count"`
}

type groupKey struct {
	municipality string
	category     string
}

// Summarize reduces merged rows to distinct-license counts per
// (municipality, category). Rows with a blank normalized identifier
// still create their group but contribute to no count; a blank cell is
// not an identifier. Output order is municipality then category; an
// empty input yields an empty (but valid) summary.
func Summarize(merged Table, p Params) []SummaryRow {
	totals := make(map[groupKey]map[string]struct{})
	visited := make(map[groupKey]map[string]struct{})

	for _, row := range merged.Rows {
		key := groupKey{municipality: row[p.MunicipalityColumn], category: row[ColCategory]}
		if totals[key] == nil {
			totals[key] = make(map[string]struct{})
		}
		id := row[ColNormalizedID]
		if id == "" {
			continue
		}
		totals[key][id] = struct{}{}
		if row[ColVisitLabel] == LabelVisited {
			if visited[key] == nil {
				visited[key] = make(map[string]struct{})
			}
			visited[key][id] = struct{}{}
		}
	}

	out := make([]SummaryRow, 0, len(totals))
	for key, ids := range totals {
		v := len(visited[key])
		out = append(out, SummaryRow{
			Municipality: key.municipality,
			Category:     key.category,
			Total:        len(ids),
			Visited:      v,
			NotVisited:   len(ids) - v,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Municipality != out[j].Municipality {
			return out[i].Municipality < out[j].Municipality
		}
		return out[i].Category < out[j].Category
	})
	return out
}
