package pipeline

// visitColumnSuffix disambiguates visit-log columns whose names collide
// with registry columns after the join, like the suffixed merge the
// source exports were built with.
const visitColumnSuffix = "_visit"

// MergeUniverse left-joins one registry sheet (the universe) against the
// visit log on the normalized license identifier and derives the visit
// label. Every universe row appears in exactly one output row; unmatched
// rows keep empty visit cells and classify as not visited. When several
// visit rows share a normalized identifier the first one in file order
// wins.
//
// Both tables must already carry ColNormalizedID (see NormalizeTable).
// The visit log must already have blocked statuses filtered out;
// classification re-checks them anyway.
func MergeUniverse(universe, visits Table, category string, p Params, cls Classifier) (Table, error) {
	if err := requireColumns(universe, category, p.UniverseLicenseColumn, p.MunicipalityColumn); err != nil {
		return Table{}, err
	}

	byID := make(map[string]Row, len(visits.Rows))
	for _, row := range visits.Rows {
		id := row[ColNormalizedID]
		if id == "" {
			continue
		}
		if _, seen := byID[id]; !seen {
			byID[id] = row
		}
	}

	// Visit columns that clash with universe names get a suffix; the
	// normalized id is shared on purpose (it is the join key).
	visitCols := make([]string, 0, len(visits.Columns))
	renamed := make(map[string]string, len(visits.Columns))
	for _, c := range visits.Columns {
		if c == ColNormalizedID {
			continue
		}
		name := c
		if universe.HasColumn(c) {
			name = c + visitColumnSuffix
		}
		visitCols = append(visitCols, name)
		renamed[c] = name
	}

	merged := Table{Columns: append([]string(nil), universe.Columns...)}
	for _, c := range visitCols {
		merged.AddColumn(c)
	}
	merged.AddColumn(ColCategory)
	merged.AddColumn(ColVisitLabel)

	statusCol := renamed[p.VisitStatusColumn]
	if statusCol == "" {
		statusCol = p.VisitStatusColumn
	}

	for _, urow := range universe.Rows {
		row := make(Row, len(merged.Columns))
		for k, v := range urow {
			row[k] = v
		}
		if match, ok := byID[urow[ColNormalizedID]]; ok && urow[ColNormalizedID] != "" {
			for k, v := range match {
				if k == ColNormalizedID {
					continue
				}
				row[renamed[k]] = v
			}
		}
		row[ColCategory] = category
		row[ColVisitLabel] = cls.Classify(row[statusCol])
		merged.Rows = append(merged.Rows, row)
	}
	return merged, nil
}
