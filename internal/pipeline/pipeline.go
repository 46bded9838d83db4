// Package pipeline reconciles a field-visit log against the ministry
// license registry and aggregates visit coverage per municipality and
// category. The registry is the universe: every license it lists appears
// exactly once per category in the merged output, marked visited or not.
package pipeline

import (
	"visit_coverage/internal/excel"
)

// Params is the immutable run configuration: the category sheets to look
// for in the registry workbook, the statuses that do not count as a
// visit, and the source column names (production exports carry Arabic
// headers, so these are data, not code).
type Params struct {
	Categories    []string
	BlockStatuses []string

	VisitsSheet           string
	VisitLicenseColumn    string
	VisitStatusColumn     string
	UniverseLicenseColumn string
	MunicipalityColumn    string
}

// Result is one run's output pair.
type Result struct {
	Merged  Table
	Summary []SummaryRow
}

// Run executes the full reconciliation over raw workbook bytes: parse
// both files, normalize identifiers, drop blocked visit rows, then merge
// and classify once per category sheet present in the registry, and
// aggregate the concatenation. A category sheet that is absent is
// skipped; a missing visits sheet or unreadable workbook is a
// FormatError, a missing required column a DataError. No partial result
// is returned on error.
func Run(visitsData, registryData []byte, p Params) (Result, error) {
	visitsWB, err := excel.ParseWorkbook(visitsData)
	if err != nil {
		return Result{}, &FormatError{Input: "visits", Err: err}
	}
	registryWB, err := excel.ParseWorkbook(registryData)
	if err != nil {
		return Result{}, &FormatError{Input: "registry", Err: err}
	}

	grid, ok := visitsWB.Sheet(p.VisitsSheet)
	if !ok {
		return Result{}, &FormatError{Input: "visits", Sheet: p.VisitsSheet}
	}
	visits := FromGrid(grid)
	if err := requireColumns(visits, p.VisitsSheet, p.VisitLicenseColumn); err != nil {
		return Result{}, err
	}

	cls := NewClassifier(p.BlockStatuses)
	NormalizeTable(&visits, p.VisitLicenseColumn)
	if visits.HasColumn(p.VisitStatusColumn) {
		visits = visits.Filter(func(r Row) bool {
			return !cls.Blocked(r[p.VisitStatusColumn])
		})
	}

	var res Result
	for _, category := range p.Categories {
		grid, ok := registryWB.Sheet(category)
		if !ok {
			continue
		}
		universe := FromGrid(grid)
		NormalizeTable(&universe, p.UniverseLicenseColumn)
		merged, err := MergeUniverse(universe, visits, category, p, cls)
		if err != nil {
			return Result{}, err
		}
		res.Merged.Append(merged)
	}
	res.Summary = Summarize(res.Merged, p)
	return res, nil
}
