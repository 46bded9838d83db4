// Package report computes run-over-run coverage comparisons at region,
// sector, and municipality scope from per-run summary rows.
package report

import (
	"sort"

	"visit_coverage/internal/pipeline"
)

// Filter restricts summary rows to a scope. The zero value is the whole
// region; Municipalities selects a sector's member list; Municipality a
// single one.
type Filter struct {
	Municipalities []string
	Municipality   string
}

func (f Filter) keep(municipality string) bool {
	if f.Municipality != "" {
		return municipality == f.Municipality
	}
	if f.Municipalities != nil {
		for _, m := range f.Municipalities {
			if m == municipality {
				return true
			}
		}
		return false
	}
	return true
}

// Totals are summed coverage counts over a filtered summary.
type Totals struct {
	Visited    int `json:"visited"`
	NotVisited int `json:"not_visited"`
	Total      int `json:"total"`
}

// Comparison pairs the current run's totals with the previous run's, when
// one exists. Previous and Delta are nil for the first-ever run; that is
// the expected state, not an error.
type Comparison struct {
	Current  Totals  `json:"current"`
	Previous *Totals `json:"previous"`
	Delta    *Totals `json:"delta"`
}

// SumTotals folds the filtered rows into scope totals.
func SumTotals(summary []pipeline.SummaryRow, f Filter) Totals {
	var t Totals
	for _, row := range summary {
		if !f.keep(row.Municipality) {
			continue
		}
		t.Visited += row.Visited
		t.NotVisited += row.NotVisited
	}
	t.Total = t.Visited + t.NotVisited
	return t
}

// Compare diffs the current summary against the previous one within the
// filter. previous == nil means no prior run exists.
func Compare(current []pipeline.SummaryRow, previous []pipeline.SummaryRow, hasPrevious bool, f Filter) Comparison {
	cmp := Comparison{Current: SumTotals(current, f)}
	if !hasPrevious {
		return cmp
	}
	prev := SumTotals(previous, f)
	cmp.Previous = &prev
	cmp.Delta = &Totals{
		Visited:    cmp.Current.Visited - prev.Visited,
		NotVisited: cmp.Current.NotVisited - prev.NotVisited,
		Total:      cmp.Current.Total - prev.Total,
	}
	return cmp
}

// ChartData is the category-level comparison: aligned value arrays over
// the union of categories seen in either run. A category present in only
// one run contributes zero for the other.
type ChartData struct {
	Labels   []string `json:"labels"`
	Current  []int    `json:"current"`
	Previous []int    `json:"previous"`
}

// CategorySeries groups filtered rows by category, summing visited plus
// not-visited per run. Current-run categories come first in first-seen
// order, then categories only the previous run has, sorted.
func CategorySeries(current []pipeline.SummaryRow, previous []pipeline.SummaryRow, f Filter) ChartData {
	currTotals, labels := categoryTotals(current, f)
	prevTotals, _ := categoryTotals(previous, f)

	var extra []string
	for category := range prevTotals {
		if _, ok := currTotals[category]; !ok {
			extra = append(extra, category)
		}
	}
	sort.Strings(extra)
	labels = append(labels, extra...)
	if labels == nil {
		labels = []string{}
	}

	data := ChartData{
		Labels:   labels,
		Current:  make([]int, len(labels)),
		Previous: make([]int, len(labels)),
	}
	for i, label := range labels {
		data.Current[i] = currTotals[label]
		data.Previous[i] = prevTotals[label]
	}
	return data
}

func categoryTotals(summary []pipeline.SummaryRow, f Filter) (map[string]int, []string) {
	totals := make(map[string]int)
	var order []string
	for _, row := range summary {
		if !f.keep(row.Municipality) {
			continue
		}
		if _, seen := totals[row.Category]; !seen {
			order = append(order, row.Category)
		}
		totals[row.Category] += row.Visited + row.NotVisited
	}
	return totals, order
}
