package pipeline

import "strings"

// Derived column and label values shared by the merge and summary stages.
const (
	ColNormalizedID = "normalized_id"
	ColCategory     = "category"
	ColVisitLabel   = "visit_label"

	LabelVisited    = "visited"
	LabelNotVisited = "not_visited"
)

// Classifier maps a raw visit-status cell to the binary visit label.
// Statuses on the block list count as no visit even if a blocked row
// survived the pre-join filter.
type Classifier struct {
	blocked map[string]struct{}
}

func NewClassifier(blockStatuses []string) Classifier {
	blocked := make(map[string]struct{}, len(blockStatuses))
	for _, s := range blockStatuses {
		blocked[strings.TrimSpace(s)] = struct{}{}
	}
	return Classifier{blocked: blocked}
}

// Classify returns LabelVisited for any non-blank, non-blocked status.
func (c Classifier) Classify(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return LabelNotVisited
	}
	if _, ok := c.blocked[s]; ok {
		return LabelNotVisited
	}
	return LabelVisited
}

// Blocked reports whether the trimmed status is on the block list. Blocked
// rows are dropped from the visit log before the join so they cannot mask
// a later genuine visit for the same license.
func (c Classifier) Blocked(raw string) bool {
	_, ok := c.blocked[strings.TrimSpace(raw)]
	return ok
}
