package pipeline

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeLicense canonicalizes a raw license identifier into the join
// key. Exports deliver the same physical identifier as an integer, a
// float, or text, so everything that parses as a finite number collapses
// to its decimal integer form: "12345", "12345.0" and " 12345 " all
// normalize to "12345". Non-numeric text passes through trimmed, as do
// numbers whose magnitude exceeds int64 (the conversion would be
// undefined, and no genuine identifier is that long). A blank cell
// returns ok=false and never joins.
func NormalizeLicense(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil &&
		!math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) < 1<<63 {
		return strconv.FormatInt(int64(f), 10), true
	}
	return s, true
}

// NormalizeTable writes the normalized form of licenseCol into
// ColNormalizedID for every row. Rows with a blank identifier keep an
// empty normalized cell; they stay in the table but cannot match.
func NormalizeTable(t *Table, licenseCol string) {
	t.AddColumn(ColNormalizedID)
	for _, row := range t.Rows {
		if id, ok := NormalizeLicense(row[licenseCol]); ok {
			row[ColNormalizedID] = id
		}
	}
}
