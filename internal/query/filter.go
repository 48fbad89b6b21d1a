package query

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/gridline/internal/record"
)

// fold lowercases s with full Unicode case folding, so that matching
// behaves sensibly beyond ASCII ("Ä" matches "ä").
func fold(s string) string {
	return cases.Fold().String(s)
}

// Filter derives the filtered projection of records for the given term.
//
// An empty term yields a full copy of the input (never the input slice
// itself; the projection must stay independent of the canonical list).
// Otherwise a record is included iff the folded term is a substring of
// its name, the decimal form of its age, its country, or its date.
// Relative order is preserved.
func Filter(records []record.Record, term string) []record.Record {
	term = fold(strings.TrimSpace(term))
	if term == "" {
		out := make([]record.Record, len(records))
		copy(out, records)
		return out
	}

	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if matches(r, term) {
			out = append(out, r)
		}
	}
	return out
}

// matches reports whether the already-folded term occurs in any
// searchable field of r.
func matches(r record.Record, term string) bool {
	return strings.Contains(fold(r.Name), term) ||
		strings.Contains(strconv.Itoa(r.Age), term) ||
		strings.Contains(fold(r.Country), term) ||
		strings.Contains(fold(r.Date), term)
}
