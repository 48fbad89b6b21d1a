package query

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/roach88/gridline/internal/record"
)

// Suggest fuzzy-ranks record names against a search term that matched
// nothing, for a "did you mean" hint next to the no-results summary.
//
// Ranking uses normalized, case-folded Levenshtein matching; ties break
// on original list position so output is deterministic. Returns at most
// max unique names, closest first.
func Suggest(records []record.Record, term string, max int) []string {
	if term == "" || max <= 0 {
		return nil
	}

	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(term, names)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	seen := make(map[string]bool, max)
	out := make([]string, 0, max)
	for _, r := range ranks {
		if seen[r.Target] {
			continue
		}
		seen[r.Target] = true
		out = append(out, r.Target)
		if len(out) == max {
			break
		}
	}
	return out
}
