package query

import (
	"fmt"
	"regexp"
)

// Highlight wraps every case-insensitive occurrence of term in text
// with <mark> emphasis markers, preserving the original casing of the
// matched text. An empty term yields text unchanged.
//
// The term is quoted before compiling, so this is a literal-substring
// highlight: arbitrary user input ("a.*b", "[", "(") cannot break the
// match or turn into a pattern search.
func Highlight(text, term string) string {
	if term == "" {
		return text
	}
	re, err := regexp.Compile(`(?i)(` + regexp.QuoteMeta(term) + `)`)
	if err != nil {
		// QuoteMeta makes compilation infallible for any input; keep
		// the raw text if that ever stops holding.
		return text
	}
	return re.ReplaceAllString(text, "<mark>$1</mark>")
}

// StripMarkup removes highlight markers so a cell can be edited as raw
// text. Entering an editing session always works on stripped text.
func StripMarkup(text string) string {
	return markupPattern.ReplaceAllString(text, "")
}

var markupPattern = regexp.MustCompile(`</?mark>`)

// Summary renders the human-readable entry-count line.
//
//	"Showing 1 to 10 of 12 entries"
//	"Showing 1 to 4 of 4 entries (filtered from 12 total entries)"
//	"No results found (12 total entries)"
//	"Showing 0 to 0 of 0 entries"
func Summary(v View, filteredTotal, canonicalTotal int) string {
	if filteredTotal == 0 {
		if v.Term != "" {
			return fmt.Sprintf("No results found (%d total entries)", canonicalTotal)
		}
		return "Showing 0 to 0 of 0 entries"
	}

	start := (v.Page-1)*v.RowsPerPage + 1
	end := v.Page * v.RowsPerPage
	if end > filteredTotal {
		end = filteredTotal
	}

	suffix := ""
	if v.Term != "" {
		suffix = fmt.Sprintf(" (filtered from %d total entries)", canonicalTotal)
	}
	return fmt.Sprintf("Showing %d to %d of %d entries%s", start, end, filteredTotal, suffix)
}
