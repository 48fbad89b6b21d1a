// Package query derives everything the presentation layer consumes from
// the canonical record list: the filtered projection, the visible page
// slice with its pagination window, highlight-decorated cell text, and
// the human-readable summary line.
//
// The package holds no state of its own beyond the View value; every
// derivation is a fresh projection over the records it is handed.
package query

import "strings"

// DefaultRowsPerPage matches the table's initial page size.
const DefaultRowsPerPage = 10

// View is the pagination/search state of the table.
//
// Page is 1-based. Term is stored lowercased and trimmed; matching is
// case-insensitive substring, no tokenization.
type View struct {
	Page        int
	RowsPerPage int
	Term        string
}

// NewView creates a View on page 1 with the given page size.
func NewView(rowsPerPage int) View {
	if rowsPerPage <= 0 {
		rowsPerPage = DefaultRowsPerPage
	}
	return View{Page: 1, RowsPerPage: rowsPerPage}
}

// SetTerm normalizes and stores the search term and resets to page 1.
func (v *View) SetTerm(term string) {
	v.Term = fold(strings.TrimSpace(term))
	v.Page = 1
}

// SetRowsPerPage changes the page size and resets to page 1.
// Non-positive sizes are rejected as a no-op.
func (v *View) SetRowsPerPage(n int) bool {
	if n <= 0 {
		return false
	}
	v.RowsPerPage = n
	v.Page = 1
	return true
}

// ResetPage returns to page 1. Called when the canonical list size
// changes, so the view never points at a now-empty page.
func (v *View) ResetPage() {
	v.Page = 1
}

// ClampPage pulls the page back inside [1, totalPages] when the
// filtered list shrinks underneath it, for mutations that keep the
// user's position instead of resetting. An empty result clamps to 1.
func (v *View) ClampPage(totalPages int) {
	if totalPages < 1 {
		v.Page = 1
		return
	}
	if v.Page > totalPages {
		v.Page = totalPages
	}
}

// Prev moves back one page. Rejected at page 1.
func (v *View) Prev() bool {
	if v.Page <= 1 {
		return false
	}
	v.Page--
	return true
}

// Next moves forward one page. Rejected on the last page, and always
// rejected when there are no valid pages (totalPages == 0).
func (v *View) Next(totalPages int) bool {
	if totalPages == 0 || v.Page >= totalPages {
		return false
	}
	v.Page++
	return true
}

// GoTo jumps to page n. Rejected outside [1, totalPages].
func (v *View) GoTo(n, totalPages int) bool {
	if n < 1 || n > totalPages {
		return false
	}
	v.Page = n
	return true
}
