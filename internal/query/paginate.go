package query

import (
	"github.com/roach88/gridline/internal/record"
)

// maxVisiblePages is the width of the page-number window.
const maxVisiblePages = 5

// PageMeta describes the pagination controls for the current view.
//
// Window holds at most maxVisiblePages page numbers centered on the
// current page. ShowFirst/ShowLast indicate that page 1 / the last page
// should be rendered outside the window, with LeadingEllipsis and
// TrailingEllipsis marking the gaps when the window does not reach them.
type PageMeta struct {
	Current          int
	Total            int
	Window           []int
	ShowFirst        bool
	LeadingEllipsis  bool
	ShowLast         bool
	TrailingEllipsis bool
	PrevEnabled      bool
	NextEnabled      bool
}

// TotalPages computes ceil(n / rowsPerPage). Zero records means zero
// valid pages, which disables navigation in both directions.
func TotalPages(n, rowsPerPage int) int {
	if rowsPerPage <= 0 {
		return 0
	}
	return (n + rowsPerPage - 1) / rowsPerPage
}

// Paginate computes the visible page slice and its control metadata.
// The slice bounds are clamped to the filtered list, so a page beyond
// the end yields an empty slice rather than a panic.
func Paginate(filtered []record.Record, v View) ([]record.Record, PageMeta) {
	total := TotalPages(len(filtered), v.RowsPerPage)

	start := (v.Page - 1) * v.RowsPerPage
	end := start + v.RowsPerPage
	if start < 0 {
		start = 0
	}
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	slice := make([]record.Record, end-start)
	copy(slice, filtered[start:end])

	return slice, pageMeta(v.Page, total)
}

// pageMeta builds the window the same way the table's pager renders it:
// a run of up to maxVisiblePages numbers centered on current, shifted
// back near the end, with first/last pages and ellipses outside it.
func pageMeta(current, total int) PageMeta {
	meta := PageMeta{
		Current:     current,
		Total:       total,
		PrevEnabled: current > 1,
		NextEnabled: total != 0 && current < total,
	}
	if total == 0 {
		meta.PrevEnabled = false
		meta.NextEnabled = false
		return meta
	}

	start := current - maxVisiblePages/2
	if start < 1 {
		start = 1
	}
	end := start + maxVisiblePages - 1
	if end > total {
		end = total
		start = end - maxVisiblePages + 1
		if start < 1 {
			start = 1
		}
	}

	for p := start; p <= end; p++ {
		meta.Window = append(meta.Window, p)
	}

	if start > 1 {
		meta.ShowFirst = true
		meta.LeadingEllipsis = start > 2
	}
	if end < total {
		meta.ShowLast = true
		meta.TrailingEllipsis = end < total-1
	}
	return meta
}
