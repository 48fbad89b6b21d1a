package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/gridline/internal/query"
)

// Column widths for the fixed-width text renderer. Highlight markup
// counts toward width, so decorated cells overflow their column; that
// is accepted for a diagnostic surface.
const (
	widthID      = 6
	widthName    = 26
	widthAge     = 6
	widthCountry = 18
)

// RenderText writes the classic table layout: header, rows, a blank
// line, the summary, the pager line, then suggestions, notices and the
// editing session when present. Output is deterministic for golden
// comparison.
func RenderText(w io.Writer, s Snapshot) {
	fmt.Fprintf(w, "%-*s%-*s%-*s%-*s%s\n",
		widthID, "ID", widthName, "NAME", widthAge, "AGE", widthCountry, "COUNTRY", "DATE")
	for _, row := range s.Rows {
		fmt.Fprintf(w, "%-*d%-*s%-*s%-*s%s\n",
			widthID, row.ID, widthName, row.Name, widthAge, row.Age, widthCountry, row.Country, row.Date)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, s.Summary)
	fmt.Fprintln(w, renderPager(s.Meta))

	if len(s.Suggestions) > 0 {
		fmt.Fprintf(w, "did you mean: %s\n", strings.Join(s.Suggestions, ", "))
	}
	for _, n := range s.Notices {
		fmt.Fprintf(w, "[%s] %s\n", n.Kind, n.Message)
	}
	if s.Editing != nil {
		fmt.Fprintf(w, "editing: record %d field %s (%s) pending %q\n",
			s.Editing.RecordID, s.Editing.Field, s.Editing.State, s.Editing.Pending)
	}
}

// renderPager draws the page-number window with first/last pages and
// ellipsis gaps, plus prev/next with their enabled state.
func renderPager(meta query.PageMeta) string {
	var b strings.Builder

	if meta.PrevEnabled {
		b.WriteString("[prev]")
	} else {
		b.WriteString("[prev: off]")
	}

	if meta.ShowFirst {
		b.WriteString(" 1")
		if meta.LeadingEllipsis {
			b.WriteString(" ...")
		}
	}
	for _, p := range meta.Window {
		if p == meta.Current {
			fmt.Fprintf(&b, " (%d)", p)
		} else {
			fmt.Fprintf(&b, " %d", p)
		}
	}
	if meta.ShowLast {
		if meta.TrailingEllipsis {
			b.WriteString(" ...")
		}
		fmt.Fprintf(&b, " %d", meta.Total)
	}

	if meta.NextEnabled {
		b.WriteString(" [next]")
	} else {
		b.WriteString(" [next: off]")
	}
	return b.String()
}
