// Package view assembles the presentation contract: everything a
// rendering surface needs to draw the table, and nothing else. The
// snapshot is a pure value; consumers cannot reach back into the
// controller's state through it.
package view

import (
	"github.com/roach88/gridline/internal/editor"
	"github.com/roach88/gridline/internal/notify"
	"github.com/roach88/gridline/internal/query"
	"github.com/roach88/gridline/internal/record"
)

// Row is one visible table row. Field strings are highlight-decorated
// with <mark> markers for the active search term.
type Row struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Age     string `json:"age"`
	Country string `json:"country"`
	Date    string `json:"date"`
}

// EditingInfo describes the active editing session, if any.
type EditingInfo struct {
	RecordID int    `json:"record_id"`
	Field    string `json:"field"`
	State    string `json:"state"`
	Pending  string `json:"pending"`
}

// Notice is a transient notification ready for rendering.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Snapshot is the full presentation contract for one render pass. It
// always reflects the most recent synchronous local mutation.
type Snapshot struct {
	Rows        []Row          `json:"rows"`
	Meta        query.PageMeta `json:"meta"`
	Summary     string         `json:"summary"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Notices     []Notice       `json:"notices,omitempty"`
	Editing     *EditingInfo   `json:"editing,omitempty"`
}

// Build assembles a Snapshot from the derived page slice and its
// surrounding state. Highlighting is applied here, per field, so the
// record store never sees markup.
func Build(
	page []record.Record,
	term string,
	meta query.PageMeta,
	summary string,
	suggestions []string,
	notices []notify.Notification,
	session *editor.Session,
) Snapshot {
	s := Snapshot{
		Meta:        meta,
		Summary:     summary,
		Suggestions: suggestions,
	}

	s.Rows = make([]Row, 0, len(page))
	for _, r := range page {
		s.Rows = append(s.Rows, Row{
			ID:      r.ID,
			Name:    query.Highlight(r.Name, term),
			Age:     query.Highlight(r.Value(record.FieldAge), term),
			Country: query.Highlight(r.Country, term),
			Date:    query.Highlight(r.Date, term),
		})
	}

	for _, n := range notices {
		s.Notices = append(s.Notices, Notice{Kind: n.Kind.String(), Message: n.Message})
	}

	if session != nil {
		s.Editing = &EditingInfo{
			RecordID: session.RecordID,
			Field:    session.Field.String(),
			State:    session.State.String(),
			Pending:  session.Pending,
		}
	}
	return s
}
