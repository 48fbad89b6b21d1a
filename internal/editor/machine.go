// Package editor implements the per-cell editing state machine.
//
// Plain text/numeric fields follow Display -> Editing -> Committing ->
// Display. The date field never reaches ordinary Editing: focusing it
// opens the structured picker instead (Display -> PickerOpen ->
// Selected | Dismissed -> Display), pre-seeded with the cell's value
// converted from display format to ISO.
//
// INVARIANT: at most one cell across the whole table is in a
// non-Display state at any time. Opening a new session forcibly
// dismisses the previous one; there is no way to hold two sessions.
//
// Thread-safety model: like the record store, the Machine runs on the
// controller's single-writer loop and is not safe for concurrent use.
package editor

import (
	"errors"
	"time"

	"github.com/roach88/gridline/internal/query"
	"github.com/roach88/gridline/internal/record"
)

// State is the position of a session in the editing protocol.
type State int

const (
	// StateDisplay means no session is active.
	StateDisplay State = iota
	// StateEditing means a plain field holds focus with raw text.
	StateEditing
	// StateCommitting is the transient write-back through the store.
	StateCommitting
	// StatePickerOpen means the date picker is showing.
	StatePickerOpen
	// StateSelected means a picker value was chosen and committed.
	StateSelected
	// StateDismissed means the picker closed without a mutation.
	StateDismissed
)

// String returns a short name for logging and snapshots.
func (s State) String() string {
	switch s {
	case StateDisplay:
		return "display"
	case StateEditing:
		return "editing"
	case StateCommitting:
		return "committing"
	case StatePickerOpen:
		return "picker-open"
	case StateSelected:
		return "selected"
	case StateDismissed:
		return "dismissed"
	default:
		return "unknown"
	}
}

var (
	// ErrDateNotEditable is returned when a plain editing session is
	// requested on the date field; typing into it is suppressed and the
	// picker is the only way in.
	ErrDateNotEditable = errors.New("date field is edited through the picker")
	// ErrNoSession is returned by commit/select with nothing open.
	ErrNoSession = errors.New("no editing session is active")
	// ErrUnknownRecord is returned when a session is requested for an
	// id that is not in the canonical list.
	ErrUnknownRecord = errors.New("record not in canonical list")
	// ErrWrongState is returned when an operation does not apply to the
	// session's current state.
	ErrWrongState = errors.New("operation not valid in current session state")
	// ErrPickerExpired is returned when a selection arrives after the
	// picker's dismissal deadline.
	ErrPickerExpired = errors.New("date picker timed out")
)

// DefaultPickerTimeout bounds how long an untouched picker stays open.
const DefaultPickerTimeout = 30 * time.Second

// Clock supplies the current time. Injected so picker deadlines are
// deterministic in tests.
type Clock interface {
	Now() time.Time
}

// Session describes the single active editing session.
type Session struct {
	RecordID int
	Field    record.Field
	State    State
	// Pending is the working value: raw stripped text while Editing,
	// the ISO seed while PickerOpen.
	Pending string
	// Deadline is the picker auto-dismissal time; zero for plain edits.
	Deadline time.Time
}

// Machine owns the at-most-one editing session and routes commits
// through the record store.
type Machine struct {
	store   *record.Store
	clock   Clock
	timeout time.Duration
	session *Session
}

// NewMachine creates a Machine over the given store. A non-positive
// timeout falls back to DefaultPickerTimeout.
func NewMachine(store *record.Store, clock Clock, pickerTimeout time.Duration) *Machine {
	if pickerTimeout <= 0 {
		pickerTimeout = DefaultPickerTimeout
	}
	return &Machine{store: store, clock: clock, timeout: pickerTimeout}
}

// Active returns a copy of the current session, or nil in Display
// state. Expired pickers are dismissed on observation, so a stale
// session never leaks out.
func (m *Machine) Active() *Session {
	m.expireIfDue()
	if m.session == nil {
		return nil
	}
	s := *m.session
	return &s
}

// BeginEdit opens a plain editing session on a text/numeric field.
// The displayed cell text is stripped of highlight markup so the user
// edits raw text. Any prior session is forcibly dismissed first.
func (m *Machine) BeginEdit(id int, f record.Field, displayed string) error {
	if f == record.FieldDate {
		return ErrDateNotEditable
	}
	if _, ok := m.store.Get(id); !ok {
		return ErrUnknownRecord
	}
	m.closePrior()
	m.session = &Session{
		RecordID: id,
		Field:    f,
		State:    StateEditing,
		Pending:  query.StripMarkup(displayed),
	}
	return nil
}

// Commit leaves Editing through Committing: the raw value is written to
// the store (with the store's coercion rules) and the session returns
// to Display. The updated record and a found flag are returned; an
// unknown id commits as a silent no-op, matching the store contract.
func (m *Machine) Commit(raw string) (record.Record, bool, error) {
	if m.session == nil {
		return record.Record{}, false, ErrNoSession
	}
	if m.session.State != StateEditing {
		return record.Record{}, false, ErrWrongState
	}
	m.session.State = StateCommitting
	rec, ok := m.store.Update(m.session.RecordID, m.session.Field, raw)
	m.session = nil
	return rec, ok, nil
}

// OpenPicker enters PickerOpen for the date field of the given record,
// returning the ISO seed converted from the cell's display value. An
// unparseable or empty cell seeds an empty picker. Any prior session is
// forcibly dismissed first.
func (m *Machine) OpenPicker(id int) (string, error) {
	rec, ok := m.store.Get(id)
	if !ok {
		return "", ErrUnknownRecord
	}
	m.closePrior()

	seed := ""
	if rec.Date != "" {
		if iso, err := DisplayToISO(rec.Date); err == nil {
			seed = iso
		}
	}
	m.session = &Session{
		RecordID: id,
		Field:    record.FieldDate,
		State:    StatePickerOpen,
		Pending:  seed,
		Deadline: m.clock.Now().Add(m.timeout),
	}
	return seed, nil
}

// Select commits a picker choice: the ISO value is converted back to
// display format and written through the same update path as any other
// field. A selection after the deadline dismisses instead.
func (m *Machine) Select(iso string) (record.Record, bool, error) {
	if m.session == nil {
		return record.Record{}, false, ErrNoSession
	}
	if m.session.State != StatePickerOpen {
		return record.Record{}, false, ErrWrongState
	}
	if m.clock.Now().After(m.session.Deadline) {
		m.session = nil
		return record.Record{}, false, ErrPickerExpired
	}

	display, err := ISOToDisplay(iso)
	if err != nil {
		return record.Record{}, false, err
	}
	m.session.State = StateSelected
	rec, ok := m.store.Update(m.session.RecordID, record.FieldDate, display)
	m.session = nil
	return rec, ok, nil
}

// Dismiss abandons the current session with no mutation and returns to
// Display. Safe to call with nothing open.
func (m *Machine) Dismiss() {
	m.session = nil
}

// expireIfDue dismisses a picker whose deadline has passed.
func (m *Machine) expireIfDue() {
	if m.session == nil || m.session.State != StatePickerOpen {
		return
	}
	if m.clock.Now().After(m.session.Deadline) {
		m.session = nil
	}
}

// closePrior enforces the single-session invariant: whatever was open
// is dismissed, never committed, before a new session starts.
func (m *Machine) closePrior() {
	m.session = nil
}
