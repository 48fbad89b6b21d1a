// Package controller owns all mutable table state behind one explicit
// handle: the canonical record list, the view state, the single editing
// session, and the notification center. Nothing in this module lives in
// package-level variables.
//
// Control flow for every user intent:
//
//	intent -> synchronous local mutation -> view re-derivation ->
//	detached remote replay whose completion only posts a notification
//
// The local mutation is never rolled back when the remote call later
// fails; local state is authoritative and the remote is eventually-
// consistent best effort. Remote completions may resolve out of issue
// order, which is harmless because they never mutate state.
//
// Thread-safety model: mutation methods must run on a single goroutine.
// Concurrent surfaces go through Dispatch/Run, which serialize intents
// onto the single-writer loop; the notification center and the intent
// queue are the only lock-guarded pieces.
package controller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/gridline/internal/editor"
	"github.com/roach88/gridline/internal/notify"
	"github.com/roach88/gridline/internal/query"
	"github.com/roach88/gridline/internal/record"
	"github.com/roach88/gridline/internal/syncgw"
	"github.com/roach88/gridline/internal/view"
)

// Defaults for freshly added rows, matching the table's add button.
const (
	newRowName    = "New Name"
	newRowAge     = 25
	newRowCountry = "Country"
)

// maxSuggestions caps the "did you mean" list on a no-result search.
const maxSuggestions = 3

// Clock supplies the current time for editor deadlines, notification
// expiry, and new-row dates.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Controller is the single owner of table state.
type Controller struct {
	store   *record.Store
	view    query.View
	machine *editor.Machine
	notices *notify.Center
	gateway syncgw.Gateway
	clock   Clock
	queue   *intentQueue

	// wg tracks detached remote replays so tests and shutdown can
	// drain them; the replays themselves are not cancellable.
	wg sync.WaitGroup
}

// Option configures a Controller.
type Option func(*config)

type config struct {
	clock         Clock
	rowsPerPage   int
	pickerTimeout time.Duration
	noticeTTL     time.Duration
}

// WithClock substitutes the wall clock (tests).
func WithClock(c Clock) Option {
	return func(cfg *config) { cfg.clock = c }
}

// WithRowsPerPage sets the initial page size.
func WithRowsPerPage(n int) Option {
	return func(cfg *config) { cfg.rowsPerPage = n }
}

// WithPickerTimeout bounds how long an untouched date picker stays open.
func WithPickerTimeout(d time.Duration) Option {
	return func(cfg *config) { cfg.pickerTimeout = d }
}

// WithNotificationTTL sets how long notifications stay visible.
func WithNotificationTTL(d time.Duration) Option {
	return func(cfg *config) { cfg.noticeTTL = d }
}

// New creates a Controller over the given gateway.
func New(gateway syncgw.Gateway, opts ...Option) *Controller {
	cfg := &config{
		clock:       systemClock{},
		rowsPerPage: query.DefaultRowsPerPage,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	store := record.NewStore()
	return &Controller{
		store:   store,
		view:    query.NewView(cfg.rowsPerPage),
		machine: editor.NewMachine(store, cfg.clock, cfg.pickerTimeout),
		notices: notify.NewCenter(cfg.clock, cfg.noticeTTL),
		gateway: gateway,
		clock:   cfg.clock,
		queue:   newIntentQueue(),
	}
}

// Load fetches the remote collection and replaces the canonical list
// wholesale. On failure the table stays empty and unusable until a
// retry is triggered externally; there is no automatic retry.
func (c *Controller) Load(ctx context.Context) error {
	records, err := c.gateway.Fetch(ctx)
	if err != nil {
		slog.Error("initial load failed", "error", err)
		c.notices.Error("Failed to load data from API")
		return err
	}
	c.store.Load(records)
	c.view.ResetPage()
	slog.Info("collection loaded", "records", len(records))
	return nil
}

// Add prepends a new row with default values and a freshly minted id,
// then replays the create remotely. The remote's server-assigned
// identity is deliberately ignored: the client-minted id stays the
// permanent key (observed behavior, preserved — see DESIGN.md).
func (c *Controller) Add() record.Record {
	rec := c.store.Insert(record.Record{
		Name:    newRowName,
		Age:     newRowAge,
		Country: newRowCountry,
		Date:    c.clock.Now().Format(editor.DisplayDateFormat),
	})
	c.view.ResetPage()
	c.replay(rec, syncgw.IntentCreate)
	return rec
}

// Delete removes the record with the given id. An unknown id leaves
// the list unchanged with no error surfaced and no remote call. An
// editing session on the deleted record is dismissed, keeping the
// session invariant pointed at live records only.
func (c *Controller) Delete(id int) bool {
	if session := c.machine.Active(); session != nil && session.RecordID == id {
		c.machine.Dismiss()
	}
	if !c.store.Remove(id) {
		return false
	}
	c.view.ResetPage()
	c.replay(record.Record{ID: id}, syncgw.IntentDelete)
	return true
}

// BeginEdit opens a plain editing session on a cell. The session works
// on the cell's raw text: the current search highlight is applied and
// immediately stripped, the same round trip the rendering surface does.
func (c *Controller) BeginEdit(id int, f record.Field) error {
	rec, ok := c.store.Get(id)
	if !ok {
		return editor.ErrUnknownRecord
	}
	displayed := query.Highlight(rec.Value(f), c.view.Term)
	return c.machine.BeginEdit(id, f, displayed)
}

// CommitEdit writes the pending edit through the store and replays the
// update remotely. Commits against an id that vanished mid-session are
// silently ignored, matching the store's no-op contract.
//
// The page is clamped, not reset: an edit that drops its record out of
// the active filter can shrink the page count below the current page,
// and the view must never point at a page past the end.
func (c *Controller) CommitEdit(raw string) error {
	rec, ok, err := c.machine.Commit(raw)
	if err != nil {
		return err
	}
	if ok {
		c.view.ClampPage(c.totalPages())
		c.replay(rec, syncgw.IntentUpdate)
	}
	return nil
}

// OpenDatePicker starts the date sub-protocol for a record, returning
// the ISO seed for the picker control.
func (c *Controller) OpenDatePicker(id int) (string, error) {
	return c.machine.OpenPicker(id)
}

// SelectDate commits a picker choice and replays the update remotely.
// The page is clamped for the same reason as CommitEdit: a new date can
// drop the record out of the active filter.
func (c *Controller) SelectDate(iso string) error {
	rec, ok, err := c.machine.Select(iso)
	if err != nil {
		return err
	}
	if ok {
		c.view.ClampPage(c.totalPages())
		c.replay(rec, syncgw.IntentUpdate)
	}
	return nil
}

// DismissPicker abandons the date sub-protocol with no mutation.
func (c *Controller) DismissPicker() {
	c.machine.Dismiss()
}

// Search sets the active term and resets to page 1.
func (c *Controller) Search(term string) {
	c.view.SetTerm(term)
}

// SetRowsPerPage changes the page size; non-positive sizes are a no-op.
func (c *Controller) SetRowsPerPage(n int) bool {
	return c.view.SetRowsPerPage(n)
}

// NextPage advances one page if one exists.
func (c *Controller) NextPage() bool {
	return c.view.Next(c.totalPages())
}

// PrevPage moves back one page if not already on the first.
func (c *Controller) PrevPage() bool {
	return c.view.Prev()
}

// GoToPage jumps to page n inside [1, totalPages].
func (c *Controller) GoToPage(n int) bool {
	return c.view.GoTo(n, c.totalPages())
}

// View returns a copy of the current view state.
func (c *Controller) View() query.View {
	return c.view
}

// Records returns a copy of the canonical list.
func (c *Controller) Records() []record.Record {
	return c.store.Records()
}

// Snapshot derives the full presentation contract from current state.
// Always reflects the most recent synchronous local mutation.
func (c *Controller) Snapshot() view.Snapshot {
	filtered := query.Filter(c.store.Records(), c.view.Term)
	page, meta := query.Paginate(filtered, c.view)
	summary := query.Summary(c.view, len(filtered), c.store.Len())

	var suggestions []string
	if c.view.Term != "" && len(filtered) == 0 {
		suggestions = query.Suggest(c.store.Records(), c.view.Term, maxSuggestions)
	}

	return view.Build(page, c.view.Term, meta, summary, suggestions,
		c.notices.Active(), c.machine.Active())
}

// Flush blocks until all detached remote replays have completed.
// Intended for tests and shutdown; normal operation never waits.
func (c *Controller) Flush() {
	c.wg.Wait()
}

func (c *Controller) totalPages() int {
	filtered := query.Filter(c.store.Records(), c.view.Term)
	return query.TotalPages(len(filtered), c.view.RowsPerPage)
}

// replay detaches one remote call. The completion only posts a
// notification; it never touches the store, so ordering between
// completions is irrelevant. The call itself is not cancellable: a
// replay for a record deleted in the meantime still fires.
func (c *Controller) replay(rec record.Record, intent syncgw.Intent) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		res := c.gateway.Submit(context.Background(), rec, intent)
		if res.Err != nil {
			slog.Error("remote replay failed",
				"intent", intent.String(), "id", rec.ID, "token", res.Token, "error", res.Err)
			c.notices.Error(failureMessage(intent))
			return
		}
		slog.Debug("remote replay confirmed",
			"intent", intent.String(), "id", rec.ID, "token", res.Token)
		c.notices.Success(successMessage(intent))
	}()
}

func successMessage(intent syncgw.Intent) string {
	switch intent {
	case syncgw.IntentCreate:
		return "Record added successfully"
	case syncgw.IntentDelete:
		return "Record deleted successfully"
	default:
		return "Record updated successfully"
	}
}

func failureMessage(intent syncgw.Intent) string {
	switch intent {
	case syncgw.IntentCreate:
		return "Failed to add record"
	case syncgw.IntentDelete:
		return "Failed to delete record"
	default:
		return "Failed to update record"
	}
}
