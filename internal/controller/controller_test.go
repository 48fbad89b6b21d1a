package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gridline/internal/editor"
	"github.com/roach88/gridline/internal/notify"
	"github.com/roach88/gridline/internal/record"
	"github.com/roach88/gridline/internal/syncgw"
	"github.com/roach88/gridline/internal/testutil"
)

type submission struct {
	Record record.Record
	Intent syncgw.Intent
}

// stubGateway records submissions and returns configured outcomes.
type stubGateway struct {
	mu           sync.Mutex
	fetchRecords []record.Record
	fetchErr     error
	submitErr    error
	submissions  []submission
}

func (g *stubGateway) Fetch(context.Context) ([]record.Record, error) {
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	out := make([]record.Record, len(g.fetchRecords))
	copy(out, g.fetchRecords)
	return out, nil
}

func (g *stubGateway) Submit(_ context.Context, rec record.Record, intent syncgw.Intent) syncgw.Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.submissions = append(g.submissions, submission{Record: rec, Intent: intent})
	return syncgw.Result{Token: "test-token", Intent: intent, RecordID: rec.ID, Err: g.submitErr}
}

func (g *stubGateway) Submissions() []submission {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]submission, len(g.submissions))
	copy(out, g.submissions)
	return out
}

func twelveRecords() []record.Record {
	out := make([]record.Record, 0, 12)
	for i := 1; i <= 12; i++ {
		out = append(out, record.Record{
			ID:      i,
			Name:    fmt.Sprintf("Person %d", i),
			Age:     20 + i,
			Country: "Norway",
			Date:    "01/02/2021",
		})
	}
	return out
}

func newLoadedController(t *testing.T, gw *stubGateway) (*Controller, *testutil.DeterministicClock) {
	t.Helper()
	clock := testutil.NewDeterministicClock(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	c := New(gw, WithClock(clock), WithRowsPerPage(10))
	require.NoError(t, c.Load(context.Background()))
	return c, clock
}

func TestController_LoadFailure(t *testing.T) {
	gw := &stubGateway{fetchErr: errors.New("boom")}
	c := New(gw, WithClock(testutil.NewDeterministicClock(time.Now())))

	err := c.Load(context.Background())
	require.Error(t, err)

	s := c.Snapshot()
	assert.Empty(t, s.Rows, "table stays empty until an external retry")
	assert.Equal(t, "Showing 0 to 0 of 0 entries", s.Summary)
	require.Len(t, s.Notices, 1)
	assert.Equal(t, "error", s.Notices[0].Kind)
	assert.Equal(t, "Failed to load data from API", s.Notices[0].Message)
}

// The canonical walk: 12 records at 10 per page.
func TestController_PaginationScenario(t *testing.T) {
	gw := &stubGateway{fetchRecords: twelveRecords()}
	c, _ := newLoadedController(t, gw)

	s := c.Snapshot()
	require.Len(t, s.Rows, 10)
	assert.Equal(t, 1, s.Rows[0].ID)
	assert.Equal(t, 10, s.Rows[9].ID)
	assert.Equal(t, 2, s.Meta.Total)
	assert.False(t, s.Meta.PrevEnabled)
	assert.True(t, s.Meta.NextEnabled)

	require.True(t, c.NextPage())
	s = c.Snapshot()
	require.Len(t, s.Rows, 2)
	assert.Equal(t, 11, s.Rows[0].ID)
	assert.Equal(t, 12, s.Rows[1].ID)
	assert.Equal(t, "Showing 11 to 12 of 12 entries", s.Summary)

	assert.False(t, c.NextPage(), "no page 3")
	require.True(t, c.PrevPage())
	assert.False(t, c.PrevPage(), "already on page 1")
}

func TestController_SearchNoMatches(t *testing.T) {
	gw := &stubGateway{fetchRecords: twelveRecords()}
	c, _ := newLoadedController(t, gw)

	c.Search("zzzz")
	s := c.Snapshot()
	assert.Empty(t, s.Rows)
	assert.Equal(t, "No results found (12 total entries)", s.Summary)
	assert.False(t, s.Meta.PrevEnabled)
	assert.False(t, s.Meta.NextEnabled)
}

func TestController_SearchHighlightsAndSuggests(t *testing.T) {
	gw := &stubGateway{fetchRecords: twelveRecords()}
	c, _ := newLoadedController(t, gw)

	c.Search("person 1")
	s := c.Snapshot()
	// "Person 1", "Person 10".."Person 12" match.
	require.Len(t, s.Rows, 4)
	assert.Contains(t, s.Rows[0].Name, "<mark>")
	assert.Empty(t, s.Suggestions, "suggestions only appear with zero matches")

	c.Search("persn 3")
	s = c.Snapshot()
	assert.Empty(t, s.Rows)
	assert.NotEmpty(t, s.Suggestions, "typo search suggests close names")
}

func TestController_AddPrependsAndReplaysCreate(t *testing.T) {
	gw := &stubGateway{fetchRecords: twelveRecords()}
	c, _ := newLoadedController(t, gw)
	require.True(t, c.NextPage())

	added := c.Add()
	assert.Equal(t, 13, added.ID, "minted id is max+1")
	assert.Equal(t, "New Name", added.Name)
	assert.Equal(t, 25, added.Age)
	assert.Equal(t, "01/06/2024", added.Date, "new row dated from the clock")

	s := c.Snapshot()
	assert.Equal(t, 1, s.Meta.Current, "size change resets to page 1")
	assert.Equal(t, added.ID, s.Rows[0].ID, "new record is at position 0")

	c.Flush()
	subs := gw.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, syncgw.IntentCreate, subs[0].Intent)
	assert.Equal(t, added, subs[0].Record)

	s = c.Snapshot()
	require.Len(t, s.Notices, 1)
	assert.Equal(t, "Record added successfully", s.Notices[0].Message)
}

// The optimistic contract: a failed remote call keeps the local
// mutation and surfaces only a notification.
func TestController_FailedReplayKeepsLocalState(t *testing.T) {
	gw := &stubGateway{fetchRecords: twelveRecords(), submitErr: errors.New("502")}
	c, _ := newLoadedController(t, gw)

	require.True(t, c.Delete(3))
	c.Flush()

	_, found := func() (record.Record, bool) {
		for _, r := range c.Records() {
			if r.ID == 3 {
				return r, true
			}
		}
		return record.Record{}, false
	}()
	assert.False(t, found, "local delete is never rolled back")

	s := c.Snapshot()
	require.Len(t, s.Notices, 1)
	assert.Equal(t, "error", s.Notices[0].Kind)
	assert.Equal(t, "Failed to delete record", s.Notices[0].Message)
}

func TestController_DeleteUnknownID(t *testing.T) {
	gw := &stubGateway{fetchRecords: twelveRecords()}
	c, _ := newLoadedController(t, gw)

	assert.False(t, c.Delete(99))
	c.Flush()
	assert.Empty(t, gw.Submissions(), "no remote call for a record that was never there")
	assert.Len(t, c.Records(), 12)
}

func TestController_DeleteDismissesSessionOnSameRecord(t *testing.T) {
	gw := &stubGateway{fetchRecords: twelveRecords()}
	c, _ := newLoadedController(t, gw)

	require.NoError(t, c.BeginEdit(5, record.FieldName))
	require.True(t, c.Delete(5))

	s := c.Snapshot()
	assert.Nil(t, s.Editing, "session on a deleted record is dismissed")
}

func TestController_EditCommitReplaysFullRecord(t *testing.T) {
	gw := &stubGateway{fetchRecords: twelveRecords()}
	c, _ := newLoadedController(t, gw)

	require.NoError(t, c.BeginEdit(2, record.FieldAge))
	require.NoError(t, c.CommitEdit("abc"))
	c.Flush()

	subs := gw.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, syncgw.IntentUpdate, subs[0].Intent)
	assert.Equal(t, 0, subs[0].Record.Age, "coerced value goes out in the full payload")
	assert.Equal(t, "Person 2", subs[0].Record.Name)
}

func TestController_EditStripsHighlightForSession(t *testing.T) {
	gw := &stubGateway{fetchRecords: twelveRecords()}
	c, _ := newLoadedController(t, gw)
	c.Search("person 2")

	require.NoError(t, c.BeginEdit(2, record.FieldName))
	s := c.Snapshot()
	require.NotNil(t, s.Editing)
	assert.Equal(t, "Person 2", s.Editing.Pending, "pending text carries no markup")
}

func TestController_EditShrinkingFilterClampsPage(t *testing.T) {
	gw := &stubGateway{fetchRecords: twelveRecords()}
	c, _ := newLoadedController(t, gw)

	c.Search("person")
	require.True(t, c.NextPage())

	// Renaming drops the record out of the active filter; with 11
	// matches left, page 2 still exists and holds the last row.
	require.NoError(t, c.BeginEdit(11, record.FieldName))
	require.NoError(t, c.CommitEdit("Zed"))

	s := c.Snapshot()
	require.Len(t, s.Rows, 1)
	assert.Equal(t, 12, s.Rows[0].ID)
	assert.Equal(t, "Showing 11 to 11 of 11 entries (filtered from 12 total entries)", s.Summary)

	// The second rename shrinks the match set to one page; the view
	// clamps back instead of pointing past the end.
	require.NoError(t, c.BeginEdit(12, record.FieldName))
	require.NoError(t, c.CommitEdit("Yara"))

	s = c.Snapshot()
	assert.Equal(t, 1, s.Meta.Current)
	assert.Equal(t, 1, s.Meta.Total)
	require.Len(t, s.Rows, 10)
	assert.Equal(t, "Showing 1 to 10 of 10 entries (filtered from 12 total entries)", s.Summary)
	c.Flush()
}

func TestController_EditVanishedRecordIsSilent(t *testing.T) {
	gw := &stubGateway{fetchRecords: twelveRecords()}
	c, _ := newLoadedController(t, gw)

	err := c.BeginEdit(99, record.FieldName)
	assert.ErrorIs(t, err, editor.ErrUnknownRecord)
	c.Flush()
	assert.Empty(t, gw.Submissions())
}

func TestController_DatePickerFlow(t *testing.T) {
	gw := &stubGateway{fetchRecords: twelveRecords()}
	c, _ := newLoadedController(t, gw)

	seed, err := c.OpenDatePicker(1)
	require.NoError(t, err)
	assert.Equal(t, "2021-02-01", seed)

	require.NoError(t, c.SelectDate("2023-07-09"))
	c.Flush()

	subs := gw.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, "09/07/2023", subs[0].Record.Date)

	s := c.Snapshot()
	assert.Nil(t, s.Editing)
}

func TestController_PickerDismissKeepsValue(t *testing.T) {
	gw := &stubGateway{fetchRecords: twelveRecords()}
	c, _ := newLoadedController(t, gw)

	_, err := c.OpenDatePicker(1)
	require.NoError(t, err)
	c.DismissPicker()
	c.Flush()

	assert.Empty(t, gw.Submissions(), "dismissal mutates nothing and replays nothing")
}

func TestController_NotificationsExpire(t *testing.T) {
	gw := &stubGateway{fetchRecords: twelveRecords()}
	clock := testutil.NewDeterministicClock(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	c := New(gw, WithClock(clock), WithNotificationTTL(notify.DefaultTTL))
	require.NoError(t, c.Load(context.Background()))

	c.Add()
	c.Flush()
	require.Len(t, c.Snapshot().Notices, 1)

	clock.Advance(4 * time.Second)
	assert.Empty(t, c.Snapshot().Notices, "toasts auto-dismiss after the fixed duration")
}

func TestController_RunProcessesDispatchedIntents(t *testing.T) {
	gw := &stubGateway{fetchRecords: twelveRecords()}
	c, _ := newLoadedController(t, gw)

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	require.True(t, c.Dispatch(Intent{Kind: IntentSearch, Value: "person 1"}))
	require.True(t, c.Dispatch(Intent{Kind: IntentEdit, ID: 1, Field: record.FieldCountry, Value: "Chile"}))
	require.True(t, c.Dispatch(Intent{Kind: IntentDelete, ID: 12}))
	c.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run loop did not drain and stop")
	}

	rec, ok := func() (record.Record, bool) {
		for _, r := range c.Records() {
			if r.ID == 1 {
				return r, true
			}
		}
		return record.Record{}, false
	}()
	require.True(t, ok)
	assert.Equal(t, "Chile", rec.Country, "edit intent applied in order")
	assert.Len(t, c.Records(), 11, "delete intent applied")
	assert.False(t, c.Dispatch(Intent{Kind: IntentAdd}), "dispatch after stop is rejected")
}

func TestController_EditIntentOnDateOpensPicker(t *testing.T) {
	gw := &stubGateway{fetchRecords: twelveRecords()}
	c, _ := newLoadedController(t, gw)

	// Typing into the date cell is suppressed; the intent enters the
	// picker seeded from the cell instead, discarding the typed value.
	err := c.apply(context.Background(), Intent{Kind: IntentEdit, ID: 1, Field: record.FieldDate, Value: "junk"})
	require.NoError(t, err)

	s := c.Snapshot()
	require.NotNil(t, s.Editing)
	assert.Equal(t, 1, s.Editing.RecordID)
	assert.Equal(t, "date", s.Editing.Field)
	assert.Equal(t, "picker-open", s.Editing.State)
	assert.Equal(t, "2021-02-01", s.Editing.Pending)

	c.Flush()
	assert.Empty(t, gw.Submissions(), "opening the picker mutates nothing")
}

func TestController_EditIntentOnDateUnknownRecordIsSilent(t *testing.T) {
	gw := &stubGateway{fetchRecords: twelveRecords()}
	c, _ := newLoadedController(t, gw)

	err := c.apply(context.Background(), Intent{Kind: IntentEdit, ID: 99, Field: record.FieldDate})
	require.NoError(t, err)
	assert.Nil(t, c.Snapshot().Editing)
}

func TestController_RunContextCancel(t *testing.T) {
	gw := &stubGateway{}
	c := New(gw, WithClock(testutil.NewDeterministicClock(time.Now())))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("run loop ignored cancellation")
	}
}

// Rapid edits to the same record may confirm out of order remotely;
// local state must reflect the last synchronous mutation regardless.
func TestController_LocalStateWinsOverCompletionOrder(t *testing.T) {
	gw := &stubGateway{fetchRecords: twelveRecords()}
	c, _ := newLoadedController(t, gw)

	require.NoError(t, c.BeginEdit(1, record.FieldName))
	require.NoError(t, c.CommitEdit("First"))
	require.NoError(t, c.BeginEdit(1, record.FieldName))
	require.NoError(t, c.CommitEdit("Second"))
	c.Flush()

	rec := c.Records()[0]
	assert.Equal(t, "Second", rec.Name)
	assert.Len(t, gw.Submissions(), 2)
}
