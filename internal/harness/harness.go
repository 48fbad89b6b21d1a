package harness

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/roach88/gridline/internal/controller"
	"github.com/roach88/gridline/internal/query"
	"github.com/roach88/gridline/internal/record"
	"github.com/roach88/gridline/internal/syncgw"
	"github.com/roach88/gridline/internal/testutil"
	"github.com/roach88/gridline/internal/view"
)

// defaultNow is the frozen clock for scenarios that do not set one.
var defaultNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

// Submission is one replayed mutation observed by the gateway.
type Submission struct {
	Intent syncgw.Intent
	Record record.Record
}

// Result is the outcome of one scenario run.
type Result struct {
	Snapshot    view.Snapshot
	Rendered    string
	Submissions []Submission
	Failures    []string
}

// Passed reports whether every assertion held.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// memoryGateway serves the scenario seed and records every replay.
// Thread-safety: Submit is called from detached controller goroutines.
type memoryGateway struct {
	mu          sync.Mutex
	seed        []record.Record
	fail        bool
	submissions []Submission
}

func (g *memoryGateway) Fetch(context.Context) ([]record.Record, error) {
	out := make([]record.Record, len(g.seed))
	copy(out, g.seed)
	return out, nil
}

func (g *memoryGateway) Submit(_ context.Context, rec record.Record, intent syncgw.Intent) syncgw.Result {
	g.mu.Lock()
	g.submissions = append(g.submissions, Submission{Intent: intent, Record: rec})
	g.mu.Unlock()

	res := syncgw.Result{Token: fmt.Sprintf("scenario-%d", rec.ID), Intent: intent, RecordID: rec.ID}
	if g.fail {
		res.Err = errors.New("remote configured to fail")
	}
	return res
}

func (g *memoryGateway) recorded() []Submission {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Submission, len(g.submissions))
	copy(out, g.submissions)
	return out
}

// Run executes a scenario and returns its result. Each scenario gets a
// fresh controller and gateway for isolation; the clock is frozen, and
// the controller is flushed after every step so notifications land in
// step order.
func Run(scenario *Scenario) (*Result, error) {
	now := scenario.Now
	if now.IsZero() {
		now = defaultNow
	}
	clock := testutil.NewDeterministicClock(now)

	gw := &memoryGateway{seed: scenario.Seed, fail: scenario.RemoteFails}
	rows := scenario.RowsPerPage
	if rows <= 0 {
		rows = query.DefaultRowsPerPage
	}
	ctrl := controller.New(gw,
		controller.WithClock(clock),
		controller.WithRowsPerPage(rows),
	)

	if err := ctrl.Load(context.Background()); err != nil {
		return nil, fmt.Errorf("scenario %s: load: %w", scenario.Name, err)
	}

	for i, step := range scenario.Steps {
		if err := applyStep(ctrl, step); err != nil {
			return nil, fmt.Errorf("scenario %s step %d: %w", scenario.Name, i+1, err)
		}
		ctrl.Flush()
	}

	snapshot := ctrl.Snapshot()
	var rendered strings.Builder
	view.RenderText(&rendered, snapshot)

	result := &Result{
		Snapshot:    snapshot,
		Rendered:    rendered.String(),
		Submissions: gw.recorded(),
	}
	evaluate(scenario.Expect, result)
	return result, nil
}

// applyStep maps one scenario step onto a controller intent. Rejected
// navigation (next on the last page and the like) is not an error: the
// no-op is part of the behavior under test.
func applyStep(ctrl *controller.Controller, step Step) error {
	switch {
	case step.Search != nil:
		ctrl.Search(*step.Search)
	case step.Rows > 0:
		ctrl.SetRowsPerPage(step.Rows)
	case step.Next:
		ctrl.NextPage()
	case step.Prev:
		ctrl.PrevPage()
	case step.GoTo > 0:
		ctrl.GoToPage(step.GoTo)
	case step.Add:
		ctrl.Add()
	case step.Delete > 0:
		ctrl.Delete(step.Delete)
	case step.Edit != nil:
		f, err := record.ParseField(step.Edit.Field)
		if err != nil {
			return err
		}
		if err := ctrl.BeginEdit(step.Edit.ID, f); err != nil {
			return err
		}
		return ctrl.CommitEdit(step.Edit.Value)
	case step.PickDate != nil:
		if _, err := ctrl.OpenDatePicker(step.PickDate.ID); err != nil {
			return err
		}
		return ctrl.SelectDate(step.PickDate.Date)
	case step.DismissPicker:
		ctrl.DismissPicker()
	default:
		return errors.New("empty step")
	}
	return nil
}

// evaluate checks the scenario's assertions against the result.
func evaluate(expect Expect, result *Result) {
	fail := func(format string, args ...any) {
		result.Failures = append(result.Failures, fmt.Sprintf(format, args...))
	}

	if expect.Summary != "" && result.Snapshot.Summary != expect.Summary {
		fail("summary: expected %q, got %q", expect.Summary, result.Snapshot.Summary)
	}
	if expect.RowCount != nil && len(result.Snapshot.Rows) != *expect.RowCount {
		fail("row count: expected %d, got %d", *expect.RowCount, len(result.Snapshot.Rows))
	}
	if expect.TotalPages != nil && result.Snapshot.Meta.Total != *expect.TotalPages {
		fail("total pages: expected %d, got %d", *expect.TotalPages, result.Snapshot.Meta.Total)
	}
	if expect.Submissions != nil && len(result.Submissions) != *expect.Submissions {
		fail("submissions: expected %d, got %d", *expect.Submissions, len(result.Submissions))
	}
}
