package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/gridline/internal/editor"
	"github.com/roach88/gridline/internal/record"
)

// IntentKind enumerates the user intents a surface can dispatch.
type IntentKind int

const (
	// IntentLoad fetches the remote collection.
	IntentLoad IntentKind = iota + 1
	// IntentAdd prepends a default row.
	IntentAdd
	// IntentDelete removes a row by id.
	IntentDelete
	// IntentEdit commits a plain-field edit (id, field, value).
	IntentEdit
	// IntentOpenPicker starts the date sub-protocol for a row.
	IntentOpenPicker
	// IntentSelectDate commits an ISO picker choice.
	IntentSelectDate
	// IntentDismissPicker abandons the date sub-protocol.
	IntentDismissPicker
	// IntentSearch sets the active search term.
	IntentSearch
	// IntentSetRows changes the page size.
	IntentSetRows
	// IntentNextPage, IntentPrevPage, IntentGoToPage navigate.
	IntentNextPage
	IntentPrevPage
	IntentGoToPage
)

// Intent is one queued user action. Only the fields relevant to the
// kind are set.
type Intent struct {
	Kind  IntentKind
	ID    int
	Field record.Field
	Value string
	Page  int
	Rows  int
}

// Dispatch submits an intent for processing by the Run loop.
// Thread-safe: may be called from any goroutine.
// Returns false once the controller has stopped.
func (c *Controller) Dispatch(in Intent) bool {
	return c.queue.Enqueue(in)
}

// Stop closes the intent queue, which makes Run return after draining.
func (c *Controller) Stop() {
	c.queue.Close()
}

// Run starts the single-writer intent loop. Blocks until the context
// is cancelled or Stop is called and the queue has drained.
//
// Must be called from exactly ONE goroutine: every state mutation
// happens here, which is what makes local mutations atomic relative to
// in-flight remote calls.
//
// Intent failures are logged and processing continues; a malformed or
// stale intent must not wedge the table.
func (c *Controller) Run(ctx context.Context) error {
	slog.Info("controller starting")

	for {
		in, ok := c.queue.TryDequeue()
		if ok {
			if err := c.apply(ctx, in); err != nil {
				slog.Error("intent failed", "kind", int(in.Kind), "id", in.ID, "error", err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("controller stopping: context cancelled")
			c.queue.Close()
			return ctx.Err()

		case <-c.queue.Wait():
			if c.queue.Closed() && c.queue.Len() == 0 {
				slog.Info("controller stopping: queue closed")
				return nil
			}
		}
	}
}

// apply executes one intent. Called only from the Run goroutine.
func (c *Controller) apply(ctx context.Context, in Intent) error {
	switch in.Kind {
	case IntentLoad:
		return c.Load(ctx)

	case IntentAdd:
		c.Add()
		return nil

	case IntentDelete:
		c.Delete(in.ID)
		return nil

	case IntentEdit:
		if err := c.BeginEdit(in.ID, in.Field); err != nil {
			// An edit against a vanished record fails silently.
			if errors.Is(err, editor.ErrUnknownRecord) {
				return nil
			}
			// Plain editing of the date field is suppressed: the
			// intent opens the picker instead, discarding the typed
			// value.
			if errors.Is(err, editor.ErrDateNotEditable) {
				_, perr := c.OpenDatePicker(in.ID)
				if errors.Is(perr, editor.ErrUnknownRecord) {
					return nil
				}
				return perr
			}
			return err
		}
		return c.CommitEdit(in.Value)

	case IntentOpenPicker:
		_, err := c.OpenDatePicker(in.ID)
		if errors.Is(err, editor.ErrUnknownRecord) {
			return nil
		}
		return err

	case IntentSelectDate:
		return c.SelectDate(in.Value)

	case IntentDismissPicker:
		c.DismissPicker()
		return nil

	case IntentSearch:
		c.Search(in.Value)
		return nil

	case IntentSetRows:
		c.SetRowsPerPage(in.Rows)
		return nil

	case IntentNextPage:
		c.NextPage()
		return nil

	case IntentPrevPage:
		c.PrevPage()
		return nil

	case IntentGoToPage:
		c.GoToPage(in.Page)
		return nil

	default:
		return fmt.Errorf("unknown intent kind %d", int(in.Kind))
	}
}
