// Package syncgw replays local mutations against the remote collection
// resource.
//
// The gateway is strictly downstream of the record store: by the time a
// call is issued the local mutation has already been applied, and a
// failure surfaces only as a user-visible notification, never as a
// rollback. Completion ordering is not guaranteed to match issue
// ordering; the core never uses remote responses to update local state,
// so out-of-order confirmations are harmless.
//
// On create the remote assigns its own identity; the core keeps its
// client-minted id as the permanent key and ignores the server's.
// That asymmetry is observed behavior, preserved deliberately (see
// DESIGN.md) rather than silently "fixed".
package syncgw

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/gridline/internal/record"
)

// Intent is the mutation kind being replayed.
type Intent int

const (
	// IntentCreate replays an insert (POST, full payload).
	IntentCreate Intent = iota + 1
	// IntentUpdate replays a field edit (PUT, full payload keyed by id).
	IntentUpdate
	// IntentDelete replays a removal (DELETE, id only).
	IntentDelete
)

// String returns the intent name used in logs and notifications.
func (i Intent) String() string {
	switch i {
	case IntentCreate:
		return "create"
	case IntentUpdate:
		return "update"
	case IntentDelete:
		return "delete"
	default:
		return fmt.Sprintf("intent(%d)", int(i))
	}
}

// Result reports the outcome of one replayed mutation. Err is nil on
// success; a non-2xx status and a transport error are equivalent
// failures and are not distinguished here.
type Result struct {
	Token    string
	Intent   Intent
	RecordID int
	Err      error
}

// Gateway is the remote collection capability consumed by the
// controller. Submit blocks; the controller detaches it onto its own
// goroutine, which is what makes the protocol fire-and-forget from the
// store's point of view.
type Gateway interface {
	// Fetch loads the full remote collection for the initial table fill.
	Fetch(ctx context.Context) ([]record.Record, error)
	// Submit replays one mutation and reports the outcome.
	Submit(ctx context.Context, rec record.Record, intent Intent) Result
}

// TokenGenerator mints correlation tokens stamped on every request.
// Implemented by UUIDv7Generator (production) and
// testutil.FixedTokenGenerator (tests).
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 request tokens, so a
// request log sorts by issue time without trusting completion order.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
