// Package notify holds the transient, auto-dismissing notifications
// that surface sync outcomes to the user.
//
// Notifications are the ONLY visible trace of a remote call: a failed
// create/update/delete posts an error here and nothing else happens —
// the already-applied local mutation stays (optimistic, no rollback).
// Entries expire after a fixed duration rather than blocking anything.
package notify

import (
	"sync"
	"time"
)

// DefaultTTL matches the classic three-second toast.
const DefaultTTL = 3 * time.Second

// Kind classifies a notification.
type Kind int

const (
	// KindSuccess reports a confirmed remote mutation.
	KindSuccess Kind = iota + 1
	// KindError reports a failed remote call (non-success status or
	// transport error, treated identically).
	KindError
)

// String returns the kind name for rendering.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Notification is one transient message.
type Notification struct {
	Seq     int64
	Kind    Kind
	Message string
	Posted  time.Time
}

// Clock supplies the current time; injected for deterministic expiry.
type Clock interface {
	Now() time.Time
}

// Center collects notifications and expires them after a fixed TTL.
//
// Thread-safety: safe for concurrent use. Detached sync goroutines post
// here while the controller's loop reads, so this is the one place in
// the system besides the intent queue that takes a lock.
type Center struct {
	mu    sync.Mutex
	clock Clock
	ttl   time.Duration
	seq   int64
	items []Notification
}

// NewCenter creates a Center with the given clock and TTL. A
// non-positive TTL falls back to DefaultTTL.
func NewCenter(clock Clock, ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{clock: clock, ttl: ttl}
}

// Post adds a notification and returns its sequence number. Sequence
// numbers are strictly increasing, so renderers can keep stable order
// even when completions resolve out of issue order.
func (c *Center) Post(kind Kind, message string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.items = append(c.items, Notification{
		Seq:     c.seq,
		Kind:    kind,
		Message: message,
		Posted:  c.clock.Now(),
	})
	return c.seq
}

// Success posts a success notification.
func (c *Center) Success(message string) int64 {
	return c.Post(KindSuccess, message)
}

// Error posts an error notification.
func (c *Center) Error(message string) int64 {
	return c.Post(KindError, message)
}

// Active returns the not-yet-expired notifications in posting order
// and prunes the expired ones.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	live := c.items[:0]
	for _, n := range c.items {
		if now.Sub(n.Posted) < c.ttl {
			live = append(live, n)
		}
	}
	c.items = live

	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}
