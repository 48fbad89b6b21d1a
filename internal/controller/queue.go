package controller

import "sync"

// intentQueue is a thread-safe FIFO queue for user intents.
//
// The queue is unbounded: a burst of rapid edits must never block the
// surface that produced them. Thread-safety exists for external
// producers (UI adapters, the CLI REPL) while the controller's Run loop
// is the only consumer.
//
// A buffered signal channel of size 1 coalesces availability signals
// and lets Run wait with context awareness instead of spinning.
type intentQueue struct {
	mu      sync.Mutex
	intents []Intent
	closed  bool
	signal  chan struct{}
}

func newIntentQueue() *intentQueue {
	return &intentQueue{
		intents: make([]Intent, 0, 32),
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue adds an intent to the back of the queue.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *intentQueue) Enqueue(in Intent) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.intents = append(q.intents, in)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (Intent{}, false) if the queue is empty.
func (q *intentQueue) TryDequeue() (Intent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.intents) == 0 {
		return Intent{}, false
	}

	in := q.intents[0]
	q.intents[0] = Intent{}
	if len(q.intents) == 1 {
		q.intents = q.intents[:0]
	} else {
		q.intents = q.intents[1:]
	}
	return in, true
}

// Wait returns a channel that signals when intents may be available.
// Use with select for context-aware waiting.
func (q *intentQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of queued intents.
func (q *intentQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.intents)
}

// Close marks the queue closed and wakes any waiter. Enqueue after
// Close is rejected; drained consumers observe closed-and-empty.
func (q *intentQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}

// Closed reports whether the queue has been closed.
func (q *intentQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
