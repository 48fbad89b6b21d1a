package testutil

import (
	"fmt"
	"sync"
)

// FixedTokenGenerator returns predetermined request tokens in order.
//
// This makes sync gateway traffic deterministic for golden comparison:
// a test provides a known sequence of tokens and asserts exact request
// headers. When the provided tokens run out the generator falls back to
// sequential "token-N" values rather than panicking, so scenarios do
// not need to count their own requests.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedTokenGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedTokenGenerator creates a generator yielding tokens in order.
func NewFixedTokenGenerator(tokens ...string) *FixedTokenGenerator {
	return &FixedTokenGenerator{tokens: tokens}
}

// Generate returns the next token.
func (g *FixedTokenGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.idx++
	if g.idx <= len(g.tokens) {
		return g.tokens[g.idx-1]
	}
	return fmt.Sprintf("token-%d", g.idx)
}
