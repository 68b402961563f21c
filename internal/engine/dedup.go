package engine

import (
	"sync"
	"time"
)

// dedupGuard remembers, per symbol, the closed-candle timestamp of the last
// entry signal that was actually acted upon. A signal condition that
// persists across repeated polls of the same closed candle must trigger at
// most one entry.
//
// The timestamp is marked only after a successful entry: a transient
// execution failure must not permanently suppress a valid signal.
type dedupGuard struct {
	mu   sync.Mutex
	last map[string]time.Time
}

func newDedupGuard() *dedupGuard {
	return &dedupGuard{last: make(map[string]time.Time)}
}

// seen reports whether an entry for symbol was already executed on the
// closed candle with the given open time.
func (g *dedupGuard) seen(symbol string, candleTime time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.last[symbol]
	return ok && t.Equal(candleTime)
}

// mark records a successful entry on the closed candle with the given open
// time.
func (g *dedupGuard) mark(symbol string, candleTime time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last[symbol] = candleTime
}
