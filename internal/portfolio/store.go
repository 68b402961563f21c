// Package portfolio holds the per-symbol position store, the simulated
// account and the append-only trade ledger.
//
// All three are mutated by the single orchestration loop, but carry their
// own locks because the status API and the state publisher read snapshots
// concurrently.
package portfolio

import (
	"sort"
	"sync"

	"sniperbot/internal/model"
)

// Store maps symbols to at most one open position each. The invariant is
// enforced at the insertion boundary, not assumed by callers.
type Store struct {
	mu        sync.RWMutex
	positions map[string]model.Position
}

// NewStore creates an empty position store.
func NewStore() *Store {
	return &Store{positions: make(map[string]model.Position)}
}

// Open inserts a new position. It fails with ErrPositionExists if the
// symbol already has one open.
func (s *Store) Open(pos model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.positions[pos.Symbol]; ok {
		return model.ErrPositionExists
	}
	s.positions[pos.Symbol] = pos
	return nil
}

// Get returns the open position for symbol, if any.
func (s *Store) Get(symbol string) (model.Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.positions[symbol]
	return pos, ok
}

// Remove deletes the position for symbol after a successful exit.
func (s *Store) Remove(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.positions, symbol)
}

// Len returns the number of open positions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.positions)
}

// Snapshot returns a copy of all open positions, ordered by symbol.
func (s *Store) Snapshot() []model.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Position, 0, len(s.positions))
	for _, p := range s.positions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
