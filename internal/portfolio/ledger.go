package portfolio

import (
	"sync"

	"sniperbot/internal/model"
)

// Ledger is the append-only record of closed trades. Written once per
// closed position, never amended.
type Ledger struct {
	mu       sync.RWMutex
	trades   []model.Trade
	totalPnL float64 // simulated trades only; live PnL is reconciled externally
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{trades: make([]model.Trade, 0, 256)}
}

// Append records a closed trade. Only simulated trades contribute to the
// running realized PnL — live fills are settled by the exchange.
func (l *Ledger) Append(t model.Trade) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trades = append(l.trades, t)
	if t.Mode == model.ModeSimulated {
		l.totalPnL += t.RealizedPnL
	}
}

// TotalRealizedPnL returns the running sum of simulated realized PnL.
func (l *Ledger) TotalRealizedPnL() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalPnL
}

// Len returns the number of recorded trades.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.trades)
}

// Snapshot returns the trade history, most recent first.
func (l *Ledger) Snapshot() []model.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.Trade, len(l.trades))
	for i, t := range l.trades {
		out[len(l.trades)-1-i] = t
	}
	return out
}
