package model

import "time"

// Position represents a single open long position. It is created from the
// fill of a successful entry order and never mutated afterwards; exits close
// it, they do not adjust it.
type Position struct {
	Symbol     string    `json:"symbol"`
	EntryPrice float64   `json:"entry_price"`
	Amount     float64   `json:"amount"` // base-asset quantity
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	OrderID    string    `json:"order_id"`
	OpenedAt   time.Time `json:"opened_at"`
}

// UnrealizedPnL computes unrealized profit/loss at the given price.
func (p *Position) UnrealizedPnL(price float64) float64 {
	return (price - p.EntryPrice) * p.Amount
}

// Notional returns the quote-currency size of the position at entry.
func (p *Position) Notional() float64 {
	return p.EntryPrice * p.Amount
}
