package model

import "time"

// ExitReason tags why a position was closed.
type ExitReason string

const (
	ExitStopLoss   ExitReason = "STOP_LOSS"
	ExitTakeProfit ExitReason = "TAKE_PROFIT"
)

// Mode selects the execution path.
type Mode string

const (
	ModeSimulated Mode = "simulated"
	ModeLive      Mode = "live"
)

// Trade is the append-only record of a closed position.
//
// RealizedPnL is exact for simulated trades: (exit − entry) × amount.
// For live trades the exchange is authoritative and no local PnL is
// computed; RealizedPnL is zero and excluded from running totals.
type Trade struct {
	Symbol      string     `json:"symbol"`
	EntryPrice  float64    `json:"entry_price"`
	ExitPrice   float64    `json:"exit_price"`
	Amount      float64    `json:"amount"`
	RealizedPnL float64    `json:"realized_pnl"`
	ExitReason  ExitReason `json:"exit_reason"`
	Mode        Mode       `json:"mode"`
	OrderID     string     `json:"order_id"`
	ClosedAt    time.Time  `json:"closed_at"`
}

// Fill reports the realized price and quantity of an executed order.
type Fill struct {
	OrderID  string    `json:"order_id"`
	Price    float64   `json:"price"`
	Quantity float64   `json:"quantity"`
	FilledAt time.Time `json:"filled_at"`
}
