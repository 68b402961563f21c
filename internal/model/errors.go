package model

import (
	"errors"
	"fmt"
)

// Sentinel errors of the position lifecycle. All per-instrument errors are
// isolated to that instrument's slice of a tick; none terminate the loop.
var (
	// ErrInsufficientHistory: fewer candles than the largest indicator
	// window — evaluation is skipped, no signal is produced.
	ErrInsufficientHistory = errors.New("insufficient candle history")

	// ErrInsufficientBalance blocks a simulated-mode entry that would
	// drive the balance negative.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrPositionExists guards the at-most-one-open-position invariant
	// at the store's insertion boundary.
	ErrPositionExists = errors.New("position already open")
)

// MarketDataError wraps a candle-fetch failure. The affected symbol is
// skipped for the tick; other symbols keep processing.
type MarketDataError struct {
	Symbol string
	Err    error
}

func (e *MarketDataError) Error() string {
	return fmt.Sprintf("market data %s: %v", e.Symbol, e.Err)
}

func (e *MarketDataError) Unwrap() error { return e.Err }

// ExecutionError wraps an order placement/closure failure with the
// underlying exchange message.
type ExecutionError struct {
	Op     string // "open" or "close"
	Symbol string
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution %s %s: %v", e.Op, e.Symbol, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
