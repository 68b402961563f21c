// Package strategy implements the fixed entry/exit rule: an EMA200 trend
// filter, an RSI band filter and a strict MACD/Signal cross-up for entries,
// with ATR-sized stop-loss and take-profit levels for exits.
package strategy

import (
	"sniperbot/internal/indicator"
	"sniperbot/internal/model"
)

// Default ATR multiples for stop-loss and take-profit distances.
const (
	DefaultStopMult = 2.0
	DefaultTPMult   = 3.5
)

// RSI band accepted for entries: avoids both oversold panic and overbought
// exhaustion.
const (
	rsiLow  = 35.0
	rsiHigh = 55.0
)

// Evaluator applies the entry and exit rules. The rule itself is fixed;
// only the ATR multiples are configurable.
type Evaluator struct {
	StopMult float64
	TPMult   float64
}

// NewEvaluator creates an Evaluator with the given ATR multiples.
func NewEvaluator(stopMult, tpMult float64) *Evaluator {
	return &Evaluator{StopMult: stopMult, TPMult: tpMult}
}

// Evaluate checks the entry rule on a freshly fetched window. The decision
// candle is index N−2 — the last fully closed one, since N−1 may still be
// forming — and the crossing is detected against index N−3.
//
// All indicator comparisons are false when the underlying value is still
// NaN, so indices before a window fills can never produce an entry.
func (e *Evaluator) Evaluate(enriched []model.EnrichedCandle) (model.Decision, error) {
	if len(enriched) < indicator.MinHistory {
		return model.Decision{}, model.ErrInsufficientHistory
	}

	last := enriched[len(enriched)-2]
	prev := enriched[len(enriched)-3]

	uptrend := last.Close > last.EMA200
	rsiBand := last.RSI14 > rsiLow && last.RSI14 < rsiHigh
	// Strict crossing, not merely "macd above signal".
	macdCrossUp := prev.MACD < prev.MACDSignal && last.MACD > last.MACDSignal

	d := model.Decision{
		Reference:  last.Close,
		CandleTime: last.OpenTime,
	}
	if uptrend && rsiBand && macdCrossUp {
		d.ShouldEnter = true
		d.StopLoss = last.Close - last.ATR14*e.StopMult
		d.TakeProfit = last.Close + last.ATR14*e.TPMult
	}
	return d, nil
}

// CheckExit tests the latest available price (the still-forming candle's
// close is acceptable here — exits react faster than entries) against an
// open position's levels. When a gapped price satisfies both, stop-loss
// wins as the conservative tie-break. The returned price is the level
// itself: the simulated fill assumption is an exact fill at the level.
func (e *Evaluator) CheckExit(pos model.Position, price float64) (model.ExitReason, float64, bool) {
	switch {
	case price <= pos.StopLoss:
		return model.ExitStopLoss, pos.StopLoss, true
	case price >= pos.TakeProfit:
		return model.ExitTakeProfit, pos.TakeProfit, true
	default:
		return "", 0, false
	}
}
