// Package indicator provides technical indicator calculations over candle
// data: EMA, MACD, RSI and ATR, plus the Enrich pipeline that derives all of
// them for a candle sequence in one pass.
//
// Enrichment is deterministic and strictly causal: the derived fields of
// candle i depend only on candles 0..i, never on later ones. Indices whose
// window has not filled yet carry NaN and must not be evaluated by callers.
package indicator

import "sniperbot/internal/model"

// Fixed spans of the trading rule. The strategy is a literal policy, not a
// pluggable framework, so these are constants rather than configuration.
const (
	TrendSpan  = 200
	FastSpan   = 12
	SlowSpan   = 26
	SignalSpan = 9
	RSIPeriod  = 14
	ATRPeriod  = 14

	// MinHistory is the smallest window on which the entry rule can be
	// evaluated at all: the MACD signal line needs SlowSpan+SignalSpan
	// candles before the deciding index is defined.
	MinHistory = SlowSpan + SignalSpan
)

// Enrich derives EMA200, MACD/Signal, RSI14 and ATR14 for an ordered candle
// sequence (oldest first) and returns a same-length enriched sequence.
func Enrich(candles []model.Candle) []model.EnrichedCandle {
	ema200 := NewEMA(TrendSpan)
	macd := NewMACD(FastSpan, SlowSpan, SignalSpan)
	rsi := NewRSI(RSIPeriod)
	atr := NewATR(ATRPeriod)

	out := make([]model.EnrichedCandle, len(candles))
	for i, c := range candles {
		ema200.Update(c.Close)
		macd.Update(c.Close)
		rsi.Update(c.Close)
		atr.Update(c)

		out[i] = model.EnrichedCandle{
			Candle:     c,
			EMA200:     ema200.Value(),
			MACD:       macd.Line(),
			MACDSignal: macd.Signal(),
			RSI14:      rsi.Value(),
			ATR14:      atr.Value(),
		}
	}
	return out
}
