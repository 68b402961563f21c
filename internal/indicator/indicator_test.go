package indicator

import (
	"math"
	"testing"

	"sniperbot/internal/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEMASeedsWithFirstValue(t *testing.T) {
	// span 3 → α = 0.5, so the recursion is easy to follow by hand
	e := NewEMA(3)

	e.Update(1)
	if !math.IsNaN(e.Value()) {
		t.Fatalf("EMA ready after 1 value, got %v", e.Value())
	}
	e.Update(2)
	if !math.IsNaN(e.Value()) {
		t.Fatalf("EMA ready after 2 values, got %v", e.Value())
	}
	e.Update(3)
	// seed 1, then 2*0.5+1*0.5 = 1.5, then 3*0.5+1.5*0.5 = 2.25
	if got := e.Value(); !almostEqual(got, 2.25) {
		t.Fatalf("EMA value = %v, want 2.25", got)
	}
}

func TestMACDReadinessWindows(t *testing.T) {
	m := NewMACD(FastSpan, SlowSpan, SignalSpan)

	for i := 0; i < 40; i++ {
		m.Update(100)

		count := i + 1
		wantLineNaN := count < SlowSpan
		wantSigNaN := count < SlowSpan+SignalSpan
		if gotNaN := math.IsNaN(m.Line()); gotNaN != wantLineNaN {
			t.Fatalf("count %d: Line NaN = %v, want %v", count, gotNaN, wantLineNaN)
		}
		if gotNaN := math.IsNaN(m.Signal()); gotNaN != wantSigNaN {
			t.Fatalf("count %d: Signal NaN = %v, want %v", count, gotNaN, wantSigNaN)
		}
	}

	// A constant series has identical fast and slow EMAs
	if got := m.Line(); !almostEqual(got, 0) {
		t.Fatalf("Line on constant series = %v, want 0", got)
	}
	if got := m.Signal(); !almostEqual(got, 0) {
		t.Fatalf("Signal on constant series = %v, want 0", got)
	}
}

func TestRSIRollingMean(t *testing.T) {
	r := NewRSI(2)

	r.Update(1)
	r.Update(2)
	if !math.IsNaN(r.Value()) {
		t.Fatalf("RSI ready after 1 delta, got %v", r.Value())
	}
	r.Update(1)
	// deltas +1, −1 → mean gain = mean loss → RSI 50
	if got := r.Value(); !almostEqual(got, 50) {
		t.Fatalf("RSI = %v, want 50", got)
	}
}

func TestRSISaturatesWithoutLosses(t *testing.T) {
	r := NewRSI(2)
	for _, p := range []float64{1, 2, 3} {
		r.Update(p)
	}
	if got := r.Value(); got != 100 {
		t.Fatalf("RSI with zero losses = %v, want 100", got)
	}
}

func TestRSIWindowSlides(t *testing.T) {
	r := NewRSI(2)
	// An early loss must age out of the window
	for _, p := range []float64{3, 2, 3, 4} {
		r.Update(p)
	}
	// remaining deltas: +1, +1 → no losses
	if got := r.Value(); got != 100 {
		t.Fatalf("RSI after loss aged out = %v, want 100", got)
	}
}

func TestATRFirstTrueRangeIsHighLow(t *testing.T) {
	a := NewATR(2)

	a.Update(model.Candle{High: 10, Low: 8, Close: 9})
	if !math.IsNaN(a.Value()) {
		t.Fatalf("ATR ready after 1 candle, got %v", a.Value())
	}
	// TR = max(12−9, |12−9|, |9−9|) = 3
	a.Update(model.Candle{High: 12, Low: 9, Close: 11})
	if got := a.Value(); !almostEqual(got, 2.5) {
		t.Fatalf("ATR = %v, want 2.5", got)
	}
}

func TestATRUsesPreviousCloseInGaps(t *testing.T) {
	a := NewATR(1)
	a.Update(model.Candle{High: 10, Low: 9, Close: 10})
	// gap up: candle range is 1 but distance from prev close is 5
	a.Update(model.Candle{High: 15, Low: 14, Close: 15})
	if got := a.Value(); !almostEqual(got, 5) {
		t.Fatalf("ATR after gap = %v, want 5", got)
	}
}

func syntheticCandles(n int) []model.Candle {
	out := make([]model.Candle, n)
	for i := range out {
		// deterministic wave with enough variation to exercise every branch
		c := 100 + 10*math.Sin(float64(i)/7) + float64(i%5)
		out[i] = model.Candle{
			Symbol: "BTC/USDT",
			Open:   c - 1,
			High:   c + 2,
			Low:    c - 2,
			Close:  c,
		}
	}
	return out
}

func TestEnrichReadinessBoundaries(t *testing.T) {
	enriched := Enrich(syntheticCandles(250))

	checks := []struct {
		name  string
		first int // first index with a finite value
		value func(model.EnrichedCandle) float64
	}{
		{"EMA200", TrendSpan - 1, func(c model.EnrichedCandle) float64 { return c.EMA200 }},
		{"MACD", SlowSpan - 1, func(c model.EnrichedCandle) float64 { return c.MACD }},
		{"MACDSignal", SlowSpan + SignalSpan - 1, func(c model.EnrichedCandle) float64 { return c.MACDSignal }},
		{"RSI14", RSIPeriod, func(c model.EnrichedCandle) float64 { return c.RSI14 }},
		{"ATR14", ATRPeriod - 1, func(c model.EnrichedCandle) float64 { return c.ATR14 }},
	}
	for _, tc := range checks {
		for i, c := range enriched {
			wantNaN := i < tc.first
			if gotNaN := math.IsNaN(tc.value(c)); gotNaN != wantNaN {
				t.Fatalf("%s at index %d: NaN = %v, want %v", tc.name, i, gotNaN, wantNaN)
			}
		}
	}
}

func TestEnrichIsCausalAndDeterministic(t *testing.T) {
	candles := syntheticCandles(120)

	full := Enrich(candles)
	again := Enrich(candles)
	for i := range full {
		if full[i] != again[i] {
			// NaN != NaN, so compare through formatting-free field checks
			if !sameEnriched(full[i], again[i]) {
				t.Fatalf("index %d: enrichment not deterministic", i)
			}
		}
	}

	// A prefix must enrich identically to the same indices of the full run
	prefix := Enrich(candles[:80])
	for i := range prefix {
		if !sameEnriched(prefix[i], full[i]) {
			t.Fatalf("index %d: enrichment depends on later candles", i)
		}
	}
}

func sameEnriched(a, b model.EnrichedCandle) bool {
	eq := func(x, y float64) bool {
		return x == y || (math.IsNaN(x) && math.IsNaN(y))
	}
	return a.Candle == b.Candle &&
		eq(a.EMA200, b.EMA200) &&
		eq(a.MACD, b.MACD) && eq(a.MACDSignal, b.MACDSignal) &&
		eq(a.RSI14, b.RSI14) && eq(a.ATR14, b.ATR14)
}
