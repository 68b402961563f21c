package indicator

import "math"

// EMA calculates a recursive exponential moving average seeded with the
// first observed value, smoothing factor α = 2/(span+1).
// O(1) per update — no window storage needed.
type EMA struct {
	span    int
	alpha   float64
	current float64
	count   int
}

// NewEMA creates a new EMA with the given span.
func NewEMA(span int) *EMA {
	return &EMA{
		span:  span,
		alpha: 2.0 / float64(span+1),
	}
}

// Update feeds the next value of the series.
func (e *EMA) Update(price float64) {
	e.count++
	if e.count == 1 {
		e.current = price
		return
	}
	e.current = price*e.alpha + e.current*(1-e.alpha)
}

// Ready reports whether span values have been observed.
func (e *EMA) Ready() bool { return e.count >= e.span }

// Value returns the current EMA, or NaN before the span is filled.
func (e *EMA) Value() float64 {
	if !e.Ready() {
		return math.NaN()
	}
	return e.current
}

// raw returns the recursive value regardless of readiness. Used for
// composition (the MACD signal line consumes unready MACD values the same
// way a dataframe ewm would).
func (e *EMA) raw() float64 { return e.current }
