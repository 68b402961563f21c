package indicator

import "math"

// MACD calculates the Moving Average Convergence Divergence line
// (EMA fast − EMA slow) and its EMA signal line.
type MACD struct {
	fast      *EMA
	slow      *EMA
	signalEMA *EMA
	slowSpan  int
	sigSpan   int
	count     int
}

// NewMACD creates a MACD with the given fast/slow/signal spans
// (conventionally 12, 26, 9).
func NewMACD(fastSpan, slowSpan, signalSpan int) *MACD {
	return &MACD{
		fast:      NewEMA(fastSpan),
		slow:      NewEMA(slowSpan),
		signalEMA: NewEMA(signalSpan),
		slowSpan:  slowSpan,
		sigSpan:   signalSpan,
	}
}

// Update feeds the next close price.
func (m *MACD) Update(price float64) {
	m.count++
	m.fast.Update(price)
	m.slow.Update(price)
	m.signalEMA.Update(m.fast.raw() - m.slow.raw())
}

// Line returns the MACD line, or NaN before the slow span is filled.
func (m *MACD) Line() float64 {
	if m.count < m.slowSpan {
		return math.NaN()
	}
	return m.fast.raw() - m.slow.raw()
}

// Signal returns the signal line, or NaN before slow+signal values exist.
func (m *MACD) Signal() float64 {
	if m.count < m.slowSpan+m.sigSpan {
		return math.NaN()
	}
	return m.signalEMA.raw()
}
