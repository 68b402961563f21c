package indicator

import (
	"math"

	"sniperbot/internal/model"
)

// ATR calculates the Average True Range as a rolling mean of the per-candle
// true range. The first candle has no previous close, so its true range is
// just high−low.
type ATR struct {
	period    int
	buf       []float64 // circular buffer of the last period true ranges
	idx       int
	count     int
	sum       float64
	prevClose float64
}

// NewATR creates an ATR with the given period (typically 14).
func NewATR(period int) *ATR {
	return &ATR{
		period: period,
		buf:    make([]float64, period),
	}
}

// Update feeds the next candle.
func (a *ATR) Update(c model.Candle) {
	tr := c.High - c.Low
	if a.count > 0 {
		tr = math.Max(tr, math.Max(
			math.Abs(c.High-a.prevClose),
			math.Abs(c.Low-a.prevClose),
		))
	}
	a.prevClose = c.Close

	if a.count >= a.period {
		a.sum -= a.buf[a.idx]
	}
	a.buf[a.idx] = tr
	a.sum += tr
	a.idx = (a.idx + 1) % a.period
	a.count++
}

// Ready reports whether a full window of true ranges has been observed.
func (a *ATR) Ready() bool { return a.count >= a.period }

// Value returns the current ATR, or NaN before the window fills.
func (a *ATR) Value() float64 {
	if !a.Ready() {
		return math.NaN()
	}
	return a.sum / float64(a.period)
}
