package indicator

import "math"

// RSI calculates the Relative Strength Index over a plain rolling window:
// the mean of positive close deltas against the mean of negated negative
// deltas. When the loss mean is zero RSI saturates at 100.
// Uses a preallocated circular buffer for zero-allocation updates.
type RSI struct {
	period    int
	gains     []float64 // circular buffers of the last period deltas
	losses    []float64
	idx       int
	deltas    int // total deltas observed
	sumGain   float64
	sumLoss   float64
	count     int
	prevClose float64
}

// NewRSI creates an RSI with the given period (typically 14).
func NewRSI(period int) *RSI {
	return &RSI{
		period: period,
		gains:  make([]float64, period),
		losses: make([]float64, period),
	}
}

// Update feeds the next close price.
func (r *RSI) Update(price float64) {
	r.count++
	if r.count == 1 {
		// First candle — no delta yet
		r.prevClose = price
		return
	}

	delta := price - r.prevClose
	r.prevClose = price

	gain, loss := 0.0, 0.0
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}

	if r.deltas >= r.period {
		// Subtract the oldest values being overwritten
		r.sumGain -= r.gains[r.idx]
		r.sumLoss -= r.losses[r.idx]
	}
	r.gains[r.idx] = gain
	r.losses[r.idx] = loss
	r.sumGain += gain
	r.sumLoss += loss
	r.idx = (r.idx + 1) % r.period
	r.deltas++
}

// Ready reports whether a full window of deltas has been observed.
func (r *RSI) Ready() bool { return r.deltas >= r.period }

// Value returns the current RSI in [0,100], or NaN before the window fills.
func (r *RSI) Value() float64 {
	if !r.Ready() {
		return math.NaN()
	}
	if r.sumLoss == 0 {
		return 100.0
	}
	rs := r.sumGain / r.sumLoss
	return 100.0 - 100.0/(1.0+rs)
}
