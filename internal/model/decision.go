package model

import "time"

// Decision is the outcome of evaluating the entry rule on the last fully
// closed candle of a window. When ShouldEnter is true and ATR is positive,
// StopLoss < Reference < TakeProfit holds for this long-only design.
type Decision struct {
	ShouldEnter bool      `json:"should_enter"`
	StopLoss    float64   `json:"stop_loss"`
	TakeProfit  float64   `json:"take_profit"`
	Reference   float64   `json:"reference"`   // close of the decision candle
	CandleTime  time.Time `json:"candle_time"` // open time of the decision candle
}
