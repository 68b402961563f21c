package model

import (
	"encoding/json"
	"time"
)

// Candle represents one closed OHLCV interval for a single symbol/timeframe.
// Prices are positive floats as reported by the exchange; a Candle is
// immutable once fetched.
type Candle struct {
	Symbol   string    `json:"symbol"`
	OpenTime time.Time `json:"open_time"` // bucket start time (UTC)
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// Key returns a unique key for this candle: "symbol@unix".
func (c *Candle) Key() string {
	return c.Symbol + "@" + c.OpenTime.UTC().Format(time.RFC3339)
}

// JSON returns the JSON-encoded candle (ignoring errors for hot-path usage).
func (c *Candle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}

// EnrichedCandle is a Candle plus derived indicator values. Derived fields
// are NaN until enough preceding candles exist to fill the respective
// window (200 for EMA200, 26+9 for MACD/Signal, 14 for RSI/ATR).
type EnrichedCandle struct {
	Candle

	EMA200     float64 `json:"ema200"`
	MACD       float64 `json:"macd"`
	MACDSignal float64 `json:"macd_signal"`
	RSI14      float64 `json:"rsi14"`
	ATR14      float64 `json:"atr14"`
}
