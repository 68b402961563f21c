package model

import "context"

// ── Transport Port Interfaces ──
// The engine depends only on these two narrow interfaces; the concrete
// implementations (Binance REST client, simulated executor) live elsewhere
// and can be substituted in tests.

// MarketDataSource fetches candle history for one symbol/timeframe.
type MarketDataSource interface {
	// FetchCandles returns up to limit candles ascending by open time,
	// the most recent one possibly still forming. Failures surface as
	// *MarketDataError.
	FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]Candle, error)
}

// OrderExecutor places entry and exit orders. Implementations are
// polymorphic over the simulated and live execution paths.
type OrderExecutor interface {
	// OpenPosition commits notional quote currency at refPrice and
	// returns the realized fill. On failure no position exists and no
	// funds are committed.
	OpenPosition(ctx context.Context, symbol string, notional, refPrice float64) (Fill, error)

	// ClosePosition unwinds the full tracked amount of pos. exitPrice is
	// the level decided by the signal evaluator; the simulated path fills
	// exactly there, the live path submits a market sell and ignores it.
	ClosePosition(ctx context.Context, pos Position, exitPrice float64) (Fill, error)
}
