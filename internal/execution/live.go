package execution

import (
	"context"

	"sniperbot/internal/model"
)

// SpotClient is the slice of the exchange client the live path needs.
type SpotClient interface {
	// RoundQuantity rounds qty down to the symbol's lot step size.
	RoundQuantity(ctx context.Context, symbol string, qty float64) (float64, error)

	// MarketBuy and MarketSell submit market orders and return the
	// actual fill price and quantity reported by the exchange.
	MarketBuy(ctx context.Context, symbol string, qty float64) (model.Fill, error)
	MarketSell(ctx context.Context, symbol string, qty float64) (model.Fill, error)
}

// Live places real market orders through the exchange client. Positions are
// created from the actual fill values, not the requested ones — slippage is
// whatever the exchange reports.
type Live struct {
	client SpotClient
}

// NewLive creates a live executor on top of the given exchange client.
func NewLive(client SpotClient) *Live {
	return &Live{client: client}
}

// OpenPosition converts notional to an instrument quantity at refPrice,
// rounds it to the exchange's lot precision and submits a market buy.
func (l *Live) OpenPosition(ctx context.Context, symbol string, notional, refPrice float64) (model.Fill, error) {
	qty, err := l.client.RoundQuantity(ctx, symbol, notional/refPrice)
	if err != nil {
		return model.Fill{}, &model.ExecutionError{Op: "open", Symbol: symbol, Err: err}
	}
	fill, err := l.client.MarketBuy(ctx, symbol, qty)
	if err != nil {
		return model.Fill{}, &model.ExecutionError{Op: "open", Symbol: symbol, Err: err}
	}
	return fill, nil
}

// ClosePosition submits a market sell for the position's full tracked
// amount. exitPrice is ignored: the exchange decides the fill, and realized
// PnL is reconciled there, not locally.
func (l *Live) ClosePosition(ctx context.Context, pos model.Position, exitPrice float64) (model.Fill, error) {
	fill, err := l.client.MarketSell(ctx, pos.Symbol, pos.Amount)
	if err != nil {
		return model.Fill{}, &model.ExecutionError{Op: "close", Symbol: pos.Symbol, Err: err}
	}
	return fill, nil
}
