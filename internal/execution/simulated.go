// Package execution contains the two order execution paths — simulated and
// live — behind the same OrderExecutor port, plus the SQLite trade journal.
package execution

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sniperbot/internal/model"
	"sniperbot/internal/portfolio"
)

// Simulated fills orders against an internal account without ever touching
// an exchange. Entries fill exactly at the reference price; exits fill
// exactly at the stop/take-profit level decided by the evaluator.
type Simulated struct {
	account *portfolio.Account
}

// NewSimulated creates a simulated executor backed by the given account.
func NewSimulated(account *portfolio.Account) *Simulated {
	return &Simulated{account: account}
}

// OpenPosition succeeds iff the account holds at least notional. On success
// notional is deducted and a synthetic fill of notional/refPrice units at
// refPrice is returned.
func (s *Simulated) OpenPosition(ctx context.Context, symbol string, notional, refPrice float64) (model.Fill, error) {
	if err := s.account.Reserve(decimal.NewFromFloat(notional)); err != nil {
		return model.Fill{}, &model.ExecutionError{Op: "open", Symbol: symbol, Err: err}
	}
	return model.Fill{
		OrderID:  "SIM-" + uuid.NewString(),
		Price:    refPrice,
		Quantity: notional / refPrice,
		FilledAt: time.Now().UTC(),
	}, nil
}

// ClosePosition always succeeds. It credits the entry notional plus the
// realized PnL back to the account and fills at exitPrice.
func (s *Simulated) ClosePosition(ctx context.Context, pos model.Position, exitPrice float64) (model.Fill, error) {
	pnl := (exitPrice - pos.EntryPrice) * pos.Amount
	s.account.Credit(decimal.NewFromFloat(pos.Notional()).Add(decimal.NewFromFloat(pnl)))
	return model.Fill{
		OrderID:  "SIM-" + uuid.NewString(),
		Price:    exitPrice,
		Quantity: pos.Amount,
		FilledAt: time.Now().UTC(),
	}, nil
}
