package portfolio

import (
	"sync"

	"github.com/shopspring/decimal"

	"sniperbot/internal/model"
)

// Account is the simulated quote-currency balance. Money is decimal, not
// float, so a long open/close sequence conserves balance exactly:
// net effect of a full cycle is precisely the realized PnL.
type Account struct {
	mu      sync.RWMutex
	balance decimal.Decimal
}

// NewAccount creates an account with the given starting balance.
func NewAccount(start decimal.Decimal) *Account {
	return &Account{balance: start}
}

// Reserve deducts notional from the balance for a new entry. It fails with
// ErrInsufficientBalance when the balance would go negative; the balance is
// untouched in that case.
func (a *Account) Reserve(notional decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.balance.LessThan(notional) {
		return model.ErrInsufficientBalance
	}
	a.balance = a.balance.Sub(notional)
	return nil
}

// Credit returns funds to the balance after an exit: the entry notional
// plus the realized PnL.
func (a *Account) Credit(amount decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance = a.balance.Add(amount)
}

// Balance returns the current balance.
func (a *Account) Balance() decimal.Decimal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.balance
}
