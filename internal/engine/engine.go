// Package engine ties the indicator pipeline, signal evaluation, position
// store, dedup guard, execution path and trade ledger together into the
// per-tick orchestration unit.
//
// One Engine owns the whole session state: positions, trades, the simulated
// account and the per-symbol dedup memory. Nothing here is persisted across
// process restarts; the SQLite journal is an audit sink only.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"sniperbot/internal/indicator"
	"sniperbot/internal/metrics"
	"sniperbot/internal/model"
	"sniperbot/internal/notification"
	"sniperbot/internal/portfolio"
)

// Evaluator is the strategy surface the engine depends on.
type Evaluator interface {
	Evaluate(enriched []model.EnrichedCandle) (model.Decision, error)
	CheckExit(pos model.Position, price float64) (model.ExitReason, float64, bool)
}

// TradeJournal persists closed trades for audit.
type TradeJournal interface {
	RecordTrade(t model.Trade) error
}

// StatePublisher exports read-only state snapshots after each tick (for
// external dashboards).
type StatePublisher interface {
	PublishState(ctx context.Context, balance string, positions []model.Position, trades []model.Trade) error
}

// Config holds the engine's per-session parameters.
type Config struct {
	Mode      model.Mode
	Timeframe string
	Window    int // candles fetched per poll, ≥35
	Notional  float64
}

// Options carries the optional collaborators. Any of them may be nil.
type Options struct {
	Account   *portfolio.Account // required in simulated mode
	Journal   TradeJournal
	Notifier  notification.Notifier
	Publisher StatePublisher
	Metrics   *metrics.Metrics
	Health    *metrics.HealthStatus
	Logger    *slog.Logger
}

// Engine evaluates signals and drives the position lifecycle for all
// tracked symbols, one tick at a time.
type Engine struct {
	cfg    Config
	source model.MarketDataSource
	exec   model.OrderExecutor
	eval   Evaluator

	store  *portfolio.Store
	ledger *portfolio.Ledger
	guard  *dedupGuard
	events *EventLog

	account   *portfolio.Account
	journal   TradeJournal
	notifier  notification.Notifier
	publisher StatePublisher
	prom      *metrics.Metrics
	health    *metrics.HealthStatus
	log       *slog.Logger
}

// New creates an Engine with empty session state.
func New(cfg Config, source model.MarketDataSource, exec model.OrderExecutor, eval Evaluator, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		cfg:       cfg,
		source:    source,
		exec:      exec,
		eval:      eval,
		store:     portfolio.NewStore(),
		ledger:    portfolio.NewLedger(),
		guard:     newDedupGuard(),
		events:    NewEventLog(256),
		account:   opts.Account,
		journal:   opts.Journal,
		notifier:  opts.Notifier,
		publisher: opts.Publisher,
		prom:      opts.Metrics,
		health:    opts.Health,
		log:       log,
	}
}

// RunTick processes one polling tick across all symbols, sequentially.
// Per-symbol failures are logged and isolated; they never abort the other
// symbols or the loop. Safe to call repeatedly at any cadence.
func (e *Engine) RunTick(ctx context.Context, symbols []string) {
	start := time.Now()
	for _, sym := range symbols {
		e.processSymbol(ctx, sym)
	}
	e.prom.ObserveTick(time.Since(start))
	e.prom.SetOpenPositions(e.store.Len())
	e.prom.SetRealizedPnL(e.ledger.TotalRealizedPnL())
	if e.account != nil {
		e.prom.SetBalance(e.account.Balance().InexactFloat64())
	}
	e.health.MarkTick()
	e.publishState(ctx)
}

func (e *Engine) processSymbol(ctx context.Context, sym string) {
	candles, err := e.source.FetchCandles(ctx, sym, e.cfg.Timeframe, e.cfg.Window)
	if err != nil {
		e.prom.IncFetchError()
		e.events.Publish(LevelError, "%s: candle fetch failed: %v", sym, err)
		e.log.Error("candle fetch failed", "symbol", sym, "err", err)
		return
	}
	if len(candles) < indicator.MinHistory {
		e.events.Publish(LevelWarn, "%s: only %d candles, need %d for evaluation",
			sym, len(candles), indicator.MinHistory)
		return
	}

	enriched := indicator.Enrich(candles)
	// The most recent candle may still be forming; its close is the
	// latest available price, good enough for exit monitoring.
	latest := enriched[len(enriched)-1].Close

	if pos, ok := e.store.Get(sym); ok {
		e.checkExit(ctx, pos, latest)
		// Whether the position survived or the close failed, there is
		// nothing to enter on this symbol during this tick.
		return
	}
	e.checkEntry(ctx, sym, enriched)
}

func (e *Engine) checkExit(ctx context.Context, pos model.Position, price float64) {
	reason, exitPrice, hit := e.eval.CheckExit(pos, price)
	if !hit {
		return
	}

	fill, err := e.exec.ClosePosition(ctx, pos, exitPrice)
	if err != nil {
		// The position stays in the store on purpose: a real exposure
		// must not disappear from tracking because an API call failed.
		// It remains open for manual reconciliation.
		e.prom.IncExecError("close")
		e.events.Publish(LevelError, "%s: close failed, position retained: %v", pos.Symbol, err)
		e.log.Error("close failed, position retained", "symbol", pos.Symbol, "err", err)
		e.notify(ctx, notification.AlertCritical, "close failed",
			fmt.Sprintf("%s close rejected, position retained: %v", pos.Symbol, err))
		return
	}

	e.store.Remove(pos.Symbol)

	trade := model.Trade{
		Symbol:     pos.Symbol,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exitPrice,
		Amount:     pos.Amount,
		ExitReason: reason,
		Mode:       e.cfg.Mode,
		OrderID:    fill.OrderID,
		ClosedAt:   fill.FilledAt,
	}
	if e.cfg.Mode == model.ModeSimulated {
		trade.RealizedPnL = (exitPrice - pos.EntryPrice) * pos.Amount
	} else {
		// Live fills settle on the exchange; no local PnL is computed.
		trade.ExitPrice = fill.Price
	}
	e.ledger.Append(trade)
	e.recordTrade(trade)

	e.prom.IncExit(string(reason))
	e.events.Publish(LevelInfo, "%s: closed %s at %.8g (pnl %.8g)",
		pos.Symbol, reason, trade.ExitPrice, trade.RealizedPnL)
	e.log.Info("position closed",
		"symbol", pos.Symbol, "reason", string(reason),
		"exit_price", trade.ExitPrice, "pnl", trade.RealizedPnL)
	e.notify(ctx, notification.AlertInfo, "position closed",
		fmt.Sprintf("%s %s at %.8g, pnl %.8g", pos.Symbol, reason, trade.ExitPrice, trade.RealizedPnL))
}

func (e *Engine) checkEntry(ctx context.Context, sym string, enriched []model.EnrichedCandle) {
	decision, err := e.eval.Evaluate(enriched)
	if err != nil {
		if errors.Is(err, model.ErrInsufficientHistory) {
			e.events.Publish(LevelWarn, "%s: %v", sym, err)
		} else {
			e.events.Publish(LevelError, "%s: evaluation failed: %v", sym, err)
		}
		return
	}
	if !decision.ShouldEnter {
		return
	}
	e.prom.IncSignal()

	if e.guard.seen(sym, decision.CandleTime) {
		e.prom.IncSuppressed()
		e.events.Publish(LevelInfo, "%s: signal persisting, already acted on candle %s",
			sym, decision.CandleTime.Format(time.RFC3339))
		return
	}

	fill, err := e.exec.OpenPosition(ctx, sym, e.cfg.Notional, decision.Reference)
	if err != nil {
		// Guard deliberately not marked: the signal stays eligible on
		// the next poll after a transient failure.
		e.prom.IncExecError("open")
		if errors.Is(err, model.ErrInsufficientBalance) {
			e.events.Publish(LevelWarn, "%s: entry blocked, insufficient balance", sym)
			e.log.Warn("entry blocked", "symbol", sym, "err", err)
		} else {
			e.events.Publish(LevelError, "%s: open failed: %v", sym, err)
			e.log.Error("open failed", "symbol", sym, "err", err)
			e.notify(ctx, notification.AlertWarning, "open failed",
				fmt.Sprintf("%s entry rejected: %v", sym, err))
		}
		return
	}

	// Position is built from the actual fill, not the requested values.
	pos := model.Position{
		Symbol:     sym,
		EntryPrice: fill.Price,
		Amount:     fill.Quantity,
		StopLoss:   decision.StopLoss,
		TakeProfit: decision.TakeProfit,
		OrderID:    fill.OrderID,
		OpenedAt:   fill.FilledAt,
	}
	if err := e.store.Open(pos); err != nil {
		e.events.Publish(LevelError, "%s: %v", sym, err)
		return
	}
	e.guard.mark(sym, decision.CandleTime)

	e.prom.IncEntry()
	e.events.Publish(LevelInfo, "%s: opened %.8g at %.8g (sl %.8g, tp %.8g)",
		sym, pos.Amount, pos.EntryPrice, pos.StopLoss, pos.TakeProfit)
	e.log.Info("position opened",
		"symbol", sym, "amount", pos.Amount, "entry_price", pos.EntryPrice,
		"stop_loss", pos.StopLoss, "take_profit", pos.TakeProfit, "order_id", pos.OrderID)
	e.notify(ctx, notification.AlertInfo, "position opened",
		fmt.Sprintf("%s %.8g at %.8g (sl %.8g, tp %.8g)",
			sym, pos.Amount, pos.EntryPrice, pos.StopLoss, pos.TakeProfit))
}

func (e *Engine) recordTrade(t model.Trade) {
	if e.journal == nil {
		return
	}
	if err := e.journal.RecordTrade(t); err != nil {
		e.events.Publish(LevelWarn, "%s: journal write failed: %v", t.Symbol, err)
		e.log.Warn("journal write failed", "symbol", t.Symbol, "err", err)
	}
}

func (e *Engine) notify(ctx context.Context, level notification.AlertLevel, title, msg string) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Send(ctx, notification.Alert{Level: level, Title: title, Message: msg}); err != nil {
		e.log.Warn("notification failed", "err", err)
	}
}

func (e *Engine) publishState(ctx context.Context) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.PublishState(ctx, e.Balance().String(), e.Positions(), e.Trades()); err != nil {
		e.log.Warn("state publish failed", "err", err)
	}
}

// ── Read-only snapshots for the presentation layer ──

// Balance returns the simulated account balance, or zero in live mode.
func (e *Engine) Balance() decimal.Decimal {
	if e.account == nil {
		return decimal.Zero
	}
	return e.account.Balance()
}

// Positions returns all open positions, ordered by symbol.
func (e *Engine) Positions() []model.Position {
	return e.store.Snapshot()
}

// Trades returns the trade history, most recent first.
func (e *Engine) Trades() []model.Trade {
	return e.ledger.Snapshot()
}

// TotalRealizedPnL returns the running realized PnL of simulated trades.
func (e *Engine) TotalRealizedPnL() float64 {
	return e.ledger.TotalRealizedPnL()
}

// Events returns the recent event log, most recent first.
func (e *Engine) Events() []Event {
	return e.events.Snapshot()
}

// SubscribeEvents returns a channel of future events and a cancel func.
func (e *Engine) SubscribeEvents() (<-chan Event, func()) {
	return e.events.Subscribe()
}
