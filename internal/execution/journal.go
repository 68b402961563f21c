package execution

import (
	"database/sql"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"sniperbot/internal/model"
)

// Journal persists closed trades to SQLite for audit and analysis. It is an
// append-only sink: engine state is never restored from it.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// NewJournal opens (or creates) a SQLite journal database.
func NewJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_sync=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS trades (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol       TEXT NOT NULL,
		entry_price  REAL NOT NULL,
		exit_price   REAL NOT NULL,
		amount       REAL NOT NULL,
		realized_pnl REAL NOT NULL,
		exit_reason  TEXT NOT NULL,
		mode         TEXT NOT NULL,
		order_id     TEXT,
		closed_at    DATETIME NOT NULL,
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	CREATE INDEX IF NOT EXISTS idx_trades_closed_at ON trades(closed_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("opened trade journal", "path", dbPath)
	return &Journal{db: db}, nil
}

// RecordTrade persists a closed trade.
func (j *Journal) RecordTrade(t model.Trade) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(
		`INSERT INTO trades (symbol, entry_price, exit_price, amount, realized_pnl, exit_reason, mode, order_id, closed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Symbol,
		t.EntryPrice,
		t.ExitPrice,
		t.Amount,
		t.RealizedPnL,
		string(t.ExitReason),
		string(t.Mode),
		t.OrderID,
		t.ClosedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// RecentTrades returns the last N recorded trades, newest first.
func (j *Journal) RecentTrades(limit int) ([]model.Trade, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(
		`SELECT symbol, entry_price, exit_price, amount, realized_pnl, exit_reason, mode, order_id, closed_at
		 FROM trades ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []model.Trade
	for rows.Next() {
		var t model.Trade
		var reason, mode, closedAt string
		if err := rows.Scan(&t.Symbol, &t.EntryPrice, &t.ExitPrice, &t.Amount,
			&t.RealizedPnL, &reason, &mode, &t.OrderID, &closedAt); err != nil {
			continue
		}
		t.ExitReason = model.ExitReason(reason)
		t.Mode = model.Mode(mode)
		if ts, err := time.Parse(time.RFC3339, closedAt); err == nil {
			t.ClosedAt = ts
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}
