// Command backtest replays historical candles from a CSV file through the
// full evaluation and position lifecycle, using the simulated executor.
//
// The CSV columns are: open_time, open, high, low, close, volume. The open
// time is either epoch milliseconds or RFC 3339. A header row is skipped
// automatically.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"sniperbot/internal/engine"
	"sniperbot/internal/execution"
	"sniperbot/internal/indicator"
	"sniperbot/internal/logger"
	"sniperbot/internal/model"
	"sniperbot/internal/portfolio"
	"sniperbot/internal/strategy"
)

// replaySource serves a sliding window over pre-loaded candles, advancing
// one candle per tick.
type replaySource struct {
	candles []model.Candle
	cursor  int
}

func (r *replaySource) FetchCandles(_ context.Context, _ string, _ string, limit int) ([]model.Candle, error) {
	start := r.cursor - limit
	if start < 0 {
		start = 0
	}
	return r.candles[start:r.cursor], nil
}

func main() {
	var (
		csvPath  = flag.String("csv", "", "path to candle CSV file (required)")
		symbol   = flag.String("symbol", "BTC/USDT", "symbol label for the replayed data")
		window   = flag.Int("window", 300, "candles visible to the engine per tick")
		notional = flag.Float64("notional", 15.0, "quote notional per entry")
		balance  = flag.Float64("balance", 1000.0, "starting simulated balance")
		stopMult = flag.Float64("stop", strategy.DefaultStopMult, "stop-loss ATR multiplier")
		tpMult   = flag.Float64("tp", strategy.DefaultTPMult, "take-profit ATR multiplier")
	)
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	log := logger.Init("backtest", slog.LevelWarn, "")

	candles, err := loadCandles(*csvPath, *symbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backtest: %v\n", err)
		os.Exit(1)
	}
	if len(candles) < indicator.MinHistory {
		fmt.Fprintf(os.Stderr, "backtest: only %d candles, need at least %d\n", len(candles), indicator.MinHistory)
		os.Exit(1)
	}

	account := portfolio.NewAccount(decimal.NewFromFloat(*balance))
	source := &replaySource{candles: candles}

	eng := engine.New(
		engine.Config{
			Mode:     model.ModeSimulated,
			Window:   *window,
			Notional: *notional,
		},
		source,
		execution.NewSimulated(account),
		strategy.NewEvaluator(*stopMult, *tpMult),
		engine.Options{Account: account, Logger: log},
	)

	ctx := context.Background()
	symbols := []string{*symbol}
	for source.cursor = indicator.MinHistory; source.cursor <= len(candles); source.cursor++ {
		eng.RunTick(ctx, symbols)
	}

	trades := eng.Trades()
	wins := 0
	for _, t := range trades {
		if t.RealizedPnL > 0 {
			wins++
		}
	}

	fmt.Printf("candles replayed:  %d\n", len(candles))
	fmt.Printf("trades closed:     %d\n", len(trades))
	if len(trades) > 0 {
		fmt.Printf("win rate:          %.1f%%\n", 100*float64(wins)/float64(len(trades)))
	}
	fmt.Printf("realized pnl:      %.4f\n", eng.TotalRealizedPnL())
	fmt.Printf("final balance:     %s\n", account.Balance().StringFixed(4))
	if open := eng.Positions(); len(open) > 0 {
		fmt.Printf("still open:        %d position(s)\n", len(open))
	}
}

func loadCandles(path, symbol string) ([]model.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 6

	var candles []model.Candle
	for line := 1; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		openTime, err := parseTime(rec[0])
		if err != nil {
			if line == 1 {
				continue // header row
			}
			return nil, fmt.Errorf("%s:%d: bad open_time %q", path, line, rec[0])
		}
		vals := make([]float64, 5)
		for i := 1; i < 6; i++ {
			if vals[i-1], err = strconv.ParseFloat(rec[i], 64); err != nil {
				return nil, fmt.Errorf("%s:%d: bad value %q", path, line, rec[i])
			}
		}
		candles = append(candles, model.Candle{
			Symbol:   symbol,
			OpenTime: openTime,
			Open:     vals[0],
			High:     vals[1],
			Low:      vals[2],
			Close:    vals[3],
			Volume:   vals[4],
		})
	}
	return candles, nil
}

func parseTime(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Parse(time.RFC3339, s)
}
