package strategy

import (
	"errors"
	"math"
	"testing"
	"time"

	"sniperbot/internal/indicator"
	"sniperbot/internal/model"
)

// window builds an enriched window of 40 candles where only the two
// decision indices (N−2 and N−3) carry meaningful values.
func window(last, prev model.EnrichedCandle) []model.EnrichedCandle {
	out := make([]model.EnrichedCandle, 40)
	out[len(out)-2] = last
	out[len(out)-3] = prev
	return out
}

func TestEvaluateEntryRule(t *testing.T) {
	candleTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	base := model.EnrichedCandle{
		Candle: model.Candle{Symbol: "BTC/USDT", OpenTime: candleTime, Close: 100},
		EMA200: 90, RSI14: 45, ATR14: 2,
		MACD: 1, MACDSignal: 0.5,
	}
	crossed := model.EnrichedCandle{MACD: -1, MACDSignal: 0}

	tests := []struct {
		name      string
		mutate    func(last, prev *model.EnrichedCandle)
		wantEnter bool
	}{
		{"all conditions met", func(_, _ *model.EnrichedCandle) {}, true},
		{"close below trend", func(l, _ *model.EnrichedCandle) { l.EMA200 = 110 }, false},
		{"rsi at lower bound", func(l, _ *model.EnrichedCandle) { l.RSI14 = 35 }, false},
		{"rsi at upper bound", func(l, _ *model.EnrichedCandle) { l.RSI14 = 55 }, false},
		{"rsi just inside band", func(l, _ *model.EnrichedCandle) { l.RSI14 = 35.01 }, true},
		{"macd already above", func(_, p *model.EnrichedCandle) { p.MACD = 0.5; p.MACDSignal = 0.1 }, false},
		{"macd touches but does not cross", func(l, _ *model.EnrichedCandle) { l.MACD = 0.5 }, false},
		{"trend still warming up", func(l, _ *model.EnrichedCandle) { l.EMA200 = math.NaN() }, false},
		{"rsi still warming up", func(l, _ *model.EnrichedCandle) { l.RSI14 = math.NaN() }, false},
		{"signal still warming up", func(l, p *model.EnrichedCandle) {
			l.MACDSignal = math.NaN()
			p.MACDSignal = math.NaN()
		}, false},
	}

	eval := NewEvaluator(DefaultStopMult, DefaultTPMult)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			last, prev := base, crossed
			tt.mutate(&last, &prev)

			d, err := eval.Evaluate(window(last, prev))
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if d.ShouldEnter != tt.wantEnter {
				t.Fatalf("ShouldEnter = %v, want %v", d.ShouldEnter, tt.wantEnter)
			}
			if d.Reference != last.Close {
				t.Fatalf("Reference = %v, want %v", d.Reference, last.Close)
			}
			if !d.CandleTime.Equal(last.OpenTime) {
				t.Fatalf("CandleTime = %v, want %v", d.CandleTime, last.OpenTime)
			}
		})
	}
}

func TestEvaluateLevels(t *testing.T) {
	candleTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	last := model.EnrichedCandle{
		Candle: model.Candle{OpenTime: candleTime, Close: 100},
		EMA200: 90, RSI14: 45, ATR14: 2,
		MACD: 1, MACDSignal: 0.5,
	}
	prev := model.EnrichedCandle{MACD: -1, MACDSignal: 0}

	d, err := NewEvaluator(2.0, 3.5).Evaluate(window(last, prev))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !d.ShouldEnter {
		t.Fatal("expected entry")
	}
	if d.StopLoss != 96 {
		t.Fatalf("StopLoss = %v, want 96", d.StopLoss)
	}
	if d.TakeProfit != 107 {
		t.Fatalf("TakeProfit = %v, want 107", d.TakeProfit)
	}
}

func TestEvaluateRejectsShortHistory(t *testing.T) {
	eval := NewEvaluator(DefaultStopMult, DefaultTPMult)
	_, err := eval.Evaluate(make([]model.EnrichedCandle, indicator.MinHistory-1))
	if !errors.Is(err, model.ErrInsufficientHistory) {
		t.Fatalf("err = %v, want ErrInsufficientHistory", err)
	}
}

func TestCheckExit(t *testing.T) {
	eval := NewEvaluator(DefaultStopMult, DefaultTPMult)
	pos := model.Position{Symbol: "BTC/USDT", EntryPrice: 100, Amount: 1, StopLoss: 96, TakeProfit: 107}

	tests := []struct {
		name       string
		price      float64
		wantHit    bool
		wantReason model.ExitReason
		wantPrice  float64
	}{
		{"inside the band", 100, false, "", 0},
		{"below stop", 95, true, model.ExitStopLoss, 96},
		{"exactly at stop", 96, true, model.ExitStopLoss, 96},
		{"above take-profit", 110, true, model.ExitTakeProfit, 107},
		{"exactly at take-profit", 107, true, model.ExitTakeProfit, 107},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, price, hit := eval.CheckExit(pos, tt.price)
			if hit != tt.wantHit {
				t.Fatalf("hit = %v, want %v", hit, tt.wantHit)
			}
			if reason != tt.wantReason || price != tt.wantPrice {
				t.Fatalf("got (%s, %v), want (%s, %v)", reason, price, tt.wantReason, tt.wantPrice)
			}
		})
	}
}

func TestCheckExitStopLossWinsWhenBothSatisfied(t *testing.T) {
	// Degenerate levels can only arise from gapped data; the conservative
	// side must win.
	eval := NewEvaluator(DefaultStopMult, DefaultTPMult)
	pos := model.Position{StopLoss: 100, TakeProfit: 90}

	reason, price, hit := eval.CheckExit(pos, 95)
	if !hit || reason != model.ExitStopLoss || price != 100 {
		t.Fatalf("got (%s, %v, %v), want stop-loss at 100", reason, price, hit)
	}
}
