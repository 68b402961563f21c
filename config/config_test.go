package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Symbols) != 1 || cfg.Symbols[0] != "BTC/USDT" {
		t.Fatalf("Symbols = %v", cfg.Symbols)
	}
	if cfg.Timeframe != "15m" || cfg.Mode != "simulated" {
		t.Fatalf("defaults: timeframe=%s mode=%s", cfg.Timeframe, cfg.Mode)
	}
	if cfg.CandleWindow != 300 || cfg.PollIntervalS != 60 {
		t.Fatalf("defaults: window=%d poll=%d", cfg.CandleWindow, cfg.PollIntervalS)
	}
	if cfg.StopATRMult != 2.0 || cfg.TakeProfitATRMult != 3.5 {
		t.Fatalf("defaults: stop=%v tp=%v", cfg.StopATRMult, cfg.TakeProfitATRMult)
	}
	if !cfg.AutoStart {
		t.Fatal("AutoStart should default to true")
	}
}

func TestLoadParsesSymbolList(t *testing.T) {
	t.Setenv("SYMBOLS", " BTC/USDT, ETH/USDT ,SOL/USDT ")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"BTC/USDT", "ETH/USDT", "SOL/USDT"}
	if len(cfg.Symbols) != len(want) {
		t.Fatalf("Symbols = %v", cfg.Symbols)
	}
	for i, s := range want {
		if cfg.Symbols[i] != s {
			t.Fatalf("Symbols[%d] = %q, want %q", i, cfg.Symbols[i], s)
		}
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"window below evaluation minimum", "CANDLE_WINDOW", "34"},
		{"window not a number", "CANDLE_WINDOW", "lots"},
		{"negative stop multiplier", "STOP_ATR_MULT", "-1"},
		{"zero take-profit multiplier", "TP_ATR_MULT", "0"},
		{"zero notional", "TRADE_NOTIONAL", "0"},
		{"unknown mode", "MODE", "dryrun"},
		{"zero poll interval", "POLL_INTERVAL_S", "0"},
		{"negative balance", "START_BALANCE", "-5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%s accepted, want error", tt.key, tt.val)
			}
		})
	}
}

func TestLoadLiveModeRequiresKeys(t *testing.T) {
	t.Setenv("MODE", "live")
	if _, err := Load(); err == nil {
		t.Fatal("live mode without keys accepted")
	}

	t.Setenv("BINANCE_API_KEY", "k")
	t.Setenv("BINANCE_API_SECRET", "s")
	if _, err := Load(); err != nil {
		t.Fatalf("live mode with keys rejected: %v", err)
	}
}
