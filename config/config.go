// Package config loads and validates application configuration from
// environment variables. Invalid values are fatal at startup — they are
// reported, never silently clamped.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration.
type Config struct {
	// Strategy / engine
	Symbols           []string `validate:"min=1,dive,required"`
	Timeframe         string   `validate:"required"`
	CandleWindow      int      `validate:"gte=35"`
	StopATRMult       float64  `validate:"gt=0"`
	TakeProfitATRMult float64  `validate:"gt=0"`
	TradeNotional     float64  `validate:"gt=0"`
	Mode              string   `validate:"oneof=simulated live"`
	PollIntervalS     int      `validate:"gte=1"`
	StartBalance      float64  `validate:"gte=0"`
	AutoStart         bool

	// Binance credentials (required in live mode)
	BinanceAPIKey    string
	BinanceAPISecret string
	BinanceBaseURL   string

	// Control-plane TOTP secret; empty disables the guard
	TOTPSecret string

	// Infrastructure
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	MetricsAddr   string
	ListenAddr    string
	LogFile       string

	// Notifications
	TelegramBotToken string
	TelegramChatID   string
}

// Load reads configuration from environment variables with sensible
// defaults and validates it. Any parse or validation failure is returned
// as an error the caller treats as fatal.
func Load() (*Config, error) {
	cfg := &Config{
		Symbols:   splitList(getEnv("SYMBOLS", "BTC/USDT")),
		Timeframe: getEnv("TIMEFRAME", "15m"),
		Mode:      getEnv("MODE", "simulated"),
		AutoStart: getEnv("AUTO_START", "true") == "true",

		BinanceAPIKey:    os.Getenv("BINANCE_API_KEY"),
		BinanceAPISecret: os.Getenv("BINANCE_API_SECRET"),
		BinanceBaseURL:   os.Getenv("BINANCE_BASE_URL"),

		TOTPSecret: os.Getenv("TOTP_SECRET"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		SQLitePath:    getEnv("SQLITE_PATH", "data/trades.db"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		LogFile:       os.Getenv("LOG_FILE"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
	}

	var err error
	if cfg.CandleWindow, err = getEnvInt("CANDLE_WINDOW", 300); err != nil {
		return nil, err
	}
	if cfg.StopATRMult, err = getEnvFloat("STOP_ATR_MULT", 2.0); err != nil {
		return nil, err
	}
	if cfg.TakeProfitATRMult, err = getEnvFloat("TP_ATR_MULT", 3.5); err != nil {
		return nil, err
	}
	if cfg.TradeNotional, err = getEnvFloat("TRADE_NOTIONAL", 15.0); err != nil {
		return nil, err
	}
	if cfg.PollIntervalS, err = getEnvInt("POLL_INTERVAL_S", 60); err != nil {
		return nil, err
	}
	if cfg.StartBalance, err = getEnvFloat("START_BALANCE", 1000.0); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	if cfg.Mode == "live" && (cfg.BinanceAPIKey == "" || cfg.BinanceAPISecret == "") {
		return nil, fmt.Errorf("config validation: live mode requires BINANCE_API_KEY and BINANCE_API_SECRET")
	}
	return cfg, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer", key, v)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a number", key, v)
	}
	return f, nil
}
