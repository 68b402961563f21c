package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"sniperbot/config"
	"sniperbot/internal/api"
	"sniperbot/internal/engine"
	"sniperbot/internal/exchange/binance"
	"sniperbot/internal/execution"
	"sniperbot/internal/logger"
	"sniperbot/internal/metrics"
	"sniperbot/internal/model"
	"sniperbot/internal/notification"
	"sniperbot/internal/portfolio"
	redisstore "sniperbot/internal/store/redis"
	"sniperbot/internal/strategy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.Init("sniperbot", slog.LevelInfo, cfg.LogFile)
	log.Info("starting sniperbot",
		"mode", cfg.Mode,
		"symbols", cfg.Symbols,
		"timeframe", cfg.Timeframe,
		"poll_interval_s", cfg.PollIntervalS)

	client := binance.New(cfg.BinanceAPIKey, cfg.BinanceAPISecret, cfg.BinanceBaseURL)

	var (
		account *portfolio.Account
		exec    model.OrderExecutor
	)
	if cfg.Mode == "live" {
		exec = execution.NewLive(client)
	} else {
		account = portfolio.NewAccount(decimal.NewFromFloat(cfg.StartBalance))
		exec = execution.NewSimulated(account)
	}

	journal, err := execution.NewJournal(cfg.SQLitePath)
	if err != nil {
		log.Error("trade journal unavailable", "path", cfg.SQLitePath, "error", err)
		os.Exit(1)
	}
	defer journal.Close()

	var notifier notification.Notifier
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		notifier = notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		log.Info("telegram notifications enabled")
	} else {
		notifier = notification.NewLogNotifier(log)
	}

	var publisher engine.StatePublisher
	if cfg.RedisAddr != "" {
		pub, err := redisstore.NewPublisher(redisstore.PublisherConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Error("redis unavailable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		publisher = pub
		log.Info("redis state publishing enabled", "addr", cfg.RedisAddr)
	}

	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus(cfg.Mode, cfg.Symbols)

	eng := engine.New(
		engine.Config{
			Mode:      model.Mode(cfg.Mode),
			Timeframe: cfg.Timeframe,
			Window:    cfg.CandleWindow,
			Notional:  cfg.TradeNotional,
		},
		client,
		exec,
		strategy.NewEvaluator(cfg.StopATRMult, cfg.TakeProfitATRMult),
		engine.Options{
			Account:   account,
			Journal:   journal,
			Notifier:  notifier,
			Publisher: publisher,
			Metrics:   prom,
			Health:    health,
			Logger:    log,
		},
	)

	loop := engine.NewLoop(eng, cfg.Symbols, time.Duration(cfg.PollIntervalS)*time.Second)
	if cfg.AutoStart {
		loop.Start()
	}

	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	apiSrv := api.NewServer(cfg.ListenAddr, cfg.TOTPSecret, eng, loop, log)
	apiSrv.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loop.Run(ctx)

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	apiSrv.Stop(shutdownCtx)
	metricsSrv.Stop(shutdownCtx)
	log.Info("sniperbot stopped")
}
