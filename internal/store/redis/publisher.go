// Package redis exports engine state snapshots to Redis so external
// dashboards can render balance, positions and trades without touching the
// engine process.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"sniperbot/internal/model"
)

const (
	keyBalance   = "sniperbot:balance"
	keyPositions = "sniperbot:positions"
	keyTrades    = "sniperbot:trades"
	chanState    = "sniperbot:state"

	snapshotTTL = 30 * time.Minute
)

// PublisherConfig configures the Redis publisher.
type PublisherConfig struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
}

// Publisher writes latest-state keys and publishes change notifications.
type Publisher struct {
	client *goredis.Client
}

// NewPublisher connects to Redis and pings the server.
func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	slog.Info("redis publisher connected", "addr", cfg.Addr)
	return &Publisher{client: client}, nil
}

// PublishState writes the snapshot keys and notifies subscribers. Keys
// carry a TTL so a dead bot's state expires instead of lingering.
func (p *Publisher) PublishState(ctx context.Context, balance string, positions []model.Position, trades []model.Trade) error {
	posJSON, err := json.Marshal(positions)
	if err != nil {
		return fmt.Errorf("marshal positions: %w", err)
	}
	tradesJSON, err := json.Marshal(trades)
	if err != nil {
		return fmt.Errorf("marshal trades: %w", err)
	}

	pipe := p.client.Pipeline()
	pipe.Set(ctx, keyBalance, balance, snapshotTTL)
	pipe.Set(ctx, keyPositions, posJSON, snapshotTTL)
	pipe.Set(ctx, keyTrades, tradesJSON, snapshotTTL)
	pipe.Publish(ctx, chanState, time.Now().UTC().Format(time.RFC3339))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis publish state: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}
