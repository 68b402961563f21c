package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLogRingKeepsNewest(t *testing.T) {
	l := NewEventLog(4)
	for i := 0; i < 6; i++ {
		l.Publish(LevelInfo, "event %d", i)
	}

	snap := l.Snapshot()
	require.Len(t, snap, 4)
	for i, ev := range snap {
		assert.Equal(t, fmt.Sprintf("event %d", 5-i), ev.Message)
	}
}

func TestEventLogSnapshotBeforeFull(t *testing.T) {
	l := NewEventLog(8)
	l.Publish(LevelWarn, "first")
	l.Publish(LevelError, "second")

	snap := l.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "second", snap[0].Message)
	assert.Equal(t, LevelError, snap[0].Level)
	assert.Equal(t, "first", snap[1].Message)
}

func TestEventLogSubscribe(t *testing.T) {
	l := NewEventLog(8)
	ch, cancel := l.Subscribe()

	l.Publish(LevelInfo, "hello")
	select {
	case ev := <-ch:
		assert.Equal(t, "hello", ev.Message)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the event")
	}

	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("channel still open after cancel")
	}
	cancel() // second cancel is a no-op
}

func TestDedupGuard(t *testing.T) {
	g := newDedupGuard()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, g.seen("BTC/USDT", t0))
	g.mark("BTC/USDT", t0)
	assert.True(t, g.seen("BTC/USDT", t0))

	// Different candle or different symbol is fresh
	assert.False(t, g.seen("BTC/USDT", t0.Add(15*time.Minute)))
	assert.False(t, g.seen("ETH/USDT", t0))

	// Marking a newer candle releases the older one
	g.mark("BTC/USDT", t0.Add(15*time.Minute))
	assert.False(t, g.seen("BTC/USDT", t0))
}
