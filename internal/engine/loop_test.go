package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sniperbot/internal/model"
)

func TestLoopStartStop(t *testing.T) {
	eng := newTestEngine(&stubSource{}, &stubExec{}, &stubEval{})
	loop := NewLoop(eng, []string{"BTC/USDT"}, time.Minute)

	assert.False(t, loop.Running(), "a new loop starts stopped")
	loop.Start()
	assert.True(t, loop.Running())
	loop.Stop()
	assert.False(t, loop.Running())
}

func TestLoopStoppedStateSkipsTicks(t *testing.T) {
	src := &stubSource{candles: map[string][]model.Candle{"BTC/USDT": testCandles(40)}}
	eng := newTestEngine(src, &stubExec{}, &stubEval{})
	loop := NewLoop(eng, []string{"BTC/USDT"}, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	loop.Run(ctx)

	assert.Zero(t, src.calls, "stopped loop must not poll")
}

func TestLoopRunTicksUntilCancel(t *testing.T) {
	src := &stubSource{candles: map[string][]model.Candle{"BTC/USDT": testCandles(40)}}
	eng := newTestEngine(src, &stubExec{}, &stubEval{})
	loop := NewLoop(eng, []string{"BTC/USDT"}, 5*time.Millisecond)
	loop.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.Greater(t, src.calls, 1, "loop should have ticked more than once")
}
