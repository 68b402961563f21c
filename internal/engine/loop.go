package engine

import (
	"context"
	"sync/atomic"
	"time"
)

// Loop drives the engine: one tick per interval across all tracked
// symbols. Ticks never overlap — the next one is not scheduled until the
// previous one, including all symbol iterations, has returned.
//
// The run/stop toggle is checked only between ticks; an in-flight order
// submission is never interrupted.
type Loop struct {
	engine   *Engine
	symbols  []string
	interval time.Duration
	running  atomic.Bool
}

// NewLoop creates a loop in the stopped state.
func NewLoop(engine *Engine, symbols []string, interval time.Duration) *Loop {
	return &Loop{
		engine:   engine,
		symbols:  symbols,
		interval: interval,
	}
}

// Start enables ticking.
func (l *Loop) Start() {
	l.running.Store(true)
	l.engine.health.SetRunning(true)
	l.engine.events.Publish(LevelInfo, "loop started (%d symbols, every %s)", len(l.symbols), l.interval)
}

// Stop disables ticking after the current tick, if any, completes.
func (l *Loop) Stop() {
	l.running.Store(false)
	l.engine.health.SetRunning(false)
	l.engine.events.Publish(LevelInfo, "loop stopped")
}

// Running reports whether the loop is ticking.
func (l *Loop) Running() bool { return l.running.Load() }

// Run blocks until ctx is cancelled, executing one tick per interval while
// the loop is started. The idle sleep between ticks is the only
// backpressure mechanism.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		if l.running.Load() {
			l.engine.RunTick(ctx, l.symbols)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
