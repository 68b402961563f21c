package engine

import (
	"fmt"
	"sync"
	"time"
)

// Level tags the severity of an event.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARNING"
	LevelError Level = "ERROR"
)

// Event is one entry of the bounded operator-visible event log.
type Event struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// EventLog keeps the most recent events in a fixed-size ring and fans new
// events out to subscribers (the WS stream). Slow subscribers drop events
// rather than block the loop.
type EventLog struct {
	mu      sync.Mutex
	buf     []Event
	idx     int // next write position
	count   int
	subs    map[int]chan Event
	nextSub int
}

// NewEventLog creates an event log keeping the last capacity events.
func NewEventLog(capacity int) *EventLog {
	if capacity < 1 {
		capacity = 1
	}
	return &EventLog{
		buf:  make([]Event, capacity),
		subs: make(map[int]chan Event),
	}
}

// Publish appends a formatted event and notifies subscribers.
func (l *EventLog) Publish(level Level, format string, args ...any) {
	ev := Event{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
		At:      time.Now().UTC(),
	}

	l.mu.Lock()
	l.buf[l.idx] = ev
	l.idx = (l.idx + 1) % len(l.buf)
	l.count++
	for _, ch := range l.subs {
		select {
		case ch <- ev:
		default:
			// subscriber lagging, drop
		}
	}
	l.mu.Unlock()
}

// Snapshot returns the retained events, most recent first.
func (l *EventLog) Snapshot() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.count
	if n > len(l.buf) {
		n = len(l.buf)
	}
	out := make([]Event, n)
	for i := 0; i < n; i++ {
		// idx-1 is the newest entry
		out[i] = l.buf[((l.idx-1-i)%len(l.buf)+len(l.buf))%len(l.buf)]
	}
	return out
}

// Subscribe returns a channel of future events and a cancel function.
func (l *EventLog) Subscribe() (<-chan Event, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextSub
	l.nextSub++
	ch := make(chan Event, 64)
	l.subs[id] = ch

	cancel := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if _, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}
