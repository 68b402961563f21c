// Package metrics exposes Prometheus metrics and a small /metrics +
// /healthz HTTP server for the bot.
package metrics

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the signal engine. All recording
// methods are nil-safe so tests can run without a registry.
type Metrics struct {
	TicksTotal        prometheus.Counter
	TickDur           prometheus.Histogram
	FetchErrors       prometheus.Counter
	SignalsTotal      prometheus.Counter
	SuppressedSignals prometheus.Counter
	EntriesTotal      prometheus.Counter
	ExitsTotal        *prometheus.CounterVec // labels: reason
	ExecErrors        *prometheus.CounterVec // labels: op
	OpenPositions     prometheus.Gauge
	Balance           prometheus.Gauge
	RealizedPnL       prometheus.Gauge
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sniperbot_ticks_total",
			Help: "Total polling ticks executed",
		}),
		TickDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sniperbot_tick_duration_seconds",
			Help:    "Wall time of one full tick across all symbols",
			Buckets: prometheus.DefBuckets,
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sniperbot_fetch_errors_total",
			Help: "Candle fetch failures (per symbol per tick)",
		}),
		SignalsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sniperbot_entry_signals_total",
			Help: "Entry signals produced by the evaluator",
		}),
		SuppressedSignals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sniperbot_suppressed_signals_total",
			Help: "Entry signals suppressed by the dedup guard",
		}),
		EntriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sniperbot_entries_total",
			Help: "Positions opened",
		}),
		ExitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sniperbot_exits_total",
			Help: "Positions closed (by exit reason)",
		}, []string{"reason"}),
		ExecErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sniperbot_execution_errors_total",
			Help: "Order placement failures (by op)",
		}, []string{"op"}),
		OpenPositions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sniperbot_open_positions",
			Help: "Currently open positions",
		}),
		Balance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sniperbot_balance",
			Help: "Simulated account balance (quote currency)",
		}),
		RealizedPnL: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sniperbot_realized_pnl",
			Help: "Running realized PnL of simulated trades",
		}),
	}

	prometheus.MustRegister(
		m.TicksTotal,
		m.TickDur,
		m.FetchErrors,
		m.SignalsTotal,
		m.SuppressedSignals,
		m.EntriesTotal,
		m.ExitsTotal,
		m.ExecErrors,
		m.OpenPositions,
		m.Balance,
		m.RealizedPnL,
	)

	return m
}

func (m *Metrics) ObserveTick(d time.Duration) {
	if m == nil {
		return
	}
	m.TicksTotal.Inc()
	m.TickDur.Observe(d.Seconds())
}

func (m *Metrics) IncFetchError() {
	if m == nil {
		return
	}
	m.FetchErrors.Inc()
}

func (m *Metrics) IncSignal() {
	if m == nil {
		return
	}
	m.SignalsTotal.Inc()
}

func (m *Metrics) IncSuppressed() {
	if m == nil {
		return
	}
	m.SuppressedSignals.Inc()
}

func (m *Metrics) IncEntry() {
	if m == nil {
		return
	}
	m.EntriesTotal.Inc()
}

func (m *Metrics) IncExit(reason string) {
	if m == nil {
		return
	}
	m.ExitsTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncExecError(op string) {
	if m == nil {
		return
	}
	m.ExecErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) SetOpenPositions(n int) {
	if m == nil {
		return
	}
	m.OpenPositions.Set(float64(n))
}

func (m *Metrics) SetBalance(v float64) {
	if m == nil {
		return
	}
	m.Balance.Set(v)
}

func (m *Metrics) SetRealizedPnL(v float64) {
	if m == nil {
		return
	}
	m.RealizedPnL.Set(v)
}

// HealthStatus tracks liveness of the polling loop for /healthz.
type HealthStatus struct {
	mu sync.RWMutex

	Mode       string    `json:"mode"`
	Symbols    []string  `json:"symbols"`
	Running    bool      `json:"running"`
	LastTickAt time.Time `json:"last_tick_at"`
	StartedAt  time.Time `json:"started_at"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus(mode string, symbols []string) *HealthStatus {
	return &HealthStatus{
		Mode:      mode,
		Symbols:   symbols,
		StartedAt: time.Now(),
	}
}

// MarkTick records a completed tick. Nil-safe.
func (h *HealthStatus) MarkTick() {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.LastTickAt = time.Now()
	h.mu.Unlock()
}

// SetRunning records the run/stop toggle state. Nil-safe.
func (h *HealthStatus) SetRunning(v bool) {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.Running = v
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	tickAge := ""
	if !h.LastTickAt.IsZero() {
		tickAge = time.Since(h.LastTickAt).Round(time.Millisecond).String()
	}

	status := struct {
		Status     string   `json:"status"`
		Mode       string   `json:"mode"`
		Symbols    []string `json:"symbols"`
		Running    bool     `json:"running"`
		Uptime     string   `json:"uptime"`
		LastTickAt string   `json:"last_tick_at"`
		TickAge    string   `json:"tick_age"`
	}{
		Status:     "ok",
		Mode:       h.Mode,
		Symbols:    h.Symbols,
		Running:    h.Running,
		Uptime:     time.Since(h.StartedAt).Round(time.Second).String(),
		LastTickAt: h.LastTickAt.Format(time.RFC3339),
		TickAge:    tickAge,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	srv *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", health)

	return &Server{
		srv: &http.Server{Addr: addr, Handler: mux},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		slog.Info("metrics server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("metrics server error", "err", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
