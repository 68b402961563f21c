// Package api exposes the engine's read-only snapshots to the presentation
// layer over HTTP/WebSocket, plus a TOTP-guarded control surface for the
// run/stop toggle.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"

	"sniperbot/internal/engine"
)

// Server serves the status and control API.
type Server struct {
	eng        *engine.Engine
	loop       *engine.Loop
	totpSecret string
	log        *slog.Logger
	srv        *http.Server
}

// NewServer creates the API server. When totpSecret is non-empty, mutating
// control endpoints require a valid X-TOTP-Code header — a cheap second
// factor in front of anything that can start live trading.
func NewServer(addr, totpSecret string, eng *engine.Engine, loop *engine.Loop, log *slog.Logger) *Server {
	s := &Server{
		eng:        eng,
		loop:       loop,
		totpSecret: totpSecret,
		log:        log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", s.handleHealth)
	mux.HandleFunc("/api/v1/balance", s.handleBalance)
	mux.HandleFunc("/api/v1/positions", s.handlePositions)
	mux.HandleFunc("/api/v1/trades", s.handleTrades)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/stream", s.handleStream)
	mux.HandleFunc("/api/v1/control/start", s.guarded(s.handleStart))
	mux.HandleFunc("/api/v1/control/stop", s.guarded(s.handleStop))

	s.srv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.log.Info("api server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			s.log.Error("api server error", "err", err)
		}
	}()
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":  "ok",
		"running": s.loop.Running(),
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"balance":      s.eng.Balance().String(),
		"realized_pnl": s.eng.TotalRealizedPnL(),
	})
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.eng.Positions())
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.eng.Trades())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.eng.Events())
}

// guarded wraps a mutating handler with method and TOTP checks.
func (s *Server) guarded(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.totpSecret != "" {
			code := r.Header.Get("X-TOTP-Code")
			if !totp.Validate(code, s.totpSecret) {
				s.log.Warn("control request rejected, bad TOTP code", "path", r.URL.Path)
				http.Error(w, "invalid TOTP code", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.loop.Start()
	writeJSON(w, map[string]any{"running": true})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.loop.Stop()
	writeJSON(w, map[string]any{"running": false})
}
