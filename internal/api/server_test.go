package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sniperbot/internal/engine"
	"sniperbot/internal/model"
)

const testSecret = "JBSWY3DPEHPK3PXP"

type noopSource struct{}

func (noopSource) FetchCandles(context.Context, string, string, int) ([]model.Candle, error) {
	return nil, nil
}

type noopExec struct{}

func (noopExec) OpenPosition(context.Context, string, float64, float64) (model.Fill, error) {
	return model.Fill{}, nil
}

func (noopExec) ClosePosition(context.Context, model.Position, float64) (model.Fill, error) {
	return model.Fill{}, nil
}

type noopEval struct{}

func (noopEval) Evaluate([]model.EnrichedCandle) (model.Decision, error) {
	return model.Decision{}, nil
}

func (noopEval) CheckExit(model.Position, float64) (model.ExitReason, float64, bool) {
	return "", 0, false
}

func newTestServer(totpSecret string) (*Server, *engine.Loop) {
	eng := engine.New(
		engine.Config{Mode: model.ModeSimulated, Window: 300, Notional: 15},
		noopSource{}, noopExec{}, noopEval{},
		engine.Options{},
	)
	loop := engine.NewLoop(eng, []string{"BTC/USDT"}, time.Minute)
	return NewServer(":0", totpSecret, eng, loop, slog.Default()), loop
}

func TestHealthReportsRunState(t *testing.T) {
	s, loop := newTestServer("")

	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["running"])

	loop.Start()
	rec = httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["running"])
}

func TestControlRequiresPost(t *testing.T) {
	s, _ := newTestServer("")

	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/control/start", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestControlTOTPGuard(t *testing.T) {
	s, loop := newTestServer(testSecret)

	// No code
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/control/start", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, loop.Running())

	// Wrong code
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/control/start", nil)
	req.Header.Set("X-TOTP-Code", "000000")
	s.srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid code
	code, err := totp.GenerateCode(testSecret, time.Now())
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/control/start", nil)
	req.Header.Set("X-TOTP-Code", code)
	s.srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, loop.Running())

	// And stop again
	code, err = totp.GenerateCode(testSecret, time.Now())
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/control/stop", nil)
	req.Header.Set("X-TOTP-Code", code)
	s.srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, loop.Running())
}

func TestSnapshotEndpointsServeJSON(t *testing.T) {
	s, _ := newTestServer("")

	for _, path := range []string{"/api/v1/balance", "/api/v1/positions", "/api/v1/trades", "/api/v1/events"} {
		rec := httptest.NewRecorder()
		s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"), path)
	}
}
