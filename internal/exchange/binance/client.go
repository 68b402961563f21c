// Package binance implements the minimal Binance spot REST bindings the bot
// needs: kline history, lot-size metadata and signed market orders.
//
// Numeric fields arrive as strings; they are parsed through decimal.Decimal
// to avoid accumulating float parsing error before conversion.
package binance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"sniperbot/internal/model"
)

const defaultBaseURL = "https://api.binance.com"

// Client implements the http bindings for Binance spot.
type Client struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client

	mu    sync.Mutex
	steps map[string]decimal.Decimal // symbol → LOT_SIZE step, cached
}

// New returns a ready-to-use client. Keys may be empty for market-data-only
// usage; signed endpoints will then fail.
func New(apiKey, apiSecret, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		steps:      make(map[string]decimal.Decimal),
	}
}

// normalizeSymbol maps "BTC/USDT" to Binance's "BTCUSDT".
func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
}

// FetchCandles returns up to limit klines for symbol/timeframe, ascending
// by open time. The most recent candle may still be forming.
func (c *Client) FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]model.Candle, error) {
	q := url.Values{}
	q.Set("symbol", normalizeSymbol(symbol))
	q.Set("interval", timeframe)
	q.Set("limit", fmt.Sprint(limit))

	body, err := c.get(ctx, "/api/v3/klines", q)
	if err != nil {
		return nil, &model.MarketDataError{Symbol: symbol, Err: err}
	}

	// Each kline is a mixed array:
	// [openTime, open, high, low, close, volume, closeTime, ...]
	var raw [][]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &model.MarketDataError{Symbol: symbol, Err: fmt.Errorf("decode klines: %w", err)}
	}

	candles := make([]model.Candle, 0, len(raw))
	for _, k := range raw {
		if len(k) < 6 {
			return nil, &model.MarketDataError{Symbol: symbol, Err: errors.New("short kline row")}
		}
		var openMs int64
		if err := json.Unmarshal(k[0], &openMs); err != nil {
			return nil, &model.MarketDataError{Symbol: symbol, Err: fmt.Errorf("kline open time: %w", err)}
		}
		vals := make([]float64, 5)
		for i := 1; i <= 5; i++ {
			var s string
			if err := json.Unmarshal(k[i], &s); err != nil {
				return nil, &model.MarketDataError{Symbol: symbol, Err: fmt.Errorf("kline field %d: %w", i, err)}
			}
			d, err := decimal.NewFromString(s)
			if err != nil {
				return nil, &model.MarketDataError{Symbol: symbol, Err: fmt.Errorf("kline field %d: %w", i, err)}
			}
			vals[i-1] = d.InexactFloat64()
		}
		candles = append(candles, model.Candle{
			Symbol:   symbol,
			OpenTime: time.UnixMilli(openMs).UTC(),
			Open:     vals[0],
			High:     vals[1],
			Low:      vals[2],
			Close:    vals[3],
			Volume:   vals[4],
		})
	}
	return candles, nil
}

// RoundQuantity rounds qty down to the symbol's LOT_SIZE step. The step is
// fetched from exchangeInfo once per symbol and cached.
func (c *Client) RoundQuantity(ctx context.Context, symbol string, qty float64) (float64, error) {
	step, err := c.lotStep(ctx, symbol)
	if err != nil {
		return 0, err
	}
	if step.IsZero() {
		return qty, nil
	}
	d := decimal.NewFromFloat(qty)
	rounded := d.Div(step).Floor().Mul(step)
	if rounded.IsZero() {
		return 0, fmt.Errorf("quantity %v below lot step %v for %s", qty, step, symbol)
	}
	return rounded.InexactFloat64(), nil
}

// MarketBuy submits a market buy and returns the actual fill.
func (c *Client) MarketBuy(ctx context.Context, symbol string, qty float64) (model.Fill, error) {
	return c.marketOrder(ctx, symbol, "BUY", qty)
}

// MarketSell submits a market sell and returns the actual fill.
func (c *Client) MarketSell(ctx context.Context, symbol string, qty float64) (model.Fill, error) {
	return c.marketOrder(ctx, symbol, "SELL", qty)
}

type orderResponse struct {
	OrderID             int64  `json:"orderId"`
	Status              string `json:"status"`
	ExecutedQty         string `json:"executedQty"`
	CummulativeQuoteQty string `json:"cummulativeQuoteQty"`
	TransactTime        int64  `json:"transactTime"`
}

func (c *Client) marketOrder(ctx context.Context, symbol, side string, qty float64) (model.Fill, error) {
	params := url.Values{}
	params.Set("symbol", normalizeSymbol(symbol))
	params.Set("side", side)
	params.Set("type", "MARKET")
	params.Set("quantity", decimal.NewFromFloat(qty).String())
	params.Set("timestamp", fmt.Sprint(time.Now().UnixMilli()))
	params.Set("signature", sign(c.apiSecret, params.Encode()))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v3/order", strings.NewReader(params.Encode()))
	if err != nil {
		return model.Fill{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-MBX-APIKEY", c.apiKey)

	body, err := c.do(req)
	if err != nil {
		return model.Fill{}, err
	}

	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.Fill{}, fmt.Errorf("decode order response: %w", err)
	}

	executed, err := decimal.NewFromString(resp.ExecutedQty)
	if err != nil || executed.IsZero() {
		return model.Fill{}, fmt.Errorf("order %d: nothing executed (status %s)", resp.OrderID, resp.Status)
	}
	quote, err := decimal.NewFromString(resp.CummulativeQuoteQty)
	if err != nil {
		return model.Fill{}, fmt.Errorf("order %d: bad quote qty: %w", resp.OrderID, err)
	}

	return model.Fill{
		OrderID:  fmt.Sprint(resp.OrderID),
		Price:    quote.Div(executed).InexactFloat64(),
		Quantity: executed.InexactFloat64(),
		FilledAt: time.UnixMilli(resp.TransactTime).UTC(),
	}, nil
}

type exchangeInfo struct {
	Symbols []struct {
		Symbol  string `json:"symbol"`
		Filters []struct {
			FilterType string `json:"filterType"`
			StepSize   string `json:"stepSize"`
		} `json:"filters"`
	} `json:"symbols"`
}

func (c *Client) lotStep(ctx context.Context, symbol string) (decimal.Decimal, error) {
	norm := normalizeSymbol(symbol)

	c.mu.Lock()
	step, ok := c.steps[norm]
	c.mu.Unlock()
	if ok {
		return step, nil
	}

	q := url.Values{}
	q.Set("symbol", norm)
	body, err := c.get(ctx, "/api/v3/exchangeInfo", q)
	if err != nil {
		return decimal.Zero, err
	}

	var info exchangeInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return decimal.Zero, fmt.Errorf("decode exchange info: %w", err)
	}
	for _, s := range info.Symbols {
		if s.Symbol != norm {
			continue
		}
		for _, f := range s.Filters {
			if f.FilterType != "LOT_SIZE" {
				continue
			}
			step, err := decimal.NewFromString(f.StepSize)
			if err != nil {
				return decimal.Zero, fmt.Errorf("bad step size %q: %w", f.StepSize, err)
			}
			c.mu.Lock()
			c.steps[norm] = step
			c.mu.Unlock()
			return step, nil
		}
	}
	return decimal.Zero, fmt.Errorf("no LOT_SIZE filter for %s", norm)
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		// Binance error payloads carry {"code":..,"msg":".."}
		var apiErr struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Msg != "" {
			return nil, fmt.Errorf("binance %d: %s (code %d)", resp.StatusCode, apiErr.Msg, apiErr.Code)
		}
		return nil, fmt.Errorf("binance %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
