package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"trading-gateway/internal/config"
	"trading-gateway/internal/core"
)

type AuthType int

const (
	AuthNone AuthType = iota
	AuthSigned
)

// Client is a session-scoped handle over the Binance spot REST API. It holds
// no mutable state beyond the credential pair, so a fresh client per request
// is cheap.
type Client struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	recvWindow time.Duration
	httpClient *http.Client
}

type Options struct {
	APIKey         string
	APISecret      string
	RestBaseURL    string
	RecvWindowMs   int64
	HTTPTimeoutSec int64
}

func NewClient(cfg config.ExchangeConfig) (*Client, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, core.ErrMissingCredentials
	}
	return NewClientWithOptions(Options{
		APIKey:         cfg.APIKey,
		APISecret:      cfg.APISecret,
		RestBaseURL:    cfg.RestBaseURL,
		RecvWindowMs:   cfg.RecvWindowMs,
		HTTPTimeoutSec: cfg.HTTPTimeoutSec,
	}), nil
}

func NewClientWithOptions(opts Options) *Client {
	timeout := 15 * time.Second
	if opts.HTTPTimeoutSec > 0 {
		timeout = time.Duration(opts.HTTPTimeoutSec) * time.Second
	}
	recvWindow := time.Duration(opts.RecvWindowMs) * time.Millisecond
	return &Client{
		apiKey:     opts.APIKey,
		apiSecret:  opts.APISecret,
		baseURL:    strings.TrimRight(opts.RestBaseURL, "/"),
		recvWindow: recvWindow,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Connect builds a client and runs the liveness probe. An exchange-side error
// envelope on the probe is logged and the client is still returned; a
// transport failure fails the connect.
func Connect(ctx context.Context, cfg config.ExchangeConfig) (*Client, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx); err != nil {
		if apiErr, ok := AsAPIError(err); ok {
			log.Printf("level=WARN event=liveness_probe_failed code=%d msg=%q", apiErr.Code, apiErr.Msg)
			return client, nil
		}
		return nil, &core.ConnectError{Err: err}
	}
	return client, nil
}

func (c *Client) Name() string { return "binance" }

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/api/v3/ping", url.Values{}, AuthNone)
	return err
}

func (c *Client) Account(ctx context.Context) (core.Account, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/v3/account", url.Values{}, AuthSigned)
	if err != nil {
		return core.Account{}, err
	}
	var resp accountResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return core.Account{}, err
	}
	account := core.Account{Balances: make([]core.AssetBalance, 0, len(resp.Balances))}
	for _, b := range resp.Balances {
		free, _ := decimal.NewFromString(b.Free)
		locked, _ := decimal.NewFromString(b.Locked)
		account.Balances = append(account.Balances, core.AssetBalance{
			Asset:  b.Asset,
			Free:   free,
			Locked: locked,
		})
	}
	return account, nil
}

func (c *Client) TickerPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	body, err := c.doRequest(ctx, http.MethodGet, "/api/v3/ticker/price", params, AuthNone)
	if err != nil {
		return decimal.Zero, err
	}
	var resp tickerPriceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return decimal.Zero, err
	}
	price, err := decimal.NewFromString(resp.Price)
	if err != nil {
		return decimal.Zero, err
	}
	return price, nil
}

func (c *Client) Stats24h(ctx context.Context, symbol string) (core.Stats24h, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	body, err := c.doRequest(ctx, http.MethodGet, "/api/v3/ticker/24hr", params, AuthNone)
	if err != nil {
		return core.Stats24h{}, err
	}
	var resp ticker24hResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return core.Stats24h{}, err
	}
	changePct, _ := decimal.NewFromString(resp.PriceChangePercent)
	volume, _ := decimal.NewFromString(resp.Volume)
	high, _ := decimal.NewFromString(resp.HighPrice)
	low, _ := decimal.NewFromString(resp.LowPrice)
	return core.Stats24h{
		Symbol:             resp.Symbol,
		PriceChangePercent: changePct,
		Volume:             volume,
		High:               high,
		Low:                low,
	}, nil
}

func (c *Client) Klines(ctx context.Context, symbol, interval string, limit int) ([]core.Kline, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))
	body, err := c.doRequest(ctx, http.MethodGet, "/api/v3/klines", params, AuthNone)
	if err != nil {
		return nil, err
	}
	return parseKlines(body)
}

func (c *Client) MarketBuy(ctx context.Context, symbol, quantity string) (core.OrderAck, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", string(core.Buy))
	params.Set("type", string(core.Market))
	params.Set("quantity", quantity)
	return c.submitOrder(ctx, params)
}

func (c *Client) LimitBuy(ctx context.Context, symbol, quantity, price string) (core.OrderAck, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", string(core.Buy))
	params.Set("type", string(core.Limit))
	params.Set("quantity", quantity)
	params.Set("price", price)
	params.Set("timeInForce", "GTC")
	return c.submitOrder(ctx, params)
}

func (c *Client) MarketSell(ctx context.Context, symbol, quantity string) (core.OrderAck, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", string(core.Sell))
	params.Set("type", string(core.Market))
	params.Set("quantity", quantity)
	return c.submitOrder(ctx, params)
}

func (c *Client) LimitSell(ctx context.Context, symbol, quantity, price string) (core.OrderAck, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", string(core.Sell))
	params.Set("type", string(core.Limit))
	params.Set("quantity", quantity)
	params.Set("price", price)
	params.Set("timeInForce", "GTC")
	return c.submitOrder(ctx, params)
}

func (c *Client) submitOrder(ctx context.Context, params url.Values) (core.OrderAck, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/api/v3/order", params, AuthSigned)
	if err != nil {
		return core.OrderAck{}, err
	}
	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return core.OrderAck{}, err
	}
	executedQty, _ := decimal.NewFromString(resp.ExecutedQty)
	return core.OrderAck{
		ID:           strconv.FormatInt(resp.OrderID, 10),
		Symbol:       resp.Symbol,
		Status:       core.OrderStatus(resp.Status),
		ExecutedQty:  executedQty,
		Price:        resp.Price,
		TransactTime: time.UnixMilli(resp.TransactTime),
	}, nil
}

func (c *Client) CancelOrder(ctx context.Context, symbol, orderID string) (core.CancelAck, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("orderId", orderID)
	body, err := c.doRequest(ctx, http.MethodDelete, "/api/v3/order", params, AuthSigned)
	if err != nil {
		return core.CancelAck{}, err
	}
	var resp cancelOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return core.CancelAck{}, err
	}
	return core.CancelAck{
		ID:     strconv.FormatInt(resp.OrderID, 10),
		Symbol: resp.Symbol,
		Status: core.OrderStatus(resp.Status),
	}, nil
}

func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]core.OpenOrder, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	body, err := c.doRequest(ctx, http.MethodGet, "/api/v3/openOrders", params, AuthSigned)
	if err != nil {
		return nil, err
	}
	var resp []openOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	orders := make([]core.OpenOrder, 0, len(resp))
	for _, ord := range resp {
		price, _ := decimal.NewFromString(ord.Price)
		origQty, _ := decimal.NewFromString(ord.OrigQty)
		orders = append(orders, core.OpenOrder{
			ID:      strconv.FormatInt(ord.OrderID, 10),
			Symbol:  ord.Symbol,
			Side:    core.Side(ord.Side),
			Type:    core.OrderType(ord.Type),
			OrigQty: origQty,
			Price:   price,
			Status:  core.OrderStatus(ord.Status),
			Time:    time.UnixMilli(ord.Time),
		})
	}
	return orders, nil
}

func (c *Client) MyTrades(ctx context.Context, symbol string, limit int) ([]core.Fill, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("limit", strconv.Itoa(limit))
	body, err := c.doRequest(ctx, http.MethodGet, "/api/v3/myTrades", params, AuthSigned)
	if err != nil {
		return nil, err
	}
	var resp []myTradeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	fills := make([]core.Fill, 0, len(resp))
	for _, tr := range resp {
		price, _ := decimal.NewFromString(tr.Price)
		qty, _ := decimal.NewFromString(tr.Qty)
		fills = append(fills, core.Fill{
			ID:      strconv.FormatInt(tr.ID, 10),
			Symbol:  tr.Symbol,
			IsBuyer: tr.IsBuyer,
			Qty:     qty,
			Price:   price,
			Time:    time.UnixMilli(tr.Time),
		})
	}
	return fills, nil
}

func (c *Client) ExchangeInfo(ctx context.Context) (core.ExchangeInfo, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/v3/exchangeInfo", url.Values{}, AuthNone)
	if err != nil {
		return core.ExchangeInfo{}, err
	}
	var resp exchangeInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return core.ExchangeInfo{}, err
	}
	info := core.ExchangeInfo{
		Timezone:   resp.Timezone,
		ServerTime: time.UnixMilli(resp.ServerTime),
		Symbols:    make([]core.SymbolInfo, 0, len(resp.Symbols)),
	}
	for _, s := range resp.Symbols {
		info.Symbols = append(info.Symbols, core.SymbolInfo{
			Symbol:     s.Symbol,
			Status:     s.Status,
			BaseAsset:  s.BaseAsset,
			QuoteAsset: s.QuoteAsset,
		})
	}
	return info, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, auth AuthType) ([]byte, error) {
	payload := params.Encode()
	if auth == AuthSigned {
		params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
		if c.recvWindow > 0 {
			params.Set("recvWindow", strconv.FormatInt(c.recvWindow.Milliseconds(), 10))
		}
		payload = params.Encode()
		payload += "&signature=" + sign(c.apiSecret, payload)
	}
	var (
		req *http.Request
		err error
	)
	urlStr := c.baseURL + path
	if method == http.MethodGet || method == http.MethodDelete {
		if payload != "" {
			urlStr += "?" + payload
		}
		req, err = http.NewRequestWithContext(ctx, method, urlStr, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, urlStr, strings.NewReader(payload))
	}
	if err != nil {
		return nil, err
	}
	if method != http.MethodGet && method != http.MethodDelete {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if auth == AuthSigned {
		req.Header.Set("X-MBX-APIKEY", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		return nil, parseAPIError(resp.StatusCode, body)
	}
	return body, nil
}

func parseAPIError(status int, body []byte) error {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Msg != "" {
		return wrapAPIError(apiErr.Code, apiErr.Msg)
	}
	return fmt.Errorf("binance http error %d: %s", status, strings.TrimSpace(string(body)))
}

func sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
