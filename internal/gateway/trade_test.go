package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-gateway/internal/config"
	"trading-gateway/internal/core"
	"trading-gateway/internal/exchange"
)

func newTradeService(t *testing.T, ex *fakeExchange, maxNotional string) *Service {
	t.Helper()
	cfg := config.Config{}
	if maxNotional != "" {
		cfg.Trading.MaxOrderNotional = config.Decimal{Decimal: decimal.RequireFromString(maxNotional)}
	}
	return New(cfg, staticDial(ex), nil)
}

func TestTradeValidationRejectsBeforeDial(t *testing.T) {
	dialed := false
	svc := New(config.Config{}, func(ctx context.Context) (exchange.Exchange, error) {
		dialed = true
		return &fakeExchange{}, nil
	}, nil)

	cases := []struct {
		name  string
		req   TradeRequest
		field string
	}{
		{"empty symbol", TradeRequest{Side: "BUY", Type: "MARKET", Quantity: "1"}, "symbol"},
		{"bad side", TradeRequest{Symbol: "BTCUSDT", Side: "HOLD", Type: "MARKET", Quantity: "1"}, "side"},
		{"bad type", TradeRequest{Symbol: "BTCUSDT", Side: "BUY", Type: "STOP", Quantity: "1"}, "type"},
		{"zero quantity", TradeRequest{Symbol: "BTCUSDT", Side: "BUY", Type: "MARKET", Quantity: "0"}, "quantity"},
		{"non-numeric quantity", TradeRequest{Symbol: "BTCUSDT", Side: "BUY", Type: "MARKET", Quantity: "abc"}, "quantity"},
		{"limit without price", TradeRequest{Symbol: "BTCUSDT", Side: "BUY", Type: "LIMIT", Quantity: "1"}, "price"},
		{"limit bad price", TradeRequest{Symbol: "BTCUSDT", Side: "SELL", Type: "LIMIT", Quantity: "1", Price: "-5"}, "price"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Trade(context.Background(), tc.req)
			var vErr *core.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
	assert.False(t, dialed, "validation failures must never reach the exchange")
}

func TestTradeDispatch(t *testing.T) {
	var called string
	ack := core.OrderAck{
		ID:           "77",
		Symbol:       "BTCUSDT",
		Status:       core.OrderNew,
		ExecutedQty:  decimal.Zero,
		Price:        "30000.00",
		TransactTime: time.UnixMilli(1700000000000),
	}
	ex := &fakeExchange{
		marketBuyFn: func(ctx context.Context, symbol, quantity string) (core.OrderAck, error) {
			called = "market_buy"
			return ack, nil
		},
		limitBuyFn: func(ctx context.Context, symbol, quantity, price string) (core.OrderAck, error) {
			called = "limit_buy"
			assert.Equal(t, "30000.00", price)
			return ack, nil
		},
		marketSellFn: func(ctx context.Context, symbol, quantity string) (core.OrderAck, error) {
			called = "market_sell"
			return ack, nil
		},
		limitSellFn: func(ctx context.Context, symbol, quantity, price string) (core.OrderAck, error) {
			called = "limit_sell"
			return ack, nil
		},
	}
	svc := newTradeService(t, ex, "")

	cases := []struct {
		side, typ, price string
		want             string
	}{
		{"BUY", "MARKET", "", "market_buy"},
		{"BUY", "LIMIT", "30000.00", "limit_buy"},
		{"SELL", "MARKET", "", "market_sell"},
		{"SELL", "LIMIT", "30000.00", "limit_sell"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			called = ""
			result, err := svc.Trade(context.Background(), TradeRequest{
				Symbol:   "btcusdt",
				Side:     tc.side,
				Type:     tc.typ,
				Quantity: "0.5",
				Price:    tc.price,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, called)
			assert.Equal(t, "77", result.OrderID)
			assert.Equal(t, int64(1700000000000), result.TransactTime)
		})
	}
}

func TestTradePriceDefaultsWhenOmitted(t *testing.T) {
	ex := &fakeExchange{
		marketBuyFn: func(ctx context.Context, symbol, quantity string) (core.OrderAck, error) {
			return core.OrderAck{ID: "1", Symbol: symbol, Status: core.OrderFilled}, nil
		},
	}
	svc := newTradeService(t, ex, "")

	result, err := svc.Trade(context.Background(), TradeRequest{
		Symbol: "BTCUSDT", Side: "BUY", Type: "MARKET", Quantity: "0.1",
	})
	require.NoError(t, err)
	assert.Equal(t, "N/A", result.Price)
}

func TestTradeMaxNotionalGuard(t *testing.T) {
	ex := &fakeExchange{
		limitBuyFn: func(ctx context.Context, symbol, quantity, price string) (core.OrderAck, error) {
			return core.OrderAck{ID: "1", Symbol: symbol, Status: core.OrderNew}, nil
		},
		marketBuyFn: func(ctx context.Context, symbol, quantity string) (core.OrderAck, error) {
			return core.OrderAck{ID: "2", Symbol: symbol, Status: core.OrderFilled}, nil
		},
	}
	svc := newTradeService(t, ex, "10000")

	_, err := svc.Trade(context.Background(), TradeRequest{
		Symbol: "BTCUSDT", Side: "BUY", Type: "LIMIT", Quantity: "1", Price: "30000",
	})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "quantity", vErr.Field)

	_, err = svc.Trade(context.Background(), TradeRequest{
		Symbol: "BTCUSDT", Side: "BUY", Type: "LIMIT", Quantity: "0.3", Price: "30000",
	})
	require.NoError(t, err)

	// Market orders carry no price, so the guard cannot apply to them.
	_, err = svc.Trade(context.Background(), TradeRequest{
		Symbol: "BTCUSDT", Side: "BUY", Type: "MARKET", Quantity: "999",
	})
	require.NoError(t, err)
}

func TestTradeUpstreamErrorPassesThrough(t *testing.T) {
	upstream := errors.New("exchange said no")
	ex := &fakeExchange{
		marketSellFn: func(ctx context.Context, symbol, quantity string) (core.OrderAck, error) {
			return core.OrderAck{}, upstream
		},
	}
	svc := newTradeService(t, ex, "")

	_, err := svc.Trade(context.Background(), TradeRequest{
		Symbol: "BTCUSDT", Side: "SELL", Type: "MARKET", Quantity: "1",
	})
	require.ErrorIs(t, err, upstream)
}
