package exchange

import (
	"context"

	"github.com/shopspring/decimal"

	"trading-gateway/internal/core"
)

// Exchange is the venue REST surface the gateway depends on. Order quantities
// and limit prices travel as the caller's decimal strings, unmodified.
type Exchange interface {
	Ping(ctx context.Context) error
	Account(ctx context.Context) (core.Account, error)
	TickerPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	Stats24h(ctx context.Context, symbol string) (core.Stats24h, error)
	Klines(ctx context.Context, symbol, interval string, limit int) ([]core.Kline, error)
	MarketBuy(ctx context.Context, symbol, quantity string) (core.OrderAck, error)
	LimitBuy(ctx context.Context, symbol, quantity, price string) (core.OrderAck, error)
	MarketSell(ctx context.Context, symbol, quantity string) (core.OrderAck, error)
	LimitSell(ctx context.Context, symbol, quantity, price string) (core.OrderAck, error)
	CancelOrder(ctx context.Context, symbol, orderID string) (core.CancelAck, error)
	OpenOrders(ctx context.Context, symbol string) ([]core.OpenOrder, error)
	MyTrades(ctx context.Context, symbol string, limit int) ([]core.Fill, error)
	ExchangeInfo(ctx context.Context) (core.ExchangeInfo, error)
}
