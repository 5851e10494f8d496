package gateway

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"trading-gateway/internal/core"
	"trading-gateway/internal/exchange"
)

// fakeExchange lets each test stub only the calls it cares about. Unstubbed
// calls fail loudly so a test cannot silently depend on behavior it never set
// up.
type fakeExchange struct {
	pingFn         func(ctx context.Context) error
	accountFn      func(ctx context.Context) (core.Account, error)
	tickerPriceFn  func(ctx context.Context, symbol string) (decimal.Decimal, error)
	stats24hFn     func(ctx context.Context, symbol string) (core.Stats24h, error)
	klinesFn       func(ctx context.Context, symbol, interval string, limit int) ([]core.Kline, error)
	marketBuyFn    func(ctx context.Context, symbol, quantity string) (core.OrderAck, error)
	limitBuyFn     func(ctx context.Context, symbol, quantity, price string) (core.OrderAck, error)
	marketSellFn   func(ctx context.Context, symbol, quantity string) (core.OrderAck, error)
	limitSellFn    func(ctx context.Context, symbol, quantity, price string) (core.OrderAck, error)
	cancelOrderFn  func(ctx context.Context, symbol, orderID string) (core.CancelAck, error)
	openOrdersFn   func(ctx context.Context, symbol string) ([]core.OpenOrder, error)
	myTradesFn     func(ctx context.Context, symbol string, limit int) ([]core.Fill, error)
	exchangeInfoFn func(ctx context.Context) (core.ExchangeInfo, error)
}

var errNotStubbed = errors.New("fake exchange: call not stubbed")

func (f *fakeExchange) Ping(ctx context.Context) error {
	if f.pingFn == nil {
		return errNotStubbed
	}
	return f.pingFn(ctx)
}

func (f *fakeExchange) Account(ctx context.Context) (core.Account, error) {
	if f.accountFn == nil {
		return core.Account{}, errNotStubbed
	}
	return f.accountFn(ctx)
}

func (f *fakeExchange) TickerPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if f.tickerPriceFn == nil {
		return decimal.Zero, errNotStubbed
	}
	return f.tickerPriceFn(ctx, symbol)
}

func (f *fakeExchange) Stats24h(ctx context.Context, symbol string) (core.Stats24h, error) {
	if f.stats24hFn == nil {
		return core.Stats24h{}, errNotStubbed
	}
	return f.stats24hFn(ctx, symbol)
}

func (f *fakeExchange) Klines(ctx context.Context, symbol, interval string, limit int) ([]core.Kline, error) {
	if f.klinesFn == nil {
		return nil, errNotStubbed
	}
	return f.klinesFn(ctx, symbol, interval, limit)
}

func (f *fakeExchange) MarketBuy(ctx context.Context, symbol, quantity string) (core.OrderAck, error) {
	if f.marketBuyFn == nil {
		return core.OrderAck{}, errNotStubbed
	}
	return f.marketBuyFn(ctx, symbol, quantity)
}

func (f *fakeExchange) LimitBuy(ctx context.Context, symbol, quantity, price string) (core.OrderAck, error) {
	if f.limitBuyFn == nil {
		return core.OrderAck{}, errNotStubbed
	}
	return f.limitBuyFn(ctx, symbol, quantity, price)
}

func (f *fakeExchange) MarketSell(ctx context.Context, symbol, quantity string) (core.OrderAck, error) {
	if f.marketSellFn == nil {
		return core.OrderAck{}, errNotStubbed
	}
	return f.marketSellFn(ctx, symbol, quantity)
}

func (f *fakeExchange) LimitSell(ctx context.Context, symbol, quantity, price string) (core.OrderAck, error) {
	if f.limitSellFn == nil {
		return core.OrderAck{}, errNotStubbed
	}
	return f.limitSellFn(ctx, symbol, quantity, price)
}

func (f *fakeExchange) CancelOrder(ctx context.Context, symbol, orderID string) (core.CancelAck, error) {
	if f.cancelOrderFn == nil {
		return core.CancelAck{}, errNotStubbed
	}
	return f.cancelOrderFn(ctx, symbol, orderID)
}

func (f *fakeExchange) OpenOrders(ctx context.Context, symbol string) ([]core.OpenOrder, error) {
	if f.openOrdersFn == nil {
		return nil, errNotStubbed
	}
	return f.openOrdersFn(ctx, symbol)
}

func (f *fakeExchange) MyTrades(ctx context.Context, symbol string, limit int) ([]core.Fill, error) {
	if f.myTradesFn == nil {
		return nil, errNotStubbed
	}
	return f.myTradesFn(ctx, symbol, limit)
}

func (f *fakeExchange) ExchangeInfo(ctx context.Context) (core.ExchangeInfo, error) {
	if f.exchangeInfoFn == nil {
		return core.ExchangeInfo{}, errNotStubbed
	}
	return f.exchangeInfoFn(ctx)
}

func staticDial(ex exchange.Exchange) DialFunc {
	return func(ctx context.Context) (exchange.Exchange, error) {
		return ex, nil
	}
}
