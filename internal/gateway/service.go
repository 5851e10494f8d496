package gateway

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"trading-gateway/internal/alert"
	"trading-gateway/internal/config"
	"trading-gateway/internal/core"
	"trading-gateway/internal/exchange"

	"github.com/shopspring/decimal"
)

const (
	historyCap        = 20
	historyFetchLimit = 10
	chartInterval     = "1h"
	chartCandles      = 24
	infoSymbolCap     = 50

	wireTimeLayout  = "2006-01-02 15:04:05"
	chartTimeLayout = "15:04"
)

// DialFunc builds a connected exchange client. The gateway dials per request
// so credential or connectivity problems surface as request errors instead of
// poisoning long-lived state.
type DialFunc func(ctx context.Context) (exchange.Exchange, error)

type Service struct {
	dial             DialFunc
	exchangeCfg      config.ExchangeConfig
	quoteAsset       string
	valuedAssets     []string
	overviewSymbols  []string
	historySymbols   []string
	maxOrderNotional decimal.Decimal
	alerts           *alert.Manager
}

func New(cfg config.Config, dial DialFunc, alerts *alert.Manager) *Service {
	return &Service{
		dial:             dial,
		exchangeCfg:      cfg.Exchange,
		quoteAsset:       cfg.Market.QuoteAsset,
		valuedAssets:     cfg.Market.ValuedAssets,
		overviewSymbols:  cfg.Market.OverviewSymbols,
		historySymbols:   cfg.Market.HistorySymbols,
		maxOrderNotional: cfg.Trading.MaxOrderNotional.Decimal,
		alerts:           alerts,
	}
}

// Balances returns every spot balance with funds, valued in the quote asset.
func (s *Service) Balances(ctx context.Context) ([]Balance, error) {
	ex, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	account, err := ex.Account(ctx)
	if err != nil {
		return nil, err
	}

	val := newValuator(s.quoteAsset, s.valuedAssets, ex)
	out := make([]Balance, 0, len(account.Balances))
	for _, b := range account.Balances {
		if b.Free.IsZero() && b.Locked.IsZero() {
			continue
		}
		out = append(out, Balance{
			Asset:    b.Asset,
			Free:     b.Free,
			Locked:   b.Locked,
			USDValue: val.usdValue(ctx, b.Asset, b.Free),
		})
	}
	return out, nil
}

type pairStats struct {
	price decimal.Decimal
	stats core.Stats24h
}

// MarketOverview fetches ticker and 24h statistics for every configured
// overview pair concurrently. Pairs that fail are dropped from the response;
// ordering follows the configuration.
func (s *Service) MarketOverview(ctx context.Context) ([]MarketSnapshot, error) {
	ex, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*MarketSnapshot, len(s.overviewSymbols))
	var wg sync.WaitGroup
	for i, symbol := range s.overviewSymbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			effective, ps, err := resolveSymbol(ctx, symbol, func(ctx context.Context, sym string) (pairStats, error) {
				price, err := ex.TickerPrice(ctx, sym)
				if err != nil {
					return pairStats{}, err
				}
				stats, err := ex.Stats24h(ctx, sym)
				if err != nil {
					return pairStats{}, err
				}
				return pairStats{price: price, stats: stats}, nil
			})
			if err != nil {
				log.Printf("level=WARN event=overview_pair_skipped symbol=%s err=%q", symbol, err.Error())
				return
			}
			results[i] = &MarketSnapshot{
				Symbol: effective,
				Price:  formatAmount(ps.price, 2),
				Change: formatChangePercent(ps.stats.PriceChangePercent),
				Volume: formatAmount(ps.stats.Volume, 0),
				High:   formatAmount(ps.stats.High, 2),
				Low:    formatAmount(ps.stats.Low, 2),
			}
		}(i, symbol)
	}
	wg.Wait()

	out := make([]MarketSnapshot, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// MarketData returns the detailed view for one symbol, including 24 hourly
// closes for the chart. The symbol is used exactly as given.
func (s *Service) MarketData(ctx context.Context, symbol string) (MarketSnapshot, error) {
	ex, err := s.dial(ctx)
	if err != nil {
		return MarketSnapshot{}, err
	}
	price, err := ex.TickerPrice(ctx, symbol)
	if err != nil {
		return MarketSnapshot{}, err
	}
	stats, err := ex.Stats24h(ctx, symbol)
	if err != nil {
		return MarketSnapshot{}, err
	}
	klines, err := ex.Klines(ctx, symbol, chartInterval, chartCandles)
	if err != nil {
		return MarketSnapshot{}, err
	}

	chart := make([]ChartPoint, 0, len(klines))
	for _, k := range klines {
		chart = append(chart, ChartPoint{
			Time:  k.OpenTime.Local().Format(chartTimeLayout),
			Price: k.Close,
		})
	}
	return MarketSnapshot{
		Symbol:    symbol,
		Price:     formatAmount(price, 2),
		Change:    formatChangePercent(stats.PriceChangePercent),
		Volume:    formatAmount(stats.Volume, 0),
		High:      formatAmount(stats.High, 2),
		Low:       formatAmount(stats.Low, 2),
		ChartData: chart,
	}, nil
}

// History merges recent fills across the configured symbols, newest first.
// Symbols that fail to fetch are skipped so one dead pair cannot blank the
// whole history view.
func (s *Service) History(ctx context.Context) ([]TradeHistoryEntry, error) {
	ex, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}

	perSymbol := make([][]core.Fill, len(s.historySymbols))
	var wg sync.WaitGroup
	for i, symbol := range s.historySymbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			fills, err := ex.MyTrades(ctx, symbol, historyFetchLimit)
			if err != nil {
				log.Printf("level=WARN event=history_symbol_skipped symbol=%s err=%q", symbol, err.Error())
				return
			}
			perSymbol[i] = fills
		}(i, symbol)
	}
	wg.Wait()

	var merged []core.Fill
	for _, fills := range perSymbol {
		merged = append(merged, fills...)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Time.After(merged[j].Time)
	})
	if len(merged) > historyCap {
		merged = merged[:historyCap]
	}

	out := make([]TradeHistoryEntry, 0, len(merged))
	for _, f := range merged {
		side := string(core.Sell)
		if f.IsBuyer {
			side = string(core.Buy)
		}
		out = append(out, TradeHistoryEntry{
			ID:       f.ID,
			Symbol:   f.Symbol,
			Side:     side,
			Quantity: f.Qty,
			Price:    f.Price,
			Time:     f.Time.UTC().Format(wireTimeLayout),
			Status:   string(core.OrderFilled),
		})
	}
	return out, nil
}

// OpenOrders lists resting orders for one symbol.
func (s *Service) OpenOrders(ctx context.Context, symbol string) ([]OpenOrder, error) {
	ex, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := ex.OpenOrders(ctx, symbol)
	if err != nil {
		return nil, err
	}
	out := make([]OpenOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, OpenOrder{
			OrderID:  o.ID,
			Symbol:   o.Symbol,
			Side:     string(o.Side),
			Type:     string(o.Type),
			Quantity: o.OrigQty,
			Price:    o.Price,
			Status:   string(o.Status),
			Time:     o.Time.UTC().Format(wireTimeLayout),
		})
	}
	return out, nil
}

// CancelOrder cancels one resting order by symbol and exchange order id.
func (s *Service) CancelOrder(ctx context.Context, symbol, orderID string) (CancelResult, error) {
	ex, err := s.dial(ctx)
	if err != nil {
		return CancelResult{}, err
	}
	ack, err := ex.CancelOrder(ctx, symbol, orderID)
	if err != nil {
		return CancelResult{}, err
	}
	s.alerts.Important("order_canceled", map[string]string{
		"symbol":   ack.Symbol,
		"order_id": ack.ID,
	})
	return CancelResult{
		OrderID: ack.ID,
		Symbol:  ack.Symbol,
		Status:  string(ack.Status),
		Message: "Order cancelled successfully",
	}, nil
}

// ExchangeInfo returns tradable symbols, capped to keep the payload small.
func (s *Service) ExchangeInfo(ctx context.Context) (ExchangeInfo, error) {
	ex, err := s.dial(ctx)
	if err != nil {
		return ExchangeInfo{}, err
	}
	info, err := ex.ExchangeInfo(ctx)
	if err != nil {
		return ExchangeInfo{}, err
	}

	symbols := make([]SymbolInfo, 0, infoSymbolCap)
	for _, sym := range info.Symbols {
		if sym.Status != "TRADING" {
			continue
		}
		symbols = append(symbols, SymbolInfo{
			Symbol:     sym.Symbol,
			Status:     sym.Status,
			BaseAsset:  sym.BaseAsset,
			QuoteAsset: sym.QuoteAsset,
		})
		if len(symbols) == infoSymbolCap {
			break
		}
	}
	return ExchangeInfo{
		Timezone:   info.Timezone,
		ServerTime: info.ServerTime.UnixMilli(),
		Symbols:    symbols,
	}, nil
}

// Health reports credential presence and upstream reachability. It never
// returns an error: the endpoint must answer even when everything is down.
func (s *Service) Health(ctx context.Context) HealthStatus {
	st := HealthStatus{
		Status:           "healthy",
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		APIKeyPresent:    s.exchangeCfg.APIKey != "",
		SecretKeyPresent: s.exchangeCfg.APISecret != "",
	}
	if !st.APIKeyPresent || !st.SecretKeyPresent {
		st.Status = "unhealthy"
		st.Error = "exchange credentials not configured"
		return st
	}

	ex, err := s.dial(ctx)
	if err != nil {
		st.Status = "unhealthy"
		st.Error = err.Error()
		return st
	}
	if _, err := ex.Account(ctx); err != nil {
		st.Status = "unhealthy"
		st.Error = err.Error()
		return st
	}
	st.ExchangeConnection = true
	return st
}
