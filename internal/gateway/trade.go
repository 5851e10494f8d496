package gateway

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"trading-gateway/internal/core"
	"trading-gateway/internal/monitoring"
)

// Trade validates and dispatches one order. Validation happens before any
// upstream call so a malformed request never reaches the exchange, and a
// rejected order is never retried.
func (s *Service) Trade(ctx context.Context, req TradeRequest) (OrderResult, error) {
	req.normalize()
	if err := s.validateTradeRequest(req); err != nil {
		return OrderResult{}, err
	}

	ex, err := s.dial(ctx)
	if err != nil {
		return OrderResult{}, err
	}

	var ack core.OrderAck
	switch {
	case req.Side == string(core.Buy) && req.Type == string(core.Market):
		ack, err = ex.MarketBuy(ctx, req.Symbol, req.Quantity)
	case req.Side == string(core.Buy) && req.Type == string(core.Limit):
		ack, err = ex.LimitBuy(ctx, req.Symbol, req.Quantity, req.Price)
	case req.Side == string(core.Sell) && req.Type == string(core.Market):
		ack, err = ex.MarketSell(ctx, req.Symbol, req.Quantity)
	default:
		ack, err = ex.LimitSell(ctx, req.Symbol, req.Quantity, req.Price)
	}
	if err != nil {
		return OrderResult{}, err
	}

	price := ack.Price
	if price == "" {
		price = "N/A"
	}
	monitoring.RecordTrade(ack.Symbol, req.Side)
	s.alerts.Important("order_placed", map[string]string{
		"symbol":   ack.Symbol,
		"side":     req.Side,
		"type":     req.Type,
		"quantity": req.Quantity,
		"status":   string(ack.Status),
		"order_id": ack.ID,
	})
	log.Printf(
		"level=INFO event=order_placed symbol=%s side=%s type=%s qty=%s order_id=%s status=%s",
		ack.Symbol, req.Side, req.Type, req.Quantity, ack.ID, ack.Status,
	)
	return OrderResult{
		OrderID:      ack.ID,
		Symbol:       ack.Symbol,
		Status:       string(ack.Status),
		ExecutedQty:  ack.ExecutedQty,
		Price:        price,
		TransactTime: ack.TransactTime.UnixMilli(),
	}, nil
}

func (r *TradeRequest) normalize() {
	r.Symbol = strings.ToUpper(strings.TrimSpace(r.Symbol))
	r.Side = strings.ToUpper(strings.TrimSpace(r.Side))
	r.Type = strings.ToUpper(strings.TrimSpace(r.Type))
	r.Quantity = strings.TrimSpace(r.Quantity)
	r.Price = strings.TrimSpace(r.Price)
}

func (s *Service) validateTradeRequest(req TradeRequest) error {
	if req.Symbol == "" {
		return &core.ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if req.Side != string(core.Buy) && req.Side != string(core.Sell) {
		return &core.ValidationError{Field: "side", Reason: "must be BUY or SELL"}
	}
	if req.Type != string(core.Market) && req.Type != string(core.Limit) {
		return &core.ValidationError{Field: "type", Reason: "must be MARKET or LIMIT"}
	}
	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil || !qty.IsPositive() {
		return &core.ValidationError{Field: "quantity", Reason: "must be a positive number"}
	}
	if req.Type == string(core.Limit) {
		if req.Price == "" {
			return &core.ValidationError{Field: "price", Reason: "required for LIMIT orders"}
		}
		price, err := decimal.NewFromString(req.Price)
		if err != nil || !price.IsPositive() {
			return &core.ValidationError{Field: "price", Reason: "must be a positive number"}
		}
		if s.maxOrderNotional.IsPositive() {
			notional := qty.Mul(price)
			if notional.GreaterThan(s.maxOrderNotional) {
				return &core.ValidationError{
					Field:  "quantity",
					Reason: fmt.Sprintf("order notional %s exceeds limit %s", notional, s.maxOrderNotional),
				}
			}
		}
	}
	return nil
}
