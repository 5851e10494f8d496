package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"trading-gateway/internal/config"
	"trading-gateway/internal/core"
	"trading-gateway/internal/exchange/binance"
	"trading-gateway/internal/gateway"
	"trading-gateway/internal/monitoring"
)

type Server struct {
	svc            *gateway.Service
	requestTimeout time.Duration
	allowedOrigin  string
	handler        http.Handler
}

func New(cfg config.ServerConfig, svc *gateway.Service) *Server {
	s := &Server{
		svc:            svc,
		requestTimeout: time.Duration(cfg.RequestTimeoutSec) * time.Second,
		allowedOrigin:  cfg.CORSAllowedOrigin,
	}
	s.handler = s.buildHandler()
	return s
}

func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) buildHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /api/balance", s.handleBalance)
	mux.HandleFunc("GET /api/market-overview", s.handleMarketOverview)
	mux.HandleFunc("GET /api/market/{symbol}", s.handleMarketData)
	mux.HandleFunc("POST /api/trade", s.handleTrade)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/orders/{symbol}", s.handleOpenOrders)
	mux.HandleFunc("DELETE /api/orders/{symbol}/{orderId}", s.handleCancelOrder)
	mux.HandleFunc("GET /api/exchange-info", s.handleExchangeInfo)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", monitoring.Handler())

	var h http.Handler = mux
	h = s.corsMiddleware(h)
	h = observeMiddleware(h)
	return h
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.requestTimeout)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "Trading Gateway API"})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()
	balances, err := s.svc.Balances(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, balances)
}

func (s *Server) handleMarketOverview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()
	overview, err := s.svc.MarketOverview(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, overview)
}

func (s *Server) handleMarketData(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()
	snapshot, err := s.svc.MarketData(ctx, r.PathValue("symbol"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	var req gateway.TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.svc.Trade(ctx, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()
	history, err := s.svc.History(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleOpenOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()
	orders, err := s.svc.OpenOrders(ctx, r.PathValue("symbol"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()
	result, err := s.svc.CancelOrder(ctx, r.PathValue("symbol"), r.PathValue("orderId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleExchangeInfo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()
	info, err := s.svc.ExchangeInfo(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()
	respondJSON(w, http.StatusOK, s.svc.Health(ctx))
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("level=ERROR event=response_encode_failed err=%q", err.Error())
	}
}

func respondDetail(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}

// respondError maps domain errors onto the HTTP surface. Upstream exchange
// rejections pass through verbatim so the caller sees the venue's reason.
func respondError(w http.ResponseWriter, err error) {
	var vErr *core.ValidationError
	if errors.As(err, &vErr) {
		monitoring.RecordError("validation")
		respondDetail(w, http.StatusBadRequest, vErr.Error())
		return
	}
	if apiErr, ok := binance.AsAPIError(err); ok {
		monitoring.RecordError("upstream")
		respondDetail(w, http.StatusBadRequest, "Binance API error: "+apiErr.Msg)
		return
	}
	if errors.Is(err, core.ErrMissingCredentials) {
		monitoring.RecordError("config")
		respondDetail(w, http.StatusInternalServerError, "exchange credentials not configured")
		return
	}
	monitoring.RecordError("internal")
	log.Printf("level=ERROR event=request_failed err=%q", err.Error())
	respondDetail(w, http.StatusInternalServerError, err.Error())
}
