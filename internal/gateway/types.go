package gateway

import "github.com/shopspring/decimal"

// Wire types returned to the frontend. Field names and shapes are part of the
// public API contract and must stay stable.

type Balance struct {
	Asset    string          `json:"asset"`
	Free     decimal.Decimal `json:"free"`
	Locked   decimal.Decimal `json:"locked"`
	USDValue decimal.Decimal `json:"usdValue"`
}

type ChartPoint struct {
	Time  string          `json:"time"`
	Price decimal.Decimal `json:"price"`
}

type MarketSnapshot struct {
	Symbol    string       `json:"symbol"`
	Price     string       `json:"price"`
	Change    string       `json:"change"`
	Volume    string       `json:"volume"`
	High      string       `json:"high"`
	Low       string       `json:"low"`
	ChartData []ChartPoint `json:"chartData,omitempty"`
}

type TradeRequest struct {
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	Type     string `json:"type"`
	Quantity string `json:"quantity"`
	Price    string `json:"price,omitempty"`
}

type OrderResult struct {
	OrderID      string          `json:"orderId"`
	Symbol       string          `json:"symbol"`
	Status       string          `json:"status"`
	ExecutedQty  decimal.Decimal `json:"executedQty"`
	Price        string          `json:"price"`
	TransactTime int64           `json:"transactTime"`
}

type TradeHistoryEntry struct {
	ID       string          `json:"id"`
	Symbol   string          `json:"symbol"`
	Side     string          `json:"side"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Time     string          `json:"time"`
	Status   string          `json:"status"`
}

type OpenOrder struct {
	OrderID  string          `json:"orderId"`
	Symbol   string          `json:"symbol"`
	Side     string          `json:"side"`
	Type     string          `json:"type"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Status   string          `json:"status"`
	Time     string          `json:"time"`
}

type CancelResult struct {
	OrderID string `json:"orderId"`
	Symbol  string `json:"symbol"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SymbolInfo struct {
	Symbol     string `json:"symbol"`
	Status     string `json:"status"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
}

type ExchangeInfo struct {
	Timezone   string       `json:"timezone"`
	ServerTime int64        `json:"serverTime"`
	Symbols    []SymbolInfo `json:"symbols"`
}

type HealthStatus struct {
	Status             string `json:"status"`
	Timestamp          string `json:"timestamp"`
	APIKeyPresent      bool   `json:"apiKeyPresent"`
	SecretKeyPresent   bool   `json:"secretKeyPresent"`
	ExchangeConnection bool   `json:"exchangeConnection"`
	Error              string `json:"error,omitempty"`
}
