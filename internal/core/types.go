package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

type OrderType string

type OrderStatus string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

const (
	Limit  OrderType = "LIMIT"
	Market OrderType = "MARKET"
)

const (
	OrderNew             OrderStatus = "NEW"
	OrderPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderFilled          OrderStatus = "FILLED"
	OrderCanceled        OrderStatus = "CANCELED"
	OrderRejected        OrderStatus = "REJECTED"
	OrderExpired         OrderStatus = "EXPIRED"
)

// AssetBalance is one asset row from the account snapshot.
type AssetBalance struct {
	Asset  string
	Free   decimal.Decimal
	Locked decimal.Decimal
}

type Account struct {
	Balances []AssetBalance
}

type Stats24h struct {
	Symbol             string
	PriceChangePercent decimal.Decimal
	Volume             decimal.Decimal
	High               decimal.Decimal
	Low                decimal.Decimal
}

type Kline struct {
	OpenTime time.Time
	Close    decimal.Decimal
}

// OrderAck is the exchange's acknowledgment of a newly placed order. Price
// keeps the raw response field and is empty when the exchange omits it, which
// market orders typically do.
type OrderAck struct {
	ID           string
	Symbol       string
	Status       OrderStatus
	ExecutedQty  decimal.Decimal
	Price        string
	TransactTime time.Time
}

type CancelAck struct {
	ID     string
	Symbol string
	Status OrderStatus
}

// Fill is a completed execution returned by the trade-history query.
type Fill struct {
	ID      string
	Symbol  string
	IsBuyer bool
	Qty     decimal.Decimal
	Price   decimal.Decimal
	Time    time.Time
}

type OpenOrder struct {
	ID      string
	Symbol  string
	Side    Side
	Type    OrderType
	OrigQty decimal.Decimal
	Price   decimal.Decimal
	Status  OrderStatus
	Time    time.Time
}

type SymbolInfo struct {
	Symbol     string
	Status     string
	BaseAsset  string
	QuoteAsset string
}

type ExchangeInfo struct {
	Timezone   string
	ServerTime time.Time
	Symbols    []SymbolInfo
}
