package gateway

import (
	"context"
	"log"

	"github.com/shopspring/decimal"

	"trading-gateway/internal/exchange"
)

// valuator prices spot balances in the configured quote asset. Valuation is
// best effort: a balance that cannot be priced reports a zero value rather
// than failing the whole response.
type valuator struct {
	quoteAsset string
	majors     map[string]bool
	ex         exchange.Exchange
}

func newValuator(quoteAsset string, valuedAssets []string, ex exchange.Exchange) *valuator {
	majors := make(map[string]bool, len(valuedAssets))
	for _, a := range valuedAssets {
		majors[a] = true
	}
	return &valuator{quoteAsset: quoteAsset, majors: majors, ex: ex}
}

func (v *valuator) usdValue(ctx context.Context, asset string, amount decimal.Decimal) decimal.Decimal {
	if amount.IsZero() {
		return decimal.Zero
	}
	if asset == v.quoteAsset {
		return amount.Round(2)
	}
	if !v.majors[asset] {
		return decimal.Zero
	}

	_, price, err := resolveSymbol(ctx, asset+v.quoteAsset, v.ex.TickerPrice)
	if err != nil {
		log.Printf("level=WARN event=valuation_skipped asset=%s err=%q", asset, err.Error())
		return decimal.Zero
	}
	return amount.Mul(price).Round(2)
}
